// Package camera хранит положение и масштаб обзора и вычисляет видимые чанки.
package camera

import (
	"github.com/annel0/terrain-viewer/internal/config"
	"github.com/annel0/terrain-viewer/internal/vec"
)

// Range прямоугольник координат чанков, границы включены
type Range struct {
	MinX, MaxX int
	MinY, MaxY int
}

// Expand расширяет диапазон на n чанков с каждой стороны
func (r Range) Expand(n int) Range {
	return Range{MinX: r.MinX - n, MaxX: r.MaxX + n, MinY: r.MinY - n, MaxY: r.MaxY + n}
}

// Contains сообщает, входит ли чанк в диапазон
func (r Range) Contains(c vec.Vec2) bool {
	return c.X >= r.MinX && c.X <= r.MaxX && c.Y >= r.MinY && c.Y <= r.MaxY
}

// Count возвращает количество чанков в диапазоне
func (r Range) Count() int {
	return (r.MaxX - r.MinX + 1) * (r.MaxY - r.MinY + 1)
}

// Camera позиция левого верхнего угла в пикселях мира, зум и размер окна.
// Владелец один, цикл рендера.
type Camera struct {
	pos            vec.Vec2Float
	zoom           float64
	minZoom        float64
	maxZoom        float64
	viewportWidth  int
	viewportHeight int
}

// New создаёт камеру в (0,0) с зумом 1 (прижатым к границам)
func New(cfg config.CameraConfig) *Camera {
	c := &Camera{
		minZoom:        cfg.MinZoom,
		maxZoom:        cfg.MaxZoom,
		viewportWidth:  cfg.ViewportWidth,
		viewportHeight: cfg.ViewportHeight,
	}
	c.zoom = c.clamp(1)
	return c
}

// Position возвращает позицию левого верхнего угла в мире
func (c *Camera) Position() vec.Vec2Float {
	return c.pos
}

// SetPosition перемещает камеру в точку мира
func (c *Camera) SetPosition(p vec.Vec2Float) {
	c.pos = p
}

// Zoom возвращает текущий масштаб
func (c *Camera) Zoom() float64 {
	return c.zoom
}

// Viewport возвращает размер окна в экранных пикселях
func (c *Camera) Viewport() (int, int) {
	return c.viewportWidth, c.viewportHeight
}

// SetViewport меняет размер окна (например, при ресайзе)
func (c *Camera) SetViewport(width, height int) {
	c.viewportWidth = width
	c.viewportHeight = height
}

// Move сдвигает камеру на экранное смещение.
// В мире смещение делится на зум, чтобы скорость на экране не зависела от масштаба.
func (c *Camera) Move(dxScreen, dyScreen float64) {
	c.pos = c.pos.Add(vec.Vec2Float{X: dxScreen, Y: dyScreen}.Div(c.zoom))
}

// ZoomIn умножает зум на factor с прижатием к границам
func (c *Camera) ZoomIn(factor float64) (oldZoom, newZoom float64) {
	oldZoom = c.zoom
	c.zoom = c.clamp(c.zoom * factor)
	return oldZoom, c.zoom
}

// ZoomOut делит зум на factor с прижатием к границам
func (c *Camera) ZoomOut(factor float64) (oldZoom, newZoom float64) {
	oldZoom = c.zoom
	c.zoom = c.clamp(c.zoom / factor)
	return oldZoom, c.zoom
}

func (c *Camera) clamp(z float64) float64 {
	if z < c.minZoom {
		return c.minZoom
	}
	if z > c.maxZoom {
		return c.maxZoom
	}
	return z
}

// ViewSize возвращает размер видимой области в пикселях мира
func (c *Camera) ViewSize() vec.Vec2Float {
	return vec.Vec2Float{X: float64(c.viewportWidth), Y: float64(c.viewportHeight)}.Div(c.zoom)
}

// Center возвращает центр видимой области в мире
func (c *Camera) Center() vec.Vec2Float {
	return c.pos.Add(c.ViewSize().Div(2))
}

// VisibleChunkRange возвращает чанки, покрывающие окно, плюс ровно один чанк запаса с каждой стороны.
// chunkPixels = chunk_size * TILE_SIZE.
func (c *Camera) VisibleChunkRange(chunkPixels int) Range {
	size := float64(chunkPixels)
	minCorner := c.pos.Div(size).Floor()
	maxCorner := c.pos.Add(c.ViewSize()).Div(size).Floor()

	return Range{
		MinX: minCorner.X, MaxX: maxCorner.X,
		MinY: minCorner.Y, MaxY: maxCorner.Y,
	}.Expand(1)
}

// WorldToScreen переводит точку мира в экранные координаты
func (c *Camera) WorldToScreen(p vec.Vec2Float) vec.Vec2Float {
	return p.Sub(c.pos).Mul(c.zoom)
}

// ScreenToWorld переводит экранную точку в мир
func (c *Camera) ScreenToWorld(p vec.Vec2Float) vec.Vec2Float {
	return p.Div(c.zoom).Add(c.pos)
}
