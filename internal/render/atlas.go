// Package render растеризует сетки тайлов в изображения чанков и кеширует их.
package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // декодер атласа
	"os"

	"github.com/annel0/terrain-viewer/internal/terrain"
	"github.com/hsluv/hsluv-go"
	"golang.org/x/image/draw"
)

// Atlas сопоставляет категории тайла спрайт размером TileSize×TileSize
type Atlas interface {
	Sprite(c terrain.Category) image.Image
	TileSize() int
}

// StripAtlas горизонтальная полоса из terrain.NumCategories спрайтов в порядке перечисления
type StripAtlas struct {
	tileSize int
	sprites  [terrain.NumCategories]image.Image
}

// NewStripAtlas режет изображение на спрайты
func NewStripAtlas(img image.Image, tileSize int) (*StripAtlas, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("atlas: tile size must be positive, got %d", tileSize)
	}
	b := img.Bounds()
	need := int(terrain.NumCategories) * tileSize
	if b.Dx() < need || b.Dy() < tileSize {
		return nil, fmt.Errorf("atlas: strip %dx%d too small, need %dx%d", b.Dx(), b.Dy(), need, tileSize)
	}

	// Копия в RGBA, чтобы SubImage был доступен для любого исходного формата
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	a := &StripAtlas{tileSize: tileSize}
	for _, c := range terrain.All() {
		r := image.Rect(int(c)*tileSize, 0, int(c+1)*tileSize, tileSize)
		a.sprites[c] = rgba.SubImage(r)
	}
	return a, nil
}

// LoadStripAtlas загружает атлас из PNG файла
func LoadStripAtlas(path string, tileSize int) (*StripAtlas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия атласа: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования атласа %s: %w", path, err)
	}
	return NewStripAtlas(img, tileSize)
}

// Sprite возвращает спрайт категории. Паникует на неизвестной категории.
func (a *StripAtlas) Sprite(c terrain.Category) image.Image {
	return a.sprites[c.MustValid()]
}

// TileSize возвращает сторону спрайта в пикселях
func (a *StripAtlas) TileSize() int {
	return a.tileSize
}

// palette задаёт цвет категории в HSLuv: оттенок, насыщенность, светлота
var palette = [terrain.NumCategories][3]float64{
	terrain.Snow:     {250, 10, 96},
	terrain.Mountain: {40, 15, 50},
	terrain.Forest:   {130, 80, 35},
	terrain.Grass:    {125, 75, 62},
	terrain.Sand:     {75, 70, 85},
	terrain.Water:    {240, 85, 45},
}

// CategoryColor возвращает базовый цвет категории
func CategoryColor(c terrain.Category) color.RGBA {
	p := palette[c.MustValid()]
	r, g, b := hsluv.HsluvToRGB(p[0], p[1], p[2])
	return color.RGBA{
		uint8(r * 0xff),
		uint8(g * 0xff),
		uint8(b * 0xff),
		0xff,
	}
}

// DefaultAtlas строит атлас из однотонных тайлов, когда файл тайлсета не задан.
// Нижняя и правая грани тайла чуть темнее, чтобы сетка была видна.
func DefaultAtlas(tileSize int) *StripAtlas {
	strip := image.NewRGBA(image.Rect(0, 0, int(terrain.NumCategories)*tileSize, tileSize))
	for _, c := range terrain.All() {
		base := CategoryColor(c)
		edge := color.RGBA{base.R / 10 * 9, base.G / 10 * 9, base.B / 10 * 9, 0xff}
		x0 := int(c) * tileSize
		for y := 0; y < tileSize; y++ {
			for x := 0; x < tileSize; x++ {
				col := base
				if x == tileSize-1 || y == tileSize-1 {
					col = edge
				}
				strip.SetRGBA(x0+x, y, col)
			}
		}
	}

	a, err := NewStripAtlas(strip, tileSize)
	if err != nil {
		panic(err) // размеры полосы построены выше
	}
	return a
}

// OpenAtlas загружает тайлсет из path или строит DefaultAtlas, если path пуст
func OpenAtlas(path string, tileSize int) (Atlas, error) {
	if path == "" {
		return DefaultAtlas(tileSize), nil
	}
	return LoadStripAtlas(path, tileSize)
}
