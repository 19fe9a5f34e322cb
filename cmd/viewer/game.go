package main

import (
	"context"
	"fmt"
	"image"

	"github.com/annel0/terrain-viewer/internal/input"
	"github.com/annel0/terrain-viewer/internal/logging"
	"github.com/annel0/terrain-viewer/internal/pipeline"
	"github.com/annel0/terrain-viewer/internal/stats"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Раз в сколько кадров обновлять показатели процесса в оверлее
const processSampleFrames = 60

// Клавиши, которые действуют пока зажаты
var heldKeys = []struct {
	key ebiten.Key
	cmd input.Command
}{
	{ebiten.KeyW, input.Pan(input.Up)},
	{ebiten.KeyS, input.Pan(input.Down)},
	{ebiten.KeyA, input.Pan(input.Left)},
	{ebiten.KeyD, input.Pan(input.Right)},
	{ebiten.KeyE, input.ZoomIn()},
	{ebiten.KeyQ, input.ZoomOut()},
}

// Game связывает цикл ebiten с конвейером чанков
type Game struct {
	ctx        context.Context
	pipeline   *pipeline.Pipeline
	controller *input.Controller
	sampler    *stats.Sampler
	logger     *logging.Logger

	drawables []pipeline.Drawable
	textures  map[*image.RGBA]*ebiten.Image
	process   stats.Process
	frame     int
}

// NewGame создаёт игру. sampler может быть nil.
func NewGame(ctx context.Context, p *pipeline.Pipeline, c *input.Controller, sampler *stats.Sampler) *Game {
	return &Game{
		ctx:        ctx,
		pipeline:   p,
		controller: c,
		sampler:    sampler,
		logger:     logging.GetViewerLogger(),
		textures:   make(map[*image.RGBA]*ebiten.Image),
	}
}

// Commands собирает команды текущего кадра
func (g *Game) Commands() []input.Command {
	var cmds []input.Command
	for _, hk := range heldKeys {
		if ebiten.IsKeyPressed(hk.key) {
			cmds = append(cmds, hk.cmd)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		cmds = append(cmds, input.Reseed())
	}
	return cmds
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	g.controller.ApplyAll(g.Commands())

	drawables, err := g.pipeline.Tick(g.ctx)
	if err != nil {
		if g.ctx.Err() != nil {
			return ebiten.Termination
		}
		return fmt.Errorf("ошибка тика конвейера: %w", err)
	}
	g.drawables = drawables
	g.pruneTextures()

	g.frame++
	if g.sampler != nil && g.frame%processSampleFrames == 0 {
		p, err := g.sampler.Sample()
		if err != nil {
			g.logger.Debug("Не удалось снять показатели процесса: %v", err)
		} else {
			g.process = p
		}
	}
	return nil
}

// pruneTextures освобождает текстуры чанков, которые больше не выводятся
func (g *Game) pruneTextures() {
	live := make(map[*image.RGBA]struct{}, len(g.drawables))
	for _, d := range g.drawables {
		live[d.Image] = struct{}{}
	}
	for img, tex := range g.textures {
		if _, ok := live[img]; !ok {
			tex.Dispose()
			delete(g.textures, img)
		}
	}
}

func (g *Game) texture(img *image.RGBA) *ebiten.Image {
	tex, ok := g.textures[img]
	if !ok {
		tex = ebiten.NewImageFromImage(img)
		g.textures[img] = tex
	}
	return tex
}

func (g *Game) Draw(screen *ebiten.Image) {
	for _, d := range g.drawables {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(d.Scale, d.Scale)
		op.GeoM.Translate(d.ScreenX, d.ScreenY)
		screen.DrawImage(g.texture(d.Image), op)
	}
	ebitenutil.DebugPrintAt(screen, g.hud(), 8, 8)
}

func (g *Game) hud() string {
	s := g.pipeline.Stats()
	cam := g.pipeline.Camera()
	pos := cam.Position()
	return fmt.Sprintf("seed %d  zoom %.2f  pos (%.0f, %.0f)\nchunks %d drawn, %d cached, %d pending\n%s  fps %.0f\nWASD pan  E/Q zoom  R reseed",
		s.Seed, cam.Zoom(), pos.X, pos.Y,
		s.LastDrawn, s.Cached, s.LastMissing,
		g.process, ebiten.ActualFPS())
}

// Layout подгоняет вьюпорт камеры под размер окна
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	cam := g.pipeline.Camera()
	if w, h := cam.Viewport(); w != outsideWidth || h != outsideHeight {
		cam.SetViewport(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
