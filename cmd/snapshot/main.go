// Команда snapshot рендерит видимую область мира в PNG без окна.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/annel0/terrain-viewer/internal/config"
	"github.com/annel0/terrain-viewer/internal/logging"
	"github.com/annel0/terrain-viewer/internal/pipeline"
	"github.com/annel0/terrain-viewer/internal/render"
	"github.com/annel0/terrain-viewer/internal/vec"
	"github.com/dustin/go-humanize"
	"golang.org/x/image/draw"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (or TERRAIN_CONFIG)")
		out        = flag.String("out", "snapshot.png", "Output PNG file")
		maxTicks   = flag.Int("ticks", 1000, "Maximum ticks to run before rendering")
		seed       = flag.Int64("seed", 0, "Override noise seed (0 keeps config)")
		camX       = flag.Float64("x", 0, "Camera world X")
		camY       = flag.Float64("y", 0, "Camera world Y")
		smooth     = flag.Bool("smooth", false, "Bilinear scaling instead of nearest neighbour")
		hud        = flag.Bool("hud", true, "Draw info overlay")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *seed != 0 {
		cfg.Noise.Seed = *seed
		cfg.Noise.SeedPhrase = ""
	}

	atlas, err := render.OpenAtlas(cfg.Assets.Tilesheet, cfg.World.TileSize)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки тайлсета: %v", err)
	}

	p, err := pipeline.Build(cfg, atlas, pipeline.WithLogger(logging.GetPipelineLogger()))
	if err != nil {
		log.Fatalf("❌ Ошибка создания конвейера: %v", err)
	}
	p.Camera().SetPosition(vec.Vec2Float{X: *camX, Y: *camY})

	start := time.Now()
	drawables, ticks, err := settle(context.Background(), p, *maxTicks)
	if err != nil {
		log.Fatalf("❌ Ошибка тика конвейера: %v", err)
	}
	took := time.Since(start)

	w, h := p.Camera().Viewport()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	blits := make([]render.Blit, len(drawables))
	for i, d := range drawables {
		blits[i] = d.Blit()
	}
	var scaler draw.Scaler = draw.NearestNeighbor
	if *smooth {
		scaler = draw.ApproxBiLinear
	}
	render.Compose(img, blits, scaler)

	s := p.Stats()
	if *hud {
		render.DrawLabel(img, fmt.Sprintf("seed %d  zoom %.2f  pos (%.0f, %.0f)\nchunks %d drawn, %d pending after %d ticks",
			s.Seed, p.Camera().Zoom(), *camX, *camY, s.LastDrawn, s.LastMissing, ticks), 8, 8)
	}

	if err := writePNG(*out, img); err != nil {
		log.Fatalf("❌ %v", err)
	}

	info, err := os.Stat(*out)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.Info("📸 Снимок %s (%s): %d чанков за %d тиков, %s",
		*out, humanize.Bytes(uint64(info.Size())), s.LastDrawn, ticks, took.Round(time.Millisecond))
}

// settle крутит конвейер, пока все чанки диапазона не будут готовы или не кончатся тики
func settle(ctx context.Context, p *pipeline.Pipeline, maxTicks int) ([]pipeline.Drawable, int, error) {
	var drawables []pipeline.Drawable
	ticks := 0
	for ticks < maxTicks {
		var err error
		drawables, err = p.Tick(ctx)
		if err != nil {
			return nil, ticks, err
		}
		ticks++
		if p.Stats().LastMissing == 0 {
			break
		}
	}
	return drawables, ticks, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("ошибка кодирования PNG: %w", err)
	}
	return f.Close()
}
