package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/terrain-viewer/internal/config"
	"github.com/annel0/terrain-viewer/internal/input"
	"github.com/annel0/terrain-viewer/internal/logging"
	"github.com/annel0/terrain-viewer/internal/metrics"
	"github.com/annel0/terrain-viewer/internal/observability"
	"github.com/annel0/terrain-viewer/internal/pipeline"
	"github.com/annel0/terrain-viewer/internal/render"
	"github.com/annel0/terrain-viewer/internal/stats"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (or TERRAIN_CONFIG)")
		logDir     = flag.String("logs", "logs", "Directory for log files")
	)
	flag.Parse()

	logging.SetLogDir(*logDir)
	if err := logging.InitDefaultLogger("viewer"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка загрузки конфигурации: %v", err)
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.Info("🗺️ Запуск просмотрщика ландшафта: сид %d, бэкенд %s, чанк %dx%d тайлов по %dpx",
		cfg.Noise.Seed, cfg.Noise.Backend, cfg.World.ChunkSize, cfg.World.ChunkSize, cfg.World.TileSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("⚠️ Трассировка отключена: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	sampler, err := stats.NewSampler()
	if err != nil {
		logging.Warn("⚠️ Показатели процесса недоступны: %v", err)
		sampler = nil
	}

	opts := []pipeline.Option{pipeline.WithLogger(logging.GetPipelineLogger())}

	// === МЕТРИКИ ===
	var exporter *metrics.Exporter
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		if sampler != nil {
			exporter = metrics.NewExporter(reg, sampler)
		} else {
			exporter = metrics.NewExporter(reg, nil)
		}
		exporter.StartHTTP(fmt.Sprintf(":%d", cfg.Metrics.GetMetricsPort()), reg)
		opts = append(opts, pipeline.WithRecorder(exporter))
	}

	atlas, err := render.OpenAtlas(cfg.Assets.Tilesheet, cfg.World.TileSize)
	if err != nil {
		logging.Error("❌ Ошибка загрузки тайлсета: %v", err)
		log.Fatalf("❌ Ошибка загрузки тайлсета: %v", err)
	}

	p, err := pipeline.Build(cfg, atlas, opts...)
	if err != nil {
		logging.Error("❌ Ошибка создания конвейера: %v", err)
		log.Fatalf("❌ Ошибка создания конвейера: %v", err)
	}
	if exporter != nil {
		exporter.SetSeed(p.Field().Seed())
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	controller := input.NewController(p, cfg.Camera, rng)

	ebiten.SetWindowTitle("Terrain Viewer")
	ebiten.SetWindowSize(cfg.Camera.ViewportWidth, cfg.Camera.ViewportHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	logging.Info("✅ Конвейер готов, открываем окно %dx%d", cfg.Camera.ViewportWidth, cfg.Camera.ViewportHeight)

	runErr := ebiten.RunGame(NewGame(ctx, p, controller, sampler))

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if exporter != nil {
		if err := exporter.Stop(shutdownCtx); err != nil {
			logging.Error("❌ Ошибка остановки метрик: %v", err)
		}
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки трассировки: %v", err)
	}

	s := p.Stats()
	logging.Info("👋 Просмотрщик остановлен: тиков %d, чанков сгенерировано %d, вытеснено %d, смен сида %d",
		s.Ticks, s.Generated, s.Evicted, s.Reseeds)

	if runErr != nil {
		logging.Error("❌ Ошибка цикла рендера: %v", runErr)
		logging.GetLoggerManager().CloseAll()
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
}
