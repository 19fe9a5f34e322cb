package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации просмотрщика.
// Все константы ядра (размер тайла, чанка, зум, шум) задаются здесь.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Noise     NoiseConfig     `yaml:"noise"`
	Camera    CameraConfig    `yaml:"camera"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Assets    AssetsConfig    `yaml:"assets"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type WorldConfig struct {
	TileSize    int `yaml:"tile_size"`    // пикселей на сторону тайла
	ChunkSize   int `yaml:"chunk_size"`   // тайлов на сторону чанка
	ChunkRadius int `yaml:"chunk_radius"` // дополнительный запас чанков вокруг видимой области
}

type NoiseConfig struct {
	Seed        int64   `yaml:"seed"`
	SeedPhrase  string  `yaml:"seed_phrase"` // если задана, сид получается хешированием фразы
	Octaves     int     `yaml:"octaves"`
	Scale       float64 `yaml:"scale"` // делитель мировых координат
	Backend     string  `yaml:"backend"`
	Alpha       float64 `yaml:"alpha"`
	Beta        float64 `yaml:"beta"`
	Persistence float64 `yaml:"persistence"`
}

type CameraConfig struct {
	ViewportWidth  int     `yaml:"viewport_width"`
	ViewportHeight int     `yaml:"viewport_height"`
	MinZoom        float64 `yaml:"min_zoom"`
	MaxZoom        float64 `yaml:"max_zoom"`
	ZoomFactor     float64 `yaml:"zoom_factor"`
	PanSpeed       float64 `yaml:"pan_speed"` // экранных пикселей за тик
}

type PipelineConfig struct {
	ChunksPerTick   int `yaml:"chunks_per_tick"`
	MaxCachedChunks int `yaml:"max_cached_chunks"` // 0 без ограничения
}

type AssetsConfig struct {
	Tilesheet string `yaml:"tilesheet"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Бэкенды шума
const (
	BackendPerlin  = "perlin"
	BackendSimplex = "simplex"
)

// ErrInvalidConfig возвращается из Validate
var ErrInvalidConfig = errors.New("invalid config")

// Default возвращает эталонные значения просмотрщика
func Default() *Config {
	return &Config{
		World: WorldConfig{
			TileSize:    32,
			ChunkSize:   32,
			ChunkRadius: 2,
		},
		Noise: NoiseConfig{
			Seed:        1337,
			Octaves:     8,
			Scale:       100,
			Backend:     BackendPerlin,
			Alpha:       2,
			Beta:        2,
			Persistence: 0.5,
		},
		Camera: CameraConfig{
			ViewportWidth:  1280,
			ViewportHeight: 640,
			MinZoom:        0.3,
			MaxZoom:        3,
			ZoomFactor:     1.02,
			PanSpeed:       5,
		},
		Pipeline: PipelineConfig{
			ChunksPerTick:   1,
			MaxCachedChunks: 0,
		},
		Metrics: MetricsConfig{
			Port: 2112,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "terrain-viewer",
		},
	}
}

// ChunkPixels возвращает размер чанка в пикселях мира
func (w WorldConfig) ChunkPixels() int {
	return w.ChunkSize * w.TileSize
}

// GetMetricsPort возвращает порт метрик с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getIntWithEnvFallback(m.Port, "TERRAIN_METRICS_PORT", 2112)
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultValue
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	switch {
	case c.World.TileSize <= 0:
		return fmt.Errorf("%w: world.tile_size must be positive", ErrInvalidConfig)
	case c.World.ChunkSize <= 0:
		return fmt.Errorf("%w: world.chunk_size must be positive", ErrInvalidConfig)
	case c.World.ChunkRadius < 0:
		return fmt.Errorf("%w: world.chunk_radius must not be negative", ErrInvalidConfig)
	case c.Noise.Octaves <= 0:
		return fmt.Errorf("%w: noise.octaves must be positive", ErrInvalidConfig)
	case c.Noise.Scale <= 0:
		return fmt.Errorf("%w: noise.scale must be positive", ErrInvalidConfig)
	case c.Noise.Backend != BackendPerlin && c.Noise.Backend != BackendSimplex:
		return fmt.Errorf("%w: unknown noise.backend %q", ErrInvalidConfig, c.Noise.Backend)
	case c.Camera.ViewportWidth <= 0 || c.Camera.ViewportHeight <= 0:
		return fmt.Errorf("%w: camera viewport must be positive", ErrInvalidConfig)
	case c.Camera.MinZoom <= 0 || c.Camera.MinZoom > c.Camera.MaxZoom:
		return fmt.Errorf("%w: camera zoom bounds [%g, %g]", ErrInvalidConfig, c.Camera.MinZoom, c.Camera.MaxZoom)
	case c.Camera.ZoomFactor <= 1:
		return fmt.Errorf("%w: camera.zoom_factor must be greater than 1", ErrInvalidConfig)
	case c.Pipeline.ChunksPerTick <= 0:
		return fmt.Errorf("%w: pipeline.chunks_per_tick must be positive", ErrInvalidConfig)
	case c.Pipeline.MaxCachedChunks < 0:
		return fmt.Errorf("%w: pipeline.max_cached_chunks must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV TERRAIN_CONFIG;
// а если и он пуст, возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TERRAIN_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
		}
	}

	if envSeed := os.Getenv("TERRAIN_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			cfg.Noise.Seed = seed
			cfg.Noise.SeedPhrase = ""
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
