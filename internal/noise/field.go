// Package noise реализует детерминированное поле когерентного шума,
// из которого строится ландшафт.
package noise

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/terrain-viewer/internal/config"
	"github.com/aquilax/go-perlin"
	"github.com/cespare/xxhash/v2"
	"github.com/ojrac/opensimplex-go"
)

// MaxCoordinate ограничивает модуль мировой координаты.
// Дальше float64 теряет дробную часть после деления на scale.
const MaxCoordinate = 1 << 40

// ErrInvalidCoordinate возвращается для NaN, бесконечности и координат за MaxCoordinate
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Config параметры поля шума
type Config struct {
	Seed        int64
	Octaves     int
	Scale       float64 // делитель мировых координат
	Backend     string  // config.BackendPerlin или config.BackendSimplex
	Alpha       float64 // затухание амплитуды октав (perlin)
	Beta        float64 // рост частоты октав
	Persistence float64 // затухание амплитуды октав (simplex)
}

// ConfigFrom собирает Config из секции noise конфигурации.
// Фраза сида имеет приоритет над числовым сидом.
func ConfigFrom(c config.NoiseConfig) Config {
	seed := c.Seed
	if c.SeedPhrase != "" {
		seed = SeedFromPhrase(c.SeedPhrase)
	}
	return Config{
		Seed:        seed,
		Octaves:     c.Octaves,
		Scale:       c.Scale,
		Backend:     c.Backend,
		Alpha:       c.Alpha,
		Beta:        c.Beta,
		Persistence: c.Persistence,
	}
}

// source конкретный алгоритм шума для одного сида
type source interface {
	noise2(x, y float64) float64
}

type perlinSource struct {
	p *perlin.Perlin
}

func (s perlinSource) noise2(x, y float64) float64 {
	return s.p.Noise2D(x, y)
}

// simplexSource складывает октавы OpenSimplex (fBm) и нормирует сумму
type simplexSource struct {
	n           opensimplex.Noise
	octaves     int
	lacunarity  float64
	persistence float64
}

func (s simplexSource) noise2(x, y float64) float64 {
	total := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxVal := 0.0

	for i := 0; i < s.octaves; i++ {
		total += s.n.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= s.persistence
		frequency *= s.lacunarity
	}

	return total / maxVal
}

// Field детерминированный сэмплер шума.
// Для фиксированного сида Sample является чистой функцией координаты.
// Каждый Reseed начинает новую эпоху; кеши сверяют эпоху своих записей с Epoch().
type Field struct {
	cfg   Config
	epoch uint64
	src   source
}

// New создаёт поле шума
func New(cfg Config) (*Field, error) {
	if cfg.Octaves <= 0 {
		return nil, fmt.Errorf("noise: octaves must be positive, got %d", cfg.Octaves)
	}
	if cfg.Scale <= 0 {
		return nil, fmt.Errorf("noise: scale must be positive, got %g", cfg.Scale)
	}
	if cfg.Backend == "" {
		cfg.Backend = config.BackendPerlin
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = 2
	}
	if cfg.Beta == 0 {
		cfg.Beta = 2
	}
	if cfg.Persistence == 0 {
		cfg.Persistence = 0.5
	}

	f := &Field{cfg: cfg, epoch: 1}
	src, err := f.newSource(cfg.Seed)
	if err != nil {
		return nil, err
	}
	f.src = src
	return f, nil
}

func (f *Field) newSource(seed int64) (source, error) {
	switch f.cfg.Backend {
	case config.BackendPerlin:
		return perlinSource{p: perlin.NewPerlin(f.cfg.Alpha, f.cfg.Beta, int32(f.cfg.Octaves), seed)}, nil
	case config.BackendSimplex:
		return simplexSource{
			n:           opensimplex.New(seed),
			octaves:     f.cfg.Octaves,
			lacunarity:  f.cfg.Beta,
			persistence: f.cfg.Persistence,
		}, nil
	default:
		return nil, fmt.Errorf("noise: unknown backend %q", f.cfg.Backend)
	}
}

// Sample возвращает значение шума в [-1, 1] для мировой координаты.
// Координаты делятся на Scale перед выборкой.
func (f *Field) Sample(worldX, worldY float64) (float64, error) {
	if math.IsNaN(worldX) || math.IsNaN(worldY) || math.IsInf(worldX, 0) || math.IsInf(worldY, 0) {
		return 0, fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, worldX, worldY)
	}
	if math.Abs(worldX) > MaxCoordinate || math.Abs(worldY) > MaxCoordinate {
		return 0, fmt.Errorf("%w: (%v, %v) out of range", ErrInvalidCoordinate, worldX, worldY)
	}

	v := f.src.noise2(worldX/f.cfg.Scale, worldY/f.cfg.Scale)
	return clamp(v), nil
}

// Reseed заменяет сид и начинает новую эпоху.
// Само поле ничего не кеширует; кеши чанков обязаны считать записи прошлой эпохи промахом.
func (f *Field) Reseed(seed int64) {
	// Бэкенд уже проверен в New
	src, _ := f.newSource(seed)
	f.src = src
	f.cfg.Seed = seed
	f.epoch++
}

// Seed возвращает текущий сид
func (f *Field) Seed() int64 {
	return f.cfg.Seed
}

// Epoch возвращает номер текущей эпохи сида (начинается с 1)
func (f *Field) Epoch() uint64 {
	return f.epoch
}

// Octaves возвращает количество октав
func (f *Field) Octaves() int {
	return f.cfg.Octaves
}

// Scale возвращает делитель координат
func (f *Field) Scale() float64 {
	return f.cfg.Scale
}

// Backend возвращает имя алгоритма
func (f *Field) Backend() string {
	return f.cfg.Backend
}

// RandomSeed возвращает случайный пятизначный сид в [10000, 100000]
func RandomSeed(rng *rand.Rand) int64 {
	const lower, upper = 10000, 100000
	return lower + rng.Int63n(upper-lower+1)
}

// SeedFromPhrase превращает текстовую фразу в неотрицательный сид
func SeedFromPhrase(phrase string) int64 {
	return int64(xxhash.Sum64String(phrase) >> 1)
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
