// Package pipeline связывает камеру, хранилище чанков и кеш изображений в покадровый цикл.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/annel0/terrain-viewer/internal/camera"
	"github.com/annel0/terrain-viewer/internal/chunk"
	"github.com/annel0/terrain-viewer/internal/config"
	"github.com/annel0/terrain-viewer/internal/logging"
	"github.com/annel0/terrain-viewer/internal/noise"
	"github.com/annel0/terrain-viewer/internal/render"
	"github.com/annel0/terrain-viewer/internal/vec"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/annel0/terrain-viewer/internal/pipeline"

// Field поле шума с управляемым сидом
type Field interface {
	chunk.Sampler
	Seed() int64
	Reseed(seed int64)
}

// Config параметры оркестратора
type Config struct {
	ChunkRadius     int // запас чанков сверх видимой области
	ChunksPerTick   int // бюджет генерации за тик
	MaxCachedChunks int // 0 без ограничения
}

// ConfigFrom собирает Config из общей конфигурации
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ChunkRadius:     cfg.World.ChunkRadius,
		ChunksPerTick:   cfg.Pipeline.ChunksPerTick,
		MaxCachedChunks: cfg.Pipeline.MaxCachedChunks,
	}
}

// Drawable готовый к выводу чанк: позиция на экране, изображение и масштаб
type Drawable struct {
	Coords  vec.Vec2
	ScreenX float64
	ScreenY float64
	Image   *image.RGBA
	Scale   float64
}

// Blit преобразует Drawable для программного композитора
func (d Drawable) Blit() render.Blit {
	return render.Blit{ScreenX: d.ScreenX, ScreenY: d.ScreenY, Image: d.Image, Scale: d.Scale}
}

// Stats счётчики оркестратора
type Stats struct {
	Ticks       uint64
	Generated   uint64
	Evicted     uint64
	Reseeds     uint64
	LastDrawn   int
	LastMissing int
	Cached      int
	Epoch       uint64
	Seed        int64
}

// Option настраивает Pipeline
type Option func(*Pipeline)

// WithLogger задаёт логгер компонента
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRecorder задаёт приёмник метрик
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithTracer задаёт трассировщик (по умолчанию глобальный провайдер otel)
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// Pipeline решает, какие чанки нужны камере, генерирует не больше
// ChunksPerTick недостающих за тик и отдаёт готовые к выводу.
// Однопоточный: все вызовы делает цикл рендера.
type Pipeline struct {
	cfg      Config
	field    Field
	store    *chunk.Store
	cache    *render.Cache
	cam      *camera.Camera
	logger   *logging.Logger
	recorder Recorder
	tracer   trace.Tracer
	stats    Stats
}

// New собирает оркестратор из готовых компонентов.
// store должен сэмплировать тот же field.
func New(cfg Config, field Field, store *chunk.Store, cache *render.Cache, cam *camera.Camera, opts ...Option) *Pipeline {
	if cfg.ChunksPerTick <= 0 {
		cfg.ChunksPerTick = 1
	}
	p := &Pipeline{
		cfg:      cfg,
		field:    field,
		store:    store,
		cache:    cache,
		cam:      cam,
		logger:   logging.Default(),
		recorder: nopRecorder{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build создаёт поле шума, хранилище, кеш и камеру по конфигурации
func Build(cfg *config.Config, atlas render.Atlas, opts ...Option) (*Pipeline, error) {
	if atlas.TileSize() != cfg.World.TileSize {
		return nil, fmt.Errorf("atlas tile size %d does not match world.tile_size %d", atlas.TileSize(), cfg.World.TileSize)
	}
	field, err := noise.New(noise.ConfigFrom(cfg.Noise))
	if err != nil {
		return nil, err
	}
	store := chunk.NewStore(field, cfg.World.ChunkSize)
	cache := render.NewCache(atlas, cfg.World.ChunkSize)
	cam := camera.New(cfg.Camera)
	return New(ConfigFrom(cfg), field, store, cache, cam, opts...), nil
}

// Camera возвращает камеру оркестратора
func (p *Pipeline) Camera() *camera.Camera {
	return p.cam
}

// Field возвращает поле шума
func (p *Pipeline) Field() Field {
	return p.field
}

// Range возвращает диапазон чанков, который рассматривается в этом тике
func (p *Pipeline) Range() camera.Range {
	return p.cam.VisibleChunkRange(p.cache.ChunkPixels()).Expand(p.cfg.ChunkRadius)
}

// Tick выполняет один кадр: генерирует не больше ChunksPerTick недостающих чанков
// (ближайшие к центру камеры первыми) и возвращает все готовые чанки диапазона.
func (p *Pipeline) Tick(ctx context.Context) ([]Drawable, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Tick")
	defer span.End()

	epoch := p.field.Epoch()
	r := p.Range()
	missing := p.missing(r, epoch)

	budget := p.cfg.ChunksPerTick
	for _, coords := range missing {
		if budget == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.generate(ctx, coords); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		budget--
	}

	p.evict(r)

	drawables := p.collect(r, epoch)

	p.stats.Ticks++
	p.stats.LastDrawn = len(drawables)
	p.stats.LastMissing = len(missing) - (p.cfg.ChunksPerTick - budget)
	p.stats.Cached = p.cache.Len()
	p.recorder.TickCompleted(len(drawables), p.stats.LastMissing, p.stats.Cached)

	span.SetAttributes(
		attribute.Int("chunks.drawn", len(drawables)),
		attribute.Int("chunks.missing", p.stats.LastMissing),
	)
	return drawables, nil
}

// missing возвращает отсутствующие в кеше чанки диапазона, ближайшие к центру камеры первыми
func (p *Pipeline) missing(r camera.Range, epoch uint64) []vec.Vec2 {
	var out []vec.Vec2
	for cy := r.MinY; cy <= r.MaxY; cy++ {
		for cx := r.MinX; cx <= r.MaxX; cx++ {
			coords := vec.Vec2{X: cx, Y: cy}
			if !p.cache.Contains(coords, epoch) {
				out = append(out, coords)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return p.distance(out[i]) < p.distance(out[j])
	})
	return out
}

// distance расстояние от центра чанка до центра камеры в пикселях мира
func (p *Pipeline) distance(coords vec.Vec2) float64 {
	size := float64(p.cache.ChunkPixels())
	center := vec.FromVec2(coords).Add(vec.Vec2Float{X: 0.5, Y: 0.5}).Mul(size)
	return center.DistanceTo(p.cam.Center())
}

// generate строит сетку и изображение одного чанка
func (p *Pipeline) generate(ctx context.Context, coords vec.Vec2) error {
	_, span := p.tracer.Start(ctx, "pipeline.generateChunk", trace.WithAttributes(
		attribute.Int("chunk.x", coords.X),
		attribute.Int("chunk.y", coords.Y),
	))
	defer span.End()

	start := time.Now()

	grid, err := p.store.TileGrid(coords)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if _, err := p.cache.Image(coords, grid); err != nil {
		span.RecordError(err)
		return err
	}

	took := time.Since(start)
	p.stats.Generated++
	p.recorder.ChunkGenerated(took)
	logging.LogChunkGenerated(p.logger, coords.X, coords.Y, grid.Epoch, took)
	return nil
}

// evict вытесняет самые дальние от камеры чанки вне диапазона, пока кеш больше лимита
func (p *Pipeline) evict(r camera.Range) {
	limit := p.cfg.MaxCachedChunks
	if limit <= 0 || p.cache.Len() <= limit {
		return
	}

	var candidates []vec.Vec2
	for _, coords := range p.cache.Coords() {
		if !r.Contains(coords) {
			candidates = append(candidates, coords)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := p.distance(candidates[i]), p.distance(candidates[j])
		if di != dj {
			return di > dj
		}
		if candidates[i].Y != candidates[j].Y {
			return candidates[i].Y < candidates[j].Y
		}
		return candidates[i].X < candidates[j].X
	})

	evicted := 0
	for _, coords := range candidates {
		if p.cache.Len() <= limit {
			break
		}
		logging.LogChunkEvicted(p.logger, coords.X, coords.Y, p.distance(coords))
		p.cache.Evict(coords)
		p.store.Evict(coords)
		evicted++
	}

	if evicted > 0 {
		p.stats.Evicted += uint64(evicted)
		p.recorder.ChunksEvicted(evicted)
	}
}

// collect возвращает все закешированные чанки диапазона с экранными позициями
func (p *Pipeline) collect(r camera.Range, epoch uint64) []Drawable {
	size := p.cache.ChunkPixels()
	zoom := p.cam.Zoom()

	var out []Drawable
	for cy := r.MinY; cy <= r.MaxY; cy++ {
		for cx := r.MinX; cx <= r.MaxX; cx++ {
			coords := vec.Vec2{X: cx, Y: cy}
			img, ok := p.cache.Lookup(coords, epoch)
			if !ok {
				continue
			}
			screen := p.cam.WorldToScreen(vec.FromVec2(coords.Scale(size)))
			out = append(out, Drawable{
				Coords:  coords,
				ScreenX: screen.X,
				ScreenY: screen.Y,
				Image:   img,
				Scale:   zoom,
			})
		}
	}
	return out
}

// Reseed меняет сид и синхронно очищает оба кеша до возврата.
// Следующий Tick увидит только чанки нового сида.
func (p *Pipeline) Reseed(seed int64) {
	p.field.Reseed(seed)
	p.store.InvalidateAll()
	p.cache.Clear()

	p.stats.Reseeds++
	p.recorder.Reseeded(seed)
	p.logger.Info("🌱 Новый сид: %d (эпоха %d)", seed, p.field.Epoch())
}

// Stats возвращает счётчики оркестратора
func (p *Pipeline) Stats() Stats {
	s := p.stats
	s.Cached = p.cache.Len()
	s.Epoch = p.field.Epoch()
	s.Seed = p.field.Seed()
	return s
}
