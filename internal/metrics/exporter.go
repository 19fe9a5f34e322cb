// Package metrics экспортирует показатели конвейера чанков в Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/terrain-viewer/internal/logging"
	"github.com/annel0/terrain-viewer/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProcessSampler источник показателей процесса
type ProcessSampler interface {
	Sample() (stats.Process, error)
}

// Exporter реализует pipeline.Recorder поверх Prometheus-метрик
// и периодически обновляет показатели процесса.
type Exporter struct {
	generated   prometheus.Counter
	genDuration prometheus.Histogram
	evicted     prometheus.Counter
	reseeds     prometheus.Counter
	seed        prometheus.Gauge
	cached      prometheus.Gauge
	drawn       prometheus.Gauge
	missing     prometheus.Gauge
	rss         prometheus.Gauge

	sampler ProcessSampler
	server  *http.Server
	quit    chan struct{}
	done    chan struct{}
}

// NewExporter создаёт метрики и регистрирует их в reg.
// sampler может быть nil, тогда показатели процесса не обновляются.
func NewExporter(reg prometheus.Registerer, sampler ProcessSampler) *Exporter {
	labels := prometheus.Labels{"session": logging.SessionID}
	e := &Exporter{
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "terrain",
			Name:        "chunks_generated_total",
			Help:        "Общее число сгенерированных чанков.",
			ConstLabels: labels,
		}),
		genDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "terrain",
			Name:        "chunk_generation_seconds",
			Help:        "Время генерации одного чанка: шум, классификация, растеризация.",
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 12),
			ConstLabels: labels,
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "terrain",
			Name:        "chunks_evicted_total",
			Help:        "Чанков, вытесненных из кеша по лимиту.",
			ConstLabels: labels,
		}),
		reseeds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "terrain",
			Name:        "reseeds_total",
			Help:        "Количество смен сида.",
			ConstLabels: labels,
		}),
		seed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "terrain",
			Name:        "seed",
			Help:        "Текущий сид шума.",
			ConstLabels: labels,
		}),
		cached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "terrain",
			Name:        "chunks_cached",
			Help:        "Чанков в кеше изображений.",
			ConstLabels: labels,
		}),
		drawn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "terrain",
			Name:        "chunks_drawn",
			Help:        "Чанков, выведенных в последнем кадре.",
			ConstLabels: labels,
		}),
		missing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "terrain",
			Name:        "chunks_missing",
			Help:        "Недостающих чанков в диапазоне после последнего кадра.",
			ConstLabels: labels,
		}),
		rss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "terrain",
			Name:        "process_rss_bytes",
			Help:        "Резидентная память процесса.",
			ConstLabels: labels,
		}),
		sampler: sampler,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	reg.MustRegister(e.generated, e.genDuration, e.evicted, e.reseeds, e.seed, e.cached, e.drawn, e.missing, e.rss)
	return e
}

// ChunkGenerated учитывает сгенерированный чанк
func (e *Exporter) ChunkGenerated(took time.Duration) {
	e.generated.Inc()
	e.genDuration.Observe(took.Seconds())
}

// ChunksEvicted учитывает вытесненные чанки
func (e *Exporter) ChunksEvicted(n int) {
	e.evicted.Add(float64(n))
}

// Reseeded учитывает смену сида
func (e *Exporter) Reseeded(seed int64) {
	e.reseeds.Inc()
	e.seed.Set(float64(seed))
}

// SetSeed выставляет начальный сид
func (e *Exporter) SetSeed(seed int64) {
	e.seed.Set(float64(seed))
}

// TickCompleted обновляет показатели кадра
func (e *Exporter) TickCompleted(drawn, missing, cached int) {
	e.drawn.Set(float64(drawn))
	e.missing.Set(float64(missing))
	e.cached.Set(float64(cached))
}

// SampleProcess однократно обновляет показатели процесса
func (e *Exporter) SampleProcess() {
	if e.sampler == nil {
		return
	}
	p, err := e.sampler.Sample()
	if err != nil {
		logging.Warn("Не удалось снять показатели процесса: %v", err)
		return
	}
	e.rss.Set(float64(p.RSSBytes))
}

// StartHTTP запускает HTTP-эндпоинт /metrics на addr (например, ":2112").
// Метод неблокирующий: сервер и обновление показателей процесса идут в отдельных горутинах.
func (e *Exporter) StartHTTP(addr string, gatherer prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	e.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	go e.loop()
}

// Stop останавливает обновление показателей и HTTP-сервер
func (e *Exporter) Stop(ctx context.Context) error {
	if e.server == nil {
		return nil
	}
	close(e.quit)
	<-e.done
	return e.server.Shutdown(ctx)
}

func (e *Exporter) loop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer close(e.done)

	for {
		select {
		case <-ticker.C:
			e.SampleProcess()
		case <-e.quit:
			return
		}
	}
}
