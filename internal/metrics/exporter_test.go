package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/annel0/terrain-viewer/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSampler struct {
	rss uint64
	err error
}

func (f fakeSampler) Sample() (stats.Process, error) {
	return stats.Process{RSSBytes: f.rss}, f.err
}

func TestExporter_RecordsPipelineEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter(reg, nil)

	e.ChunkGenerated(3 * time.Millisecond)
	e.ChunkGenerated(5 * time.Millisecond)
	e.ChunksEvicted(4)
	e.Reseeded(31337)
	e.TickCompleted(9, 40, 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(e.generated))
	assert.Equal(t, 4.0, testutil.ToFloat64(e.evicted))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.reseeds))
	assert.Equal(t, 31337.0, testutil.ToFloat64(e.seed))
	assert.Equal(t, 9.0, testutil.ToFloat64(e.drawn))
	assert.Equal(t, 40.0, testutil.ToFloat64(e.missing))
	assert.Equal(t, 12.0, testutil.ToFloat64(e.cached))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "terrain_chunk_generation_seconds")
	assert.Contains(t, names, "terrain_process_rss_bytes")
}

func TestExporter_SampleProcess(t *testing.T) {
	e := NewExporter(prometheus.NewRegistry(), fakeSampler{rss: 1 << 20})
	e.SampleProcess()
	assert.Equal(t, float64(1<<20), testutil.ToFloat64(e.rss))

	failing := NewExporter(prometheus.NewRegistry(), fakeSampler{err: errors.New("denied")})
	failing.SampleProcess()
	assert.Equal(t, 0.0, testutil.ToFloat64(failing.rss))
}

func TestExporter_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewExporter(reg, nil)
	assert.Panics(t, func() { NewExporter(reg, nil) })
}

func TestExporter_StartStop(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter(reg, fakeSampler{rss: 1})
	e.StartHTTP("127.0.0.1:0", reg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, e.Stop(ctx))
}
