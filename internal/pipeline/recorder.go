package pipeline

import "time"

// Recorder принимает события оркестратора для метрик
type Recorder interface {
	ChunkGenerated(took time.Duration)
	ChunksEvicted(n int)
	Reseeded(seed int64)
	TickCompleted(drawn, missing, cached int)
}

type nopRecorder struct{}

func (nopRecorder) ChunkGenerated(time.Duration) {}
func (nopRecorder) ChunksEvicted(int)            {}
func (nopRecorder) Reseeded(int64)               {}
func (nopRecorder) TickCompleted(int, int, int)  {}
