// Package stats снимает показатели процесса для оверлея и метрик.
package stats

import (
	"fmt"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
)

// Process снимок показателей процесса
type Process struct {
	RSSBytes     uint64
	CPUPercent   float64
	NumGoroutine int
}

// String форматирует снимок для оверлея
func (p Process) String() string {
	return fmt.Sprintf("mem %s  cpu %.1f%%", humanize.Bytes(p.RSSBytes), p.CPUPercent)
}

// Sampler читает показатели текущего процесса
type Sampler struct {
	proc *process.Process
}

// NewSampler создаёт сэмплер для текущего процесса
func NewSampler() (*Sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("ошибка доступа к процессу: %w", err)
	}
	return &Sampler{proc: proc}, nil
}

// Sample снимает текущие показатели
func (s *Sampler) Sample() (Process, error) {
	mem, err := s.proc.MemoryInfo()
	if err != nil {
		return Process{}, fmt.Errorf("ошибка чтения памяти процесса: %w", err)
	}
	cpu, err := s.proc.CPUPercent()
	if err != nil {
		return Process{}, fmt.Errorf("ошибка чтения CPU процесса: %w", err)
	}
	return Process{
		RSSBytes:     mem.RSS,
		CPUPercent:   cpu,
		NumGoroutine: runtime.NumGoroutine(),
	}, nil
}
