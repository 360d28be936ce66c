package health

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats is informational host data attached to GET /health. It never
// changes the reported status.
type SystemStats struct {
	Load1             float64 `json:"load_1m"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	Goroutines        int     `json:"goroutines"`
}

type systemSampler struct {
	loadAvg func(context.Context) (*load.AvgStat, error)
	memory  func(context.Context) (*mem.VirtualMemoryStat, error)
}

func newSystemSampler() systemSampler {
	return systemSampler{
		loadAvg: load.AvgWithContext,
		memory:  mem.VirtualMemoryWithContext,
	}
}

// sample fills what the host exposes; unavailable figures stay zero.
func (s systemSampler) sample(ctx context.Context) *SystemStats {
	stats := &SystemStats{Goroutines: runtime.NumGoroutine()}
	if s.loadAvg != nil {
		if l, err := s.loadAvg(ctx); err == nil {
			stats.Load1 = l.Load1
		}
	}
	if s.memory != nil {
		if m, err := s.memory(ctx); err == nil {
			stats.MemoryUsedPercent = m.UsedPercent
		}
	}
	return stats
}
