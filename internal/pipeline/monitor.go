package pipeline

import (
	"log/slog"
	"runtime"
)

// runtimeStatsEvery is the frame interval between runtime samples in
// the render loop: every 300 frames, ten seconds at the default rate.
const runtimeStatsEvery = 300

// RuntimeStats samples process counters for a long render session.
// Mask planes and frame clones dominate the allocation rate, so heap
// size and GC cadence are the numbers worth watching.
type RuntimeStats struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	Goroutines      int    `json:"goroutines"`
}

// CaptureRuntimeStats reads the current runtime counters.
func CaptureRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		NumGC:           m.NumGC,
		Goroutines:      runtime.NumGoroutine(),
	}
}

// logRuntimeStats emits one sample at debug level.
func logRuntimeStats(frames int) {
	s := CaptureRuntimeStats()
	slog.Debug("runtime stats",
		"frames", frames,
		"alloc_bytes", s.AllocBytes,
		"total_alloc_bytes", s.TotalAllocBytes,
		"sys_bytes", s.SysBytes,
		"num_gc", s.NumGC,
		"goroutines", s.Goroutines)
}
