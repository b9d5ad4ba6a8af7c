package tui

import (
	"time"

	"github.com/agbru/coinsim/internal/orchestration"
)

// ProgressMsg carries one aggregated progress update from the simulation.
type ProgressMsg struct {
	Lane            int
	Value           float64
	AverageProgress float64
	Records         int64
	ETA             time.Duration
}

// ProgressDoneMsg is sent when the progress channel closes.
type ProgressDoneMsg struct{}

// ReportMsg carries the analysis of the finished simulation.
type ReportMsg struct {
	Report orchestration.Report
}

// SimulationCompleteMsg is sent when the simulation job returns.
type SimulationCompleteMsg struct {
	Err error
}

// TickMsg drives the periodic sampling of runtime and system stats.
type TickMsg time.Time

// MemStatsMsg is a runtime memory sample.
type MemStatsMsg struct {
	Alloc        uint64
	HeapInuse    uint64
	NumGC        uint32
	PauseTotalNs uint64
	NumGoroutine int
}

// SysStatsMsg is a system-wide CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// ContextCancelledMsg is sent when the parent context ends.
type ContextCancelledMsg struct {
	Err error
}
