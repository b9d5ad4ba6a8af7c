package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsModel_UpdateMemStats(t *testing.T) {
	t.Parallel()
	m := NewMetricsModel(100)
	msg := MemStatsMsg{Alloc: 50 << 20, HeapInuse: 80 << 20, NumGC: 10, PauseTotalNs: 2e6, NumGoroutine: 8}
	m.UpdateMemStats(msg)

	assert.Equal(t, msg.Alloc, m.alloc)
	assert.Equal(t, msg.HeapInuse, m.heapInuse)
	assert.Equal(t, msg.NumGC, m.numGC)
	assert.Equal(t, msg.NumGoroutine, m.numGoroutine)
}

func TestMetricsModel_UpdateRecords(t *testing.T) {
	t.Parallel()
	m := NewMetricsModel(100)
	m.lastUpdate = time.Now().Add(-time.Second)

	m.UpdateRecords(50)
	assert.Greater(t, m.Rate(), 0.0)
	assert.LessOrEqual(t, m.Rate(), 50.0)
	assert.Equal(t, int64(50), m.lastRecords)
}

func TestMetricsModel_UpdateRecords_Smoothing(t *testing.T) {
	t.Parallel()
	m := NewMetricsModel(0)
	m.lastUpdate = time.Now().Add(-time.Second)
	m.UpdateRecords(10)
	first := m.Rate()

	m.lastUpdate = time.Now().Add(-time.Second)
	m.UpdateRecords(1010)
	second := m.Rate()

	// The smoothed rate moves toward the ~1000/s instant rate without
	// reaching it.
	assert.Greater(t, second, first)
	assert.Less(t, second, 1000.0)
}

func TestMetricsModel_UpdateRecords_TooSoon(t *testing.T) {
	t.Parallel()
	m := NewMetricsModel(0)
	m.lastUpdate = time.Now()
	m.UpdateRecords(500)
	assert.Zero(t, m.Rate())
	assert.Equal(t, int64(500), m.records)
}

func TestMetricsModel_View(t *testing.T) {
	t.Parallel()
	m := NewMetricsModel(2000)
	m.SetSize(60, 6)
	m.UpdateMemStats(MemStatsMsg{Alloc: 2 << 20, HeapInuse: 4 << 20, NumGC: 3, NumGoroutine: 12})
	m.UpdateRecords(1500)

	view := m.View()
	for _, want := range []string{"Heap:", "2.0 MiB", "GC:", "Records:", "1,500 / 2,000", "Goroutines:", "12", "Rate:"} {
		assert.Contains(t, view, want)
	}
}
