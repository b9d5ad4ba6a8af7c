package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/coinsim/internal/format"
)

// MetricsModel displays runtime memory stats and simulation throughput.
type MetricsModel struct {
	alloc        uint64
	heapInuse    uint64
	numGC        uint32
	pauseTotalNs uint64
	numGoroutine int

	records     int64
	expected    int64
	rate        float64 // records per second, smoothed
	lastRecords int64
	lastUpdate  time.Time

	width  int
	height int
}

// NewMetricsModel creates the metrics panel for a run producing expected
// records.
func NewMetricsModel(expected int64) MetricsModel {
	return MetricsModel{expected: expected, lastUpdate: time.Now()}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

// UpdateMemStats stores a runtime sample.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapInuse = msg.HeapInuse
	m.numGC = msg.NumGC
	m.pauseTotalNs = msg.PauseTotalNs
	m.numGoroutine = msg.NumGoroutine
}

// UpdateRecords folds a new completed-record count into the throughput
// estimate. Samples closer than 50ms are accumulated.
func (m *MetricsModel) UpdateRecords(records int64) {
	m.records = records
	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt < 0.05 {
		return
	}
	if dr := records - m.lastRecords; dr > 0 {
		instant := float64(dr) / dt
		if m.rate > 0 {
			m.rate = 0.7*m.rate + 0.3*instant
		} else {
			m.rate = instant
		}
	}
	m.lastRecords = records
	m.lastUpdate = now
}

// Rate returns the smoothed records per second.
func (m MetricsModel) Rate() float64 { return m.rate }

// View renders the panel.
func (m MetricsModel) View() string {
	colWidth := max((m.width-6)/2, 10)
	pipe := metricLabelStyle.Render(" | ")

	var rows strings.Builder
	rows.WriteString(fmt.Sprintf("  %s %s%s%s %s",
		metricLabelStyle.Render("Heap:"),
		metricValueStyle.Render(format.FormatBytes(m.alloc)+" / "+format.FormatBytes(m.heapInuse)),
		pipe,
		metricLabelStyle.Render("GC:"),
		metricValueStyle.Render(fmt.Sprintf("%d (%.1fms)", m.numGC, float64(m.pauseTotalNs)/1e6))))

	records := format.FormatCount(m.records)
	if m.expected > 0 {
		records += " / " + format.FormatCount(m.expected)
	}
	rows.WriteString("\n")
	rows.WriteString(metricCell("Records:", records, colWidth))
	rows.WriteString(metricCell("Goroutines:", fmt.Sprint(m.numGoroutine), colWidth))
	rows.WriteString("\n")
	rows.WriteString(metricCell("Rate:", format.FormatCount(int64(m.rate))+"/s", colWidth))

	return panelStyle.Width(max(m.width-2, 0)).Height(max(m.height-2, 0)).Render(rows.String())
}

func metricCell(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-11s", label)),
		metricValueStyle.Render(value))
	if w := lipgloss.Width(cell); w < colWidth {
		cell += strings.Repeat(" ", colWidth-w)
	}
	return cell
}
