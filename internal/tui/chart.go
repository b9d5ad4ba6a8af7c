package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/coinsim/internal/format"
)

// ChartModel shows the overall progress bar, a throughput chart and the
// system CPU and memory sparklines.
type ChartModel struct {
	averageProgress float64
	eta             time.Duration
	elapsed         time.Duration
	done            bool

	rateHistory *RingBuffer
	cpuHistory  *RingBuffer
	memHistory  *RingBuffer

	width  int
	height int
}

// NewChartModel creates the chart panel.
func NewChartModel() ChartModel {
	return ChartModel{
		rateHistory: NewRingBuffer(60),
		cpuHistory:  NewRingBuffer(30),
		memHistory:  NewRingBuffer(30),
	}
}

// SetSize updates dimensions and resizes the histories to the plot width.
func (c *ChartModel) SetSize(w, h int) {
	c.width, c.height = w, h
	inner := max(w-4, 1)
	c.rateHistory.Resize(inner * 2)
	c.cpuHistory.Resize(max(inner-14, 1))
	c.memHistory.Resize(max(inner-14, 1))
}

// AddDataPoint records the overall progress, its ETA and the current
// throughput in records per second.
func (c *ChartModel) AddDataPoint(avg float64, eta time.Duration, rate float64) {
	c.averageProgress = avg
	c.eta = eta
	c.rateHistory.Push(rate)
}

// UpdateSysStats records a system sample.
func (c *ChartModel) UpdateSysStats(cpuPct, memPct float64) {
	c.cpuHistory.Push(cpuPct)
	c.memHistory.Push(memPct)
}

// SetDone marks the run finished.
func (c *ChartModel) SetDone(elapsed time.Duration) {
	c.done = true
	c.elapsed = elapsed
	c.averageProgress = 1
}

// Reset clears every series.
func (c *ChartModel) Reset() {
	c.averageProgress, c.eta, c.done = 0, 0, false
	c.rateHistory.Reset()
	c.cpuHistory.Reset()
	c.memHistory.Reset()
}

// showSysStats reports whether the panel is tall enough for the sparklines.
func (c ChartModel) showSysStats() bool { return c.height >= 8 }

// View renders the panel.
func (c ChartModel) View() string {
	inner := max(c.width-4, 1)
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(" Throughput"))
	b.WriteString("\n ")
	b.WriteString(c.renderProgressBar(inner))

	chartRows := c.height - 4
	if c.showSysStats() {
		chartRows -= 2
	}
	if chartRows > 0 && c.rateHistory.Len() > 0 {
		peak := c.rateHistory.Max()
		for _, line := range RenderBrailleChart(c.rateHistory.Slice(), 0, peak, inner, chartRows) {
			b.WriteString("\n ")
			b.WriteString(barFilledStyle.Render(line))
		}
	}

	if c.showSysStats() {
		b.WriteString("\n ")
		b.WriteString(sysLine("CPU", c.cpuHistory, cpuSparklineStyle.Render))
		b.WriteString("\n ")
		b.WriteString(sysLine("MEM", c.memHistory, memSparklineStyle.Render))
	}

	return panelStyle.Width(max(c.width-2, 0)).Height(max(c.height-2, 0)).Render(b.String())
}

func sysLine(name string, rb *RingBuffer, render func(...string) string) string {
	return metricLabelStyle.Render(name+" ") +
		render(RenderSparkline(rb.Slice(), 0, 100)) +
		metricValueStyle.Render(fmt.Sprintf(" %5.1f%%", rb.Last()))
}

// renderProgressBar draws "[bar] xx.x% ETA: ..." fitted to width, or the
// elapsed time once done. It returns "" when the width cannot hold a bar.
func (c ChartModel) renderProgressBar(width int) string {
	suffix := fmt.Sprintf(" %5.1f%% ETA: %s", c.averageProgress*100, format.FormatETA(c.eta))
	if c.done {
		suffix = fmt.Sprintf(" %5.1f%% in %s", c.averageProgress*100, format.FormatExecutionDuration(c.elapsed))
	}
	barWidth := width - len([]rune(suffix)) - 2
	if barWidth < 4 {
		return ""
	}
	return "[" + renderBar(c.averageProgress, barWidth) + "]" + metricValueStyle.Render(suffix)
}
