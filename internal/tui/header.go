package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/coinsim/internal/format"
)

// HeaderModel renders the top bar: title, mode, seed and elapsed time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	mode      string
	seed      uint64
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version, mode string, seed uint64) HeaderModel {
	return HeaderModel{startTime: time.Now(), version: version, mode: mode, seed: seed}
}

// SetDone freezes the elapsed timer.
func (h *HeaderModel) SetDone() {
	if h.endTime.IsZero() {
		h.endTime = time.Now()
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) { h.width = w }

// Elapsed returns the running or frozen elapsed time.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "coinsim"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := dimStyle.Render(" | ")
	row := titleStyle.Render(titleText) + pipe +
		metricValueStyle.Render(h.mode) + pipe +
		dimStyle.Render(fmt.Sprintf("seed %d", h.seed)) + pipe +
		elapsedStyle.Render("Elapsed: "+format.FormatExecutionDuration(h.Elapsed().Round(time.Millisecond)))

	gap := max(0, h.width-2-lipgloss.Width(row))
	return headerStyle.Width(h.width).Render(row + spaces(gap))
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
