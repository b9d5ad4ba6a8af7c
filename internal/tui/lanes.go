package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/coinsim/internal/format"
)

// LanesModel shows one progress bar per simulated parameter value.
type LanesModel struct {
	label    string
	params   []int
	progress []float64
	offset   int
	width    int
	height   int
}

// NewLanesModel creates the lanes panel. label names the parameter ("n",
// "flips").
func NewLanesModel(label string, params []int) LanesModel {
	return LanesModel{label: label, params: params, progress: make([]float64, len(params))}
}

// SetSize updates dimensions.
func (l *LanesModel) SetSize(w, h int) {
	l.width, l.height = w, h
	l.clampOffset()
}

// Update records the progress of one lane. Out-of-range lanes are ignored.
func (l *LanesModel) Update(lane int, value float64) {
	if lane < 0 || lane >= len(l.progress) {
		return
	}
	l.progress[lane] = min(max(value, 0), 1)
}

// Completed returns how many lanes have finished.
func (l LanesModel) Completed() int {
	n := 0
	for _, p := range l.progress {
		if p >= 1 {
			n++
		}
	}
	return n
}

// Scroll moves the visible window by delta lines.
func (l *LanesModel) Scroll(delta int) {
	l.offset += delta
	l.clampOffset()
}

func (l LanesModel) visibleRows() int {
	return max(l.height-4, 1)
}

func (l *LanesModel) clampOffset() {
	l.offset = max(0, min(l.offset, len(l.params)-l.visibleRows()))
}

// View renders the panel.
func (l LanesModel) View() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(fmt.Sprintf(" Lanes %d/%d", l.Completed(), len(l.params))))

	labelWidth := len(l.label) + 1
	for _, p := range l.params {
		labelWidth = max(labelWidth, len(l.label)+1+len(fmt.Sprint(p)))
	}
	barWidth := max(l.width-labelWidth-14, 4)

	end := min(l.offset+l.visibleRows(), len(l.params))
	for i := l.offset; i < end; i++ {
		b.WriteString("\n ")
		name := fmt.Sprintf("%s=%d", l.label, l.params[i])
		name += strings.Repeat(" ", labelWidth-lipgloss.Width(name))
		if l.progress[i] >= 1 {
			b.WriteString(laneDoneStyle.Render(name))
		} else {
			b.WriteString(laneLabelStyle.Render(name))
		}
		b.WriteString(" ")
		b.WriteString(renderBar(l.progress[i], barWidth))
		b.WriteString(" ")
		b.WriteString(metricValueStyle.Render(fmt.Sprintf("%5.1f%%", l.progress[i]*100)))
	}
	if end < len(l.params) {
		b.WriteString("\n ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("... %d more", len(l.params)-end)))
	}

	return panelStyle.Width(max(l.width-2, 0)).Height(max(l.height-2, 0)).Render(b.String())
}

// renderBar draws a styled progress bar of the given width.
func renderBar(progress float64, width int) string {
	bar := []rune(format.ProgressBar(progress, width))
	filled := strings.Count(string(bar), "█")
	return barFilledStyle.Render(string(bar[:filled])) + barEmptyStyle.Render(string(bar[filled:]))
}
