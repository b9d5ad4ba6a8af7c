package tui

import "math"

// sparkBlocks are the eight block heights used by RenderSparkline.
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RingBuffer keeps the most recent samples of a series.
type RingBuffer struct {
	data  []float64
	next  int
	count int
}

// NewRingBuffer creates a ring buffer holding up to capacity samples.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{data: make([]float64, max(capacity, 1))}
}

// Push appends v, evicting the oldest sample when full.
func (r *RingBuffer) Push(v float64) {
	r.data[r.next] = v
	r.next = (r.next + 1) % len(r.data)
	r.count = min(r.count+1, len(r.data))
}

func (r *RingBuffer) Len() int { return r.count }
func (r *RingBuffer) Cap() int { return len(r.data) }

// Last returns the newest sample, 0 when empty.
func (r *RingBuffer) Last() float64 {
	if r.count == 0 {
		return 0
	}
	return r.data[(r.next-1+len(r.data))%len(r.data)]
}

// Max returns the largest sample, 0 when empty.
func (r *RingBuffer) Max() float64 {
	m := 0.0
	for i, v := range r.Slice() {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// Slice returns the samples oldest first.
func (r *RingBuffer) Slice() []float64 {
	if r.count == 0 {
		return nil
	}
	out := make([]float64, r.count)
	start := (r.next - r.count + len(r.data)) % len(r.data)
	for i := range out {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

// Resize changes the capacity and keeps the newest samples that fit.
func (r *RingBuffer) Resize(capacity int) {
	capacity = max(capacity, 1)
	if capacity == len(r.data) {
		return
	}
	old := r.Slice()
	if len(old) > capacity {
		old = old[len(old)-capacity:]
	}
	r.data = make([]float64, capacity)
	r.next, r.count = 0, 0
	for _, v := range old {
		r.Push(v)
	}
}

// Reset drops every sample.
func (r *RingBuffer) Reset() { r.next, r.count = 0, 0 }

// level maps v within [lo, hi] onto 0..steps-1, clamping out-of-range and
// NaN values.
func level(v, lo, hi float64, steps int) int {
	if math.IsNaN(v) || hi <= lo {
		return 0
	}
	f := (v - lo) / (hi - lo)
	f = math.Max(0, math.Min(1, f))
	return min(int(f*float64(steps-1)+0.5), steps-1)
}

// RenderSparkline draws values scaled to [lo, hi] as block characters.
func RenderSparkline(values []float64, lo, hi float64) string {
	if len(values) == 0 {
		return ""
	}
	runes := make([]rune, len(values))
	for i, v := range values {
		runes[i] = sparkBlocks[level(v, lo, hi, len(sparkBlocks))]
	}
	return string(runes)
}

// brailleBits indexes the dot bit of a braille cell by [column][row].
var brailleBits = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// RenderBrailleChart plots values scaled to [lo, hi] on a grid of width by
// rows braille cells, newest sample on the right. Each cell holds two
// samples horizontally and four levels vertically.
func RenderBrailleChart(values []float64, lo, hi float64, width, rows int) []string {
	if width <= 0 || rows <= 0 || len(values) == 0 {
		return nil
	}
	cols := width * 2
	if len(values) > cols {
		values = values[len(values)-cols:]
	}
	offset := cols - len(values)
	dotRows := rows * 4

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = 0x2800
		}
	}
	for i, v := range values {
		x := offset + i
		y := dotRows - 1 - level(v, lo, hi, dotRows)
		grid[y/4][x/2] |= brailleBits[x%2][y%4]
	}

	out := make([]string, rows)
	for i := range grid {
		out[i] = string(grid[i])
	}
	return out
}
