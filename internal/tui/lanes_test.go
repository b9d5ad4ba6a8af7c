package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanesModel_Update(t *testing.T) {
	t.Parallel()
	l := NewLanesModel("n", []int{1, 2, 3})
	l.Update(0, 1)
	l.Update(1, 1.7)
	l.Update(2, -1)
	l.Update(9, 1)

	assert.Equal(t, []float64{1, 1, 0}, l.progress)
	assert.Equal(t, 2, l.Completed())
}

func TestLanesModel_View(t *testing.T) {
	t.Parallel()
	l := NewLanesModel("flips", []int{10, 100})
	l.SetSize(60, 10)
	l.Update(1, 0.5)

	view := l.View()
	assert.Contains(t, view, "Lanes 0/2")
	assert.Contains(t, view, "flips=10")
	assert.Contains(t, view, "flips=100")
	assert.Contains(t, view, "50.0%")
}

func TestLanesModel_Scroll(t *testing.T) {
	t.Parallel()
	params := make([]int, 20)
	for i := range params {
		params[i] = i + 1
	}
	l := NewLanesModel("n", params)
	l.SetSize(60, 8) // 4 visible rows

	l.Scroll(-3)
	assert.Zero(t, l.offset)
	l.Scroll(100)
	assert.Equal(t, 16, l.offset)

	view := l.View()
	assert.Contains(t, view, "n=20")
	assert.NotContains(t, view, "n=16 ")

	l.Scroll(-100)
	assert.Contains(t, l.View(), "... 16 more")
}
