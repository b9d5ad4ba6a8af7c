package format

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressState(t *testing.T) {
	t.Parallel()
	p := NewProgressState(2)
	assert.Zero(t, p.CalculateAverage())

	p.Update(0, 0.25)
	assert.InDelta(t, 0.125, p.CalculateAverage(), 1e-12)
	p.Update(1, 0.5)
	assert.InDelta(t, 0.375, p.CalculateAverage(), 1e-12)

	p.Update(0, 7)
	assert.Equal(t, 1.0, p.Lane(0), "values above 1 are clamped")
	p.Update(1, -3)
	assert.Zero(t, p.Lane(1), "negative values are clamped")

	p.Update(-1, 0.9)
	p.Update(2, 0.9)
	assert.InDelta(t, 0.5, p.CalculateAverage(), 1e-12, "out-of-range lanes are ignored")
	assert.Zero(t, p.Lane(5))
}

func TestProgressStateZeroLanes(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, -4} {
		p := NewProgressState(n)
		p.Update(0, 1)
		assert.Zero(t, p.CalculateAverage())
	}
}

func TestProgressWithETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(2)
	assert.Zero(t, p.GetETA(), "no rate before the first update")

	p.lastUpdate = time.Now().Add(-time.Second)
	avg, eta := p.UpdateWithETA(0, 0.5)
	assert.InDelta(t, 0.25, avg, 1e-12)
	assert.Positive(t, eta)
	assert.LessOrEqual(t, eta, maxETA)
	assert.Equal(t, eta.Round(time.Second), p.GetETA().Round(time.Second))

	p.lastUpdate = time.Now().Add(-time.Second)
	avg, eta = p.UpdateWithETA(1, 1)
	assert.InDelta(t, 0.75, avg, 1e-12)
	assert.Positive(t, eta)

	p.Update(0, 1)
	assert.Zero(t, p.GetETA(), "complete runs have no remaining time")
	assert.Positive(t, p.Elapsed())
}

func TestProgressWithETACapped(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(1)
	p.progressRate = 1e-9
	p.Update(0, 0.01)
	assert.Equal(t, maxETA, p.GetETA())
}

func TestProgressWithETAConcurrent(t *testing.T) {
	t.Parallel()
	const lanes = 8
	p := NewProgressWithETA(lanes)
	var wg sync.WaitGroup
	for lane := range lanes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= 100; i++ {
				p.UpdateWithETA(lane, float64(i)/100)
			}
		}()
	}
	wg.Wait()
	assert.InDelta(t, 1.0, p.CalculateAverage(), 1e-12)
}

func TestFormatETA(t *testing.T) {
	t.Parallel()
	tests := []struct {
		eta  time.Duration
		want string
	}{
		{0, "calculating..."},
		{-time.Second, "calculating..."},
		{400 * time.Millisecond, "< 1s"},
		{45 * time.Second, "45s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 30*time.Second, "2m30s"},
		{3 * time.Hour, "3h"},
		{time.Hour + 15*time.Minute, "1h15m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatETA(tt.eta), tt.eta.String())
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		filled   int
	}{
		{0, 0}, {0.5, 5}, {1, 10}, {1.7, 10}, {-0.2, 0},
	}
	for _, tt := range tests {
		bar := ProgressBar(tt.progress, 10)
		assert.Equal(t, tt.filled, strings.Count(bar, "█"), "progress %v", tt.progress)
		assert.Equal(t, 10-tt.filled, strings.Count(bar, "░"))
	}
}

func TestFormatProgressBarWithETA(t *testing.T) {
	t.Parallel()
	got := FormatProgressBarWithETA(0.42, 90*time.Second, 20)
	assert.True(t, strings.HasPrefix(got, "["))
	assert.Contains(t, got, " 42.0%")
	assert.True(t, strings.HasSuffix(got, "ETA: 1m30s"), got)
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"":          "",
		"7":         "7",
		"999":       "999",
		"1000":      "1,000",
		"123456":    "123,456",
		"1234567":   "1,234,567",
		"-1234567":  "-1,234,567",
		"-12":       "-12",
		"100000000": "100,000,000",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumberString(in), in)
	}
	assert.Equal(t, "1,048,576", FormatCount(1<<20))
}
