package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressState keeps the completion fraction of every lane of a simulation.
type ProgressState struct {
	progresses []float64
	numLanes   int
}

// NewProgressState returns a state tracking numLanes lanes.
func NewProgressState(numLanes int) *ProgressState {
	if numLanes < 0 {
		numLanes = 0
	}
	return &ProgressState{progresses: make([]float64, numLanes), numLanes: numLanes}
}

// Update records the progress of one lane. Out-of-range lanes are ignored
// and values are clamped to [0, 1].
func (p *ProgressState) Update(lane int, value float64) {
	if lane < 0 || lane >= p.numLanes {
		return
	}
	p.progresses[lane] = min(max(value, 0), 1)
}

// CalculateAverage returns the mean progress across lanes.
func (p *ProgressState) CalculateAverage() float64 {
	if p.numLanes == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.progresses {
		sum += v
	}
	return sum / float64(p.numLanes)
}

// Lane returns the progress of one lane.
func (p *ProgressState) Lane(i int) float64 {
	if i < 0 || i >= p.numLanes {
		return 0
	}
	return p.progresses[i]
}

// maxETA caps estimates produced from very slow early rates.
const maxETA = 24 * time.Hour

// rateSmoothing is the weight of the newest observation in the exponential
// moving average of the progress rate.
const rateSmoothing = 0.3

// ProgressWithETA extends ProgressState with a smoothed progress rate used to
// estimate the remaining time.
type ProgressWithETA struct {
	*ProgressState
	mu           sync.Mutex
	numLanes     int
	progressRate float64 // fraction per second
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
}

// NewProgressWithETA returns a tracker for numLanes lanes.
func NewProgressWithETA(numLanes int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numLanes),
		numLanes:      numLanes,
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records one lane update and returns the average progress and
// the remaining-time estimate.
func (p *ProgressWithETA) UpdateWithETA(lane int, value float64) (float64, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Update(lane, value)
	avg := p.CalculateAverage()

	now := time.Now()
	if dt := now.Sub(p.lastUpdate).Seconds(); dt > 0.05 && avg > p.lastProgress {
		rate := (avg - p.lastProgress) / dt
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = rateSmoothing*rate + (1-rateSmoothing)*p.progressRate
		}
		p.lastUpdate, p.lastProgress = now, avg
	}
	return avg, p.etaLocked(avg)
}

// GetETA returns the current estimate without recording an update.
func (p *ProgressWithETA) GetETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.etaLocked(p.CalculateAverage())
}

// Elapsed returns the time since the tracker was created.
func (p *ProgressWithETA) Elapsed() time.Duration { return time.Since(p.startTime) }

func (p *ProgressWithETA) etaLocked(avg float64) time.Duration {
	if p.progressRate <= 0 || avg <= 0 || avg >= 1 {
		return 0
	}
	eta := time.Duration((1 - avg) / p.progressRate * float64(time.Second))
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

// FormatETA renders an estimate as "45s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m := int(eta.Minutes())
		s := int(eta.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h := int(eta.Hours())
		m := int(eta.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ProgressBar renders a bar of the given length with █ and ░.
func ProgressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar] 42.0% ETA: 1m".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), min(max(progress, 0), 1)*100, FormatETA(eta))
}

// FormatNumberString inserts thousands separators into a decimal integer string.
func FormatNumberString(s string) string {
	if s == "" {
		return s
	}
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(n + n/3)
	head := n % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// FormatCount formats an integer count with thousands separators.
func FormatCount(n int64) string {
	return FormatNumberString(fmt.Sprintf("%d", n))
}
