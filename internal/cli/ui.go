//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/progress"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress line.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so that DisplayProgress can be
// tested without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with an aggregated progress bar, ETA and
// record count until progressChan is closed. It calls wg.Done on return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numLanes int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numLanes)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(" " + progressLine(agg.CalculateAverage(), agg.GetETA(), 0))
	s.Start()
	defer func() {
		s.Stop()
		fmt.Fprintf(out, "%s\n", progressLine(agg.CalculateAverage(), 0, agg.Records()))
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	var last orchestration.AggregatedProgress
	dirty := false
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				return
			}
			last = agg.Update(update)
			dirty = true
		case <-ticker.C:
			if dirty {
				s.UpdateSuffix(" " + progressLine(last.AverageProgress, last.ETA, last.Records))
				dirty = false
			}
		}
	}
}

func progressLine(avg float64, eta time.Duration, records int64) string {
	return fmt.Sprintf("Simulating... %s  %s records",
		format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth), format.FormatCount(records))
}
