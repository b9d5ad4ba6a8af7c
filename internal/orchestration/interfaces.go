package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/coinsim/internal/progress"
)

// ProgressReporter defines the interface for displaying simulation progress.
// Implementations (spinner, TUI bridge) own the visual representation while
// the orchestration layer only produces updates.
type ProgressReporter interface {
	// DisplayProgress consumes progressChan until it is closed and then
	// calls wg.Done. numLanes is the number of parameter values tracked.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numLanes int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numLanes int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numLanes int, out io.Writer) {
	f(wg, progressChan, numLanes, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used in quiet mode and tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders a finished report.
type ResultPresenter interface {
	PresentReport(r Report, out io.Writer)
}

// Observer is notified after every simulated run. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveRun(mode string, parameter int, flips int64, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(string, int, int64, time.Duration) {}
