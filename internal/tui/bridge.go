package tui

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/progress"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the bridge goroutines can send messages.
type programRef struct {
	mu      sync.RWMutex
	program messageSender
}

// messageSender is the part of *tea.Program the bridge uses.
type messageSender interface {
	Send(msg tea.Msg)
}

// SetProgram sets the program reference (thread-safe).
func (r *programRef) SetProgram(p messageSender) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe).
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// TUIProgressReporter forwards aggregated progress updates to the dashboard.
type TUIProgressReporter struct {
	ref *programRef
}

var _ orchestration.ProgressReporter = (*TUIProgressReporter)(nil)

// DisplayProgress drains the progress channel and sends a ProgressMsg per
// update, then a ProgressDoneMsg.
func (t *TUIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numLanes int, _ io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(numLanes)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	for update := range progressChan {
		ap := agg.Update(update)
		t.ref.Send(ProgressMsg{
			Lane:            ap.Lane,
			Value:           ap.Value,
			AverageProgress: ap.AverageProgress,
			Records:         ap.Records,
			ETA:             ap.ETA,
		})
	}
	t.ref.Send(ProgressDoneMsg{})
}

// TUIResultPresenter sends the finished report to the dashboard instead of
// writing it to stdout.
type TUIResultPresenter struct {
	ref *programRef
}

var _ orchestration.ResultPresenter = (*TUIResultPresenter)(nil)

// PresentReport sends a ReportMsg.
func (t *TUIResultPresenter) PresentReport(r orchestration.Report, _ io.Writer) {
	t.ref.Send(ReportMsg{Report: r})
}
