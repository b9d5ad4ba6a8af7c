package orchestration

import (
	"time"

	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/progress"
)

// ProgressAggregator folds per-lane progress updates into an overall
// fraction and ETA. Both the CLI spinner and the TUI use it.
type ProgressAggregator struct {
	state    *format.ProgressWithETA
	numLanes int
	records  int64
	perLane  []int64
}

// NewProgressAggregator creates an aggregator for numLanes lanes. Returns nil
// if numLanes <= 0.
func NewProgressAggregator(numLanes int) *ProgressAggregator {
	if numLanes <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:    format.NewProgressWithETA(numLanes),
		numLanes: numLanes,
		perLane:  make([]int64, numLanes),
	}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	// Lane is the index of the parameter value that sent the update.
	Lane int
	// Value is the raw progress of that lane (0.0 to 1.0).
	Value float64
	// AverageProgress is the aggregated average across all lanes.
	AverageProgress float64
	// Records is the number of records completed across all lanes.
	Records int64
	// ETA is the estimated time remaining based on smoothed progress rate.
	ETA time.Duration
}

// Update processes a single progress update and returns the aggregated result.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(update.Lane, update.Value)
	if update.Lane >= 0 && update.Lane < a.numLanes && update.Records > a.perLane[update.Lane] {
		a.records += update.Records - a.perLane[update.Lane]
		a.perLane[update.Lane] = update.Records
	}
	return AggregatedProgress{
		Lane:            update.Lane,
		Value:           update.Value,
		AverageProgress: avg,
		Records:         a.records,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// Records returns the number of records completed so far.
func (a *ProgressAggregator) Records() int64 { return a.records }

// NumLanes returns the number of lanes being tracked.
func (a *ProgressAggregator) NumLanes() int {
	return a.numLanes
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
