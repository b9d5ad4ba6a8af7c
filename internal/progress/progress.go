// Package progress defines the progress messages exchanged between the
// simulation driver and the presentation layers.
package progress

// ProgressUpdate reports the completion of one lane of a simulation. A lane
// is one parameter value (a streak target or a sequence length).
type ProgressUpdate struct {
	// Lane is the index of the parameter value in the plan.
	Lane int
	// Value is the completed fraction of the lane, in [0, 1].
	Value float64
	// Records is the number of records produced by the lane so far.
	Records int64
}
