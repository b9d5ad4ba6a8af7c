package orchestration

import (
	"runtime"

	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/flip"
)

// Seed labels separating the random streams of the three simulation modes.
const (
	labelStreak uint64 = iota + 1
	labelConvergence
	labelProgressive
)

// Plan is the fully resolved description of one simulation.
type Plan struct {
	Mode config.Mode
	// Runs is the number of runs per parameter value.
	Runs int
	// MaxRuns is the largest sweep of a progressive simulation.
	MaxRuns int
	// Parameters are the streak targets or sequence lengths, ascending.
	Parameters []int
	// BaseSeed is mixed with each job's coordinates to seed its stream.
	BaseSeed  uint64
	BatchSize int
	Workers   int
	FlipCap   int64
	// Observer is optional.
	Observer Observer
}

// NewPlan builds a plan from a resolved configuration. When no seed was
// configured a random base seed is drawn and recorded in the plan.
func NewPlan(cfg config.AppConfig) Plan {
	seed, ok := cfg.SeedValue()
	if !ok {
		seed = flip.RandomBaseSeed()
	}
	return Plan{
		Mode:       cfg.Mode,
		Runs:       cfg.Runs,
		MaxRuns:    cfg.MaxRuns,
		Parameters: cfg.Parameters(),
		BaseSeed:   seed,
		BatchSize:  cfg.BatchSize,
		Workers:    cfg.Workers,
		FlipCap:    cfg.FlipCap,
	}
}

// Lanes returns the number of progress lanes, one per parameter value.
func (p Plan) Lanes() int { return len(p.Parameters) }

// TotalRecords returns the number of records the plan produces.
func (p Plan) TotalRecords() int {
	if p.Mode == config.ModeProgressive {
		return p.Lanes() * p.MaxRuns * (p.MaxRuns + 1) / 2
	}
	return p.Lanes() * p.Runs
}

// RecordsPerLane returns the number of records produced for one parameter.
func (p Plan) RecordsPerLane() int {
	if p.Lanes() == 0 {
		return 0
	}
	return p.TotalRecords() / p.Lanes()
}

func (p Plan) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (p Plan) observer() Observer {
	if p.Observer == nil {
		return nopObserver{}
	}
	return p.Observer
}

// job is one unit of work: runs first..last of one parameter value, inside
// sweep total for progressive plans.
type job struct {
	lane        int
	total       int
	first, last int
}

func (j job) size() int { return j.last - j.first + 1 }

// runJobs splits runs 1..runs of every lane into chunks so that each worker
// gets several jobs and progress advances smoothly.
func (p Plan) runJobs(runs int) []job {
	lanes := p.Lanes()
	if lanes == 0 || runs <= 0 {
		return nil
	}
	chunk := max(1, runs*lanes/(p.workers()*4))
	chunk = min(chunk, runs)
	jobs := make([]job, 0, lanes*((runs+chunk-1)/chunk))
	for lane := range lanes {
		for first := 1; first <= runs; first += chunk {
			jobs = append(jobs, job{lane: lane, first: first, last: min(first+chunk-1, runs)})
		}
	}
	return jobs
}

// progressiveJobs makes one job per (sweep size, parameter value).
func (p Plan) progressiveJobs() []job {
	jobs := make([]job, 0, p.MaxRuns*p.Lanes())
	for total := 1; total <= p.MaxRuns; total++ {
		for lane := range p.Lanes() {
			jobs = append(jobs, job{lane: lane, total: total, first: 1, last: total})
		}
	}
	return jobs
}

// slot returns the position of a record in the ordered output: by run, then
// by parameter value.
func (p Plan) slot(run, lane int) int {
	return (run-1)*p.Lanes() + lane
}

// progressiveSlot orders progressive records by sweep size, run and
// parameter value.
func (p Plan) progressiveSlot(total, run, lane int) int {
	before := (total - 1) * total / 2
	return (before+run-1)*p.Lanes() + lane
}
