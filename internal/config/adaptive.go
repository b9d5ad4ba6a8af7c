package config

import "runtime"

// Engine parameter resolution chain (highest priority first):
//   1. CLI flags (--workers, --batch-size)
//   2. Environment variables (COINSIM_WORKERS, COINSIM_BATCH_SIZE)
//   3. YAML configuration file
//   4. Cached calibration profile (~/.coinsim_calibration.json)
//   5. Adaptive hardware estimation (this file)

// ApplyAdaptiveDefaults fills Workers and BatchSize when they are still zero.
func ApplyAdaptiveDefaults(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = EstimateWorkers()
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = EstimateBatchSize()
	}
	return cfg
}

// EstimateWorkers returns one worker per schedulable CPU.
func EstimateWorkers() int {
	return max(1, runtime.GOMAXPROCS(0))
}

// EstimateBatchSize returns a batch size that keeps the outcome buffer of
// every worker inside a typical L1 data cache.
func EstimateBatchSize() int {
	numCPU := runtime.NumCPU()
	switch {
	case numCPU <= 2:
		return 8192
	case numCPU <= 8:
		return 16384
	default:
		return 32768
	}
}
