// This file generates the candidate engine settings measured by Calibrate.

package calibration

import (
	"runtime"
	"slices"

	"github.com/agbru/coinsim/internal/config"
)

// GenerateWorkerCounts returns the worker counts to benchmark: powers of two
// up to the CPU count, plus the CPU count itself.
func GenerateWorkerCounts() []int {
	return workerCounts(runtime.NumCPU())
}

func workerCounts(numCPU int) []int {
	numCPU = max(1, numCPU)
	var counts []int
	for w := 1; w < numCPU; w *= 2 {
		counts = append(counts, w)
	}
	return append(counts, numCPU)
}

// GenerateBatchSizes returns the batch sizes to benchmark.
func GenerateBatchSizes() []int {
	return []int{1024, 4096, 8192, 16384, 32768, 65536}
}

// GenerateQuickBatchSizes returns a reduced set centered on the adaptive
// estimate.
func GenerateQuickBatchSizes() []int {
	est := config.EstimateBatchSize()
	sizes := []int{est / 4, est, est * 4}
	slices.Sort(sizes)
	return slices.Compact(sizes)
}

// GenerateQuickWorkerCounts benchmarks only one worker and all CPUs.
func GenerateQuickWorkerCounts() []int {
	n := max(1, runtime.NumCPU())
	if n == 1 {
		return []int{1}
	}
	return []int{1, n}
}
