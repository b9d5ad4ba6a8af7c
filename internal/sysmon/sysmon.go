// Package sysmon samples system-wide CPU and memory usage for the dashboard.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats is one sample of system-wide resource usage, in percent.
type Stats struct {
	CPUPercent float64
	MemPercent float64
}

// SampleContext collects one sample. CPU usage is measured since the
// previous call. Fields that cannot be read are left at zero.
func SampleContext(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = clamp(pcts[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		s.MemPercent = clamp(vm.UsedPercent)
	}
	return s
}

// Sample is SampleContext with a background context.
func Sample() Stats { return SampleContext(context.Background()) }

func clamp(v float64) float64 { return max(0, min(v, 100)) }
