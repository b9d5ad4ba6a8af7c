package metrics

import "testing"

func TestMemoryCollector_Snapshot(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCollector()
	snap := mc.Snapshot()

	if snap.HeapAlloc == 0 {
		t.Error("HeapAlloc should be > 0")
	}
	if snap.Sys == 0 {
		t.Error("Sys should be > 0")
	}
}

func TestMemoryCollector_Delta(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCollector()
	before := mc.Snapshot()

	buf := make([]byte, 1024*1024)
	buf[len(buf)-1] = 1

	after := mc.Snapshot()
	d := after.Sub(before)
	if d.TotalAlloc < 1024*1024 {
		t.Errorf("TotalAlloc delta = %d, want at least 1 MiB", d.TotalAlloc)
	}
	if d.HeapAlloc != after.HeapAlloc {
		t.Error("Sub should keep the current heap size")
	}
}

func TestMemorySnapshot_SubNeverWraps(t *testing.T) {
	t.Parallel()

	prev := MemorySnapshot{TotalAlloc: 10, NumGC: 5, PauseTotalNs: 7}
	d := MemorySnapshot{TotalAlloc: 3}.Sub(prev)
	if d.TotalAlloc != 0 || d.NumGC != 0 || d.PauseTotalNs != 0 {
		t.Errorf("Sub = %+v, want zero deltas", d)
	}
}
