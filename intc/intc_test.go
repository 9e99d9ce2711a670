package intc

import "testing"

func TestTriggerSetsStatAndPending(t *testing.T) {
	i := New()
	i.WriteMask(1 << IntVBOn)
	if i.Pending() {
		t.Fatalf("should not be pending before trigger")
	}
	i.Trigger(IntVBOn)
	if !i.Pending() {
		t.Errorf("expected pending after trigger with matching mask bit")
	}
}

func TestWriteStatClearsOnlyWrittenBits(t *testing.T) {
	i := New()
	i.Trigger(IntGS)
	i.Trigger(IntVBOn)
	i.WriteStat(1 << IntGS)
	if i.Stat&(1<<IntGS) != 0 {
		t.Errorf("writing 1 to a stat bit should clear it")
	}
	if i.Stat&(1<<IntVBOn) == 0 {
		t.Errorf("writing 0 to a stat bit should not clear it")
	}
}

func TestWriteMaskToggles(t *testing.T) {
	i := New()
	i.WriteMask(1 << IntGS)
	if i.Mask&(1<<IntGS) == 0 {
		t.Fatalf("expected mask bit set after toggle from 0")
	}
	i.WriteMask(1 << IntGS)
	if i.Mask&(1<<IntGS) != 0 {
		t.Errorf("expected mask bit cleared after second toggle")
	}
}

// Invariant: cause.ip0_pending <=> (stat & mask) != 0 after any read/write/trigger.
func TestPendingInvariant(t *testing.T) {
	i := New()
	ops := []func(){
		func() { i.Trigger(IntTimer0) },
		func() { i.WriteMask(1 << IntTimer0) },
		func() { i.WriteStat(1 << IntTimer0) },
		func() { i.Trigger(IntVU0) },
		func() { i.WriteMask(1 << IntVU0) },
	}
	for _, op := range ops {
		op()
		want := (i.Stat & i.Mask) != 0
		if i.Pending() != want {
			t.Errorf("Pending() = %v, want %v (stat=%x mask=%x)", i.Pending(), want, i.Stat, i.Mask)
		}
	}
}
