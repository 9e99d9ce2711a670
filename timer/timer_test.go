package timer

import "testing"

func TestCounterWrapRaisesOverflow(t *testing.T) {
	c := New()
	c.WriteMode(ModeEnable | ModeOvfIRQ)
	c.Counter = 0xFFFE

	var raised []uint32
	c.Tick(3, 9, func(src uint32) { raised = append(raised, src) })

	if c.Counter > 3 {
		t.Errorf("counter after wrap = %d, want in [0,3]", c.Counter)
	}
	if len(raised) != 1 || raised[0] != 9 {
		t.Errorf("expected exactly one overflow raise of src 9, got %v", raised)
	}
	if c.Mode&ModeOvfFlag == 0 {
		t.Errorf("expected overflow flag latched")
	}
}

func TestCompareInterruptAndZeroReturn(t *testing.T) {
	c := New()
	c.Compare = 10
	c.WriteMode(ModeEnable | ModeCmpIRQ | ModeZeroReturn)

	raisedCount := 0
	c.Tick(10, 1, func(uint32) { raisedCount++ })

	if raisedCount != 1 {
		t.Fatalf("expected one compare interrupt, got %d", raisedCount)
	}
	if c.Counter != 0 {
		t.Errorf("ZRET should reset counter to 0, got %d", c.Counter)
	}

	// Flag stays latched; a second identical tick from 0 reaches compare
	// again but must not re-fire because the flag is still set.
	raisedCount = 0
	c.Tick(10, 1, func(uint32) { raisedCount++ })
	if raisedCount != 0 {
		t.Errorf("compare flag should suppress repeat interrupt, got %d raises", raisedCount)
	}
}

func TestDisabledChannelDoesNotCount(t *testing.T) {
	c := New()
	c.Counter = 100
	c.Tick(50, 0, func(uint32) { t.Errorf("disabled channel must not raise") })
	if c.Counter != 100 {
		t.Errorf("disabled channel counter changed: %d", c.Counter)
	}
}

func TestPrescaleRatios(t *testing.T) {
	c := New()
	c.WriteMode(ModeEnable | 0x1) // CLKS=1 -> ratio 16
	c.Tick(1, 0, func(uint32) {})
	if c.Counter != 16 {
		t.Errorf("ratio-16 tick of 1 cycle = %d, want 16", c.Counter)
	}
}

func TestTimersTickRaisesPerChannel(t *testing.T) {
	ts := NewTimers()
	ts.Channel[2].Compare = 1
	ts.Channel[2].WriteMode(ModeEnable | ModeCmpIRQ)

	var raised []uint32
	ts.Tick(1, 9, func(src uint32) { raised = append(raised, src) })

	if len(raised) != 1 || raised[0] != 11 {
		t.Errorf("expected channel 2 to raise src 11 (9+2), got %v", raised)
	}
}
