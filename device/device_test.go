package device

import "testing"

func TestWordFIFOOverflowAndUnderflow(t *testing.T) {
	f := NewWordFIFO(2)
	if !f.PushWord(1) || !f.PushWord(2) {
		t.Fatalf("expected first two pushes to succeed")
	}
	if f.PushWord(3) {
		t.Errorf("expected push to refuse on a full FIFO")
	}
	v, ok := f.PopWord()
	if !ok || v != 1 {
		t.Errorf("PopWord = %d, %v; want 1, true", v, ok)
	}
	if !f.PushWord(3) {
		t.Errorf("expected push to succeed after a pop frees a slot")
	}
	f.PopWord()
	f.PopWord()
	if _, ok := f.PopWord(); ok {
		t.Errorf("expected pop to refuse on an empty FIFO")
	}
}

func TestSIFDirections(t *testing.T) {
	sif := NewSIF()
	sif.FIFO0.PushWord(0xAA)
	if v, _ := sif.FIFO0.PopWord(); v != 0xAA {
		t.Errorf("SIF0 round trip failed")
	}
	sif.FIFO1.PushWord(0xBB)
	if sif.FIFO0.Len() != 0 || sif.FIFO1.Len() != 1 {
		t.Errorf("SIF0/SIF1 FIFOs should be independent")
	}
}

func TestSIO2RegisterFile(t *testing.T) {
	s := NewSIO2()
	s.Write(3, 0x1234)
	if s.Read(3) != 0x1234 {
		t.Errorf("SIO2 register round trip failed")
	}
	if s.Read(999) != 0 {
		t.Errorf("out of range SIO2 read should return 0")
	}
}
