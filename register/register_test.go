package register

import "testing"

func TestSetWordSignExtends(t *testing.T) {
	var r Reg
	r.SetWord(-1)
	if r.Lo != 0xFFFFFFFFFFFFFFFF || r.Hi != 0 {
		t.Errorf("SetWord(-1) = %016x %016x", r.Hi, r.Lo)
	}

	r.SetWord(0x1234)
	if r.Lo != 0x1234 || r.Hi != 0 {
		t.Errorf("SetWord(0x1234) = %016x %016x", r.Hi, r.Lo)
	}
}

func TestWordLanes(t *testing.T) {
	r := Reg{Lo: 0x0000000200000001, Hi: 0x0000000400000003}
	for i, want := range []uint32{1, 2, 3, 4} {
		if got := r.Word(i); got != want {
			t.Errorf("Word(%d) = %x, want %x", i, got, want)
		}
	}
}

func TestSetWordLanePreservesOthers(t *testing.T) {
	var r Reg
	for i := range 4 {
		r.SetWordLane(i, uint32(i+1))
	}
	want := Reg{Lo: 0x0000000200000001, Hi: 0x0000000400000003}
	if r != want {
		t.Errorf("SetWordLane result = %+v, want %+v", r, want)
	}
}

func TestFloatLanes(t *testing.T) {
	var r Reg
	r.SetFloat(3, 1.0)
	if r.Float(3) != 1.0 {
		t.Errorf("Float(3) = %v, want 1.0", r.Float(3))
	}
	if r.Word(3) != 0x3F800000 {
		t.Errorf("Word(3) = %08x, want 3f800000", r.Word(3))
	}
}
