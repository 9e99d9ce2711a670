package vu

import (
	"testing"

	"github.com/ps2emu/eecore/register"
)

func TestNewVF0IsHomogeneousOne(t *testing.T) {
	v := New()
	for i, want := range []float32{0, 0, 0, 1.0} {
		if got := v.Regs.VF[0].Lane(i); got != want {
			t.Errorf("vf[0].lane(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestCodeDataMemoryWraps(t *testing.T) {
	v := New()
	v.WriteCode(16*1024+4, 0xDEADBEEF)
	if got := v.ReadCode(4); got != 0xDEADBEEF {
		t.Errorf("code memory should wrap at 16KiB, got %08x", got)
	}
	v.WriteData(16*1024+8, 0xCAFEF00D)
	if got := v.ReadData(8); got != 0xCAFEF00D {
		t.Errorf("data memory should wrap at 16KiB, got %08x", got)
	}
}

func TestQMFC2QMTC2RoundTrip(t *testing.T) {
	v := New()
	val := register.Reg{Lo: 0x1122334455667788, Hi: 0x99AABBCCDDEEFF00}
	v.QMTC2(5, val)
	if got := v.QMFC2(5); got != val {
		t.Errorf("QMFC2(QMTC2(val)) = %+v, want %+v", got, val)
	}
}

func TestCFC2CTC2RoundTrip(t *testing.T) {
	v := New()
	v.CTC2(3, 0x1234)
	if got := v.CFC2(3); got != 0x1234 {
		t.Errorf("vi[3] round trip = %d, want 4660", got)
	}
	v.CTC2(20, 0xABCDEF01)
	rawCtrl20 := uint32(0xABCDEF01)
	if got := v.CFC2(20); got != int32(rawCtrl20) {
		t.Errorf("control[4] round trip = %#x, want abcdef01", uint32(got))
	}
}

func TestVSUBLaneMask(t *testing.T) {
	v := New()
	for i := 0; i < 4; i++ {
		v.Regs.VF[1].SetLane(i, 10)
		v.Regs.VF[2].SetLane(i, 3)
	}
	// dest = 0b1010: select x (bit3) and z (bit1).
	v.VSUB(4, 1, 2, 0b1010)
	want := []float32{7, 0, 7, 0}
	for i, w := range want {
		if got := v.Regs.VF[4].Lane(i); got != w {
			t.Errorf("vf[4].lane(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestVSQIStoresAndPostIncrements(t *testing.T) {
	v := New()
	for i := 0; i < 4; i++ {
		v.Regs.VF[7].SetLane(i, float32(i+1))
	}
	v.Regs.VI[6] = 0x10
	v.VSQI(7, 6, 0b1111)

	addr := uint32(0x10) * 16
	for i := 0; i < 4; i++ {
		got := v.ReadData(addr + uint32(i)*4)
		want := v.Regs.VF[7].Word(i)
		if got != want {
			t.Errorf("data[%d] = %08x, want %08x", i, got, want)
		}
	}
	if v.Regs.VI[6] != 0x11 {
		t.Errorf("vi[6] post-increment = %d, want 17", v.Regs.VI[6])
	}
}

func TestVSQINoopBeyondDataLimit(t *testing.T) {
	v := New()
	v.Regs.VI[2] = 0x100 // address 0x1000 > 0xFF0
	v.VSQI(0, 2, 0b1111)
	if v.Regs.VI[2] != 0x100 {
		t.Errorf("out-of-range VSQI should not post-increment vi[it]")
	}
}

func TestVISWRLaneMask(t *testing.T) {
	v := New()
	v.Regs.VI[1] = 0x20 // data address 0x200
	v.Regs.VI[9] = 0xBEEF
	// dest selects only y (bit 2) per the x=bit3..w=bit0 convention.
	v.VISWR(1, 9, 0b0100)

	addr := uint32(0x20) * 16
	if got := v.ReadData(addr + 4); got != 0xBEEF {
		t.Errorf("selected lane y = %08x, want 0000beef", got)
	}
	if got := v.ReadData(addr); got != 0 {
		t.Errorf("unselected lane x should remain 0, got %08x", got)
	}
}

func TestVF0AbsorbsWrites(t *testing.T) {
	v := New()
	v.QMTC2(0, register.Reg{Lo: ^uint64(0), Hi: ^uint64(0)})
	want := []float32{0, 0, 0, 1}
	for i, w := range want {
		if got := v.Regs.VF[0].Lane(i); got != w {
			t.Errorf("vf[0].lane(%d) = %v after QMTC2, want %v", i, got, w)
		}
	}

	v.Regs.VF[1].SetLane(0, 5)
	v.VSUB(0, 1, 2, 0b1111)
	for i, w := range want {
		if got := v.Regs.VF[0].Lane(i); got != w {
			t.Errorf("vf[0].lane(%d) = %v after VSUB, want %v", i, got, w)
		}
	}
}
