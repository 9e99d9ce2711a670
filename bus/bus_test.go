package bus

import (
	"bytes"
	"testing"

	"github.com/ps2emu/eecore/dmac"
	"github.com/ps2emu/eecore/register"
)

// TestKSEG1BIOSRead reads the reset vector through the KSEG1 mirror.
func TestKSEG1BIOSRead(t *testing.T) {
	b := New(nil)
	b.Mem.BIOS.Write32(0, 0xDEADBEEF)

	if got := b.Read32(0xBFC00000); got != 0xDEADBEEF {
		t.Errorf("KSEG1 BIOS read = %#x, want deadbeef", got)
	}
}

func TestKUSEGKSEG0KSEG1MirrorInvariant(t *testing.T) {
	b := New(nil)
	b.Mem.EERam.Write32(0x100, 0x12345678)

	for _, addr := range []uint32{0x00000100, 0x80000100, 0xA0000100} {
		if got := b.Read32(addr); got != 0x12345678 {
			t.Errorf("mirror at %#08x = %#x, want 12345678", addr, got)
		}
	}
}

func TestScratchpadIsNotMaskTranslated(t *testing.T) {
	b := New(nil)
	b.Write32(0x70000010, 0xCAFEBABE)
	if got := b.Read32(0x70000010); got != 0xCAFEBABE {
		t.Errorf("scratchpad round trip = %#x, want cafebabe", got)
	}
}

func TestConsoleByteOut(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf)
	b.Write8(0x1000F180, 'A')
	b.Write8(0x1000F180, 'B')
	if buf.String() != "AB" {
		t.Errorf("console output = %q, want AB", buf.String())
	}
}

func TestMCHRICMProbeSequence(t *testing.T) {
	b := New(nil)
	ricm := uint32(0x21) << 16 // SA=0x21, SOP=0
	b.Write32(0x1000F430, ricm)

	if got := b.Read32(0x1000F440); got != 0x1F {
		t.Errorf("first SA=0x21 probe = %#x, want 0x1f", got)
	}
	if got := b.Read32(0x1000F440); got != 0x1F {
		t.Errorf("second SA=0x21 probe = %#x, want 0x1f", got)
	}
	if got := b.Read32(0x1000F440); got != 0 {
		t.Errorf("third SA=0x21 probe = %#x, want 0", got)
	}
}

func TestDMACChannelRegisterRoundTrip(t *testing.T) {
	b := New(nil)
	b.Write32(0x10008010, 0xFFFFFFFF) // channel 0 MADR (offset 0x10 = reg 1)
	if got := b.Read32(0x10008010); got != 0x01FFFFF0 {
		t.Errorf("MADR round trip = %#x, want 01fffff0", got)
	}
	if b.DMAC.Channels[dmac.ChanVIF0].Address != 0x01FFFFF0 {
		t.Errorf("channel 0 address not updated via bus write")
	}
}

func TestGIFPath3Write128(t *testing.T) {
	b := New(nil)
	q := register.Reg{Lo: 1, Hi: 2}
	b.Write128(0x10006000, q)
}

func TestVUMemoryQwordRoundTrip(t *testing.T) {
	b := New(nil)
	q := register.Reg{Lo: 0x1122334455667788, Hi: 0x99AABBCCDDEEFF00}
	// bit15=0 (VU0), bit14=1 (data), local offset 0x10.
	addr := uint32(0x11000000) | (1 << 14) | 0x10
	b.Write128(addr, q)
	if got := b.Read128(addr); got != q {
		t.Errorf("VU data qword round trip = %+v, want %+v", got, q)
	}
}

func TestDMACSavedTagAddressRoundTrip(t *testing.T) {
	b := New(nil)
	b.Write32(0x10008040, 0x1230) // channel 0 ASR0 (offset 0x40 = reg 4)
	b.Write32(0x10008050, 0x4560) // channel 0 ASR1
	if got := b.Read32(0x10008040); got != 0x1230 {
		t.Errorf("ASR0 round trip = %#x, want 0x1230", got)
	}
	if got := b.Read32(0x10008050); got != 0x4560 {
		t.Errorf("ASR1 round trip = %#x, want 0x4560", got)
	}
	if b.DMAC.Channels[dmac.ChanVIF0].SavedTagAddress[0].Value != 0x1230 {
		t.Errorf("channel 0 saved tag address not updated via bus write")
	}
}

func TestSIO2RegisterRangeRoundTrip(t *testing.T) {
	b := New(nil)
	// Both ends of the register block dispatch to SIO2, not the unmapped
	// path.
	b.Write32(0x1F808200, 0x11111111)
	b.Write32(0x1F80826C, 0x22222222)
	if got := b.Read32(0x1F808200); got != 0x11111111 {
		t.Errorf("SIO2 word 0 round trip = %#x", got)
	}
	if got := b.Read32(0x1F80826C); got != 0x22222222 {
		t.Errorf("SIO2 word 27 round trip = %#x", got)
	}
}
