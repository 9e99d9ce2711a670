package memory

/*
 * ps2emu - Low level memory
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

import (
	"testing"

	"github.com/ps2emu/eecore/register"
)

func TestRegionWordRoundTrip(t *testing.T) {
	r := NewRegion(64)
	if ok := r.Write32(4, 0xDEADBEEF); !ok {
		t.Fatalf("Write32 failed in range")
	}
	v, ok := r.Read32(4)
	if !ok || v != 0xDEADBEEF {
		t.Errorf("Read32 = %08x, %v; want deadbeef, true", v, ok)
	}
}

func TestRegionOutOfRange(t *testing.T) {
	r := NewRegion(16)
	if _, ok := r.Read32(13); ok {
		t.Errorf("Read32 at 13 in a 16 byte region should fail bounds check")
	}
	if ok := r.Write64(9, 0); ok {
		t.Errorf("Write64 at 9 in a 16 byte region should fail bounds check")
	}
}

func TestRegion128RoundTrip(t *testing.T) {
	r := NewRegion(32)
	want := register.Reg{Lo: 0x1122334455667788, Hi: 0x99AABBCCDDEEFF00}
	if ok := r.Write128(16, want); !ok {
		t.Fatalf("Write128 failed in range")
	}
	got, ok := r.Read128(16)
	if !ok || got != want {
		t.Errorf("Read128 = %+v, %v; want %+v, true", got, ok, want)
	}
}

func TestRegionNarrowWidths(t *testing.T) {
	r := NewRegion(8)
	r.Write8(0, 0xAB)
	r.Write16(2, 0xBEEF)
	b, ok := r.Read8(0)
	if !ok || b != 0xAB {
		t.Errorf("Read8 = %02x, %v; want ab, true", b, ok)
	}
	h, ok := r.Read16(2)
	if !ok || h != 0xBEEF {
		t.Errorf("Read16 = %04x, %v; want beef, true", h, ok)
	}
}

func TestNewAllocatesExpectedSizes(t *testing.T) {
	m := New()
	if m.BIOS.Size() != BiosSize {
		t.Errorf("BIOS size = %d, want %d", m.BIOS.Size(), BiosSize)
	}
	if m.EERam.Size() != EERamSize {
		t.Errorf("EE RAM size = %d, want %d", m.EERam.Size(), EERamSize)
	}
	if m.Scratchpad.Size() != ScratchpadSize {
		t.Errorf("Scratchpad size = %d, want %d", m.Scratchpad.Size(), ScratchpadSize)
	}
	if m.IOPRam.Size() != IOPRamSize {
		t.Errorf("IOP RAM size = %d, want %d", m.IOPRam.Size(), IOPRamSize)
	}
}

func TestLoadBIOSMissingFileIsNotFatal(t *testing.T) {
	m := New()
	err := m.LoadBIOS("/nonexistent/path/to/bios.bin")
	if err == nil {
		t.Fatalf("expected error for missing BIOS file")
	}
	// Construction must still proceed with a zeroed BIOS region.
	v, ok := m.BIOS.Read32(0)
	if !ok || v != 0 {
		t.Errorf("BIOS region should remain zeroed, got %08x", v)
	}
}
