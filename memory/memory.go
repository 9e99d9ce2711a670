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

// Package memory holds the flat storage regions the bus addresses: the BIOS
// ROM, EE RAM, EE scratchpad and the IOP RAM mirror. Accessors are
// bounds-checked and byte-addressable at 8/16/32/64/128 bit widths.
package memory

import (
	"encoding/binary"
	"os"

	"github.com/ps2emu/eecore/register"
)

const (
	BiosSize       = 4 * 1024 * 1024
	EERamSize      = 32 * 1024 * 1024
	ScratchpadSize = 16 * 1024
	IOPRamSize     = 2 * 1024 * 1024
)

// Region is a bounds-checked flat byte store.
type Region struct {
	data []byte
}

// NewRegion allocates a zeroed region of size bytes.
func NewRegion(size int) *Region {
	return &Region{data: make([]byte, size)}
}

// Size returns the region's size in bytes.
func (r *Region) Size() uint32 {
	return uint32(len(r.data))
}

// Raw exposes the backing array for bulk loads (e.g. BIOS image load).
func (r *Region) Raw() []byte {
	return r.data
}

func (r *Region) fits(addr uint32, width uint32) bool {
	return uint64(addr)+uint64(width) <= uint64(len(r.data))
}

// Read8 returns a byte at addr; ok is false when addr is out of range.
func (r *Region) Read8(addr uint32) (value uint8, ok bool) {
	if !r.fits(addr, 1) {
		return 0, false
	}
	return r.data[addr], true
}

// Write8 stores a byte at addr; ok is false when addr is out of range.
func (r *Region) Write8(addr uint32, value uint8) (ok bool) {
	if !r.fits(addr, 1) {
		return false
	}
	r.data[addr] = value
	return true
}

// Read16 returns a little-endian halfword at addr.
func (r *Region) Read16(addr uint32) (value uint16, ok bool) {
	if !r.fits(addr, 2) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(r.data[addr:]), true
}

// Write16 stores a little-endian halfword at addr.
func (r *Region) Write16(addr uint32, value uint16) (ok bool) {
	if !r.fits(addr, 2) {
		return false
	}
	binary.LittleEndian.PutUint16(r.data[addr:], value)
	return true
}

// Read32 returns a little-endian word at addr.
func (r *Region) Read32(addr uint32) (value uint32, ok bool) {
	if !r.fits(addr, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(r.data[addr:]), true
}

// Write32 stores a little-endian word at addr.
func (r *Region) Write32(addr uint32, value uint32) (ok bool) {
	if !r.fits(addr, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(r.data[addr:], value)
	return true
}

// Read64 returns a little-endian doubleword at addr.
func (r *Region) Read64(addr uint32) (value uint64, ok bool) {
	if !r.fits(addr, 8) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(r.data[addr:]), true
}

// Write64 stores a little-endian doubleword at addr.
func (r *Region) Write64(addr uint32, value uint64) (ok bool) {
	if !r.fits(addr, 8) {
		return false
	}
	binary.LittleEndian.PutUint64(r.data[addr:], value)
	return true
}

// Read128 returns a little-endian quadword at addr as a register.Reg.
func (r *Region) Read128(addr uint32) (value register.Reg, ok bool) {
	if !r.fits(addr, 16) {
		return register.Reg{}, false
	}
	lo := binary.LittleEndian.Uint64(r.data[addr:])
	hi := binary.LittleEndian.Uint64(r.data[addr+8:])
	return register.Reg{Lo: lo, Hi: hi}, true
}

// Write128 stores a little-endian quadword at addr.
func (r *Region) Write128(addr uint32, value register.Reg) (ok bool) {
	if !r.fits(addr, 16) {
		return false
	}
	binary.LittleEndian.PutUint64(r.data[addr:], value.Lo)
	binary.LittleEndian.PutUint64(r.data[addr+8:], value.Hi)
	return true
}

// Memory is the set of flat storage regions owned exclusively by the bus.
type Memory struct {
	BIOS       *Region
	EERam      *Region
	Scratchpad *Region
	IOPRam     *Region
}

// New allocates the four flat regions the PS2 bus maps.
func New() *Memory {
	return &Memory{
		BIOS:       NewRegion(BiosSize),
		EERam:      NewRegion(EERamSize),
		Scratchpad: NewRegion(ScratchpadSize),
		IOPRam:     NewRegion(IOPRamSize),
	}
}

// LoadBIOS reads a flat BIOS image into the BIOS region. When the file
// cannot be read it returns the error and the region retains whatever was
// already there (zeros, on a fresh Memory); whether that is fatal is up to
// the caller. A file shorter than the region is not an error: only its
// bytes are copied and the rest of the region is left as it was.
func (m *Memory) LoadBIOS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	copy(m.BIOS.data, data)
	return nil
}
