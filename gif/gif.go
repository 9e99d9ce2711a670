/*
 * ps2emu - GIF (Graphics Interface) protocol front-end.
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

// Package gif parses GIFtags from a bounded FIFO and demultiplexes
// PACKED/IMAGE payloads into GS register writes.
package gif

import (
	"math"

	"github.com/ps2emu/eecore/register"
)

// Tag formats (the flg field).
const (
	FormatPacked = iota
	FormatReglist
	FormatImage
	FormatDisable
)

// PACKED register descriptors.
const (
	DescPRIM  = 0
	DescRGBAQ = 1
	DescST    = 2
	DescXYZF2 = 4
	DescXYZ2  = 5
	DescXYZF3 = 12
	DescXYZ3  = 13
	DescAD    = 14
	DescNOP   = 15
)

// GSSink is the narrow capability the GIF needs from the Graphics
// Synthesizer: register writes by address, and the raw hardware-register
// IMAGE path.
type GSSink interface {
	WriteReg(addr uint32, data uint64)
	WriteHWReg(data uint64)
}

// wordQueue is the util::Queue<u32,64> equivalent: a ring buffer holding up
// to 64 u32 slots (16 qwords), pushed/popped a qword (4 slots) at a time.
type wordQueue struct {
	buf   [64]uint32
	head  int
	count int
}

func (q *wordQueue) len() int { return q.count }

func (q *wordQueue) pushQword(v register.Reg) bool {
	if q.count+4 > len(q.buf) {
		return false
	}
	for i := range 4 {
		q.buf[(q.head+q.count)%len(q.buf)] = v.Word(i)
		q.count++
	}
	return true
}

func (q *wordQueue) peekQword() (register.Reg, bool) {
	if q.count < 4 {
		return register.Reg{}, false
	}
	var r register.Reg
	for i := range 4 {
		r.SetWordLane(i, q.buf[(q.head+i)%len(q.buf)])
	}
	return r, true
}

func (q *wordQueue) popQword() (register.Reg, bool) {
	r, ok := q.peekQword()
	if !ok {
		return r, false
	}
	q.head = (q.head + 4) % len(q.buf)
	q.count -= 4
	return r, true
}

// state is the GIF's two-state consumer.
type state int

const (
	stateAwaitingTag state = iota
	stateStreaming
)

// Tag is a decoded GIFtag.
type Tag register.Reg

func (t Tag) Nloop() uint32 { return uint32(t.Lo) & 0x7FFF }
func (t Tag) EOP() bool     { return (t.Lo>>15)&1 != 0 }
func (t Tag) Pre() bool     { return (t.Lo>>46)&1 != 0 }
func (t Tag) Prim() uint32  { return uint32((t.Lo >> 47) & 0x7FF) }
func (t Tag) Flg() uint32   { return uint32((t.Lo >> 58) & 0x3) }
func (t Tag) Nreg() uint32  { return uint32((t.Lo >> 60) & 0xF) }
func (t Tag) Regs() uint64  { return t.Hi }

// GIF is the PATH3 FIFO consumer.
type GIF struct {
	Control uint32
	Mode    uint32
	Status  uint32

	fifo wordQueue

	tag       Tag
	state     state
	dataCount uint32
	regCount  uint32
	internalQ float32

	gs GSSink
}

// New returns a freshly reset GIF bound to gs.
func New(gs GSSink) *GIF {
	return &GIF{gs: gs, internalQ: 1.0}
}

// ReadReg reads a GIF MMIO register by byte offset within its register
// block. Only GIF_STAT carries live state: the qword count of the FIFO.
func (g *GIF) ReadReg(offset uint32) uint32 {
	switch (offset & 0xF0) >> 4 {
	case 2:
		g.Status = uint32(g.fifo.len()/4) << 24
		return g.Status
	default:
		return 0
	}
}

// WriteReg writes a GIF MMIO register. Setting the reset bit in GIF_CTRL
// clears the FIFO and the tag state machine.
func (g *GIF) WriteReg(offset, data uint32) {
	switch (offset & 0xF0) >> 4 {
	case 0:
		g.Control = data
		if data&1 != 0 {
			*g = GIF{gs: g.gs, internalQ: 1.0}
		}
	case 1:
		g.Mode = data
	}
}

// WritePath3 is the DMAC's entry point: enqueue a qword, returning false if
// the FIFO is full.
func (g *GIF) WritePath3(q register.Reg) bool {
	return g.fifo.pushQword(q)
}

// Tick consumes up to cycles qwords from the FIFO, advancing the
// AwaitingTag/Streaming state machine.
func (g *GIF) Tick(cycles uint32) {
	for range cycles {
		if !g.step() {
			return
		}
	}
}

func (g *GIF) step() bool {
	switch g.state {
	case stateAwaitingTag:
		q, ok := g.fifo.peekQword()
		if !ok {
			return false
		}
		g.tag = Tag(q)
		g.dataCount = g.tag.Nloop()
		g.regCount = g.tag.Nreg()
		if g.tag.Pre() {
			g.gs.WriteReg(0x00, uint64(g.tag.Prim()))
		}
		g.internalQ = 1.0
		g.fifo.popQword()
		if g.dataCount == 0 {
			g.state = stateAwaitingTag
			return true
		}
		g.state = stateStreaming
		return true

	case stateStreaming:
		switch g.tag.Flg() {
		case FormatPacked:
			return g.stepPacked()
		case FormatImage:
			q, ok := g.fifo.popQword()
			if !ok {
				return false
			}
			g.gs.WriteHWReg(q.Lo)
			g.gs.WriteHWReg(q.Hi)
			g.dataCount--
			if g.dataCount == 0 {
				g.state = stateAwaitingTag
			}
			return true
		default: // REGLIST, DISABLE: accept and drop.
			_, ok := g.fifo.popQword()
			if !ok {
				return false
			}
			g.dataCount--
			if g.dataCount == 0 {
				g.state = stateAwaitingTag
			}
			return true
		}
	}
	return false
}

func (g *GIF) stepPacked() bool {
	q, ok := g.fifo.peekQword()
	if !ok {
		return false
	}
	shift := 4 * (g.tag.Nreg() - g.regCount)
	desc := (g.tag.Regs() >> shift) & 0xF

	g.applyPacked(uint8(desc), q)

	g.fifo.popQword()
	g.regCount--
	if g.regCount == 0 {
		g.dataCount--
		g.regCount = g.tag.Nreg()
		if g.dataCount == 0 {
			g.state = stateAwaitingTag
		}
	}
	return true
}

func bits(v uint64, lo, n int) uint64 {
	return (v >> uint(lo)) & ((uint64(1) << uint(n)) - 1)
}

func qwordBits(q register.Reg, lo, n int) uint64 {
	if lo+n <= 64 {
		return bits(q.Lo, lo, n)
	}
	if lo >= 64 {
		return bits(q.Hi, lo-64, n)
	}
	loPart := bits(q.Lo, lo, 64-lo)
	hiPart := bits(q.Hi, 0, n-(64-lo))
	return loPart | (hiPart << uint(64-lo))
}

func (g *GIF) applyPacked(desc uint8, q register.Reg) {
	switch desc {
	case DescPRIM:
		g.gs.WriteReg(0x00, qwordBits(q, 0, 11))
	case DescRGBAQ:
		r := qwordBits(q, 0, 8)
		gg := qwordBits(q, 32, 8)
		b := qwordBits(q, 64, 8)
		a := qwordBits(q, 96, 8)
		qbits := uint64(float32Bits(g.internalQ))
		data := r | (gg << 8) | (b << 16) | (a << 24) | (qbits << 32)
		g.gs.WriteReg(0x01, data)
	case DescST:
		s := qwordBits(q, 0, 32)
		t := qwordBits(q, 32, 32)
		qv := qwordBits(q, 64, 32)
		g.internalQ = float32fromBits(uint32(qv))
		g.gs.WriteReg(0x02, s|(t<<32))
	case DescXYZF2, DescXYZF3:
		x := qwordBits(q, 0, 16)
		y := qwordBits(q, 32, 16)
		z := qwordBits(q, 68, 24)
		f := qwordBits(q, 100, 8)
		data := x | (y << 16) | (z << 32) | (f << 56)
		// XYZF3 never draws; XYZF2 is demoted to it by the disable bit.
		reg := uint32(0x04)
		if desc == DescXYZF3 || qwordBits(q, 111, 1) != 0 {
			reg = 0x0C
		}
		g.gs.WriteReg(reg, data)
	case DescXYZ2, DescXYZ3:
		x := qwordBits(q, 0, 16)
		y := qwordBits(q, 32, 16)
		z := qwordBits(q, 64, 32)
		data := x | (y << 16) | (z << 32)
		reg := uint32(0x05)
		if desc == DescXYZ3 || qwordBits(q, 111, 1) != 0 {
			reg = 0x0D
		}
		g.gs.WriteReg(reg, data)
	case DescAD:
		data := qwordBits(q, 0, 64)
		addr := uint32(qwordBits(q, 64, 8))
		g.gs.WriteReg(addr, data)
	case DescNOP:
		// No operation.
	}
}

func float32fromBits(b uint32) float32 {
	return math.Float32frombits(b)
}

func float32Bits(f float32) uint32 {
	return math.Float32bits(f)
}
