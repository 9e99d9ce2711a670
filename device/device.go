/*
device - out-of-scope collaborator port stubs

	Copyright (c) 2024, Richard Cornwell

	Permission is hereby granted, free of charge, to any person obtaining a
	copy of this software and associated documentation files (the "Software"),
	to deal in the Software without restriction, including without limitation
	the rights to use, copy, modify, merge, publish, distribute, sublicense,
	and/or sell copies of the Software, and to permit persons to whom the
	Software is furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in
	all copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
	RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
	IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
	CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/
// Package device holds narrow capability interfaces for the collaborators
// that stay out of scope here: the IOP subprocessor, the SIF inter-processor
// FIFOs, the SIO2 gamepad protocol and the IPU video decoder. Only the
// byte/word port surface the DMAC and bus need to call is modeled here;
// there is no IOP core, no gamepad protocol state machine, no video codec.
package device

// FIFOWord is a bounded word-granularity FIFO, the shape every out-of-scope
// peripheral surface exposes to the DMAC: push may refuse on overflow, pop
// may refuse on underflow.
type FIFOWord interface {
	PushWord(v uint32) bool
	PopWord() (uint32, bool)
	Len() int
	Cap() int
}

// wordFIFO is a ring-buffer backed FIFOWord of fixed capacity.
type wordFIFO struct {
	buf      []uint32
	head     int
	count    int
	capacity int
}

// NewWordFIFO returns a FIFOWord with room for capacity words.
func NewWordFIFO(capacity int) *wordFIFO {
	return &wordFIFO{buf: make([]uint32, capacity), capacity: capacity}
}

func (f *wordFIFO) Len() int {
	return f.count
}

func (f *wordFIFO) Cap() int {
	return f.capacity
}

func (f *wordFIFO) PushWord(v uint32) bool {
	if f.count == f.capacity {
		return false
	}
	f.buf[(f.head+f.count)%f.capacity] = v
	f.count++
	return true
}

func (f *wordFIFO) PopWord() (uint32, bool) {
	if f.count == 0 {
		return 0, false
	}
	v := f.buf[f.head]
	f.head = (f.head + 1) % f.capacity
	f.count--
	return v, true
}

// SIF models the two inter-processor FIFOs the DMAC's SIF0/SIF1 channels
// drain and fill. SIF0 carries IOP->EE traffic, SIF1 EE->IOP.
type SIF struct {
	FIFO0 *wordFIFO // IOP -> EE
	FIFO1 *wordFIFO // EE -> IOP
}

// NewSIF returns a SIF with 32 word deep FIFOs in each direction.
func NewSIF() *SIF {
	return &SIF{
		FIFO0: NewWordFIFO(32),
		FIFO1: NewWordFIFO(32),
	}
}

// IPU is a byte/word port stub: the IPU video decoder is out of scope, but
// the bus still needs somewhere to route its FIFO register range.
type IPU struct {
	FIFO *wordFIFO
}

// NewIPU returns an IPU stub with an empty input FIFO.
func NewIPU() *IPU {
	return &IPU{FIFO: NewWordFIFO(8)}
}

// SIO2 models the gamepad protocol controller register surface as a flat
// register file; the SIO2 protocol itself (out of scope) is never driven.
type SIO2 struct {
	Regs [32]uint32
}

// NewSIO2 returns a zeroed SIO2 register file.
func NewSIO2() *SIO2 {
	return &SIO2{}
}

// Read reads a register by word index.
func (s *SIO2) Read(idx uint32) uint32 {
	if int(idx) >= len(s.Regs) {
		return 0
	}
	return s.Regs[idx]
}

// Write writes a register by word index.
func (s *SIO2) Write(idx uint32, v uint32) {
	if int(idx) < len(s.Regs) {
		s.Regs[idx] = v
	}
}
