/*
 * ps2emu - Interrupt controller.
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

// Package intc implements the Emotion Engine's 15 source interrupt latch:
// stat/mask registers and the cause.ip0_pending recompute that gates COP0's
// interrupt predicate.
package intc

// Interrupt source numbers.
const (
	IntGS = iota
	IntSBUS
	IntVBOn
	IntVBOff
	IntVIF0
	IntVIF1
	IntVU0
	IntVU1
	IntIPU
	IntTimer0
	IntTimer1
	IntTimer2
	IntTimer3
	IntSFIFO
	IntVU0WD
)

// INTC latches pending interrupt sources and the mask that enables them.
type INTC struct {
	Stat uint32 // 15 source-pending bits
	Mask uint32 // 15 enable bits
}

// New returns a freshly reset interrupt controller.
func New() *INTC {
	return &INTC{}
}

// Pending reports whether any unmasked source is latched: the value that
// drives COP0 cause.ip0_pending.
func (i *INTC) Pending() bool {
	return (i.Stat & i.Mask) != 0
}

// Trigger latches source src.
func (i *INTC) Trigger(src uint32) {
	i.Stat |= 1 << src
}

// ReadStat returns the stat register.
func (i *INTC) ReadStat() uint32 {
	return i.Stat
}

// ReadMask returns the mask register.
func (i *INTC) ReadMask() uint32 {
	return i.Mask
}

// WriteStat clears any bit set in value (write-one-to-clear).
func (i *INTC) WriteStat(value uint32) {
	i.Stat &^= value
}

// WriteMask toggles any bit set in value.
func (i *INTC) WriteMask(value uint32) {
	i.Mask ^= value
}
