/*
 * ps2emu - EE CPU: instruction fetch, execute and exception vectoring.
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

// Package cpu interprets the Emotion Engine's MIPS-derived instruction set:
// one instruction per emulated cycle, a single branch-delay slot, COP0
// exception vectoring and inline COP1/COP2 dispatch. The 128 bit register
// file is held as register.Reg quadwords; 32 bit results are written
// sign-extended into the low half.
package cpu

import "log/slog"

// Clock retires cycles instructions, then samples the interrupt predicate
// once for the whole batch and vectors if it holds.
func (c *CPU) Clock(cycles uint32) {
	for range cycles {
		c.step()
	}
	if c.IntPending() {
		c.Exception(ExcInterrupt)
	}
}

// Step retires exactly one instruction.
func (c *CPU) Step() {
	c.step()
}

func (c *CPU) step() {
	c.Instr = c.NextInstr
	c.fetchNext()

	c.branchTaken = false
	c.skipBranchDelay = false

	if c.trace != nil {
		c.trace(c.Instr)
	}

	c.table[c.Instr.Opcode()](c)

	// The zero register absorbs writes.
	c.Regs[0].Lo = 0
	c.Regs[0].Hi = 0

	c.COP0.Regs[Cop0Count]++
}

// fetchNext prefetches the word at PC into the delay-slot latch and
// advances PC.
func (c *CPU) fetchNext() {
	c.NextInstr = Instruction{
		Value: c.bus.Read32(c.PC),
		PC:    c.PC,
	}
	c.PC += 4
}

// branchTo redirects PC and marks the already-prefetched instruction as the
// delay slot. The slot still retires before the target.
func (c *CPU) branchTo(target uint32) {
	c.PC = target
	c.branchTaken = true
	c.NextInstr.IsDelaySlot = true
}

// nullifyDelaySlot discards the prefetched slot instruction, used by the
// likely-branch forms when the branch is not taken.
func (c *CPU) nullifyDelaySlot() {
	c.fetchNext()
	c.skipBranchDelay = true
}

// SetPC redirects execution to addr and refills the prefetch slot, used by
// the monitor and by ELF boot.
func (c *CPU) SetPC(addr uint32) {
	c.PC = addr
	c.fetchNext()
}

// SetIP0Pending drives cause.ip0_pending, the INTC line.
func (c *CPU) SetIP0Pending(v bool) {
	c.COP0.setCauseBit(10, v)
}

// SetIP1Pending drives cause.ip1_pending, the DMAC line.
func (c *CPU) SetIP1Pending(v bool) {
	c.COP0.setCauseBit(11, v)
}

// SetTimerIPPending drives cause.timer_ip_pending, the COP0 internal timer
// line.
func (c *CPU) SetTimerIPPending(v bool) {
	c.COP0.setCauseBit(15, v)
}

// IntPending evaluates the interrupt predicate: an enabled, unmasked cause
// line while interrupts are globally enabled and no exception is being
// serviced.
func (c *CPU) IntPending() bool {
	st := c.COP0.Status()
	if !st.IE() || !st.EIE() || st.EXL() || st.ERL() {
		return false
	}
	cause := c.COP0.Cause()
	return (cause.IP0() && st.IM0()) ||
		(cause.IP1() && st.IM1()) ||
		(cause.TimerIP() && st.IM7())
}

// Exception vectors the CPU: records the cause code, saves EPC and the
// branch-delay flag unless an exception is already being serviced, then
// redirects PC to the vector selected by the kind and status.bev.
func (c *CPU) Exception(kind uint32) {
	c.COP0.setExcCode(kind)

	if !c.COP0.Status().EXL() {
		epc := c.Instr.PC
		if c.Instr.IsDelaySlot {
			epc -= 4
		}
		c.COP0.Regs[Cop0EPC] = epc
		c.COP0.setCauseBit(31, c.Instr.IsDelaySlot)
		c.COP0.setStatusBit(1, true)
	}

	var vector uint32
	switch kind {
	case ExcTLBLoad, ExcTLBStore:
		vector = vecTLBRefill
	case ExcInterrupt:
		vector = vecInterrupt
	default:
		vector = vecCommon
	}

	base := uint32(vecBaseRAM)
	if c.COP0.Status().BEV() {
		base = vecBaseBIOS
	}

	c.PC = base + vector
	c.fetchNext()
}

func (c *CPU) opUnknown() {
	slog.Warn("unimplemented EE instruction",
		"opcode", c.Instr.Opcode(), "word", c.Instr.Value, "pc", c.Instr.PC)
}
