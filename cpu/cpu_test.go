/*
 * ps2emu - EE CPU tests.
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

package cpu_test

import (
	"testing"

	"github.com/ps2emu/eecore/bus"
	"github.com/ps2emu/eecore/cpu"
	"github.com/ps2emu/eecore/register"
)

// MIPS encoders for the handful of instructions the tests assemble.
func encI(op, rs, rt uint32, imm uint16) uint32 {
	return op<<26 | rs<<21 | rt<<16 | uint32(imm)
}

func encR(rs, rt, rd, sa, funct uint32) uint32 {
	return rs<<21 | rt<<16 | rd<<11 | sa<<6 | funct
}

const (
	opORI   = 0x0D
	opADDIU = 0x09
	opLUI   = 0x0F
	opBEQ   = 0x04
	opLW    = 0x23
	opSH    = 0x29
	opLQ    = 0x1E
	opSQ    = 0x1F

	fnDIV  = 0x1A
	fnDIVU = 0x1B
	fnMFHI = 0x10
	fnMFLO = 0x12
)

// newCPU builds a CPU over a real bus with the given words planted at the
// reset vector.
func newCPU(t *testing.T, words ...uint32) (*cpu.CPU, *bus.Bus) {
	t.Helper()
	b := bus.New(nil)
	for i, w := range words {
		if ok := b.Mem.BIOS.Write32(uint32(i)*4, w); !ok {
			t.Fatalf("BIOS write %d failed", i)
		}
	}
	c := cpu.New(b, b.VU[0])
	return c, b
}

func TestZeroRegisterImmutable(t *testing.T) {
	// ORI $zero, $zero, 0xFFFF
	c, _ := newCPU(t, encI(opORI, 0, 0, 0xFFFF))
	c.Step()
	if c.Regs[0].Lo != 0 || c.Regs[0].Hi != 0 {
		t.Errorf("zero register modified: %#x %#x", c.Regs[0].Hi, c.Regs[0].Lo)
	}
}

func TestKSEG1BiosRead(t *testing.T) {
	b := bus.New(nil)
	b.Mem.BIOS.Write32(0, 0xDEADBEEF)
	b.Mem.BIOS.Write32(0x100, encI(opLUI, 0, 8, 0xBFC0)) // LUI $t0, 0xBFC0
	b.Mem.BIOS.Write32(0x104, encI(opLW, 8, 2, 0))       // LW $v0, 0($t0)
	c := cpu.New(b, b.VU[0])
	c.SetPC(0xBFC00100)
	c.Step()
	c.Step()
	if got := c.Regs[2].Lo; got != 0xFFFFFFFFDEADBEEF {
		t.Errorf("LW from KSEG1 BIOS = %#x, want sign-extended 0xDEADBEEF", got)
	}
}

func TestDelaySlotTakenBranch(t *testing.T) {
	c, _ := newCPU(t,
		encI(opBEQ, 0, 0, 2),       // BEQ $zero, $zero, +8 (to the fourth word)
		encI(opORI, 0, 8, 1),       // ORI $t0, $zero, 1 (delay slot)
		encI(opORI, 0, 9, 2),       // ORI $t1, $zero, 2 (skipped)
		encI(opORI, 0, 10, 3),      // ORI $t2, $zero, 3 (branch target)
	)
	c.Step() // BEQ
	c.Step() // delay slot
	c.Step() // target
	if got := c.Regs[8].Lo; got != 1 {
		t.Errorf("delay slot did not run: t0 = %d", got)
	}
	if got := c.Regs[9].Lo; got != 0 {
		t.Errorf("skipped instruction ran: t1 = %d", got)
	}
	if got := c.Regs[10].Lo; got != 3 {
		t.Errorf("branch target did not run: t2 = %d", got)
	}
}

func TestLikelyBranchNullifiesSlot(t *testing.T) {
	c, _ := newCPU(t,
		encI(0x15, 0, 0, 1),   // BNEL $zero, $zero (never taken)
		encI(opORI, 0, 8, 1),  // nullified slot
		encI(opORI, 0, 9, 2),  // runs
	)
	c.Step()
	c.Step()
	if c.Regs[8].Lo != 0 {
		t.Error("likely branch did not nullify its delay slot")
	}
	if c.Regs[9].Lo != 2 {
		t.Error("instruction after nullified slot did not run")
	}
}

func TestImmediateRoundTrips(t *testing.T) {
	c, _ := newCPU(t,
		encI(opADDIU, 0, 8, 0x8000), // ADDIU $t0, $zero, -0x8000
		encI(opLUI, 0, 9, 0x8000),   // LUI $t1, 0x8000
	)
	c.Step()
	c.Step()
	if got := c.Regs[8].Lo; got != 0xFFFFFFFFFFFF8000 {
		t.Errorf("ADDIU sign extension = %#x", got)
	}
	if got := c.Regs[9].Lo; got != 0xFFFFFFFF80000000 {
		t.Errorf("LUI sign extension = %#x", got)
	}
}

func TestDivQuirks(t *testing.T) {
	c, _ := newCPU(t,
		encI(opLUI, 0, 8, 0x8000),     // t0 = 0x80000000 (MIN_INT)
		encI(opADDIU, 0, 9, 0xFFFF),   // t1 = -1
		encR(8, 9, 0, 0, fnDIV),       // DIV t0, t1
		encR(0, 0, 10, 0, fnMFHI),     // t2 = hi
		encR(0, 0, 11, 0, fnMFLO),     // t3 = lo
	)
	for range 5 {
		c.Step()
	}
	if got := c.Regs[10].Lo; got != 0 {
		t.Errorf("MIN/-1 hi = %#x, want 0", got)
	}
	if got := c.Regs[11].Lo; got != 0xFFFFFFFF80000000 {
		t.Errorf("MIN/-1 lo = %#x, want MIN_INT", got)
	}
}

func TestDivByZero(t *testing.T) {
	c, _ := newCPU(t,
		encI(opADDIU, 0, 8, 7),    // t0 = 7
		encR(8, 0, 0, 0, fnDIV),   // DIV t0, zero
		encR(0, 0, 10, 0, fnMFHI),
		encR(0, 0, 11, 0, fnMFLO),
	)
	for range 4 {
		c.Step()
	}
	if got := c.Regs[10].Lo; got != 7 {
		t.Errorf("div-zero hi = %#x, want dividend", got)
	}
	if got := int64(c.Regs[11].Lo); got != -1 {
		t.Errorf("div-zero lo = %#x, want -1", got)
	}
}

func TestDivuByZero(t *testing.T) {
	c, _ := newCPU(t,
		encI(opADDIU, 0, 8, 9),
		encR(8, 0, 0, 0, fnDIVU),
		encR(0, 0, 10, 0, fnMFHI),
		encR(0, 0, 11, 0, fnMFLO),
	)
	for range 4 {
		c.Step()
	}
	if got := c.Regs[10].Lo; got != 9 {
		t.Errorf("divu-zero hi = %#x, want dividend", got)
	}
	if got := uint32(c.Regs[11].Lo); got != 0xFFFFFFFF {
		t.Errorf("divu-zero lo32 = %#x, want 0xFFFFFFFF", got)
	}
}

func TestMisalignedStoreRaises(t *testing.T) {
	c, b := newCPU(t,
		encI(opADDIU, 0, 8, 0x1001), // odd address
		encI(opSH, 8, 9, 0),         // SH $t1, 0($t0)
	)
	b.Mem.EERam.Write16(0x1000, 0x5555)
	c.Step()
	faultPC := c.NextInstr.PC
	c.Step()
	if got := c.COP0.Cause().ExcCode(); got != cpu.ExcAddrErrorStore {
		t.Fatalf("exccode = %d, want %d", got, cpu.ExcAddrErrorStore)
	}
	if got := c.COP0.Regs[cpu.Cop0EPC]; got != faultPC {
		t.Errorf("epc = %#x, want faulting pc %#x", got, faultPC)
	}
	if v, _ := b.Mem.EERam.Read16(0x1000); v != 0x5555 {
		t.Error("misaligned store modified memory")
	}
}

func TestQuadwordRoundTrip(t *testing.T) {
	c, b := newCPU(t,
		encI(opADDIU, 0, 8, 0x100), // base
		encI(opSQ, 8, 9, 0),        // SQ $t1, 0($t0)
		encI(opLQ, 8, 10, 0),       // LQ $t2, 0($t0)
	)
	c.Regs[9] = register.Reg{Lo: 0x1122334455667788, Hi: 0x99AABBCCDDEEFF00}
	for range 3 {
		c.Step()
	}
	if c.Regs[10] != c.Regs[9] {
		t.Errorf("SQ/LQ round trip = %+v, want %+v", c.Regs[10], c.Regs[9])
	}
	if q, _ := b.Mem.EERam.Read128(0x100); q != c.Regs[9] {
		t.Errorf("RAM after SQ = %+v", q)
	}
}

func TestInterruptVectoring(t *testing.T) {
	c, b := newCPU(t,
		encI(opORI, 0, 8, 1),
		encI(opORI, 0, 8, 2),
	)
	// ie, im0, eie set; exl, erl, bev clear.
	c.COP0.Regs[cpu.Cop0Status] = 1<<0 | 1<<10 | 1<<16

	b.INTC.Trigger(2) // INT_VB_ON
	b.INTC.WriteMask(1 << 2)
	c.SetIP0Pending(b.INTC.Pending())

	// Writing zero to stat is a no-op: nothing is cleared.
	b.INTC.WriteStat(0)
	c.SetIP0Pending(b.INTC.Pending())

	c.Clock(1)

	if got := c.PC - 4; got != 0x80000200 {
		t.Errorf("vector pc = %#x, want 0x80000200", got)
	}
	if got := c.COP0.Cause().ExcCode(); got != cpu.ExcInterrupt {
		t.Errorf("exccode = %d, want 0", got)
	}
	if !c.COP0.Cause().IP0() {
		t.Error("cause.ip0 not set")
	}
	if !c.COP0.Status().EXL() {
		t.Error("status.exl not set")
	}
	if got := c.COP0.Regs[cpu.Cop0EPC]; got != 0xBFC00000 {
		t.Errorf("epc = %#x, want interrupted instruction", got)
	}
}

func TestCOP2TransferOps(t *testing.T) {
	// CTC2 writes through to the VU0 integer register file.
	c, b := newCPU(t,
		0x48C42800, // CTC2 $a0, vi5  (rs=0x06, rt=4, rd=5)
	)
	c.Regs[4].SetWord(0x1234)
	c.Step()
	if got := b.VU[0].Regs.VI[5]; got != 0x1234 {
		t.Errorf("CTC2 vi5 = %#x, want 0x1234", got)
	}
}

func TestCOP0CountAdvances(t *testing.T) {
	c, _ := newCPU(t,
		encI(opORI, 0, 8, 1),
		encI(opORI, 0, 8, 2),
		encI(opORI, 0, 8, 3),
	)
	before := c.COP0.Regs[cpu.Cop0Count]
	c.Step()
	c.Step()
	c.Step()
	if got := c.COP0.Regs[cpu.Cop0Count] - before; got != 3 {
		t.Errorf("count advanced by %d, want 3", got)
	}
}
