/*
 * ps2emu - EE CPU: integer, branch, memory and MMI instructions.
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

package cpu

import "log/slog"

// MMI minor and MMI2 sub-opcodes.
const (
	mmiMMI2  = 0x09
	mmiMFLO1 = 0x12
	mmiMULT1 = 0x18
	mmiDIV1  = 0x1A
	mmiDIVU1 = 0x1B

	mmi2PAND = 0x12
)

func (c *CPU) opSpecial() {
	c.special[c.Instr.Funct()](c)
}

func (c *CPU) opRegimm() {
	fn := c.regimm[c.Instr.Rt()]
	if fn == nil {
		c.opUnknown()
		return
	}
	fn(c)
}

// --- Jumps and branches ---

func (c *CPU) jumpTarget() uint32 {
	return ((c.Instr.PC + 4) & 0xF0000000) | (c.Instr.Target() << 2)
}

func (c *CPU) branchTarget() uint32 {
	return c.Instr.PC + 4 + uint32(c.Instr.SImm()<<2)
}

func (c *CPU) opJ() {
	c.branchTo(c.jumpTarget())
}

func (c *CPU) opJAL() {
	c.Regs[31].SetDWord(int64(c.Instr.PC + 8))
	c.branchTo(c.jumpTarget())
}

func (c *CPU) opJR() {
	c.branchTo(uint32(c.Regs[c.Instr.Rs()].Lo))
}

func (c *CPU) opJALR() {
	target := uint32(c.Regs[c.Instr.Rs()].Lo)
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Instr.PC + 8))
	c.branchTo(target)
}

func (c *CPU) condBranch(taken bool) {
	if taken {
		c.branchTo(c.branchTarget())
	} else {
		c.NextInstr.IsDelaySlot = true
	}
}

func (c *CPU) condBranchLikely(taken bool) {
	if taken {
		c.branchTo(c.branchTarget())
	} else {
		c.nullifyDelaySlot()
	}
}

func (c *CPU) opBEQ() {
	c.condBranch(c.Regs[c.Instr.Rs()].Lo == c.Regs[c.Instr.Rt()].Lo)
}

func (c *CPU) opBNE() {
	c.condBranch(c.Regs[c.Instr.Rs()].Lo != c.Regs[c.Instr.Rt()].Lo)
}

func (c *CPU) opBLEZ() {
	c.condBranch(int64(c.Regs[c.Instr.Rs()].Lo) <= 0)
}

func (c *CPU) opBGTZ() {
	c.condBranch(int64(c.Regs[c.Instr.Rs()].Lo) > 0)
}

func (c *CPU) opBLTZ() {
	c.condBranch(int64(c.Regs[c.Instr.Rs()].Lo) < 0)
}

func (c *CPU) opBGEZ() {
	c.condBranch(int64(c.Regs[c.Instr.Rs()].Lo) >= 0)
}

func (c *CPU) opBEQL() {
	c.condBranchLikely(c.Regs[c.Instr.Rs()].Lo == c.Regs[c.Instr.Rt()].Lo)
}

func (c *CPU) opBNEL() {
	c.condBranchLikely(c.Regs[c.Instr.Rs()].Lo != c.Regs[c.Instr.Rt()].Lo)
}

// --- Immediate arithmetic and logic ---

func (c *CPU) opADDIU() {
	c.Regs[c.Instr.Rt()].SetWord(int32(uint32(c.Regs[c.Instr.Rs()].Lo)) + c.Instr.SImm())
}

func (c *CPU) opDADDIU() {
	c.Regs[c.Instr.Rt()].SetDWord(int64(c.Regs[c.Instr.Rs()].Lo) + int64(c.Instr.SImm()))
}

func (c *CPU) opSLTI() {
	var v int64
	if int64(c.Regs[c.Instr.Rs()].Lo) < int64(c.Instr.SImm()) {
		v = 1
	}
	c.Regs[c.Instr.Rt()].SetDWord(v)
}

func (c *CPU) opSLTIU() {
	var v int64
	if c.Regs[c.Instr.Rs()].Lo < uint64(int64(c.Instr.SImm())) {
		v = 1
	}
	c.Regs[c.Instr.Rt()].SetDWord(v)
}

func (c *CPU) opANDI() {
	c.Regs[c.Instr.Rt()].SetDWord(int64(c.Regs[c.Instr.Rs()].Lo & uint64(c.Instr.Imm())))
}

func (c *CPU) opORI() {
	c.Regs[c.Instr.Rt()].SetDWord(int64(c.Regs[c.Instr.Rs()].Lo | uint64(c.Instr.Imm())))
}

func (c *CPU) opXORI() {
	c.Regs[c.Instr.Rt()].SetDWord(int64(c.Regs[c.Instr.Rs()].Lo ^ uint64(c.Instr.Imm())))
}

func (c *CPU) opLUI() {
	c.Regs[c.Instr.Rt()].SetWord(int32(uint32(c.Instr.Imm()) << 16))
}

// --- Register arithmetic and logic ---

func (c *CPU) opADDU() {
	v := int32(uint32(c.Regs[c.Instr.Rs()].Lo)) + int32(uint32(c.Regs[c.Instr.Rt()].Lo))
	c.Regs[c.Instr.Rd()].SetWord(v)
}

func (c *CPU) opSUBU() {
	v := int32(uint32(c.Regs[c.Instr.Rs()].Lo)) - int32(uint32(c.Regs[c.Instr.Rt()].Lo))
	c.Regs[c.Instr.Rd()].SetWord(v)
}

func (c *CPU) opDADDU() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rs()].Lo + c.Regs[c.Instr.Rt()].Lo))
}

func (c *CPU) opAND() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rs()].Lo & c.Regs[c.Instr.Rt()].Lo))
}

func (c *CPU) opOR() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rs()].Lo | c.Regs[c.Instr.Rt()].Lo))
}

func (c *CPU) opXOR() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rs()].Lo ^ c.Regs[c.Instr.Rt()].Lo))
}

func (c *CPU) opNOR() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(^(c.Regs[c.Instr.Rs()].Lo | c.Regs[c.Instr.Rt()].Lo)))
}

func (c *CPU) opSLT() {
	var v int64
	if int64(c.Regs[c.Instr.Rs()].Lo) < int64(c.Regs[c.Instr.Rt()].Lo) {
		v = 1
	}
	c.Regs[c.Instr.Rd()].SetDWord(v)
}

func (c *CPU) opSLTU() {
	var v int64
	if c.Regs[c.Instr.Rs()].Lo < c.Regs[c.Instr.Rt()].Lo {
		v = 1
	}
	c.Regs[c.Instr.Rd()].SetDWord(v)
}

func (c *CPU) opMOVZ() {
	if c.Regs[c.Instr.Rt()].Lo == 0 {
		c.Regs[c.Instr.Rd()].Lo = c.Regs[c.Instr.Rs()].Lo
	}
}

func (c *CPU) opMOVN() {
	if c.Regs[c.Instr.Rt()].Lo != 0 {
		c.Regs[c.Instr.Rd()].Lo = c.Regs[c.Instr.Rs()].Lo
	}
}

// --- Shifts ---

func (c *CPU) opSLL() {
	c.Regs[c.Instr.Rd()].SetWord(int32(uint32(c.Regs[c.Instr.Rt()].Lo) << c.Instr.Sa()))
}

func (c *CPU) opSRL() {
	c.Regs[c.Instr.Rd()].SetWord(int32(uint32(c.Regs[c.Instr.Rt()].Lo) >> c.Instr.Sa()))
}

func (c *CPU) opSRA() {
	c.Regs[c.Instr.Rd()].SetWord(int32(uint32(c.Regs[c.Instr.Rt()].Lo)) >> c.Instr.Sa())
}

func (c *CPU) opSLLV() {
	sa := uint32(c.Regs[c.Instr.Rs()].Lo) & 0x1F
	c.Regs[c.Instr.Rd()].SetWord(int32(uint32(c.Regs[c.Instr.Rt()].Lo) << sa))
}

func (c *CPU) opSRAV() {
	sa := uint32(c.Regs[c.Instr.Rs()].Lo) & 0x1F
	c.Regs[c.Instr.Rd()].SetWord(int32(uint32(c.Regs[c.Instr.Rt()].Lo)) >> sa)
}

func (c *CPU) opDSLLV() {
	sa := c.Regs[c.Instr.Rs()].Lo & 0x3F
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rt()].Lo << sa))
}

func (c *CPU) opDSRAV() {
	sa := c.Regs[c.Instr.Rs()].Lo & 0x3F
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rt()].Lo) >> sa)
}

func (c *CPU) opDSLL() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rt()].Lo << c.Instr.Sa()))
}

func (c *CPU) opDSLL32() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rt()].Lo << (c.Instr.Sa() + 32)))
}

func (c *CPU) opDSRL32() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rt()].Lo >> (c.Instr.Sa() + 32)))
}

func (c *CPU) opDSRA32() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Regs[c.Instr.Rt()].Lo) >> (c.Instr.Sa() + 32))
}

// --- Multiply / divide, both pipes ---

func (c *CPU) opMFHI() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Hi0))
}

func (c *CPU) opMFLO() {
	c.Regs[c.Instr.Rd()].SetDWord(int64(c.Lo0))
}

func (c *CPU) mult(hi, lo *uint64) {
	prod := int64(int32(uint32(c.Regs[c.Instr.Rs()].Lo))) * int64(int32(uint32(c.Regs[c.Instr.Rt()].Lo)))
	*lo = uint64(int64(int32(prod)))
	*hi = uint64(int64(int32(prod >> 32)))
	// The EE's three-operand form also latches LO into rd.
	c.Regs[c.Instr.Rd()].SetDWord(int64(*lo))
}

func (c *CPU) opMULT() { c.mult(&c.Hi0, &c.Lo0) }

// div implements the two architectural quirks: a zero divisor produces
// {hi=dividend, lo=±1 by sign}, and MIN_INT/-1 produces {hi=0, lo=MIN_INT}
// rather than trapping.
func (c *CPU) div(hi, lo *uint64) {
	dividend := int32(uint32(c.Regs[c.Instr.Rs()].Lo))
	divisor := int32(uint32(c.Regs[c.Instr.Rt()].Lo))

	switch {
	case divisor == 0:
		*hi = uint64(int64(dividend))
		if dividend >= 0 {
			*lo = ^uint64(0)
		} else {
			*lo = 1
		}
	case uint32(dividend) == 0x80000000 && divisor == -1:
		*hi = 0
		*lo = 0xFFFFFFFF80000000
	default:
		*lo = uint64(int64(dividend / divisor))
		*hi = uint64(int64(dividend % divisor))
	}
}

func (c *CPU) opDIV() { c.div(&c.Hi0, &c.Lo0) }

func (c *CPU) divu(hi, lo *uint64) {
	dividend := uint32(c.Regs[c.Instr.Rs()].Lo)
	divisor := uint32(c.Regs[c.Instr.Rt()].Lo)

	if divisor == 0 {
		*hi = uint64(int64(int32(dividend)))
		*lo = 0xFFFFFFFFFFFFFFFF
		return
	}
	*lo = uint64(int64(int32(dividend / divisor)))
	*hi = uint64(int64(int32(dividend % divisor)))
}

func (c *CPU) opDIVU() { c.divu(&c.Hi0, &c.Lo0) }

// --- MMI ---

func (c *CPU) opMMI() {
	switch c.Instr.Funct() {
	case mmiMMI2:
		c.opMMI2()
	case mmiMFLO1:
		c.Regs[c.Instr.Rd()].SetDWord(int64(c.Lo1))
	case mmiMULT1:
		c.mult(&c.Hi1, &c.Lo1)
	case mmiDIV1:
		c.div(&c.Hi1, &c.Lo1)
	case mmiDIVU1:
		c.divu(&c.Hi1, &c.Lo1)
	default:
		slog.Warn("unimplemented MMI minor", "funct", c.Instr.Funct(), "pc", c.Instr.PC)
	}
}

func (c *CPU) opMMI2() {
	switch c.Instr.Sa() {
	case mmi2PAND:
		rd := &c.Regs[c.Instr.Rd()]
		rd.Lo = c.Regs[c.Instr.Rs()].Lo & c.Regs[c.Instr.Rt()].Lo
		rd.Hi = c.Regs[c.Instr.Rs()].Hi & c.Regs[c.Instr.Rt()].Hi
	default:
		slog.Warn("unimplemented MMI2 op", "sa", c.Instr.Sa(), "pc", c.Instr.PC)
	}
}

// --- Loads ---

func (c *CPU) loadAddr() uint32 {
	return uint32(c.Regs[c.Instr.Rs()].Lo) + uint32(c.Instr.SImm())
}

// checkAlign raises an address-error exception and reports false when addr
// has any of the low mask bits set. The memory transfer is suppressed.
func (c *CPU) checkAlign(addr, mask, kind uint32) bool {
	if addr&mask == 0 {
		return true
	}
	c.COP0.Regs[Cop0BadVAddr] = addr
	c.Exception(kind)
	return false
}

func (c *CPU) opLB() {
	addr := c.loadAddr()
	c.Regs[c.Instr.Rt()].SetDWord(int64(int8(c.bus.Read8(addr))))
}

func (c *CPU) opLBU() {
	addr := c.loadAddr()
	c.Regs[c.Instr.Rt()].SetDWord(int64(c.bus.Read8(addr)))
}

func (c *CPU) opLH() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0x1, ExcAddrErrorLoad) {
		return
	}
	c.Regs[c.Instr.Rt()].SetDWord(int64(int16(c.bus.Read16(addr))))
}

func (c *CPU) opLHU() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0x1, ExcAddrErrorLoad) {
		return
	}
	c.Regs[c.Instr.Rt()].SetDWord(int64(c.bus.Read16(addr)))
}

func (c *CPU) opLW() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0x3, ExcAddrErrorLoad) {
		return
	}
	c.Regs[c.Instr.Rt()].SetDWord(int64(int32(c.bus.Read32(addr))))
}

func (c *CPU) opLWU() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0x3, ExcAddrErrorLoad) {
		return
	}
	c.Regs[c.Instr.Rt()].SetDWord(int64(c.bus.Read32(addr)))
}

func (c *CPU) opLD() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0x7, ExcAddrErrorLoad) {
		return
	}
	c.Regs[c.Instr.Rt()].SetDWord(int64(c.bus.Read64(addr)))
}

func (c *CPU) opLQ() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0xF, ExcAddrErrorLoad) {
		return
	}
	c.Regs[c.Instr.Rt()] = c.bus.Read128(addr)
}

// --- Stores ---

func (c *CPU) opSB() {
	addr := c.loadAddr()
	c.bus.Write8(addr, uint8(c.Regs[c.Instr.Rt()].Lo))
}

func (c *CPU) opSH() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0x1, ExcAddrErrorStore) {
		return
	}
	c.bus.Write16(addr, uint16(c.Regs[c.Instr.Rt()].Lo))
}

func (c *CPU) opSW() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0x3, ExcAddrErrorStore) {
		return
	}
	c.bus.Write32(addr, uint32(c.Regs[c.Instr.Rt()].Lo))
}

func (c *CPU) opSD() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0x7, ExcAddrErrorStore) {
		return
	}
	c.bus.Write64(addr, c.Regs[c.Instr.Rt()].Lo)
}

func (c *CPU) opSQ() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0xF, ExcAddrErrorStore) {
		return
	}
	c.bus.Write128(addr, c.Regs[c.Instr.Rt()])
}

// --- No-ops ---

func (c *CPU) opSYNC()  {}
func (c *CPU) opCACHE() {}
