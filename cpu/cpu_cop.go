/*
 * ps2emu - EE CPU: coprocessor dispatch (COP0 system control, COP1 FPU
 * surface, COP2 VU0 macro mode).
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

import (
	"log/slog"

	"github.com/ps2emu/eecore/register"
)

// COP0 sub-opcodes, keyed by the rs field.
const (
	cop0MFC0 = 0x00
	cop0MTC0 = 0x04
	cop0C0   = 0x10

	c0TLBWI = 0x02
	c0ERET  = 0x18
	c0EI    = 0x38
	c0DI    = 0x39
)

func (c *CPU) opCOP0() {
	switch c.Instr.Rs() {
	case cop0MFC0:
		c.Regs[c.Instr.Rt()].SetWord(int32(c.COP0.Regs[c.Instr.Rd()]))
	case cop0MTC0:
		c.COP0.Regs[c.Instr.Rd()] = uint32(c.Regs[c.Instr.Rt()].Lo)
	case cop0C0:
		c.opC0()
	default:
		slog.Warn("unimplemented COP0 sub-op", "rs", c.Instr.Rs(), "pc", c.Instr.PC)
	}
}

func (c *CPU) opC0() {
	switch c.Instr.Funct() {
	case c0TLBWI:
		// Fixed segment-mask translation, no TLB to refill.
	case c0ERET:
		if c.COP0.Status().ERL() {
			c.PC = c.COP0.Regs[Cop0ErrorEPC]
			c.COP0.setStatusBit(2, false)
		} else {
			c.PC = c.COP0.Regs[Cop0EPC]
			c.COP0.setStatusBit(1, false)
		}
		c.fetchNext()
	case c0EI:
		c.COP0.setStatusBit(16, true)
	case c0DI:
		c.COP0.setStatusBit(16, false)
	default:
		slog.Warn("unimplemented C0 funct", "funct", c.Instr.Funct(), "pc", c.Instr.PC)
	}
}

// SWC1 is the only COP1 memory form the boot path uses; the FPR file exists
// so its value round-trips.
func (c *CPU) opSWC1() {
	addr := c.loadAddr()
	if !c.checkAlign(addr, 0x3, ExcAddrErrorStore) {
		return
	}
	c.bus.Write32(addr, c.COP1.FPR[c.Instr.Rt()])
}

// COP2 sub-opcodes, keyed by bits 25..21.
const (
	cop2QMFC2 = 0x01
	cop2CFC2  = 0x02
	cop2QMTC2 = 0x05
	cop2CTC2  = 0x06
)

// opCOP2 runs a VU0 macro-mode instruction inline. Bits 25..21 select the
// transfer ops; 0x10..0x1F fall through to the SPECIAL1 ALU decode on the
// low six bits, which in turn routes 0x3C..0x3F to SPECIAL2.
func (c *CPU) opCOP2() {
	sub := c.Instr.Rs()
	switch {
	case sub == cop2QMFC2:
		c.Regs[c.Instr.Rt()] = c.VU0.QMFC2(int(c.Instr.Rd()))
	case sub == cop2CFC2:
		c.Regs[c.Instr.Rt()].SetDWord(int64(c.VU0.CFC2(int(c.Instr.Rd()))))
	case sub == cop2QMTC2:
		c.VU0.QMTC2(int(c.Instr.Rd()), c.Regs[c.Instr.Rt()])
	case sub == cop2CTC2:
		c.VU0.CTC2(int(c.Instr.Rd()), uint32(c.Regs[c.Instr.Rt()].Lo))
	case sub >= 0x10:
		c.cop2Special1()
	default:
		slog.Warn("unimplemented COP2 sub-op", "sub", sub, "pc", c.Instr.PC)
	}
}

// vuFields extracts the VU ALU operand fields: fd/fs/ft register numbers
// and the x/y/z/w destination mask at bits 24..21.
func (c *CPU) vuFields() (fd, fs, ft int, dest uint32) {
	fd = int(c.Instr.Sa())
	fs = int(c.Instr.Rd())
	ft = int(c.Instr.Rt())
	dest = (c.Instr.Value >> 21) & 0xF
	return
}

func (c *CPU) cop2Special1() {
	funct := c.Instr.Funct()
	switch {
	case funct == 0x2C: // VSUB
		fd, fs, ft, dest := c.vuFields()
		c.VU0.VSUB(fd, fs, ft, dest)
	case funct >= 0x3C:
		c.cop2Special2()
	default:
		slog.Warn("unimplemented VU SPECIAL1 op", "funct", funct, "pc", c.Instr.PC)
	}
}

func (c *CPU) cop2Special2() {
	opcode := (c.Instr.Value & 0x3) | (((c.Instr.Value >> 6) & 0x1F) << 2)
	_, fs, ft, dest := c.vuFields()
	switch opcode {
	case 0x35: // VSQI
		c.VU0.VSQI(fs, ft, dest)
	case 0x3F: // VISWR
		c.VU0.VISWR(fs, ft, dest)
	default:
		slog.Warn("unimplemented VU SPECIAL2 op", "opcode", opcode, "pc", c.Instr.PC)
	}
}

// ReadReg exposes a register for the monitor's inspection commands.
func (c *CPU) ReadReg(i int) register.Reg {
	if i < 0 || i >= len(c.Regs) {
		return register.Reg{}
	}
	return c.Regs[i]
}
