/*
 * ps2emu - EE CPU definitions: instruction word, COP0/COP1 state, dispatch
 * tables.
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
	"github.com/ps2emu/eecore/register"
	"github.com/ps2emu/eecore/vu"
)

// ResetVector is where the EE starts executing out of the BIOS ROM.
const ResetVector = 0xBFC00000

// Instruction carries a raw instruction word together with the PC it was
// fetched from. The three MIPS encodings (I, J, R) are views extracted by
// the accessor methods rather than re-derived at each use site.
type Instruction struct {
	Value       uint32
	PC          uint32
	IsDelaySlot bool
}

func (i Instruction) Opcode() uint32 { return i.Value >> 26 }
func (i Instruction) Rs() uint32     { return (i.Value >> 21) & 0x1F }
func (i Instruction) Rt() uint32     { return (i.Value >> 16) & 0x1F }
func (i Instruction) Rd() uint32     { return (i.Value >> 11) & 0x1F }
func (i Instruction) Sa() uint32     { return (i.Value >> 6) & 0x1F }
func (i Instruction) Funct() uint32  { return i.Value & 0x3F }
func (i Instruction) Imm() uint16    { return uint16(i.Value) }
func (i Instruction) SImm() int32    { return int32(int16(i.Value)) }
func (i Instruction) Target() uint32 { return i.Value & 0x03FFFFFF }

// Exception kinds, with their COP0 cause.exccode values.
const (
	ExcInterrupt      = 0
	ExcTLBModified    = 1
	ExcTLBLoad        = 2
	ExcTLBStore       = 3
	ExcAddrErrorLoad  = 4
	ExcAddrErrorStore = 5
	ExcSyscall        = 8
	ExcBreak          = 9
	ExcReserved       = 10
	ExcCopUnusable    = 11
	ExcOverflow       = 12
	ExcTrap           = 13
)

// Exception vector offsets and the two possible bases selected by
// status.bev.
const (
	vecTLBRefill = 0x000
	vecCommon    = 0x180
	vecInterrupt = 0x200

	vecBaseRAM  = 0x80000000
	vecBaseBIOS = 0xBFC00200
)

// COP0 register indexes with architectural names.
const (
	Cop0BadVAddr = 8
	Cop0Count    = 9
	Cop0Status   = 12
	Cop0Cause    = 13
	Cop0EPC      = 14
	Cop0PRId     = 15
	Cop0ErrorEPC = 30
)

// Status is a view of the COP0 status register.
type Status uint32

func (s Status) IE() bool  { return s&(1<<0) != 0 }
func (s Status) EXL() bool { return s&(1<<1) != 0 }
func (s Status) ERL() bool { return s&(1<<2) != 0 }
func (s Status) IM0() bool { return s&(1<<10) != 0 }
func (s Status) IM1() bool { return s&(1<<11) != 0 }
func (s Status) IM7() bool { return s&(1<<15) != 0 }
func (s Status) EIE() bool { return s&(1<<16) != 0 }
func (s Status) BEV() bool { return s&(1<<22) != 0 }

// Cause is a view of the COP0 cause register.
type Cause uint32

func (c Cause) ExcCode() uint32 { return (uint32(c) >> 2) & 0x1F }
func (c Cause) IP0() bool       { return c&(1<<10) != 0 }
func (c Cause) IP1() bool       { return c&(1<<11) != 0 }
func (c Cause) TimerIP() bool   { return c&(1<<15) != 0 }
func (c Cause) BD() bool        { return c&(1<<31) != 0 }

// COP0 is the system-control coprocessor: 32 word registers addressed both
// by raw index (MFC0/MTC0) and through the named views above.
type COP0 struct {
	Regs [32]uint32
}

func (c *COP0) Status() Status { return Status(c.Regs[Cop0Status]) }
func (c *COP0) Cause() Cause   { return Cause(c.Regs[Cop0Cause]) }

func (c *COP0) setStatusBit(bit uint32, v bool) {
	if v {
		c.Regs[Cop0Status] |= 1 << bit
	} else {
		c.Regs[Cop0Status] &^= 1 << bit
	}
}

func (c *COP0) setCauseBit(bit uint32, v bool) {
	if v {
		c.Regs[Cop0Cause] |= 1 << bit
	} else {
		c.Regs[Cop0Cause] &^= 1 << bit
	}
}

func (c *COP0) setExcCode(code uint32) {
	c.Regs[Cop0Cause] = (c.Regs[Cop0Cause] &^ (0x1F << 2)) | ((code & 0x1F) << 2)
}

// COP1 is the scalar FPU register file: 32 single-width FPRs plus the
// revision and control/status registers.
type COP1 struct {
	FPR   [32]uint32
	FCR0  uint32 // revision / implementation
	FCR31 uint32 // round mode, flags, condition
}

// Bus is the memory surface the interpreter executes against. Every access
// is a virtual address; the implementation applies segment translation and
// MMIO routing.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Read64(addr uint32) uint64
	Read128(addr uint32) register.Reg
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
	Write64(addr uint32, v uint64)
	Write128(addr uint32, v register.Reg)
}

// CPU is the Emotion Engine interpreter state: the 128 bit general register
// file, both HI/LO pairs, the in-flight instruction pair and the three
// coprocessors it can reach inline.
type CPU struct {
	Regs [32]register.Reg
	PC   uint32

	Hi0, Lo0 uint64
	Hi1, Lo1 uint64

	Instr     Instruction
	NextInstr Instruction

	branchTaken     bool
	skipBranchDelay bool

	COP0 COP0
	COP1 COP1
	VU0  *vu.VU

	bus Bus

	table   [64]func(*CPU)
	special [64]func(*CPU)
	regimm  [32]func(*CPU)

	trace func(Instruction)
}

// New returns a CPU at the reset vector with the first instruction
// prefetched. The caller supplies the bus and the VU0 unit COP2 drives.
func New(b Bus, vu0 *vu.VU) *CPU {
	c := &CPU{bus: b, VU0: vu0}
	c.COP0.Regs[Cop0Status] = 0x400004 // BEV, ERL
	c.COP0.Regs[Cop0PRId] = 0x2E20
	c.createTable()
	c.Reset()
	return c
}

// Reset places the CPU back at the BIOS reset vector and refills the
// prefetch slot.
func (c *CPU) Reset() {
	c.PC = ResetVector
	c.fetchNext()
}

// SetTrace installs an instruction-trace sink invoked once per retired
// instruction, or removes it when fn is nil.
func (c *CPU) SetTrace(fn func(Instruction)) {
	c.trace = fn
}

// createTable builds the primary, SPECIAL and REGIMM dispatch tables.
func (c *CPU) createTable() {
	c.table = [64]func(*CPU){
		//  00                 01                02              03
		(*CPU).opSpecial, (*CPU).opRegimm, (*CPU).opJ, (*CPU).opJAL,
		(*CPU).opBEQ, (*CPU).opBNE, (*CPU).opBLEZ, (*CPU).opBGTZ,
		//  08                 09                0A              0B
		(*CPU).opUnknown, (*CPU).opADDIU, (*CPU).opSLTI, (*CPU).opSLTIU,
		(*CPU).opANDI, (*CPU).opORI, (*CPU).opXORI, (*CPU).opLUI,
		//  10                 11                12              13
		(*CPU).opCOP0, (*CPU).opUnknown, (*CPU).opCOP2, (*CPU).opUnknown,
		(*CPU).opBEQL, (*CPU).opBNEL, (*CPU).opUnknown, (*CPU).opUnknown,
		//  18                 19                1A              1B
		(*CPU).opUnknown, (*CPU).opDADDIU, (*CPU).opUnknown, (*CPU).opUnknown,
		(*CPU).opMMI, (*CPU).opUnknown, (*CPU).opLQ, (*CPU).opSQ,
		//  20                 21                22              23
		(*CPU).opLB, (*CPU).opLH, (*CPU).opUnknown, (*CPU).opLW,
		(*CPU).opLBU, (*CPU).opLHU, (*CPU).opUnknown, (*CPU).opLWU,
		//  28                 29                2A              2B
		(*CPU).opSB, (*CPU).opSH, (*CPU).opUnknown, (*CPU).opSW,
		(*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opCACHE,
		//  30                 31                32              33
		(*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown,
		(*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opLD,
		//  38                 39                3A              3B
		(*CPU).opUnknown, (*CPU).opSWC1, (*CPU).opUnknown, (*CPU).opUnknown,
		(*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opSD,
	}

	c.special = [64]func(*CPU){
		//  00                 01                02              03
		(*CPU).opSLL, (*CPU).opUnknown, (*CPU).opSRL, (*CPU).opSRA,
		(*CPU).opSLLV, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opSRAV,
		//  08                 09                0A              0B
		(*CPU).opJR, (*CPU).opJALR, (*CPU).opMOVZ, (*CPU).opMOVN,
		(*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opSYNC,
		//  10                 11                12              13
		(*CPU).opMFHI, (*CPU).opUnknown, (*CPU).opMFLO, (*CPU).opUnknown,
		(*CPU).opDSLLV, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opDSRAV,
		//  18                 19                1A              1B
		(*CPU).opMULT, (*CPU).opUnknown, (*CPU).opDIV, (*CPU).opDIVU,
		(*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown,
		//  20                 21                22              23
		(*CPU).opUnknown, (*CPU).opADDU, (*CPU).opUnknown, (*CPU).opSUBU,
		(*CPU).opAND, (*CPU).opOR, (*CPU).opXOR, (*CPU).opNOR,
		//  28                 29                2A              2B
		(*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opSLT, (*CPU).opSLTU,
		(*CPU).opUnknown, (*CPU).opDADDU, (*CPU).opUnknown, (*CPU).opUnknown,
		//  30                 31                32              33
		(*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown,
		(*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown,
		//  38                 39                3A              3B
		(*CPU).opDSLL, (*CPU).opUnknown, (*CPU).opUnknown, (*CPU).opUnknown,
		(*CPU).opDSLL32, (*CPU).opUnknown, (*CPU).opDSRL32, (*CPU).opDSRA32,
	}

	c.regimm = [32]func(*CPU){}
	c.regimm[0x00] = (*CPU).opBLTZ
	c.regimm[0x01] = (*CPU).opBGEZ
}
