/*
 * ps2emu - Vector Unit (VU0 macro mode) interpreter.
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

// Package vu implements a Vector Unit: 16KiB code and data memories and the
// COP2/macro-mode register file and ALU subset the EE can drive inline.
package vu

import "github.com/ps2emu/eecore/register"

const memMask = 0x3FFF

// Vector is one of the 32 vf registers: a quadword with x/y/z/w float lanes.
type Vector register.Reg

func (v Vector) Lane(i int) float32    { return register.Reg(v).Float(i) }
func (v *Vector) SetLane(i int, f float32) {
	r := register.Reg(*v)
	r.SetFloat(i, f)
	*v = Vector(r)
}
func (v Vector) Word(i int) uint32 { return register.Reg(v).Word(i) }

// Registers is the VU register file.
type Registers struct {
	VI      [16]uint16
	Control [16]uint32
	VF      [32]Vector
}

// VU is one Vector Unit instance (the EE owns two, VU0 and VU1).
type VU struct {
	Regs Registers
	Acc  Vector

	Code [16 * 1024]byte
	Data [16 * 1024]byte
}

// New returns a freshly reset VU with vf[0] hard-coded to (0,0,0,1.0).
func New() *VU {
	v := &VU{}
	v.pinVF0()
	return v
}

// pinVF0 restores vf[0] to its constant value. Like the EE's zero register,
// writes to it are absorbed.
func (v *VU) pinVF0() {
	v.Regs.VF[0] = Vector{}
	v.Regs.VF[0].SetLane(3, 1.0)
}

// ReadCode reads a 32 bit word from VU code memory, address-wrapped to the
// 16KiB code store.
func (v *VU) ReadCode(addr uint32) uint32 {
	a := addr & memMask &^ 3
	return uint32(v.Code[a]) | uint32(v.Code[a+1])<<8 | uint32(v.Code[a+2])<<16 | uint32(v.Code[a+3])<<24
}

// WriteCode writes a 32 bit word to VU code memory.
func (v *VU) WriteCode(addr uint32, val uint32) {
	a := addr & memMask &^ 3
	v.Code[a] = byte(val)
	v.Code[a+1] = byte(val >> 8)
	v.Code[a+2] = byte(val >> 16)
	v.Code[a+3] = byte(val >> 24)
}

// ReadData reads a 32 bit word from VU data memory.
func (v *VU) ReadData(addr uint32) uint32 {
	a := addr & memMask &^ 3
	return uint32(v.Data[a]) | uint32(v.Data[a+1])<<8 | uint32(v.Data[a+2])<<16 | uint32(v.Data[a+3])<<24
}

// WriteData writes a 32 bit word to VU data memory.
func (v *VU) WriteData(addr uint32, val uint32) {
	a := addr & memMask &^ 3
	v.Data[a] = byte(val)
	v.Data[a+1] = byte(val >> 8)
	v.Data[a+2] = byte(val >> 16)
	v.Data[a+3] = byte(val >> 24)
}

// laneSelected reports whether lane i is enabled by a dest field. The
// convention is x=bit 3 down to w=bit 0; VSUB, VSQI and VISWR all follow
// it.
func laneSelected(dest uint32, lane int) bool {
	return dest&(1<<uint(3-lane)) != 0
}

// QMFC2 copies vf[fd] into the EE's 128 bit register rt (COP2 opcode 0x01).
func (v *VU) QMFC2(fd int) register.Reg {
	return register.Reg(v.Regs.VF[fd])
}

// QMTC2 copies the EE's 128 bit register rt into vf[fd] (COP2 opcode 0x05).
func (v *VU) QMTC2(fd int, val register.Reg) {
	v.Regs.VF[fd] = Vector(val)
	if fd == 0 {
		v.pinVF0()
	}
}

// CFC2 reads a VU control-space register by flat index (0..15 vi, 16..31
// control) into the EE's integer register rt, sign-extended (COP2 opcode
// 0x02).
func (v *VU) CFC2(id int) int32 {
	if id < 16 {
		return int32(int16(v.Regs.VI[id]))
	}
	return int32(v.Regs.Control[id-16])
}

// CTC2 writes the EE's integer register rt into a VU control-space register
// by flat index (COP2 opcode 0x06).
func (v *VU) CTC2(id int, val uint32) {
	if id < 16 {
		v.Regs.VI[id] = uint16(val)
		return
	}
	v.Regs.Control[id-16] = val
}

// VSUB computes, for each selected lane, vf[fd].f[i] = vf[fs].f[i] - vf[ft].f[i].
func (v *VU) VSUB(fd, fs, ft int, dest uint32) {
	for i := 0; i < 4; i++ {
		if laneSelected(dest, i) {
			r := v.Regs.VF[fs].Lane(i) - v.Regs.VF[ft].Lane(i)
			v.Regs.VF[fd].SetLane(i, r)
		}
	}
	if fd == 0 {
		v.pinVF0()
	}
}

// VSQI stores the selected lanes of vf[fs] into VU data memory at vi[it]*16,
// then post-increments vi[it]. No-op when the address exceeds 0xFF0.
func (v *VU) VSQI(fs, it int, dest uint32) {
	addr := uint32(v.Regs.VI[it]) * 16
	if addr > 0xFF0 {
		return
	}
	for i := 0; i < 4; i++ {
		if laneSelected(dest, i) {
			v.WriteData(addr+uint32(i)*4, v.Regs.VF[fs].Word(i))
		}
	}
	v.Regs.VI[it]++
}

// VISWR stores the low 16 bits of vi[it] into each selected lane at data
// address vi[is]*16.
func (v *VU) VISWR(is, it int, dest uint32) {
	addr := uint32(v.Regs.VI[is]) * 16
	if addr > 0xFF0 {
		return
	}
	word := uint32(v.Regs.VI[it]) & 0xFFFF
	for i := 0; i < 4; i++ {
		if laneSelected(dest, i) {
			v.WriteData(addr+uint32(i)*4, word)
		}
	}
}
