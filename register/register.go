/*
 * ps2emu - 128 bit register type.
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

// Package register implements the Emotion Engine's 128 bit quadword register:
// a single value addressable as two u64 halves, four u32 lanes, four f32
// lanes, or a whole u128 (carried as Lo/Hi uint64, Go having no native u128).
package register

import "math"

// Reg is a 128 bit quadword. Lo holds bits 63:0, Hi holds bits 127:64.
type Reg struct {
	Lo uint64
	Hi uint64
}

// SetWord assigns a 32 bit scalar to a register: sign-extends into the low
// 64 bits and clears the high 64 bits. This is the only narrowing write form
// the EE performs (ADDIU/LUI/etc all write through this path).
func (r *Reg) SetWord(v int32) {
	r.Lo = uint64(int64(v))
	r.Hi = 0
}

// SetDWord assigns a sign-extended 64 bit scalar to the low half, clearing
// the high half.
func (r *Reg) SetDWord(v int64) {
	r.Lo = uint64(v)
	r.Hi = 0
}

// Word returns lane i (0..3) as an unsigned 32 bit value, i=0 being the
// least significant lane.
func (r Reg) Word(i int) uint32 {
	switch i {
	case 0:
		return uint32(r.Lo)
	case 1:
		return uint32(r.Lo >> 32)
	case 2:
		return uint32(r.Hi)
	case 3:
		return uint32(r.Hi >> 32)
	default:
		return 0
	}
}

// SetWordLane writes lane i (0..3) without disturbing the other three lanes.
func (r *Reg) SetWordLane(i int, v uint32) {
	switch i {
	case 0:
		r.Lo = (r.Lo &^ 0xFFFFFFFF) | uint64(v)
	case 1:
		r.Lo = (r.Lo & 0xFFFFFFFF) | (uint64(v) << 32)
	case 2:
		r.Hi = (r.Hi &^ 0xFFFFFFFF) | uint64(v)
	case 3:
		r.Hi = (r.Hi & 0xFFFFFFFF) | (uint64(v) << 32)
	}
}

// Float returns lane i (0..3) reinterpreted as an IEEE-754 float32.
func (r Reg) Float(i int) float32 {
	return math.Float32frombits(r.Word(i))
}

// SetFloat writes lane i (0..3) from an IEEE-754 float32.
func (r *Reg) SetFloat(i int, v float32) {
	r.SetWordLane(i, math.Float32bits(v))
}
