/*
 * ps2emu - Timer channels.
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

// Package timer implements the EE's four prescaled counter/compare timer
// channels. Ticking a channel is pure: the caller supplies the interrupt
// source to raise via a callback, keeping the package free of any reference
// back to INTC.
package timer

// Mode register bits. CLKS selects the prescale ratio; the rest are
// enable/flag bits for compare and overflow interrupts.
const (
	ModeClksMask   uint16 = 0x0003
	ModeGate       uint16 = 0x0004
	ModeGateMode   uint16 = 0x0018
	ModeZeroReturn uint16 = 0x0020 // clear counter on compare match
	ModeEnable     uint16 = 0x0080 // CUE: count enable
	ModeCmpIRQ     uint16 = 0x0100 // CMPE: interrupt on compare
	ModeOvfIRQ     uint16 = 0x0200 // OVFE: interrupt on overflow
	ModeCmpFlag    uint16 = 0x0400 // EQUF: latched on compare match
	ModeOvfFlag    uint16 = 0x0800 // OVFF: latched on overflow

	ModeMask uint16 = 0x03FF // 10 significant bits
)

// Prescale ratios selected by the mode register's CLKS field.
var ratios = [4]uint32{1, 16, 256, 9371} // last entry approximates BUSCLK/HBLANK_NTSC

// Channel is one of the EE's four timer channels.
type Channel struct {
	Counter uint32
	Compare uint16
	Mode    uint16
	Hold    uint32
	ratio   uint32
}

// New returns a channel with the default (ratio 1) prescale.
func New() *Channel {
	return &Channel{ratio: ratios[0]}
}

// WriteMode installs a new mode value and recomputes the prescale ratio.
func (c *Channel) WriteMode(value uint16) {
	c.Mode = value & ModeMask
	c.ratio = ratios[c.Mode&ModeClksMask]
}

func (c *Channel) enabled() bool {
	return c.Mode&ModeEnable != 0
}

// Tick advances the channel by cycles EE cycles, raising raise(src) when a
// compare or overflow interrupt condition is newly latched.
func (c *Channel) Tick(cycles uint32, src uint32, raise func(uint32)) {
	if !c.enabled() {
		return
	}
	old := c.Counter
	c.Counter += cycles * c.ratio

	if c.Counter >= uint32(c.Compare) && uint32(c.Compare) > old &&
		c.Mode&ModeCmpIRQ != 0 && c.Mode&ModeCmpFlag == 0 {
		raise(src)
		c.Mode |= ModeCmpFlag
		if c.Mode&ModeZeroReturn != 0 {
			c.Counter = 0
		}
	}

	if c.Counter > 0xFFFF && c.Mode&ModeOvfIRQ != 0 && c.Mode&ModeOvfFlag == 0 {
		raise(src)
		c.Mode |= ModeOvfFlag
		c.Counter -= 0xFFFF
	}
}

// Timers owns the four EE timer channels.
type Timers struct {
	Channel [4]*Channel
}

// NewTimers returns four freshly reset timer channels.
func NewTimers() *Timers {
	t := &Timers{}
	for i := range t.Channel {
		t.Channel[i] = New()
	}
	return t
}

// Tick advances all four channels by cycles, raising INT_TIMERi (src base +
// channel index) through raise for any channel that newly latches.
func (t *Timers) Tick(cycles uint32, timerIRQBase uint32, raise func(uint32)) {
	for i, ch := range t.Channel {
		idx := uint32(i)
		ch.Tick(cycles, timerIRQBase+idx, raise)
	}
}
