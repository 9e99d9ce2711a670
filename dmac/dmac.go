/*
 * ps2emu - DMA controller.
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

// Package dmac implements the ten channel DMA controller: source-chain tag
// interpretation and qword-per-cycle transfers between EE RAM and the
// peripheral FIFOs. It never names the RAM, GIF or INTC directly; each Tick
// call is handed a narrow Hub of capabilities, which keeps the ownership
// graph acyclic.
package dmac

import "github.com/ps2emu/eecore/register"

// Channel ids.
const (
	ChanVIF0 = iota
	ChanVIF1
	ChanGIF
	ChanIPUFrom
	ChanIPUTo
	ChanSIF0
	ChanSIF1
	ChanSIF2
	ChanSPRFrom
	ChanSPRTo
	NumChannels
)

// DMAtag source chain ids.
const (
	TagREFE = iota
	TagCNT
	TagNEXT
	TagREF
	TagREFS
	TagCALL
	TagRET
	TagEND
)

// Transfer mode.
const (
	ModeNormal = iota
	ModeChain
	ModeInterleave
)

// Control is the channel's CHCR register.
type Control uint32

func (c Control) Direction() bool   { return c&0x1 != 0 }
func (c Control) Mode() uint32      { return uint32(c>>2) & 0x3 }
func (c Control) TransferTag() bool { return c&0x40 != 0 }
func (c Control) EnableIRQ() bool   { return c&0x80 != 0 }
func (c Control) Running() bool     { return c&0x100 != 0 }
func (c Control) Tag() uint16       { return uint16(c >> 16) }

func (c *Control) SetRunning(v bool) {
	if v {
		*c |= 0x100
	} else {
		*c &^= 0x100
	}
}

func (c *Control) SetTag(tag uint16) {
	*c = Control(uint32(*c)&0xFFFF) | Control(uint32(tag)<<16)
}

// TagAddr is the TADR register: a 30 bit RAM address in the low bits plus a
// memory-select bit above it.
type TagAddr struct {
	Value uint32
}

func (t TagAddr) Address() uint32 { return t.Value & 0x3FFFFFFF }
func (t TagAddr) MemSelect() bool { return t.Value&(1<<30) != 0 }

func (t *TagAddr) SetAddress(addr uint32) {
	t.Value = (t.Value &^ 0x3FFFFFFF) | (addr & 0x3FFFFFFF)
}

// DMATag is the 128 bit source-chain descriptor read from RAM.
type DMATag register.Reg

func (t DMATag) Qwords() uint16  { return uint16(t.Lo) }
func (t DMATag) RawTag() uint16  { return uint16(t.Lo >> 16) }
func (t DMATag) ID() uint8       { return uint8((t.Lo >> 28) & 0x7) }
func (t DMATag) IRQ() bool       { return (t.Lo>>31)&1 != 0 }
func (t DMATag) Address() uint32 { return uint32((t.Lo >> 32) & 0x7FFFFFFF) }

// Channel is one of the DMAC's ten source-chain DMA channels.
type Channel struct {
	Control           Control
	Address           uint32
	QwordCount        uint16
	TagAddress        TagAddr
	SavedTagAddress   [2]TagAddr
	ScratchpadAddress uint32
	EndTransfer       bool
}

// WriteMADR forces qword alignment and the 25 bit RAM mask.
func (c *Channel) WriteMADR(data uint32) {
	c.Address = data & 0x01FFFFF0
}

// DStat is the D_STAT global register: lower 16 bits are channel IRQ/stall/
// mfifo/bus-error flags (cleared by writes), upper 16 bits are the channel
// IRQ masks (XOR-toggled by writes).
type DStat uint32

func (d DStat) ChannelIRQ() uint16     { return uint16(d) & 0x3FF }
func (d DStat) ChannelIRQMask() uint16 { return uint16(d>>16) & 0x3FF }

func (d *DStat) Write(value uint32) {
	low := uint32(*d) & 0xFFFF
	high := (uint32(*d) >> 16) & 0xFFFF
	low &^= value & 0xFFFF
	high ^= (value >> 16) & 0xFFFF
	*d = DStat(low | (high << 16))
}

func (d *DStat) SetChannelIRQ(chan_ uint32) {
	*d |= DStat(1 << chan_)
}

// RAM is the narrow capability the DMAC needs from EE RAM: qword-granularity
// reads and writes at a RAM-relative address.
type RAM interface {
	ReadQword(addr uint32) (register.Reg, bool)
	WriteQword(addr uint32, v register.Reg) bool
}

// FIFO is a bounded qword-capable word FIFO (push/pop 4 words at a time).
type FIFO interface {
	PushWord(v uint32) bool
	PopWord() (uint32, bool)
	Len() int
	Cap() int
}

// GIFSink is the GIF's PATH3 entry point.
type GIFSink interface {
	WritePath3(v register.Reg) bool
}

// Hub bundles the capabilities a single Tick needs from the rest of the
// system: RAM access, the GIF PATH3 sink, the two VIF FIFOs, the SIF FIFO
// pair, and a callback to latch COP0 cause.ip1_pending.
type Hub struct {
	RAM    RAM
	GIF    GIFSink
	VIF    [2]FIFO
	SIF0   FIFO
	SIF1   FIFO
	SetIP1 func(bool)
}

// pushQword pushes a 128 bit value as four words, refusing (without partial
// push) unless all four words fit.
func pushQword(f FIFO, v register.Reg) bool {
	if f.Cap()-f.Len() < 4 {
		return false
	}
	for i := range 4 {
		f.PushWord(v.Word(i))
	}
	return true
}

// popQword pops four words as a 128 bit value, refusing unless all four are
// available.
func popQword(f FIFO) (register.Reg, bool) {
	if f.Len() < 4 {
		return register.Reg{}, false
	}
	var r register.Reg
	for i := range 4 {
		w, _ := f.PopWord()
		r.SetWordLane(i, w)
	}
	return r, true
}

// DMAC owns the ten channels and the global registers.
type DMAC struct {
	Channels [NumChannels]Channel

	DCtrl  uint32
	DStat  DStat
	DPCR   uint32
	DSQWC  uint32
	DRBSR  uint32
	DRBOR  uint32
	DStadr uint32
	DEnable uint32
}

// New returns a freshly reset DMAC.
func New() *DMAC {
	return &DMAC{DEnable: 0x1201}
}

// Suspended reports whether d_enable bit 16 suspends all channel progress.
func (d *DMAC) Suspended() bool {
	return d.DEnable&0x10000 != 0
}

// Tick advances every running channel by one cycle, cycles times.
func (d *DMAC) Tick(cycles uint32, hub Hub) {
	if d.Suspended() {
		return
	}
	for range cycles {
		for id := range d.Channels {
			d.tickChannel(uint32(id), hub)
		}
	}
}

func (d *DMAC) tickChannel(id uint32, hub Hub) {
	ch := &d.Channels[id]
	if !ch.Control.Running() {
		return
	}

	switch {
	case ch.QwordCount > 0:
		if d.transferQword(id, ch, hub) {
			ch.QwordCount--
			ch.Address += 16
			if ch.QwordCount == 0 && ch.Control.Mode() == ModeNormal {
				ch.EndTransfer = true
			}
		}
	case ch.EndTransfer:
		ch.Control.SetRunning(false)
		ch.EndTransfer = false
		d.DStat.SetChannelIRQ(id)
		if d.DStat.ChannelIRQ()&d.DStat.ChannelIRQMask() != 0 && hub.SetIP1 != nil {
			hub.SetIP1(true)
		}
	default:
		d.fetchTag(id, ch, hub)
	}
}

// transferQword performs one qword of channel-specific transfer. It returns
// false (without mutating qwordCount/address) when the producer/consumer
// side cannot accept the qword this cycle.
func (d *DMAC) transferQword(id uint32, ch *Channel, hub Hub) bool {
	switch id {
	case ChanVIF0, ChanVIF1:
		q, ok := hub.RAM.ReadQword(ch.Address)
		if !ok {
			return false
		}
		return pushQword(hub.VIF[id], q)
	case ChanGIF:
		q, ok := hub.RAM.ReadQword(ch.Address)
		if !ok {
			return false
		}
		return hub.GIF.WritePath3(q)
	case ChanSIF0:
		if hub.SIF0.Len() < 4 {
			return false
		}
		q, ok := popQword(hub.SIF0)
		if !ok {
			return false
		}
		return hub.RAM.WriteQword(ch.Address, q)
	case ChanSIF1:
		q, ok := hub.RAM.ReadQword(ch.Address)
		if !ok {
			return false
		}
		return pushQword(hub.SIF1, q)
	default:
		// IPU_FROM, IPU_TO, SIF2, SPR_FROM, SPR_TO: out of scope no-ops,
		// but a running channel must still retire its qword count.
		return true
	}
}

// fetchTag reads one DMAtag (a RAM qword, or for SIF0 two words from its
// FIFO) and steers the channel by the tag id.
func (d *DMAC) fetchTag(id uint32, ch *Channel, hub Hub) {
	var tag DMATag
	if id == ChanSIF0 {
		// SIF0 tags arrive over the FIFO as a 64 bit pair.
		if hub.SIF0.Len() < 2 {
			return
		}
		w0, _ := hub.SIF0.PopWord()
		w1, _ := hub.SIF0.PopWord()
		tag = DMATag(register.Reg{Lo: uint64(w0) | uint64(w1)<<32})

		ch.QwordCount = tag.Qwords()
		ch.Control.SetTag(tag.RawTag())
		ch.Address = tag.Address()
		ch.TagAddress.SetAddress(ch.TagAddress.Address() + 16)

		if ch.Control.EnableIRQ() && tag.IRQ() {
			ch.EndTransfer = true
		}
		return
	}

	q, ok := hub.RAM.ReadQword(ch.TagAddress.Address())
	if !ok {
		return
	}
	tag = DMATag(q)

	ch.QwordCount = tag.Qwords()
	ch.Control.SetTag(tag.RawTag())

	tagAddr := ch.TagAddress.Address()
	switch tag.ID() {
	case TagREFE:
		ch.Address = tag.Address()
		ch.TagAddress.SetAddress(tagAddr + 16)
		ch.EndTransfer = true
	case TagCNT:
		ch.Address = tagAddr + 16
		ch.TagAddress.SetAddress(ch.Address + uint32(ch.QwordCount)*16)
	case TagNEXT:
		ch.Address = tagAddr + 16
		ch.TagAddress.SetAddress(tag.Address())
	case TagREF, TagREFS:
		ch.Address = tag.Address()
		ch.TagAddress.SetAddress(tagAddr + 16)
	case TagCALL, TagRET, TagEND:
		ch.Address = tagAddr + 16
		ch.EndTransfer = true
	default:
		ch.Address = tagAddr + 16
		ch.EndTransfer = true
	}

	if ch.Control.EnableIRQ() && tag.IRQ() {
		ch.EndTransfer = true
	}
}
