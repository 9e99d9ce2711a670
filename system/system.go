/*
 * ps2emu - System aggregate and frame loop.
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

// Package system owns every subsystem by value and runs the interleaved
// frame cadence: a batch of EE cycles, then proportional DMAC, VIF and GIF
// ticks, with the vblank edge raised at a fixed cycle offset into the
// frame. Apart from the references fixed at construction (the CPU's bus and
// VU0, the GIF's GS sink), cross-component traffic flows through the bus and
// the narrow capability hubs built here.
package system

import (
	"io"
	"log/slog"
	"sync"

	"github.com/ps2emu/eecore/bus"
	"github.com/ps2emu/eecore/cpu"
	"github.com/ps2emu/eecore/dmac"
	"github.com/ps2emu/eecore/intc"
)

// Frame timing in EE cycles.
const (
	FrameCycles  = 4_919_808
	VblankCycles = 4_498_432

	eeBatch   = 32
	dmacBatch = 16
	gifBatch  = 16
)

// System aggregates the whole console core.
type System struct {
	Bus *bus.Bus
	CPU *cpu.CPU

	frameCycles uint32
	inVblank    bool
	oddField    bool

	wg   sync.WaitGroup
	done chan struct{}
}

// New constructs the full core: bus (which owns memory and every MMIO
// component) plus the CPU, wired to VU0 and the interrupt cause lines.
func New(console io.Writer) *System {
	b := bus.New(console)
	c := cpu.New(b, b.VU[0])
	b.OnIP0 = c.SetIP0Pending
	b.OnIP1 = c.SetIP1Pending
	return &System{
		Bus:  b,
		CPU:  c,
		done: make(chan struct{}),
	}
}

// LoadBIOS loads the firmware image. A missing file leaves the ROM zeroed;
// the caller decides whether that is fatal.
func (s *System) LoadBIOS(path string) error {
	if err := s.Bus.Mem.LoadBIOS(path); err != nil {
		slog.Error("BIOS load failed", "path", path, "err", err)
		return err
	}
	// The reset vector may have changed under the prefetched slot.
	s.CPU.Reset()
	return nil
}

// Trigger latches an INTC source and mirrors the result into COP0.
func (s *System) Trigger(src uint32) {
	s.Bus.INTC.Trigger(src)
	s.CPU.SetIP0Pending(s.Bus.INTC.Pending())
}

// hub builds the DMAC's per-tick capability set.
func (s *System) hub() dmac.Hub {
	return s.Bus.Hub(s.CPU.SetIP1Pending)
}

// StepBatch advances the core by one scheduling quantum: 32 EE cycles, 16
// timer ticks (a 2:1 divider off the EE clock), and 16 cycles each of DMAC
// and GIF progress. VIF FIFOs are drained here in lieu of a VU command
// pipeline.
func (s *System) StepBatch() {
	s.CPU.Clock(eeBatch)
	s.Bus.Timers.Tick(eeBatch/2, intc.IntTimer0, s.Trigger)
	s.Bus.DMAC.Tick(dmacBatch, s.hub())
	s.drainVIF(dmacBatch)
	s.Bus.GIF.Tick(gifBatch)
	s.frameCycles += eeBatch

	if !s.inVblank && s.frameCycles >= VblankCycles {
		s.enterVblank()
	}
	if s.frameCycles >= FrameCycles {
		s.frameCycles = 0
		s.inVblank = false
	}
}

// RunFrame advances one full video frame.
func (s *System) RunFrame() {
	for {
		s.StepBatch()
		if s.frameCycles == 0 {
			return
		}
	}
}

// enterVblank raises the vblank edge: flips the GS field bit, fires the GS
// interrupt unless masked by IMR, and latches INT_VB_ON.
func (s *System) enterVblank() {
	s.inVblank = true
	s.oddField = !s.oddField
	csr := s.Bus.GS.Priv.CSR &^ (1 << 13)
	if s.oddField {
		csr |= 1 << 13
	}
	s.Bus.GS.Priv.CSR = csr | 0x8 // vsync event latched

	if s.Bus.GS.Priv.IMR&(1<<11) == 0 {
		s.Trigger(intc.IntGS)
	}
	s.Trigger(intc.IntVBOn)
}

// drainVIF consumes buffered VIF traffic. The VU command pipeline is an
// external collaborator; draining keeps the DMAC's VIF channels from
// wedging on a full FIFO.
func (s *System) drainVIF(words int) {
	for range words {
		s.Bus.VIF0.PopWord()
		s.Bus.VIF1.PopWord()
	}
}

// Start runs frames on a new goroutine until Stop is called.
func (s *System) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.done:
				slog.Info("shutdown EE core")
				return
			default:
				s.RunFrame()
			}
		}
	}()
}

// Stop signals the frame loop to exit and waits for it.
func (s *System) Stop() {
	close(s.done)
	s.wg.Wait()
}
