/*
 * ps2emu - Interactive monitor.
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

// Package monitor is a stop-the-world debugger for the core: step batches,
// dump EE/COP0/VU registers, hex-dump memory and run frames, driven from a
// line-edited prompt.
package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/ps2emu/eecore/system"
	"github.com/ps2emu/eecore/util/hex"
)

var commands = []string{
	"step", "frame", "regs", "cop0", "vu", "dump", "run", "quit", "help",
}

// Run reads and executes monitor commands until quit or EOF. The system is
// only advanced from this goroutine; nothing else runs while the prompt is
// up.
func Run(sys *system.System) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) []string {
		var out []string
		for _, c := range commands {
			if strings.HasPrefix(c, strings.ToLower(prefix)) {
				out = append(out, c)
			}
		}
		return out
	})

	for {
		input, err := line.Prompt("ps2> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			fmt.Println("error: " + err.Error())
			return
		}
		line.AppendHistory(input)
		if quit := execute(sys, input); quit {
			return
		}
	}
}

func execute(sys *system.System, input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "quit", "q":
		return true
	case "help", "?":
		fmt.Println("step [n]    advance n scheduling batches (default 1)")
		fmt.Println("frame       run one full frame")
		fmt.Println("run <n>     run n frames")
		fmt.Println("regs        dump the EE general registers")
		fmt.Println("cop0        dump the COP0 registers")
		fmt.Println("vu [0|1]    dump a VU register file")
		fmt.Println("dump <addr> [len]  hex-dump physical memory")
		fmt.Println("quit        leave the monitor")
	case "step", "s":
		n := 1
		if len(args) > 0 {
			n, _ = strconv.Atoi(args[0])
		}
		for range max(n, 1) {
			sys.StepBatch()
		}
		fmt.Printf("pc %08X\n", sys.CPU.PC)
	case "frame":
		sys.RunFrame()
		fmt.Printf("pc %08X\n", sys.CPU.PC)
	case "run":
		n := 1
		if len(args) > 0 {
			n, _ = strconv.Atoi(args[0])
		}
		for range max(n, 1) {
			sys.RunFrame()
		}
		fmt.Printf("pc %08X\n", sys.CPU.PC)
	case "regs":
		dumpRegs(sys)
	case "cop0":
		dumpCOP0(sys)
	case "vu":
		id := 0
		if len(args) > 0 {
			id, _ = strconv.Atoi(args[0])
		}
		dumpVU(sys, id&1)
	case "dump":
		if len(args) == 0 {
			fmt.Println("dump <addr> [len]")
			break
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
		if err != nil {
			fmt.Println("bad address: " + args[0])
			break
		}
		length := uint64(64)
		if len(args) > 1 {
			length, _ = strconv.ParseUint(args[1], 0, 32)
		}
		dumpMemory(sys, uint32(addr), uint32(length))
	default:
		fmt.Println("unknown command " + verb + ", try help")
	}
	return false
}

func dumpRegs(sys *system.System) {
	var str strings.Builder
	for i := 0; i < 32; i++ {
		r := sys.CPU.Regs[i]
		fmt.Fprintf(&str, "r%-2d ", i)
		hex.FormatWord(&str, []uint32{r.Word(3), r.Word(2), r.Word(1), r.Word(0)})
		if i%2 == 1 {
			str.WriteByte('\n')
		} else {
			str.WriteString("  ")
		}
	}
	fmt.Fprintf(&str, "pc  %08X  hi0 %016X lo0 %016X\n", sys.CPU.PC, sys.CPU.Hi0, sys.CPU.Lo0)
	fmt.Print(str.String())
}

func dumpCOP0(sys *system.System) {
	c := &sys.CPU.COP0
	fmt.Printf("status %08X cause %08X epc %08X count %08X prid %08X\n",
		c.Regs[12], c.Regs[13], c.Regs[14], c.Regs[9], c.Regs[15])
}

func dumpVU(sys *system.System, id int) {
	v := sys.Bus.VU[id]
	var str strings.Builder
	for i := 0; i < 32; i++ {
		fmt.Fprintf(&str, "vf%-2d %12g %12g %12g %12g\n", i,
			v.Regs.VF[i].Lane(0), v.Regs.VF[i].Lane(1),
			v.Regs.VF[i].Lane(2), v.Regs.VF[i].Lane(3))
	}
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&str, "vi%-2d %04X", i, v.Regs.VI[i])
		if i%4 == 3 {
			str.WriteByte('\n')
		} else {
			str.WriteString("  ")
		}
	}
	fmt.Print(str.String())
}

func dumpMemory(sys *system.System, addr, length uint32) {
	var str strings.Builder
	for off := uint32(0); off < length; off += 16 {
		fmt.Fprintf(&str, "%08X: ", addr+off)
		words := make([]uint32, 4)
		for i := range words {
			words[i] = sys.Bus.Read32(addr + off + uint32(i)*4)
		}
		hex.FormatWord(&str, words)
		str.WriteByte('\n')
	}
	fmt.Print(str.String())
}
