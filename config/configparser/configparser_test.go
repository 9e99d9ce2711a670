/*
 * ps2emu - Configuration parser tests.
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

package configparser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ps2.cfg")
	content := `# test config
bios scph10000.bin
boot game.elf     # boot target
log ps2.log
debug cpu inst,irq
debug dmac chain
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BiosPath != "scph10000.bin" {
		t.Errorf("bios = %q", cfg.BiosPath)
	}
	if cfg.BootPath != "game.elf" {
		t.Errorf("boot = %q", cfg.BootPath)
	}
	if cfg.LogPath != "ps2.log" {
		t.Errorf("log = %q", cfg.LogPath)
	}
	if !cfg.DebugEnabled("CPU", "IRQ") {
		t.Error("debug cpu irq not recorded")
	}
	if !cfg.DebugEnabled("dmac", "chain") {
		t.Error("debug dmac chain not recorded")
	}
	if cfg.DebugEnabled("gif", "tag") {
		t.Error("unrequested debug flag reported enabled")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown keyword", "frobnicate on"},
		{"bios arity", "bios a b"},
		{"debug arity", "debug cpu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := New().parseLine(tt.line); err == nil {
				t.Errorf("parseLine(%q) succeeded, want error", tt.line)
			}
		})
	}
}
