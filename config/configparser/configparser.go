/*
 * ps2emu - Configuration file parser.
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

// Package configparser reads the emulator's line-oriented configuration
// file. Each line is a keyword followed by whitespace-separated values; '#'
// starts a comment.
//
//	bios  <path>          firmware image
//	boot  <path>          ELF or CD image to boot after the BIOS
//	log   <path>          log file
//	debug <component> <flag>[,<flag>...]
package configparser

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Config holds the parsed configuration.
type Config struct {
	BiosPath string
	BootPath string
	LogPath  string
	Debug    map[string][]string
}

// New returns an empty configuration.
func New() *Config {
	return &Config{Debug: map[string][]string{}}
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := New()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := cfg.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return cfg, scanner.Err()
}

func (c *Config) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	keyword := strings.ToLower(fields[0])
	args := fields[1:]
	switch keyword {
	case "bios":
		if len(args) != 1 {
			return fmt.Errorf("bios takes one path, got %d values", len(args))
		}
		c.BiosPath = args[0]
	case "boot":
		if len(args) != 1 {
			return fmt.Errorf("boot takes one path, got %d values", len(args))
		}
		c.BootPath = args[0]
	case "log":
		if len(args) != 1 {
			return fmt.Errorf("log takes one path, got %d values", len(args))
		}
		c.LogPath = args[0]
	case "debug":
		if len(args) != 2 {
			return fmt.Errorf("debug takes a component and a flag list")
		}
		component := strings.ToLower(args[0])
		for _, flag := range strings.Split(args[1], ",") {
			flag = strings.TrimSpace(flag)
			if flag != "" {
				c.Debug[component] = append(c.Debug[component], strings.ToLower(flag))
			}
		}
	default:
		return fmt.Errorf("unknown keyword %q", keyword)
	}
	return nil
}

// DebugEnabled reports whether a debug flag was requested for a component.
func (c *Config) DebugEnabled(component, flag string) bool {
	for _, f := range c.Debug[strings.ToLower(component)] {
		if f == strings.ToLower(flag) {
			return true
		}
	}
	return false
}
