/*
 * ps2emu - Main process.
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

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	config "github.com/ps2emu/eecore/config/configparser"
	"github.com/ps2emu/eecore/cpu"
	"github.com/ps2emu/eecore/monitor"
	"github.com/ps2emu/eecore/system"
	logger "github.com/ps2emu/eecore/util/logger"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optMonitor := getopt.BoolLong("monitor", 'm', "Start in the interactive monitor")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	cfg := config.New()
	if *optConfig != "" {
		loaded, err := config.LoadFile(*optConfig)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
		cfg = loaded
	}

	// Positional arguments win over the config file: <bios> [elf-or-cdrom].
	args := getopt.Args()
	if len(args) > 0 {
		cfg.BiosPath = args[0]
	}
	if len(args) > 1 {
		cfg.BootPath = args[1]
	}
	if *optLogFile != "" {
		cfg.LogPath = *optLogFile
	}

	var file *os.File
	if cfg.LogPath != "" {
		file, _ = os.Create(cfg.LogPath)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	debug := cfg.DebugEnabled("log", "stderr")
	slog.SetDefault(slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, &debug)))

	slog.Info("ps2emu started")
	if cfg.BiosPath == "" {
		getopt.Usage()
		slog.Error("no BIOS image given")
		os.Exit(1)
	}

	// Guest console output goes to stderr, away from the monitor prompt.
	sys := system.New(os.Stderr)
	if err := sys.LoadBIOS(cfg.BiosPath); err != nil {
		slog.Error("cannot open BIOS image " + cfg.BiosPath)
		os.Exit(1)
	}
	if cfg.BootPath != "" {
		slog.Info("boot target queued", "path", cfg.BootPath)
	}
	if cfg.DebugEnabled("cpu", "inst") {
		sys.CPU.SetTrace(func(in cpu.Instruction) {
			slog.Debug("exec", "pc", in.PC, "word", in.Value)
		})
	}

	if *optMonitor {
		monitor.Run(sys)
		return
	}

	sys.Start()

	// Wait for a SIGINT or SIGTERM to gracefully shut down.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")
	sys.Stop()
}
