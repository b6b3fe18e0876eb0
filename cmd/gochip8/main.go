// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"

	"github.com/lassandro/gochip8/pkg/host"
	"github.com/lassandro/gochip8/pkg/machine"
)

var helpvar bool
var debugvar bool
var termvar bool
var seedvar uint64
var cpuvar int
var scalevar int
var fgvar string
var bgvar string
var tonevar float64
var mutevar bool
var wavvar string
var verbosevar bool
var quietvar bool

var logger *log.Logger

const usage = "gochip8 [flags] filename"

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in the terminal with a debug CLI")
	flag.BoolVar(&termvar, "term", false, "Renders to the terminal instead of a window")
	flag.Uint64Var(&seedvar, "seed", 0, "Seeds the random number generator")
	flag.IntVar(&cpuvar, "cpu", host.CPU_HZ, "Instructions per second")
	flag.IntVar(&scalevar, "scale", 10, "Window pixels per display pixel")
	flag.StringVar(&fgvar, "fg", "#FFFFFF", "Foreground colour")
	flag.StringVar(&bgvar, "bg", "#000000", "Background colour")
	flag.Float64Var(&tonevar, "tone", 120, "Tone frequency in Hz")
	flag.BoolVar(&mutevar, "mute", false, "Disables audio output")
	flag.StringVar(&wavvar, "wav", "", "Records the tone to a WAV file")
	flag.BoolVar(&verbosevar, "verbose", false, "Enables debug logging")
	flag.BoolVar(&quietvar, "quiet", false, "Only logs errors")
}

func createLogger(verbose, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if verbose {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func seeded() bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			found = true
		}
	})
	return found
}

func gochip8() int {
	flag.Parse()

	logger = createLogger(verbosevar, quietvar)

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		logger.Error(usage)
		return 1
	}

	if scalevar < 1 {
		logger.Error("Scale must be at least 1", log.Int("scale", scalevar))
		return 1
	}

	rom, err := os.ReadFile(args[0])

	if err != nil {
		logger.Error("Unable to read program", log.String("file", args[0]), log.Err(err))
		return 1
	}

	if len(rom) > machine.PROGRAM_SIZE {
		logger.Warn("Program truncated",
			log.Int("size", len(rom)),
			log.Int("limit", machine.PROGRAM_SIZE))
	}

	mc, err := machine.New(bytes.NewReader(rom))

	if err != nil {
		logger.Error("Unable to load program", log.Err(err))
		return 1
	}

	if seeded() {
		mc.Seed(seedvar)
	}

	logger.Debug("Program loaded",
		log.String("file", args[0]),
		log.Int("size", len(rom)),
		log.Int("cpu", cpuvar))

	snd := newSound(tonevar, mutevar, wavvar)
	defer snd.Close()

	pacer := host.NewPacer(mc, cpuvar)

	if debugvar || termvar {
		return runConsole(mc, pacer, snd, rom, args[0])
	}

	return runWindow(mc, pacer, snd)
}

func main() {
	os.Exit(gochip8())
}
