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
	"bufio"
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/host"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

const (
	FRAME = time.Second / host.VBLANK_HZ

	KEY_ESCAPE = 0x1B
	KEY_SPACE  = ' '
)

// Renders the framebuffer two rows per line with half block characters
func halfBlocks(pixel func(x, y int) bool) string {
	var sb strings.Builder

	for y := 0; y < machine.DISPLAY_HEIGHT; y += 2 {
		for x := range machine.DISPLAY_WIDTH {
			top, bottom := pixel(x, y), pixel(x, y+1)

			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}

		sb.WriteString("\033[K\n")
	}

	return sb.String()
}

type console struct {
	mc    *machine.Machine
	pacer *host.Pacer
	sound *sound
	dbg   *debugger.Debugger
	keys  *keymap.Autorelease
	rom   []byte

	out   *bufio.Writer
	input []byte
	last  time.Time

	dirty       bool
	quit        bool
	interrupted atomic.Bool
}

// notifyInterrupt sets interrupted on every interrupt signal until the returned
// stop function is called.
func notifyInterrupt(interrupted *atomic.Bool) (stop func()) {
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})

	signal.Notify(sig, os.Interrupt)

	go func() {
		defer close(done)

		for range sig {
			interrupted.Store(true)
		}
	}()

	return func() {
		signal.Stop(sig)
		close(sig)
		<-done
	}
}

func runConsole(
	mc *machine.Machine,
	pacer *host.Pacer,
	snd *sound,
	rom []byte,
	filename string,
) int {
	stdin, stdout := int(os.Stdin.Fd()), int(os.Stdout.Fd())

	if !term.IsTerminal(stdin) || !term.IsTerminal(stdout) {
		logger.Error("Terminal mode needs an interactive terminal")
		return 1
	}

	if width, height, err := term.GetSize(stdout); err == nil &&
		(width < machine.DISPLAY_WIDTH || height < machine.DISPLAY_HEIGHT/2+1) {
		logger.Warn("Terminal smaller than the display",
			log.Int("width", width),
			log.Int("height", height))
	}

	c := &console{
		mc:    mc,
		pacer: pacer,
		sound: snd,
		keys:  keymap.NewAutorelease(),
		rom:   rom,
		out:   bufio.NewWriter(os.Stdout),
		input: make([]byte, 32),
		dirty: true,
	}

	var ctx context.Context

	if debugvar {
		ctx = context.Background()

		c.attachDebugger(filename)

		defer notifyInterrupt(&c.interrupted)()
	} else {
		ctx = app.Context()
	}

	if err := enterRawTerm(); err != nil {
		logger.Error("Unable to enter raw mode", log.Err(err))
		return 1
	}

	err := c.run(ctx)

	fmt.Print("\033[?25h")

	if err := exitRawTerm(); err != nil {
		logger.Error("Unable to restore terminal", log.Err(err))
	}

	if err != nil {
		logger.Error("Machine stopped", log.Err(err))
		return 1
	}

	return 0
}

func (c *console) attachDebugger(filename string) {
	dbg := &debugger.Debugger{
		Output:      os.Stdout,
		HandleBreak: c.handleBreak,
		HandleRead:  c.handleWatch,
		HandleWrite: c.handleWatch,
	}

	symfile := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".c8db"

	if file, err := os.Open(symfile); err == nil {
		var symtable assembler.SymTable

		if err := gob.NewDecoder(file).Decode(&symtable); err == nil {
			dbg.SymTable = &symtable
		} else {
			logger.Warn("Error loading symbol file", log.String("file", symfile), log.Err(err))
		}

		file.Close()
	} else {
		logger.Debug("No symbol file", log.String("file", symfile))
	}

	if dbg.SymTable != nil && dbg.SymTable.Source != "" {
		if source, err := os.ReadFile(dbg.SymTable.Source); err == nil {
			dbg.Source = bytes.NewReader(source)
		} else {
			logger.Warn("Error loading source file", log.Err(err))
		}
	}

	c.dbg = dbg
	c.mc.Debugger = dbg
}

func (c *console) run(ctx context.Context) error {
	fmt.Fprint(c.out, "\033[?25l\033[2J")

	if c.dbg != nil {
		c.suspend()
		c.repl(true)
	}

	ticker := time.NewTicker(FRAME)
	defer ticker.Stop()

	c.last = time.Now()

	for !c.quit {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := c.frame(); err != nil {
			return err
		}
	}

	return nil
}

func (c *console) frame() error {
	if c.interrupted.Swap(false) && c.dbg != nil {
		c.dbg.Break = true
	}

	c.poll()
	c.keys.Tick(func(key uint8) { c.mc.SetKey(key, false) })

	now := time.Now()
	elapsed := now.Sub(c.last)
	c.last = now

	if err := c.pacer.Advance(elapsed); err != nil {
		return err
	}

	c.sound.frame(c.mc.Tone() && !c.pacer.Paused)

	if c.mc.ScreenChanged() || c.dirty {
		c.draw()
	}

	return nil
}

// Raw mode reads return immediately, so this never blocks
func (c *console) poll() {
	n, _ := os.Stdin.Read(c.input)

	for _, b := range c.input[:n] {
		switch b {
		case KEY_ESCAPE:
			c.quit = true

		case KEY_SPACE:
			c.pacer.Paused = !c.pacer.Paused
			c.dirty = true

		default:
			if key, ok := keymap.Lookup(rune(b)); ok {
				c.keys.Press(key)
				c.mc.SetKey(key, true)
			}
		}
	}
}

func (c *console) draw() {
	c.dirty = false

	status := "RUNNING"
	if c.pacer.Paused {
		status = "PAUSED "
	}

	fmt.Fprint(c.out, "\033[H")
	fmt.Fprint(c.out, halfBlocks(c.mc.Pixel))
	fmt.Fprintf(
		c.out,
		"\033[1m%s\033[0m PC %#04x  %4.0f Hz  \033[1;30m[space] pause [esc] quit\033[0m\033[K",
		status,
		c.mc.State.Program,
		c.pacer.Rate(),
	)

	if err := c.out.Flush(); err != nil {
		logger.Debug("Unable to draw", log.Err(err))
	}
}

// Leaves raw mode and moves the cursor below the display for REPL output
func (c *console) suspend() {
	c.out.Flush()
	c.sound.silence()

	if err := exitRawTerm(); err != nil {
		logger.Error("Unable to restore terminal", log.Err(err))
	}

	fmt.Printf("\033[%d;1H\033[J\033[?25h", machine.DISPLAY_HEIGHT/2+2)
}

func (c *console) resume() {
	if err := enterRawTerm(); err != nil {
		logger.Error("Unable to enter raw mode", log.Err(err))
	}

	fmt.Print("\033[?25l\033[2J")

	c.last = time.Now()
	c.dirty = true
	c.interrupted.Store(false)
}

// Reads debugger commands until one of them resumes the machine. Resets are
// refused when stopped inside an instruction.
func (c *console) repl(boundary bool) {
	defer c.resume()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			c.quit = true
			return
		}

		switch c.dbg.Execute(c.mc, scanner.Text()) {
		case debugger.ACTION_CONTINUE, debugger.ACTION_NEXT:
			return

		case debugger.ACTION_QUIT:
			c.quit = true
			return

		case debugger.ACTION_RESET:
			if !boundary {
				fmt.Println("Reset is only available between instructions")
				continue
			}

			if err := c.mc.LoadBin(bytes.NewReader(c.rom)); err != nil {
				fmt.Println(err)
				continue
			}

			fmt.Println("Machine reset")
			c.dbg.PrintDisasm(&c.mc.State, c.mc.State.Program, 4)
		}
	}
}

func (c *console) handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if c.quit {
		return
	}

	c.suspend()

	if !dbg.Break {
		fmt.Println("Program stopped")
	}

	if dbg.Source != nil {
		dbg.PrintSource(mc.State.Program, 8)
	} else {
		dbg.PrintDisasm(&mc.State, mc.State.Program, 8)
	}

	c.repl(true)
}

func (c *console) handleWatch(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	if c.quit {
		return
	}

	c.suspend()

	fmt.Println("Program stopped")
	dbg.PrintMem(&mc.State, addr, 1)

	c.repl(false)
}
