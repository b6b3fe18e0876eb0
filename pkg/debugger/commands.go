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

package debugger

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

const helpText = `break    [add|list|remove|clear]   manage breakpoints
watch    [add|list|remove|clear]   manage watchpoints
register [V#|I|PC|DT|ST] [value]   print or set registers
memory   [0x###|#] [#]             dump memory
set      [0x###] [value]           write one byte of memory
disasm   [0x###|label] [#]         disassemble memory
source   [0x###|label] [#]         print source lines
labels                             list labels
jump     [0x###|label]             move the program counter
next                               step one instruction
continue                           resume execution
reset                              reload the program
clear                              clear the screen
quit                               stop the machine`

// Execute runs one REPL command line against mc. An empty line repeats the
// previous command.
func (dbg *Debugger) Execute(mc *machine.Machine, line string) Action {
	args := strings.Fields(line)

	if len(args) == 0 {
		if len(dbg.lastcmd) == 0 {
			return ACTION_NONE
		}
		args = dbg.lastcmd
	} else {
		dbg.lastcmd = slices.Clone(args)
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "b", "bp", "break", "breakpoint":
		dbg.cmdBreak(mc, args)

	case "w", "wp", "watch", "watchpoint":
		dbg.cmdWatch(args)

	case "r", "reg", "register", "registers":
		dbg.cmdRegister(&mc.State, args)

	case "s", "src", "source":
		dbg.cmdSource(&mc.State, args)

	case "d", "dis", "disasm":
		dbg.cmdDisasm(&mc.State, args)

	case "l", "label", "labels":
		dbg.cmdLabels(args)

	case "j", "jmp", "jump":
		dbg.cmdJump(&mc.State, args)

	case "m", "mem", "memory":
		dbg.cmdMemory(&mc.State, args)

	case "set":
		dbg.cmdSet(&mc.State, args)

	case "c", "continue":
		dbg.Break = false
		return ACTION_CONTINUE

	case "n", "next":
		dbg.Break = true
		return ACTION_NEXT

	case "q", "quit", "exit":
		return ACTION_QUIT

	case "reset":
		return ACTION_RESET

	case "clear":
		fmt.Fprint(dbg.out(), "\033[H\033[2J")

	case "h", "help":
		fmt.Fprintln(dbg.out(), helpText)

	default:
		fmt.Fprintf(dbg.out(), "error: '%s' is not a valid command\n", cmd)
	}

	return ACTION_NONE
}

// Resolves a label name or a hex address.
func (dbg *Debugger) address(s string) (uint16, error) {
	if addr, ok := dbg.FindLabel(s); ok {
		return addr, nil
	}

	return encoding.DecodeHex(s)
}

func indexFormat(count int, suffix string) string {
	digits := math.Floor(math.Log10(float64(count + 1)))
	return fmt.Sprintf("#%%0%dd: %%#04x%s\n", int64(digits)+1, suffix)
}

func (dbg *Debugger) cmdBreak(mc *machine.Machine, args []string) {
	w := dbg.out()

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x###|label]"

		var addr uint16

		switch len(args) {
		case 0:
			addr = mc.State.Program
		case 1:
			var err error
			if addr, err = dbg.address(args[0]); err != nil {
				fmt.Fprintln(w, err)
				return
			}
		default:
			fmt.Fprintln(w, usage)
			return
		}

		if dbg.AddBreakpoint(addr) {
			fmt.Fprintf(w, "Breakpoint added [%#04x]\n", addr)
		}

	case "l", "ls", "list":
		if len(args) != 0 {
			fmt.Fprintln(w, "break list")
			return
		}

		fmtstring := indexFormat(len(dbg.Breakpoints), "")

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Fprintf(w, fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			fmt.Fprintln(w, usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			fmt.Fprintln(w, err)
			return
		}

		if !dbg.RemoveBreakpoint(i) {
			fmt.Fprintln(w, "Invalid breakpoint number")
			return
		}

		fmt.Fprintf(w, "Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Fprintln(w, "Breakpoints reset")

	default:
		fmt.Fprintf(w, "break: '%s' is not a valid command\n", cmd)
	}
}

func (dbg *Debugger) cmdWatch(args []string) {
	w := dbg.out()

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x###|label] [read|write|readwrite]"

		if len(args) != 2 {
			fmt.Fprintln(w, usage)
			return
		}

		addr, err := dbg.address(args[0])

		if err != nil {
			fmt.Fprintln(w, err)
			return
		}

		var wtype WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = ReadWatch
		case "w", "write":
			wtype = WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = ReadWriteWatch
		default:
			fmt.Fprintln(w, usage)
			return
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Fprintf(w, "Watchpoint added [%#04x] (%s)\n", addr, wtype)
		}

	case "l", "ls", "list":
		if len(args) != 0 {
			fmt.Fprintln(w, "watch list")
			return
		}

		fmtstring := indexFormat(len(dbg.Watchpoints), " %s")

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Fprintf(w, fmtstring, i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			fmt.Fprintln(w, usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			fmt.Fprintln(w, err)
			return
		}

		if !dbg.RemoveWatchpoint(i) {
			fmt.Fprintln(w, "Invalid watchpoint number")
			return
		}

		fmt.Fprintf(w, "Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = nil
		fmt.Fprintln(w, "Watchpoints reset")

	default:
		fmt.Fprintf(w, "watch: '%s' is not a valid command\n", cmd)
	}
}

func (dbg *Debugger) cmdRegister(mc *machine.MachineState, args []string) {
	const usage = "register [V#|I|PC|DT|ST] [value]"

	w := dbg.out()

	if len(args) == 0 {
		dbg.PrintRegisters(mc)
		return
	}

	if len(args) != 2 {
		fmt.Fprintln(w, usage)
		return
	}

	value, err := encoding.DecodeLiteral(args[1])

	if err != nil {
		fmt.Fprintln(w, err)
		return
	}

	name := strings.ToUpper(args[0])

	limit := math.MaxUint8
	if name == "I" || name == "PC" {
		limit = math.MaxUint16
	}

	if value < 0 || value > limit {
		fmt.Fprintf(w, "%s: value %d out of range\n", name, value)
		return
	}

	switch {
	case name == "I":
		mc.Index = uint16(value)
	case name == "PC":
		mc.Program = uint16(value)
	case name == "DT":
		mc.Delay = uint8(value)
	case name == "ST":
		mc.Sound = uint8(value)
	case len(name) == 2 && name[0] == 'V':
		i, err := strconv.ParseUint(name[1:], 16, 4)

		if err != nil {
			fmt.Fprintln(w, "Invalid register")
			return
		}

		mc.Registers[i] = uint8(value)
	default:
		fmt.Fprintln(w, "Invalid register")
		return
	}

	fmt.Fprintf(w, "\033[1m%s:\033[0m %#04x\n", name, value)
}

// Parses "[0x###|label] [#]" style arguments. A lone decimal argument is a
// count starting from the program counter.
func (dbg *Debugger) span(mc *machine.MachineState, args []string, size uint16) (uint16, uint16, bool) {
	w := dbg.out()
	addr := mc.Program

	if len(args) > 0 {
		if value, err := dbg.address(args[0]); err == nil {
			addr = value
		} else {
			value, err := strconv.ParseUint(args[0], 10, 16)

			if err != nil {
				fmt.Fprintln(w, err)
				return 0, 0, false
			}

			size = uint16(value)
		}
	}

	if len(args) > 1 {
		value, err := strconv.ParseUint(args[1], 10, 16)

		if err != nil {
			fmt.Fprintln(w, err)
			return 0, 0, false
		}

		size = uint16(value)
	}

	return addr, size, true
}

func (dbg *Debugger) cmdSource(mc *machine.MachineState, args []string) {
	if len(args) > 2 {
		fmt.Fprintln(dbg.out(), "source [0x###|label] [#]")
		return
	}

	if addr, size, ok := dbg.span(mc, args, 3); ok {
		dbg.PrintSource(addr, size)
	}
}

func (dbg *Debugger) cmdDisasm(mc *machine.MachineState, args []string) {
	if len(args) > 2 {
		fmt.Fprintln(dbg.out(), "disasm [0x###|label] [#]")
		return
	}

	if addr, size, ok := dbg.span(mc, args, 8); ok {
		dbg.PrintDisasm(mc, addr, size)
	}
}

func (dbg *Debugger) cmdMemory(mc *machine.MachineState, args []string) {
	if len(args) > 2 {
		fmt.Fprintln(dbg.out(), "memory [0x###|#] [#]")
		return
	}

	if addr, size, ok := dbg.span(mc, args, 1); ok {
		dbg.PrintMem(mc, addr, size)
	}
}

func (dbg *Debugger) cmdLabels(args []string) {
	w := dbg.out()

	if len(args) > 0 {
		fmt.Fprintln(w, "labels")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	slices.Sort(keys)

	for _, addr := range keys {
		fmt.Fprintf(w, "\033[1m[%#04x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr])
	}
}

func (dbg *Debugger) cmdJump(mc *machine.MachineState, args []string) {
	w := dbg.out()

	if len(args) != 1 {
		fmt.Fprintln(w, "jump [0x###|label]")
		return
	}

	if addr, ok := dbg.FindLabel(args[0]); ok {
		mc.Program = addr
		fmt.Fprintf(
			w, "\033[1mPC:\033[0m %#04x \033[1;30m(%s)\033[0m\n", addr, args[0],
		)
		return
	}

	addr, err := encoding.DecodeHex(args[0])

	if err != nil {
		fmt.Fprintf(w, "Unable to find '%s'\n", args[0])
		return
	}

	mc.Program = addr
	fmt.Fprintf(w, "\033[1mPC:\033[0m %#04x\n", addr)
}

func (dbg *Debugger) cmdSet(mc *machine.MachineState, args []string) {
	w := dbg.out()

	if len(args) != 2 {
		fmt.Fprintln(w, "set [0x###|label] [value]")
		return
	}

	addr, err := dbg.address(args[0])

	if err != nil {
		fmt.Fprintln(w, err)
		return
	}

	value, err := encoding.DecodeLiteral(args[1])

	if err != nil {
		fmt.Fprintln(w, err)
		return
	}

	if value < 0 || value > math.MaxUint8 {
		fmt.Fprintf(w, "set: value %d out of range\n", value)
		return
	}

	addr %= machine.MEMORY_SIZE
	mc.Memory[addr] = uint8(value)
	dbg.PrintMem(mc, addr, 1)
}
