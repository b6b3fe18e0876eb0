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
	"bufio"
	"fmt"
	"io"

	"github.com/lassandro/gochip8/pkg/disasm"
	"github.com/lassandro/gochip8/pkg/machine"
)

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return io.Discard
	}

	return dbg.Output
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// AddBreakpoint reports false if addr already has a breakpoint.
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

// RemoveBreakpoint swaps the last breakpoint into slot i.
func (dbg *Debugger) RemoveBreakpoint(i int) bool {
	if i < 0 || i >= len(dbg.Breakpoints) {
		return false
	}

	dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
	dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
	return true
}

func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

func (dbg *Debugger) RemoveWatchpoint(i int) bool {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return false
	}

	dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
	dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
	return true
}

func (dbg *Debugger) FindLabel(name string) (uint16, bool) {
	if dbg.SymTable == nil {
		return 0, false
	}

	for addr, label := range dbg.SymTable.Labels {
		if label == name {
			return addr, true
		}
	}

	return 0, false
}

func (dbg *Debugger) PrintSource(addr uint16, count uint16) {
	w := dbg.out()

	if dbg.Source == nil {
		fmt.Fprintln(w, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(w, "No instruction found at %#04x\n", addr)
		return
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(w, err)
		return
	}

	lines := make(map[int64]uint16, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		if prev, ok := lines[linebyte]; !ok || lineaddr < prev {
			lines[linebyte] = lineaddr
		}
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := uint16(0); i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, ok := lines[offset]; ok {
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", lineaddr)
		} else {
			fmt.Fprint(w, "\033[1;30m~~~~~~~~\033[0m ")
		}

		fmt.Fprintln(w, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(w, err)
	}
}

// PrintMem dumps count bytes from addr, eight to a row. Addresses wrap
// around the end of memory.
func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint16) {
	w := dbg.out()

	for i := uint16(0); i < count; i++ {
		cur := (addr + i) % machine.MEMORY_SIZE

		if i == 0 {
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", cur)
		} else if i%8 == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "\033[1m[%#04x]\033[0m ", cur)
		}

		result := mc.Memory[cur]

		if result == 0 {
			fmt.Fprintf(w, "\033[1;30m0x%02X\033[0m ", result)
		} else {
			fmt.Fprintf(w, "0x%02X ", result)
		}
	}

	fmt.Fprintln(w)
}

// PrintDisasm lists count instruction words starting at addr, marking the
// program counter and any labels from the symbol table.
func (dbg *Debugger) PrintDisasm(mc *machine.MachineState, addr, count uint16) {
	w := dbg.out()

	addr %= machine.MEMORY_SIZE
	count = min(count, machine.MEMORY_SIZE/2)

	for _, line := range disasm.Disassemble(mc.Memory[:], addr, addr+count*2) {
		lineaddr := line.Addr % machine.MEMORY_SIZE

		if dbg.SymTable != nil {
			if label, ok := dbg.SymTable.Labels[lineaddr]; ok {
				fmt.Fprintf(w, "\033[1m%s:\033[0m\n", label)
			}
		}

		marker := " "
		if lineaddr == mc.Program%machine.MEMORY_SIZE {
			marker = ">"
		}

		text := line.Text
		if !line.Valid {
			text = "\033[1;30m" + text + "\033[0m"
		}

		fmt.Fprintf(
			w, "%s \033[1m[%#04x]\033[0m %02X%02X  %s\n",
			marker, lineaddr, line.High, line.Low, text,
		)
	}
}

func (dbg *Debugger) PrintRegisters(mc *machine.MachineState) {
	w := dbg.out()

	for i, register := range mc.Registers {
		fmt.Fprintf(w, "\033[1mV%X:\033[0m 0x%02X\t", i, register)
		if i%8 == 7 {
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(
		w,
		"\033[1mI:\033[0m %#04x\t\033[1mPC:\033[0m %#04x\t"+
			"\033[1mDT:\033[0m 0x%02X\t\033[1mST:\033[0m 0x%02X\t"+
			"\033[1mSP:\033[0m %d\n",
		mc.Index,
		mc.Program,
		mc.Delay,
		mc.Sound,
		len(mc.Stack),
	)
}
