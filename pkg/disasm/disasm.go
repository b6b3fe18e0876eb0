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

// Package disasm renders CHIP-8 instructions as assembly text that
// pkg/assembler accepts.
package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

var mnemonics = map[machine.InstructionType]chip8.OpcodeID{
	machine.INSTRUCTION_CLS:      chip8.Cls,
	machine.INSTRUCTION_RET:      chip8.Ret,
	machine.INSTRUCTION_JP:       chip8.Jp,
	machine.INSTRUCTION_JP_V0:    chip8.Jp,
	machine.INSTRUCTION_CALL:     chip8.Call,
	machine.INSTRUCTION_SE_BYTE:  chip8.Se,
	machine.INSTRUCTION_SE_REG:   chip8.Se,
	machine.INSTRUCTION_SNE_BYTE: chip8.Sne,
	machine.INSTRUCTION_SNE_REG:  chip8.Sne,
	machine.INSTRUCTION_LD_BYTE:  chip8.Ld,
	machine.INSTRUCTION_LD_REG:   chip8.Ld,
	machine.INSTRUCTION_LD_I:     chip8.Ld,
	machine.INSTRUCTION_LD_VX_DT: chip8.Ld,
	machine.INSTRUCTION_LD_VX_K:  chip8.Ld,
	machine.INSTRUCTION_LD_DT:    chip8.Ld,
	machine.INSTRUCTION_LD_ST:    chip8.Ld,
	machine.INSTRUCTION_LD_F:     chip8.Ld,
	machine.INSTRUCTION_LD_B:     chip8.Ld,
	machine.INSTRUCTION_LD_STORE: chip8.Ld,
	machine.INSTRUCTION_LD_LOAD:  chip8.Ld,
	machine.INSTRUCTION_ADD_BYTE: chip8.Add,
	machine.INSTRUCTION_ADD_REG:  chip8.Add,
	machine.INSTRUCTION_ADD_I:    chip8.Add,
	machine.INSTRUCTION_OR:       chip8.Or,
	machine.INSTRUCTION_AND:      chip8.And,
	machine.INSTRUCTION_XOR:      chip8.Xor,
	machine.INSTRUCTION_SUB:      chip8.Sub,
	machine.INSTRUCTION_SUBN:     chip8.Subn,
	machine.INSTRUCTION_SHR:      chip8.Shr,
	machine.INSTRUCTION_SHL:      chip8.Shl,
	machine.INSTRUCTION_RND:      chip8.Rnd,
	machine.INSTRUCTION_DRW:      chip8.Drw,
	machine.INSTRUCTION_SKP:      chip8.Skp,
	machine.INSTRUCTION_SKNP:     chip8.Sknp,
}

// Mnemonic returns the upper case instruction name, or "" for
// INSTRUCTION_INVALID.
func Mnemonic(ins machine.Instruction) string {
	if id, ok := mnemonics[ins.Type]; ok {
		return strings.ToUpper(chip8.OpcodeIDToName[id])
	}

	return ""
}

func operands(ins machine.Instruction) string {
	x, y := ins.X, ins.Y

	switch ins.Type {
	case machine.INSTRUCTION_JP, machine.INSTRUCTION_CALL:
		return fmt.Sprintf("$%03X", ins.NNN)
	case machine.INSTRUCTION_JP_V0:
		return fmt.Sprintf("V0, $%03X", ins.NNN)
	case machine.INSTRUCTION_SE_BYTE,
		machine.INSTRUCTION_SNE_BYTE,
		machine.INSTRUCTION_LD_BYTE,
		machine.INSTRUCTION_ADD_BYTE,
		machine.INSTRUCTION_RND:
		return fmt.Sprintf("V%X, $%02X", x, ins.NN)
	case machine.INSTRUCTION_SE_REG,
		machine.INSTRUCTION_SNE_REG,
		machine.INSTRUCTION_LD_REG,
		machine.INSTRUCTION_OR,
		machine.INSTRUCTION_AND,
		machine.INSTRUCTION_XOR,
		machine.INSTRUCTION_ADD_REG,
		machine.INSTRUCTION_SUB,
		machine.INSTRUCTION_SUBN,
		machine.INSTRUCTION_SHR,
		machine.INSTRUCTION_SHL:
		return fmt.Sprintf("V%X, V%X", x, y)
	case machine.INSTRUCTION_LD_I:
		return fmt.Sprintf("I, $%03X", ins.NNN)
	case machine.INSTRUCTION_DRW:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, ins.N)
	case machine.INSTRUCTION_SKP, machine.INSTRUCTION_SKNP:
		return fmt.Sprintf("V%X", x)
	case machine.INSTRUCTION_LD_VX_DT:
		return fmt.Sprintf("V%X, DT", x)
	case machine.INSTRUCTION_LD_VX_K:
		return fmt.Sprintf("V%X, K", x)
	case machine.INSTRUCTION_LD_DT:
		return fmt.Sprintf("DT, V%X", x)
	case machine.INSTRUCTION_LD_ST:
		return fmt.Sprintf("ST, V%X", x)
	case machine.INSTRUCTION_ADD_I:
		return fmt.Sprintf("I, V%X", x)
	case machine.INSTRUCTION_LD_F:
		return fmt.Sprintf("F, V%X", x)
	case machine.INSTRUCTION_LD_B:
		return fmt.Sprintf("B, V%X", x)
	case machine.INSTRUCTION_LD_STORE:
		return fmt.Sprintf("[I], V%X", x)
	case machine.INSTRUCTION_LD_LOAD:
		return fmt.Sprintf("V%X, [I]", x)
	}

	return ""
}

// Format renders a decoded instruction, e.g. "DRW V0, V1, $5".
func Format(ins machine.Instruction) string {
	name := Mnemonic(ins)

	if name == "" {
		return ""
	}

	if params := operands(ins); params != "" {
		return name + " " + params
	}

	return name
}

// Word renders the instruction word high, low. Words that do not decode are
// rendered as a .DW directive so the output still assembles.
func Word(high, low byte) string {
	ins, err := machine.Decode(high, low)

	if err != nil {
		return fmt.Sprintf(".DW $%04X", encoding.Word(high, low))
	}

	return Format(ins)
}

type Line struct {
	Addr  uint16
	High  byte
	Low   byte
	Valid bool
	Text  string
}

func (line Line) String() string {
	return fmt.Sprintf("%#04x  %02X%02X  %s", line.Addr, line.High, line.Low, line.Text)
}

// Disassemble lists the words of memory from start up to, but not including,
// end. Reads past the end of memory wrap around to address 0.
func Disassemble(memory []byte, start, end uint16) []Line {
	if len(memory) == 0 || end <= start {
		return nil
	}

	size := len(memory)
	lines := make([]Line, 0, (int(end)-int(start)+1)/2)

	for addr := int(start); addr < int(end); addr += 2 {
		high := memory[addr%size]
		low := memory[(addr+1)%size]

		_, err := machine.Decode(high, low)

		lines = append(lines, Line{
			Addr:  uint16(addr),
			High:  high,
			Low:   low,
			Valid: err == nil,
			Text:  Word(high, low),
		})
	}

	return lines
}
