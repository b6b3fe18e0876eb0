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

package machine

import (
	"github.com/lassandro/gochip8/pkg/encoding"
)

// Decode maps an instruction word onto its Instruction. The returned error is
// ErrInvalidOpcode or ErrMachineCall; callers attach the fetch address.
func Decode(high, low byte) (Instruction, error) {
	x := register(encoding.LowNibble(high))
	y := register(encoding.HighNibble(low))
	n := encoding.LowNibble(low)
	nnn := encoding.Address(high, low)

	ins := Instruction{}

	switch encoding.HighNibble(high) {
	case OP_SYS:
		if high == 0x00 && low == 0xE0 {
			ins.Type = INSTRUCTION_CLS
		} else if high == 0x00 && low == 0xEE {
			ins.Type = INSTRUCTION_RET
		} else {
			return ins, ErrMachineCall
		}

	case OP_JP:
		ins = Instruction{Type: INSTRUCTION_JP, NNN: nnn}

	case OP_CALL:
		ins = Instruction{Type: INSTRUCTION_CALL, NNN: nnn}

	case OP_SEI:
		ins = Instruction{Type: INSTRUCTION_SE_BYTE, X: x, NN: low}

	case OP_SNEI:
		ins = Instruction{Type: INSTRUCTION_SNE_BYTE, X: x, NN: low}

	case OP_SER:
		if n != 0x0 {
			return ins, ErrInvalidOpcode
		}
		ins = Instruction{Type: INSTRUCTION_SE_REG, X: x, Y: y}

	case OP_LDI:
		ins = Instruction{Type: INSTRUCTION_LD_BYTE, X: x, NN: low}

	case OP_ADDI:
		ins = Instruction{Type: INSTRUCTION_ADD_BYTE, X: x, NN: low}

	case OP_ALU:
		ins = Instruction{X: x, Y: y}

		switch n {
		case 0x0:
			ins.Type = INSTRUCTION_LD_REG
		case 0x1:
			ins.Type = INSTRUCTION_OR
		case 0x2:
			ins.Type = INSTRUCTION_AND
		case 0x3:
			ins.Type = INSTRUCTION_XOR
		case 0x4:
			ins.Type = INSTRUCTION_ADD_REG
		case 0x5:
			ins.Type = INSTRUCTION_SUB
		case 0x6:
			ins.Type = INSTRUCTION_SHR
		case 0x7:
			ins.Type = INSTRUCTION_SUBN
		case 0xE:
			ins.Type = INSTRUCTION_SHL
		default:
			return Instruction{}, ErrInvalidOpcode
		}

	case OP_SNER:
		if n != 0x0 {
			return ins, ErrInvalidOpcode
		}
		ins = Instruction{Type: INSTRUCTION_SNE_REG, X: x, Y: y}

	case OP_LDA:
		ins = Instruction{Type: INSTRUCTION_LD_I, NNN: nnn}

	case OP_JPV0:
		ins = Instruction{Type: INSTRUCTION_JP_V0, NNN: nnn}

	case OP_RND:
		ins = Instruction{Type: INSTRUCTION_RND, X: x, NN: low}

	case OP_DRW:
		ins = Instruction{Type: INSTRUCTION_DRW, X: x, Y: y, N: n}

	case OP_KEY:
		switch low {
		case 0x9E:
			ins = Instruction{Type: INSTRUCTION_SKP, X: x}
		case 0xA1:
			ins = Instruction{Type: INSTRUCTION_SKNP, X: x}
		default:
			return ins, ErrInvalidOpcode
		}

	case OP_MISC:
		ins = Instruction{X: x}

		switch low {
		case 0x07:
			ins.Type = INSTRUCTION_LD_VX_DT
		case 0x0A:
			ins.Type = INSTRUCTION_LD_VX_K
		case 0x15:
			ins.Type = INSTRUCTION_LD_DT
		case 0x18:
			ins.Type = INSTRUCTION_LD_ST
		case 0x1E:
			ins.Type = INSTRUCTION_ADD_I
		case 0x29:
			ins.Type = INSTRUCTION_LD_F
		case 0x33:
			ins.Type = INSTRUCTION_LD_B
		case 0x55:
			ins.Type = INSTRUCTION_LD_STORE
		case 0x65:
			ins.Type = INSTRUCTION_LD_LOAD
		default:
			return Instruction{}, ErrInvalidOpcode
		}
	}

	return ins, nil
}

// Encode is the inverse of Decode. Out of range fields are truncated to their
// bit width; an INSTRUCTION_INVALID encodes as 0x0000.
func (ins Instruction) Encode() (high, low byte) {
	x := uint16(ins.X&0xF) << 8
	y := uint16(ins.Y&0xF) << 4
	xy := x | y
	nn := uint16(ins.NN)
	nnn := ins.NNN & 0xFFF

	var word uint16

	switch ins.Type {
	case INSTRUCTION_CLS:
		word = 0x00E0
	case INSTRUCTION_RET:
		word = 0x00EE
	case INSTRUCTION_JP:
		word = 0x1000 | nnn
	case INSTRUCTION_CALL:
		word = 0x2000 | nnn
	case INSTRUCTION_SE_BYTE:
		word = 0x3000 | x | nn
	case INSTRUCTION_SNE_BYTE:
		word = 0x4000 | x | nn
	case INSTRUCTION_SE_REG:
		word = 0x5000 | xy
	case INSTRUCTION_LD_BYTE:
		word = 0x6000 | x | nn
	case INSTRUCTION_ADD_BYTE:
		word = 0x7000 | x | nn
	case INSTRUCTION_LD_REG:
		word = 0x8000 | xy
	case INSTRUCTION_OR:
		word = 0x8001 | xy
	case INSTRUCTION_AND:
		word = 0x8002 | xy
	case INSTRUCTION_XOR:
		word = 0x8003 | xy
	case INSTRUCTION_ADD_REG:
		word = 0x8004 | xy
	case INSTRUCTION_SUB:
		word = 0x8005 | xy
	case INSTRUCTION_SHR:
		word = 0x8006 | xy
	case INSTRUCTION_SUBN:
		word = 0x8007 | xy
	case INSTRUCTION_SHL:
		word = 0x800E | xy
	case INSTRUCTION_SNE_REG:
		word = 0x9000 | xy
	case INSTRUCTION_LD_I:
		word = 0xA000 | nnn
	case INSTRUCTION_JP_V0:
		word = 0xB000 | nnn
	case INSTRUCTION_RND:
		word = 0xC000 | x | nn
	case INSTRUCTION_DRW:
		word = 0xD000 | xy | uint16(ins.N&0xF)
	case INSTRUCTION_SKP:
		word = 0xE09E | x
	case INSTRUCTION_SKNP:
		word = 0xE0A1 | x
	case INSTRUCTION_LD_VX_DT:
		word = 0xF007 | x
	case INSTRUCTION_LD_VX_K:
		word = 0xF00A | x
	case INSTRUCTION_LD_DT:
		word = 0xF015 | x
	case INSTRUCTION_LD_ST:
		word = 0xF018 | x
	case INSTRUCTION_ADD_I:
		word = 0xF01E | x
	case INSTRUCTION_LD_F:
		word = 0xF029 | x
	case INSTRUCTION_LD_B:
		word = 0xF033 | x
	case INSTRUCTION_LD_STORE:
		word = 0xF055 | x
	case INSTRUCTION_LD_LOAD:
		word = 0xF065 | x
	}

	return encoding.SplitWord(word)
}
