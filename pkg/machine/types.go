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
	"math/rand/v2"
)

// Register indexes the V0-VF file. Values are only ever produced by masking
// an instruction nibble, so they always fall within 0x0-0xF.
type Register uint8

func register(nibble byte) Register {
	return Register(nibble & 0xF)
}

type InstructionType uint

// Instruction is a decoded opcode. Fields not used by Type are zero.
type Instruction struct {
	Type InstructionType
	X    Register
	Y    Register
	N    uint8
	NN   uint8
	NNN  uint16
}

type MachineState struct {
	Registers [REGISTER_COUNT]uint8
	Index     uint16
	Program   uint16
	Delay     uint8
	Sound     uint8
	Stack     []uint16
	Memory    [MEMORY_SIZE]byte

	// One row per scanline, bit 0 is the rightmost pixel
	Display [DISPLAY_HEIGHT]uint64

	Keys [KEY_COUNT]bool
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	State    MachineState
	Debugger MachineDebugger

	rng *rand.Rand

	vblank bool

	released    uint8
	hasReleased bool

	// Display as of the last ScreenChanged call
	snapshot [DISPLAY_HEIGHT]uint64
}
