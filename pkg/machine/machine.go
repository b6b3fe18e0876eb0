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
	"fmt"
	"io"
	"math/rand/v2"
)

func (mc *MachineState) Reset() {
	stack := mc.Stack[:0]

	*mc = MachineState{}

	if cap(stack) < STACK_RESERVE {
		stack = make([]uint16, 0, STACK_RESERVE)
	}

	mc.Stack = stack
	mc.Program = MEMSPACE_PROGRAM

	// Font glyphs are never written again after this point
	copy(mc.Memory[MEMSPACE_FONT:], fontGlyphs[:])
}

// New returns a machine with the program read from reader loaded at
// MEMSPACE_PROGRAM.
func New(reader io.Reader) (*Machine, error) {
	var mc Machine

	if err := mc.LoadBin(reader); err != nil {
		return nil, err
	}

	return &mc, nil
}

// Reset zeroes the machine and clears the vblank and key latches. The random
// generator is kept.
func (mc *Machine) Reset() {
	mc.State.Reset()

	mc.vblank = false
	mc.released = 0
	mc.hasReleased = false
	mc.snapshot = [DISPLAY_HEIGHT]uint64{}
}

// LoadBin resets the machine and copies at most PROGRAM_SIZE bytes from
// reader into the program area. Bytes past that are never read, and a short
// program leaves the rest of the area zeroed.
func (mc *Machine) LoadBin(reader io.Reader) error {
	mc.Reset()

	program := mc.State.Memory[MEMSPACE_PROGRAM : MEMSPACE_PROGRAM_END+1]

	if _, err := io.ReadFull(reader, program); err != nil &&
		err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return nil
}

func (mc *Machine) Seed(seed uint64) {
	mc.rng = rand.New(rand.NewPCG(seed, seed))
}

func (mc *Machine) random() uint8 {
	if mc.rng == nil {
		mc.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return uint8(mc.rng.Uint32())
}

func (mc *Machine) push(value uint16) {
	mc.State.Stack = append(mc.State.Stack, value)
}

func (mc *Machine) pop() (uint16, bool) {
	size := len(mc.State.Stack)

	if size == 0 {
		return 0, false
	}

	result := mc.State.Stack[size-1]
	mc.State.Stack = mc.State.Stack[:size-1]
	return result, true
}

func (mc *Machine) read(addr uint16) byte {
	addr %= MEMORY_SIZE

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr uint16, value byte) {
	addr %= MEMORY_SIZE

	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

// Fetch returns the instruction bytes at addr without side effects.
func (mc *Machine) Fetch(addr uint16) (high, low byte) {
	return mc.State.Memory[addr%MEMORY_SIZE], mc.State.Memory[(addr+1)%MEMORY_SIZE]
}

// Step executes the instruction at the program counter. Instructions that
// block (a key wait, or a draw before the next vblank) complete without error
// and leave the program counter on themselves. A program counter with no
// full instruction left before the end of memory fails with ErrProgramEnd.
func (mc *Machine) Step() error {
	addr := mc.State.Program

	if addr > MEMORY_SIZE-2 {
		return &InstructionError{Err: ErrProgramEnd, Addr: addr}
	}

	high, low := mc.Fetch(addr)

	mc.State.Program += 2

	ins, err := Decode(high, low)

	if err == nil {
		err = mc.execute(ins)
	}

	if err != nil {
		return &InstructionError{Err: err, High: high, Low: low, Addr: addr}
	}

	mc.hasReleased = false

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return nil
}

func flag(set bool) uint8 {
	if set {
		return 1
	}

	return 0
}

func (mc *Machine) execute(ins Instruction) error {
	s := &mc.State

	switch ins.Type {
	// CLS  |0000|0000|1110|0000| Clear display
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_CLS:
		s.Display = [DISPLAY_HEIGHT]uint64{}

	// RET  |0000|0000|1110|1110| Return from subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_RET:
		addr, ok := mc.pop()

		if !ok {
			return ErrInvalidReturn
		}

		s.Program = addr

	// JP   |0001|nnn           | Jump
	// CALL |0010|nnn           | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_JP:
		s.Program = ins.NNN

	case INSTRUCTION_CALL:
		mc.push(s.Program)
		s.Program = ins.NNN

	// SE   |0011|x   |nn       | Skip if equal
	// SNE  |0100|x   |nn       | Skip if not equal
	// SE   |0101|x   |y   |0000| Skip if registers equal
	// SNE  |1001|x   |y   |0000| Skip if registers not equal
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SE_BYTE:
		if s.Registers[ins.X] == ins.NN {
			s.Program += 2
		}

	case INSTRUCTION_SNE_BYTE:
		if s.Registers[ins.X] != ins.NN {
			s.Program += 2
		}

	case INSTRUCTION_SE_REG:
		if s.Registers[ins.X] == s.Registers[ins.Y] {
			s.Program += 2
		}

	case INSTRUCTION_SNE_REG:
		if s.Registers[ins.X] != s.Registers[ins.Y] {
			s.Program += 2
		}

	// LD   |0110|x   |nn       | Load immediate
	// ADD  |0111|x   |nn       | Add immediate, VF untouched
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_BYTE:
		s.Registers[ins.X] = ins.NN

	case INSTRUCTION_ADD_BYTE:
		s.Registers[ins.X] += ins.NN

	// ALU  |1000|x   |y   |op  | Register arithmetic
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_REG:
		s.Registers[ins.X] = s.Registers[ins.Y]

	// The logical operations reset VF
	case INSTRUCTION_OR:
		s.Registers[ins.X] |= s.Registers[ins.Y]
		s.Registers[FLAG] = 0

	case INSTRUCTION_AND:
		s.Registers[ins.X] &= s.Registers[ins.Y]
		s.Registers[FLAG] = 0

	case INSTRUCTION_XOR:
		s.Registers[ins.X] ^= s.Registers[ins.Y]
		s.Registers[FLAG] = 0

	case INSTRUCTION_ADD_REG:
		sum := uint16(s.Registers[ins.X]) + uint16(s.Registers[ins.Y])
		s.Registers[ins.X] = uint8(sum)
		s.Registers[FLAG] = uint8(sum >> 8)

	case INSTRUCTION_SUB:
		vx, vy := s.Registers[ins.X], s.Registers[ins.Y]
		s.Registers[ins.X] = vx - vy
		s.Registers[FLAG] = flag(vx >= vy)

	case INSTRUCTION_SUBN:
		vx, vy := s.Registers[ins.X], s.Registers[ins.Y]
		s.Registers[ins.X] = vy - vx
		s.Registers[FLAG] = flag(vy >= vx)

	// Shifts take their operand from Vy, and VF is written before Vx
	case INSTRUCTION_SHR:
		vy := s.Registers[ins.Y]
		s.Registers[FLAG] = vy & 0x1
		s.Registers[ins.X] = vy >> 1

	case INSTRUCTION_SHL:
		vy := s.Registers[ins.Y]
		s.Registers[FLAG] = vy >> 7
		s.Registers[ins.X] = vy << 1

	// LD   |1010|nnn           | Load index
	// JP   |1011|nnn           | Jump to V0 + nnn
	// RND  |1100|x   |nn       | Random byte masked with nn
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_I:
		s.Index = ins.NNN

	case INSTRUCTION_JP_V0:
		target := uint16(s.Registers[0x0]) + ins.NNN

		if target >= MEMORY_SIZE {
			s.Program -= 2
			return ErrInvalidJump
		}

		s.Program = target

	case INSTRUCTION_RND:
		s.Registers[ins.X] = mc.random() & ins.NN

	// DRW  |1101|x   |y   |n   | Draw sprite
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_DRW:
		mc.draw(ins)

	// SKP  |1110|x   |1001 1110| Skip if key pressed
	// SKNP |1110|x   |1010 0001| Skip if key not pressed
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SKP:
		if s.Keys[s.Registers[ins.X]&0xF] {
			s.Program += 2
		}

	case INSTRUCTION_SKNP:
		if !s.Keys[s.Registers[ins.X]&0xF] {
			s.Program += 2
		}

	// LD   |1111|x   |op       | Timers, keys, index and memory transfer
	// ---- [ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD_VX_DT:
		s.Registers[ins.X] = s.Delay

	case INSTRUCTION_LD_VX_K:
		if mc.hasReleased {
			s.Registers[ins.X] = mc.released
		} else {
			s.Program -= 2
		}

	case INSTRUCTION_LD_DT:
		s.Delay = s.Registers[ins.X]

	case INSTRUCTION_LD_ST:
		s.Sound = s.Registers[ins.X]

	case INSTRUCTION_ADD_I:
		s.Index += uint16(s.Registers[ins.X])

	case INSTRUCTION_LD_F:
		s.Index = MEMSPACE_FONT + uint16(s.Registers[ins.X]&0xF)*GLYPH_SIZE

	case INSTRUCTION_LD_B:
		value := s.Registers[ins.X]
		mc.write(s.Index, value/100)
		mc.write(s.Index+1, value/10%10)
		mc.write(s.Index+2, value%10)

	case INSTRUCTION_LD_STORE:
		for i := Register(0); i <= ins.X; i++ {
			mc.write(s.Index+uint16(i), s.Registers[i])
		}

		s.Index += uint16(ins.X) + 1

	case INSTRUCTION_LD_LOAD:
		for i := Register(0); i <= ins.X; i++ {
			s.Registers[i] = mc.read(s.Index + uint16(i))
		}

		s.Index += uint16(ins.X) + 1

	default:
		return ErrInvalidOpcode
	}

	return nil
}

// TickTimers counts both timers down towards zero.
func (mc *Machine) TickTimers() {
	if mc.State.Delay > 0 {
		mc.State.Delay--
	}

	if mc.State.Sound > 0 {
		mc.State.Sound--
	}
}

// VBlank lets the next draw instruction through.
func (mc *Machine) VBlank() {
	mc.vblank = true
}

// SetKey records a key transition. Releasing a held key latches it for a
// pending key wait until the next instruction completes.
func (mc *Machine) SetKey(key uint8, pressed bool) {
	key &= 0xF

	if mc.State.Keys[key] && !pressed {
		mc.released = key
		mc.hasReleased = true
	}

	mc.State.Keys[key] = pressed
}

// Tone reports whether the buzzer should sound. The sound timer gates it off
// at 1 as well as 0, matching the COSMAC VIP.
func (mc *Machine) Tone() bool {
	return mc.State.Sound > 1
}
