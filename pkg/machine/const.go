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

const (
	MEMORY_SIZE = 0x1000

	MEMSPACE_FONT        uint16 = 0x0000
	MEMSPACE_PROGRAM     uint16 = 0x0200
	MEMSPACE_PROGRAM_END uint16 = 0x0E8F // inclusive

	PROGRAM_SIZE = int(MEMSPACE_PROGRAM_END-MEMSPACE_PROGRAM) + 1
)

const (
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32

	// Column at which a sprite byte lines up with the low bits of a row
	SPRITE_PIVOT = DISPLAY_WIDTH - 8
)

const (
	REGISTER_COUNT = 16
	KEY_COUNT      = 16

	// Typical nesting depth, preallocated
	STACK_RESERVE = 12

	FLAG Register = 0xF
)

const GLYPH_SIZE = 5

var fontGlyphs = [KEY_COUNT * GLYPH_SIZE]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

const (
	OP_SYS  byte = 0x0
	OP_JP   byte = 0x1
	OP_CALL byte = 0x2
	OP_SEI  byte = 0x3
	OP_SNEI byte = 0x4
	OP_SER  byte = 0x5
	OP_LDI  byte = 0x6
	OP_ADDI byte = 0x7
	OP_ALU  byte = 0x8
	OP_SNER byte = 0x9
	OP_LDA  byte = 0xA
	OP_JPV0 byte = 0xB
	OP_RND  byte = 0xC
	OP_DRW  byte = 0xD
	OP_KEY  byte = 0xE
	OP_MISC byte = 0xF
)

const (
	INSTRUCTION_INVALID InstructionType = iota
	INSTRUCTION_CLS                     // 00E0
	INSTRUCTION_RET                     // 00EE
	INSTRUCTION_JP                      // 1nnn
	INSTRUCTION_CALL                    // 2nnn
	INSTRUCTION_SE_BYTE                 // 3xnn
	INSTRUCTION_SNE_BYTE                // 4xnn
	INSTRUCTION_SE_REG                  // 5xy0
	INSTRUCTION_LD_BYTE                 // 6xnn
	INSTRUCTION_ADD_BYTE                // 7xnn
	INSTRUCTION_LD_REG                  // 8xy0
	INSTRUCTION_OR                      // 8xy1
	INSTRUCTION_AND                     // 8xy2
	INSTRUCTION_XOR                     // 8xy3
	INSTRUCTION_ADD_REG                 // 8xy4
	INSTRUCTION_SUB                     // 8xy5
	INSTRUCTION_SHR                     // 8xy6
	INSTRUCTION_SUBN                    // 8xy7
	INSTRUCTION_SHL                     // 8xyE
	INSTRUCTION_SNE_REG                 // 9xy0
	INSTRUCTION_LD_I                    // Annn
	INSTRUCTION_JP_V0                   // Bnnn
	INSTRUCTION_RND                     // Cxnn
	INSTRUCTION_DRW                     // Dxyn
	INSTRUCTION_SKP                     // Ex9E
	INSTRUCTION_SKNP                    // ExA1
	INSTRUCTION_LD_VX_DT                // Fx07
	INSTRUCTION_LD_VX_K                 // Fx0A
	INSTRUCTION_LD_DT                   // Fx15
	INSTRUCTION_LD_ST                   // Fx18
	INSTRUCTION_ADD_I                   // Fx1E
	INSTRUCTION_LD_F                    // Fx29
	INSTRUCTION_LD_B                    // Fx33
	INSTRUCTION_LD_STORE                // Fx55
	INSTRUCTION_LD_LOAD                 // Fx65
)
