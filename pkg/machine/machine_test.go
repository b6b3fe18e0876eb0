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

package machine_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
)

type testMachineState struct {
	Registers [16]uint8
	Index     uint16
	Program   uint16
	Delay     uint8
	Sound     uint8
	Stack     []uint16
	Memory    map[uint16]byte
	Display   map[int]uint64
}

type testCase struct {
	Name   string
	Steps  uint
	VBlank bool
	Input  testMachineState
	Output testMachineState
}

type failCase struct {
	Name    string
	Input   testMachineState
	Error   error
	Program uint16
}

func setupMachine(input *testMachineState) *machine.Machine {
	var mc machine.Machine

	mc.Reset()
	mc.Seed(0)
	mc.State.Registers = input.Registers
	mc.State.Index = input.Index
	mc.State.Program = input.Program
	mc.State.Delay = input.Delay
	mc.State.Sound = input.Sound
	mc.State.Stack = append(mc.State.Stack, input.Stack...)

	for addr, value := range input.Memory {
		mc.State.Memory[addr] = value
	}

	for row, value := range input.Display {
		mc.State.Display[row] = value
	}

	return &mc
}

func testMachineSuccess(t *testing.T, test *testCase) {
	if test.Input.Memory == nil && test.Output.Memory == nil {
		panic("No memory maps provided")
	}

	mc := setupMachine(&test.Input)

	var initial machine.MachineState
	initial.Reset()

	if test.VBlank {
		mc.VBlank()
	}

	if test.Steps == 0 {
		test.Steps = 1
	}

	for i := uint(0); i < test.Steps; i++ {
		if err := mc.Step(); err != nil {
			t.Fatalf("Unexpected error\nhave:%v", err)
		}
	}

	for i := 0; i < 16; i++ {
		want := test.Output.Registers[i]
		have := mc.State.Registers[i]
		if have != want {
			t.Errorf(
				"Register mismatch"+
					"\nwant:%#02x (test.Output.Registers[%d])\nhave:%#02x",
				want,
				i,
				have,
			)
		}
	}

	if mc.State.Program != test.Output.Program {
		t.Errorf(
			"Program counter mismatch"+
				"\nwant:%#04x (test.Output.Program)\nhave:%#04x",
			test.Output.Program,
			mc.State.Program,
		)
	}

	if mc.State.Index != test.Output.Index {
		t.Errorf(
			"Index register mismatch"+
				"\nwant:%#04x (test.Output.Index)\nhave:%#04x",
			test.Output.Index,
			mc.State.Index,
		)
	}

	if mc.State.Delay != test.Output.Delay {
		t.Errorf(
			"Delay timer mismatch"+
				"\nwant:%d (test.Output.Delay)\nhave:%d",
			test.Output.Delay,
			mc.State.Delay,
		)
	}

	if mc.State.Sound != test.Output.Sound {
		t.Errorf(
			"Sound timer mismatch"+
				"\nwant:%d (test.Output.Sound)\nhave:%d",
			test.Output.Sound,
			mc.State.Sound,
		)
	}

	if len(mc.State.Stack) != len(test.Output.Stack) {
		t.Errorf(
			"Stack depth mismatch"+
				"\nwant:%d (test.Output.Stack)\nhave:%d",
			len(test.Output.Stack),
			len(mc.State.Stack),
		)
	} else {
		for i, want := range test.Output.Stack {
			if have := mc.State.Stack[i]; have != want {
				t.Errorf(
					"Stack mismatch"+
						"\nwant:%#04x (test.Output.Stack[%d])\nhave:%#04x",
					want,
					i,
					have,
				)
			}
		}
	}

	for i, value := range mc.State.Memory {
		input, expectingInput := test.Input.Memory[uint16(i)]
		output, expectingOutput := test.Output.Memory[uint16(i)]

		if expectingOutput {
			// Value was supposed to change
			if value != output {
				t.Fatalf(
					"Memory value mismatch"+
						"\nwant:%#02x (test.Output.Memory[%#04x])\nhave:%#02x",
					output,
					i,
					value,
				)
			}
		} else if expectingInput {
			// Value was supposed to remain
			if value != input {
				t.Fatalf(
					"Memory value mismatch"+
						"\nwant:%#02x (test.Input.Memory[%#04x])\nhave:%#02x",
					input,
					i,
					value,
				)
			}
		} else if value != initial.Memory[i] {
			// Value was expected to remain as reset left it
			t.Fatalf(
				"Memory unexpectedly changed"+
					"\nwant:%#02x (memory[%#04x])\nhave:%#02x",
				initial.Memory[i],
				i,
				value,
			)
		}
	}

	for row, have := range mc.State.Display {
		if want := test.Output.Display[row]; have != want {
			t.Errorf(
				"Display row mismatch"+
					"\nwant:%064b (test.Output.Display[%d])\nhave:%064b",
				want,
				row,
				have,
			)
		}
	}
}

func testMachineFailure(t *testing.T, test *failCase) {
	mc := setupMachine(&test.Input)
	addr := mc.State.Program
	high := mc.State.Memory[addr]
	low := mc.State.Memory[addr+1]

	err := mc.Step()

	if err == nil {
		t.Fatalf("Expected error\nwant:%v\nhave:nil", test.Error)
	}

	if !errors.Is(err, test.Error) {
		t.Fatalf("Error kind mismatch\nwant:%v\nhave:%v", test.Error, err)
	}

	var insErr *machine.InstructionError

	if !errors.As(err, &insErr) {
		t.Fatalf("Error type mismatch\nwant:*machine.InstructionError\nhave:%T", err)
	}

	if insErr.Addr != addr || insErr.High != high || insErr.Low != low {
		t.Errorf(
			"Error report mismatch\nwant:%02X%02X at %#04x\nhave:%02X%02X at %#04x",
			high, low, addr, insErr.High, insErr.Low, insErr.Addr,
		)
	}

	if mc.State.Program != test.Program {
		t.Errorf(
			"Program counter mismatch"+
				"\nwant:%#04x (test.Program)\nhave:%#04x",
			test.Program,
			mc.State.Program,
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testMachineSuccess(t, &test)
			})
		}
	})
}

func testFailure(t *testing.T, tests []failCase) {
	t.Run("Failure", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testMachineFailure(t, &test)
			})
		}
	})
}

// CLS  |0000|0000|1110|0000| Clear display
// RET  |0000|0000|1110|1110| Return from subroutine
// SYS  |0000|nnn           | Machine code subroutine
// ---- [ _ _ _ _ _ _ _ _ _ ]
func TestSystem(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "CLS",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x00, 0x201: 0xE0},
				Display: map[int]uint64{0: 0xFF, 17: 1 << 63, 31: ^uint64(0)},
			},
			Output: testMachineState{
				Program: 0x202,
			},
		},
		{
			Name: "RET",
			Input: testMachineState{
				Program: 0x300,
				Stack:   []uint16{0x204, 0x20A},
				Memory:  map[uint16]byte{0x300: 0x00, 0x301: 0xEE},
			},
			Output: testMachineState{
				Program: 0x20A,
				Stack:   []uint16{0x204},
			},
		},
	})

	testFailure(t, []failCase{
		{
			Name: "RET Empty Stack",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x00, 0x201: 0xEE},
			},
			Error:   machine.ErrInvalidReturn,
			Program: 0x202,
		},
		{
			Name: "SYS",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x01, 0x201: 0x23},
			},
			Error:   machine.ErrMachineCall,
			Program: 0x202,
		},
		{
			Name: "SYS 00E1",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x00, 0x201: 0xE1},
			},
			Error:   machine.ErrMachineCall,
			Program: 0x202,
		},
	})
}

// JP   |0001|nnn           | Jump
// CALL |0010|nnn           | Call subroutine
// JP   |1011|nnn           | Jump to V0 + nnn
// ---- [ _ _ _ _ _ _ _ _ _ ]
func TestJump(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "JP",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x12, 0x201: 0x34},
			},
			Output: testMachineState{
				Program: 0x234,
			},
		},
		{
			Name: "CALL",
			Input: testMachineState{
				Program: 0x206,
				Stack:   []uint16{0x202},
				Memory:  map[uint16]byte{0x206: 0x2A, 0x207: 0xBC},
			},
			Output: testMachineState{
				Program: 0xABC,
				Stack:   []uint16{0x202, 0x208},
			},
		},
		{
			Name: "CALL RET",
			Steps: 2,
			Input: testMachineState{
				Program: 0x200,
				Memory: map[uint16]byte{
					0x200: 0x23, 0x201: 0x00,
					0x300: 0x00, 0x301: 0xEE,
				},
			},
			Output: testMachineState{
				Program: 0x202,
				Stack:   []uint16{},
			},
		},
		{
			Name: "JP V0",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0x10},
				Memory:    map[uint16]byte{0x200: 0xB3, 0x201: 0x00},
			},
			Output: testMachineState{
				Program:   0x310,
				Registers: [16]uint8{0x0: 0x10},
			},
		},
		{
			Name: "JP V0 Last Address",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0xFF},
				Memory:    map[uint16]byte{0x200: 0xBF, 0x201: 0x00},
			},
			Output: testMachineState{
				Program:   0xFFF,
				Registers: [16]uint8{0x0: 0xFF},
			},
		},
	})

	testFailure(t, []failCase{
		{
			Name: "JP V0 Out Of Memory",
			Input: testMachineState{
				Program:   0x204,
				Registers: [16]uint8{0x0: 0xFF},
				Memory:    map[uint16]byte{0x204: 0xBF, 0x205: 0x01},
			},
			Error:   machine.ErrInvalidJump,
			Program: 0x204,
		},
	})
}

func TestInvalidJumpIsRepeatable(t *testing.T) {
	mc, err := machine.New(bytes.NewReader([]byte{
		0x60, 0xFF, // 0x200: LD V0, $FF
		0xBF, 0xFF, // 0x202: JP V0, $FFF
	}))

	if err != nil {
		t.Fatal(err)
	}

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		err := mc.Step()

		var insErr *machine.InstructionError

		if !errors.As(err, &insErr) || !errors.Is(err, machine.ErrInvalidJump) {
			t.Fatalf("Expected invalid jump\nhave:%v", err)
		}

		if insErr.Addr != 0x202 || insErr.High != 0xBF || insErr.Low != 0xFF {
			t.Fatalf("Error report mismatch\nhave:%v", insErr)
		}

		if mc.State.Program != 0x202 {
			t.Fatalf(
				"Program counter mismatch\nwant:0x202\nhave:%#04x",
				mc.State.Program,
			)
		}
	}
}

func TestProgramEnd(t *testing.T) {
	mc, err := machine.New(bytes.NewReader([]byte{
		0x1F, 0xFF, // 0x200: JP $FFF
	}))

	if err != nil {
		t.Fatal(err)
	}

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		err := mc.Step()

		var insErr *machine.InstructionError

		if !errors.As(err, &insErr) || !errors.Is(err, machine.ErrProgramEnd) {
			t.Fatalf("Expected program end\nhave:%v", err)
		}

		if insErr.Addr != 0xFFF || mc.State.Program != 0xFFF {
			t.Fatalf(
				"Program counter mismatch\nwant:0x0fff\nhave:%#04x",
				mc.State.Program,
			)
		}
	}

	mc.State.Program = 0xFFE
	mc.State.Memory[0xFFE], mc.State.Memory[0xFFF] = 0x00, 0xE0

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if err := mc.Step(); !errors.Is(err, machine.ErrProgramEnd) {
		t.Fatalf("Expected program end\nhave:%v", err)
	}
}

// SE   |0011|x   |nn       | Skip if equal
// SNE  |0100|x   |nn       | Skip if not equal
// SE   |0101|x   |y   |0000| Skip if registers equal
// SNE  |1001|x   |y   |0000| Skip if registers not equal
// ---- [ _ _ _ _ _ _ _ _ _ ]
func TestSkip(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "SE Byte Taken",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x3: 0x42},
				Memory:    map[uint16]byte{0x200: 0x33, 0x201: 0x42},
			},
			Output: testMachineState{
				Program:   0x204,
				Registers: [16]uint8{0x3: 0x42},
			},
		},
		{
			Name: "SE Byte Not Taken",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x3: 0x41},
				Memory:    map[uint16]byte{0x200: 0x33, 0x201: 0x42},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x3: 0x41},
			},
		},
		{
			Name: "SNE Byte Taken",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x40, 0x201: 0x01},
			},
			Output: testMachineState{
				Program: 0x204,
			},
		},
		{
			Name: "SNE Byte Not Taken",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0x01},
				Memory:    map[uint16]byte{0x200: 0x40, 0x201: 0x01},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0x01},
			},
		},
		{
			Name: "SE Registers Taken",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0x01, 0x1: 0x01},
				Memory:    map[uint16]byte{0x200: 0x50, 0x201: 0x10},
			},
			Output: testMachineState{
				Program:   0x204,
				Registers: [16]uint8{0x0: 0x01, 0x1: 0x01},
			},
		},
		{
			Name: "SNE Registers Taken",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0x01},
				Memory:    map[uint16]byte{0x200: 0x90, 0x201: 0x10},
			},
			Output: testMachineState{
				Program:   0x204,
				Registers: [16]uint8{0x0: 0x01},
			},
		},
		{
			Name: "SNE Registers Not Taken",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0xA: 0x7F, 0xB: 0x7F},
				Memory:    map[uint16]byte{0x200: 0x9A, 0x201: 0xB0},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0xA: 0x7F, 0xB: 0x7F},
			},
		},
	})

	testFailure(t, []failCase{
		{
			Name: "SE Registers Bad Suffix",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x50, 0x201: 0x11},
			},
			Error:   machine.ErrInvalidOpcode,
			Program: 0x202,
		},
		{
			Name: "SNE Registers Bad Suffix",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x90, 0x201: 0x1F},
			},
			Error:   machine.ErrInvalidOpcode,
			Program: 0x202,
		},
	})
}

// LD   |0110|x   |nn       | Load immediate
// ADD  |0111|x   |nn       | Add immediate
// ---- [ _ _ _ _ _ _ _ _ _ ]
func TestImmediate(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD Byte",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x6F, 0x201: 0x10},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0xF: 0x10},
			},
		},
		{
			Name: "ADD Byte Overflow",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x5: 0xFA, 0xF: 0x77},
				Memory:    map[uint16]byte{0x200: 0x75, 0x201: 0x14},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x5: 0x0E, 0xF: 0x77},
			},
		},
	})
}

// ALU  |1000|x   |y   |op  | Register arithmetic
// ---- [ _ _ _ _ _ _ _ _ _ ]
func TestArithmetic(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD Register",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0xAA},
				Memory:    map[uint16]byte{0x200: 0x8A, 0x201: 0x00},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0xAA, 0xA: 0xAA},
			},
		},
		{
			Name: "OR",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0xBB, 0x1: 0x5A, 0xF: 0x01},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x11},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0xFB, 0x1: 0x5A},
			},
		},
		{
			Name: "AND",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0xBB, 0x1: 0x5A, 0xF: 0x01},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x12},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0x1A, 0x1: 0x5A},
			},
		},
		{
			Name: "XOR",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0xBB, 0x1: 0x5A, 0xF: 0x01},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x13},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0xE1, 0x1: 0x5A},
			},
		},
		{
			Name: "OR Into VF",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x1: 0x5A, 0xF: 0x81},
				Memory:    map[uint16]byte{0x200: 0x8F, 0x201: 0x11},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x1: 0x5A},
			},
		},
		{
			Name: "XOR From VF",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x2: 0x0F, 0xF: 0xF0},
				Memory:    map[uint16]byte{0x200: 0x82, 0x201: 0xF3},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x2: 0xFF},
			},
		},
		{
			Name: "ADD Register Carry",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0xF0, 0x1: 0x20},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x14},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0x10, 0x1: 0x20, 0xF: 0x01},
			},
		},
		{
			Name: "ADD Register No Carry",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0xF0, 0x1: 0x0F, 0xF: 0x01},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x14},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0xFF, 0x1: 0x0F},
			},
		},
		{
			Name: "ADD Register Flag Wins",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x1: 0x01, 0xF: 0xFF},
				Memory:    map[uint16]byte{0x200: 0x8F, 0x201: 0x14},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x1: 0x01, 0xF: 0x01},
			},
		},
		{
			Name: "SUB Borrow",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0x01, 0x1: 0x02, 0xF: 0x01},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x15},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0xFF, 0x1: 0x02},
			},
		},
		{
			Name: "SUB Equal",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0x02, 0x1: 0x02},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x15},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x1: 0x02, 0xF: 0x01},
			},
		},
		{
			Name: "SUBN No Borrow",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0x01, 0x1: 0x03},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x17},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0x02, 0x1: 0x03, 0xF: 0x01},
			},
		},
		{
			Name: "SUBN Borrow",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0x03, 0x1: 0x01},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x17},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0xFE, 0x1: 0x01},
			},
		},
		{
			Name: "SHR From Vy",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0xAA, 0x1: 0x05},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x16},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0x02, 0x1: 0x05, 0xF: 0x01},
			},
		},
		{
			Name: "SHR Same Register",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x0: 0xF0},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x06},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0x78},
			},
		},
		{
			Name: "SHL From Vy",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x1: 0x81},
				Memory:    map[uint16]byte{0x200: 0x80, 0x201: 0x1E},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x0: 0x02, 0x1: 0x81, 0xF: 0x01},
			},
		},
		{
			Name: "SHL Into VF",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x1: 0x81},
				Memory:    map[uint16]byte{0x200: 0x8F, 0x201: 0x1E},
			},
			Output: testMachineState{
				Program:   0x202,
				Registers: [16]uint8{0x1: 0x81, 0xF: 0x02},
			},
		},
	})

	testFailure(t, []failCase{
		{
			Name: "ALU 8xyF",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0x80, 0x201: 0x1F},
			},
			Error:   machine.ErrInvalidOpcode,
			Program: 0x202,
		},
		{
			Name: "ALU 8xy8",
			Input: testMachineState{
				Program: 0x300,
				Memory:  map[uint16]byte{0x300: 0x80, 0x301: 0x18},
			},
			Error:   machine.ErrInvalidOpcode,
			Program: 0x302,
		},
	})
}

func TestArithmeticFlags(t *testing.T) {
	var mc machine.Machine
	mc.Reset()

	mc.State.Memory[0x200] = 0x80
	mc.State.Memory[0x201] = 0x14
	mc.State.Memory[0x202] = 0x80
	mc.State.Memory[0x203] = 0x15

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			mc.State.Program = 0x200
			mc.State.Registers[0x0] = uint8(a)
			mc.State.Registers[0x1] = uint8(b)

			if err := mc.Step(); err != nil {
				t.Fatal(err)
			}

			if have, want := mc.State.Registers[0xF], a+b > 255; (have == 1) != want {
				t.Fatalf("ADD %#02x + %#02x\nwant carry:%v\nhave VF:%d", a, b, want, have)
			}

			if have := mc.State.Registers[0x0]; have != uint8(a+b) {
				t.Fatalf("ADD %#02x + %#02x\nwant:%#02x\nhave:%#02x", a, b, uint8(a+b), have)
			}

			mc.State.Registers[0x0] = uint8(a)

			if err := mc.Step(); err != nil {
				t.Fatal(err)
			}

			if have, borrow := mc.State.Registers[0xF], a < b; (have == 0) != borrow {
				t.Fatalf("SUB %#02x - %#02x\nwant borrow:%v\nhave VF:%d", a, b, borrow, have)
			}

			if have := mc.State.Registers[0x0]; have != uint8(a-b) {
				t.Fatalf("SUB %#02x - %#02x\nwant:%#02x\nhave:%#02x", a, b, uint8(a-b), have)
			}
		}
	}
}

// LD   |1010|nnn           | Load index
// RND  |1100|x   |nn       | Random byte masked with nn
// ---- [ _ _ _ _ _ _ _ _ _ ]
func TestIndexAndRandom(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD I",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0xA2, 0x201: 0xF0},
			},
			Output: testMachineState{
				Program: 0x202,
				Index:   0x2F0,
			},
		},
		{
			Name: "RND Zero Mask",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x4: 0xFF},
				Memory:    map[uint16]byte{0x200: 0xC4, 0x201: 0x00},
			},
			Output: testMachineState{
				Program: 0x202,
			},
		},
	})
}

func TestRandomIsSeeded(t *testing.T) {
	program := []byte{
		0xC0, 0xFF, // RND V0, $FF
		0xC1, 0xFF, // RND V1, $FF
		0xC2, 0x0F, // RND V2, $0F
	}

	run := func(seed uint64) [16]uint8 {
		mc, err := machine.New(bytes.NewReader(program))

		if err != nil {
			t.Fatal(err)
		}

		mc.Seed(seed)

		for i := 0; i < 3; i++ {
			if err := mc.Step(); err != nil {
				t.Fatal(err)
			}
		}

		return mc.State.Registers
	}

	first := run(0xC0FFEE)
	second := run(0xC0FFEE)

	if first != second {
		t.Fatalf("Seeded runs differ\nwant:%v\nhave:%v", first, second)
	}

	if first[0x2] > 0x0F {
		t.Fatalf("Mask not applied\nwant:<= 0x0f\nhave:%#02x", first[0x2])
	}
}

// SKP  |1110|x   |1001 1110| Skip if key pressed
// SKNP |1110|x   |1010 0001| Skip if key not pressed
// ---- [ _ _ _ _ _ _ _ _ _ ]
func TestKeySkip(t *testing.T) {
	var mc machine.Machine
	mc.Reset()

	copy(mc.State.Memory[0x200:], []byte{
		0xE5, 0x9E, // 0x200: SKP V5
		0xE5, 0xA1, // 0x202: SKNP V5
	})

	// Only the low nibble selects the key
	mc.State.Registers[0x5] = 0x1C
	mc.SetKey(0xC, true)

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Program != 0x204 {
		t.Fatalf("SKP not taken\nwant:0x204\nhave:%#04x", mc.State.Program)
	}

	mc.State.Program = 0x202

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Program != 0x204 {
		t.Fatalf("SKNP taken\nwant:0x204\nhave:%#04x", mc.State.Program)
	}

	mc.SetKey(0x1C, false)
	mc.State.Program = 0x202

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Program != 0x206 {
		t.Fatalf("SKNP not taken\nwant:0x206\nhave:%#04x", mc.State.Program)
	}
}

func TestKeyInvalid(t *testing.T) {
	testFailure(t, []failCase{
		{
			Name: "E000",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0xE0, 0x201: 0x00},
			},
			Error:   machine.ErrInvalidOpcode,
			Program: 0x202,
		},
		{
			Name: "F0FF",
			Input: testMachineState{
				Program: 0x200,
				Memory:  map[uint16]byte{0x200: 0xF0, 0x201: 0xFF},
			},
			Error:   machine.ErrInvalidOpcode,
			Program: 0x202,
		},
	})
}

// LD   |1111|x   |op       | Timers, keys, index and memory transfer
// ---- [ _ _ _ _ _ _ _ _ _ ]
func TestMisc(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD Vx DT",
			Input: testMachineState{
				Program: 0x200,
				Delay:   0x3C,
				Memory:  map[uint16]byte{0x200: 0xF3, 0x201: 0x07},
			},
			Output: testMachineState{
				Program:   0x202,
				Delay:     0x3C,
				Registers: [16]uint8{0x3: 0x3C},
			},
		},
		{
			Name: "LD DT Vx",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x3: 0x10},
				Memory:    map[uint16]byte{0x200: 0xF3, 0x201: 0x15},
			},
			Output: testMachineState{
				Program:   0x202,
				Delay:     0x10,
				Registers: [16]uint8{0x3: 0x10},
			},
		},
		{
			Name: "LD ST Vx",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x3: 0x20},
				Memory:    map[uint16]byte{0x200: 0xF3, 0x201: 0x18},
			},
			Output: testMachineState{
				Program:   0x202,
				Sound:     0x20,
				Registers: [16]uint8{0x3: 0x20},
			},
		},
		{
			Name: "ADD I Wraps",
			Input: testMachineState{
				Program:   0x200,
				Index:     0xFFFF,
				Registers: [16]uint8{0x1: 0x02},
				Memory:    map[uint16]byte{0x200: 0xF1, 0x201: 0x1E},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x0001,
				Registers: [16]uint8{0x1: 0x02},
			},
		},
		{
			Name: "LD F",
			Input: testMachineState{
				Program:   0x200,
				Registers: [16]uint8{0x2: 0xFA},
				Memory:    map[uint16]byte{0x200: 0xF2, 0x201: 0x29},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x32,
				Registers: [16]uint8{0x2: 0xFA},
			},
		},
		{
			Name: "LD B",
			Input: testMachineState{
				Program:   0x200,
				Index:     0x300,
				Registers: [16]uint8{0x7: 254},
				Memory:    map[uint16]byte{0x200: 0xF7, 0x201: 0x33},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x300,
				Registers: [16]uint8{0x7: 254},
				Memory:    map[uint16]byte{0x300: 2, 0x301: 5, 0x302: 4},
			},
		},
		{
			Name: "LD B Wraps Memory",
			Input: testMachineState{
				Program:   0x200,
				Index:     0xFFF,
				Registers: [16]uint8{0x7: 123},
				Memory:    map[uint16]byte{0x200: 0xF7, 0x201: 0x33},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0xFFF,
				Registers: [16]uint8{0x7: 123},
				Memory:    map[uint16]byte{0xFFF: 1, 0x000: 2, 0x001: 3},
			},
		},
		{
			Name: "LD [I] Vx",
			Input: testMachineState{
				Program:   0x200,
				Index:     0x400,
				Registers: [16]uint8{0x0: 0x11, 0x1: 0x22, 0x2: 0x33, 0x3: 0x44},
				Memory:    map[uint16]byte{0x200: 0xF2, 0x201: 0x55},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x403,
				Registers: [16]uint8{0x0: 0x11, 0x1: 0x22, 0x2: 0x33, 0x3: 0x44},
				Memory:    map[uint16]byte{0x400: 0x11, 0x401: 0x22, 0x402: 0x33},
			},
		},
		{
			Name: "LD Vx [I]",
			Input: testMachineState{
				Program: 0x200,
				Index:   0x400,
				Memory: map[uint16]byte{
					0x200: 0xF1, 0x201: 0x65,
					0x400: 0xAB, 0x401: 0xCD, 0x402: 0xEF,
				},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x402,
				Registers: [16]uint8{0x0: 0xAB, 0x1: 0xCD},
			},
		},
	})
}

func TestStoreLoadRoundTrip(t *testing.T) {
	var mc machine.Machine
	mc.Reset()

	copy(mc.State.Memory[0x200:], []byte{
		0xFA, 0x55, // 0x200: LD [I], VA
		0xFA, 0x65, // 0x202: LD VA, [I]
	})

	var want [16]uint8
	for i := range want[:0xB] {
		want[i] = uint8(0x10*i + 3)
	}

	mc.State.Registers = want
	mc.State.Index = 0x500

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Index != 0x50B {
		t.Fatalf("Index after store\nwant:0x50b\nhave:%#04x", mc.State.Index)
	}

	mc.State.Registers = [16]uint8{}
	mc.State.Index = 0x500

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Registers != want {
		t.Fatalf("Registers after load\nwant:%v\nhave:%v", want, mc.State.Registers)
	}

	if mc.State.Index != 0x50B {
		t.Fatalf("Index after load\nwant:0x50b\nhave:%#04x", mc.State.Index)
	}
}

func TestWaitKey(t *testing.T) {
	mc, err := machine.New(bytes.NewReader([]byte{
		0xF4, 0x0A, // 0x200: LD V4, K
		0x60, 0x01, // 0x202: LD V0, $01
	}))

	if err != nil {
		t.Fatal(err)
	}

	mc.SetKey(0x7, true)

	for i := 0; i < 5; i++ {
		if err := mc.Step(); err != nil {
			t.Fatal(err)
		}

		if mc.State.Program != 0x200 {
			t.Fatalf("Wait advanced while key held\nwant:0x200\nhave:%#04x", mc.State.Program)
		}
	}

	mc.SetKey(0x7, false)

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Program != 0x202 {
		t.Fatalf("Wait did not complete\nwant:0x202\nhave:%#04x", mc.State.Program)
	}

	if have := mc.State.Registers[0x4]; have != 0x7 {
		t.Fatalf("Released key mismatch\nwant:0x07\nhave:%#02x", have)
	}
}

func TestReleaseLatchClearedEachInstruction(t *testing.T) {
	mc, err := machine.New(bytes.NewReader([]byte{
		0x60, 0x01, // 0x200: LD V0, $01
		0xF4, 0x0A, // 0x202: LD V4, K
	}))

	if err != nil {
		t.Fatal(err)
	}

	mc.SetKey(0x3, true)
	mc.SetKey(0x3, false)

	// The release is consumed by an unrelated instruction
	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Program != 0x202 {
		t.Fatalf("Wait completed on stale release\nwant:0x202\nhave:%#04x", mc.State.Program)
	}

	// Releasing a key that was never pressed is not a transition
	mc.SetKey(0x5, false)

	if err := mc.Step(); err != nil {
		t.Fatal(err)
	}

	if mc.State.Program != 0x202 {
		t.Fatalf("Wait completed without release\nwant:0x202\nhave:%#04x", mc.State.Program)
	}
}

func TestTimers(t *testing.T) {
	var mc machine.Machine
	mc.Reset()

	mc.State.Delay = 2
	mc.State.Sound = 3

	tests := []struct {
		delay uint8
		sound uint8
		tone  bool
	}{
		{1, 2, true},
		{0, 1, false},
		{0, 0, false},
		{0, 0, false},
	}

	if !mc.Tone() {
		t.Fatal("Tone should sound while ST > 1")
	}

	for i, test := range tests {
		mc.TickTimers()

		if mc.State.Delay != test.delay || mc.State.Sound != test.sound {
			t.Fatalf(
				"Timer mismatch after %d ticks\nwant:DT=%d ST=%d\nhave:DT=%d ST=%d",
				i+1, test.delay, test.sound, mc.State.Delay, mc.State.Sound,
			)
		}

		if mc.Tone() != test.tone {
			t.Fatalf("Tone mismatch at ST=%d\nwant:%v\nhave:%v", mc.State.Sound, test.tone, mc.Tone())
		}
	}
}

type countingDebugger struct {
	steps  int
	reads  []uint16
	writes []uint16
}

func (dbg *countingDebugger) Step(mc *machine.Machine) {
	dbg.steps++
}

func (dbg *countingDebugger) Read(addr uint16, mc *machine.Machine) {
	dbg.reads = append(dbg.reads, addr)
}

func (dbg *countingDebugger) Write(addr uint16, mc *machine.Machine) {
	dbg.writes = append(dbg.writes, addr)
}

func TestDebuggerHooks(t *testing.T) {
	mc, err := machine.New(bytes.NewReader([]byte{
		0xA3, 0x00, // 0x200: LD I, $300
		0xF1, 0x55, // 0x202: LD [I], V1
		0xA3, 0x00, // 0x204: LD I, $300
		0xF0, 0x65, // 0x206: LD V0, [I]
		0x00, 0x00, // 0x208: SYS
	}))

	if err != nil {
		t.Fatal(err)
	}

	var dbg countingDebugger
	mc.Debugger = &dbg

	for i := 0; i < 4; i++ {
		if err := mc.Step(); err != nil {
			t.Fatal(err)
		}
	}

	if err := mc.Step(); err == nil {
		t.Fatal("Expected machine call error")
	}

	if dbg.steps != 4 {
		t.Errorf("Step hook count\nwant:4\nhave:%d", dbg.steps)
	}

	if len(dbg.writes) != 2 || dbg.writes[0] != 0x300 || dbg.writes[1] != 0x301 {
		t.Errorf("Write hooks\nwant:[0x300 0x301]\nhave:%#x", dbg.writes)
	}

	if len(dbg.reads) != 1 || dbg.reads[0] != 0x300 {
		t.Errorf("Read hooks\nwant:[0x300]\nhave:%#x", dbg.reads)
	}
}

type failingReader struct{}

var errBrokenReader = errors.New("broken reader")

func (failingReader) Read(p []byte) (int, error) {
	return 0, errBrokenReader
}

func TestLoadBin(t *testing.T) {
	t.Run("Short Program", func(t *testing.T) {
		program := bytes.Repeat([]byte{0xFF}, 10)
		mc, err := machine.New(bytes.NewReader(program))

		if err != nil {
			t.Fatal(err)
		}

		for i := uint16(0x200); i < 0x20A; i++ {
			if mc.State.Memory[i] != 0xFF {
				t.Fatalf("Program byte mismatch\nwant:0xff\nhave:%#02x", mc.State.Memory[i])
			}
		}

		if mc.State.Memory[0x20A] != 0x00 {
			t.Fatalf("Memory past program\nwant:0x00\nhave:%#02x", mc.State.Memory[0x20A])
		}

		if mc.State.Program != 0x200 {
			t.Fatalf("Program counter mismatch\nwant:0x200\nhave:%#04x", mc.State.Program)
		}

		if mc.State.Memory[0x32] != 0xF0 || mc.State.Memory[0x4F] != 0x80 {
			t.Fatal("Font glyphs not loaded")
		}
	})

	t.Run("Oversized Program", func(t *testing.T) {
		program := bytes.Repeat([]byte{0xAB}, machine.PROGRAM_SIZE+100)
		reader := bytes.NewReader(program)
		mc, err := machine.New(reader)

		if err != nil {
			t.Fatal(err)
		}

		if mc.State.Memory[machine.MEMSPACE_PROGRAM_END] != 0xAB {
			t.Fatal("Program area not filled")
		}

		if mc.State.Memory[machine.MEMSPACE_PROGRAM_END+1] != 0x00 {
			t.Fatal("Program spilled past the program area")
		}

		if reader.Len() != 100 {
			t.Fatalf("Bytes left unread\nwant:100\nhave:%d", reader.Len())
		}
	})

	t.Run("Reload", func(t *testing.T) {
		mc, err := machine.New(bytes.NewReader([]byte{0x12, 0x34, 0x56}))

		if err != nil {
			t.Fatal(err)
		}

		mc.State.Registers[0x3] = 0x99
		mc.State.Stack = append(mc.State.Stack, 0x400)

		if err := mc.LoadBin(bytes.NewReader([]byte{0x00, 0xE0})); err != nil {
			t.Fatal(err)
		}

		if mc.State.Registers[0x3] != 0 || len(mc.State.Stack) != 0 {
			t.Fatal("Machine state survived a reload")
		}

		if mc.State.Memory[0x202] != 0x00 {
			t.Fatalf("Stale program byte\nwant:0x00\nhave:%#02x", mc.State.Memory[0x202])
		}
	})

	t.Run("Reader Error", func(t *testing.T) {
		mc, err := machine.New(failingReader{})

		if mc != nil {
			t.Fatal("Expected no machine")
		}

		if !errors.Is(err, machine.ErrIO) || !errors.Is(err, errBrokenReader) {
			t.Fatalf("Error kind mismatch\nwant:%v\nhave:%v", machine.ErrIO, err)
		}
	})
}
