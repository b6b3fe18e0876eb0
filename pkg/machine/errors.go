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
	"errors"
	"fmt"
)

var (
	ErrInvalidOpcode = errors.New("invalid instruction")
	ErrInvalidReturn = errors.New("return with empty call stack")
	ErrMachineCall   = errors.New("unsupported machine code subroutine")
	ErrInvalidJump   = errors.New("invalid jump")
	ErrIO            = errors.New("I/O error")
	ErrProgramEnd    = errors.New("program counter past end of memory")
)

// InstructionError reports the raw bytes of a failed instruction and the
// address they were fetched from.
type InstructionError struct {
	Err  error
	High byte
	Low  byte
	Addr uint16
}

func (err *InstructionError) Error() string {
	return fmt.Sprintf(
		"%s at address 0x%03X: %02X%02X", err.Err, err.Addr, err.High, err.Low,
	)
}

func (err *InstructionError) Unwrap() error {
	return err.Err
}
