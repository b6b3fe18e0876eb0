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

// Sprites are drawn at most once per vblank. Without one the instruction is
// retried on the next step.
func (mc *Machine) draw(ins Instruction) {
	s := &mc.State

	if !mc.vblank {
		s.Program -= 2
		return
	}

	mc.vblank = false

	column := int(s.Registers[ins.X]) % DISPLAY_WIDTH
	top := int(s.Registers[ins.Y]) % DISPLAY_HEIGHT

	var cleared uint64

	// Rows past the bottom edge are clipped, not wrapped
	for i := 0; i < int(ins.N) && top+i < DISPLAY_HEIGHT; i++ {
		sprite := spriteRow(mc.read(s.Index+uint16(i)), column)

		old := s.Display[top+i]
		s.Display[top+i] = old ^ sprite
		cleared |= old &^ s.Display[top+i]
	}

	s.Registers[FLAG] = flag(cleared != 0)
}

// spriteRow positions an 8 pixel sprite byte in a 64 pixel row, its MSB
// landing on column.
func spriteRow(value byte, column int) uint64 {
	row := uint64(value)

	if column < SPRITE_PIVOT {
		return row << (SPRITE_PIVOT - column)
	} else if column > SPRITE_PIVOT {
		return row >> (column - SPRITE_PIVOT)
	}

	return row
}

func wrap(value, size int) int {
	value %= size

	if value < 0 {
		value += size
	}

	return value
}

// Pixel reports whether the pixel at x, y is lit. Both coordinates wrap
// around the display.
func (mc *Machine) Pixel(x, y int) bool {
	x = wrap(x, DISPLAY_WIDTH)
	y = wrap(y, DISPLAY_HEIGHT)

	return (mc.State.Display[y]>>(DISPLAY_WIDTH-1-x))&0x1 == 1
}

// ScreenChanged reports whether the display differs from the previous call.
func (mc *Machine) ScreenChanged() bool {
	changed := mc.State.Display != mc.snapshot
	mc.snapshot = mc.State.Display
	return changed
}
