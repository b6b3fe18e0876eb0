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

// Package keymap lays the hex keypad over the left hand side of a QWERTY
// keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
package keymap

import "unicode"

// Keys lists the host key for each keypad index
var Keys = [16]rune{
	0x0: 'X',
	0x1: '1',
	0x2: '2',
	0x3: '3',
	0x4: 'Q',
	0x5: 'W',
	0x6: 'E',
	0x7: 'A',
	0x8: 'S',
	0x9: 'D',
	0xA: 'Z',
	0xB: 'C',
	0xC: '4',
	0xD: 'R',
	0xE: 'F',
	0xF: 'V',
}

var lookup = func() map[rune]uint8 {
	result := make(map[rune]uint8, len(Keys))
	for i, key := range Keys {
		result[key] = uint8(i)
	}
	return result
}()

// Lookup returns the keypad index for a host key, ignoring case.
func Lookup(key rune) (uint8, bool) {
	i, ok := lookup[unicode.ToUpper(key)]
	return i, ok
}
