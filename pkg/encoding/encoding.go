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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

// Decodes a hexidecimal string in the formats: 0xFFF, xFFF, $FFF, 0xFF, xFF,
// $FF
func DecodeHex(s string) (uint16, error) {
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	} else if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (int, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 32)

	if err != nil {
		return 0, err
	}

	return int(result), nil
}

// Decodes either representation, hex being recognised by its prefix
func DecodeLiteral(s string) (int, error) {
	if IsHex(s) {
		result, err := DecodeHex(s)
		return int(result), err
	}

	return DecodeInt(s)
}

func IsHex(s string) bool {
	return strings.HasPrefix(s, "$") || strings.IndexAny(s, "xX") == 0 ||
		strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

func HighNibble(b byte) byte {
	return (b >> 4) & 0xF
}

func LowNibble(b byte) byte {
	return b & 0xF
}

// Big-endian instruction word
func Word(high, low byte) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// 12-bit address field of an instruction word
func Address(high, low byte) uint16 {
	return Word(high, low) & 0xFFF
}

func SplitWord(word uint16) (high, low byte) {
	return byte(word >> 8), byte(word)
}
