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

package keymap

// Frames a key stays down after its last press when the host only reports
// presses, enough to bridge the gap before a terminal starts auto-repeat.
const RELEASE_FRAMES = 30

// Autorelease holds keys down for a number of frames after each press.
type Autorelease struct {
	Frames int

	hold [16]int
}

func NewAutorelease() *Autorelease {
	return &Autorelease{Frames: RELEASE_FRAMES}
}

// Press reports whether the key was up before this press.
func (a *Autorelease) Press(key uint8) bool {
	key &= 0xF
	wasUp := a.hold[key] == 0

	a.hold[key] = max(a.Frames, 1)
	return wasUp
}

// Tick advances one frame and calls release for every key whose hold ran out.
func (a *Autorelease) Tick(release func(key uint8)) {
	for i := range a.hold {
		if a.hold[i] == 0 {
			continue
		}

		a.hold[i]--
		if a.hold[i] == 0 {
			release(uint8(i))
		}
	}
}

func (a *Autorelease) Held(key uint8) bool {
	return a.hold[key&0xF] > 0
}
