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

// Package beep turns the sound timer gate into audio: a square wave tone
// that can be played live or recorded to a WAV file.
package beep

const (
	SAMPLE_RATE  = 44100
	VOLUME       = 0.10
	DEFAULT_TONE = 120

	// Samples per 60 Hz frame
	FRAME_SIZE = SAMPLE_RATE / 60
)

// Square is a phase accumulating square wave. The zero value is silent;
// use NewSquare.
type Square struct {
	Frequency  float64
	Volume     float64
	SampleRate int

	phase float64
}

func NewSquare(frequency float64) *Square {
	if frequency <= 0 {
		frequency = DEFAULT_TONE
	}

	return &Square{
		Frequency:  frequency,
		Volume:     VOLUME,
		SampleRate: SAMPLE_RATE,
	}
}

// Fill writes len(out) samples. While off it writes silence and the phase
// holds still, so the next tone starts where the last one stopped.
func (sq *Square) Fill(out []float32, on bool) {
	if !on || sq.SampleRate <= 0 {
		clear(out)
		return
	}

	step := sq.Frequency / float64(sq.SampleRate)

	for i := range out {
		if sq.phase <= 0.5 {
			out[i] = float32(sq.Volume)
		} else {
			out[i] = float32(-sq.Volume)
		}

		sq.phase += step
		for sq.phase >= 1.0 {
			sq.phase -= 1.0
		}
	}
}
