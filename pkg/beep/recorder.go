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

package beep

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const BIT_DEPTH = 16

// Recorder writes one frame of tone or silence per call to Frame as 16-bit
// mono PCM.
type Recorder struct {
	encoder *wav.Encoder
	square  *Square
	samples []float32
	buf     *audio.IntBuffer
}

func NewRecorder(w io.WriteSeeker, frequency float64) *Recorder {
	return &Recorder{
		encoder: wav.NewEncoder(w, SAMPLE_RATE, BIT_DEPTH, 1, 1),
		square:  NewSquare(frequency),
		samples: make([]float32, FRAME_SIZE),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: SAMPLE_RATE},
			Data:           make([]int, FRAME_SIZE),
			SourceBitDepth: BIT_DEPTH,
		},
	}
}

func (r *Recorder) Frame(on bool) error {
	r.square.Fill(r.samples, on)

	for i, sample := range r.samples {
		r.buf.Data[i] = int(sample * math.MaxInt16)
	}

	return r.encoder.Write(r.buf)
}

// Close finishes the WAV header. The underlying writer is left open.
func (r *Recorder) Close() error {
	return r.encoder.Close()
}
