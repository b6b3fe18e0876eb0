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
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// Stream is an io.Reader of little endian float32 samples, gated by
// SetTone. It is safe to call SetTone while another goroutine reads.
type Stream struct {
	on atomic.Bool

	mutex  sync.Mutex
	square *Square
	buf    []float32
}

func NewStream(frequency float64) *Stream {
	return &Stream{square: NewSquare(frequency)}
}

func (s *Stream) SetTone(on bool) {
	s.on.Store(on)
}

func (s *Stream) Read(p []byte) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	count := len(p) / 4

	if cap(s.buf) < count {
		s.buf = make([]float32, count)
	}

	samples := s.buf[:count]
	s.square.Fill(samples, s.on.Load())

	for i, sample := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(sample))
	}

	return count * 4, nil
}

// Player streams the tone to the default audio device.
type Player struct {
	*Stream

	ctx    *oto.Context
	player *oto.Player
}

func NewPlayer(frequency float64) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SAMPLE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Player{
		Stream: NewStream(frequency),
		ctx:    ctx,
	}

	p.player = ctx.NewPlayer(p.Stream)
	p.player.Play()

	return p, nil
}

func (p *Player) Close() error {
	p.SetTone(false)
	return p.player.Close()
}
