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

package host

import "time"

const (
	CPU_HZ    = 540
	TIMER_HZ  = 60
	VBLANK_HZ = 60

	// Time a channel may fall behind before the excess is dropped
	MAX_BACKLOG = 250 * time.Millisecond
)

// Machine is what the pacer drives. *machine.Machine satisfies it.
type Machine interface {
	Step() error
	TickTimers()
	VBlank()
}

// Pacer converts wall clock time into CPU steps, timer ticks and vblank
// pulses, each at its own fixed rate.
type Pacer struct {
	Paused bool

	machine Machine

	cpuPeriod    time.Duration
	timerPeriod  time.Duration
	vblankPeriod time.Duration

	cpu    time.Duration
	timer  time.Duration
	vblank time.Duration

	// Measured rate over roughly the last second
	actual     float64
	actualCt   int
	actualTime time.Duration
}

func period(hz int) time.Duration {
	return time.Second / time.Duration(hz)
}

// NewPacer drives m with cpuHz steps per second. A non-positive rate selects
// CPU_HZ.
func NewPacer(m Machine, cpuHz int) *Pacer {
	if cpuHz <= 0 {
		cpuHz = CPU_HZ
	}

	return &Pacer{
		machine:      m,
		cpuPeriod:    period(cpuHz),
		timerPeriod:  period(TIMER_HZ),
		vblankPeriod: period(VBLANK_HZ),
	}
}

func accumulate(acc, elapsed time.Duration) time.Duration {
	return min(acc+elapsed, MAX_BACKLOG)
}

// Advance accounts for elapsed wall clock time. At most one vblank is
// signalled per call, then every CPU step that has come due runs, then every
// timer tick. The first step error stops the call and is returned; time
// already accumulated for the remaining steps is kept.
func (p *Pacer) Advance(elapsed time.Duration) error {
	if p.Paused || elapsed <= 0 {
		return nil
	}

	p.cpu = accumulate(p.cpu, elapsed)
	p.timer = accumulate(p.timer, elapsed)
	p.vblank = accumulate(p.vblank, elapsed)

	if p.vblank >= p.vblankPeriod {
		p.machine.VBlank()
		p.vblank -= p.vblankPeriod
	}

	for p.cpu >= p.cpuPeriod {
		p.cpu -= p.cpuPeriod

		if err := p.machine.Step(); err != nil {
			return err
		}

		p.actualCt++
	}

	for p.timer >= p.timerPeriod {
		p.machine.TickTimers()
		p.timer -= p.timerPeriod
	}

	p.measure(elapsed)

	return nil
}

func (p *Pacer) measure(elapsed time.Duration) {
	p.actualTime += elapsed

	if p.actualTime >= time.Second {
		p.actual = float64(p.actualCt) / p.actualTime.Seconds()
		p.actualCt = 0
		p.actualTime = 0
	}
}

// Rate is the measured number of CPU steps per second, zero until a full
// second has been measured.
func (p *Pacer) Rate() float64 {
	return p.actual
}
