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

package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font/basicfont"

	"github.com/lassandro/gochip8/pkg/host"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

const WINDOW_TITLE = "gochip8"

var windowKeys = map[rune]ebiten.Key{
	'1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2, '3': ebiten.KeyDigit3, '4': ebiten.KeyDigit4,
	'Q': ebiten.KeyQ, 'W': ebiten.KeyW, 'E': ebiten.KeyE, 'R': ebiten.KeyR,
	'A': ebiten.KeyA, 'S': ebiten.KeyS, 'D': ebiten.KeyD, 'F': ebiten.KeyF,
	'Z': ebiten.KeyZ, 'X': ebiten.KeyX, 'C': ebiten.KeyC, 'V': ebiten.KeyV,
}

type window struct {
	mc    *machine.Machine
	pacer *host.Pacer
	sound *sound

	scale  int
	fg, bg color.RGBA

	image  *ebiten.Image
	pixels []byte
	last   time.Time
}

// Parses RRGGBB with an optional leading '#'
func parseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")

	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour '%s'", s)
	}

	value, err := strconv.ParseUint(s, 16, 32)

	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour '%s': %w", s, err)
	}

	return color.RGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 0xFF,
	}, nil
}

func runWindow(mc *machine.Machine, pacer *host.Pacer, snd *sound) int {
	fg, err := parseColor(fgvar)
	if err != nil {
		logger.Error("Bad foreground", log.Err(err))
		return 1
	}

	bg, err := parseColor(bgvar)
	if err != nil {
		logger.Error("Bad background", log.Err(err))
		return 1
	}

	w := &window{
		mc:     mc,
		pacer:  pacer,
		sound:  snd,
		scale:  scalevar,
		fg:     fg,
		bg:     bg,
		pixels: make([]byte, machine.DISPLAY_WIDTH*machine.DISPLAY_HEIGHT*4),
		last:   time.Now(),
	}

	ebiten.SetWindowSize(machine.DISPLAY_WIDTH*w.scale, machine.DISPLAY_HEIGHT*w.scale)
	ebiten.SetWindowTitle(WINDOW_TITLE)

	if err := ebiten.RunGame(w); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("Machine stopped", log.Err(err))
		return 1
	}

	return 0
}

func (w *window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		w.pacer.Paused = !w.pacer.Paused
		logger.Debug("Pause toggled", log.String("paused", strconv.FormatBool(w.pacer.Paused)))
	}

	for i, key := range keymap.Keys {
		w.mc.SetKey(uint8(i), ebiten.IsKeyPressed(windowKeys[key]))
	}

	now := time.Now()
	elapsed := now.Sub(w.last)
	w.last = now

	if err := w.pacer.Advance(elapsed); err != nil {
		return err
	}

	w.sound.frame(w.mc.Tone() && !w.pacer.Paused)

	return nil
}

func (w *window) render() {
	for y := range machine.DISPLAY_HEIGHT {
		for x := range machine.DISPLAY_WIDTH {
			c := w.bg
			if w.mc.Pixel(x, y) {
				c = w.fg
			}

			i := (y*machine.DISPLAY_WIDTH + x) * 4
			w.pixels[i+0] = c.R
			w.pixels[i+1] = c.G
			w.pixels[i+2] = c.B
			w.pixels[i+3] = c.A
		}
	}

	w.image.WritePixels(w.pixels)
}

func (w *window) Draw(screen *ebiten.Image) {
	changed := w.mc.ScreenChanged()

	if w.image == nil {
		w.image = ebiten.NewImage(machine.DISPLAY_WIDTH, machine.DISPLAY_HEIGHT)
		changed = true
	}

	if changed {
		w.render()
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w.scale), float64(w.scale))
	screen.DrawImage(w.image, op)

	if w.pacer.Paused {
		const label = "PAUSED"

		bounds := text.BoundString(basicfont.Face7x13, label)
		box := image.Rect(0, 0, bounds.Dx()+8, bounds.Dy()+8)
		screen.SubImage(box).(*ebiten.Image).Fill(w.bg)
		text.Draw(screen, label, basicfont.Face7x13, 4-bounds.Min.X, 4-bounds.Min.Y, w.fg)
	}
}

func (w *window) Layout(_, _ int) (int, int) {
	return machine.DISPLAY_WIDTH * w.scale, machine.DISPLAY_HEIGHT * w.scale
}
