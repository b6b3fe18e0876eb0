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
	"os"

	"github.com/retroenv/retrogolib/log"

	"github.com/lassandro/gochip8/pkg/beep"
)

// sound fans the tone gate out to the speaker and the WAV recording, either
// of which may be absent.
type sound struct {
	player   *beep.Player
	recorder *beep.Recorder
	file     *os.File
}

func newSound(tone float64, mute bool, wavpath string) *sound {
	var snd sound

	if !mute {
		player, err := beep.NewPlayer(tone)

		if err != nil {
			logger.Warn("Audio unavailable", log.Err(err))
		} else {
			snd.player = player
		}
	}

	if wavpath != "" {
		file, err := os.Create(wavpath)

		if err != nil {
			logger.Error("Unable to create recording", log.String("file", wavpath), log.Err(err))
		} else {
			snd.file = file
			snd.recorder = beep.NewRecorder(file, tone)
		}
	}

	return &snd
}

// frame is called once per 60 Hz frame.
func (snd *sound) frame(on bool) {
	if snd.player != nil {
		snd.player.SetTone(on)
	}

	if snd.recorder != nil {
		if err := snd.recorder.Frame(on); err != nil {
			logger.Error("Recording failed", log.Err(err))
			snd.closeRecording()
		}
	}
}

// silence stops the speaker without recording a frame
func (snd *sound) silence() {
	if snd.player != nil {
		snd.player.SetTone(false)
	}
}

func (snd *sound) closeRecording() {
	if snd.recorder == nil {
		return
	}

	if err := snd.recorder.Close(); err != nil {
		logger.Error("Unable to finish recording", log.Err(err))
	}

	if err := snd.file.Close(); err != nil {
		logger.Error("Unable to close recording", log.Err(err))
	}

	logger.Debug("Recording closed", log.String("file", snd.file.Name()))

	snd.recorder = nil
	snd.file = nil
}

func (snd *sound) Close() {
	if snd.player != nil {
		if err := snd.player.Close(); err != nil {
			logger.Warn("Unable to close audio", log.Err(err))
		}
		snd.player = nil
	}

	snd.closeRecording()
}
