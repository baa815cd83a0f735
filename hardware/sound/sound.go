// This file is part of GopherBeeb.
//
// GopherBeeb is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherBeeb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherBeeb.  If not, see <https://www.gnu.org/licenses/>.

// Package sound wraps the SN76489 programmable sound generator. The chip
// has no bus of its own: the only write path is the system VIA's slow data
// bus strobe, and the only clock is a timing wheel timer that pumps the
// generator core and hands finished samples to whatever mixers are
// attached.
package sound

import (
	"github.com/jetsetilly/gopherbeeb/hardware/clocks"
	"github.com/jetsetilly/gopherbeeb/hardware/timing"

	"github.com/user-none/go-chip-sn76489"
)

// SampleRate of the generated stream.
const SampleRate = 48000

// the generator is pumped at this interval, in wheel ticks. 2ms of guest
// time keeps the host audio buffer comfortably fed without the pump
// preempting anything interesting.
const pumpInterval = clocks.CPU / 500

// sn76489 core buffer size, in samples.
const bufferSize = 1024

// Mixer receives finished mono samples. Implementations include the host
// audio driver and the wavwriter.
type Mixer interface {
	SetAudio(samples []int16) error
}

// Sound owns the SN76489 core and its pacing against guest time.
type Sound struct {
	wheel *timing.Wheel
	psg   *sn76489.SN76489

	timerID int

	// guest ticks already accounted to the generator
	lastPump uint64

	mixers []Mixer
}

// NewSound is the preferred method of initialisation for the Sound type.
func NewSound(wheel *timing.Wheel) *Sound {
	s := &Sound{
		wheel: wheel,
		psg:   sn76489.New(clocks.Sound, SampleRate, bufferSize, sn76489.Sega),
	}

	s.timerID = wheel.RegisterTimer(s.pump)
	wheel.StartTimer(s.timerID, pumpInterval)

	return s
}

// AttachMixer adds a consumer of the sample stream.
func (s *Sound) AttachMixer(m Mixer) {
	s.mixers = append(s.mixers, m)
}

// WriteData is the strobe from the system VIA: the value on the slow data
// bus when the write-enable line pulses. This is the sole write path into
// the chip.
func (s *Sound) WriteData(val uint8) {
	s.catchUp()
	s.psg.Write(byte(val))
}

// catchUp runs the generator core over the guest time that has passed
// since it last ran. The sn76489 core counts its own 4MHz clock; the
// wheel counts 2MHz ticks.
func (s *Sound) catchUp() {
	now := s.wheel.Ticks()
	elapsed := now - s.lastPump
	if elapsed == 0 {
		return
	}
	s.lastPump = now
	s.psg.Run(int(elapsed) * (clocks.Sound / clocks.CPU))
}

// pump is the wheel timer: advance the core, drain its buffer to the
// mixers, rearm.
func (s *Sound) pump() {
	s.catchUp()

	buf, n := s.psg.GetBuffer()
	if n > 0 {
		for _, m := range s.mixers {
			m.SetAudio(buf[:n])
		}
	}
	s.psg.ResetBuffer()

	s.wheel.SetTimerValue(s.timerID, pumpInterval)
}

// EndMixing tells every mixer the stream is over.
func (s *Sound) EndMixing() error {
	for _, m := range s.mixers {
		if em, ok := m.(interface{ EndMixing() error }); ok {
			if err := em.EndMixing(); err != nil {
				return err
			}
		}
	}
	return nil
}
