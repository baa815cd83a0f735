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

// Package video carries the frame timing of the machine: a 50Hz vsync that
// interrupts the system VIA through CA1 and tells the run loop a frame is
// due. Rendering the raster itself is the business of an external
// renderer; this package only keeps time for it.
package video

import (
	"github.com/jetsetilly/gopherbeeb/hardware/clocks"
	"github.com/jetsetilly/gopherbeeb/hardware/timing"
	"github.com/jetsetilly/gopherbeeb/hardware/via"
)

// ticks between vsyncs at the PAL field rate.
const framePeriod = clocks.CPU / clocks.FrameRate

// Video is the frame timer.
type Video struct {
	wheel  *timing.Wheel
	sysVIA *via.VIA

	timerID int

	// called at every vsync, from the timing wheel, on the emulation
	// thread
	onVSync func()
}

// NewVideo is the preferred method of initialisation for the Video type.
// The vsync interrupt arrives on the system VIA's CA1 line.
func NewVideo(wheel *timing.Wheel, sysVIA *via.VIA, onVSync func()) *Video {
	v := &Video{
		wheel:   wheel,
		sysVIA:  sysVIA,
		onVSync: onVSync,
	}

	v.timerID = wheel.RegisterTimer(v.vsync)
	wheel.StartTimer(v.timerID, framePeriod)

	return v
}

func (v *Video) vsync() {
	v.sysVIA.RaiseInterrupt(via.IntCA1)
	if v.onVSync != nil {
		v.onVSync()
	}
	v.wheel.SetTimerValue(v.timerID, framePeriod)
}
