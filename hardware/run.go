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

package hardware

import (
	"github.com/jetsetilly/gopherbeeb/logger"
)

// Run resets the machine and drives it until it stops. It owns the
// calling goroutine for the duration; the UI lives on another thread and
// talks through the message channel and the keyboard matrix.
func (b *BBC) Run() error {
	b.Driver.Reset()
	if b.startPC >= 0 {
		b.Driver.SetPC(uint16(b.startPC))
	}

	err := b.Driver.Run()

	if err2 := b.Sound.EndMixing(); err == nil {
		err = err2
	}

	if b.hasChannel {
		b.channel.Send(Message{Kind: MessageExited})
	}

	logger.Logf(logger.Allow, "bbc", "stopped after %d ticks", b.Wheel.Ticks())

	return err
}

// RunAsync starts Run on its own goroutine: the emulation thread of the
// two-thread model. The returned channel yields the run error when the
// machine stops.
func (b *BBC) RunAsync() <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- b.Run()
	}()
	return done
}
