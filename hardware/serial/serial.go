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

// Package serial emulates enough of the 6850 ACIA to bridge the guest's
// RS423 port to the host terminal. With -terminal given, guest serial
// output appears on stdout and host keystrokes arrive as serial input,
// which together with the OS ROM patch makes the machine usable from a
// plain terminal with no window at all.
package serial

import (
	"io"
	"os"

	"github.com/jetsetilly/gopherbeeb/curated"
	"github.com/jetsetilly/gopherbeeb/hardware/clocks"
	"github.com/jetsetilly/gopherbeeb/hardware/cpu"
	"github.com/jetsetilly/gopherbeeb/hardware/timing"
	"github.com/jetsetilly/gopherbeeb/logger"

	"github.com/pkg/term/termios"

	"golang.org/x/sys/unix"
)

// status register bits of the 6850.
const (
	statusRDRF = 0x01
	statusTDRE = 0x02
	statusIRQ  = 0x80
)

// receive polling interval: ~1ms of guest time, far faster than any real
// baud rate, slow enough to cost nothing.
const pollInterval = clocks.CPU / 1000

// Serial is the ACIA and its host plumbing.
type Serial struct {
	wheel *timing.Wheel
	state *cpu.State

	control uint8
	rxData  uint8
	rxFull  bool

	out io.Writer
	rx  chan byte

	timerID int

	// saved terminal attributes for Restore
	savedTermios *unix.Termios
}

// NewSerial is the preferred method of initialisation for the Serial type.
func NewSerial(wheel *timing.Wheel, state *cpu.State) *Serial {
	s := &Serial{
		wheel: wheel,
		state: state,
		rx:    make(chan byte, 64),
	}
	s.timerID = wheel.RegisterTimer(s.poll)
	return s
}

// SetIOHandles attaches the host side of the bridge and starts the
// receive poller. The reader goroutine owns in; bytes hand over through a
// channel so the emulation thread never blocks.
func (s *Serial) SetIOHandles(in io.Reader, out io.Writer) {
	s.out = out

	go func() {
		b := make([]byte, 1)
		for {
			n, err := in.Read(b)
			if err != nil {
				return
			}
			if n == 1 {
				s.rx <- b[0]
			}
		}
	}()

	s.wheel.StartTimer(s.timerID, pollInterval)
	logger.Log(logger.Allow, "serial", "host bridge attached")
}

// poll moves at most one byte from the host into the receive register.
func (s *Serial) poll() {
	if !s.rxFull {
		select {
		case b := <-s.rx:
			s.rxData = b
			s.rxFull = true
			s.updateIRQ()
		default:
		}
	}
	s.wheel.SetTimerValue(s.timerID, pollInterval)
}

func (s *Serial) updateIRQ() {
	// receive interrupts are enabled by bit 7 of the control register
	level := s.control&0x80 == 0x80 && s.rxFull
	s.state.SetIRQLevel(cpu.IRQSerial, level)
}

// ReadRegister services an MMIO read of the ACIA.
func (s *Serial) ReadRegister(reg uint8) uint8 {
	switch reg & 1 {
	case 0:
		v := uint8(statusTDRE)
		if s.rxFull {
			v |= statusRDRF
		}
		if s.state.IRQLine() && s.control&0x80 == 0x80 && s.rxFull {
			v |= statusIRQ
		}
		return v
	default:
		s.rxFull = false
		s.updateIRQ()
		return s.rxData
	}
}

// WriteRegister services an MMIO write of the ACIA.
func (s *Serial) WriteRegister(reg uint8, val uint8) {
	switch reg & 1 {
	case 0:
		s.control = val
		s.updateIRQ()
	default:
		if s.out != nil {
			s.out.Write([]byte{val})
		}
	}
}

// RawMode puts stdin into raw mode, remembering the old attributes.
func (s *Serial) RawMode() error {
	var attr unix.Termios
	if err := termios.Tcgetattr(os.Stdin.Fd(), &attr); err != nil {
		return curated.Errorf("serial: %v", err)
	}
	saved := attr
	s.savedTermios = &saved

	termios.Cfmakeraw(&attr)
	// raw but with output post-processing kept, so the guest's bare
	// newlines behave on the host side
	attr.Oflag |= unix.OPOST
	if err := termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, &attr); err != nil {
		return curated.Errorf("serial: %v", err)
	}
	return nil
}

// Restore puts the host terminal back the way RawMode found it.
func (s *Serial) Restore() error {
	if s.savedTermios == nil {
		return nil
	}
	if err := termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, s.savedTermios); err != nil {
		return curated.Errorf("serial: %v", err)
	}
	return nil
}

// PatchOSROM adjusts an OS 1.2 ROM image so that serial I/O is live from
// boot: RS423 for input, screen and RS423 for output, and a control
// register default with receive interrupts enabled.
func PatchOSROM(rom []byte) bool {
	if len(rom) < 0x4000 {
		return false
	}
	if string(rom[0x2825:0x282B]) != "OS 1.2" {
		return false
	}

	// *FX2,1
	rom[0xD981-0xC000] = 1
	// default ACIA control value with receive interrupts on
	rom[0xD990-0xC000] = 0x96
	// *FX3,5
	rom[0xD9BC-0xC000] = 5

	logger.Log(logger.Allow, "serial", "OS 1.2 ROM patched for terminal boot")
	return true
}
