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
	"github.com/jetsetilly/gopherbeeb/curated"
	"github.com/jetsetilly/gopherbeeb/hardware/clocks"
	"github.com/jetsetilly/gopherbeeb/hardware/cpu"
	"github.com/jetsetilly/gopherbeeb/hardware/disc"
	"github.com/jetsetilly/gopherbeeb/hardware/keyboard"
	"github.com/jetsetilly/gopherbeeb/hardware/memory"
	"github.com/jetsetilly/gopherbeeb/hardware/serial"
	"github.com/jetsetilly/gopherbeeb/hardware/sound"
	"github.com/jetsetilly/gopherbeeb/hardware/tape"
	"github.com/jetsetilly/gopherbeeb/hardware/timing"
	"github.com/jetsetilly/gopherbeeb/hardware/via"
	"github.com/jetsetilly/gopherbeeb/hardware/video"
	"github.com/jetsetilly/gopherbeeb/jit"
	"github.com/jetsetilly/gopherbeeb/logger"
)

// MaxTapes bounds the tape queue.
const MaxTapes = 4

// BBC is the machine: every chip on the board and the CPU driver that
// makes it go. With the exception of the keyboard matrix and the message
// channels, everything here is owned exclusively by the emulation
// goroutine once Run or RunAsync is called.
type BBC struct {
	Mem       *memory.Map
	State     *cpu.State
	Wheel     *timing.Wheel
	SystemVIA *via.VIA
	UserVIA   *via.VIA
	Keyboard  *keyboard.Keyboard
	Sound     *sound.Sound
	Serial    *serial.Serial
	Video     *video.Video
	Driver    *jit.Driver

	Drives [2]disc.Drive
	Tapes  []*tape.Tape

	// ROMSEL latch. the memory map holds the bank copies; this is the
	// register value the guest reads back
	romsel uint8

	// the machine end of the message pair; the zero value means headless
	channel    Channel
	hasChannel bool

	// when set, the emulation blocks at vsync until the UI sends
	// RENDER_DONE
	vsyncWaitForRender bool

	// pc override applied at Run instead of the reset vector; -1 when
	// unset
	startPC int32
}

// NewBBC is the preferred method of initialisation for the BBC type. The
// osROM image goes into the OS slot before anything can run.
func NewBBC(osROM []byte, accurate bool) (*BBC, error) {
	var err error

	b := &BBC{startPC: -1}

	b.Mem, err = memory.NewMap()
	if err != nil {
		return nil, err
	}

	if err = b.Mem.LoadOS(osROM); err != nil {
		return nil, err
	}

	b.State = cpu.NewState()
	b.Wheel = timing.NewWheel(clocks.CPU)

	b.SystemVIA = via.NewVIA(via.SystemVIA, b.Wheel, b.State)
	b.UserVIA = via.NewVIA(via.UserVIA, b.Wheel, b.State)

	b.Keyboard = keyboard.NewKeyboard()
	b.SystemVIA.AttachKeyboard(b.Keyboard)

	b.Sound = sound.NewSound(b.Wheel)
	b.SystemVIA.AttachSound(b.Sound)

	b.Serial = serial.NewSerial(b.Wheel, b.State)

	b.Video = video.NewVideo(b.Wheel, b.SystemVIA, b.vsync)

	// the jit driver installs the memory map's invalidation hook, which the
	// ROMSEL bank switching wired below goes through. the OS ROM load above
	// precedes the hook and invalidates nothing; a new cache holds only
	// traps
	b.Driver, err = jit.NewDriver(b.Mem, b.State, b.Wheel, accurate)
	if err != nil {
		return nil, err
	}

	// SHEILA wiring. the VIAs each occupy 32 indexes, mirroring their 16
	// registers twice
	b.Mem.RegisterMMIORange(memory.SheilaSystemVIA, memory.SheilaSystemVIA+0x20, 0x0F,
		b.SystemVIA.Read, b.SystemVIA.Write)
	b.Mem.RegisterMMIORange(memory.SheilaUserVIA, memory.SheilaUserVIA+0x20, 0x0F,
		b.UserVIA.Read, b.UserVIA.Write)

	b.Mem.RegisterMMIORange(memory.SheilaSerialStatus, memory.SheilaSerialULA, 0x01,
		b.Serial.ReadRegister, b.Serial.WriteRegister)

	b.Mem.RegisterMMIORange(memory.SheilaROMSEL, memory.SheilaSystemVIA, 0x00,
		func(_ uint8) uint8 { return b.romsel },
		func(_ uint8, val uint8) {
			b.romsel = val & 0x0F
			b.Mem.SelectBank(int(b.romsel))
		})

	logger.Log(logger.Allow, "bbc", "machine assembled")

	return b, nil
}

// LoadROM installs a sideways ROM image.
func (b *BBC) LoadROM(bank int, data []byte) error {
	return b.Mem.LoadBank(bank, data)
}

// MakeSidewaysRAM marks a bank writeable.
func (b *BBC) MakeSidewaysRAM(bank int) error {
	return b.Mem.MakeSidewaysRAM(bank)
}

// AddDisc queues a disc image in a drive.
func (b *BBC) AddDisc(filename string, drive int, writeable bool, mutable bool) error {
	if drive < 0 || drive > 1 {
		return curated.Errorf("bbc: no such drive %d", drive)
	}
	return b.Drives[drive].Add(filename, writeable, mutable)
}

// AddTape queues a tape image.
func (b *BBC) AddTape(filename string) error {
	if len(b.Tapes) >= MaxTapes {
		return curated.Errorf("bbc: too many tapes")
	}
	t, err := tape.Load(filename)
	if err != nil {
		return err
	}
	b.Tapes = append(b.Tapes, t)
	return nil
}

// SetChannel attaches the machine end of the message pair.
func (b *BBC) SetChannel(c Channel) {
	b.channel = c
	b.hasChannel = true
}

// SetVSyncWaitForRender makes the emulation block at each vsync until the
// UI confirms the frame was presented.
func (b *BBC) SetVSyncWaitForRender(on bool) {
	b.vsyncWaitForRender = on
}

// SetPC overrides the reset vector for the first entry.
func (b *BBC) SetPC(pc uint16) {
	b.startPC = int32(pc)
}

// SetStopCycles halts the machine after the given number of wheel ticks.
// Used by batch and test runs.
func (b *BBC) SetStopCycles(cycles uint64) {
	var id int
	id = b.Wheel.RegisterTimer(func() {
		b.Wheel.StopTimer(id)
		b.Driver.Stop(b.runResultFromMemory())
	})
	b.Wheel.StartTimer(id, int64(cycles))
}

// runResultFromMemory assembles the 32-bit run result consumed by batch
// mode: the A register in the low byte and the zero page test locations
// above it.
func (b *BBC) runResultFromMemory() uint32 {
	data := b.Mem.Data()
	return uint32(b.State.A) |
		uint32(data[0x0070])<<8 |
		uint32(data[0x0071])<<16 |
		uint32(data[0x0072])<<24
}

// RunResult returns the value recorded when the machine stopped.
func (b *BBC) RunResult() uint32 {
	return b.Driver.ExitValue()
}

// vsync runs on the emulation goroutine at every frame boundary.
func (b *BBC) vsync() {
	b.Keyboard.SetTick(b.Wheel.Ticks())
	b.Keyboard.ApplyReplay(b.Wheel.Ticks())

	if !b.hasChannel {
		return
	}

	b.channel.Send(Message{Kind: MessageVSync, FullRender: true})

	if b.vsyncWaitForRender {
		for {
			m, err := b.channel.Receive()
			if err != nil {
				// the UI is gone; stop cleanly
				b.Driver.Stop(0xFFFFFFFF)
				return
			}
			if m.Kind == MessageRenderDone {
				return
			}
		}
	}
}
