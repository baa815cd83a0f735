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

package jit_test

import (
	"testing"

	"github.com/jetsetilly/gopherbeeb/hardware/clocks"
	"github.com/jetsetilly/gopherbeeb/hardware/cpu"
	"github.com/jetsetilly/gopherbeeb/hardware/memory"
	"github.com/jetsetilly/gopherbeeb/hardware/timing"
	"github.com/jetsetilly/gopherbeeb/jit"
	"github.com/jetsetilly/gopherbeeb/test"
)

type rig struct {
	mem    *memory.Map
	state  *cpu.State
	wheel  *timing.Wheel
	driver *jit.Driver
}

func newRig(t *testing.T, accurate bool) *rig {
	t.Helper()

	mem, err := memory.NewMap()
	if err != nil {
		t.Fatalf("memory: %v", err)
	}

	state := cpu.NewState()
	wheel := timing.NewWheel(clocks.CPU)

	driver, err := jit.NewDriver(mem, state, wheel, accurate)
	if err != nil {
		t.Fatalf("driver: %v", err)
	}

	t.Cleanup(func() {
		driver.Close()
		mem.Close()
	})

	return &rig{mem: mem, state: state, wheel: wheel, driver: driver}
}

// poke writes bytes directly into the flat guest array, the way a ROM load
// would, without bus side effects.
func (r *rig) poke(addr uint16, b ...byte) {
	copy(r.mem.Data()[addr:], b)
}

func TestResetVectorBoot(t *testing.T) {
	r := newRig(t, true)

	r.poke(0xFFFC, 0x34, 0x12)
	r.poke(0x1234,
		0xA9, 0x42, // LDA #$42
		0x4C, 0x36, 0x12, // JMP $1236
	)

	r.driver.Reset()
	test.Equate(t, r.state.PC, 0x1234)

	r.driver.SetStopAddr(0x1236)
	test.ExpectedSuccess(t, r.driver.Run())

	// the executed instruction was the translation of guest byte 0x1234
	test.Equate(t, r.state.A, 0x42)
	test.Equate(t, r.state.PC, 0x1236)
}

func TestLoadStoreLoad(t *testing.T) {
	for _, accurate := range []bool{false, true} {
		r := newRig(t, accurate)

		r.poke(0x1000,
			0xA9, 0x42, // LDA #$42
			0x85, 0x70, // STA $70
			0xA5, 0x70, // LDA $70
			0x4C, 0x06, 0x10, // JMP $1006
		)

		r.state.Reset()
		r.driver.SetPC(0x1000)
		r.driver.SetStopAddr(0x1006)
		test.ExpectedSuccess(t, r.driver.Run())

		test.Equate(t, r.state.A, 0x42)
		test.Equate(t, r.state.Status.Zero, false)
		test.Equate(t, r.state.Status.Sign, false)
		test.Equate(t, r.mem.Read(0x0070), 0x42)
	}
}

func TestJSRRTS(t *testing.T) {
	r := newRig(t, true)

	r.poke(0x1000,
		0x20, 0x00, 0xA0, // JSR $A000
		0x4C, 0x03, 0x10, // JMP $1003
	)
	r.poke(0xA000, 0x60) // RTS

	r.state.Reset()
	r.driver.SetPC(0x1000)
	r.driver.SetStopAddr(0x1003)
	test.ExpectedSuccess(t, r.driver.Run())

	// JSR pushed the return address minus one, high byte first
	test.Equate(t, r.mem.Read(0x01FF), 0x10)
	test.Equate(t, r.mem.Read(0x01FE), 0x02)
	test.Equate(t, r.state.S, 0xFF)
	test.Equate(t, r.state.PC, 0x1003)
}

func TestPHAPLProundTrip(t *testing.T) {
	r := newRig(t, true)

	r.poke(0x1000,
		0xA9, 0xC5, // LDA #$C5
		0x48,             // PHA
		0x28,             // PLP
		0x4C, 0x04, 0x10, // JMP $1004
	)

	r.state.Reset()
	r.driver.SetPC(0x1000)
	r.driver.SetStopAddr(0x1004)
	test.ExpectedSuccess(t, r.driver.Run())

	// 0xC5 masked to the settable bits, with B always cleared by the pull.
	// note that I is set so the stop address must be reached before any
	// interrupt could interfere anyway
	test.Equate(t, r.state.Status.Sign, true)
	test.Equate(t, r.state.Status.Overflow, true)
	test.Equate(t, r.state.Status.Break, false)
	test.Equate(t, r.state.Status.DecimalMode, false)
	test.Equate(t, r.state.Status.InterruptDisable, true)
	test.Equate(t, r.state.Status.Zero, false)
	test.Equate(t, r.state.Status.Carry, true)
}

// property: after write(addr, v) then jmp(addr), the executed guest bytes
// are the newly written bytes, not the previously translated ones.
func TestCacheCoherence(t *testing.T) {
	for _, accurate := range []bool{false, true} {
		r := newRig(t, accurate)

		r.poke(0x0800,
			0x20, 0x00, 0x30, // JSR $3000
			0xA9, 0xAA, // LDA #$AA
			0x8D, 0x01, 0x30, // STA $3001 (the immediate of the LDA below)
			0x20, 0x00, 0x30, // JSR $3000
			0x4C, 0x0B, 0x08, // JMP $080B
		)
		r.poke(0x3000,
			0xA9, 0x55, // LDA #$55
			0x60, // RTS
		)

		r.state.Reset()
		r.driver.SetPC(0x0800)
		r.driver.SetStopAddr(0x080B)
		test.ExpectedSuccess(t, r.driver.Run())

		// the second call saw the rewritten immediate
		test.Equate(t, r.state.A, 0xAA)
	}
}

func TestIRQDelivery(t *testing.T) {
	r := newRig(t, true)

	r.poke(0x1000,
		0x58,             // CLI
		0x4C, 0x01, 0x10, // JMP $1001
	)
	r.poke(0x2000, 0x4C, 0x00, 0x20) // the handler spins
	r.poke(0xFFFE, 0x00, 0x20)

	// a peripheral stand-in: raise the interrupt line at tick 100
	var id int
	id = r.wheel.RegisterTimer(func() {
		r.state.SetIRQLevel(cpu.IRQSystemVIA, true)
		r.wheel.StopTimer(id)
	})
	r.wheel.StartTimer(id, 100)

	r.state.Reset()
	r.driver.SetPC(0x1000)
	r.driver.SetStopAddr(0x2000)
	test.ExpectedSuccess(t, r.driver.Run())

	// the interrupt entry pushed three bytes and vectored
	test.Equate(t, r.state.PC, 0x2000)
	test.Equate(t, r.state.S, 0xFC)
	test.Equate(t, r.state.Status.InterruptDisable, true)

	// the pushed return address points into the spin loop
	hi := r.mem.Read(0x01FF)
	lo := r.mem.Read(0x01FE)
	ret := uint16(lo) | uint16(hi)<<8
	if ret < 0x1001 || ret > 0x1004 {
		t.Errorf("pushed return address %#04x outside the loop", ret)
	}
}

func TestBRKAsInterrupt(t *testing.T) {
	r := newRig(t, true)

	r.poke(0x1000, 0x00) // BRK
	r.poke(0x2000, 0x4C, 0x00, 0x20)
	r.poke(0xFFFE, 0x00, 0x20)

	r.state.Reset()
	r.driver.SetPC(0x1000)
	r.driver.SetStopAddr(0x2000)
	test.ExpectedSuccess(t, r.driver.Run())

	// a guest BRK is a regular interrupt, not an emulator error. the
	// pushed status has the break bit set
	test.Equate(t, r.state.PC, 0x2000)
	p := r.mem.Read(0x01FD)
	test.Equate(t, p&0x10, 0x10)
}

func TestUnimplementedOpcodeAborts(t *testing.T) {
	r := newRig(t, true)

	r.poke(0x1000, 0x02) // KIL

	r.state.Reset()
	r.driver.SetPC(0x1000)
	test.ExpectedFailure(t, r.driver.Run())
}
