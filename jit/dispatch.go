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

package jit

import (
	"sync/atomic"
	"unsafe"

	"github.com/jetsetilly/gopherbeeb/curated"
	"github.com/jetsetilly/gopherbeeb/hardware/cpu"
	"github.com/jetsetilly/gopherbeeb/hardware/memory"
	"github.com/jetsetilly/gopherbeeb/hardware/timing"
	"github.com/jetsetilly/gopherbeeb/logger"
)

// the longest run granted to translated code in one entry, in ticks. keeps
// the stop flag responsive when no timer is due for a long while.
const maxGrant = 65536

// Driver owns the translated execution of the 6502: the code cache, the
// trampoline and the arbitration between translated code and the timing
// wheel. It is the jit counterpart of the interpreter CPU drivers.
type Driver struct {
	env      Env
	cache    *Cache
	compiler *Compiler
	fb       fallback

	mem   *memory.Map
	state *cpu.State
	wheel *timing.Wheel

	// set asynchronously by the UI thread. observed at dispatcher exits;
	// a running translated block is never interrupted
	stop int32

	exitValue uint32

	// optional stop conditions
	stopAddr int32
}

// NewDriver is the preferred method of initialisation for the Driver type.
func NewDriver(mem *memory.Map, state *cpu.State, wheel *timing.Wheel, accurate bool) (*Driver, error) {
	cache, err := NewCache()
	if err != nil {
		return nil, err
	}

	d := &Driver{
		cache:    cache,
		compiler: NewCompiler(cache, mem.Data(), accurate),
		mem:      mem,
		state:    state,
		wheel:    wheel,
		stopAddr: -1,
	}
	d.fb = fallback{env: &d.env, mem: mem}

	d.env.Mem = mem.Base()
	d.env.Cache = cache.Base()
	d.env.Stubs = stubTable0()
	d.env.SPin = 0x01

	mem.SetInvalidationHook(cache.InvalidateRange)

	logger.Logf(logger.Allow, "jit", "cache at %#x, %d byte slots", cache.Base(), SlotWidth)

	return d, nil
}

// Close releases the code cache.
func (d *Driver) Close() error {
	return d.cache.Close()
}

// Reset puts the 6502 into its documented initial state and points it at
// the reset vector.
func (d *Driver) Reset() {
	d.state.Reset()
	d.state.PC = d.mem.Read16(cpu.VectorReset)
	logger.Logf(logger.Allow, "jit", "reset vector %#04x", d.state.PC)
}

// SetPC overrides the program counter. Used by the -pc flag.
func (d *Driver) SetPC(pc uint16) {
	d.state.PC = pc
}

// SetStopAddr halts execution when the PC reaches addr at a dispatcher
// exit.
func (d *Driver) SetStopAddr(addr uint16) {
	d.stopAddr = int32(addr)
}

// Stop asks the driver to halt at its next exit, recording the run result.
// Safe to call from another goroutine.
func (d *Driver) Stop(exitValue uint32) {
	atomic.StoreUint32(&d.exitValue, exitValue)
	atomic.StoreInt32(&d.stop, 1)
}

// Stopped reports whether the driver has been asked to halt.
func (d *Driver) Stopped() bool {
	return atomic.LoadInt32(&d.stop) != 0
}

// ExitValue returns the run result recorded by Stop.
func (d *Driver) ExitValue() uint32 {
	return atomic.LoadUint32(&d.exitValue)
}

// syncEnv loads the architectural state into the register convention
// image.
func (d *Driver) syncEnv() {
	st := d.state
	d.env.A = st.A
	d.env.X = st.X
	d.env.Y = st.Y
	d.env.S = st.S
	d.env.SPin = 0x01
	d.env.PC = st.PC

	d.env.Carry = 0
	if st.Status.Carry {
		d.env.Carry = 1
	}
	d.env.Zero = 0
	if st.Status.Zero {
		d.env.Zero = 1
	}
	d.env.Negative = 0
	if st.Status.Sign {
		d.env.Negative = 1
	}

	d.env.P = 0x20
	if st.Status.InterruptDisable {
		d.env.P |= 0x04
	}
	if st.Status.DecimalMode {
		d.env.P |= 0x08
	}
	if st.Status.Overflow {
		d.env.P |= 0x40
	}
}

// syncState writes the register convention image back to the architectural
// state.
func (d *Driver) syncState() {
	st := d.state
	st.A = d.env.A
	st.X = d.env.X
	st.Y = d.env.Y
	st.S = d.env.S
	st.PC = d.env.PC

	st.Status.Carry = d.env.Carry != 0
	st.Status.Zero = d.env.Zero != 0
	st.Status.Sign = d.env.Negative != 0
	st.Status.InterruptDisable = d.env.P&0x04 != 0
	st.Status.DecimalMode = d.env.P&0x08 != 0
	st.Status.Overflow = d.env.P&0x40 != 0
}

// interrupt performs the 6502 interrupt entry sequence through the bus.
func (d *Driver) interrupt(vector uint16) {
	st := d.state

	d.mem.Write(0x100+uint16(st.S), uint8(st.PC>>8))
	st.S--
	d.mem.Write(0x100+uint16(st.S), uint8(st.PC))
	st.S--

	p := st.Status.Value() &^ 0x10
	d.mem.Write(0x100+uint16(st.S), p)
	st.S--

	st.Status.InterruptDisable = true
	st.PC = d.mem.Read16(vector)

	// the entry sequence is seven ticks of bus traffic
	d.wheel.Advance(7)
}

// Run drives translated execution until Stop is called or a stop condition
// is met. On return the architectural state holds the final 6502 state.
func (d *Driver) Run() error {
	for atomic.LoadInt32(&d.stop) == 0 {
		if d.state.TakeNMI() {
			d.interrupt(cpu.VectorNMI)
		} else if d.state.IRQLine() && !d.state.Status.InterruptDisable {
			d.interrupt(cpu.VectorIRQ)
		}

		if d.stopAddr >= 0 && d.state.PC == uint16(d.stopAddr) {
			break
		}

		grant := d.wheel.NextDeadline()
		if grant > maxGrant {
			grant = maxGrant
		}
		if grant == 0 {
			// an overdue timer. fire it before granting anything
			d.wheel.Advance(0)
			continue
		}

		d.syncEnv()
		d.env.Countdown = grant
		enter(&d.env, d.cache.SlotAddr(d.env.PC))

		// time passed inside translated code, and possibly a little more:
		// the countdown can be driven negative by the instruction that
		// crosses the deadline, which is how a timer comes to fire overdue
		d.wheel.Advance(grant - d.env.Countdown)

		switch d.env.Reason {
		case ExitCountdown:
			// timers fired during the advance; interrupt sampling happens
			// at the top of the loop

		case ExitStale:
			pc := d.cache.PCForTrap(d.env.TrapAddr)
			d.env.PC = pc
			d.compiler.CompileBlock(pc)

		case ExitDelegate:
			if err := d.fb.step(); err != nil {
				d.syncState()
				return curated.Errorf("jit: %v", err)
			}

		case ExitStore:
			// a store completed in accurate mode. nothing to do beyond the
			// re-entry itself: the stale slot, if the store made one, traps
			// on arrival
		}

		d.syncState()
	}

	d.syncState()
	return nil
}

// stubTable0 returns the address of the stub table for the register
// convention.
func stubTable0() uintptr {
	return uintptr(unsafe.Pointer(&stubTable[0]))
}
