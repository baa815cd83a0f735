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

// Package jit compiles 6502 machine code to x86-64 on the fly and runs it
// in lockstep with the timing wheel.
//
// The cache gives every guest byte a fixed-width host code slot, so guest
// PC to host address is a constant-time scaled add and translated jumps go
// slot to slot without tables. A slot with no valid translation holds a
// trap that calls out through the stub table; the call's pushed return
// address tells the dispatcher which slot wants compiling. Translated
// stores plant the same trap over the slot of every guest byte they write,
// which is the whole of the self-modifying code story: nothing relocates,
// nothing needs patching, the next arrival at an invalidated slot compiles
// fresh code.
//
// Translated code runs under a fixed register convention (see Env) entered
// through a hand-written trampoline. It calls nothing but the stomp helper
// that stores use to trap rewritten slots: whatever else it cannot do with
// plain memory and registers, it exits for, and the
// dispatcher completes the instruction through the bus before re-entering.
// Between entries the dispatcher advances the timing wheel by the ticks
// the translated code consumed, which is how peripheral timers and
// interrupts stay deterministic to the cycle.
package jit
