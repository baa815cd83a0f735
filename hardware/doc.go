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

// Package hardware assembles the BBC Micro: the guest address space, the
// timing wheel, the two VIAs, the keyboard, sound, serial and frame
// timing, and the jit CPU driver that executes through them all.
//
// The concurrency model is two threads. The emulation goroutine owns all
// of the above exclusively; the UI thread owns the window and input. They
// meet in exactly two places: the keyboard matrix, whose byte cells are
// written by the UI thread (and by keyboard replay on the emulation
// goroutine) and read without locks by the emulation thread, and the pair of single-producer single-consumer pipe channels
// carrying the fixed four byte messages defined in message.go.
package hardware
