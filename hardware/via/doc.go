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

// Package via emulates the 6522 Versatile Interface Adapter. The BBC Micro
// carries two: the system VIA, wired to the keyboard and the slow data bus
// (and through it the sound chip), and the user VIA, wired to the printer
// and user ports.
//
// The defining constraint of the design is that the timer counters live in
// the timing wheel rather than in the VIA. The wheel therefore always knows
// the machine's next interrupt deadline, which is what allows the JIT to
// pick safe run lengths. The VIA converts between wheel values and the
// counter values the programmer sees, including the re-latch fix-up for
// counters that have been left to free run with interrupts spent.
package via
