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

// Package cpu holds the architectural state of the 6502 found in the BBC
// Micro: the A, X, Y and S registers, the status flags, the program counter
// and the levels of the IRQ and NMI lines.
//
// Deliberately absent is any instruction execution. The jit package compiles
// 6502 machine code to host code and owns a private, register-pinned
// representation of this state while translated code runs. At every yield to
// the timing wheel the state is written back here, which is also how
// peripherals observe and interrupt the CPU.
package cpu
