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

// Package memory is the guest address space of the BBC Micro: 32KiB of
// RAM, the 16KiB paged sideways ROM window, the OS ROM, and the SHEILA
// MMIO page dispatched by register index to whatever device claims it.
//
// The whole 64KiB lives in one flat array inside a guarded host mapping,
// because translated code addresses it directly: guest address arithmetic
// that escapes 16 bits lands on a guard page instead of corrupting the
// emulator. The price of the flat array is that ROM paging is a copy, and
// every change to the array runs the invalidation hook so the translation
// cache never executes bytes that are gone.
package memory
