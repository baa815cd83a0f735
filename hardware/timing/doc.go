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

// Package timing is the timing wheel: the single, deterministic, totally
// ordered source of truth for which component's next event happens first,
// and at what tick. The CPU driver asks NextDeadline() how long it may
// run, runs for at most that long, and Advance()s the wheel by however
// long it actually ran; peripherals keep their counters in the wheel so
// their deadlines are always visible.
//
// Timers that coincide fire in registration order. A callback may rearm
// its timer; a deadline armed in the future never fires retroactively
// within the same Advance(). A timer can be left running but not firing,
// in which case it decrements indefinitely and its owner reconstructs the
// architectural counter value from the overdue figure.
package timing
