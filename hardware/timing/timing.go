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

package timing

import (
	"fmt"
)

// Callback is invoked when a firing timer reaches its deadline. Callbacks may
// rearm the timer with StartTimer() or SetTimerValue(). A newly armed timer
// with a deadline in the future will not fire during the current Advance().
type Callback func()

// the per-timer record. value is a countdown in wheel ticks relative to now.
// a signed value so that overdue timers are representable.
type timer struct {
	callback Callback
	value    int64
	running  bool
	firing   bool
}

// Wheel is the single source of truth for "which component's next event
// happens first, and at what tick". All peripheral and CPU time advances
// through it.
//
// The wheel ticks at the CPU rate (2MHz). Peripherals clocked at 1MHz store
// their timer values pre-shifted by one so that the half-tick phase between
// the peripheral bus and the CPU is expressible without fractions.
type Wheel struct {
	rate   uint64
	ticks  uint64
	timers []timer

	// timers fired during the current Advance(). a timer's callback runs at
	// most once per Advance() even if it leaves the timer overdue.
	fired []bool
}

// NewWheel is the preferred method of initialisation for the Wheel type. The
// rate is in ticks per second.
func NewWheel(rate uint64) *Wheel {
	return &Wheel{
		rate:   rate,
		timers: make([]timer, 0, 8),
		fired:  make([]bool, 0, 8),
	}
}

func (w *Wheel) String() string {
	return fmt.Sprintf("ticks=%d timers=%d next=%d", w.ticks, len(w.timers), w.NextDeadline())
}

// Rate returns the tick rate of the wheel.
func (w *Wheel) Rate() uint64 {
	return w.rate
}

// Ticks returns the monotonic tick counter. It never decreases.
func (w *Wheel) Ticks() uint64 {
	return w.ticks
}

// RegisterTimer adds a timer to the wheel and returns its id. Timers cannot
// be removed. A registered timer is not running; it is firing until
// SetFiring() says otherwise.
func (w *Wheel) RegisterTimer(callback Callback) int {
	w.timers = append(w.timers, timer{callback: callback, firing: true})
	w.fired = append(w.fired, false)
	return len(w.timers) - 1
}

// StartTimer arms the timer. The deadline is the current tick plus countdown.
// A firing timer cannot be started in the past.
func (w *Wheel) StartTimer(id int, countdown int64) {
	t := &w.timers[id]
	if t.firing && countdown <= 0 {
		panic(fmt.Sprintf("timing: timer %d started with non-future countdown %d", id, countdown))
	}
	t.running = true
	t.value = countdown
}

// StopTimer disarms the timer. The countdown value is frozen and can be
// read back with GetTimerValue().
func (w *Wheel) StopTimer(id int) {
	w.timers[id].running = false
}

// ResumeTimer rearms a stopped timer with its frozen countdown intact.
func (w *Wheel) ResumeTimer(id int) {
	w.timers[id].running = true
}

// SetFiring controls whether the timer's callback runs at the deadline. When
// off, the timer still decrements but fires no callback and does not
// contribute to NextDeadline(). Used to track sub-deadlines that should not
// preempt the CPU.
func (w *Wheel) SetFiring(id int, on bool) {
	w.timers[id].firing = on
}

// SetTimerValue sets the countdown relative to now without changing the
// running or firing state. Values are stored pre-multiplied by two by
// peripheral clients; the wheel itself only demands that a firing timer is
// not left overdue.
func (w *Wheel) SetTimerValue(id int, value int64) {
	t := &w.timers[id]
	if t.running && t.firing && value <= 0 {
		panic(fmt.Sprintf("timing: timer %d armed in the past (%d)", id, value))
	}
	t.value = value
}

// GetTimerValue reads the countdown relative to now. The value may be
// negative if the timer is overdue (a non-firing timer decrements
// indefinitely).
func (w *Wheel) GetTimerValue(id int) int64 {
	return w.timers[id].value
}

// IsRunning returns whether the timer is armed.
func (w *Wheel) IsRunning(id int) bool {
	return w.timers[id].running
}

// Advance the wheel by n ticks. Every running timer's countdown decreases by
// n. Timers that reach their deadline, and are firing, have their callback
// invoked exactly once, in registration order when deadlines coincide.
func (w *Wheel) Advance(n int64) {
	if n < 0 {
		panic(fmt.Sprintf("timing: advance by negative tick count %d", n))
	}

	w.ticks += uint64(n)

	for i := range w.timers {
		if w.timers[i].running {
			w.timers[i].value -= n
		}
		w.fired[i] = false
	}

	// callbacks can rearm timers so keep looking for due timers until a scan
	// finds nothing to do. the fired list keeps any single callback from
	// running twice in one Advance().
	due := true
	for due {
		due = false
		for i := range w.timers {
			t := &w.timers[i]
			if t.running && t.firing && !w.fired[i] && t.value <= 0 {
				w.fired[i] = true
				due = true
				t.callback()
			}
		}
	}
}

// NextDeadline returns the number of ticks that can safely pass before the
// next firing timer is due. Returns maxDeadline if no firing timer is
// running. An overdue firing timer (possible after ResumeTimer) clamps the
// deadline to zero; it fires on the next Advance().
func (w *Wheel) NextDeadline() int64 {
	d := int64(maxDeadline)
	for i := range w.timers {
		t := &w.timers[i]
		if t.running && t.firing && t.value < d {
			d = t.value
		}
	}
	if d < 0 {
		d = 0
	}
	return d
}

// maxDeadline bounds how long the CPU can run without consulting the wheel.
// an arbitrary but comfortable number of ticks.
const maxDeadline = 1 << 30
