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

package timing_test

import (
	"testing"

	"github.com/jetsetilly/gopherbeeb/hardware/clocks"
	"github.com/jetsetilly/gopherbeeb/hardware/timing"
	"github.com/jetsetilly/gopherbeeb/test"
)

func TestFireOrder(t *testing.T) {
	w := timing.NewWheel(clocks.CPU)

	order := make([]int, 0, 2)

	a := w.RegisterTimer(func() { order = append(order, 0) })
	b := w.RegisterTimer(func() { order = append(order, 1) })

	// same deadline. registration order decides
	w.StartTimer(b, 10)
	w.StartTimer(a, 10)
	w.Advance(10)

	test.Equate(t, len(order), 2)
	test.Equate(t, order[0], 0)
	test.Equate(t, order[1], 1)
}

func TestRearmDuringAdvance(t *testing.T) {
	w := timing.NewWheel(clocks.CPU)

	fires := 0
	var id int
	id = w.RegisterTimer(func() {
		fires++
		w.SetTimerValue(id, 20)
	})

	w.StartTimer(id, 10)

	// the rearmed deadline is relative to the end of this Advance() so it
	// must not retroactively fire, even though 10+20 < 40
	w.Advance(40)
	test.Equate(t, fires, 1)

	test.Equate(t, w.NextDeadline(), int64(20))
	w.Advance(20)
	test.Equate(t, fires, 2)
}

func TestNextDeadline(t *testing.T) {
	w := timing.NewWheel(clocks.CPU)

	a := w.RegisterTimer(func() {})
	b := w.RegisterTimer(func() {})
	c := w.RegisterTimer(func() {})

	w.StartTimer(a, 100)
	w.StartTimer(b, 30)
	w.StartTimer(c, 60)

	test.Equate(t, w.NextDeadline(), int64(30))

	// non-firing timers do not contribute to the deadline
	w.SetFiring(b, false)
	test.Equate(t, w.NextDeadline(), int64(60))

	// deadline tracks advancement
	w.Advance(10)
	test.Equate(t, w.NextDeadline(), int64(50))

	// the non-firing timer keeps decrementing regardless
	test.Equate(t, w.GetTimerValue(b), int64(20))
}

func TestDeadlineMonotonicity(t *testing.T) {
	w := timing.NewWheel(clocks.CPU)

	var id int
	id = w.RegisterTimer(func() {
		w.SetTimerValue(id, 64)
	})
	w.StartTimer(id, 64)

	// over any sequence of advances the deadline is non-negative and equal
	// to the minimum armed-firing countdown
	for i := 0; i < 1000; i++ {
		d := w.NextDeadline()
		if d < 0 {
			t.Fatalf("negative deadline %d", d)
		}
		test.Equate(t, d, w.GetTimerValue(id))
		w.Advance(d)
	}
}

func TestStopFreezesValue(t *testing.T) {
	w := timing.NewWheel(clocks.CPU)

	id := w.RegisterTimer(func() {})
	w.StartTimer(id, 50)
	w.Advance(20)
	w.StopTimer(id)
	w.Advance(100)

	test.Equate(t, w.GetTimerValue(id), int64(30))
	test.Equate(t, w.IsRunning(id), false)
}

func TestMonotonicTicks(t *testing.T) {
	w := timing.NewWheel(clocks.CPU)
	test.Equate(t, w.Ticks(), 0)
	w.Advance(100)
	w.Advance(0)
	w.Advance(1)
	test.Equate(t, w.Ticks(), 101)
}
