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

package via_test

import (
	"testing"

	"github.com/jetsetilly/gopherbeeb/hardware/clocks"
	"github.com/jetsetilly/gopherbeeb/hardware/cpu"
	"github.com/jetsetilly/gopherbeeb/hardware/timing"
	"github.com/jetsetilly/gopherbeeb/hardware/via"
	"github.com/jetsetilly/gopherbeeb/test"
)

func newTestVIA(t *testing.T) (*via.VIA, *timing.Wheel, *cpu.State) {
	t.Helper()
	w := timing.NewWheel(clocks.CPU)
	st := cpu.NewState()
	v := via.NewVIA(via.SystemVIA, w, st)
	return v, w, st
}

func TestT1Continuous(t *testing.T) {
	v, w, _ := newTestVIA(t)

	// continuous mode with PB7 output mode on, so the shadow bit is
	// observable through port B
	v.Write(via.ACR, 0xC0)

	v.Write(via.T1CL, 0x10)
	v.Write(via.T1CH, 0x00)

	// loading T1CH resets the PB7 shadow
	test.Equate(t, v.Read(via.ORB)&0x80, 0x00)

	// latch+2 VIA ticks, at two wheel ticks each
	test.Equate(t, w.NextDeadline(), int64(36))

	w.Advance(35)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer1, 0)

	w.Advance(1)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer1, via.IntTimer1)
	test.Equate(t, v.Read(via.ORB)&0x80, 0x80)

	// reading T1CL clears the interrupt
	v.Read(via.T1CL)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer1, 0)

	// the period repeats, and PB7 toggles again
	w.Advance(36)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer1, via.IntTimer1)
	test.Equate(t, v.Read(via.ORB)&0x80, 0x00)
}

func TestT1OneShot(t *testing.T) {
	v, w, _ := newTestVIA(t)

	v.Write(via.T1CL, 0x04)
	v.Write(via.T1CH, 0x00)

	w.Advance(12)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer1, via.IntTimer1)

	v.Read(via.T1CL)

	// no second interrupt without a T1CH rewrite, however long we wait
	w.Advance(1000)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer1, 0)

	// rewriting T1CH rearms the one shot
	v.Write(via.T1CH, 0x00)
	w.Advance(12)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer1, via.IntTimer1)
}

func TestT1Undercount(t *testing.T) {
	v, w, _ := newTestVIA(t)

	// one-shot with latch 4. period from load to underflow is latch+2, and
	// latch+2 thereafter. after the underflow the counter free runs, so a
	// read long after must see a value fixed up by the relatch rule
	v.Write(via.T1CL, 0x04)
	v.Write(via.T1CH, 0x00)

	w.Advance(12)

	// two VIA ticks past the underflow: -1, 4, then 3
	w.Advance(4)
	test.Equate(t, v.Read(via.T1CL), 0x03)

	// a whole period later, the same value again
	w.Advance(12)
	test.Equate(t, v.Read(via.T1CL), 0x03)
}

func TestT1LatchHighWrite(t *testing.T) {
	v, w, _ := newTestVIA(t)

	v.Write(via.T1CL, 0x04)
	v.Write(via.T1CH, 0x00)
	w.Advance(12)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer1, via.IntTimer1)

	// writing T1LH clears the timer1 interrupt. always, not just in
	// continuous mode
	v.Write(via.T1LH, 0x10)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer1, 0)
}

func TestT2OneShot(t *testing.T) {
	v, w, st := newTestVIA(t)

	// enable the timer2 interrupt so the 6502 line is observable
	v.Write(via.IER, 0x80|via.IntTimer2)

	v.Write(via.T2CL, 0x05)
	v.Write(via.T2CH, 0x00)

	test.Equate(t, w.NextDeadline(), int64(14))
	w.Advance(14)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer2, via.IntTimer2)
	test.Equate(t, st.IRQLine(), true)

	// reading T2CL clears the interrupt and drops the line
	v.Read(via.T2CL)
	test.Equate(t, st.IRQLine(), false)

	// the counter continues down through 0xFFFF and never fires a second
	// interrupt until rearmed
	w.Advance(2 * 0x10000)
	test.Equate(t, v.Read(via.IFR)&via.IntTimer2, 0)

	// exactly one re-wrap period past the underflow the counter reads -1
	test.Equate(t, v.Read(via.T2CL), 0xFF)
	test.Equate(t, v.Read(via.T2CH), 0xFF)
}

func TestT2PulseCounting(t *testing.T) {
	v, w, _ := newTestVIA(t)

	// pulse counting mode suspends the decrement entirely
	v.Write(via.ACR, 0x20)
	v.Write(via.T2CL, 0x10)
	v.Write(via.T2CH, 0x00)

	before := v.Read(via.T2CL)
	w.Advance(100)
	test.Equate(t, v.Read(via.T2CL), before)

	// leaving pulse counting mode resumes the count
	v.Write(via.ACR, 0x00)
	w.Advance(4)
	test.Equate(t, v.Read(via.T2CL), before-2)
}

func TestIFRAggregation(t *testing.T) {
	v, _, st := newTestVIA(t)

	check := func() {
		t.Helper()
		ifr := v.Read(via.IFR)
		ier := v.Read(via.IER) & 0x7F
		expect := ifr&ier&0x7F != 0
		test.Equate(t, ifr&0x80 == 0x80, expect)
		test.Equate(t, st.IRQLine(), expect)
	}

	check()

	v.RaiseInterrupt(via.IntCA1)
	check()

	// flag set but not enabled: no aggregate
	test.Equate(t, v.Read(via.IFR)&0x80, 0)

	v.Write(via.IER, 0x80|via.IntCA1)
	check()
	test.Equate(t, v.Read(via.IFR)&0x80, 0x80)

	// IFR write clears the bits set in the value
	v.Write(via.IFR, via.IntCA1)
	check()
	test.Equate(t, v.Read(via.IFR)&0x80, 0)

	// IER write with bit 7 clear disables
	v.RaiseInterrupt(via.IntCA1)
	v.Write(via.IER, via.IntCA1)
	check()
	test.Equate(t, v.Read(via.IFR)&0x80, 0)

	// reading IER always shows bit 7 set
	test.Equate(t, v.Read(via.IER)&0x80, 0x80)
}

func TestORAReadClearsCA(t *testing.T) {
	v, _, _ := newTestVIA(t)

	v.RaiseInterrupt(via.IntCA1)
	v.RaiseInterrupt(via.IntCA2)

	// the handshake suppressing alias does not clear
	v.Read(via.ORAnh)
	test.Equate(t, v.Read(via.IFR)&(via.IntCA1|via.IntCA2), via.IntCA1|via.IntCA2)

	v.Read(via.ORA)
	test.Equate(t, v.Read(via.IFR)&(via.IntCA1|via.IntCA2), 0)
}

type strobeRecorder struct {
	writes []uint8
}

func (s *strobeRecorder) WriteData(val uint8) {
	s.writes = append(s.writes, val)
}

func TestSoundStrobe(t *testing.T) {
	v, _, _ := newTestVIA(t)

	rec := &strobeRecorder{}
	v.AttachSound(rec)

	v.Write(via.DDRA, 0xFF)
	v.Write(via.ORA, 0xAB)
	v.Write(via.DDRB, 0xFF)

	// address bit 0 of the slow bus latch: first clear, then set. only the
	// low to high transition strobes the sound chip
	v.Write(via.ORB, 0x00)
	test.Equate(t, len(rec.writes), 0)

	v.Write(via.ORB, 0x08)
	test.Equate(t, len(rec.writes), 1)
	test.Equate(t, rec.writes[0], 0xAB)

	// writing the same value again is not a transition
	v.Write(via.ORB, 0x08)
	test.Equate(t, len(rec.writes), 1)
}
