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

package cpu

import (
	"fmt"
)

// The interrupt sources that can pull on the 6502's IRQ line. The line
// itself is the logical OR of all source levels; each source toggles its own
// level, never the aggregate.
const (
	IRQSystemVIA = iota
	IRQUserVIA
	IRQSerial
	NumIRQSources
)

// The 6502's fixed vector locations.
const (
	VectorNMI   = 0xFFFA
	VectorReset = 0xFFFC
	VectorIRQ   = 0xFFFE
)

// State is the architectural state of the 6502: the registers the programmer
// sees plus the interrupt line levels. Execution is the business of a CPU
// driver (the JIT dispatcher, or an external interpreter) which loads this
// state into its own representation and writes it back at every yield.
type State struct {
	A  uint8
	X  uint8
	Y  uint8
	S  uint8
	PC uint16

	Status StatusRegister

	irq [NumIRQSources]bool

	nmiLevel   bool
	nmiPending bool
}

// NewState is the preferred method of initialisation for the State type.
func NewState() *State {
	return &State{}
}

func (st *State) String() string {
	return fmt.Sprintf("PC=%04x A=%02x X=%02x Y=%02x S=%02x %s",
		st.PC, st.A, st.X, st.Y, st.S, st.Status.String())
}

// Reset puts the registers into the documented initial 6502 state. The PC is
// not touched; the CPU driver reads the reset vector itself.
func (st *State) Reset() {
	st.A = 0
	st.X = 0
	st.Y = 0
	st.S = 0xFF
	st.Status.Reset()
	for i := range st.irq {
		st.irq[i] = false
	}
	st.nmiLevel = false
	st.nmiPending = false
}

// SetIRQLevel sets the level of a single interrupt source.
func (st *State) SetIRQLevel(source int, level bool) {
	st.irq[source] = level
}

// IRQLine returns the aggregate level of the IRQ line.
func (st *State) IRQLine() bool {
	for _, l := range st.irq {
		if l {
			return true
		}
	}
	return false
}

// SetNMILevel sets the level of the NMI line. NMI is edge triggered; the
// low-to-high transition latches a pending interrupt that is consumed by
// TakeNMI().
func (st *State) SetNMILevel(level bool) {
	if level && !st.nmiLevel {
		st.nmiPending = true
	}
	st.nmiLevel = level
}

// TakeNMI returns true at most once per NMI edge.
func (st *State) TakeNMI() bool {
	p := st.nmiPending
	st.nmiPending = false
	return p
}
