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

package jit

import (
	"testing"
	"unsafe"

	"github.com/jetsetilly/gopherbeeb/test"
)

// the Env layout is shared with enter_amd64.s and with the emitted code.
// nothing enforces it but this test.
func TestEnvLayout(t *testing.T) {
	var e Env

	test.Equate(t, int(unsafe.Offsetof(e.A)), 0)
	test.Equate(t, int(unsafe.Offsetof(e.Carry)), 1)
	test.Equate(t, int(unsafe.Offsetof(e.X)), 2)
	test.Equate(t, int(unsafe.Offsetof(e.Y)), 3)
	test.Equate(t, int(unsafe.Offsetof(e.S)), 4)
	test.Equate(t, int(unsafe.Offsetof(e.SPin)), 5)
	test.Equate(t, int(unsafe.Offsetof(e.Zero)), 6)
	test.Equate(t, int(unsafe.Offsetof(e.Negative)), 7)
	test.Equate(t, int(unsafe.Offsetof(e.P)), 8)
	test.Equate(t, int(unsafe.Offsetof(e.PC)), envPC)
	test.Equate(t, int(unsafe.Offsetof(e.Reason)), envReason)
	test.Equate(t, int(unsafe.Offsetof(e.Countdown)), 24)
	test.Equate(t, int(unsafe.Offsetof(e.Mem)), 32)
	test.Equate(t, int(unsafe.Offsetof(e.Cache)), 40)
	test.Equate(t, int(unsafe.Offsetof(e.Stubs)), 48)
	test.Equate(t, int(unsafe.Offsetof(e.TrapAddr)), 56)
}

func TestStubTable(t *testing.T) {
	for i, s := range stubTable {
		if s == 0 {
			t.Fatalf("stub %d has no address", i)
		}
	}
}
