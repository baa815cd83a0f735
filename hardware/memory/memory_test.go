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

package memory_test

import (
	"testing"

	"github.com/jetsetilly/gopherbeeb/hardware/memory"
	"github.com/jetsetilly/gopherbeeb/test"
)

func TestRAMReadWrite(t *testing.T) {
	m, err := memory.NewMap()
	test.ExpectedSuccess(t, err)
	defer m.Close()

	m.Write(0x0070, 0x42)
	test.Equate(t, m.Read(0x0070), 0x42)

	// 16-bit reads are little endian
	m.Write(0x1000, 0x34)
	m.Write(0x1001, 0x12)
	test.Equate(t, m.Read16(0x1000), 0x1234)
}

func TestMMIODispatch(t *testing.T) {
	m, err := memory.NewMap()
	test.ExpectedSuccess(t, err)
	defer m.Close()

	var lastReg uint8
	var lastVal uint8

	m.RegisterMMIORange(memory.SheilaSystemVIA, memory.SheilaSystemVIA+0x20, 0x0F,
		func(reg uint8) uint8 {
			lastReg = reg
			return 0x99
		},
		func(reg uint8, val uint8) {
			lastReg = reg
			lastVal = val
		},
	)

	// the VIA occupies 32 indexes but only has 16 registers
	test.Equate(t, m.Read(0xFE44), 0x99)
	test.Equate(t, lastReg, 0x04)
	test.Equate(t, m.Read(0xFE54), 0x99)
	test.Equate(t, lastReg, 0x04)

	m.Write(0xFE4E, 0x7F)
	test.Equate(t, lastReg, 0x0E)
	test.Equate(t, lastVal, 0x7F)

	// unattached SHEILA registers and the FRED/JIM pages read as 0xFF
	test.Equate(t, m.Read(0xFE80), 0xFF)
	test.Equate(t, m.Read(0xFC00), 0xFF)
}

func TestROMProtection(t *testing.T) {
	m, err := memory.NewMap()
	test.ExpectedSuccess(t, err)
	defer m.Close()

	os := make([]byte, memory.ROMSize)
	os[0] = 0xA9
	test.ExpectedSuccess(t, m.LoadOS(os))
	test.Equate(t, m.Read(0xC000), 0xA9)

	// the OS ROM cannot be written through the bus
	m.Write(0xC000, 0x00)
	test.Equate(t, m.Read(0xC000), 0xA9)

	// short images are a load error
	test.ExpectedFailure(t, m.LoadOS(os[:100]))
}

func TestSidewaysBanks(t *testing.T) {
	m, err := memory.NewMap()
	test.ExpectedSuccess(t, err)
	defer m.Close()

	basic := make([]byte, memory.ROMSize)
	basic[0] = 0x01
	dfs := make([]byte, memory.ROMSize)
	dfs[0] = 0x02

	test.ExpectedSuccess(t, m.LoadBank(15, basic))
	test.ExpectedSuccess(t, m.LoadBank(9, dfs))

	m.SelectBank(15)
	test.Equate(t, m.Read(0x8000), 0x01)

	m.SelectBank(9)
	test.Equate(t, m.Read(0x8000), 0x02)

	// ROM banks are write protected
	m.Write(0x8000, 0xFF)
	test.Equate(t, m.Read(0x8000), 0x02)

	// sideways RAM banks are not, and their contents survive paging
	test.ExpectedSuccess(t, m.MakeSidewaysRAM(4))
	m.SelectBank(4)
	m.Write(0x8000, 0x55)
	test.Equate(t, m.Read(0x8000), 0x55)
	m.SelectBank(15)
	m.SelectBank(4)
	test.Equate(t, m.Read(0x8000), 0x55)
}

func TestInvalidationHook(t *testing.T) {
	m, err := memory.NewMap()
	test.ExpectedSuccess(t, err)
	defer m.Close()

	var lo, hi uint16
	calls := 0
	m.SetInvalidationHook(func(l, h uint16) {
		lo = l
		hi = h
		calls++
	})

	m.Write(0x2000, 0x60)
	test.Equate(t, calls, 1)
	test.Equate(t, lo, 0x2000)
	test.Equate(t, hi, 0x2000)

	// paging a bank invalidates the whole sideways window
	m.SelectBank(0)
	test.Equate(t, calls, 2)
	test.Equate(t, lo, 0x8000)
	test.Equate(t, hi, 0xBFFF)

	// MMIO writes never touch the flat array
	m.RegisterMMIO(0x40, nil, func(_, _ uint8) {})
	m.Write(0xFE40, 0x00)
	test.Equate(t, calls, 2)
}
