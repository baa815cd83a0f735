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

package memory

import (
	"unsafe"

	"github.com/jetsetilly/gopherbeeb/curated"

	"golang.org/x/sys/unix"
)

// Reader is the read half of an MMIO dispatch entry. The argument is the
// 8-bit register index within the SHEILA page.
type Reader func(reg uint8) uint8

// Writer is the write half of an MMIO dispatch entry.
type Writer func(reg uint8, val uint8)

// Map is the guest address space: a contiguous 64KiB array flanked by
// inaccessible guard pages, with the SHEILA page routed through a dispatch
// table.
//
// The flat array always holds what the CPU would see: the OS ROM and the
// currently selected sideways bank are copied in place. Translated code
// reads the array directly, which is why bank switches must run the
// invalidation hook over the paged window.
type Map struct {
	// the full mapping including guard pages. held onto for munmap
	mapping []byte

	// ram is the 64KiB guest window inside mapping
	ram []byte

	readers [256]Reader
	writers [256]Writer

	// sideways ROM banks. a nil bank is empty and reads as 0xFF
	banks    [NumROMBanks][]byte
	banksRAM [NumROMBanks]bool
	selected int

	// called after any write that lands in the flat array, including bank
	// switches. the jit uses this to mark translation slots stale
	invalidate func(lo, hi uint16)
}

// NewMap is the preferred method of initialisation for the Map type.
func NewMap() (*Map, error) {
	pg := unix.Getpagesize()

	mapping, err := unix.Mmap(-1, 0, pg+0x10000+pg,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, curated.Errorf("memory: %v", err)
	}

	// guard pages above and below catch stray 16-bit wraparound bugs in the
	// translated code
	if err := unix.Mprotect(mapping[:pg], unix.PROT_NONE); err != nil {
		return nil, curated.Errorf("memory: %v", err)
	}
	if err := unix.Mprotect(mapping[pg+0x10000:], unix.PROT_NONE); err != nil {
		return nil, curated.Errorf("memory: %v", err)
	}

	m := &Map{
		mapping:  mapping,
		ram:      mapping[pg : pg+0x10000],
		selected: -1,
	}

	return m, nil
}

// Close releases the guest mapping.
func (m *Map) Close() error {
	err := unix.Munmap(m.mapping)
	m.mapping = nil
	m.ram = nil
	if err != nil {
		return curated.Errorf("memory: %v", err)
	}
	return nil
}

// Base returns the host address of guest address zero. The jit plants this
// in its register convention.
func (m *Map) Base() uintptr {
	return uintptr(unsafe.Pointer(&m.ram[0]))
}

// Data exposes the flat guest array.
func (m *Map) Data() []byte {
	return m.ram
}

// SetInvalidationHook registers the function run over every range of guest
// addresses whose contents change through the bus.
func (m *Map) SetInvalidationHook(f func(lo, hi uint16)) {
	m.invalidate = f
}

// RegisterMMIO routes a single SHEILA register index to a device.
func (m *Map) RegisterMMIO(reg uint8, r Reader, w Writer) {
	m.readers[reg] = r
	m.writers[reg] = w
}

// RegisterMMIORange routes a range of SHEILA register indexes to a device.
// The device sees the index masked to its own register space, so a VIA
// occupying 32 indexes receives 0-15 twice over.
func (m *Map) RegisterMMIORange(lo, hi uint8, mask uint8, r Reader, w Writer) {
	for i := int(lo); i < int(hi); i++ {
		reg := uint8(i) & mask
		m.readers[i] = func(_ uint8) uint8 { return r(reg) }
		m.writers[i] = func(_ uint8, val uint8) { w(reg, val) }
	}
}

// Read performs a bus-accurate read of the guest address space, with MMIO
// side effects.
func (m *Map) Read(addr uint16) uint8 {
	if IsMMIO(addr) {
		if addr < SheilaBase {
			// FRED and JIM. nothing attached
			return 0xFF
		}
		reg := uint8(addr)
		if m.readers[reg] == nil {
			return 0xFF
		}
		return m.readers[reg](reg)
	}
	return m.ram[addr]
}

// Write performs a bus-accurate write of the guest address space, with MMIO
// side effects and ROM write protection.
func (m *Map) Write(addr uint16, val uint8) {
	if IsMMIO(addr) {
		if addr < SheilaBase {
			return
		}
		reg := uint8(addr)
		if m.writers[reg] != nil {
			m.writers[reg](reg, val)
		}
		return
	}

	if addr >= RAMTop {
		// the paged window is writeable when the selected bank is sideways
		// RAM. everything else up there is ROM
		if addr < OSROMBase && m.selected >= 0 && m.banksRAM[m.selected] {
			m.banks[m.selected][addr-SidewaysBase] = val
		} else {
			return
		}
	}

	m.ram[addr] = val
	if m.invalidate != nil {
		m.invalidate(addr, addr)
	}
}

// Read16 reads a 16-bit little-endian value. Used for vectors.
func (m *Map) Read16(addr uint16) uint16 {
	lo := uint16(m.Read(addr))
	hi := uint16(m.Read(addr + 1))
	return lo | (hi << 8)
}

// LoadOS copies a 16KiB OS ROM image into place.
func (m *Map) LoadOS(data []byte) error {
	if len(data) != ROMSize {
		return curated.Errorf("memory: OS ROM image is %d bytes, not %d", len(data), ROMSize)
	}
	copy(m.ram[OSROMBase:], data)
	if m.invalidate != nil {
		m.invalidate(OSROMBase, 0xFFFF)
	}
	return nil
}

// LoadBank installs a 16KiB ROM image into a sideways slot.
func (m *Map) LoadBank(bank int, data []byte) error {
	if bank < 0 || bank >= NumROMBanks {
		return curated.Errorf("memory: ROM bank %d out of range", bank)
	}
	if len(data) != ROMSize {
		return curated.Errorf("memory: ROM image for bank %d is %d bytes, not %d", bank, len(data), ROMSize)
	}
	m.banks[bank] = make([]byte, ROMSize)
	copy(m.banks[bank], data)
	return nil
}

// MakeSidewaysRAM marks a bank as writeable. An unpopulated bank becomes
// 16KiB of zeroed RAM.
func (m *Map) MakeSidewaysRAM(bank int) error {
	if bank < 0 || bank >= NumROMBanks {
		return curated.Errorf("memory: RAM bank %d out of range", bank)
	}
	if m.banks[bank] == nil {
		m.banks[bank] = make([]byte, ROMSize)
	}
	m.banksRAM[bank] = true
	return nil
}

// SelectBank pages a sideways bank into the 0x8000 window. This is the
// ROMSEL latch operation.
func (m *Map) SelectBank(bank int) {
	bank &= NumROMBanks - 1
	if bank == m.selected {
		return
	}
	m.selected = bank

	if m.banks[bank] == nil {
		for i := SidewaysBase; i < OSROMBase; i++ {
			m.ram[i] = 0xFF
		}
	} else {
		copy(m.ram[SidewaysBase:OSROMBase], m.banks[bank])
	}

	if m.invalidate != nil {
		m.invalidate(SidewaysBase, OSROMBase-1)
	}
}

// SelectedBank returns the bank currently paged in, or -1 before the first
// ROMSEL write.
func (m *Map) SelectedBank() int {
	return m.selected
}
