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
	"fmt"
	"unsafe"

	"github.com/jetsetilly/gopherbeeb/curated"

	"golang.org/x/sys/unix"
)

// Slot geometry. Guest PC to host address is base + pc<<SlotShift: a
// constant time function, which is what makes translated jumps a scaled
// add. The width must be a power of two and wide enough for the largest
// single translated instruction plus the fallthrough jump.
const (
	SlotShift = 7
	SlotWidth = 1 << SlotShift
	numSlots  = 0x10000
)

// trap is the sequence planted in every slot that holds no translation:
// call through the stale stub, which learns the slot's identity from the
// address the call pushes. Both uninitialised and invalidated slots hold
// it; translated stores plant it themselves when they hit guest memory.
var trap = [5]byte{0x41, 0xFF, 0x54, 0x24, ExitStale * 8}

// Cache is the translation cache: one fixed-width host code slot per guest
// byte, in a single contiguous read-write-execute mapping. Writers and
// executors are the same thread so the protection never changes after
// setup.
type Cache struct {
	mapping []byte
	code    []byte
	base    uintptr
}

// padSlots is the number of dead slots kept below slot zero. The stomp
// helper invalidates the two slots below a written address without range
// checks; for addresses 0 and 1 the writes land here.
const padSlots = 2

// NewCache is the preferred method of initialisation for the Cache type.
func NewCache() (*Cache, error) {
	mapping, err := unix.Mmap(-1, 0, (numSlots+padSlots)*SlotWidth,
		unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, curated.Errorf("jit: cache: %v", err)
	}

	c := &Cache{
		mapping: mapping,
		code:    mapping[padSlots*SlotWidth:],
	}
	c.base = uintptr(unsafe.Pointer(&c.code[0]))

	for pc := 0; pc < numSlots; pc++ {
		c.fillTrap(uint16(pc))
	}

	return c, nil
}

// Close releases the cache mapping.
func (c *Cache) Close() error {
	err := unix.Munmap(c.mapping)
	c.mapping = nil
	c.code = nil
	if err != nil {
		return curated.Errorf("jit: cache: %v", err)
	}
	return nil
}

// Base returns the host address of slot zero.
func (c *Cache) Base() uintptr {
	return c.base
}

// SlotAddr returns the host address of the slot for a guest PC.
func (c *Cache) SlotAddr(pc uint16) uintptr {
	return c.base + uintptr(pc)<<SlotShift
}

func (c *Cache) fillTrap(pc uint16) {
	o := int(pc) << SlotShift
	copy(c.code[o:], trap[:])
	for i := o + len(trap); i < o+SlotWidth; i++ {
		c.code[i] = 0x90
	}
}

// Invalidate returns a slot to the trap state. Because slots are fixed
// width nothing relocates and no incoming branch needs fixing up.
func (c *Cache) Invalidate(pc uint16) {
	copy(c.code[int(pc)<<SlotShift:], trap[:])
}

// InvalidateRange invalidates every slot in the inclusive guest address
// range. This is the bus write hook: any write that lands in guest memory
// may be overwriting code. The range is widened downwards by two so that
// any instruction whose operand bytes were written is caught too.
func (c *Cache) InvalidateRange(lo, hi uint16) {
	start := int(lo) - 2
	if start < 0 {
		start = 0
	}
	for pc := start; pc <= int(hi); pc++ {
		copy(c.code[pc<<SlotShift:], trap[:])
	}
}

// write copies a finished translation into its slot. The translation must
// leave at least two bytes of headroom; exceeding the slot is a translator
// bug, not an input error.
func (c *Cache) write(pc uint16, code []byte) {
	if len(code) > SlotWidth-2 {
		panic(fmt.Sprintf("jit: translation of %04x is %d bytes; slot width is %d", pc, len(code), SlotWidth))
	}
	o := int(pc) << SlotShift
	copy(c.code[o:], code)
	for i := o + len(code); i < o+SlotWidth; i++ {
		c.code[i] = 0x90
	}
}

// PCForTrap recovers the guest PC of a trapped slot from the host address
// its call pushed.
func (c *Cache) PCForTrap(addr uint64) uint16 {
	return uint16((addr - uint64(len(trap)) - uint64(c.base)) >> SlotShift)
}
