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
)

// every supported opcode must translate into its slot with headroom for
// the fallthrough jump. cache.write panics on overflow so simply compiling
// everything is the assertion. operand patterns chosen to exercise the
// fattest paths: direct stores, dynamic addresses, and the MMIO window.
func TestSlotWidthSafety(t *testing.T) {
	cache, err := NewCache()
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	defer cache.Close()

	mem := make([]byte, 0x10000)

	operands := [][2]uint8{
		{0x70, 0x00}, // zero page / low RAM
		{0x34, 0x12}, // absolute RAM
		{0x40, 0xFE}, // the MMIO window
		{0xFF, 0xFF}, // wrap edges
	}

	for _, accurate := range []bool{false, true} {
		cmp := NewCompiler(cache, mem, accurate)

		for opcode := 0; opcode < 256; opcode++ {
			if definitions[opcode] == nil {
				continue
			}
			for _, ops := range operands {
				pc := uint16(0x1000)
				mem[pc] = uint8(opcode)
				mem[pc+1] = ops[0]
				mem[pc+2] = ops[1]
				cmp.compileOne(pc, definitions[opcode], true)
			}
		}
	}
}

// undocumented opcodes translate to a delegation trap rather than nothing.
func TestUndocumentedOpcode(t *testing.T) {
	cache, err := NewCache()
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	defer cache.Close()

	mem := make([]byte, 0x10000)
	mem[0x1000] = 0x02 // a KIL opcode; no definition

	cmp := NewCompiler(cache, mem, false)
	cmp.CompileBlock(0x1000)

	// the slot begins with the PC store followed by the delegation jump
	o := int(0x1000) << SlotShift
	if cache.code[o] != 0x66 {
		t.Errorf("expected PC store at slot start, found %#02x", cache.code[o])
	}
}

// invalidation widens downwards so that an instruction whose operand bytes
// are overwritten traps at its head slot.
func TestInvalidateRange(t *testing.T) {
	cache, err := NewCache()
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	defer cache.Close()

	mem := make([]byte, 0x10000)
	// LDA #$55 at 0x3000
	mem[0x3000] = 0xA9
	mem[0x3001] = 0x55

	cmp := NewCompiler(cache, mem, false)
	cmp.CompileBlock(0x3000)

	// the head slot no longer starts with the trap
	head := int(0x3000) << SlotShift
	if cache.code[head] == trap[0] && cache.code[head+1] == trap[1] {
		t.Fatalf("head slot still trapped after compilation")
	}

	// a bus write to the operand byte puts the trap back over the head
	cache.InvalidateRange(0x3001, 0x3001)
	for i, b := range trap {
		if cache.code[head+i] != b {
			t.Fatalf("head slot not re-trapped at byte %d", i)
		}
	}
}
