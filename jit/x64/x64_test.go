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

package x64_test

import (
	"bytes"
	"testing"

	"github.com/jetsetilly/gopherbeeb/jit/x64"
)

func expect(t *testing.T, a *x64.Asm, b ...byte) {
	t.Helper()
	if !bytes.Equal(a.Code, b) {
		t.Errorf("encoded % x, wanted % x", a.Code, b)
	}
	a.Code = a.Code[:0]
}

// spot checks against assemblies verified by hand. the byte registers are
// the load-bearing part of the convention so they get the attention.
func TestEncodings(t *testing.T) {
	a := &x64.Asm{}

	// mov al, 0x42
	a.MovRegImm(x64.AL, 0x42)
	expect(t, a, 0xB0, 0x42)

	// mov ah, 0x01
	a.MovRegImm(x64.AH, 0x01)
	expect(t, a, 0xB4, 0x01)

	// mov al, [rdi+0x1234]
	a.MovRegMem(x64.AL, 0x1234)
	expect(t, a, 0x8A, 0x87, 0x34, 0x12, 0x00, 0x00)

	// mov [rdi+0x0070], bh
	a.MovMemReg(0x0070, x64.BH)
	expect(t, a, 0x88, 0xBF, 0x70, 0x00, 0x00, 0x00)

	// test dl, dl / sete dl / sets dh
	a.FlagsZN(x64.DL)
	expect(t, a, 0x84, 0xD2, 0x0F, 0x94, 0xC2, 0x0F, 0x98, 0xC6)

	// the stack page access pair: mov [rdi+rcx], al / dec cl
	a.MovStackReg(x64.AL)
	a.DecCL()
	expect(t, a, 0x88, 0x04, 0x0F, 0xFE, 0xC9)

	// adc al, [rdi+r9]
	a.AluRegIdx(0x10, x64.AL)
	expect(t, a, 0x42, 0x12, 0x04, 0x0F)

	// shr ah, 1 (the carry byte into CF)
	a.ShiftReg(5, x64.AH)
	expect(t, a, 0xD0, 0xEC)

	// mov word [r13+16], 0x1234 (the PC store)
	a.StorePC(16, 0x1234)
	expect(t, a, 0x66, 0x41, 0xC7, 0x45, 0x10, 0x34, 0x12)

	// sub r8, 4 (the cycle charge)
	a.SubCountdown(4)
	expect(t, a, 0x49, 0x83, 0xE8, 0x04)

	// jmp [r12+8] / call [r12+24]
	a.JmpStub(1)
	expect(t, a, 0x41, 0xFF, 0x64, 0x24, 0x08)
	a.CallStub(3)
	expect(t, a, 0x41, 0xFF, 0x54, 0x24, 0x18)
}

func TestJmpReach(t *testing.T) {
	a := &x64.Asm{}

	// forward jump: rel32 measured from the end of the instruction
	a.Jmp(0x1000, 0x2000)
	expect(t, a, 0xE9, 0xFB, 0x0F, 0x00, 0x00)

	// backward jump
	a.Jmp(0x2000, 0x1000)
	expect(t, a, 0xE9, 0xFB, 0xEF, 0xFF, 0xFF)
}
