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

// Package x64 is the tiny x86-64 encoder underneath the jit translator. It
// is not a general assembler: it encodes exactly the instruction shapes the
// translator's register convention calls for, against the fixed role
// assignment documented in the jit package.
//
// The byte registers AL/AH, BL/BH, CL/CH and DL/DH are the reason the
// convention packs two 6502 bytes per host register: the pairs are
// addressable without a REX prefix, so the common emissions stay short. A
// REX prefix would also make the high-byte registers unreachable, which is
// why the odd scratch byte goes through EBP (BPL is reachable under REX,
// BH and friends are not).
package x64

// Reg8 names a legacy byte register by its encoding value.
type Reg8 byte

// The encodable byte registers. These values go straight into modrm fields.
const (
	AL Reg8 = 0
	CL Reg8 = 1
	DL Reg8 = 2
	BL Reg8 = 3
	AH Reg8 = 4
	CH Reg8 = 5
	DH Reg8 = 6
	BH Reg8 = 7
)

// Cond names a condition code for Jcc and SETcc encodings.
type Cond byte

// Condition codes, by their encoding nibble.
const (
	Carry    Cond = 0x2 // b/c
	NotCarry Cond = 0x3 // ae/nc
	Zero     Cond = 0x4 // e/z
	NotZero  Cond = 0x5 // ne/nz
	Sign     Cond = 0x8 // s
	NotSign  Cond = 0x9 // ns
	Overflow Cond = 0x0 // o
)

// Asm accumulates encoded bytes. The zero value is ready to use.
type Asm struct {
	Code []byte
}

// Len returns the number of bytes emitted so far.
func (a *Asm) Len() int {
	return len(a.Code)
}

// Emit appends raw bytes.
func (a *Asm) Emit(b ...byte) {
	a.Code = append(a.Code, b...)
}

// Emit16 appends a 16-bit little-endian immediate.
func (a *Asm) Emit16(v uint16) {
	a.Code = append(a.Code, byte(v), byte(v>>8))
}

// Emit32 appends a 32-bit little-endian immediate.
func (a *Asm) Emit32(v uint32) {
	a.Code = append(a.Code, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// MovRegImm emits mov r8, imm8 for a legacy byte register. B0+r ib.
func (a *Asm) MovRegImm(r Reg8, v uint8) {
	a.Emit(0xB0+byte(r), v)
}

// MovRegMem emits mov r8, [rdi+disp32]: a guest memory load from a static
// address. 8A /r.
func (a *Asm) MovRegMem(r Reg8, addr uint16) {
	a.Emit(0x8A, 0x87|byte(r)<<3)
	a.Emit32(uint32(addr))
}

// MovMemReg emits mov [rdi+disp32], r8: a guest memory store to a static
// address. 88 /r.
func (a *Asm) MovMemReg(addr uint16, r Reg8) {
	a.Emit(0x88, 0x87|byte(r)<<3)
	a.Emit32(uint32(addr))
}

// MovRegIdx emits mov r8, [rdi+r9]: a guest memory load through the
// computed effective address. REX.X 8A /r with SIB.
func (a *Asm) MovRegIdx(r Reg8) {
	a.Emit(0x42, 0x8A, 0x04|byte(r)<<3, 0x0F)
}

// MovIdxReg emits mov [rdi+r9], r8. REX.X 88 /r with SIB.
func (a *Asm) MovIdxReg(r Reg8) {
	a.Emit(0x42, 0x88, 0x04|byte(r)<<3, 0x0F)
}

// MovStackReg emits mov [rdi+rcx], r8: a push-side store to the stack page.
// The S register's partner byte is pinned to 0x01 so rcx indexes the page
// directly. 88 /r with SIB.
func (a *Asm) MovStackReg(r Reg8) {
	a.Emit(0x88, 0x04|byte(r)<<3, 0x0F)
}

// MovStackImm emits mov byte [rdi+rcx], imm8. C6 /0 with SIB.
func (a *Asm) MovStackImm(v uint8) {
	a.Emit(0xC6, 0x04, 0x0F, v)
}

// MovRegStack emits mov r8, [rdi+rcx]: the pull-side load. 8A /r.
func (a *Asm) MovRegStack(r Reg8) {
	a.Emit(0x8A, 0x04|byte(r)<<3, 0x0F)
}

// MovzxBPStack emits movzx ebp, byte [rdi+rcx]. 0F B6 /r.
func (a *Asm) MovzxBPStack() {
	a.Emit(0x0F, 0xB6, 0x2C, 0x0F)
}

// IncCL and DecCL move the 6502 stack pointer. Wrapping stays inside the
// low byte; the page pin in CH is untouched. FE /0, FE /1.
func (a *Asm) IncCL() { a.Emit(0xFE, 0xC1) }

// DecCL decrements the stack pointer byte.
func (a *Asm) DecCL() { a.Emit(0xFE, 0xC9) }

// IncReg emits inc r8. FE /0.
func (a *Asm) IncReg(r Reg8) {
	a.Emit(0xFE, 0xC0+byte(r))
}

// DecReg emits dec r8. FE /1.
func (a *Asm) DecReg(r Reg8) {
	a.Emit(0xFE, 0xC8+byte(r))
}

// MovRegReg emits mov r8dst, r8src. 88 /r.
func (a *Asm) MovRegReg(dst, src Reg8) {
	a.Emit(0x88, 0xC0|byte(src)<<3|byte(dst))
}

// TestReg emits test r8, r8, setting ZF and SF from the register value.
// 84 /r.
func (a *Asm) TestReg(r Reg8) {
	a.Emit(0x84, 0xC0|byte(r)<<3|byte(r))
}

// Setcc emits setcc on a legacy byte register. 0F 90+cc /r.
func (a *Asm) Setcc(c Cond, r Reg8) {
	a.Emit(0x0F, 0x90|byte(c), 0xC0|byte(r))
}

// FlagsZN recomputes the Z and N flag bytes from a result register: the Z
// byte becomes literally 1-or-0, the N byte the extracted sign bit. This is
// the normalisation every arithmetic emission ends with; host EFLAGS never
// survive between guest instructions.
func (a *Asm) FlagsZN(r Reg8) {
	a.TestReg(r)
	a.Setcc(Zero, DL)
	a.Setcc(Sign, DH)
}

// AluRegImm emits one of the 80 /n group against a byte register and an
// immediate: add=0 or=1 adc=2 sbb=3 and=4 sub=5 xor=6 cmp=7.
func (a *Asm) AluRegImm(op byte, r Reg8, v uint8) {
	a.Emit(0x80, 0xC0|op<<3|byte(r), v)
}

// AluRegMem emits op r8, [rdi+disp32] for the same group. base|0x02 /r.
func (a *Asm) AluRegMem(base byte, r Reg8, addr uint16) {
	a.Emit(base|0x02, 0x87|byte(r)<<3)
	a.Emit32(uint32(addr))
}

// AluRegIdx emits op r8, [rdi+r9] for the same group.
func (a *Asm) AluRegIdx(base byte, r Reg8) {
	a.Emit(0x42, base|0x02, 0x04|byte(r)<<3, 0x0F)
}

// ShiftReg emits the D0 /n group with count 1: rol=0 ror=1 rcl=2 rcr=3
// shl=4 shr=5 sar=7.
func (a *Asm) ShiftReg(op byte, r Reg8) {
	a.Emit(0xD0, 0xC0|op<<3|byte(r))
}

// MovzxR9Reg emits movzx r9d, r8 for a REX-safe byte register (AL, BL, CL,
// DL only; the high bytes vanish under REX). 44 0F B6 /r.
func (a *Asm) MovzxR9Reg(r Reg8) {
	a.Emit(0x44, 0x0F, 0xB6, 0xC8|byte(r))
}

// MovzxBPReg emits movzx ebp, r8. No REX, so the high byte registers are
// reachable: this is the route Y and the carry byte take into address
// arithmetic. 0F B6 /r.
func (a *Asm) MovzxBPReg(r Reg8) {
	a.Emit(0x0F, 0xB6, 0xE8|byte(r))
}

// MovzxR9Mem emits movzx r9d, byte [rdi+disp32].
func (a *Asm) MovzxR9Mem(addr uint16) {
	a.Emit(0x44, 0x0F, 0xB6, 0x8F)
	a.Emit32(uint32(addr))
}

// MovzxR9Mem16 emits movzx r9d, word [rdi+disp32]: a little-endian pointer
// fetch from guest memory.
func (a *Asm) MovzxR9Mem16(addr uint16) {
	a.Emit(0x44, 0x0F, 0xB7, 0x8F)
	a.Emit32(uint32(addr))
}

// MovzxR9Idx emits movzx r9d, byte [rdi+r9]: replaces the effective address
// with the byte it points at. REX.XR 0F B6 /r.
func (a *Asm) MovzxR9Idx() {
	a.Emit(0x46, 0x0F, 0xB6, 0x0C, 0x0F)
}

// MovzxBPIdx emits movzx ebp, byte [rdi+r9]: an operand fetch through the
// effective address.
func (a *Asm) MovzxBPIdx() {
	a.Emit(0x42, 0x0F, 0xB6, 0x2C, 0x0F)
}

// MovzxBPMem emits movzx ebp, byte [rdi+disp32].
func (a *Asm) MovzxBPMem(addr uint16) {
	a.Emit(0x0F, 0xB6, 0xAF)
	a.Emit32(uint32(addr))
}

// MovR9Imm emits mov r9d, imm32. 41 B9 id.
func (a *Asm) MovR9Imm(v uint32) {
	a.Emit(0x41, 0xB9)
	a.Emit32(v)
}

// AddR9Imm emits add r9d, imm32. 41 81 /0 id.
func (a *Asm) AddR9Imm(v uint32) {
	a.Emit(0x41, 0x81, 0xC1)
	a.Emit32(v)
}

// AddR9BP emits add r9d, ebp. 41 01 /r.
func (a *Asm) AddR9BP() {
	a.Emit(0x41, 0x01, 0xE9)
}

// AndR9Imm emits and r9d, imm32. 41 81 /4 id.
func (a *Asm) AndR9Imm(v uint32) {
	a.Emit(0x41, 0x81, 0xE1)
	a.Emit32(v)
}

// CmpR9Imm emits cmp r9d, imm32. 41 81 /7 id.
func (a *Asm) CmpR9Imm(v uint32) {
	a.Emit(0x41, 0x81, 0xF9)
	a.Emit32(v)
}

// ShlR9 emits shl r9d, imm8. 41 C1 /4 ib.
func (a *Asm) ShlR9(n uint8) {
	a.Emit(0x41, 0xC1, 0xE1, n)
}

// ShlR9Q emits shl r9, imm8 over the full width: used to scale a guest PC
// to a slot offset. 49 C1 /4 ib.
func (a *Asm) ShlR9Q(n uint8) {
	a.Emit(0x49, 0xC1, 0xE1, n)
}

// AddR9Cache emits add r9, r15: rebases a slot offset onto the code cache.
// 4D 01 /r.
func (a *Asm) AddR9Cache() {
	a.Emit(0x4D, 0x01, 0xF9)
}

// JmpR9 emits jmp r9. 41 FF /4.
func (a *Asm) JmpR9() {
	a.Emit(0x41, 0xFF, 0xE1)
}

// MovBPESI emits mov ebp, esi. 89 /r.
func (a *Asm) MovBPESI() {
	a.Emit(0x89, 0xF5)
}

// MovESIBP emits mov esi, ebp.
func (a *Asm) MovESIBP() {
	a.Emit(0x89, 0xEE)
}

// OrBPImm emits or ebp, imm8 (sign extended). 83 /1 ib.
func (a *Asm) OrBPImm(v uint8) {
	a.Emit(0x83, 0xCD, v)
}

// AndESIImm emits and esi, imm8 sign extended: the immediate must have bit
// 7 set so the extension preserves the high bits. 83 /4 ib.
func (a *Asm) AndESIImm(v uint8) {
	a.Emit(0x83, 0xE6, v)
}

// OrESIImm emits or esi, imm8. 83 /1 ib.
func (a *Asm) OrESIImm(v uint8) {
	a.Emit(0x83, 0xCE, v)
}

// TestSILImm emits test sil, imm8: the P-bits probe. REX F6 /0 ib.
func (a *Asm) TestSILImm(v uint8) {
	a.Emit(0x40, 0xF6, 0xC6, v)
}

// SetccR9B emits setcc r9b. REX.B 0F 90+cc /r.
func (a *Asm) SetccR9B(c Cond) {
	a.Emit(0x41, 0x0F, 0x90|byte(c), 0xC1)
}

// OrESIR9 emits or esi, r9d. 44 09 /r.
func (a *Asm) OrESIR9() {
	a.Emit(0x44, 0x09, 0xCE)
}

// MovR9EDX emits mov r9d, edx: the packed Z/N pair into scratch. 41 89 /r.
func (a *Asm) MovR9EDX() {
	a.Emit(0x41, 0x89, 0xD1)
}

// MovR9EAX emits mov r9d, eax: the packed A/carry pair into scratch.
func (a *Asm) MovR9EAX() {
	a.Emit(0x41, 0x89, 0xC1)
}

// ShrR9 emits shr r9d, imm8. 41 C1 /5 ib.
func (a *Asm) ShrR9(n uint8) {
	a.Emit(0x41, 0xC1, 0xE9, n)
}

// AndR9Imm8 emits and r9d, imm8 sign extended. 41 83 /4 ib.
func (a *Asm) AndR9Imm8(v uint8) {
	a.Emit(0x41, 0x83, 0xE1, v)
}

// OrBPR9 emits or ebp, r9d. 44 09 /r.
func (a *Asm) OrBPR9() {
	a.Emit(0x44, 0x09, 0xCD)
}

// MovStackBP emits mov [rdi+rcx], bpl. REX 88 /r with SIB.
func (a *Asm) MovStackBP() {
	a.Emit(0x40, 0x88, 0x2C, 0x0F)
}

// MovIdxBP emits mov [rdi+r9], bpl. REX.X 88 /r with SIB.
func (a *Asm) MovIdxBP() {
	a.Emit(0x42, 0x88, 0x2C, 0x0F)
}

// MovMemBP emits mov [rdi+disp32], bpl. REX 88 /r.
func (a *Asm) MovMemBP(addr uint16) {
	a.Emit(0x40, 0x88, 0xAF)
	a.Emit32(uint32(addr))
}

// ShrBP emits shr ebp, imm8. C1 /5 ib.
func (a *Asm) ShrBP(n uint8) {
	a.Emit(0xC1, 0xED, n)
}

// ShlBP emits shl ebp, imm8. C1 /4 ib.
func (a *Asm) ShlBP(n uint8) {
	a.Emit(0xC1, 0xE5, n)
}

// AndBPImm emits and ebp, imm8 sign extended. 83 /4 ib.
func (a *Asm) AndBPImm(v uint8) {
	a.Emit(0x83, 0xE5, v)
}

// OrR9BP emits or r9d, ebp. 41 09 /r.
func (a *Asm) OrR9BP() {
	a.Emit(0x41, 0x09, 0xE9)
}

// IncBP emits inc bpl. REX FE /0.
func (a *Asm) IncBP() { a.Emit(0x40, 0xFE, 0xC5) }

// DecBP emits dec bpl. REX FE /1.
func (a *Asm) DecBP() { a.Emit(0x40, 0xFE, 0xCD) }

// TestBP emits test bpl, bpl. REX 84 /r.
func (a *Asm) TestBP() { a.Emit(0x40, 0x84, 0xED) }

// TestBPImm emits test bpl, imm8. REX F6 /0 ib.
func (a *Asm) TestBPImm(v uint8) {
	a.Emit(0x40, 0xF6, 0xC5, v)
}

// TestBPAL emits test bpl, al: the BIT instruction's A & M probe. REX 84 /r.
func (a *Asm) TestBPAL() { a.Emit(0x40, 0x84, 0xC5) }

// ShiftBP emits the D0 /n shift group with count 1 on bpl.
func (a *Asm) ShiftBP(op byte) {
	a.Emit(0x40, 0xD0, 0xC0|op<<3|5)
}

// MovzxR9Stack emits movzx r9d, byte [rdi+rcx]: the pull-side address
// fetch. REX.R 0F B6 /r with SIB.
func (a *Asm) MovzxR9Stack() {
	a.Emit(0x44, 0x0F, 0xB6, 0x0C, 0x0F)
}

// IncR9 emits inc r9d. REX.B FF /0.
func (a *Asm) IncR9() {
	a.Emit(0x41, 0xFF, 0xC1)
}

// MovzxR9R9b emits movzx r9d, r9b: masks the effective address to eight
// bits, which is how zero page arithmetic wraps. REX.RB 0F B6 /r.
func (a *Asm) MovzxR9R9b() {
	a.Emit(0x45, 0x0F, 0xB6, 0xC9)
}

// LeaR10ZTimes2 emits lea r10d, [rdx+rdx]: the packed Z/N pair doubled, so
// that the Z byte lands on bit 1 of the assembled status value.
func (a *Asm) LeaR10ZTimes2() {
	a.Emit(0x44, 0x8D, 0x14, 0x12)
}

// AndR10Imm8 emits and r10d, imm8 sign extended. REX.B 83 /4 ib.
func (a *Asm) AndR10Imm8(v uint8) {
	a.Emit(0x41, 0x83, 0xE2, v)
}

// OrBPR10 emits or ebp, r10d. REX.R 09 /r.
func (a *Asm) OrBPR10() {
	a.Emit(0x44, 0x09, 0xD5)
}

// StorePC emits mov word [r13+off], imm16: the guest PC write that precedes
// every possible exit. 66 41 C7 /0 disp8 iw.
func (a *Asm) StorePC(off int8, pc uint16) {
	a.Emit(0x66, 0x41, 0xC7, 0x45, byte(off))
	a.Emit16(pc)
}

// StorePCR9 emits mov word [r13+off], r9w: the dynamic-target variant of
// StorePC. 66 45 89 /r disp8.
func (a *Asm) StorePCR9(off int8) {
	a.Emit(0x66, 0x45, 0x89, 0x4D, byte(off))
}

// SubCountdown emits sub r8, imm8: the cycle charge. 49 83 /5 ib.
func (a *Asm) SubCountdown(cycles uint8) {
	a.Emit(0x49, 0x83, 0xE8, cycles)
}

// TestCountdown emits test r8, r8. 4D 85 /r.
func (a *Asm) TestCountdown() {
	a.Emit(0x4D, 0x85, 0xC0)
}

// JmpStub emits jmp [r12+idx*8]: the transfer to one of the exit stubs.
// REX.B FF /4 with SIB.
func (a *Asm) JmpStub(idx uint8) {
	a.Emit(0x41, 0xFF, 0x64, 0x24, idx*8)
}

// CallStub emits call [r12+idx*8]. The translator uses it to call the stomp
// helper. The trap in uninitialised and invalidated slots has the same
// encoding with the stale stub's index; its pushed return address is how
// that stub knows which slot fired. REX.B FF /2 with SIB.
func (a *Asm) CallStub(idx uint8) {
	a.Emit(0x41, 0xFF, 0x54, 0x24, idx*8)
}

// JccRel8 emits a 2-byte conditional hop over the next n bytes.
func (a *Asm) JccRel8(c Cond, n int8) {
	a.Emit(0x70|byte(c), byte(n))
}

// Jmp emits jmp rel32 to an absolute host address.
func (a *Asm) Jmp(from uintptr, target uintptr) {
	rel := int64(target) - int64(from) - int64(a.Len()) - 5
	a.Emit(0xE9)
	a.Emit32(uint32(int32(rel)))
}

// Nop fills to the end of the slot with single byte no-ops.
func (a *Asm) Nop(n int) {
	for i := 0; i < n; i++ {
		a.Emit(0x90)
	}
}
