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
	"github.com/jetsetilly/gopherbeeb/hardware/memory"
	"github.com/jetsetilly/gopherbeeb/jit/x64"
)

// Compiler translates straight-line runs of 6502 code into the slot cache.
//
// In accurate mode every instruction charges the countdown and checks it
// afterwards, and every store exits so the dispatcher can reconsider slot
// staleness before the next instruction runs. Otherwise the countdown is
// only checked at control transfers, which every loop must contain, and
// stores run on optimistically.
type Compiler struct {
	cache    *Cache
	mem      []byte
	accurate bool
}

// NewCompiler is the preferred method of initialisation for the Compiler
// type. mem is the flat guest view used for instruction decode.
func NewCompiler(cache *Cache, mem []byte, accurate bool) *Compiler {
	return &Compiler{
		cache:    cache,
		mem:      mem,
		accurate: accurate,
	}
}

// a block stops growing after this many instructions and falls through to
// the next slot, which will trap and compile in its own time.
const maxBlockInstructions = 32

// the boundary below which stores compile to direct host writes. above it
// lies the paged ROM window, the OS ROM and the MMIO hole, all of which go
// through the bus.
const writeDirectTop = memory.SidewaysBase

// CompileBlock translates from pc until a control transfer or the block
// limit. Every translated instruction lands in its own slot; interior
// slots of multi-byte instructions keep their traps, so a jump into the
// middle of an instruction translates that byte stream on its own terms,
// exactly as a 6502 would execute it.
func (cmp *Compiler) CompileBlock(pc uint16) {
	for i := 0; i < maxBlockInstructions; i++ {
		d := definitions[cmp.mem[pc]]
		// the last instruction of a full-length block always checks the
		// countdown, or a code path with no control transfers could run
		// forever
		if cmp.compileOne(pc, d, i == maxBlockInstructions-1) {
			return
		}
		pc += d.mode.length()
	}
}

// compileOne emits a single instruction into its slot. Returns true if the
// block cannot continue past it.
func (cmp *Compiler) compileOne(pc uint16, d *definition, forceCheck bool) bool {
	a := &x64.Asm{}
	slot := cmp.cache.SlotAddr(pc)

	// every possible exit needs the guest PC on record
	a.StorePC(envPC, pc)

	if d == nil {
		// undocumented opcode. the fallback owns the decision of what it
		// means
		a.JmpStub(ExitDelegate)
		cmp.cache.write(pc, a.Code)
		return true
	}

	a.SubCountdown(d.cycles)

	next := pc + d.mode.length()
	op1 := cmp.mem[pc+1]
	addr := uint16(op1) | uint16(cmp.mem[pc+2])<<8

	// emissions set these to take over the instruction ending
	ends := false
	storeExit := false

	switch d.class {
	case opLDA:
		if cmp.load(a, d, op1, addr, x64.AL) {
			break
		}
		a.FlagsZN(x64.AL)
	case opLDX:
		if cmp.load(a, d, op1, addr, x64.BL) {
			break
		}
		a.FlagsZN(x64.BL)
	case opLDY:
		if cmp.load(a, d, op1, addr, x64.BH) {
			break
		}
		a.FlagsZN(x64.BH)

	case opSTA:
		storeExit = cmp.store(a, d, op1, addr, x64.AL)
	case opSTX:
		storeExit = cmp.store(a, d, op1, addr, x64.BL)
	case opSTY:
		storeExit = cmp.store(a, d, op1, addr, x64.BH)

	case opADC:
		cmp.adcSbc(a, d, op1, addr, true)
	case opSBC:
		cmp.adcSbc(a, d, op1, addr, false)

	case opAND:
		cmp.logic(a, d, op1, addr, 0x20, 4)
	case opORA:
		cmp.logic(a, d, op1, addr, 0x08, 1)
	case opEOR:
		cmp.logic(a, d, op1, addr, 0x30, 6)

	case opCMP:
		cmp.compare(a, d, op1, addr, x64.AL)
	case opCPX:
		cmp.compare(a, d, op1, addr, x64.BL)
	case opCPY:
		cmp.compare(a, d, op1, addr, x64.BH)

	case opBIT:
		cmp.bit(a, d, op1, addr)

	case opASL, opLSR, opROL, opROR:
		if d.mode == modeAccumulator {
			cmp.shiftAcc(a, d.class)
		} else {
			storeExit = cmp.rmw(a, d, op1, addr)
		}
	case opINC, opDEC:
		storeExit = cmp.rmw(a, d, op1, addr)

	case opTAX:
		a.MovRegReg(x64.BL, x64.AL)
		a.FlagsZN(x64.BL)
	case opTAY:
		a.MovRegReg(x64.BH, x64.AL)
		a.FlagsZN(x64.BH)
	case opTXA:
		a.MovRegReg(x64.AL, x64.BL)
		a.FlagsZN(x64.AL)
	case opTYA:
		a.MovRegReg(x64.AL, x64.BH)
		a.FlagsZN(x64.AL)
	case opTSX:
		a.MovRegReg(x64.BL, x64.CL)
		a.FlagsZN(x64.BL)
	case opTXS:
		a.MovRegReg(x64.CL, x64.BL)

	case opINX:
		a.IncReg(x64.BL)
		a.FlagsZN(x64.BL)
	case opINY:
		a.IncReg(x64.BH)
		a.FlagsZN(x64.BH)
	case opDEX:
		a.DecReg(x64.BL)
		a.FlagsZN(x64.BL)
	case opDEY:
		a.DecReg(x64.BH)
		a.FlagsZN(x64.BH)

	case opCLC:
		a.MovRegImm(x64.AH, 0)
	case opSEC:
		a.MovRegImm(x64.AH, 1)
	case opCLD:
		a.AndESIImm(0xF7)
	case opSED:
		a.OrESIImm(0x08)
	case opCLV:
		a.AndESIImm(0xBF)

	case opCLI:
		// interrupt masking changed: the dispatcher must sample the line
		// before any more code runs
		a.AndESIImm(0xFB)
		a.StorePC(envPC, next)
		a.JmpStub(ExitCountdown)
		ends = true
	case opSEI:
		a.OrESIImm(0x04)
		a.StorePC(envPC, next)
		a.JmpStub(ExitCountdown)
		ends = true

	case opPHA:
		cmp.stackTopR9(a)
		a.MovStackReg(x64.AL)
		a.DecCL()
		a.CallStub(stubIdxStomp)
	case opPLA:
		a.IncCL()
		a.MovRegStack(x64.AL)
		a.FlagsZN(x64.AL)
	case opPHP:
		// php uses r9 itself, so the stomp address is rebuilt afterwards
		// from the already-decremented stack pointer
		cmp.php(a)
		a.MovzxR9Reg(x64.CL)
		a.AddR9Imm(0x101)
		a.CallStub(stubIdxStomp)

	case opPLP, opRTI, opBRK:
		// flag unpacking and interrupt entry live in the fallback, and all
		// three can change the interrupt mask
		a.JmpStub(ExitDelegate)
		ends = true

	case opJMP:
		cmp.jmp(a, d, addr, slot)
		ends = true
	case opJSR:
		ret := pc + 2
		cmp.stackTopR9(a)
		a.MovStackImm(uint8(ret >> 8))
		a.DecCL()
		a.MovStackImm(uint8(ret))
		a.DecCL()
		a.CallStub(stubIdxStomp)
		a.StorePC(envPC, addr)
		cmp.countdownCheck(a)
		a.Jmp(slot, cmp.cache.SlotAddr(addr))
		ends = true
	case opRTS:
		a.IncCL()
		a.MovzxR9Stack()
		a.IncCL()
		a.MovzxBPStack()
		a.ShlBP(8)
		a.OrR9BP()
		a.IncR9()
		a.AndR9Imm(0xFFFF)
		a.StorePCR9(envPC)
		cmp.countdownCheck(a)
		a.ShlR9Q(SlotShift)
		a.AddR9Cache()
		a.JmpR9()
		ends = true

	case opBCC, opBCS, opBEQ, opBNE, opBMI, opBPL, opBVC, opBVS:
		cmp.branch(a, d.class, pc, op1, slot)
		ends = true

	case opNOP:
		// the honest translation
	}

	if !ends {
		if storeExit {
			a.StorePC(envPC, next)
			a.JmpStub(ExitStore)
		} else if cmp.accurate || forceCheck {
			a.StorePC(envPC, next)
			// the widest translations trade the fallthrough for an
			// unconditional exit rather than overrun the slot
			if a.Len()+15 > SlotWidth-2 {
				a.JmpStub(ExitCountdown)
			} else {
				cmp.countdownCheck(a)
				a.Jmp(slot, cmp.cache.SlotAddr(next))
			}
		} else {
			a.Jmp(slot, cmp.cache.SlotAddr(next))
		}
	}

	cmp.cache.write(pc, a.Code)
	return ends
}

// stackTopR9 leaves the current top-of-stack guest address in r9d, ahead
// of a push and the stomp call that makes pushes safe against code in the
// stack page.
func (cmp *Compiler) stackTopR9(a *x64.Asm) {
	a.MovzxR9Reg(x64.CL)
	a.AddR9Imm(0x100)
}

// countdownCheck emits the late countdown test: exit when the charge has
// gone negative. 10 bytes.
func (cmp *Compiler) countdownCheck(a *x64.Asm) {
	a.TestCountdown()
	a.JccRel8(x64.NotSign, 5)
	a.JmpStub(ExitCountdown)
}

// delegate emits the hop-or-exit pair after a range compare: continue when
// cond holds, otherwise hand the instruction to the dispatcher. 7 bytes.
func (cmp *Compiler) delegate(a *x64.Asm, cond x64.Cond) {
	a.JccRel8(cond, 5)
	a.JmpStub(ExitDelegate)
}

// ea emits the effective address computation for the dynamic modes,
// leaving the address in r9d. The static modes return (addr, true) and
// emit nothing.
func (cmp *Compiler) ea(a *x64.Asm, m addressing, op1 uint8, addr uint16) (uint16, bool) {
	switch m {
	case modeZeroPage:
		return uint16(op1), true
	case modeAbsolute:
		return addr, true

	case modeZeroPageX:
		a.MovR9Imm(uint32(op1))
		a.MovzxBPReg(x64.BL)
		a.AddR9BP()
		a.AndR9Imm(0xFF)
	case modeZeroPageY:
		a.MovR9Imm(uint32(op1))
		a.MovzxBPReg(x64.BH)
		a.AddR9BP()
		a.AndR9Imm(0xFF)

	case modeAbsoluteX:
		// computed with a 16-bit add so the wrap is bit exact
		a.MovR9Imm(uint32(addr))
		a.MovzxBPReg(x64.BL)
		a.AddR9BP()
		a.AndR9Imm(0xFFFF)
	case modeAbsoluteY:
		a.MovR9Imm(uint32(addr))
		a.MovzxBPReg(x64.BH)
		a.AddR9BP()
		a.AndR9Imm(0xFFFF)

	case modeIndirectX:
		// the pointer fetch wraps within the zero page, so the high byte
		// is read through its own masked address
		a.MovR9Imm(uint32(op1))
		a.MovzxBPReg(x64.BL)
		a.AddR9BP()
		a.MovzxR9R9b()
		a.MovzxBPIdx()
		a.IncR9()
		a.MovzxR9R9b()
		a.MovzxR9Idx()
		a.ShlR9(8)
		a.OrR9BP()
	case modeIndirectY:
		if op1 == 0xFF {
			// the pointer high byte wraps to the start of the zero page
			a.MovzxR9Mem(0x00FF)
			a.MovzxBPMem(0x0000)
			a.ShlBP(8)
			a.OrR9BP()
		} else {
			a.MovzxR9Mem16(uint16(op1))
		}
		a.MovzxBPReg(x64.BH)
		a.AddR9BP()
		a.AndR9Imm(0xFFFF)
	}
	return 0, false
}

// load emits a read into a register. Returns true if the whole instruction
// was delegated (static MMIO address).
func (cmp *Compiler) load(a *x64.Asm, d *definition, op1 uint8, addr uint16, r x64.Reg8) bool {
	if d.mode == modeImmediate {
		a.MovRegImm(r, op1)
		return false
	}
	if ea, static := cmp.ea(a, d.mode, op1, addr); static {
		if memory.IsMMIO(ea) {
			a.JmpStub(ExitDelegate)
			return true
		}
		a.MovRegMem(r, ea)
		return false
	}
	// a dynamic address can land anywhere. reads at or above the MMIO base
	// go through the bus; the vector page above it is rarely read as data
	// and the fallback gets those right too
	a.CmpR9Imm(uint32(memory.MMIOBase))
	cmp.delegate(a, x64.Carry)
	a.MovRegIdx(r)
	return false
}

// operand emits the read half of a read-modify ALU op: either returns an
// immediate/static disposition or leaves the value reachable at [rdi+r9].
// kind: 0 immediate, 1 static, 2 dynamic, 3 delegated.
func (cmp *Compiler) operand(a *x64.Asm, d *definition, op1 uint8, addr uint16) (uint16, int) {
	if d.mode == modeImmediate {
		return 0, 0
	}
	if ea, static := cmp.ea(a, d.mode, op1, addr); static {
		if memory.IsMMIO(ea) {
			a.JmpStub(ExitDelegate)
			return 0, 3
		}
		return ea, 1
	}
	a.CmpR9Imm(uint32(memory.MMIOBase))
	cmp.delegate(a, x64.Carry)
	return 0, 2
}

// store emits a write of a register to memory, including the
// self-invalidation of the written slot. Returns true if the instruction
// must end with a store exit (accurate mode, direct store).
func (cmp *Compiler) store(a *x64.Asm, d *definition, op1 uint8, addr uint16, r x64.Reg8) bool {
	if ea, static := cmp.ea(a, d.mode, op1, addr); static {
		if ea >= writeDirectTop {
			a.JmpStub(ExitDelegate)
			return false
		}
		a.MovMemReg(ea, r)
		cmp.trapWriteStatic(a, ea)
		return cmp.accurate
	}
	a.CmpR9Imm(uint32(writeDirectTop))
	cmp.delegate(a, x64.Carry)
	a.MovIdxReg(r)
	cmp.trapWriteDynamic(a)
	return cmp.accurate
}

// trapWriteStatic calls the stomp helper for a store to a known guest
// address. The helper traps the slot of the written byte and of the two
// below it, which is what keeps the cache coherent: the next arrival at
// any translation containing the byte compiles fresh code.
func (cmp *Compiler) trapWriteStatic(a *x64.Asm, ea uint16) {
	a.MovR9Imm(uint32(ea))
	a.CallStub(stubIdxStomp)
}

// trapWriteDynamic does the same for the address already in r9d.
func (cmp *Compiler) trapWriteDynamic(a *x64.Asm) {
	a.CallStub(stubIdxStomp)
}

// adcSbc emits add/subtract with carry, with the decimal mode check in
// front: decimal arithmetic is the fallback's problem.
func (cmp *Compiler) adcSbc(a *x64.Asm, d *definition, op1 uint8, addr uint16, add bool) {
	a.TestSILImm(0x08)
	cmp.delegate(a, x64.Zero)

	ea, kind := cmp.operand(a, d, op1, addr)
	if kind == 3 {
		return
	}

	if add {
		// get the carry byte into CF, then let the host adc do the work
		a.ShiftReg(5, x64.AH)
		switch kind {
		case 0:
			a.AluRegImm(2, x64.AL, op1)
		case 1:
			a.AluRegMem(0x10, x64.AL, ea)
		case 2:
			a.AluRegIdx(0x10, x64.AL)
		}
		a.Setcc(x64.Carry, x64.AH)
	} else {
		// 6502 subtract borrows on carry clear: cmp ah,1 inverts the carry
		// byte into CF for the host sbb
		a.AluRegImm(7, x64.AH, 1)
		switch kind {
		case 0:
			a.AluRegImm(3, x64.AL, op1)
		case 1:
			a.AluRegMem(0x18, x64.AL, ea)
		case 2:
			a.AluRegIdx(0x18, x64.AL)
		}
		a.Setcc(x64.NotCarry, x64.AH)
	}

	// the host overflow flag is the 6502 V flag for both directions
	a.SetccR9B(x64.Overflow)
	a.ShlR9(6)
	a.AndESIImm(0xBF)
	a.OrESIR9()

	a.FlagsZN(x64.AL)
}

// logic emits AND/ORA/EOR. aluMem is the memory-form opcode base, aluImm
// the 80 /n group number.
func (cmp *Compiler) logic(a *x64.Asm, d *definition, op1 uint8, addr uint16, aluMem byte, aluImm byte) {
	ea, kind := cmp.operand(a, d, op1, addr)
	switch kind {
	case 0:
		a.AluRegImm(aluImm, x64.AL, op1)
	case 1:
		a.AluRegMem(aluMem, x64.AL, ea)
	case 2:
		a.AluRegIdx(aluMem, x64.AL)
	case 3:
		return
	}
	a.FlagsZN(x64.AL)
}

// compare emits CMP/CPX/CPY: the 6502 carry is the inverse of the host
// borrow, and Z/N fall straight out of the host compare.
func (cmp *Compiler) compare(a *x64.Asm, d *definition, op1 uint8, addr uint16, r x64.Reg8) {
	ea, kind := cmp.operand(a, d, op1, addr)
	switch kind {
	case 0:
		a.AluRegImm(7, r, op1)
	case 1:
		a.AluRegMem(0x38, r, ea)
	case 2:
		a.AluRegIdx(0x38, r)
	case 3:
		return
	}
	a.Setcc(x64.NotCarry, x64.AH)
	a.Setcc(x64.Zero, x64.DL)
	a.Setcc(x64.Sign, x64.DH)
}

// bit emits BIT: Z from A & M, N and V copied out of the operand.
func (cmp *Compiler) bit(a *x64.Asm, d *definition, op1 uint8, addr uint16) {
	ea, kind := cmp.operand(a, d, op1, addr)
	switch kind {
	case 1:
		a.MovzxBPMem(ea)
	case 2:
		a.MovzxBPIdx()
	case 3:
		return
	}
	a.TestBPAL()
	a.Setcc(x64.Zero, x64.DL)
	a.TestBPImm(0x80)
	a.Setcc(x64.NotZero, x64.DH)
	a.TestBPImm(0x40)
	a.SetccR9B(x64.NotZero)
	a.ShlR9(6)
	a.AndESIImm(0xBF)
	a.OrESIR9()
}

// shiftAcc emits the accumulator form of the shift and rotate group.
func (cmp *Compiler) shiftAcc(a *x64.Asm, c class) {
	switch c {
	case opASL:
		a.ShiftReg(4, x64.AL)
	case opLSR:
		a.ShiftReg(5, x64.AL)
	case opROL:
		a.ShiftReg(5, x64.AH)
		a.ShiftReg(2, x64.AL)
	case opROR:
		a.ShiftReg(5, x64.AH)
		a.ShiftReg(3, x64.AL)
	}
	a.Setcc(x64.Carry, x64.AH)
	a.FlagsZN(x64.AL)
}

// rmw emits the read-modify-write group against memory. Returns true when
// the instruction needs a store exit.
func (cmp *Compiler) rmw(a *x64.Asm, d *definition, op1 uint8, addr uint16) bool {
	ea, static := cmp.ea(a, d.mode, op1, addr)
	if static {
		if ea >= writeDirectTop {
			a.JmpStub(ExitDelegate)
			return false
		}
		a.MovzxBPMem(ea)
	} else {
		a.CmpR9Imm(uint32(writeDirectTop))
		cmp.delegate(a, x64.Carry)
		a.MovzxBPIdx()
	}

	switch d.class {
	case opASL:
		a.ShiftBP(4)
		a.Setcc(x64.Carry, x64.AH)
	case opLSR:
		a.ShiftBP(5)
		a.Setcc(x64.Carry, x64.AH)
	case opROL:
		a.ShiftReg(5, x64.AH)
		a.ShiftBP(2)
		a.Setcc(x64.Carry, x64.AH)
	case opROR:
		a.ShiftReg(5, x64.AH)
		a.ShiftBP(3)
		a.Setcc(x64.Carry, x64.AH)
	case opINC:
		a.IncBP()
	case opDEC:
		a.DecBP()
	}

	if static {
		a.MovMemBP(ea)
		cmp.trapWriteStatic(a, ea)
	} else {
		a.MovIdxBP()
		cmp.trapWriteDynamic(a)
	}

	a.TestBP()
	a.Setcc(x64.Zero, x64.DL)
	a.Setcc(x64.Sign, x64.DH)

	return cmp.accurate
}

// php emits the serialisation of the split flag representation back into a
// single P byte, with the break bit set as PHP always pushes it.
func (cmp *Compiler) php(a *x64.Asm) {
	a.MovBPESI()
	a.OrBPImm(0x10)

	// the N byte lands on bit 7: rdx packs Z|N<<8 and both are strictly 0
	// or 1, so a single shift lines N up and drops nothing
	a.MovR9EDX()
	a.ShrR9(1)
	a.OrBPR9()

	// Z doubled lands on bit 1
	a.LeaR10ZTimes2()
	a.AndR10Imm8(2)
	a.OrBPR10()

	// carry from the second byte of rax onto bit 0
	a.MovR9EAX()
	a.ShrR9(8)
	a.OrBPR9()

	a.MovStackBP()
	a.DecCL()
}

// jmp emits both forms of JMP.
func (cmp *Compiler) jmp(a *x64.Asm, d *definition, addr uint16, slot uintptr) {
	if d.mode == modeAbsolute {
		a.StorePC(envPC, addr)
		cmp.countdownCheck(a)
		a.Jmp(slot, cmp.cache.SlotAddr(addr))
		return
	}

	// indirect. a pointer inside the MMIO window has read side effects and
	// goes through the bus
	if memory.IsMMIO(addr) || memory.IsMMIO(addr+1) {
		a.JmpStub(ExitDelegate)
		return
	}

	// the 6502's page wrap quirk: the high byte of the pointer comes from
	// the start of the same page
	if uint8(addr) == 0xFF {
		a.MovzxR9Mem(addr)
		a.MovzxBPMem(addr & 0xFF00)
		a.ShlBP(8)
		a.OrR9BP()
	} else {
		a.MovzxR9Mem16(addr)
	}
	a.StorePCR9(envPC)
	cmp.countdownCheck(a)
	a.ShlR9Q(SlotShift)
	a.AddR9Cache()
	a.JmpR9()
}

// branch emits the conditional branches. Both arms carry their own PC
// store and countdown check; the not-taken arm falls through to the next
// slot, the taken arm jumps to the slot the signed guest delta names.
func (cmp *Compiler) branch(a *x64.Asm, c class, pc uint16, op1 uint8, slot uintptr) {
	target := pc + 2 + uint16(int16(int8(op1)))
	next := pc + 2

	var taken x64.Cond
	switch c {
	case opBEQ:
		a.TestReg(x64.DL)
		taken = x64.NotZero
	case opBNE:
		a.TestReg(x64.DL)
		taken = x64.Zero
	case opBCS:
		a.TestReg(x64.AH)
		taken = x64.NotZero
	case opBCC:
		a.TestReg(x64.AH)
		taken = x64.Zero
	case opBMI:
		a.TestReg(x64.DH)
		taken = x64.NotZero
	case opBPL:
		a.TestReg(x64.DH)
		taken = x64.Zero
	case opBVS:
		a.TestSILImm(0x40)
		taken = x64.NotZero
	case opBVC:
		a.TestSILImm(0x40)
		taken = x64.Zero
	}

	// hop over the taken arm when the condition fails. the arm is the PC
	// store (7), the countdown check (10) and the jump (5)
	inverse := x64.Cond(byte(taken) ^ 1)
	a.JccRel8(inverse, 22)

	a.StorePC(envPC, target)
	cmp.countdownCheck(a)
	a.Jmp(slot, cmp.cache.SlotAddr(target))

	a.StorePC(envPC, next)
	cmp.countdownCheck(a)
	a.Jmp(slot, cmp.cache.SlotAddr(next))
}
