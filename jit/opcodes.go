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

// The addressing modes of the 6502.
type addressing int

// Addressing mode values.
const (
	modeImplied addressing = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndirectX
	modeIndirectY
	modeRelative
)

// length in guest bytes of an instruction using the mode.
func (m addressing) length() uint16 {
	switch m {
	case modeImplied, modeAccumulator:
		return 1
	case modeAbsolute, modeAbsoluteX, modeAbsoluteY, modeIndirect:
		return 3
	}
	return 2
}

// The operation classes of the documented 6502 instruction set.
type class int

// Operation class values.
const (
	opADC class = iota
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opJMP
	opJSR
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opROL
	opROR
	opRTI
	opRTS
	opSBC
	opSEC
	opSED
	opSEI
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA
)

// definition describes one opcode: what it does, how it addresses and its
// static cycle count. Page crossing penalties are not modelled; the cycle
// counts are the base figures.
type definition struct {
	class  class
	mode   addressing
	cycles uint8
}

// definitions is the decode table. A nil entry is an undocumented opcode:
// translation plants a delegation trap for it and the fallback decides
// whether that is fatal.
var definitions [256]*definition

func def(op uint8, c class, m addressing, cycles uint8) {
	definitions[op] = &definition{class: c, mode: m, cycles: cycles}
}

func init() {
	def(0x00, opBRK, modeImplied, 7)
	def(0x01, opORA, modeIndirectX, 6)
	def(0x05, opORA, modeZeroPage, 3)
	def(0x06, opASL, modeZeroPage, 5)
	def(0x08, opPHP, modeImplied, 3)
	def(0x09, opORA, modeImmediate, 2)
	def(0x0A, opASL, modeAccumulator, 2)
	def(0x0D, opORA, modeAbsolute, 4)
	def(0x0E, opASL, modeAbsolute, 6)
	def(0x10, opBPL, modeRelative, 2)
	def(0x11, opORA, modeIndirectY, 5)
	def(0x15, opORA, modeZeroPageX, 4)
	def(0x16, opASL, modeZeroPageX, 6)
	def(0x18, opCLC, modeImplied, 2)
	def(0x19, opORA, modeAbsoluteY, 4)
	def(0x1D, opORA, modeAbsoluteX, 4)
	def(0x1E, opASL, modeAbsoluteX, 7)

	def(0x20, opJSR, modeAbsolute, 6)
	def(0x21, opAND, modeIndirectX, 6)
	def(0x24, opBIT, modeZeroPage, 3)
	def(0x25, opAND, modeZeroPage, 3)
	def(0x26, opROL, modeZeroPage, 5)
	def(0x28, opPLP, modeImplied, 4)
	def(0x29, opAND, modeImmediate, 2)
	def(0x2A, opROL, modeAccumulator, 2)
	def(0x2C, opBIT, modeAbsolute, 4)
	def(0x2D, opAND, modeAbsolute, 4)
	def(0x2E, opROL, modeAbsolute, 6)
	def(0x30, opBMI, modeRelative, 2)
	def(0x31, opAND, modeIndirectY, 5)
	def(0x35, opAND, modeZeroPageX, 4)
	def(0x36, opROL, modeZeroPageX, 6)
	def(0x38, opSEC, modeImplied, 2)
	def(0x39, opAND, modeAbsoluteY, 4)
	def(0x3D, opAND, modeAbsoluteX, 4)
	def(0x3E, opROL, modeAbsoluteX, 7)

	def(0x40, opRTI, modeImplied, 6)
	def(0x41, opEOR, modeIndirectX, 6)
	def(0x45, opEOR, modeZeroPage, 3)
	def(0x46, opLSR, modeZeroPage, 5)
	def(0x48, opPHA, modeImplied, 3)
	def(0x49, opEOR, modeImmediate, 2)
	def(0x4A, opLSR, modeAccumulator, 2)
	def(0x4C, opJMP, modeAbsolute, 3)
	def(0x4D, opEOR, modeAbsolute, 4)
	def(0x4E, opLSR, modeAbsolute, 6)
	def(0x50, opBVC, modeRelative, 2)
	def(0x51, opEOR, modeIndirectY, 5)
	def(0x55, opEOR, modeZeroPageX, 4)
	def(0x56, opLSR, modeZeroPageX, 6)
	def(0x58, opCLI, modeImplied, 2)
	def(0x59, opEOR, modeAbsoluteY, 4)
	def(0x5D, opEOR, modeAbsoluteX, 4)
	def(0x5E, opLSR, modeAbsoluteX, 7)

	def(0x60, opRTS, modeImplied, 6)
	def(0x61, opADC, modeIndirectX, 6)
	def(0x65, opADC, modeZeroPage, 3)
	def(0x66, opROR, modeZeroPage, 5)
	def(0x68, opPLA, modeImplied, 4)
	def(0x69, opADC, modeImmediate, 2)
	def(0x6A, opROR, modeAccumulator, 2)
	def(0x6C, opJMP, modeIndirect, 5)
	def(0x6D, opADC, modeAbsolute, 4)
	def(0x6E, opROR, modeAbsolute, 6)
	def(0x70, opBVS, modeRelative, 2)
	def(0x71, opADC, modeIndirectY, 5)
	def(0x75, opADC, modeZeroPageX, 4)
	def(0x76, opROR, modeZeroPageX, 6)
	def(0x78, opSEI, modeImplied, 2)
	def(0x79, opADC, modeAbsoluteY, 4)
	def(0x7D, opADC, modeAbsoluteX, 4)
	def(0x7E, opROR, modeAbsoluteX, 7)

	def(0x81, opSTA, modeIndirectX, 6)
	def(0x84, opSTY, modeZeroPage, 3)
	def(0x85, opSTA, modeZeroPage, 3)
	def(0x86, opSTX, modeZeroPage, 3)
	def(0x88, opDEY, modeImplied, 2)
	def(0x8A, opTXA, modeImplied, 2)
	def(0x8C, opSTY, modeAbsolute, 4)
	def(0x8D, opSTA, modeAbsolute, 4)
	def(0x8E, opSTX, modeAbsolute, 4)
	def(0x90, opBCC, modeRelative, 2)
	def(0x91, opSTA, modeIndirectY, 6)
	def(0x94, opSTY, modeZeroPageX, 4)
	def(0x95, opSTA, modeZeroPageX, 4)
	def(0x96, opSTX, modeZeroPageY, 4)
	def(0x98, opTYA, modeImplied, 2)
	def(0x99, opSTA, modeAbsoluteY, 5)
	def(0x9A, opTXS, modeImplied, 2)
	def(0x9D, opSTA, modeAbsoluteX, 5)

	def(0xA0, opLDY, modeImmediate, 2)
	def(0xA1, opLDA, modeIndirectX, 6)
	def(0xA2, opLDX, modeImmediate, 2)
	def(0xA4, opLDY, modeZeroPage, 3)
	def(0xA5, opLDA, modeZeroPage, 3)
	def(0xA6, opLDX, modeZeroPage, 3)
	def(0xA8, opTAY, modeImplied, 2)
	def(0xA9, opLDA, modeImmediate, 2)
	def(0xAA, opTAX, modeImplied, 2)
	def(0xAC, opLDY, modeAbsolute, 4)
	def(0xAD, opLDA, modeAbsolute, 4)
	def(0xAE, opLDX, modeAbsolute, 4)
	def(0xB0, opBCS, modeRelative, 2)
	def(0xB1, opLDA, modeIndirectY, 5)
	def(0xB4, opLDY, modeZeroPageX, 4)
	def(0xB5, opLDA, modeZeroPageX, 4)
	def(0xB6, opLDX, modeZeroPageY, 4)
	def(0xB8, opCLV, modeImplied, 2)
	def(0xB9, opLDA, modeAbsoluteY, 4)
	def(0xBA, opTSX, modeImplied, 2)
	def(0xBC, opLDY, modeAbsoluteX, 4)
	def(0xBD, opLDA, modeAbsoluteX, 4)
	def(0xBE, opLDX, modeAbsoluteY, 4)

	def(0xC0, opCPY, modeImmediate, 2)
	def(0xC1, opCMP, modeIndirectX, 6)
	def(0xC4, opCPY, modeZeroPage, 3)
	def(0xC5, opCMP, modeZeroPage, 3)
	def(0xC6, opDEC, modeZeroPage, 5)
	def(0xC8, opINY, modeImplied, 2)
	def(0xC9, opCMP, modeImmediate, 2)
	def(0xCA, opDEX, modeImplied, 2)
	def(0xCC, opCPY, modeAbsolute, 4)
	def(0xCD, opCMP, modeAbsolute, 4)
	def(0xCE, opDEC, modeAbsolute, 6)
	def(0xD0, opBNE, modeRelative, 2)
	def(0xD1, opCMP, modeIndirectY, 5)
	def(0xD5, opCMP, modeZeroPageX, 4)
	def(0xD6, opDEC, modeZeroPageX, 6)
	def(0xD8, opCLD, modeImplied, 2)
	def(0xD9, opCMP, modeAbsoluteY, 4)
	def(0xDD, opCMP, modeAbsoluteX, 4)
	def(0xDE, opDEC, modeAbsoluteX, 7)

	def(0xE0, opCPX, modeImmediate, 2)
	def(0xE1, opSBC, modeIndirectX, 6)
	def(0xE4, opCPX, modeZeroPage, 3)
	def(0xE5, opSBC, modeZeroPage, 3)
	def(0xE6, opINC, modeZeroPage, 5)
	def(0xE8, opINX, modeImplied, 2)
	def(0xE9, opSBC, modeImmediate, 2)
	def(0xEA, opNOP, modeImplied, 2)
	def(0xEC, opCPX, modeAbsolute, 4)
	def(0xED, opSBC, modeAbsolute, 4)
	def(0xEE, opINC, modeAbsolute, 6)
	def(0xF0, opBEQ, modeRelative, 2)
	def(0xF1, opSBC, modeIndirectY, 5)
	def(0xF5, opSBC, modeZeroPageX, 4)
	def(0xF6, opINC, modeZeroPageX, 6)
	def(0xF8, opSED, modeImplied, 2)
	def(0xF9, opSBC, modeAbsoluteY, 4)
	def(0xFD, opSBC, modeAbsoluteX, 4)
	def(0xFE, opINC, modeAbsoluteX, 7)
}
