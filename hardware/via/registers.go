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

package via

// The sixteen registers of the 6522, by index. ORAnh is the handshake
// suppressing alias of ORA.
const (
	ORB = iota
	ORA
	DDRB
	DDRA
	T1CL
	T1CH
	T1LL
	T1LH
	T2CL
	T2CH
	SR
	ACR
	PCR
	IFR
	IER
	ORAnh
)

// RegisterLabels is the canonical register names, by index.
var RegisterLabels = []string{
	"ORB", "ORA", "DDRB", "DDRA",
	"T1CL", "T1CH", "T1LL", "T1LH",
	"T2CL", "T2CH", "SR", "ACR",
	"PCR", "IFR", "IER", "ORAnh",
}

// The interrupt bits of the IFR and IER registers. Bit 7 of the IFR is the
// read-only aggregate.
const (
	IntCA2    = 0x01
	IntCA1    = 0x02
	IntSR     = 0x04
	IntCB2    = 0x08
	IntCB1    = 0x10
	IntTimer2 = 0x20
	IntTimer1 = 0x40
)
