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

// Package clocks defines the constant values that describe the clock tree of
// the BBC Micro. The 6502 runs at 2MHz and the two 6522 VIAs at 1MHz. The
// timing wheel ticks at the CPU rate, which is why VIA timer values are
// stored pre-doubled in the wheel.
//
// The SN76489 sound chip is clocked at 4MHz but divides everything by 16
// internally. The sound package deals with that.
package clocks

const (
	// CPU is the tick rate of the 6502 and of the timing wheel.
	CPU = 2000000

	// VIA is the tick rate of the two 6522 VIAs.
	VIA = 1000000

	// Sound is the clock supplied to the SN76489.
	Sound = 4000000
)

// FrameRate is the nominal PAL field rate of the machine. The video timing
// posts a vsync at this rate.
const FrameRate = 50
