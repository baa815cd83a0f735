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

package keyboard

import (
	"bufio"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/jetsetilly/gopherbeeb/curated"
	"github.com/jetsetilly/gopherbeeb/logger"
)

// The dimensions of the keyboard matrix. The BBC scans ten columns of
// eight rows; the grid is sized generously so that out of range scans read
// as not pressed.
const (
	NumRows = 16
	NumCols = 16
)

// Keyboard is the key matrix shared between the UI thread and the
// emulation thread. Cells are single bytes written by the UI thread, and by
// ApplyReplay on the emulation thread while a replay runs, and read without
// locks by the emulation thread; a torn read of a byte is
// not possible and a late observation of a keypress is indistinguishable
// from slow fingers.
type Keyboard struct {
	matrix [NumRows][NumCols]byte

	// the emulation thread publishes the wheel tick here once per frame so
	// that captured key events carry a usable timestamp
	tick uint64

	// capture and replay of key events, timestamped by wheel tick
	captureFile *os.File
	replay      []replayEvent
	replayIdx   int
}

type replayEvent struct {
	tick uint64
	row  int
	col  int
	down bool
}

// NewKeyboard is the preferred method of initialisation for the Keyboard
// type.
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// SetKey updates a cell of the matrix and records the transition if
// capture is enabled. Called by the UI thread, and by ApplyReplay on the
// emulation thread.
func (k *Keyboard) SetKey(row, col int, down bool) {
	if row < 0 || row >= NumRows || col < 0 || col >= NumCols {
		return
	}
	if down {
		k.matrix[row][col] = 1
	} else {
		k.matrix[row][col] = 0
	}

	if k.captureFile != nil {
		d := 0
		if down {
			d = 1
		}
		fmt.Fprintf(k.captureFile, "%d %d %d %d\n", atomic.LoadUint64(&k.tick), row, col, d)
	}
}

// SetTick publishes the current wheel tick for capture timestamps.
// Emulation thread only; frame granularity is plenty for replay.
func (k *Keyboard) SetTick(tick uint64) {
	atomic.StoreUint64(&k.tick, tick)
}

// IsKeyPressed returns whether the key at row/col is down.
func (k *Keyboard) IsKeyPressed(row, col int) bool {
	if row < 0 || row >= NumRows || col < 0 || col >= NumCols {
		return false
	}
	return k.matrix[row][col] != 0
}

// IsKeyColumnPressed returns whether any key in the column is down. Rows 0
// is excluded: on the real matrix row zero carries the DIP switches, which
// do not cause interrupts.
func (k *Keyboard) IsKeyColumnPressed(col int) bool {
	if col < 0 || col >= NumCols {
		return false
	}
	for row := 1; row < NumRows; row++ {
		if k.matrix[row][col] != 0 {
			return true
		}
	}
	return false
}

// IsAnyKeyPressed returns whether any key is down. Row 0 is excluded, as it
// is for IsKeyColumnPressed.
func (k *Keyboard) IsAnyKeyPressed() bool {
	for row := 1; row < NumRows; row++ {
		for col := 0; col < NumCols; col++ {
			if k.matrix[row][col] != 0 {
				return true
			}
		}
	}
	return false
}

// SetCaptureFile starts recording key events to the named file.
func (k *Keyboard) SetCaptureFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return curated.Errorf("keyboard: %v", err)
	}
	k.captureFile = f
	logger.Logf(logger.Allow, "keyboard", "capturing to %s", filename)
	return nil
}

// EndCapture closes the capture file.
func (k *Keyboard) EndCapture() error {
	if k.captureFile == nil {
		return nil
	}
	err := k.captureFile.Close()
	k.captureFile = nil
	if err != nil {
		return curated.Errorf("keyboard: %v", err)
	}
	return nil
}

// LoadReplay reads a capture file for replay.
func (k *Keyboard) LoadReplay(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return curated.Errorf("keyboard: %v", err)
	}
	defer f.Close()

	k.replay = k.replay[:0]
	k.replayIdx = 0

	s := bufio.NewScanner(f)
	for s.Scan() {
		var ev replayEvent
		var d int
		if _, err := fmt.Sscanf(s.Text(), "%d %d %d %d", &ev.tick, &ev.row, &ev.col, &d); err != nil {
			return curated.Errorf("keyboard: replay: %v", err)
		}
		ev.down = d != 0
		k.replay = append(k.replay, ev)
	}
	if err := s.Err(); err != nil {
		return curated.Errorf("keyboard: replay: %v", err)
	}

	logger.Logf(logger.Allow, "keyboard", "replaying %d events from %s", len(k.replay), filename)
	return nil
}

// Replaying returns whether a replay is loaded and not yet exhausted.
func (k *Keyboard) Replaying() bool {
	return k.replayIdx < len(k.replay)
}

// ApplyReplay applies every replay event due at or before the tick.
// Emulation thread only.
func (k *Keyboard) ApplyReplay(tick uint64) {
	for k.replayIdx < len(k.replay) && k.replay[k.replayIdx].tick <= tick {
		ev := k.replay[k.replayIdx]
		k.SetKey(ev.row, ev.col, ev.down)
		k.replayIdx++
	}
}
