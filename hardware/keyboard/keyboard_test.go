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

package keyboard_test

import (
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gopherbeeb/hardware/keyboard"
	"github.com/jetsetilly/gopherbeeb/test"
)

func TestMatrix(t *testing.T) {
	k := keyboard.NewKeyboard()

	test.Equate(t, k.IsAnyKeyPressed(), false)

	k.SetKey(4, 1, true) // A
	test.Equate(t, k.IsKeyPressed(4, 1), true)
	test.Equate(t, k.IsKeyColumnPressed(1), true)
	test.Equate(t, k.IsKeyColumnPressed(2), false)
	test.Equate(t, k.IsAnyKeyPressed(), true)

	// row zero carries the DIP switches and does not count for the column
	// scan
	k.SetKey(4, 1, false)
	k.SetKey(0, 0, true)
	test.Equate(t, k.IsKeyColumnPressed(0), false)
	test.Equate(t, k.IsAnyKeyPressed(), false)

	// out of range scans read as not pressed
	test.Equate(t, k.IsKeyPressed(-1, 200), false)
}

func TestCaptureReplay(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "keys")

	k := keyboard.NewKeyboard()
	test.ExpectedSuccess(t, k.SetCaptureFile(file))

	k.SetTick(100)
	k.SetKey(4, 1, true)
	k.SetTick(200)
	k.SetKey(4, 1, false)

	test.ExpectedSuccess(t, k.EndCapture())

	r := keyboard.NewKeyboard()
	test.ExpectedSuccess(t, r.LoadReplay(file))
	test.Equate(t, r.Replaying(), true)

	r.ApplyReplay(99)
	test.Equate(t, r.IsKeyPressed(4, 1), false)

	r.ApplyReplay(100)
	test.Equate(t, r.IsKeyPressed(4, 1), true)

	r.ApplyReplay(500)
	test.Equate(t, r.IsKeyPressed(4, 1), false)
	test.Equate(t, r.Replaying(), false)
}
