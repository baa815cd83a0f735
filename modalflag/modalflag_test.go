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

package modalflag_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/gopherbeeb/modalflag"
	"github.com/jetsetilly/gopherbeeb/test"
)

func TestDefaultSubMode(t *testing.T) {
	md := &modalflag.Modes{Output: &strings.Builder{}}
	md.NewArgs([]string{})
	md.AddSubModes("RUN", "VERSION")

	r, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(r), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "RUN")
}

func TestNamedSubMode(t *testing.T) {
	md := &modalflag.Modes{Output: &strings.Builder{}}
	md.NewArgs([]string{"version"})
	md.AddSubModes("RUN", "VERSION")

	_, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, md.Mode(), "VERSION")
}

func TestModeFlags(t *testing.T) {
	md := &modalflag.Modes{Output: &strings.Builder{}}
	md.NewArgs([]string{"run", "-headless", "-cycles", "100"})
	md.AddSubModes("RUN")

	_, err := md.Parse()
	test.ExpectedSuccess(t, err)

	md.NewMode()
	headless := md.AddBool("headless", false, "")
	cycles := md.AddUint64("cycles", 0, "")

	_, err = md.Parse()
	test.ExpectedSuccess(t, err)

	test.Equate(t, *headless, true)
	test.Equate(t, *cycles, uint64(100))
	test.Equate(t, md.Path(), "RUN")
}

func TestUnknownFlag(t *testing.T) {
	md := &modalflag.Modes{Output: &strings.Builder{}}
	md.NewArgs([]string{"-no-such-flag"})

	r, _ := md.Parse()
	test.Equate(t, int(r), int(modalflag.ParseError))
}
