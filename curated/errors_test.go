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

package curated_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/gopherbeeb/curated"
	"github.com/jetsetilly/gopherbeeb/test"
)

func TestIs(t *testing.T) {
	e := curated.Errorf("timer: %v", "out of range")
	test.ExpectedSuccess(t, curated.IsAny(e))
	test.ExpectedSuccess(t, curated.Is(e, "timer: %v"))
	test.ExpectedFailure(t, curated.Is(e, "via: %v"))

	p := errors.New("plain error")
	test.ExpectedFailure(t, curated.IsAny(p))
	test.ExpectedFailure(t, curated.Is(p, "timer: %v"))
}

func TestHas(t *testing.T) {
	e := curated.Errorf("timer: %v", "out of range")
	f := curated.Errorf("bbc: %v", e)

	test.ExpectedSuccess(t, curated.Has(f, "bbc: %v"))
	test.ExpectedSuccess(t, curated.Has(f, "timer: %v"))
	test.ExpectedFailure(t, curated.Is(f, "timer: %v"))
}

func TestNormalisation(t *testing.T) {
	// duplicate adjacent message parts should be removed
	e := curated.Errorf("via: %v", curated.Errorf("via: %v", "bad register"))
	test.Equate(t, e.Error(), "via: bad register")
}
