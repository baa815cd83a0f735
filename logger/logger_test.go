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

package logger_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/gopherbeeb/logger"
	"github.com/jetsetilly/gopherbeeb/test"
)

func TestRepeats(t *testing.T) {
	logger.Clear()
	logger.Log(logger.Allow, "via", "timer1 underflow")
	logger.Log(logger.Allow, "via", "timer1 underflow")
	logger.Log(logger.Allow, "via", "timer1 underflow")

	s := &strings.Builder{}
	logger.Write(s)
	test.Equate(t, s.String(), "via: timer1 underflow (repeat x3)\n")
}

func TestTail(t *testing.T) {
	logger.Clear()
	logger.Log(logger.Allow, "jit", "cache created")
	logger.Log(logger.Allow, "bbc", "reset")
	logger.Log(logger.Allow, "via", "IER write")

	s := &strings.Builder{}
	logger.Tail(s, 2)
	test.Equate(t, s.String(), "bbc: reset\nvia: IER write\n")
}
