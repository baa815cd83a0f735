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

// Package disc is the attachment point for disc images. The image codecs
// and the floppy controller live in an external collaborator; the machine
// only needs the handles: which files sit in which drive, and whether the
// guest may change them.
package disc

import (
	"os"

	"github.com/jetsetilly/gopherbeeb/curated"
	"github.com/jetsetilly/gopherbeeb/logger"
)

// MaxDiscsPerDrive bounds how many images can queue in one drive.
const MaxDiscsPerDrive = 4

// Disc is one attached disc image.
type Disc struct {
	Filename  string
	Data      []byte
	Writeable bool

	// changes write back to the host file when set
	Mutable bool
}

// Drive is a queue of discs in one physical drive.
type Drive struct {
	discs []*Disc
}

// Add loads a disc image file into the drive.
func (d *Drive) Add(filename string, writeable bool, mutable bool) error {
	if len(d.discs) >= MaxDiscsPerDrive {
		return curated.Errorf("disc: too many discs in drive")
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		return curated.Errorf("disc: %v", err)
	}

	d.discs = append(d.discs, &Disc{
		Filename:  filename,
		Data:      b,
		Writeable: writeable,
		Mutable:   mutable,
	})

	logger.Logf(logger.Allow, "disc", "%s: %d bytes", filename, len(b))
	return nil
}

// Current returns the disc in the drive, or nil for an empty drive.
func (d *Drive) Current() *Disc {
	if len(d.discs) == 0 {
		return nil
	}
	return d.discs[0]
}

// Cycle rotates the disc queue, as a user swapping discs would.
func (d *Drive) Cycle() {
	if len(d.discs) > 1 {
		d.discs = append(d.discs[1:], d.discs[0])
	}
}
