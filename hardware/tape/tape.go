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

// Package tape is the attachment point for cassette images. Structured
// image formats (UEF, CSW) are decoded by an external collaborator; what
// this package does handle is sampled cassettes: WAV or MP3 recordings of
// real tapes, decoded to a mono PCM stream that the collaborator turns
// into bits.
package tape

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/gopherbeeb/curated"
	"github.com/jetsetilly/gopherbeeb/logger"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Tape is one attached cassette.
type Tape struct {
	Filename string

	// PCM is the mono sample stream for sampled cassettes; nil for
	// structured image formats, which keep their raw bytes in Image.
	PCM        []float32
	SampleRate float64

	Image []byte

	// the motor relay, driven by the serial ULA
	Motor bool
}

// Load attaches a cassette image file, decoding sampled formats to PCM.
func Load(filename string) (*Tape, error) {
	t := &Tape{Filename: filename}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		if err := t.loadWAV(filename); err != nil {
			return nil, err
		}
	case ".mp3":
		if err := t.loadMP3(filename); err != nil {
			return nil, err
		}
	default:
		b, err := os.ReadFile(filename)
		if err != nil {
			return nil, curated.Errorf("tape: %v", err)
		}
		t.Image = b
		logger.Logf(logger.Allow, "tape", "%s: %d byte image", filename, len(b))
	}

	return t, nil
}

func (t *Tape) loadWAV(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return curated.Errorf("tape: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if dec == nil {
		return curated.Errorf("tape: wav: error decoding")
	}
	if !dec.IsValidFile() {
		return curated.Errorf("tape: wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return curated.Errorf("tape: wav: %v", err)
	}
	floatBuf := buf.AsFloat32Buffer()

	// first channel only of the data stream
	t.PCM = make([]float32, 0, len(floatBuf.Data)/int(dec.NumChans))
	for i := 0; i < len(floatBuf.Data); i += int(dec.NumChans) {
		t.PCM = append(t.PCM, floatBuf.Data[i])
	}
	t.SampleRate = float64(dec.SampleRate)

	logger.Logf(logger.Allow, "tape", "%s: %d samples at %.0fHz", filename, len(t.PCM), t.SampleRate)
	return nil
}

func (t *Tape) loadMP3(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return curated.Errorf("tape: %v", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return curated.Errorf("tape: mp3: %v", err)
	}

	t.PCM = make([]float32, 0)

	err = nil
	chunk := make([]byte, 4096)
	for err != io.EOF {
		var n int
		n, err = dec.Read(chunk)
		if err != nil && err != io.EOF {
			return curated.Errorf("tape: mp3: %v", err)
		}

		// stride of 4: two bytes per sample per channel, left channel only
		for i := 0; i < n; i += 4 {
			v := int(chunk[i]) | int(chunk[i+1])<<8
			if v >= 0x8000 {
				v -= 0x10000
			}
			t.PCM = append(t.PCM, float32(v)/32768.0)
		}
	}
	t.SampleRate = float64(dec.SampleRate())

	logger.Logf(logger.Allow, "tape", "%s: %d samples at %.0fHz", filename, len(t.PCM), t.SampleRate)
	return nil
}
