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

package hardware

import (
	"os"

	"github.com/jetsetilly/gopherbeeb/curated"
)

// The message kinds that cross between the emulation thread and the UI
// thread.
const (
	// the emulator has a frame ready
	MessageVSync byte = iota + 1

	// the UI has presented the frame; only sent when the emulator asked
	// for synchronous render pacing
	MessageRenderDone

	// the sender is going away
	MessageExited
)

// Message is the fixed four byte wire format: kind, full-render flag,
// framing-changed flag, and a spare byte.
type Message struct {
	Kind           byte
	FullRender     bool
	FramingChanged bool
}

func (m Message) encode() [4]byte {
	var b [4]byte
	b[0] = m.Kind
	if m.FullRender {
		b[1] = 1
	}
	if m.FramingChanged {
		b[2] = 1
	}
	return b
}

func decodeMessage(b [4]byte) Message {
	return Message{
		Kind:           b[0],
		FullRender:     b[1] != 0,
		FramingChanged: b[2] != 0,
	}
}

// Channel is one end of the message pair: a read pipe and a write pipe,
// each single-producer single-consumer.
type Channel struct {
	r *os.File
	w *os.File
}

// NewChannels creates the connected pair of channel ends over OS pipes.
func NewChannels() (machine Channel, client Channel, err error) {
	mr, cw, err := os.Pipe()
	if err != nil {
		return Channel{}, Channel{}, curated.Errorf("channel: %v", err)
	}
	cr, mw, err := os.Pipe()
	if err != nil {
		return Channel{}, Channel{}, curated.Errorf("channel: %v", err)
	}
	return Channel{r: mr, w: mw}, Channel{r: cr, w: cw}, nil
}

// Send writes a message. Blocks only if the peer has stopped draining.
func (c Channel) Send(m Message) error {
	b := m.encode()
	if _, err := c.w.Write(b[:]); err != nil {
		return curated.Errorf("channel: %v", err)
	}
	return nil
}

// Receive blocks for the next message.
func (c Channel) Receive() (Message, error) {
	var b [4]byte
	if _, err := readFull(c.r, b[:]); err != nil {
		return Message{}, curated.Errorf("channel: %v", err)
	}
	return decodeMessage(b), nil
}

// Close both pipes of this end.
func (c Channel) Close() error {
	if c.r != nil {
		c.r.Close()
	}
	if c.w != nil {
		c.w.Close()
	}
	return nil
}

func readFull(f *os.File, b []byte) (int, error) {
	n := 0
	for n < len(b) {
		m, err := f.Read(b[n:])
		if err != nil {
			return n, err
		}
		n += m
	}
	return n, nil
}
