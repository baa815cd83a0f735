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

// Package sdlwindow is the UI thread of the emulator: an SDL2 window
// showing the frame buffer, host keyboard capture into the BBC key
// matrix, and the audio queue. It owns nothing of the machine; the
// emulation goroutine talks to it through the message channel and the
// lock-free keyboard matrix.
package sdlwindow

import (
	"runtime"
	"unsafe"

	"github.com/jetsetilly/gopherbeeb/curated"
	"github.com/jetsetilly/gopherbeeb/hardware"
	"github.com/jetsetilly/gopherbeeb/hardware/keyboard"
	"github.com/jetsetilly/gopherbeeb/hardware/sound"
	"github.com/jetsetilly/gopherbeeb/logger"

	"github.com/veandco/go-sdl2/sdl"
)

// the frame buffer dimensions handed to the external renderer.
const (
	FrameWidth  = 640
	FrameHeight = 512
)

// Window is the SDL surface and its plumbing.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	audio sdl.AudioDeviceID

	keyboard *keyboard.Keyboard

	// the frame buffer the external renderer draws into. RGBA
	buffer []byte

	// messages from the emulation thread, drained by a pipe reader
	// goroutine
	messages chan hardware.Message

	channel hardware.Channel
}

// NewWindow is the preferred method of initialisation for the Window
// type. Must be called on the main thread, which it locks.
func NewWindow(kb *keyboard.Keyboard, channel hardware.Channel) (*Window, error) {
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, curated.Errorf("sdlwindow: %v", err)
	}

	window, err := sdl.CreateWindow("GopherBeeb",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		FrameWidth, FrameHeight, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, curated.Errorf("sdlwindow: %v", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, curated.Errorf("sdlwindow: %v", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING, FrameWidth, FrameHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, curated.Errorf("sdlwindow: %v", err)
	}

	w := &Window{
		window:   window,
		renderer: renderer,
		texture:  texture,
		keyboard: kb,
		buffer:   make([]byte, FrameWidth*FrameHeight*4),
		messages: make(chan hardware.Message, 8),
		channel:  channel,
	}

	// the pipe reader: blocks on the channel so the event loop does not
	// have to
	go func() {
		for {
			m, err := channel.Receive()
			if err != nil {
				close(w.messages)
				return
			}
			w.messages <- m
		}
	}()

	return w, nil
}

// Buffer returns the frame buffer for the external renderer to draw into.
func (w *Window) Buffer() []byte {
	return w.buffer
}

// OpenAudio attaches the window's audio queue and returns the mixer to
// hang off the sound chip.
func (w *Window) OpenAudio() (sound.Mixer, error) {
	spec := &sdl.AudioSpec{
		Freq:     sound.SampleRate,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  1024,
	}

	var actualSpec sdl.AudioSpec
	dev, err := sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		return nil, curated.Errorf("sdlwindow: audio: %v", err)
	}
	w.audio = dev
	sdl.PauseAudioDevice(dev, false)

	return &audioQueue{dev: dev}, nil
}

type audioQueue struct {
	dev sdl.AudioDeviceID
}

// SetAudio implements the sound.Mixer interface. Called on the emulation
// thread; SDL's audio queue is thread safe.
func (q *audioQueue) SetAudio(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*2)
	if err := sdl.QueueAudio(q.dev, b); err != nil {
		return curated.Errorf("sdlwindow: audio: %v", err)
	}
	return nil
}

// Service runs the UI loop until the emulation exits or the window
// closes. onClose is called once when the user closes the window; it
// should stop the machine, whose EXITED message ends the loop.
func (w *Window) Service(onClose func()) {
	closed := false

	for {
		// drain messages without blocking. repeated VSYNCs coalesce into
		// one present
		present := false
	drain:
		for {
			select {
			case m, ok := <-w.messages:
				if !ok || m.Kind == hardware.MessageExited {
					return
				}
				if m.Kind == hardware.MessageVSync {
					present = true
				}
			default:
				break drain
			}
		}

		if present && !closed {
			w.texture.Update(nil, w.buffer, FrameWidth*4)
			w.renderer.Clear()
			w.renderer.Copy(w.texture, nil, nil)
			w.renderer.Present()
		}

		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				if !closed {
					closed = true
					logger.Log(logger.Allow, "sdlwindow", "window closed")
					onClose()
				}
			case *sdl.KeyboardEvent:
				w.serviceKeyboard(ev)
			}
		}

		sdl.Delay(5)
	}
}

func (w *Window) serviceKeyboard(ev *sdl.KeyboardEvent) {
	row, col, ok := matrixPosition(ev.Keysym.Scancode)
	if !ok {
		return
	}
	w.keyboard.SetKey(row, col, ev.Type == sdl.KEYDOWN)
}

// Destroy releases all SDL resources.
func (w *Window) Destroy() {
	if w.audio != 0 {
		sdl.CloseAudioDevice(w.audio)
	}
	w.texture.Destroy()
	w.renderer.Destroy()
	w.window.Destroy()
	sdl.Quit()
}
