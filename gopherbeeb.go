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

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"

	"github.com/jetsetilly/gopherbeeb/gui/sdlwindow"
	"github.com/jetsetilly/gopherbeeb/hardware"
	"github.com/jetsetilly/gopherbeeb/hardware/memory"
	"github.com/jetsetilly/gopherbeeb/hardware/serial"
	"github.com/jetsetilly/gopherbeeb/logger"
	"github.com/jetsetilly/gopherbeeb/modalflag"
	"github.com/jetsetilly/gopherbeeb/statsview"
	"github.com/jetsetilly/gopherbeeb/wavwriter"
)

const version = "0.2.0"

// the ROM banks loaded when -rom is not given
const defaultROMSpec = "15:roms/basic.rom;9:roms/DFS-0.9.rom"

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "VERSION")

	r, err := md.Parse()
	switch r {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "VERSION":
		fmt.Printf("gopherbeeb %s\n", version)
	case "RUN":
		if err := run(md); err != nil {
			fmt.Printf("* error in %s mode: %v\n", md.String(), err)
			os.Exit(10)
		}
	}
}

func run(md *modalflag.Modes) error {
	md.NewMode()

	osROMFile := md.AddString("os", "roms/os12.rom", "OS ROM image")
	romSpec := md.AddString("rom", defaultROMSpec, "ROM bank load list, bank:file pairs separated by semicolons")
	swram := md.AddString("swram", "", "sideways RAM banks, hex, comma separated")
	disc0 := md.AddString("disc0", "", "disc images for drive 0, semicolon separated")
	disc1 := md.AddString("disc1", "", "disc images for drive 1, semicolon separated")
	tapes := md.AddString("tape", "", "tape images, semicolon separated")
	writeable := md.AddBool("writeable", false, "discs are not write protected")
	mutable := md.AddBool("mutable", false, "disc image changes write back to the host file")
	mode := md.AddString("mode", "jit", "CPU driver: jit, interp, inturbo")
	accurate := md.AddBool("accurate", false, "single instruction timing granularity")
	fasttape := md.AddBool("fasttape", false, "accepted but has no effect: tape motor pacing is left to the external tape codec")
	pc := md.AddString("pc", "", "start the CPU at this address rather than the reset vector")
	stopAt := md.AddString("stopat", "", "stop when the PC reaches this address")
	cycles := md.AddUint64("cycles", 0, "stop after this many ticks")
	expect := md.AddString("expect", "", "required run result for batch runs, hex")
	capture := md.AddString("capture", "", "record keyboard input to file")
	replay := md.AddString("replay", "", "replay keyboard input from file")
	terminal := md.AddBool("terminal", false, "bridge guest serial to this terminal")
	headless := md.AddBool("headless", false, "run with no window")
	wavFile := md.AddString("wav", "", "write sound output to WAV file")
	memvizFile := md.AddString("memviz", "", "dump the machine component graph to a dot file")
	stats := md.AddBool("statsview", false, "run the statistics server")
	log := md.AddBool("log", false, "echo log entries to stderr")

	r, err := md.Parse()
	switch r {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		return err
	}

	if *log {
		logger.SetEcho(os.Stderr, true)
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	switch *mode {
	case "jit":
	case "interp", "inturbo":
		return fmt.Errorf("the %s driver is not built in; jit is the native driver", *mode)
	default:
		return fmt.Errorf("unknown CPU driver: %s", *mode)
	}

	osROM, err := os.ReadFile(*osROMFile)
	if err != nil {
		return fmt.Errorf("can't load OS rom: %v", err)
	}
	if len(osROM) != memory.ROMSize {
		return fmt.Errorf("OS rom is %d bytes, not %d", len(osROM), memory.ROMSize)
	}

	if *terminal {
		serial.PatchOSROM(osROM)
	}

	bbc, err := hardware.NewBBC(osROM, *accurate)
	if err != nil {
		return err
	}

	if err := loadROMBanks(bbc, *romSpec); err != nil {
		return err
	}

	if *swram != "" {
		for _, s := range strings.Split(*swram, ",") {
			bank, err := strconv.ParseInt(s, 16, 8)
			if err != nil || bank < 0 || bank >= memory.NumROMBanks {
				return fmt.Errorf("RAM bank number out of range: %s", s)
			}
			if err := bbc.MakeSidewaysRAM(int(bank)); err != nil {
				return err
			}
		}
	}

	for drive, spec := range []string{*disc0, *disc1} {
		if spec == "" {
			continue
		}
		for _, f := range strings.Split(spec, ";") {
			if err := bbc.AddDisc(f, drive, *writeable, *mutable); err != nil {
				return err
			}
		}
	}

	if *tapes != "" {
		for _, f := range strings.Split(*tapes, ";") {
			if err := bbc.AddTape(f); err != nil {
				return err
			}
		}
	}
	_ = *fasttape // tape motor pacing belongs to the external tape codec

	if *capture != "" {
		if err := bbc.Keyboard.SetCaptureFile(*capture); err != nil {
			return err
		}
		defer bbc.Keyboard.EndCapture()
	}
	if *replay != "" {
		if err := bbc.Keyboard.LoadReplay(*replay); err != nil {
			return err
		}
	}

	if *pc != "" {
		v, err := strconv.ParseUint(*pc, 16, 16)
		if err != nil {
			return fmt.Errorf("bad -pc value: %s", *pc)
		}
		bbc.SetPC(uint16(v))
	}
	if *stopAt != "" {
		v, err := strconv.ParseUint(*stopAt, 16, 16)
		if err != nil {
			return fmt.Errorf("bad -stopat value: %s", *stopAt)
		}
		bbc.Driver.SetStopAddr(uint16(v))
	}
	if *cycles != 0 {
		bbc.SetStopCycles(*cycles)
	}

	if *wavFile != "" {
		ww, err := wavwriter.New(*wavFile)
		if err != nil {
			return err
		}
		bbc.Sound.AttachMixer(ww)
	}

	if *terminal {
		if err := bbc.Serial.RawMode(); err != nil {
			return err
		}
		defer bbc.Serial.Restore()
		bbc.Serial.SetIOHandles(os.Stdin, os.Stdout)
	}

	if *memvizFile != "" {
		f, err := os.Create(*memvizFile)
		if err != nil {
			return err
		}
		memviz.Map(f, bbc)
		f.Close()
	}

	if *headless {
		err = bbc.Run()
	} else {
		err = runWithWindow(bbc)
	}
	if err != nil {
		return err
	}

	if *expect != "" {
		want, perr := strconv.ParseUint(*expect, 16, 32)
		if perr != nil {
			return fmt.Errorf("bad -expect value: %s", *expect)
		}
		got := bbc.RunResult()
		if got != uint32(want) {
			return fmt.Errorf("run result %08x is not the expected %08x", got, want)
		}
	}

	return nil
}

func loadROMBanks(bbc *hardware.BBC, spec string) error {
	for _, pair := range strings.Split(spec, ";") {
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("bad ROM load spec: %s", pair)
		}
		bank, err := strconv.ParseInt(parts[0], 16, 8)
		if err != nil || bank < 0 || bank >= memory.NumROMBanks {
			return fmt.Errorf("ROM bank number out of range: %s", parts[0])
		}

		data, err := os.ReadFile(parts[1])
		if err != nil {
			// the default spec names ROMs the user may not have; missing
			// files in the default spec are not fatal
			if spec != defaultROMSpec {
				return fmt.Errorf("can't load ROM bank %x: %v", bank, err)
			}
			logger.Logf(logger.Allow, "bbc", "skipping ROM bank %x: %v", bank, err)
			continue
		}
		if err := bbc.LoadROM(int(bank), data); err != nil {
			return err
		}
	}
	return nil
}

func runWithWindow(bbc *hardware.BBC) error {
	machineEnd, clientEnd, err := hardware.NewChannels()
	if err != nil {
		return err
	}
	bbc.SetChannel(machineEnd)

	win, err := sdlwindow.NewWindow(bbc.Keyboard, clientEnd)
	if err != nil {
		return err
	}
	defer win.Destroy()

	if mixer, err := win.OpenAudio(); err != nil {
		logger.Logf(logger.Allow, "sdlwindow", "no audio: %v", err)
	} else {
		bbc.Sound.AttachMixer(mixer)
	}

	done := bbc.RunAsync()

	// the UI loop ends when the machine reports EXITED. closing the
	// window stops the machine, which is what produces that message
	win.Service(func() {
		bbc.Driver.Stop(0xFFFFFFFF)
	})

	return <-done
}
