// Copyright 2025 The kanata-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package simdevice provides a simulated capture/emit device standing
// in for the real evdev/uinput backend the engine's Sink interface is
// designed around (out of scope for this module). It puts a tty into
// raw mode the same way a real capture backend would need to, and
// frames key events as simple newline-delimited records so the engine
// can be driven end-to-end without kernel input permissions.
package simdevice

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/katakey/kanata-go"
)

// Device is a simulated bidirectional capture/emit backend: ReadEvent
// reads framed "code value" pairs from an io.Reader and Emit writes
// them to an io.Writer, matching the tty-oriented capture/emit loop a
// real backend would run.
type Device struct {
	r       *bufio.Reader
	w       io.Writer
	rawFd   int
	hadRaw  bool
	savedST unix.Termios
}

// New wraps an already-open reader/writer pair (a pty, a socket, or a
// file) as a simulated device. New does not change terminal modes; if
// fd identifies a real tty, the caller puts it into raw mode with
// EnterRaw.
func New(r io.Reader, w io.Writer, fd int) *Device {
	return &Device{r: bufio.NewReader(r), w: w, rawFd: fd}
}

// EnterRaw disables canonical mode, echo, and signal generation on
// the device's file descriptor, mirroring the termios flag clearing a
// real capture backend performs before it can see individual
// keystrokes (adapted from the teacher's POSIX tty initialization).
func (d *Device) EnterRaw() error {
	st, err := unix.IoctlGetTermios(d.rawFd, ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("simdevice: get termios: %w", err)
	}
	d.savedST = *st
	raw := *st
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 1
	if err := unix.IoctlSetTermios(d.rawFd, ioctlSetTermios, &raw); err != nil {
		return fmt.Errorf("simdevice: set termios: %w", err)
	}
	d.hadRaw = true
	return nil
}

// ExitRaw restores the termios state EnterRaw saved.
func (d *Device) ExitRaw() error {
	if !d.hadRaw {
		return nil
	}
	d.hadRaw = false
	return unix.IoctlSetTermios(d.rawFd, ioctlSetTermios, &d.savedST)
}

// ReadEvent parses the next framed input event: one line of the form
// "<oscode> <press|release|repeat>". io.EOF is returned once the
// underlying reader is exhausted.
func (d *Device) ReadEvent() (kanata.InputEvent, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && line == "" {
		return kanata.InputEvent{}, err
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return kanata.InputEvent{}, fmt.Errorf("simdevice: malformed frame %q", line)
	}
	code, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return kanata.InputEvent{}, fmt.Errorf("simdevice: bad code %q: %w", fields[0], err)
	}
	val, err := parseValue(fields[1])
	if err != nil {
		return kanata.InputEvent{}, err
	}
	return kanata.InputEvent{Code: kanata.OsCode(code), Value: val}, nil
}

func parseValue(s string) (kanata.KeyValue, error) {
	switch s {
	case "press":
		return kanata.Press, nil
	case "release":
		return kanata.Release, nil
	case "repeat":
		return kanata.Repeat, nil
	default:
		return 0, fmt.Errorf("simdevice: unknown value %q", s)
	}
}

// Emit implements kanata.Sink by writing one framed output record per
// event. Non-key side-channel events (mouse, scroll, unicode) use
// their own record shapes.
func (d *Device) Emit(ev kanata.OutputEvent) error {
	switch ev.Kind {
	case kanata.OutKey:
		_, err := fmt.Fprintf(d.w, "key %d %s\n", ev.Code, valueName(ev.Value))
		return err
	case kanata.OutScroll:
		_, err := fmt.Fprintf(d.w, "scroll %d %d\n", ev.Direction, ev.Distance)
		return err
	case kanata.OutMouseMove:
		_, err := fmt.Fprintf(d.w, "mousemove %d %d\n", ev.DX, ev.DY)
		return err
	case kanata.OutMouseButton:
		_, err := fmt.Fprintf(d.w, "mousebtn %d %s\n", ev.Button, valueName(ev.Value))
		return err
	case kanata.OutUnicode:
		payload := ev.CharBytes
		if len(payload) == 0 {
			payload = []byte(string(ev.Char))
		}
		_, err := fmt.Fprintf(d.w, "unicode %s\n", payload)
		return err
	case kanata.OutSetMouse:
		_, err := fmt.Fprintf(d.w, "setmouse %d %d\n", ev.X, ev.Y)
		return err
	default:
		return fmt.Errorf("simdevice: unknown output kind %d", ev.Kind)
	}
}

func valueName(v kanata.KeyValue) string {
	switch v {
	case kanata.Press:
		return "press"
	case kanata.Release:
		return "release"
	default:
		return "repeat"
	}
}
