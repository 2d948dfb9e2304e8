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

package simdevice

import (
	"github.com/pkg/term"
)

// OpenControllingTty opens the process's controlling terminal for use
// as a simulated capture/emit device, the stand-in this package uses
// for a real evdev/uinput pair. It is kept separate from New so tests
// can drive a Device from an in-memory pipe instead.
func OpenControllingTty() (*Device, func() error, error) {
	t, err := term.Open("/dev/tty")
	if err != nil {
		return nil, nil, err
	}
	d := New(t, t, int(t.Fd()))
	return d, t.Close, nil
}
