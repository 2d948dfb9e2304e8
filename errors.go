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

package kanata

import (
	"errors"
	"time"
)

var (
	// ErrBadConfig indicates a compiled Config failed validation
	// (e.g. a zero-length tap-dance list, a chord with fewer than
	// two participating keys, or a one-shot buffer that could
	// exceed its hard capacity).
	ErrBadConfig = errors.New("kanata: invalid configuration")

	// ErrQueueFull indicates the bounded ReducerInput channel could
	// not accept another input without blocking past its budget.
	ErrQueueFull = errors.New("kanata: reducer input queue full")

	// ErrNoWaitingSlot indicates the WaitingActions queue already
	// holds an entry for the given coordinate; per spec a coordinate
	// may appear at most once.
	ErrNoWaitingSlot = errors.New("kanata: coordinate already waiting")

	// ErrDeviceIO indicates a permanent capture or emit failure; the
	// caller should release all held output keys and shut down.
	ErrDeviceIO = errors.New("kanata: device i/o failure")

	// ErrShutdown indicates the engine has already been torn down.
	ErrShutdown = errors.New("kanata: engine is shut down")
)

// EventError is a control-channel response carrying an error payload,
// used for malformed or rejected control messages. It never
// terminates the reducer.
type EventError struct {
	t   time.Time
	err error
}

// NewEventError creates an EventError with the given cause.
func NewEventError(err error) *EventError {
	return &EventError{t: time.Now(), err: err}
}

// When reports when the error was observed.
func (ev *EventError) When() time.Time { return ev.t }

// Error implements the error interface.
func (ev *EventError) Error() string { return ev.err.Error() }

// Unwrap exposes the wrapped cause for errors.Is/As.
func (ev *EventError) Unwrap() error { return ev.err }
