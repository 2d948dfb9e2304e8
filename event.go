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

import "time"

// KeyValue is the physical action reported by the capture layer for a
// given OsCode.
type KeyValue uint8

const (
	Release KeyValue = iota
	Press
	Repeat
)

func (v KeyValue) String() string {
	switch v {
	case Release:
		return "Release"
	case Press:
		return "Press"
	case Repeat:
		return "Repeat"
	default:
		return "Unknown"
	}
}

// InputEvent is a physical key event arriving from the capture layer.
// Timestamp is optional; the engine stamps it on arrival if zero.
type InputEvent struct {
	Code      OsCode
	Value     KeyValue
	Timestamp time.Time
}

// OutputKind discriminates the side channels an OutputEvent may carry.
type OutputKind uint8

const (
	OutKey OutputKind = iota
	OutMouseButton
	OutScroll
	OutMouseMove
	OutUnicode
	OutSetMouse
)

// ScrollDirection identifies one of the four wheel directions.
type ScrollDirection uint8

const (
	ScrollUp ScrollDirection = iota
	ScrollDown
	ScrollLeft
	ScrollRight
)

// OutputEvent is one synthesized event destined for the emit sink.
// Only the fields relevant to Kind are populated.
type OutputEvent struct {
	Kind      OutputKind
	Code      OsCode   // OutKey
	Value     KeyValue // OutKey, OutMouseButton
	Button    MouseButton
	Direction ScrollDirection
	Distance  uint16
	DX, DY    int32
	Char      rune
	CharBytes []byte // OutUnicode: Char transcoded through the installed encoding, if any
	X, Y      int32
}

// MouseButton is a mask of mouse buttons, mirroring the small closed
// set the composer can emit.
type MouseButton uint8

const (
	MouseBtnNone MouseButton = 0
	MouseBtnLeft MouseButton = 1 << iota
	MouseBtnRight
	MouseBtnMiddle
)

// ReducerInputKind discriminates the two clocks plus the internal
// control-channel variants that share the reducer's single input
// channel (spec.md §5: "any control-plane producer ... uses the same
// channel with distinct variants so all mutation remains serialized").
type ReducerInputKind uint8

const (
	InputEventKind ReducerInputKind = iota
	InputTickKind
	InputChangeLayerKind
	InputRequestLayerNamesKind
	InputRequestCurrentLayerInfoKind
	InputActOnFakeKeyKind
	InputReloadKind
	InputExitKind
)

// FakeKeyAction enumerates the ways a virtual key can be actuated via
// ActOnFakeKey.
type FakeKeyAction uint8

const (
	FakeKeyPress FakeKeyAction = iota
	FakeKeyRelease
	FakeKeyTap
	FakeKeyToggle
)

// ReducerInput is the single sum type consumed by the reducer's main
// loop, merging the event clock, the tick clock, and control-channel
// messages (spec.md §6) into one serialized stream.
type ReducerInput struct {
	Kind ReducerInputKind

	// InputEventKind
	Event InputEvent

	// InputTickKind: number of whole milliseconds elapsed.
	Ticks uint32

	// InputChangeLayerKind
	LayerName string

	// InputActOnFakeKeyKind
	FakeKeyName   string
	FakeKeyAction FakeKeyAction

	// InputReloadKind
	ReloadPath string

	// InputExitKind
	ExitReason error

	// Resp, if non-nil, receives exactly one ControlResponse for
	// request/response style control messages.
	Resp chan ControlResponse
}

// ControlResponseKind discriminates ControlResponse payloads.
type ControlResponseKind uint8

const (
	RespLayerChange ControlResponseKind = iota
	RespLayerNames
	RespCurrentLayerInfo
	RespError
)

// ControlResponse is returned on the optional Resp channel of a
// control-plane ReducerInput.
type ControlResponse struct {
	Kind       ControlResponseKind
	NewLayer   string
	Names      []string
	LayerIndex int
	Err        error
}
