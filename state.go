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

// StateKind enumerates the kinds of per-key state a physical
// coordinate can hold (spec.md §3).
type StateKind uint8

const (
	StateNormalKey StateKind = iota
	StateLayerModifier
	StateHoldTapPending
	StateHoldTapHold
	StateHoldTapTap
	StateOneShot
	StateTapDance
	StateChord
	StateCustom
	StateFakeKey
)

// State is the per-coordinate record the reducer keeps while a key
// (or virtual key) is active or mid-resolution. At most one State
// exists per Coord at a time (spec.md §3 invariant): a tap→release
// creates and destroys state atomically within one reducer step.
type State struct {
	Kind  StateKind
	Coord Coord
	Key   KeyCode   // the resolved output key, when applicable
	Keys  []KeyCode // ActMultipleKeyCodes payload

	PressTick uint64 // tick count at press
	LastTick  uint64 // tick of last transition

	Action *Action // the action this state resolved from

	// Hold-tap bookkeeping.
	HoldTapPhase   htPhase
	HoldTapOtherQ  []Coord // other keys pressed during the pending window, in order
	HoldTapLastRel uint64  // tick of last relevant release, for tap-hold-interval

	// One-shot bookkeeping.
	OneShotArmed   bool
	OneShotHeldFor Coord // the key whose press committed this one-shot

	// Tap-dance bookkeeping.
	TapDanceCount int

	// Layer-modifier bookkeeping: which layer this key pushed/swapped.
	LayerIdx   LayerIdx
	WasDefault LayerIdx

	// FakeKey bookkeeping.
	FakeKeyName string
}

// stateTable is the arena of active State records, indexed by Coord;
// a coordinate's state is found on release by the same Coord key.
// Implemented as a map for simplicity; the spec's "arena
// indexed by Coord" is realized here as a Go map keyed on the small
// Coord struct, which is cheap to hash and compare.
type stateTable struct {
	byCoord map[Coord]*State
}

func newStateTable() *stateTable {
	return &stateTable{byCoord: make(map[Coord]*State)}
}

func (st *stateTable) get(c Coord) (*State, bool) {
	s, ok := st.byCoord[c]
	return s, ok
}

func (st *stateTable) put(s *State) {
	st.byCoord[s.Coord] = s
}

func (st *stateTable) remove(c Coord) {
	delete(st.byCoord, c)
}

func (st *stateTable) all() []*State {
	out := make([]*State, 0, len(st.byCoord))
	for _, s := range st.byCoord {
		out = append(out, s)
	}
	return out
}

type htPhase uint8

const (
	htPending htPhase = iota
	htResolvedTap
	htResolvedHold
)
