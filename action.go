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

// ActionKind discriminates the closed set of action variants a
// layout cell may hold (spec.md §3). Actions are immutable once
// built by the loader and are interned (shared *Action pointers)
// across layer cells that hold an identical value.
type ActionKind uint8

const (
	ActNoOp ActionKind = iota
	ActTrans
	ActKeyCode
	ActMultipleKeyCodes
	ActLayer
	ActDefaultLayer
	ActLayerWhileHeld
	ActHoldTap
	ActOneShot
	ActTapDance
	ActChord
	ActFork
	ActSwitch
	ActMacro
	ActSequence
	ActRepeatableSequence
	ActCancelSequences
	ActReleaseState
	ActRepeat
	ActCustom
	ActScroll
	ActMouseMove
	ActUnicode
)

// Action is the tagged-union value held in a layout cell. Only the
// fields relevant to Kind are populated; the rest are zero. Actions
// are small and built once per config load, then shared by pointer
// (*Action) across the Layout table, matching the "interned, arena
// of small payload structs" design called for by spec.md §9.
type Action struct {
	Kind ActionKind

	Key  KeyCode   // ActKeyCode
	Keys []KeyCode // ActMultipleKeyCodes

	LayerIdx int // ActLayer / ActDefaultLayer / ActLayerWhileHeld

	HoldTap  *HoldTapAction
	OneShot  *OneShotAction
	TapDance *TapDanceAction

	ChordGroup string // ActChord: chord group id this key participates in

	Fork *ForkAction

	Switch *SwitchAction

	Macro *MacroAction

	Sequence *SequenceAction

	ReleaseKind ReleaseKind // ActReleaseState

	Custom []CustomEffect // ActCustom

	Scroll    *ScrollAction    // ActScroll
	MouseMove *MouseMoveAction // ActMouseMove

	Unicode rune // ActUnicode
}

// ReleaseKind enumerates the ReleaseState(kind) variants.
type ReleaseKind uint8

const (
	ReleaseAll ReleaseKind = iota
	ReleaseNonModifiers
)

// HoldTapConfig enumerates the tap-hold resolution policies of
// spec.md §4.3.
type HoldTapConfig uint8

const (
	HTDefault HoldTapConfig = iota
	HTPermissiveHold
	HTHoldOnOtherKeyPress
	HTReleaseKeys
	HTExceptKeys
	HTReleaseTapKeysRelease
)

// HoldTapTimeoutAction enumerates what happens when a hold-tap's
// pending window expires with no resolving event.
type HoldTapTimeoutAction uint8

const (
	HTTimeoutHold HoldTapTimeoutAction = iota
	HTTimeoutTap
	HTTimeoutCustom
)

// HoldTapAction is the payload of ActHoldTap.
type HoldTapAction struct {
	Timeout            time.Duration
	Tap                *Action
	Hold               *Action
	TimeoutAction      *Action // used when TimeoutBehavior == HTTimeoutCustom
	TimeoutBehavior    HoldTapTimeoutAction
	Config             HoldTapConfig
	TapHoldInterval    time.Duration
	ReleaseKeys       map[KeyCode]bool // HTReleaseKeys / HTReleaseTapKeysRelease
	ExceptKeys        map[KeyCode]bool // HTExceptKeys / HTReleaseTapKeysRelease
	ResetTimeoutOnTap bool
	ConcurrentTapHold bool
}

// OneShotEndConfig controls whether an armed one-shot can be
// cancelled early by the same key's own press/release.
type OneShotEndConfig uint8

const (
	OneShotEndOnPressOrRepress OneShotEndConfig = iota
	OneShotEndOnPressOnly
)

// OneShotAction is the payload of ActOneShot.
type OneShotAction struct {
	Timeout   time.Duration
	Inner     *Action
	EndConfig OneShotEndConfig
}

// TapDanceConfig controls whether intermediate taps fire immediately
// (eager) or only the final tap count resolves (lazy, the default).
type TapDanceConfig uint8

const (
	TapDanceLazy TapDanceConfig = iota
	TapDanceEager
)

// TapDanceAction is the payload of ActTapDance. Actions[i] fires for
// the (i+1)-th consecutive tap. Must have at least one entry.
type TapDanceAction struct {
	Timeout time.Duration
	Actions []*Action
	Config  TapDanceConfig
}

// ForkAction is the payload of ActFork: it resolves to Left unless
// any key in Trigger is currently held, in which case it resolves to
// Right.
type ForkAction struct {
	Left, Right *Action
	Trigger     map[KeyCode]bool
}

// SwitchCase is one guarded arm of a Switch action.
type SwitchCase struct {
	// Keys that must currently be in the state described by Held to
	// select this case; an empty Keys slice is the default/fallback
	// case and always matches.
	Keys   []KeyCode
	Held   bool // true: Keys must be held; false: Keys must not be held
	Action *Action
	Break  bool // stop evaluating subsequent cases once matched
}

// SwitchAction is the payload of ActSwitch: the first matching case
// (in declaration order) resolves.
type SwitchAction struct {
	Cases []SwitchCase
}

// MacroEventKind enumerates the compiled macro event stream.
type MacroEventKind uint8

const (
	MacroPress MacroEventKind = iota
	MacroRelease
	MacroPressRelease
	MacroDelay
)

// MacroEvent is one compiled step of a macro.
type MacroEvent struct {
	Kind  MacroEventKind
	Key   KeyCode       // MacroPress/MacroRelease/MacroPressRelease
	Delay time.Duration // MacroDelay
}

// MacroAction is the payload of ActMacro (spec.md §4.9).
type MacroAction struct {
	Events        []MacroEvent
	Repeat        bool
	ReleaseCancel bool
	CancelOnPress bool
}

// SequenceInputMode controls whether keys are suppressed while a
// sequence is in progress (hidden) or pass through and get erased on
// a successful match (visible-backspaced).
type SequenceInputMode uint8

const (
	SequenceHidden SequenceInputMode = iota
	SequenceVisibleBackspaced
)

// SequenceAction is the payload of ActSequence: it begins recognition
// against the trie rooted at SequenceID (spec.md §4.8).
type SequenceAction struct {
	SequenceID int
	Mode       SequenceInputMode
}

// ScrollAction is the payload of ActScroll, one of the features
// recovered from original_source/src/kanata/scroll.rs (SPEC_FULL §3):
// a held scroll action repeats at Interval while the physical key is
// down.
type ScrollAction struct {
	Direction ScrollDirection
	Distance  uint16
	Interval  time.Duration
}

// MouseMoveAction is the payload of ActMouseMove, the movemouse
// counterpart to ScrollAction recovered from original_source.
type MouseMoveAction struct {
	DX, DY   int32
	Interval time.Duration
}

// CustomEffectKind enumerates the side-effect variants a Custom
// action may trigger.
type CustomEffectKind uint8

const (
	CustomNone CustomEffectKind = iota
	CustomCmd           // shell out; gated by options.EnableCmd
	CustomCapsWordToggle
)

// CustomEffect is one side effect fired by an ActCustom action.
type CustomEffect struct {
	Kind CustomEffectKind
	Cmd  []string
}

// transAction and noopAction are the two shared singleton leaves;
// every layer cell that inherits or does nothing points at these so
// the loader need not allocate a fresh Action per Trans/NoOp cell.
var (
	transAction = &Action{Kind: ActTrans}
	noopAction  = &Action{Kind: ActNoOp}
)

// Trans returns the shared Trans action.
func Trans() *Action { return transAction }

// NoOp returns the shared NoOp action.
func NoOp() *Action { return noopAction }
