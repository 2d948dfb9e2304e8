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

import "fmt"

// OsCode is the 16-bit OS-level scan code reported by the capture
// layer and expected by the emit sink. Valid codes are 0..=OsCodeMax;
// anything outside that range is never constructed by this package.
type OsCode uint16

const (
	OsCodeMin OsCode = 0
	OsCodeMax OsCode = 0x2FF
)

// KeyCode is the dense, logical key identifier the engine reasons
// about internally. Every KeyCode that participates in the bijection
// has exactly one OsCode, and vice versa; gaps in either direction
// are represented by the reserved sentinel so indexing never panics.
type KeyCode int16

const (
	KeyReserved KeyCode = iota

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0

	KeyEnter
	KeyEsc
	KeyBackspace
	KeyTab
	KeySpace
	KeyMinus
	KeyEqual
	KeyLeftBrace
	KeyRightBrace
	KeyBackslash
	KeySemicolon
	KeyApostrophe
	KeyGrave
	KeyComma
	KeyDot
	KeySlash
	KeyCapsLock

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyF21
	KeyF22
	KeyF23
	KeyF24

	KeyPrintScreen
	KeyScrollLock
	KeyPause
	KeyInsert
	KeyHome
	KeyPgUp
	KeyDelete
	KeyEnd
	KeyPgDn
	KeyRight
	KeyLeft
	KeyDown
	KeyUp

	KeyNumLock
	KeyKpSlash
	KeyKpAsterisk
	KeyKpMinus
	KeyKpPlus
	KeyKpEnter
	KeyKp1
	KeyKp2
	KeyKp3
	KeyKp4
	KeyKp5
	KeyKp6
	KeyKp7
	KeyKp8
	KeyKp9
	KeyKp0
	KeyKpDot

	KeyLCtrl
	KeyLShift
	KeyLAlt
	KeyLMeta
	KeyRCtrl
	KeyRShift
	KeyRAlt
	KeyRMeta

	KeyMax
)

// osToKey and keyToOs implement the OsCode<->KeyCode bijection. They
// are populated once from keycodeTable, which is the single source
// of truth: each KeyCode names exactly one OsCode. Unassigned slots
// resolve to KeyReserved / the zero OsCode respectively, which is
// never a valid assigned pairing (KeyReserved has no OsCode of its
// own), so round-tripping either direction never produces a false
// collision.
var (
	osToKey [OsCodeMax + 1]KeyCode
	keyToOs [KeyMax]OsCode
	keyHas  [KeyMax]bool
)

// keycodeTable assigns every non-reserved KeyCode a stable OsCode.
// The numbering follows the common Linux evdev scancode layout so
// that a real evdev capture backend (out of scope for this package)
// can be wired up without renumbering.
var keycodeTable = []struct {
	kc KeyCode
	os OsCode
}{
	{KeyEsc, 1},
	{Key1, 2}, {Key2, 3}, {Key3, 4}, {Key4, 5}, {Key5, 6},
	{Key6, 7}, {Key7, 8}, {Key8, 9}, {Key9, 10}, {Key0, 11},
	{KeyMinus, 12}, {KeyEqual, 13}, {KeyBackspace, 14}, {KeyTab, 15},
	{KeyQ, 16}, {KeyW, 17}, {KeyE, 18}, {KeyR, 19}, {KeyT, 20},
	{KeyY, 21}, {KeyU, 22}, {KeyI, 23}, {KeyO, 24}, {KeyP, 25},
	{KeyLeftBrace, 26}, {KeyRightBrace, 27}, {KeyEnter, 28},
	{KeyLCtrl, 29},
	{KeyA, 30}, {KeyS, 31}, {KeyD, 32}, {KeyF, 33}, {KeyG, 34},
	{KeyH, 35}, {KeyJ, 36}, {KeyK, 37}, {KeyL, 38},
	{KeySemicolon, 39}, {KeyApostrophe, 40}, {KeyGrave, 41},
	{KeyLShift, 42}, {KeyBackslash, 43},
	{KeyZ, 44}, {KeyX, 45}, {KeyC, 46}, {KeyV, 47}, {KeyB, 48},
	{KeyN, 49}, {KeyM, 50}, {KeyComma, 51}, {KeyDot, 52}, {KeySlash, 53},
	{KeyRShift, 54}, {KeyKpAsterisk, 55}, {KeyLAlt, 56}, {KeySpace, 57},
	{KeyCapsLock, 58},
	{KeyF1, 59}, {KeyF2, 60}, {KeyF3, 61}, {KeyF4, 62}, {KeyF5, 63},
	{KeyF6, 64}, {KeyF7, 65}, {KeyF8, 66}, {KeyF9, 67}, {KeyF10, 68},
	{KeyNumLock, 69}, {KeyScrollLock, 70},
	{KeyKp7, 71}, {KeyKp8, 72}, {KeyKp9, 73}, {KeyKpMinus, 74},
	{KeyKp4, 75}, {KeyKp5, 76}, {KeyKp6, 77}, {KeyKpPlus, 78},
	{KeyKp1, 79}, {KeyKp2, 80}, {KeyKp3, 81}, {KeyKp0, 82}, {KeyKpDot, 83},
	{KeyF11, 87}, {KeyF12, 88},
	{KeyF13, 183}, {KeyF14, 184}, {KeyF15, 185}, {KeyF16, 186},
	{KeyF17, 187}, {KeyF18, 188}, {KeyF19, 189}, {KeyF20, 190},
	{KeyF21, 191}, {KeyF22, 192}, {KeyF23, 193}, {KeyF24, 194},
	{KeyKpEnter, 96}, {KeyRCtrl, 97}, {KeyKpSlash, 98},
	{KeyPrintScreen, 99}, {KeyRAlt, 100},
	{KeyHome, 102}, {KeyUp, 103}, {KeyPgUp, 104}, {KeyLeft, 105},
	{KeyRight, 106}, {KeyEnd, 107}, {KeyDown, 108}, {KeyPgDn, 109},
	{KeyInsert, 110}, {KeyDelete, 111},
	{KeyPause, 119},
	{KeyLMeta, 125}, {KeyRMeta, 126},
}

func init() {
	for _, p := range keycodeTable {
		if keyHas[p.kc] {
			panic(fmt.Sprintf("kanata: duplicate KeyCode %d in keycodeTable", p.kc))
		}
		if osToKey[p.os] != KeyReserved {
			panic(fmt.Sprintf("kanata: duplicate OsCode %d in keycodeTable", p.os))
		}
		keyToOs[p.kc] = p.os
		keyHas[p.kc] = true
		osToKey[p.os] = p.kc
	}
}

// KeyCode returns the logical key for an OsCode, or KeyReserved if
// the OsCode is out of range or unassigned.
func (c OsCode) KeyCode() KeyCode {
	if c > OsCodeMax {
		return KeyReserved
	}
	return osToKey[c]
}

// Valid reports whether c falls within the representable OS-code
// range.
func (c OsCode) Valid() bool {
	return c <= OsCodeMax
}

// OsCode returns the scan code assigned to k, and false if k is
// KeyReserved or otherwise has no assigned code.
func (k KeyCode) OsCode() (OsCode, bool) {
	if k < 0 || k >= KeyMax || !keyHas[k] {
		return 0, false
	}
	return keyToOs[k], true
}

// modifierKeys is the closed set of modifier KeyCodes (spec.md §3).
var modifierKeys = map[KeyCode]bool{
	KeyLCtrl: true, KeyRCtrl: true,
	KeyLShift: true, KeyRShift: true,
	KeyLAlt: true, KeyRAlt: true,
	KeyLMeta: true, KeyRMeta: true,
}

// IsModifier reports whether k is one of the eight classified
// modifier keys.
func (k KeyCode) IsModifier() bool {
	return modifierKeys[k]
}

// String renders a human-readable name for diagnostics and the
// control server's status dump; it never affects resolution.
func (k KeyCode) String() string {
	switch {
	case k == KeyReserved:
		return "Reserved"
	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + (k - KeyA)))
	case k >= Key1 && k <= Key9:
		return fmt.Sprintf("%d", int(k-Key1)+1)
	case k == Key0:
		return "0"
	case k >= KeyF1 && k <= KeyF24:
		return fmt.Sprintf("F%d", int(k-KeyF1)+1)
	default:
		if name, ok := namedKeys[k]; ok {
			return name
		}
		return fmt.Sprintf("Key(%d)", int(k))
	}
}

var namedKeys = map[KeyCode]string{
	KeyEnter: "Enter", KeyEsc: "Esc", KeyBackspace: "Backspace",
	KeyTab: "Tab", KeySpace: "Space", KeyCapsLock: "CapsLock",
	KeyLCtrl: "LCtrl", KeyRCtrl: "RCtrl",
	KeyLShift: "LShift", KeyRShift: "RShift",
	KeyLAlt: "LAlt", KeyRAlt: "RAlt",
	KeyLMeta: "LMeta", KeyRMeta: "RMeta",
	KeyUp: "Up", KeyDown: "Down", KeyLeft: "Left", KeyRight: "Right",
	KeyHome: "Home", KeyEnd: "End", KeyPgUp: "PgUp", KeyPgDn: "PgDn",
	KeyInsert: "Insert", KeyDelete: "Delete",
}
