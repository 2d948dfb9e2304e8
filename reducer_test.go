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
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// testEngine builds an Engine directly against the given Config,
// bypassing Run's goroutine/ticker so tests can drive it
// deterministically one step at a time.
func testEngine(t *testing.T, cfg *Config) *Engine {
	t.Helper()
	return NewEngine(cfg, nil, testNewSilentLogger())
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) { return len(p), nil }

// testNewSilentLogger returns a logrus.Logger that discards output, for
// tests that only care about engine state, not log noise.
func testNewSilentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(testWriter{})
	return log
}

func (e *Engine) press(code OsCode) {
	e.step(ReducerInput{Kind: InputEventKind, Event: InputEvent{Code: code, Value: Press}})
}

func (e *Engine) release(code OsCode) {
	e.step(ReducerInput{Kind: InputEventKind, Event: InputEvent{Code: code, Value: Release}})
}

func (e *Engine) repeat(code OsCode) {
	e.step(ReducerInput{Kind: InputEventKind, Event: InputEvent{Code: code, Value: Repeat}})
}

func (e *Engine) advance(d time.Duration) {
	e.step(ReducerInput{Kind: InputTickKind, Ticks: uint32(d.Milliseconds())})
}

func osOf(t *testing.T, k KeyCode) OsCode {
	t.Helper()
	code, ok := k.OsCode()
	require.True(t, ok, "key %v has no OsCode", k)
	return code
}

func oneRowLayout(actions ...*Action) (*Layout, map[OsCode]Coord, map[OsCode]bool) {
	layout := &Layout{
		Layers:       []Layer{{actions}},
		LayerNames:   []string{"base"},
		DefaultLayer: 0,
	}
	defsrc := make(map[OsCode]Coord)
	mapped := make(map[OsCode]bool)
	return layout, defsrc, mapped
}

func TestHoldTapPermissiveHold(t *testing.T) {
	escCode := KeyCode(KeyEsc)
	_ = escCode
	ht := &Action{Kind: ActHoldTap, HoldTap: &HoldTapAction{
		Timeout: 200 * time.Millisecond,
		Tap:     &Action{Kind: ActKeyCode, Key: KeyEsc},
		Hold:    &Action{Kind: ActKeyCode, Key: KeyLCtrl},
		Config:  HTPermissiveHold,
	}}
	other := &Action{Kind: ActKeyCode, Key: KeyA}
	layout, defsrc, mapped := oneRowLayout(ht, other)

	htCode := osOf(t, KeyEsc) // placeholder physical code for the ht cell; real code below
	_ = htCode
	physHT := OsCode(1) // arbitrary distinct physical codes for the two cells
	physOther := OsCode(2)
	defsrc[physHT] = Coord{Row: 0, Col: 0}
	defsrc[physOther] = Coord{Row: 0, Col: 1}
	mapped[physHT] = true
	mapped[physOther] = true

	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, nil, Options{})
	require.NoError(t, err)

	eng := testEngine(t, cfg)
	eng.press(physHT)
	eng.press(physOther)
	eng.release(physOther)
	eng.release(physHT)

	out := eng.PendingOutput()
	require.NotEmpty(t, out)
	// PermissiveHold: the other key's own release should resolve the
	// hold-tap to Hold (LCtrl), not Tap (Esc).
	sawCtrl := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == osOf(t, KeyLCtrl) {
			sawCtrl = true
		}
	}
	require.True(t, sawCtrl, "expected LCtrl to be emitted under PermissiveHold: %+v", out)
}

func TestHoldTapTimeoutResolvesHold(t *testing.T) {
	ht := &Action{Kind: ActHoldTap, HoldTap: &HoldTapAction{
		Timeout: 200 * time.Millisecond,
		Tap:     &Action{Kind: ActKeyCode, Key: KeyEsc},
		Hold:    &Action{Kind: ActKeyCode, Key: KeyLCtrl},
	}}
	layout, defsrc, mapped := oneRowLayout(ht)
	phys := OsCode(1)
	defsrc[phys] = Coord{Row: 0, Col: 0}
	mapped[phys] = true

	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, nil, Options{})
	require.NoError(t, err)
	eng := testEngine(t, cfg)

	eng.press(phys)
	eng.advance(250 * time.Millisecond)

	out := eng.PendingOutput()
	sawCtrl := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == osOf(t, KeyLCtrl) && ev.Value == Press {
			sawCtrl = true
		}
	}
	require.True(t, sawCtrl, "expected LCtrl press after timeout: %+v", out)
}

func TestChordLastRelease(t *testing.T) {
	layout, defsrc, mapped := oneRowLayout(
		&Action{Kind: ActKeyCode, Key: KeyJ},
		&Action{Kind: ActKeyCode, Key: KeyK},
	)
	// Chord participation keys off the *physical* KeyCode, so the
	// defsrc OsCodes must be the real scancodes for KeyJ/KeyK.
	physJ := osOf(t, KeyJ)
	physK := osOf(t, KeyK)
	defsrc[physJ] = Coord{Row: 0, Col: 0}
	defsrc[physK] = Coord{Row: 0, Col: 1}
	mapped[physJ] = true
	mapped[physK] = true

	chords := NewChordsForKeys([]*ChordDef{
		{
			Keys:    []KeyCode{KeyJ, KeyK},
			Action:  &Action{Kind: ActKeyCode, Key: KeyEsc},
			Timeout: 50 * time.Millisecond,
			Release: OnLastRelease,
		},
	})

	cfg, err := NewConfig(layout, defsrc, mapped, chords, nil, nil, Options{})
	require.NoError(t, err)
	eng := testEngine(t, cfg)

	eng.press(physJ)
	eng.press(physK)
	out := eng.PendingOutput()
	sawEsc := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == osOf(t, KeyEsc) && ev.Value == Press {
			sawEsc = true
		}
	}
	require.True(t, sawEsc, "expected Esc press on chord fire: %+v", out)

	eng.release(physJ)
	out = eng.PendingOutput()
	require.Empty(t, out, "should not release on first release with OnLastRelease: %+v", out)

	eng.release(physK)
	out = eng.PendingOutput()
	sawEscRelease := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == osOf(t, KeyEsc) && ev.Value == Release {
			sawEscRelease = true
		}
	}
	require.True(t, sawEscRelease, "expected Esc release on last release: %+v", out)
}

func TestOverrideShiftCombo(t *testing.T) {
	layout, defsrc, mapped := oneRowLayout(
		&Action{Kind: ActKeyCode, Key: KeyLShift},
		&Action{Kind: ActKeyCode, Key: Key1},
	)
	// Override matching keys off physically-held KeyCodes, so the
	// defsrc OsCodes must be the real scancodes for LShift/1.
	physShift := osOf(t, KeyLShift)
	phys1 := osOf(t, Key1)
	defsrc[physShift] = Coord{Row: 0, Col: 0}
	defsrc[phys1] = Coord{Row: 0, Col: 1}
	mapped[physShift] = true
	mapped[phys1] = true

	overrides := []OverrideRule{
		{From: []KeyCode{KeyLShift, Key1}, To: []KeyCode{KeyF1}},
	}

	cfg, err := NewConfig(layout, defsrc, mapped, nil, overrides, nil, Options{})
	require.NoError(t, err)
	eng := testEngine(t, cfg)

	eng.press(physShift)
	eng.press(phys1)
	out := eng.PendingOutput()

	sawF1 := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == osOf(t, KeyF1) && ev.Value == Press {
			sawF1 = true
		}
	}
	require.True(t, sawF1, "expected F1 from override: %+v", out)
}

func TestSequenceVisibleBackspaced(t *testing.T) {
	seqAction := &Action{Kind: ActSequence, Sequence: &SequenceAction{SequenceID: 1, Mode: SequenceVisibleBackspaced}}
	layout, defsrc, mapped := oneRowLayout(
		seqAction,
		&Action{Kind: ActKeyCode, Key: KeyA},
		&Action{Kind: ActKeyCode, Key: KeyB},
	)
	// The sequence trie keys off physical KeyCodes too, so physA/physB
	// must be the real scancodes for KeyA/KeyB.
	physLeader := osOf(t, KeyGrave)
	physA := osOf(t, KeyA)
	physB := osOf(t, KeyB)
	defsrc[physLeader] = Coord{Row: 0, Col: 0}
	defsrc[physA] = Coord{Row: 0, Col: 1}
	defsrc[physB] = Coord{Row: 0, Col: 2}
	mapped[physLeader] = true
	mapped[physA] = true
	mapped[physB] = true

	trie := NewSequenceTrie(2 * time.Second)
	trie.Add(1, []KeyCode{KeyA, KeyB}, &Action{Kind: ActKeyCode, Key: KeyEsc})

	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, trie, Options{})
	require.NoError(t, err)
	eng := testEngine(t, cfg)

	eng.press(physLeader)
	eng.release(physLeader)
	_ = eng.PendingOutput()

	eng.press(physA)
	out := eng.PendingOutput()
	require.NotEmpty(t, out, "visible-backspaced mode should pass through typed keys")

	eng.press(physB)
	out = eng.PendingOutput()

	sawEsc := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == osOf(t, KeyEsc) {
			sawEsc = true
		}
	}
	require.True(t, sawEsc, "expected Esc once the sequence completes: %+v", out)
}

func TestOneShotAppliesToNextKeyOnly(t *testing.T) {
	os1 := &Action{Kind: ActOneShot, OneShot: &OneShotAction{
		Timeout: 1 * time.Second,
		Inner:   &Action{Kind: ActKeyCode, Key: KeyLShift},
	}}
	layout, defsrc, mapped := oneRowLayout(
		os1,
		&Action{Kind: ActKeyCode, Key: KeyA},
	)
	physOS := OsCode(1)
	physA := OsCode(2)
	defsrc[physOS] = Coord{Row: 0, Col: 0}
	defsrc[physA] = Coord{Row: 0, Col: 1}
	mapped[physOS] = true
	mapped[physA] = true

	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, nil, Options{})
	require.NoError(t, err)
	eng := testEngine(t, cfg)

	eng.press(physOS)
	eng.release(physOS)
	eng.press(physA)
	eng.release(physA)

	out := eng.PendingOutput()
	sawShiftRelease := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == osOf(t, KeyLShift) && ev.Value == Release {
			sawShiftRelease = true
		}
	}
	require.True(t, sawShiftRelease, "one-shot shift should release once consumed: %+v", out)
}
