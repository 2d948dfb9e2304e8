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
)

func macroTestEngine(t *testing.T, ma *Action) (*Engine, OsCode) {
	t.Helper()
	layout, defsrc, mapped := oneRowLayout(ma)
	phys := OsCode(1)
	defsrc[phys] = Coord{Row: 0, Col: 0}
	mapped[phys] = true
	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, nil, Options{})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return testEngine(t, cfg), phys
}

func TestMacroPlaysPressReleaseEventsInOrder(t *testing.T) {
	action := &Action{Kind: ActMacro, Macro: &MacroAction{Events: []MacroEvent{
		{Kind: MacroPressRelease, Key: KeyA},
		{Kind: MacroPressRelease, Key: KeyB},
	}}}
	eng, phys := macroTestEngine(t, action)
	eng.press(phys)

	out := eng.PendingOutput()
	codeA, codeB := osOf(t, KeyA), osOf(t, KeyB)
	var seq []OsCode
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Value == Press {
			seq = append(seq, ev.Code)
		}
	}
	if len(seq) != 2 || seq[0] != codeA || seq[1] != codeB {
		t.Fatalf("expected A then B press, got %v", seq)
	}
}

func TestMacroDelayDefersRemainingEvents(t *testing.T) {
	action := &Action{Kind: ActMacro, Macro: &MacroAction{Events: []MacroEvent{
		{Kind: MacroPressRelease, Key: KeyA},
		{Kind: MacroDelay, Delay: 100 * time.Millisecond},
		{Kind: MacroPressRelease, Key: KeyB},
	}}}
	eng, phys := macroTestEngine(t, action)
	eng.press(phys)

	out := eng.PendingOutput()
	codeB := osOf(t, KeyB)
	for _, ev := range out {
		if ev.Code == codeB {
			t.Fatalf("B should not fire before the delay elapses: %+v", out)
		}
	}

	eng.advance(150 * time.Millisecond)
	out = eng.PendingOutput()
	sawB := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == codeB && ev.Value == Press {
			sawB = true
		}
	}
	if !sawB {
		t.Fatalf("expected B after the delay elapses: %+v", out)
	}
}

func TestMacroCancelOnOtherKeyPress(t *testing.T) {
	action := &Action{Kind: ActMacro, Macro: &MacroAction{
		CancelOnPress: true,
		Events: []MacroEvent{
			{Kind: MacroPress, Key: KeyA},
			{Kind: MacroDelay, Delay: time.Second},
			{Kind: MacroRelease, Key: KeyA},
		},
	}}
	other := &Action{Kind: ActKeyCode, Key: KeyB}
	layout, defsrc, mapped := oneRowLayout(action, other)
	physMacro := OsCode(1)
	physOther := OsCode(2)
	defsrc[physMacro] = Coord{Row: 0, Col: 0}
	defsrc[physOther] = Coord{Row: 0, Col: 1}
	mapped[physMacro] = true
	mapped[physOther] = true
	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, nil, Options{})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	eng := testEngine(t, cfg)

	eng.press(physMacro)
	_ = eng.PendingOutput()
	if !eng.macro.running() {
		t.Fatalf("macro should be mid-playback, waiting on its delay")
	}

	eng.press(physOther)
	if eng.macro.running() {
		t.Fatalf("a macro with CancelOnPress should abort on another key's press")
	}

	out := eng.PendingOutput()
	codeA := osOf(t, KeyA)
	for _, ev := range out {
		if ev.Code == codeA && ev.Value == Release {
			return
		}
	}
	t.Fatalf("cancelling should release the key the macro left held: %+v", out)
}

func TestMacroReleaseCancelLeavesHeldPressDangling(t *testing.T) {
	action := &Action{Kind: ActMacro, Macro: &MacroAction{
		ReleaseCancel: true,
		Events: []MacroEvent{
			{Kind: MacroPress, Key: KeyA},
			{Kind: MacroDelay, Delay: time.Second},
			{Kind: MacroRelease, Key: KeyA},
		},
	}}
	eng, phys := macroTestEngine(t, action)

	eng.press(phys)
	_ = eng.PendingOutput()
	if !eng.macro.running() {
		t.Fatalf("macro should be mid-playback, waiting on its delay")
	}

	eng.release(phys)
	if eng.macro.running() {
		t.Fatalf("ReleaseCancel should stop playback on the activating key's release")
	}

	out := eng.PendingOutput()
	codeA := osOf(t, KeyA)
	for _, ev := range out {
		if ev.Code == codeA && ev.Value == Release {
			t.Fatalf("ReleaseCancel must not release an already-pressed key with no matching Release: %+v", out)
		}
	}
}
