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

func tapDanceEngine(t *testing.T, td *TapDanceAction) (*Engine, OsCode) {
	t.Helper()
	cell := &Action{Kind: ActTapDance, TapDance: td}
	layout, defsrc, mapped := oneRowLayout(cell)
	phys := OsCode(1)
	defsrc[phys] = Coord{Row: 0, Col: 0}
	mapped[phys] = true
	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, nil, Options{})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return testEngine(t, cfg), phys
}

func TestTapDanceLazySingleTapFiresAfterTimeout(t *testing.T) {
	td := &TapDanceAction{
		Timeout: 150 * time.Millisecond,
		Actions: []*Action{
			{Kind: ActKeyCode, Key: KeyEsc},
			{Kind: ActKeyCode, Key: KeyLCtrl},
		},
	}
	eng, phys := tapDanceEngine(t, td)

	eng.press(phys)
	eng.release(phys)
	eng.advance(200 * time.Millisecond)

	out := eng.PendingOutput()
	escCode := osOf(t, KeyEsc)
	sawEsc := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == escCode && ev.Value == Press {
			sawEsc = true
		}
	}
	if !sawEsc {
		t.Fatalf("expected single-tap action (Esc) after timeout: %+v", out)
	}
}

func TestTapDanceLazyDoubleTapFiresSecondAction(t *testing.T) {
	td := &TapDanceAction{
		Timeout: 150 * time.Millisecond,
		Actions: []*Action{
			{Kind: ActKeyCode, Key: KeyEsc},
			{Kind: ActKeyCode, Key: KeyLCtrl},
		},
	}
	eng, phys := tapDanceEngine(t, td)

	eng.press(phys)
	eng.release(phys)
	eng.press(phys)
	eng.release(phys)

	out := eng.PendingOutput()
	ctrlCode := osOf(t, KeyLCtrl)
	sawCtrl := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == ctrlCode && ev.Value == Press {
			sawCtrl = true
		}
	}
	if !sawCtrl {
		t.Fatalf("expected double-tap action (LCtrl) once count reaches len(Actions): %+v", out)
	}
}

func TestTapDanceEagerFiresImmediatelyPerTap(t *testing.T) {
	td := &TapDanceAction{
		Timeout: 150 * time.Millisecond,
		Config:  TapDanceEager,
		Actions: []*Action{
			{Kind: ActKeyCode, Key: KeyEsc},
			{Kind: ActKeyCode, Key: KeyLCtrl},
		},
	}
	eng, phys := tapDanceEngine(t, td)

	eng.press(phys)
	out := eng.PendingOutput()

	escCode := osOf(t, KeyEsc)
	sawEsc := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == escCode {
			sawEsc = true
		}
	}
	if !sawEsc {
		t.Fatalf("eager tap-dance should fire the first action on the very first tap: %+v", out)
	}
}
