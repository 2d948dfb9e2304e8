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

import "testing"

func TestHandleRepeatEmitsRecordedOutput(t *testing.T) {
	cell := &Action{Kind: ActKeyCode, Key: KeyB}
	layout, defsrc, mapped := oneRowLayout(cell)
	physA := osOf(t, KeyA)
	defsrc[physA] = Coord{Row: 0, Col: 0}
	mapped[physA] = true
	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, nil, Options{})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	eng := testEngine(t, cfg)

	eng.press(physA)
	_ = eng.PendingOutput()

	eng.repeat(physA)
	out := eng.PendingOutput()
	codeB := osOf(t, KeyB)
	sawRepeat := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == codeB && ev.Value == Repeat {
			sawRepeat = true
		}
	}
	if !sawRepeat {
		t.Fatalf("expected a Repeat for the recorded output key, got %+v", out)
	}
}

func TestHandleRepeatFallsBackToDefsrcWhenActive(t *testing.T) {
	cell := &Action{Kind: ActKeyCode, Key: KeyB}
	layout, defsrc, mapped := oneRowLayout(cell)
	physA := osOf(t, KeyA)
	defsrc[physA] = Coord{Row: 0, Col: 0}
	mapped[physA] = true
	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, nil, Options{})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	eng := testEngine(t, cfg)

	// physA presses KeyB, leaving it active in the composer. A repeat
	// reported for KeyB's own physical code (never itself a defsrc
	// entry in this layout, so KeyOutputs has no recorded entry for
	// it) must still fall back to emitting it directly, since it is
	// currently active -- matching the original's final cur_keys
	// check rather than gating on delegate-to-first-layer.
	eng.press(physA)
	_ = eng.PendingOutput()

	physB := osOf(t, KeyB)
	mapped[physB] = true // reach handleRepeat, not the unmapped pass-through
	eng.repeat(physB)
	out := eng.PendingOutput()
	sawRepeat := false
	for _, ev := range out {
		if ev.Kind == OutKey && ev.Code == physB && ev.Value == Repeat {
			sawRepeat = true
		}
	}
	if !sawRepeat {
		t.Fatalf("expected the defsrc-transparent fallback to fire for an active key, got %+v", out)
	}
}

func TestHandleRepeatSuppressedWhenNotActive(t *testing.T) {
	cell := &Action{Kind: ActKeyCode, Key: KeyB}
	layout, defsrc, mapped := oneRowLayout(cell)
	physA := osOf(t, KeyA)
	defsrc[physA] = Coord{Row: 0, Col: 0}
	mapped[physA] = true
	cfg, err := NewConfig(layout, defsrc, mapped, nil, nil, nil, Options{})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	eng := testEngine(t, cfg)

	// Nothing has been pressed, so KeyC is neither a recorded output
	// nor currently active: the repeat must be suppressed entirely.
	physC := osOf(t, KeyC)
	mapped[physC] = true // reach handleRepeat, not the unmapped pass-through
	eng.repeat(physC)
	out := eng.PendingOutput()
	if len(out) != 0 {
		t.Fatalf("expected the repeat to be suppressed, got %+v", out)
	}
}
