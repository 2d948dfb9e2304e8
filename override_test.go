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

func TestUnmodStripsModifiers(t *testing.T) {
	got := unmod([]KeyCode{KeyLShift, KeyA, KeyRCtrl, KeyB})
	want := []KeyCode{KeyA, KeyB}
	if !keysEqual(got, want) {
		t.Fatalf("unmod() = %v, want %v", got, want)
	}
}

func TestMatchOverrideIgnoresOrderByDefault(t *testing.T) {
	rule := OverrideRule{From: []KeyCode{KeyLShift, Key1}}
	if !matchOverride(rule, []KeyCode{Key1, KeyLShift}) {
		t.Fatalf("expected order-independent match")
	}
}

func TestMatchOverrideInOrderRequiresExactSuffix(t *testing.T) {
	rule := OverrideRule{From: []KeyCode{KeyLShift, Key1}, InOrder: true}
	if matchOverride(rule, []KeyCode{Key1, KeyLShift}) {
		t.Fatalf("InOrder rule should reject reversed press order")
	}
	if !matchOverride(rule, []KeyCode{KeyLShift, Key1}) {
		t.Fatalf("InOrder rule should accept the declared order")
	}
}

func TestMatchOverrideRequiresAllFromKeysHeld(t *testing.T) {
	rule := OverrideRule{From: []KeyCode{KeyLShift, Key1}}
	if matchOverride(rule, []KeyCode{KeyLShift}) {
		t.Fatalf("a partial held set should not match")
	}
}

func TestFindOverrideReturnsFirstDeclarationMatch(t *testing.T) {
	eng := &Engine{cfg: &Config{Overrides: []OverrideRule{
		{From: []KeyCode{KeyA}, To: []KeyCode{KeyB}},
		{From: []KeyCode{KeyA}, To: []KeyCode{KeyC}},
	}}}
	r := eng.findOverride([]KeyCode{KeyA})
	if r == nil || !keysEqual(r.To, []KeyCode{KeyB}) {
		t.Fatalf("expected first declared rule to win, got %v", r)
	}
}

func TestApplyAndReleaseOverrideRespectsReleaseOnActive(t *testing.T) {
	eng := &Engine{
		composer: newComposer(),
		log:      testNewSilentLogger(),
		capsWord: newCapsWordState(0, false),
		cfg:      &Config{Options: Options{OverrideReleaseOnActive: true}},
	}
	eng.composer.press(KeyLShift)
	eng.composer.press(Key1)

	rule := &OverrideRule{From: []KeyCode{KeyLShift, Key1}, To: []KeyCode{KeyF1}}
	eng.applyOverride(rule)
	if eng.composer.isActive(KeyLShift) || eng.composer.isActive(Key1) {
		t.Fatalf("OverrideReleaseOnActive should release the From keys")
	}
	if !eng.composer.isActive(KeyF1) {
		t.Fatalf("expected To key active after applyOverride")
	}

	eng.releaseOverride()
	if eng.composer.isActive(KeyF1) {
		t.Fatalf("expected To key released after releaseOverride")
	}
	if !eng.composer.isActive(KeyLShift) || !eng.composer.isActive(Key1) {
		t.Fatalf("OverrideReleaseOnActive should restore the From keys on release")
	}
}
