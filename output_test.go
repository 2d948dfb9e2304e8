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

func TestComposerRefcountsSharedKey(t *testing.T) {
	c := newComposer()
	c.press(KeyA)
	c.press(KeyA)
	if len(c.adds) != 1 {
		t.Fatalf("second press of an already-active key should not re-queue, got %v", c.adds)
	}
	c.release(KeyA)
	if c.isActive(KeyA) != true {
		t.Fatalf("key should still be active after one of two releases")
	}
	c.release(KeyA)
	if c.isActive(KeyA) {
		t.Fatalf("key should be inactive after balanced release")
	}
	if len(c.removes) != 1 {
		t.Fatalf("expected exactly one queued release, got %v", c.removes)
	}
}

func TestComposerReleaseOnInactiveKeyIsNoOp(t *testing.T) {
	c := newComposer()
	c.release(KeyA)
	if len(c.removes) != 0 {
		t.Fatalf("releasing a never-pressed key should not queue anything")
	}
}

func TestComposerFlushOrdersModsAndNonModsSeparately(t *testing.T) {
	eng := &Engine{composer: newComposer(), log: testNewSilentLogger(), capsWord: newCapsWordState(0, false)}
	eng.composer.press(KeyLShift)
	eng.composer.press(KeyA)
	eng.composer.flush(eng)

	out := eng.pendingOut
	if len(out) != 2 {
		t.Fatalf("expected 2 press events, got %d: %+v", len(out), out)
	}
	// Mods press before non-mods.
	shiftCode, _ := KeyLShift.OsCode()
	if out[0].Code != shiftCode {
		t.Fatalf("expected LShift press first, got %+v", out[0])
	}
}

func TestComposerFlushReleaseOrderSwapsWithOption(t *testing.T) {
	eng := &Engine{composer: newComposer(), log: testNewSilentLogger(), capsWord: newCapsWordState(0, false)}
	eng.composer.press(KeyLShift)
	eng.composer.press(KeyA)
	eng.composer.flush(eng)
	eng.pendingOut = nil

	eng.composer.release(KeyA)
	eng.composer.release(KeyLShift)
	eng.composer.reverseReleaseOrder = true
	eng.composer.flush(eng)

	out := eng.pendingOut
	if len(out) != 2 {
		t.Fatalf("expected 2 release events, got %d: %+v", len(out), out)
	}
	shiftCode, _ := KeyLShift.OsCode()
	if out[0].Code != shiftCode {
		t.Fatalf("reverseReleaseOrder should release mods first, got %+v", out[0])
	}
}

func TestIsReservedMacroCodeBounds(t *testing.T) {
	// No KeyCode in the table maps into the reserved macro OsCode
	// range, so isReservedMacroCode is exercised directly here.
	if !isReservedMacroCode(reservedMacroLow) || !isReservedMacroCode(reservedMacroHigh) {
		t.Fatalf("range bounds should be classified as reserved")
	}
	if isReservedMacroCode(reservedMacroLow - 1) {
		t.Fatalf("code just below the reserved range should not be classified as reserved")
	}
}
