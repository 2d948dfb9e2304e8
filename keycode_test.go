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

func TestOsCodeKeyCodeRoundTrip(t *testing.T) {
	for _, p := range keycodeTable {
		code, ok := p.kc.OsCode()
		if !ok {
			t.Fatalf("KeyCode %v has no assigned OsCode", p.kc)
		}
		if code != p.os {
			t.Fatalf("KeyCode %v OsCode = %v, want %v", p.kc, code, p.os)
		}
		if got := code.KeyCode(); got != p.kc {
			t.Fatalf("OsCode %v KeyCode = %v, want %v", code, got, p.kc)
		}
	}
}

func TestOsCodeReservedOutOfRange(t *testing.T) {
	if (OsCodeMax + 1).KeyCode() != KeyReserved {
		t.Fatalf("out-of-range OsCode should resolve to KeyReserved")
	}
	if (OsCodeMax + 1).Valid() {
		t.Fatalf("OsCodeMax+1 should be invalid")
	}
}

func TestKeyReservedHasNoOsCode(t *testing.T) {
	if _, ok := KeyReserved.OsCode(); ok {
		t.Fatalf("KeyReserved should have no assigned OsCode")
	}
}

func TestIsModifier(t *testing.T) {
	mods := []KeyCode{KeyLCtrl, KeyRCtrl, KeyLShift, KeyRShift, KeyLAlt, KeyRAlt, KeyLMeta, KeyRMeta}
	for _, m := range mods {
		if !m.IsModifier() {
			t.Errorf("%v should be a modifier", m)
		}
	}
	if KeyA.IsModifier() {
		t.Fatalf("KeyA should not be a modifier")
	}
}
