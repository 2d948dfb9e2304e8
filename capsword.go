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

// capsWordState is the caps-word modulator of spec.md §4.11: while
// active, a synthetic left-shift is held for the duration of the
// word, released automatically on a non-alphanumeric key, an
// explicit toggle-off, or an idle timeout.
type capsWordState struct {
	active     bool
	lastTick   uint64
	idleTicks  uint64
	includeNum bool
}

func newCapsWordState(idle time.Duration, includeNum bool) *capsWordState {
	return &capsWordState{idleTicks: uint64(idle.Milliseconds()), includeNum: includeNum}
}

// capsWordAlpha is the closed set of letter keys caps-word shifts.
var capsWordAlpha = func() map[KeyCode]bool {
	m := make(map[KeyCode]bool, 26)
	for k := KeyA; k <= KeyZ; k++ {
		m[k] = true
	}
	return m
}()

var capsWordDigits = func() map[KeyCode]bool {
	m := make(map[KeyCode]bool, 10)
	for k := Key1; k <= Key0; k++ {
		m[k] = true
	}
	return m
}()

// ToggleCapsWord flips caps-word on or off; used by an ActCustom or a
// dedicated toggle-caps-word action cell.
func (eng *Engine) ToggleCapsWord() {
	if eng.capsWord.active {
		eng.deactivateCapsWord()
		return
	}
	eng.activateCapsWord()
}

func (eng *Engine) activateCapsWord() {
	if eng.capsWord.active {
		return
	}
	eng.capsWord.active = true
	eng.capsWord.lastTick = eng.ticks
	if code, ok := KeyLShift.OsCode(); ok {
		eng.writeOut(OutputEvent{Kind: OutKey, Code: code, Value: Press})
	}
}

func (eng *Engine) deactivateCapsWord() {
	if !eng.capsWord.active {
		return
	}
	eng.capsWord.active = false
	if code, ok := KeyLShift.OsCode(); ok {
		eng.writeOut(OutputEvent{Kind: OutKey, Code: code, Value: Release})
	}
}

// applyCapsWord is invoked by the composer for every key press
// (spec.md §4.11): it deactivates caps-word (releasing the synthetic
// shift) as soon as a non-alphabetic (and, unless configured
// otherwise, non-numeric) key presses.
func (eng *Engine) applyCapsWord(k KeyCode) {
	if !eng.capsWord.active {
		return
	}
	eng.capsWord.lastTick = eng.ticks
	if capsWordAlpha[k] || (eng.capsWord.includeNum && capsWordDigits[k]) {
		return
	}
	eng.deactivateCapsWord()
}

// tickCapsWord checks the idle timeout; called once per tick
// (spec.md §4.11).
func (eng *Engine) tickCapsWord() {
	if !eng.capsWord.active || eng.capsWord.idleTicks == 0 {
		return
	}
	if eng.ticks-eng.capsWord.lastTick >= eng.capsWord.idleTicks {
		eng.deactivateCapsWord()
	}
}
