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

// Sink is the virtual-device emit side of the engine (spec.md §6).
// Implementations are platform-specific and out of scope for this
// package; internal/simdevice provides one for tests.
type Sink interface {
	Emit(OutputEvent) error
}

// reservedMacroCodes is the silently-dropped OS-code range historical
// to reserved macro keys (spec.md §4.10).
const (
	reservedMacroLow  OsCode = 0x2A4
	reservedMacroHigh OsCode = 0x2AD
)

func isReservedMacroCode(c OsCode) bool {
	return c >= reservedMacroLow && c <= reservedMacroHigh
}

// composer is the output composer of spec.md §4.10: it tracks the
// active multiset of logical output keys and, once per ReducerInput,
// diffs against the previous set to derive ordered press/release
// edges.
type composer struct {
	active  map[KeyCode]int
	adds    []KeyCode // newly-activated (refcount 0->1) this step, in causal order
	removes []KeyCode // newly-deactivated (refcount 1->0) this step, in causal order

	reverseReleaseOrder bool
}

func newComposer() *composer {
	return &composer{active: make(map[KeyCode]int)}
}

// press increments k's refcount; on 0->1 it is queued for emission.
func (c *composer) press(k KeyCode) {
	c.active[k]++
	if c.active[k] == 1 {
		c.adds = append(c.adds, k)
	}
}

// release decrements k's refcount; on 1->0 it is queued for
// emission and the key is dropped from the active set.
func (c *composer) release(k KeyCode) {
	if c.active[k] == 0 {
		return
	}
	c.active[k]--
	if c.active[k] == 0 {
		delete(c.active, k)
		c.removes = append(c.removes, k)
	}
}

func (c *composer) isActive(k KeyCode) bool {
	return c.active[k] > 0
}

// flush emits the accumulated adds/removes in the fixed order spec.md
// §4.10 requires: (a) releases of non-mods, (b) releases of mods, (c)
// presses of mods, (d) presses of non-mods. reverseReleaseOrder swaps
// (a) and (b).
func (c *composer) flush(eng *Engine) {
	if len(c.adds) == 0 && len(c.removes) == 0 {
		return
	}
	relNonMod, relMod := splitMods(c.removes)
	addMod, addNonMod := splitMods(c.adds)

	emitAll := func(ks []KeyCode, val KeyValue) {
		for _, k := range ks {
			eng.emitKey(k, val)
		}
	}

	if c.reverseReleaseOrder {
		emitAll(relMod, Release)
		emitAll(relNonMod, Release)
	} else {
		emitAll(relNonMod, Release)
		emitAll(relMod, Release)
	}
	emitAll(addMod, Press)
	emitAll(addNonMod, Press)

	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
}

func splitMods(ks []KeyCode) (mods, nonMods []KeyCode) {
	for _, k := range ks {
		if k.IsModifier() {
			mods = append(mods, k)
		} else {
			nonMods = append(nonMods, k)
		}
	}
	return
}

// emitKey applies the caps-word modulator (spec.md §4.11) and writes
// a single OutKey OutputEvent to the sink.
func (eng *Engine) emitKey(k KeyCode, val KeyValue) {
	if code, ok := k.OsCode(); ok && isReservedMacroCode(code) {
		return
	}
	if val == Press {
		eng.applyCapsWord(k)
	}
	code, ok := k.OsCode()
	if !ok {
		return
	}
	eng.writeOut(OutputEvent{Kind: OutKey, Code: code, Value: val})
	eng.noteKeyRepeatTarget(k, val)
}

func (eng *Engine) writeOut(ev OutputEvent) {
	if eng.sink == nil {
		eng.pendingOut = append(eng.pendingOut, ev)
		return
	}
	if err := eng.sink.Emit(ev); err != nil {
		eng.log.WithError(err).Warn("output sink write failed")
	}
}

// emitSideChannel writes a non-key OutputEvent (mouse, scroll,
// unicode, setmouse) directly, bypassing the press/release ordering
// pass and the key-repeat table, per spec.md §4.10.
func (eng *Engine) emitSideChannel(ev OutputEvent) {
	eng.writeOut(ev)
}
