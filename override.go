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

import "sort"

// OverrideRule rewrites one logical key combination into another
// before layout resolution (spec.md §4.7): whenever the most recently
// pressed len(From) held keys are exactly From (in the given order when
// InOrder is set), the composer presses To in place of the last-pressed
// key's own action.
type OverrideRule struct {
	From    []KeyCode
	To      []KeyCode
	InOrder bool // require From to be pressed in the order given
}

func sortedCopy(ks []KeyCode) []KeyCode {
	out := append([]KeyCode(nil), ks...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// unmod strips modifier keycodes from a slice (spec.md §4.7 "unmod"
// helper). matchOverride does not call it.
func unmod(ks []KeyCode) []KeyCode {
	out := make([]KeyCode, 0, len(ks))
	for _, k := range ks {
		if !k.IsModifier() {
			out = append(out, k)
		}
	}
	return out
}

// matchOverride reports whether held (the physically-down KeyCode
// set, in press order) satisfies rule.From, honoring InOrder.
func matchOverride(rule OverrideRule, held []KeyCode) bool {
	if len(held) < len(rule.From) {
		return false
	}
	if rule.InOrder {
		tail := held[len(held)-len(rule.From):]
		for i, k := range rule.From {
			if tail[i] != k {
				return false
			}
		}
		return true
	}
	want := sortedCopy(rule.From)
	have := sortedCopy(held[len(held)-len(rule.From):])
	return keysEqual(want, have)
}

// findOverride returns the first rule (declaration order) whose From
// set matches the currently-held physical keys, or nil.
func (eng *Engine) findOverride(held []KeyCode) *OverrideRule {
	for i := range eng.cfg.Overrides {
		r := &eng.cfg.Overrides[i]
		if matchOverride(*r, held) {
			return r
		}
	}
	return nil
}

// applyOverride swaps the composer's currently-active From keys for
// To, honoring Options.OverrideReleaseOnActive (spec.md §4.7): when
// set, the From keys are released before To is pressed; otherwise To
// is layered on top of the From keys already held, which release
// naturally on physical release.
func (eng *Engine) applyOverride(rule *OverrideRule) {
	if eng.cfg.Options.OverrideReleaseOnActive {
		for _, k := range rule.From {
			eng.composer.release(k)
		}
	}
	for _, k := range rule.To {
		eng.composer.press(k)
	}
	eng.activeOverride = rule
}

func (eng *Engine) releaseOverride() {
	if eng.activeOverride == nil {
		return
	}
	for _, k := range eng.activeOverride.To {
		eng.composer.release(k)
	}
	if eng.cfg.Options.OverrideReleaseOnActive {
		for _, k := range eng.activeOverride.From {
			eng.composer.press(k)
		}
	}
	eng.activeOverride = nil
}
