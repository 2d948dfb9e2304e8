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
	"sort"
	"time"
)

// ReleaseBehavior controls when a fired chord's output is released
// (spec.md §4.6).
type ReleaseBehavior uint8

const (
	OnFirstRelease ReleaseBehavior = iota
	OnLastRelease
)

// ChordDef is one chord definition: Keys is the sorted, deduplicated
// participating key set.
type ChordDef struct {
	Keys           []KeyCode
	Action         *Action
	Timeout        time.Duration
	Release        ReleaseBehavior
	DisabledLayers map[int]bool
	Order          int // declaration order, for tie-breaking equal-size matches
}

// ChordsForKeys is the "subset map" of spec.md §3/§9: keyed by
// participating KeyCode, each bucket holds every ChordDef that key
// belongs to, enabling an O(bucket) membership test instead of a
// full scan.
type ChordsForKeys struct {
	byKey map[KeyCode][]*ChordDef
}

// NewChordsForKeys builds the subset map from a flat list of defs,
// assigning declaration order for tie-breaking.
func NewChordsForKeys(defs []*ChordDef) *ChordsForKeys {
	c := &ChordsForKeys{byKey: make(map[KeyCode][]*ChordDef)}
	for i, d := range defs {
		sorted := append([]KeyCode(nil), d.Keys...)
		sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })
		d.Keys = sorted
		d.Order = i
		for _, k := range d.Keys {
			c.byKey[k] = append(c.byKey[k], d)
		}
	}
	return c
}

func keysEqual(a, b []KeyCode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isSubset(small, big []KeyCode) bool {
	set := make(map[KeyCode]bool, len(big))
	for _, k := range big {
		set[k] = true
	}
	for _, k := range small {
		if !set[k] {
			return false
		}
	}
	return true
}

// chordWindow is the reducer's live chord-recognition state; at most
// one window is open at a time (spec.md §4.6 is silent on concurrent
// independent chord groups, so this package resolves at most one
// pending chord across the whole keyboard at a time, matching the
// original's single chord-buffer design).
type chordWindow struct {
	pressed    []KeyCode
	candidates []*ChordDef
	active     bool
	fired      *ChordDef
	heldAfter  map[KeyCode]bool // keys of a fired chord still physically held
}

var chordCoord = Coord{Row: 0xFF, Col: 0xFFFF}

func (eng *Engine) chordParticipant(k KeyCode, layer LayerIdx) []*ChordDef {
	if eng.cfg.Chords == nil {
		return nil
	}
	defs := eng.cfg.Chords.byKey[k]
	if len(defs) == 0 {
		return nil
	}
	out := make([]*ChordDef, 0, len(defs))
	for _, d := range defs {
		if d.DisabledLayers != nil && (d.DisabledLayers[int(layer)*2] || d.DisabledLayers[int(layer)*2+1]) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// handleChordPress is called for a physical press of a key that
// participates in at least one non-disabled chord. Returns true if
// the event was consumed by the chord engine (caller must not also
// run normal resolution for it yet).
func (eng *Engine) handleChordPress(k KeyCode, layer LayerIdx) bool {
	w := &eng.chord
	if !w.active {
		cands := eng.chordParticipant(k, layer)
		if len(cands) == 0 {
			return false
		}
		w.active = true
		w.pressed = []KeyCode{k}
		w.candidates = cands
		eng.armChordWindow()
		return true
	}

	// Window already open: is k part of any surviving candidate?
	stillPossible := false
	for _, d := range w.candidates {
		if containsKey(d.Keys, k) {
			stillPossible = true
			break
		}
	}
	if !stillPossible {
		eng.abandonChord(k)
		return true
	}

	w.pressed = append(w.pressed, k)
	sortedPressed := append([]KeyCode(nil), w.pressed...)
	sort.Slice(sortedPressed, func(a, b int) bool { return sortedPressed[a] < sortedPressed[b] })

	var survivors []*ChordDef
	var exact []*ChordDef
	var supersets []*ChordDef
	for _, d := range w.candidates {
		if !isSubset(sortedPressed, d.Keys) {
			continue
		}
		survivors = append(survivors, d)
		if keysEqual(d.Keys, sortedPressed) {
			exact = append(exact, d)
		} else {
			supersets = append(supersets, d)
		}
	}
	w.candidates = survivors

	if len(survivors) == 0 {
		// Every candidate eliminated: replay buffered presses.
		eng.replayChord()
		return true
	}
	if len(exact) > 0 && len(supersets) == 0 {
		eng.fireChord(bestChord(exact))
		return true
	}
	// Ambiguous (exact + wider candidates still alive, or only
	// supersets so far): keep waiting for timeout, a release, or a
	// disqualifying press.
	eng.armChordWindow()
	return true
}

func containsKey(ks []KeyCode, k KeyCode) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

func bestChord(defs []*ChordDef) *ChordDef {
	best := defs[0]
	for _, d := range defs[1:] {
		if len(d.Keys) > len(best.Keys) || (len(d.Keys) == len(best.Keys) && d.Order < best.Order) {
			best = d
		}
	}
	return best
}

func (eng *Engine) armChordWindow() {
	w := &eng.chord
	min := w.candidates[0].Timeout
	for _, d := range w.candidates[1:] {
		if d.Timeout < min {
			min = d.Timeout
		}
	}
	eng.waiting.remove(chordCoord)
	deadline := eng.ticks + uint64(min.Milliseconds())
	eng.waiting.push(chordCoord, deadline, func(e *Engine, _ Coord) {
		e.resolveChordTimeout()
	})
}

// resolveChordTimeout fires the largest exact-match chord whose key
// set is a subset of currently-pressed participating keys, replaying
// the rest as normal presses (spec.md §4.6).
func (eng *Engine) resolveChordTimeout() {
	w := &eng.chord
	if !w.active {
		return
	}
	sortedPressed := append([]KeyCode(nil), w.pressed...)
	sort.Slice(sortedPressed, func(a, b int) bool { return sortedPressed[a] < sortedPressed[b] })

	var matches []*ChordDef
	for _, d := range w.candidates {
		if isSubset(d.Keys, sortedPressed) {
			matches = append(matches, d)
		}
	}
	if len(matches) == 0 {
		eng.replayChord()
		return
	}
	best := bestChord(matches)
	leftover := make([]KeyCode, 0, len(w.pressed))
	for _, k := range w.pressed {
		if !containsKey(best.Keys, k) {
			leftover = append(leftover, k)
		}
	}
	eng.fireChord(best)
	for _, k := range leftover {
		eng.resolveKeyPress(k, eng.coordFor(k))
	}
}

// abandonChord is called when a non-participating key arrives mid-
// window: the buffered presses replay in order, then the
// disqualifying key is resolved normally too.
func (eng *Engine) abandonChord(trigger KeyCode) {
	eng.replayChord()
	eng.resolveKeyPress(trigger, eng.coordFor(trigger))
}

func (eng *Engine) replayChord() {
	w := &eng.chord
	pressed := w.pressed
	eng.waiting.remove(chordCoord)
	*w = chordWindow{}
	for _, k := range pressed {
		eng.resolveKeyPress(k, eng.coordFor(k))
	}
}

func (eng *Engine) fireChord(d *ChordDef) {
	w := &eng.chord
	held := make(map[KeyCode]bool, len(d.Keys))
	for _, k := range d.Keys {
		held[k] = true
	}
	eng.waiting.remove(chordCoord)
	*w = chordWindow{fired: d, heldAfter: held}
	eng.applyResolvedAction(d.Action, chordCoord)
}

// handleChordRelease processes the release of a key that is either
// still pending in an open window or part of an already-fired
// chord's key set. Returns true if consumed.
func (eng *Engine) handleChordRelease(k KeyCode) bool {
	w := &eng.chord
	if w.active && w.fired == nil {
		for i, p := range w.pressed {
			if p == k {
				w.pressed = append(w.pressed[:i], w.pressed[i+1:]...)
				break
			}
		}
		if len(w.pressed) == 0 {
			eng.waiting.remove(chordCoord)
			*w = chordWindow{}
		}
		return true
	}
	if w.fired != nil && w.heldAfter[k] {
		switch w.fired.Release {
		case OnFirstRelease:
			delete(w.heldAfter, k)
			if len(w.heldAfter) == len(w.fired.Keys)-1 {
				eng.releaseResolvedAction(w.fired.Action, chordCoord)
			}
		case OnLastRelease:
			delete(w.heldAfter, k)
			if len(w.heldAfter) == 0 {
				eng.releaseResolvedAction(w.fired.Action, chordCoord)
			}
		}
		if len(w.heldAfter) == 0 {
			*w = chordWindow{}
		}
		return true
	}
	return false
}
