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

import "fmt"

// Coord is the physical (row, column) address of a key in the layout
// grid. Row 0 is the physical defsrc row; rows >= 1 are virtual-key
// rows (spec.md §3).
type Coord struct {
	Row uint8
	Col uint16
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Layer is one plane of the layout table, shape R x C.
type Layer [][]*Action

// LayerIdx indexes into Layout.Layers.
type LayerIdx int

// Layout is the immutable, N-dimensional action table compiled by
// the (out-of-scope) config loader and shared read-only by every
// reducer that holds it. The held-layer stack is NOT part of this
// struct: it is per-engine mutable state living in the reducer
// (spec.md §3's "Layout and all tables are created once per config
// load, shared as immutable").
type Layout struct {
	Layers        []Layer
	LayerNames    []string
	DefaultLayer  LayerIdx
	DelegateFirst bool // delegate-to-first-layer fallback
}

// Rows reports the row count, derived from layer 0; all layers share
// shape by construction.
func (l *Layout) Rows() int {
	if len(l.Layers) == 0 {
		return 0
	}
	return len(l.Layers[0])
}

// Cols reports the column count of the given row in layer 0.
func (l *Layout) Cols(row int) int {
	if len(l.Layers) == 0 || row >= len(l.Layers[0]) {
		return 0
	}
	return len(l.Layers[0][row])
}

// At returns the raw action at layer/coord without Trans resolution,
// or NoOp if out of bounds.
func (l *Layout) At(layer LayerIdx, c Coord) *Action {
	if int(layer) < 0 || int(layer) >= len(l.Layers) {
		return noopAction
	}
	rows := l.Layers[layer]
	if int(c.Row) >= len(rows) {
		return noopAction
	}
	row := rows[c.Row]
	if int(c.Col) >= len(row) {
		return noopAction
	}
	a := row[c.Col]
	if a == nil {
		return noopAction
	}
	return a
}

// heldStack is the per-engine stack of momentarily-active layers,
// ordered oldest-first; resolve walks it top-to-bottom (most recent
// first).
type heldStack struct {
	layers []LayerIdx
}

func (h *heldStack) push(l LayerIdx) { h.layers = append(h.layers, l) }

// pop removes the most recent occurrence of l (LIFO w.r.t. that
// layer, not necessarily the top of the stack: releasing a
// LayerWhileHeld key whose push has since been buried by another
// still needs to remove specifically that activation).
func (h *heldStack) pop(l LayerIdx) {
	for i := len(h.layers) - 1; i >= 0; i-- {
		if h.layers[i] == l {
			h.layers = append(h.layers[:i], h.layers[i+1:]...)
			return
		}
	}
}

// resolve implements spec.md §4.2: walk held_stack top-to-bottom,
// falling through to default_layer, optionally to layer 0.
func (l *Layout) resolve(h *heldStack, defaultLayer LayerIdx, c Coord) *Action {
	for i := len(h.layers) - 1; i >= 0; i-- {
		a := l.At(h.layers[i], c)
		if a.Kind != ActTrans {
			return a
		}
	}
	a := l.At(defaultLayer, c)
	if a.Kind != ActTrans {
		return a
	}
	if l.DelegateFirst {
		a = l.At(0, c)
		if a.Kind != ActTrans {
			return a
		}
	}
	return noopAction
}

// Validate checks the per-action structural invariants rejected at
// load (spec.md §8 boundary behaviors): tap-dance with no actions and
// hold-tap, fork, switch or one-shot actions missing their payload.
// Chords with fewer than two keys and the one-shot buffer
// hard-capacity bound are checked by NewConfig, not here. It walks
// every action reachable from the
// layout's cells, recursing into hold-tap tap/hold and fork
// left/right so nested actions are checked too.
func (l *Layout) Validate() error {
	seen := map[*Action]bool{}
	var walk func(a *Action) error
	walk = func(a *Action) error {
		if a == nil || seen[a] {
			return nil
		}
		seen[a] = true
		switch a.Kind {
		case ActTapDance:
			if a.TapDance == nil || len(a.TapDance.Actions) == 0 {
				return fmt.Errorf("%w: tap-dance with zero actions", ErrBadConfig)
			}
			for _, inner := range a.TapDance.Actions {
				if err := walk(inner); err != nil {
					return err
				}
			}
		case ActHoldTap:
			if a.HoldTap == nil {
				return fmt.Errorf("%w: hold-tap missing payload", ErrBadConfig)
			}
			if err := walk(a.HoldTap.Tap); err != nil {
				return err
			}
			if err := walk(a.HoldTap.Hold); err != nil {
				return err
			}
			if err := walk(a.HoldTap.TimeoutAction); err != nil {
				return err
			}
		case ActFork:
			if a.Fork == nil {
				return fmt.Errorf("%w: fork missing payload", ErrBadConfig)
			}
			if err := walk(a.Fork.Left); err != nil {
				return err
			}
			if err := walk(a.Fork.Right); err != nil {
				return err
			}
		case ActSwitch:
			if a.Switch == nil {
				return fmt.Errorf("%w: switch missing payload", ErrBadConfig)
			}
			for _, c := range a.Switch.Cases {
				if err := walk(c.Action); err != nil {
					return err
				}
			}
		case ActOneShot:
			if a.OneShot == nil {
				return fmt.Errorf("%w: one-shot missing payload", ErrBadConfig)
			}
			if err := walk(a.OneShot.Inner); err != nil {
				return err
			}
		}
		return nil
	}
	for li := range l.Layers {
		for _, row := range l.Layers[li] {
			for _, a := range row {
				if err := walk(a); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
