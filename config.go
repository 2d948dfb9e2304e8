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

// oneShotMaxActive is the baseline one-shot concurrency the reducer
// is sized around. SPEC_FULL.md §5 resolves the original's ambiguous
// MultiKeyBuffer capacity as a hard limit of oneShotMaxActive + 4;
// oneShotHardCap is that actual runtime bound, enforced both here
// (statically, at config-build time) and in oneShotSet.add (at
// runtime, as a backstop against layouts this static check can't
// fully characterize, e.g. one-shots nested behind a tap-dance).
const (
	oneShotMaxActive = 8
	oneShotHardCap   = oneShotMaxActive + 4
)

// ProcessUnmappedPolicy controls how OS-codes outside mapped_keys are
// handled (spec.md §6 options.process_unmapped_keys).
type ProcessUnmappedPolicy uint8

const (
	ProcessUnmappedNone ProcessUnmappedPolicy = iota // pass through unchanged
	ProcessUnmappedAll
	ProcessUnmappedAllExcept
)

// Options mirrors spec.md §6's options bag.
type Options struct {
	ConcurrentTapHold       bool
	ProcessUnmappedKeys     ProcessUnmappedPolicy
	ProcessUnmappedExcept   map[OsCode]bool
	DelegateToFirstLayer    bool
	BlockUnmappedKeys       bool
	SequenceInputMode       SequenceInputMode
	OverrideReleaseOnActive bool
	AllowHardwareRepeat     bool
	StartDelay              int // ms
	EnableCmd               bool
	ReverseReleaseOrder     bool
}

// Config is the compiled form exposed to the core (spec.md §6). The
// S-expression parser that produces it is out of scope; tests in this
// package build Config values directly in Go.
type Config struct {
	Layout      *Layout
	MappedKeys  map[OsCode]bool
	KeyOutputs  []map[OsCode][]OsCode // per layer
	Chords      *ChordsForKeys
	Overrides   []OverrideRule
	Sequences   *SequenceTrie
	Options     Options

	// DefsrcCoord maps a physical OsCode to its row-0 coordinate, so
	// the reducer can translate incoming capture events into layout
	// lookups without the (out-of-scope) parser's geometry.
	DefsrcCoord map[OsCode]Coord

	// FakeKeys maps a virtual-key name to the (row >= 1) coordinate
	// that represents it, for ActOnFakeKey addressing (spec.md §4).
	FakeKeys map[string]Coord

	DelegateToFirstLayer bool
}

// fakeKeyCoord resolves a virtual-key name to its coordinate.
func (cfg *Config) fakeKeyCoord(name string) (Coord, bool) {
	c, ok := cfg.FakeKeys[name]
	return c, ok
}

// NewConfig validates layout/chords/sequences and precomputes the
// key-outputs table, returning ErrBadConfig wrapped with context on
// any violation (spec.md §8 boundary behaviors).
func NewConfig(layout *Layout, defsrc map[OsCode]Coord, mapped map[OsCode]bool, chords *ChordsForKeys, overrides []OverrideRule, seqs *SequenceTrie, opts Options) (*Config, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if chords != nil {
		for key, defs := range chords.byKey {
			for _, d := range defs {
				if len(d.Keys) < 2 {
					return nil, fmt.Errorf("%w: chord on %v has fewer than 2 keys", ErrBadConfig, key)
				}
			}
		}
	}
	if n := countOneShotSites(layout); n > oneShotHardCap {
		return nil, fmt.Errorf("%w: layout declares %d one-shot actions, exceeding the %d-active hard cap", ErrBadConfig, n, oneShotHardCap)
	}

	cfg := &Config{
		Layout:               layout,
		MappedKeys:           mapped,
		Chords:               chords,
		Overrides:            overrides,
		Sequences:            seqs,
		Options:              opts,
		DefsrcCoord:          defsrc,
		DelegateToFirstLayer: opts.DelegateToFirstLayer || layout.DelegateFirst,
	}
	cfg.KeyOutputs = cfg.buildKeyOutputs()
	return cfg, nil
}

// countOneShotSites counts every distinct ActOneShot action reachable
// from the layout, recursing into hold-tap/fork/switch/tap-dance
// payloads the same way Layout.Validate does. This is an upper bound
// on how many one-shots could ever be simultaneously armed (one per
// declared site), used to statically reject configs that could
// exceed oneShotHardCap at config-build time rather than only
// discovering it at runtime.
func countOneShotSites(layout *Layout) int {
	seen := map[*Action]bool{}
	count := 0
	var walk func(a *Action)
	walk = func(a *Action) {
		if a == nil || seen[a] {
			return
		}
		seen[a] = true
		switch a.Kind {
		case ActOneShot:
			count++
			if a.OneShot != nil {
				walk(a.OneShot.Inner)
			}
		case ActHoldTap:
			if a.HoldTap != nil {
				walk(a.HoldTap.Tap)
				walk(a.HoldTap.Hold)
				walk(a.HoldTap.TimeoutAction)
			}
		case ActTapDance:
			if a.TapDance != nil {
				for _, inner := range a.TapDance.Actions {
					walk(inner)
				}
			}
		case ActFork:
			if a.Fork != nil {
				walk(a.Fork.Left)
				walk(a.Fork.Right)
			}
		case ActSwitch:
			if a.Switch != nil {
				for _, c := range a.Switch.Cases {
					walk(c.Action)
				}
			}
		}
	}
	for li := range layout.Layers {
		for _, row := range layout.Layers[li] {
			for _, a := range row {
				walk(a)
			}
		}
	}
	return count
}

// buildKeyOutputs walks every defsrc (row 0) cell of every layer and
// records the set of OsCodes the resolved action could possibly
// emit, recursing into hold-tap/fork/switch/tap-dance/one-shot
// payloads (spec.md §3 "Key outputs table").
func (cfg *Config) buildKeyOutputs() []map[OsCode][]OsCode {
	table := make([]map[OsCode][]OsCode, len(cfg.Layout.Layers))
	for in, coord := range cfg.DefsrcCoord {
		for li := range cfg.Layout.Layers {
			a := cfg.Layout.At(LayerIdx(li), coord)
			for _, out := range possibleOutputs(a) {
				recordKeyOutput(table, li, in, out)
			}
		}
	}
	return table
}

// possibleOutputs returns every OsCode an action could emit,
// deduplicated, descending into compound actions.
func possibleOutputs(a *Action) []OsCode {
	seen := map[OsCode]bool{}
	var out []OsCode
	add := func(k KeyCode) {
		if code, ok := k.OsCode(); ok && !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	var walk func(a *Action)
	walk = func(a *Action) {
		if a == nil {
			return
		}
		switch a.Kind {
		case ActKeyCode:
			add(a.Key)
		case ActMultipleKeyCodes:
			for _, k := range a.Keys {
				add(k)
			}
		case ActHoldTap:
			if a.HoldTap != nil {
				walk(a.HoldTap.Tap)
				walk(a.HoldTap.Hold)
				walk(a.HoldTap.TimeoutAction)
			}
		case ActOneShot:
			if a.OneShot != nil {
				walk(a.OneShot.Inner)
			}
		case ActTapDance:
			if a.TapDance != nil {
				for _, inner := range a.TapDance.Actions {
					walk(inner)
				}
			}
		case ActFork:
			if a.Fork != nil {
				walk(a.Fork.Left)
				walk(a.Fork.Right)
			}
		case ActSwitch:
			if a.Switch != nil {
				for _, c := range a.Switch.Cases {
					walk(c.Action)
				}
			}
		}
	}
	walk(a)
	return out
}
