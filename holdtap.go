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

// beginHoldTap starts the pending window for a hold-tap cell
// (spec.md §4.3). The timeout is scheduled on the waiting queue;
// subsequent events may short-circuit it. tap-hold-interval(n)
// chains off a prior resolution at the same Coord: if that prior tap
// released within n ms of this press, the tap resolves immediately
// instead of racing a fresh timeout (the original's interval-chaining
// behavior for fast repeated taps of a hold-tap key).
func (eng *Engine) beginHoldTap(ht *HoldTapAction, coord Coord) {
	st := &State{
		Kind:      StateHoldTapPending,
		Coord:     coord,
		PressTick: eng.ticks,
		LastTick:  eng.ticks,
		Action:    &Action{Kind: ActHoldTap, HoldTap: ht},
	}
	if prev, ok := eng.pendingTapHoldInterval[coord]; ok {
		delete(eng.pendingTapHoldInterval, coord)
		if ht.TapHoldInterval > 0 && eng.ticks-prev.HoldTapLastRel <= uint64(ht.TapHoldInterval.Milliseconds()) {
			eng.states.put(st)
			eng.commitHoldTapTap(st)
			return
		}
	}
	eng.states.put(st)
	deadline := eng.ticks + uint64(ht.Timeout.Milliseconds())
	_ = eng.waiting.push(coord, deadline, func(e *Engine, c Coord) {
		e.resolveHoldTapTimeout(c)
	})
}

func (eng *Engine) resolveHoldTapTimeout(coord Coord) {
	st, ok := eng.states.get(coord)
	if !ok || st.Kind != StateHoldTapPending {
		return
	}
	ht := st.Action.HoldTap
	switch ht.TimeoutBehavior {
	case HTTimeoutTap:
		eng.commitHoldTapTap(st)
	case HTTimeoutCustom:
		eng.commitHoldTapCustom(st, ht.TimeoutAction)
	default:
		eng.commitHoldTapHold(st)
	}
}

func (eng *Engine) commitHoldTapTap(st *State) {
	st.Kind = StateHoldTapTap
	eng.applyTapHoldLeaf(st, st.Action.HoldTap.Tap)
}

func (eng *Engine) commitHoldTapHold(st *State) {
	st.Kind = StateHoldTapHold
	eng.applyTapHoldLeaf(st, st.Action.HoldTap.Hold)
}

func (eng *Engine) commitHoldTapCustom(st *State, a *Action) {
	st.Kind = StateHoldTapHold
	eng.applyTapHoldLeaf(st, a)
}

// applyTapHoldLeaf materializes the tap or hold leaf action (a single
// KeyCode, MultipleKeyCodes, or Custom) onto the composer and records
// which KeyCodes must be released when this coordinate releases.
func (eng *Engine) applyTapHoldLeaf(st *State, leaf *Action) {
	if leaf == nil {
		return
	}
	switch leaf.Kind {
	case ActKeyCode:
		st.Key = leaf.Key
		eng.composer.press(leaf.Key)
	case ActMultipleKeyCodes:
		st.Keys = leaf.Keys
		for _, k := range leaf.Keys {
			eng.composer.press(k)
		}
	default:
		eng.applyResolvedAction(leaf, st.Coord)
	}
}

// releaseHoldTapLeaf is the inverse of applyTapHoldLeaf.
func (eng *Engine) releaseHoldTapLeaf(st *State) {
	if st.Key != KeyReserved || len(st.Keys) > 0 {
		if st.Key != KeyReserved {
			eng.composer.release(st.Key)
		}
		for _, k := range st.Keys {
			eng.composer.release(k)
		}
		return
	}
	eng.waiting.remove(st.Coord)
}

// handleHoldTapOtherPress implements the HoldOnOtherKeyPress
// early-resolution rule (spec.md §4.3): another coordinate's press
// while this hold-tap is pending triggers Hold early under that
// Config, and re-arms the timeout when ResetTimeoutOnTap is set.
// PermissiveHold is resolved on the other key's release instead.
func (eng *Engine) handleHoldTapOtherPress(pendingCoord Coord) {
	st, ok := eng.states.get(pendingCoord)
	if !ok || st.Kind != StateHoldTapPending {
		return
	}
	ht := st.Action.HoldTap
	if ht.Config == HTHoldOnOtherKeyPress {
		eng.waiting.remove(pendingCoord)
		eng.commitHoldTapHold(st)
	}
	if ht.ResetTimeoutOnTap {
		eng.waiting.remove(pendingCoord)
		deadline := eng.ticks + uint64(ht.Timeout.Milliseconds())
		_ = eng.waiting.push(pendingCoord, deadline, func(e *Engine, c Coord) {
			e.resolveHoldTapTimeout(c)
		})
	}
}

// handleHoldTapOtherRelease implements PermissiveHold and the various
// release-keys/except-keys rules (spec.md §4.3): certain other
// coordinates' releases resolve a pending hold-tap to Hold early.
func (eng *Engine) handleHoldTapOtherRelease(pendingCoord Coord, releasedKey KeyCode) {
	st, ok := eng.states.get(pendingCoord)
	if !ok || st.Kind != StateHoldTapPending {
		return
	}
	ht := st.Action.HoldTap
	trigger := false
	switch ht.Config {
	case HTPermissiveHold:
		trigger = true
	case HTReleaseKeys:
		trigger = ht.ReleaseKeys[releasedKey]
	case HTExceptKeys:
		trigger = !ht.ExceptKeys[releasedKey]
	case HTReleaseTapKeysRelease:
		if ht.ExceptKeys[releasedKey] {
			eng.waiting.remove(pendingCoord)
			eng.commitHoldTapTap(st)
			return
		}
		trigger = ht.ReleaseKeys[releasedKey]
	}
	if trigger {
		eng.waiting.remove(pendingCoord)
		eng.commitHoldTapHold(st)
	}
}

// resolvePendingOwnRelease handles the release of the hold-tap's own
// physical coordinate while still pending: tap-hold-interval(n)
// short-circuits a fresh same-key press within n ms of this release
// to always emit Tap.
func (eng *Engine) resolvePendingOwnRelease(st *State) {
	eng.commitHoldTapTap(st)
	st.HoldTapLastRel = eng.ticks
	eng.pendingTapHoldInterval[st.Coord] = st
}
