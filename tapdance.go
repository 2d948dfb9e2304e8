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

// beginTapDance starts (or continues) a tap-dance count for coord. On
// the first press of a fresh sequence it allocates a State; on a
// repeat press within the previous window it increments the count and
// re-arms the timeout (spec.md §4.5).
func (eng *Engine) beginTapDance(td *TapDanceAction, coord Coord) {
	st, ok := eng.states.get(coord)
	if !ok || st.Kind != StateTapDance {
		st = &State{
			Kind:          StateTapDance,
			Coord:         coord,
			PressTick:     eng.ticks,
			Action:        &Action{Kind: ActTapDance, TapDance: td},
			TapDanceCount: 0,
		}
		eng.states.put(st)
	} else {
		eng.waiting.remove(coord)
	}
	st.TapDanceCount++
	st.LastTick = eng.ticks

	if td.Config == TapDanceEager {
		idx := st.TapDanceCount - 1
		if idx >= len(td.Actions)-1 {
			eng.fireTapDance(st, len(td.Actions)-1)
			return
		}
		eng.applyResolvedAction(td.Actions[idx], coord)
		eng.releaseResolvedAction(td.Actions[idx], coord)
		eng.states.put(st) // the inner action's release removed coord's State
	}

	if st.TapDanceCount >= len(td.Actions) {
		eng.fireTapDance(st, len(td.Actions)-1)
		return
	}

	deadline := eng.ticks + uint64(td.Timeout.Milliseconds())
	eng.waiting.push(coord, deadline, func(e *Engine, c Coord) {
		e.resolveTapDanceTimeout(c)
	})
}

func (eng *Engine) resolveTapDanceTimeout(coord Coord) {
	st, ok := eng.states.get(coord)
	if !ok || st.Kind != StateTapDance {
		return
	}
	if st.Action.TapDance.Config == TapDanceEager {
		eng.states.remove(coord)
		return
	}
	eng.fireTapDance(st, st.TapDanceCount-1)
}

// fireTapDance commits the lazy (count-gated) variant: the action
// selected by idx is applied and, since tap-dance has no independent
// physical hold, immediately scheduled for release on this same tick
// unless it is itself a held-style action (layer/hold-tap), in which
// case it stays active until the tap-dance coordinate's own physical
// release arrives.
func (eng *Engine) fireTapDance(st *State, idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(st.Action.TapDance.Actions) {
		idx = len(st.Action.TapDance.Actions) - 1
	}
	a := st.Action.TapDance.Actions[idx]
	st.Kind = StateHoldTapHold // reuse hold-tap release bookkeeping: stays until physical release
	st.Action = &Action{Kind: ActHoldTap, HoldTap: &HoldTapAction{Tap: a, Hold: a}}
	eng.applyTapHoldLeaf(st, a)
}
