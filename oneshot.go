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

// oneShotSet tracks every currently-armed one-shot coordinate, in
// activation order, bounded to oneShotHardCap entries (spec.md §4.4
// / SPEC_FULL.md §5's resolution of the original's ambiguous buffer
// capacity).
type oneShotSet struct {
	order []Coord
}

func (s *oneShotSet) add(c Coord) bool {
	if len(s.order) >= oneShotHardCap {
		return false
	}
	s.order = append(s.order, c)
	return true
}

func (s *oneShotSet) remove(c Coord) {
	for i, o := range s.order {
		if o == c {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *oneShotSet) empty() bool { return len(s.order) == 0 }

func (s *oneShotSet) coords() []Coord { return s.order }

// beginOneShot arms a one-shot action: the inner action's held-state
// (layer push, modifier press, etc.) is applied immediately, and a
// timeout is scheduled to release it if no consuming key arrives first
// (spec.md §4.4).
func (eng *Engine) beginOneShot(os *OneShotAction, coord Coord) {
	if !eng.oneShots.add(coord) {
		eng.log.Warn("one-shot buffer full, dropping activation")
		return
	}
	st := &State{
		Kind:      StateOneShot,
		Coord:     coord,
		PressTick: eng.ticks,
		Action:    &Action{Kind: ActOneShot, OneShot: os},
	}
	eng.applyResolvedAction(os.Inner, coord)
	// Recorded after the inner action so the one-shot State, not the
	// inner action's own State, owns coord until commit.
	eng.states.put(st)
	st.OneShotArmed = true

	deadline := eng.ticks + uint64(os.Timeout.Milliseconds())
	eng.waiting.push(coord, deadline, func(e *Engine, c Coord) {
		e.expireOneShot(c)
	})
}

// releaseOneShotOwnKey handles release of the physical key that
// activated the one-shot: per spec.md §4.4 the one-shot's held
// action stays latched until a subsequent consuming key press (or
// the timeout), not until this release.
func (eng *Engine) releaseOneShotOwnKey(st *State) {
	if st.Action.OneShot.EndConfig == OneShotEndOnPressOnly {
		return
	}
}

// consumeOneShots is called after the triggering key's own release is
// resolved (spec.md §4.4 Seed Scenario 6: ↓LShift ↓A ↑A ↑LShift ↓B ↑B
// — the one-shot modifier stays held through the whole press+release
// of the consuming key, not just its press). Every currently-armed
// one-shot other than triggerCoord itself is committed at that point.
func (eng *Engine) consumeOneShots(triggerCoord Coord) {
	if eng.oneShots.empty() {
		return
	}
	for _, c := range append([]Coord(nil), eng.oneShots.coords()...) {
		if c == triggerCoord {
			continue
		}
		eng.commitOneShot(c)
	}
}

func (eng *Engine) commitOneShot(c Coord) {
	st, ok := eng.states.get(c)
	if !ok || st.Kind != StateOneShot {
		eng.oneShots.remove(c)
		return
	}
	eng.waiting.remove(c)
	eng.releaseResolvedAction(st.Action.OneShot.Inner, c)
	eng.states.remove(c)
	eng.oneShots.remove(c)
}

func (eng *Engine) expireOneShot(c Coord) {
	eng.commitOneShot(c)
}

// cancelOneShotOnRepress implements OneShotEndOnPressOrRepress: a
// second press of the same coordinate while still armed cancels it
// immediately instead of waiting for another key.
func (eng *Engine) cancelOneShotOnRepress(c Coord) bool {
	st, ok := eng.states.get(c)
	if !ok || st.Kind != StateOneShot || !st.OneShotArmed {
		return false
	}
	if st.Action.OneShot.EndConfig != OneShotEndOnPressOrRepress {
		return false
	}
	eng.commitOneShot(c)
	return true
}
