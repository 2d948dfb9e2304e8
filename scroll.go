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

// repeatingEffect is the shared tick-driven repeat state for the
// scroll and mouse-move actions recovered from
// original_source/src/kanata/scroll.rs (SPEC_FULL §3): both repeat at
// a fixed interval for as long as the originating coordinate stays
// physically held.
type repeatingEffect struct {
	coord    Coord
	interval uint64
	nextFire uint64
	emit     func(eng *Engine)
}

func (eng *Engine) beginScroll(sc *ScrollAction, coord Coord) {
	eng.fireScroll(sc)
	eng.armRepeat(coord, uint64(sc.Interval.Milliseconds()), func(e *Engine) {
		e.fireScroll(sc)
	})
}

func (eng *Engine) fireScroll(sc *ScrollAction) {
	eng.emitSideChannel(OutputEvent{
		Kind:      OutScroll,
		Direction: sc.Direction,
		Distance:  sc.Distance,
	})
}

func (eng *Engine) beginMouseMove(mm *MouseMoveAction, coord Coord) {
	eng.fireMouseMove(mm)
	eng.armRepeat(coord, uint64(mm.Interval.Milliseconds()), func(e *Engine) {
		e.fireMouseMove(mm)
	})
}

func (eng *Engine) fireMouseMove(mm *MouseMoveAction) {
	eng.emitSideChannel(OutputEvent{Kind: OutMouseMove, DX: mm.DX, DY: mm.DY})
}

// armRepeat schedules the next firing of a repeating effect on the
// waiting queue; releaseRepeat cancels it.
func (eng *Engine) armRepeat(coord Coord, intervalMs uint64, emit func(*Engine)) {
	if intervalMs == 0 {
		intervalMs = 1
	}
	eng.repeats[coord] = &repeatingEffect{coord: coord, interval: intervalMs, emit: emit}
	eng.waiting.remove(coord)
	eng.waiting.push(coord, eng.ticks+intervalMs, func(e *Engine, c Coord) {
		e.fireRepeat(c)
	})
}

func (eng *Engine) fireRepeat(coord Coord) {
	r, ok := eng.repeats[coord]
	if !ok {
		return
	}
	r.emit(eng)
	eng.waiting.push(coord, eng.ticks+r.interval, func(e *Engine, c Coord) {
		e.fireRepeat(c)
	})
}

func (eng *Engine) releaseRepeat(coord Coord) {
	if _, ok := eng.repeats[coord]; !ok {
		return
	}
	delete(eng.repeats, coord)
	eng.waiting.remove(coord)
}
