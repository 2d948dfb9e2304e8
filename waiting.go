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

import "container/heap"

// WaitingResolver is invoked when a waitingEntry's deadline fires.
// Implementations live in holdtap.go, oneshot.go, tapdance.go, and
// chord.go.
type WaitingResolver func(eng *Engine, c Coord)

type waitingEntry struct {
	deadline uint64 // absolute tick at which this entry fires
	seq      uint64 // insertion order, for FIFO tie-break
	coord    Coord
	resolve  WaitingResolver
	index    int // heap.Interface bookkeeping
}

// waitingQueue is the bounded, ordered priority queue of pending
// resolutions described in spec.md §3 (WaitingActions): ordered by
// deadline, ties broken by insertion order, at most one entry per
// coordinate.
type waitingQueue struct {
	items   waitingHeap
	byCoord map[Coord]*waitingEntry
	nextSeq uint64
}

func newWaitingQueue() *waitingQueue {
	return &waitingQueue{byCoord: make(map[Coord]*waitingEntry)}
}

// push inserts a new waiting entry for c. Returns ErrNoWaitingSlot if
// c already has one (spec.md §3 invariant: a coordinate appears at
// most once).
func (q *waitingQueue) push(c Coord, deadline uint64, resolve WaitingResolver) error {
	if _, exists := q.byCoord[c]; exists {
		return ErrNoWaitingSlot
	}
	e := &waitingEntry{deadline: deadline, seq: q.nextSeq, coord: c, resolve: resolve}
	q.nextSeq++
	q.byCoord[c] = e
	heap.Push(&q.items, e)
	return nil
}

// remove drops c's waiting entry, if any, without firing it (used
// when an event short-circuits resolution before the deadline).
func (q *waitingQueue) remove(c Coord) {
	e, ok := q.byCoord[c]
	if !ok {
		return
	}
	heap.Remove(&q.items, e.index)
	delete(q.byCoord, c)
}

func (q *waitingQueue) has(c Coord) bool {
	_, ok := q.byCoord[c]
	return ok
}

// peekDeadline returns the earliest pending deadline and true, or
// (0, false) if the queue is empty. Run does not consult it: its tick
// loop fires on a fixed 1 ms ticker.
func (q *waitingQueue) peekDeadline() (uint64, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	return q.items[0].deadline, true
}

// fireExpired resolves every entry whose deadline is <= now, in
// deadline order (ties by insertion order), removing each from the
// queue before invoking its resolver so a resolver that re-arms the
// same coordinate (e.g. tap-dance starting a fresh window) can push
// again without colliding.
func (q *waitingQueue) fireExpired(eng *Engine, now uint64) {
	for len(q.items) > 0 && q.items[0].deadline <= now {
		e := heap.Pop(&q.items).(*waitingEntry)
		delete(q.byCoord, e.coord)
		e.resolve(eng, e.coord)
	}
}

func (q *waitingQueue) empty() {
	q.items = nil
	q.byCoord = make(map[Coord]*waitingEntry)
}

// waitingHeap implements container/heap.Interface over *waitingEntry,
// ordered by (deadline, seq).
type waitingHeap []*waitingEntry

func (h waitingHeap) Len() int { return len(h) }
func (h waitingHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h waitingHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *waitingHeap) Push(x any) {
	e := x.(*waitingEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *waitingHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}
