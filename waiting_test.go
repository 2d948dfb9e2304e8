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

import "testing"

func TestWaitingQueueFiresInDeadlineOrder(t *testing.T) {
	q := newWaitingQueue()
	var fired []Coord
	record := func(_ *Engine, c Coord) { fired = append(fired, c) }

	_ = q.push(Coord{Row: 0, Col: 2}, 30, record)
	_ = q.push(Coord{Row: 0, Col: 0}, 10, record)
	_ = q.push(Coord{Row: 0, Col: 1}, 20, record)

	q.fireExpired(nil, 25)
	if len(fired) != 2 || fired[0].Col != 0 || fired[1].Col != 1 {
		t.Fatalf("unexpected fire order: %v", fired)
	}
	if q.has(Coord{Row: 0, Col: 2}) != true {
		t.Fatalf("entry not yet due should remain queued")
	}
}

func TestWaitingQueueTieBreaksByInsertionOrder(t *testing.T) {
	q := newWaitingQueue()
	var fired []Coord
	record := func(_ *Engine, c Coord) { fired = append(fired, c) }

	_ = q.push(Coord{Row: 0, Col: 0}, 10, record)
	_ = q.push(Coord{Row: 0, Col: 1}, 10, record)

	q.fireExpired(nil, 10)
	if len(fired) != 2 || fired[0].Col != 0 || fired[1].Col != 1 {
		t.Fatalf("expected FIFO tie-break, got %v", fired)
	}
}

func TestWaitingQueueRejectsDuplicateCoord(t *testing.T) {
	q := newWaitingQueue()
	noop := func(_ *Engine, _ Coord) {}
	c := Coord{Row: 0, Col: 0}
	if err := q.push(c, 10, noop); err != nil {
		t.Fatalf("unexpected error on first push: %v", err)
	}
	if err := q.push(c, 20, noop); err == nil {
		t.Fatalf("expected ErrNoWaitingSlot on duplicate coord push")
	}
}

func TestWaitingQueueRemoveDropsWithoutFiring(t *testing.T) {
	q := newWaitingQueue()
	fired := false
	c := Coord{Row: 0, Col: 0}
	_ = q.push(c, 10, func(_ *Engine, _ Coord) { fired = true })
	q.remove(c)
	q.fireExpired(nil, 100)
	if fired {
		t.Fatalf("removed entry should not fire")
	}
	if q.has(c) {
		t.Fatalf("removed entry should not be present")
	}
}
