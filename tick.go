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

import "time"

// tickCounter converts a monotonic clock into whole milliseconds,
// carrying the sub-millisecond remainder forward so long runs do not
// drift (spec.md §4.1, recovered rationale in
// original_source/src/kanata/millisecond_counting.rs). A naive
// `elapsed.Milliseconds()` call per tick undercounts systematically;
// this type is the fix.
type tickCounter struct {
	lastTick    time.Time
	remainderNs int64
}

func newTickCounter(now time.Time) *tickCounter {
	return &tickCounter{lastTick: now}
}

// advance computes how many whole milliseconds have elapsed since the
// last call (or construction), updating lastTick only when at least
// one millisecond was consumed.
func (t *tickCounter) advance(now time.Time) uint32 {
	elapsedNs := now.Sub(t.lastTick).Nanoseconds() + t.remainderNs
	if elapsedNs < 0 {
		elapsedNs = 0
	}
	ms := elapsedNs / 1_000_000
	t.remainderNs = elapsedNs % 1_000_000
	if ms > 0 {
		t.lastTick = now
	}
	return uint32(ms)
}
