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

// sequenceTrieNode is one node of the key-sequence recognition trie
// (spec.md §4.8): children are keyed by the next expected KeyCode.
type sequenceTrieNode struct {
	children map[KeyCode]*sequenceTrieNode
	action   *Action // non-nil at a terminal node
}

// SequenceTrie roots the per-SequenceID tries used by
// ActSequence/ActRepeatableSequence.
type SequenceTrie struct {
	roots   map[int]*sequenceTrieNode
	Timeout time.Duration
}

// NewSequenceTrie returns an empty trie with the given timeout; entries
// are inserted with Add.
func NewSequenceTrie(timeout time.Duration) *SequenceTrie {
	return &SequenceTrie{roots: make(map[int]*sequenceTrieNode), Timeout: timeout}
}

// Add inserts one complete key sequence under sequenceID, panicking on
// an empty sequence (a config construction error, not a runtime one).
func (t *SequenceTrie) Add(sequenceID int, keys []KeyCode, action *Action) {
	if len(keys) == 0 {
		panic("kanata: sequence with zero keys")
	}
	root, ok := t.roots[sequenceID]
	if !ok {
		root = &sequenceTrieNode{children: make(map[KeyCode]*sequenceTrieNode)}
		t.roots[sequenceID] = root
	}
	n := root
	for _, k := range keys {
		child, ok := n.children[k]
		if !ok {
			child = &sequenceTrieNode{children: make(map[KeyCode]*sequenceTrieNode)}
			n.children[k] = child
		}
		n = child
	}
	n.action = action
}

// sequenceRun is the reducer's live sequence-recognition state; at
// most one is active at a time (spec.md §4.8).
type sequenceRun struct {
	active   bool
	node     *sequenceTrieNode
	mode     SequenceInputMode
	typed    []KeyCode // visible-backspaced mode: keys emitted so far, for erasure
	repeat   bool
}

func (s *sequenceRun) inProgress() bool { return s.active }

// beginSequence enters recognition mode rooted at sa.SequenceID.
func (eng *Engine) beginSequence(sa *SequenceAction) {
	if eng.cfg.Sequences == nil {
		return
	}
	root, ok := eng.cfg.Sequences.roots[sa.SequenceID]
	if !ok {
		return
	}
	eng.seq = sequenceRun{active: true, node: root, mode: sa.Mode}
	eng.waiting.remove(sequenceCoord)
	eng.armSequenceTimeout()
}

var sequenceCoord = Coord{Row: 0xFF, Col: 0xFFFE}

func (eng *Engine) armSequenceTimeout() {
	if eng.cfg.Sequences.Timeout <= 0 {
		return
	}
	deadline := eng.ticks + uint64(eng.cfg.Sequences.Timeout.Milliseconds())
	eng.waiting.push(sequenceCoord, deadline, func(e *Engine, _ Coord) {
		e.cancelSequence()
	})
}

// feedSequence advances recognition on a physical key press. Returns
// true if the event was consumed by the sequence engine.
func (eng *Engine) feedSequence(k KeyCode) bool {
	if !eng.seq.active {
		return false
	}
	child, ok := eng.seq.node.children[k]
	if !ok {
		mode := eng.seq.mode
		eng.cancelSequence()
		return mode == SequenceHidden
	}
	if eng.seq.mode == SequenceVisibleBackspaced {
		eng.seq.typed = append(eng.seq.typed, k)
		// Let the key type normally so the user sees what they're
		// pressing; it gets backspaced away below if the sequence
		// completes.
		eng.resolveKeyPress(k, eng.coordFor(k))
	}
	eng.seq.node = child
	eng.waiting.remove(sequenceCoord)

	if child.action != nil {
		if eng.seq.mode == SequenceVisibleBackspaced {
			// Emit the final key's press before the backspaces that erase it.
			eng.composer.flush(eng)
			for range eng.seq.typed {
				eng.writeOut(OutputEvent{Kind: OutKey, Code: backspaceCode, Value: Press})
				eng.writeOut(OutputEvent{Kind: OutKey, Code: backspaceCode, Value: Release})
			}
		}
		eng.applyResolvedAction(child.action, sequenceCoord)
		eng.releaseResolvedAction(child.action, sequenceCoord)
		eng.seq = sequenceRun{}
		return true
	}
	eng.armSequenceTimeout()
	return true
}

var backspaceCode, _ = KeyBackspace.OsCode()

func (eng *Engine) cancelSequence() {
	eng.waiting.remove(sequenceCoord)
	eng.seq = sequenceRun{}
}
