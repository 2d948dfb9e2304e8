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

// recordKeyOutput registers that pressing defsrc code `in` on layer
// li can emit `out`, appending unless already present.
func recordKeyOutput(table []map[OsCode][]OsCode, li int, in, out OsCode) {
	if li < 0 || li >= len(table) {
		return
	}
	if table[li] == nil {
		table[li] = make(map[OsCode][]OsCode)
	}
	list := table[li][in]
	for _, existing := range list {
		if existing == out {
			return
		}
	}
	table[li][in] = append(list, out)
}

// handleRepeat implements spec.md §4.2/§4.10's key-repeat path: look
// up (current held layers, then default layer, then raw defsrc) for
// any logical output containing the hardware-reported code, emitting
// at most one Repeat event for it; otherwise suppress.
func (eng *Engine) handleRepeat(in OsCode) {
	if eng.seq.inProgress() && eng.seq.mode == SequenceHidden {
		return
	}
	layers := make([]LayerIdx, 0, len(eng.held.layers)+2)
	for i := len(eng.held.layers) - 1; i >= 0; i-- {
		layers = append(layers, eng.held.layers[i])
	}
	layers = append(layers, eng.defaultLayer)

	for _, li := range layers {
		if int(li) >= len(eng.cfg.KeyOutputs) {
			continue
		}
		outs := eng.cfg.KeyOutputs[li][in]
		if len(outs) == 0 {
			continue
		}
		target := outs[0]
		for _, cand := range outs {
			if k := cand.KeyCode(); eng.composer.isActive(k) {
				target = cand
				break
			}
		}
		eng.writeOut(OutputEvent{Kind: OutKey, Code: target, Value: Repeat})
		return
	}
	// No layer had a recorded output for this code (the resolved chain
	// was transparent all the way down): fall back to the raw defsrc
	// code, but only when it is actually a currently-held output,
	// matching the original's final cur_keys/unshifted/unmodded check
	// rather than gating on the unrelated delegate-to-first-layer
	// Trans-chain option.
	if eng.composer.isActive(in.KeyCode()) {
		eng.writeOut(OutputEvent{Kind: OutKey, Code: in, Value: Repeat})
	}
}

// noteKeyRepeatTarget is currently a no-op hook kept separate from
// emitKey so a future capture backend can observe emitted keys
// without touching the composer's hot path.
func (eng *Engine) noteKeyRepeatTarget(k KeyCode, val KeyValue) {}
