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

// Package control implements the out-of-band status/control surface:
// a small fixed-width table renderer for reporting the active layer
// and armed one-shots/macros to an operator terminal, plus the
// request/response helpers layered over the engine's control channel.
package control

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Row is one line of the status table.
type Row struct {
	Label string
	Value string
}

// Table renders rows as a fixed-width, two-column report. Column
// widths account for East-Asian and zero-width runes via
// go-runewidth so the table stays aligned even when layer names use
// wide characters.
type Table struct {
	Rows []Row
}

// Render returns the table as aligned text, one row per line.
func (t *Table) Render() string {
	labelW, valueW := 0, 0
	for _, r := range t.Rows {
		if w := runewidth.StringWidth(r.Label); w > labelW {
			labelW = w
		}
		if w := runewidth.StringWidth(r.Value); w > valueW {
			valueW = w
		}
	}
	var b strings.Builder
	for _, r := range t.Rows {
		fmt.Fprintf(&b, "%s  %s\n",
			runewidth.FillRight(r.Label, labelW),
			runewidth.FillRight(r.Value, valueW))
	}
	return b.String()
}

// LayerStatus is the minimal snapshot the engine's control channel
// returns for RespCurrentLayerInfo, rendered into a Table by
// RenderLayerStatus.
type LayerStatus struct {
	LayerName   string
	LayerIndex  int
	OneShotKeys []string
	MacroActive bool
}

// RenderLayerStatus formats a LayerStatus snapshot as a status table.
func RenderLayerStatus(s LayerStatus) string {
	t := &Table{Rows: []Row{
		{Label: "layer", Value: fmt.Sprintf("%s (#%d)", s.LayerName, s.LayerIndex)},
	}}
	if len(s.OneShotKeys) > 0 {
		t.Rows = append(t.Rows, Row{Label: "one-shot", Value: strings.Join(s.OneShotKeys, ",")})
	}
	if s.MacroActive {
		t.Rows = append(t.Rows, Row{Label: "macro", Value: "running"})
	}
	return t.Render()
}
