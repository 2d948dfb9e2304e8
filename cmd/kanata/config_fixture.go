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

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katakey/kanata-go"
)

// fixtureConfig is the yaml shape a compiled configuration is read
// from. The s-expression parser that would normally produce a
// kanata.Config is out of scope for this module; this fixture format
// lets the engine run end-to-end against a simple defsrc/layer
// mapping without it.
type fixtureConfig struct {
	Defsrc  []string            `yaml:"defsrc"`
	Layers  map[string][]string `yaml:"layers"`
	Default string              `yaml:"default"`
	Options struct {
		BlockUnmappedKeys bool `yaml:"block-unmapped-keys"`
		EnableCmd         bool `yaml:"enable-cmd"`
	} `yaml:"options"`
}

func loadConfig(path string) (*kanata.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fixtureConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(fc.Defsrc) == 0 {
		return nil, fmt.Errorf("%s: defsrc must name at least one key", path)
	}

	defsrcCoord := make(map[kanata.OsCode]kanata.Coord, len(fc.Defsrc))
	mapped := make(map[kanata.OsCode]bool, len(fc.Defsrc))
	nameToCode, err := buildNameTable()
	if err != nil {
		return nil, err
	}
	for col, name := range fc.Defsrc {
		code, ok := nameToCode[name]
		if !ok {
			return nil, fmt.Errorf("%s: unknown key name %q", path, name)
		}
		c := kanata.Coord{Row: 0, Col: uint16(col)}
		defsrcCoord[code] = c
		mapped[code] = true
	}

	layerNames := make([]string, 0, len(fc.Layers))
	for name := range fc.Layers {
		layerNames = append(layerNames, name)
	}
	if len(layerNames) == 0 {
		layerNames = []string{"base"}
		fc.Layers = map[string][]string{"base": fc.Defsrc}
	}

	layers := make([]kanata.Layer, len(layerNames))
	for li, name := range layerNames {
		cells := fc.Layers[name]
		row := make([]*kanata.Action, len(fc.Defsrc))
		for col := range fc.Defsrc {
			if col >= len(cells) {
				row[col] = kanata.Trans()
				continue
			}
			a, err := parseCellAction(cells[col], nameToCode)
			if err != nil {
				return nil, fmt.Errorf("%s: layer %q col %d: %w", path, name, col, err)
			}
			row[col] = a
		}
		layers[li] = kanata.Layer{row}
	}

	defaultIdx := 0
	for i, name := range layerNames {
		if name == fc.Default {
			defaultIdx = i
			break
		}
	}

	layout := &kanata.Layout{
		Layers:       layers,
		LayerNames:   layerNames,
		DefaultLayer: kanata.LayerIdx(defaultIdx),
	}

	opts := kanata.Options{
		BlockUnmappedKeys: fc.Options.BlockUnmappedKeys,
		EnableCmd:         fc.Options.EnableCmd,
	}

	return kanata.NewConfig(layout, defsrcCoord, mapped, nil, nil, nil, opts)
}

// parseCellAction supports the trivial "_" (transparent) and bare key
// name forms; richer action syntax belongs to the out-of-scope
// s-expression parser.
func parseCellAction(token string, nameToCode map[string]kanata.OsCode) (*kanata.Action, error) {
	if token == "_" {
		return kanata.Trans(), nil
	}
	if token == "XX" {
		return kanata.NoOp(), nil
	}
	code, ok := nameToCode[token]
	if !ok {
		return nil, fmt.Errorf("unknown key name %q", token)
	}
	return &kanata.Action{Kind: kanata.ActKeyCode, Key: code.KeyCode()}, nil
}

func buildNameTable() (map[string]kanata.OsCode, error) {
	names := map[string]kanata.KeyCode{
		"a": kanata.KeyA, "b": kanata.KeyB, "c": kanata.KeyC, "d": kanata.KeyD,
		"e": kanata.KeyE, "f": kanata.KeyF, "g": kanata.KeyG, "h": kanata.KeyH,
		"i": kanata.KeyI, "j": kanata.KeyJ, "k": kanata.KeyK, "l": kanata.KeyL,
		"m": kanata.KeyM, "n": kanata.KeyN, "o": kanata.KeyO, "p": kanata.KeyP,
		"q": kanata.KeyQ, "r": kanata.KeyR, "s": kanata.KeyS, "t": kanata.KeyT,
		"u": kanata.KeyU, "v": kanata.KeyV, "w": kanata.KeyW, "x": kanata.KeyX,
		"y": kanata.KeyY, "z": kanata.KeyZ,
		"spc": kanata.KeySpace, "ret": kanata.KeyEnter, "esc": kanata.KeyEsc,
		"tab": kanata.KeyTab, "bspc": kanata.KeyBackspace,
		"lsft": kanata.KeyLShift, "rsft": kanata.KeyRShift,
		"lctl": kanata.KeyLCtrl, "rctl": kanata.KeyRCtrl,
		"lalt": kanata.KeyLAlt, "ralt": kanata.KeyRAlt,
		"lmet": kanata.KeyLMeta, "rmet": kanata.KeyRMeta,
		"caps": kanata.KeyCapsLock,
	}
	out := make(map[string]kanata.OsCode, len(names))
	for name, kc := range names {
		code, ok := kc.OsCode()
		if !ok {
			return nil, fmt.Errorf("internal: key %q has no assigned OsCode", name)
		}
		out[name] = code
	}
	return out, nil
}
