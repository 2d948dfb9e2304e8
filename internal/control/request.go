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

package control

import (
	"context"
	"fmt"

	"github.com/katakey/kanata-go"
)

// Poster is the subset of kanata.Engine this package depends on, kept
// as an interface so the control surface can be exercised in tests
// without a live Engine.
type Poster interface {
	Post(kanata.ReducerInput) error
}

// CurrentLayerInfo asks the engine (over its control channel) for the
// active layer, blocking until it responds or ctx is done.
func CurrentLayerInfo(ctx context.Context, eng Poster) (LayerStatus, error) {
	resp := make(chan kanata.ControlResponse, 1)
	if err := eng.Post(kanata.ReducerInput{Kind: kanata.InputRequestCurrentLayerInfoKind, Resp: resp}); err != nil {
		return LayerStatus{}, err
	}
	select {
	case r := <-resp:
		if r.Err != nil {
			return LayerStatus{}, r.Err
		}
		return LayerStatus{LayerName: r.NewLayer, LayerIndex: r.LayerIndex}, nil
	case <-ctx.Done():
		return LayerStatus{}, fmt.Errorf("control: %w", ctx.Err())
	}
}

// ChangeLayer requests a default-layer switch by name.
func ChangeLayer(ctx context.Context, eng Poster, name string) error {
	resp := make(chan kanata.ControlResponse, 1)
	if err := eng.Post(kanata.ReducerInput{Kind: kanata.InputChangeLayerKind, LayerName: name, Resp: resp}); err != nil {
		return err
	}
	select {
	case r := <-resp:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
