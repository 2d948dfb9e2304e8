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

// Package kanata implements the layered keyboard remapping engine: a
// deterministic, single-threaded reducer driven by an event clock and
// a millisecond tick clock, sitting between a raw key-capture source
// and a virtual-device emit sink.
//
// The package does not talk to any OS input device directly. Callers
// (capture/emit backends, the control server, the GUI) hand the
// engine an already-decoded Config and drive it with ReducerInput
// values; the engine resolves layered actions and produces an
// ordered OutputEvent stream.
package kanata
