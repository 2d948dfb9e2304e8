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

import "os/exec"

// runCmd executes a gated custom-effect command asynchronously; it
// never blocks the reducer and its outcome is only observable via the
// log (spec.md §6: cmd is a fire-and-forget side effect).
func (eng *Engine) runCmd(argv []string) {
	if len(argv) == 0 {
		return
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	go func() {
		if err := cmd.Run(); err != nil {
			eng.log.WithError(err).WithField("cmd", argv).Warn("custom cmd exited with error")
		}
	}()
}
