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

import (
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// unicodeEncodings lets a Sink implementation register a
// non-UTF-8 target encoding for the OutUnicode side channel, for
// environments whose IME does not accept UTF-8 directly. Most sinks
// need nothing here and ActUnicode's rune is used as-is.
var (
	unicodeEncodingLk sync.Mutex
	unicodeEncoding    encoding.Encoding
)

// SetUnicodeEncoding installs the encoding ActUnicode output is
// transcoded through before reaching the Sink. Passing nil (the
// default) leaves runes untranslated.
func SetUnicodeEncoding(enc encoding.Encoding) {
	unicodeEncodingLk.Lock()
	defer unicodeEncodingLk.Unlock()
	unicodeEncoding = enc
}

// transcodeUnicode converts r through the installed encoding, if any,
// returning the input unchanged when none is set or the transform
// fails (a failed transcode should never drop the keystroke).
func transcodeUnicode(r rune) []byte {
	unicodeEncodingLk.Lock()
	enc := unicodeEncoding
	unicodeEncodingLk.Unlock()
	if enc == nil {
		return []byte(string(r))
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(string(r)))
	if err != nil {
		return []byte(string(r))
	}
	return out
}
