// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint computes a deterministic digest over an ordered sequence of
// titles using BLAKE2b-256. Titles are newline-delimited, so the digest is
// sensitive to corpus size, order, and title text. It is the master
// cache-invalidation key for the embedding stage.
func Fingerprint(titles []string) string {
	h, _ := blake2b.New(32, nil)
	for _, title := range titles {
		h.Write([]byte(title))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FingerprintRecords computes the corpus fingerprint for a record list.
func FingerprintRecords(records []*Record) string {
	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
	}
	return Fingerprint(titles)
}
