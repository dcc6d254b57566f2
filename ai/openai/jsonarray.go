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

package openai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedArrayRe = regexp.MustCompile("(?s)```json\\s*(\\[.*?\\])\\s*```")
	bareArrayRe   = regexp.MustCompile(`(?s)(\[[^\]]*\])`)
)

// extractJSONArray pulls a JSON array of strings out of free-form model
// output, tolerating surrounding prose and markdown code fences. Anything
// that cannot be parsed yields an empty slice; non-string array elements
// are dropped.
func extractJSONArray(text string) []string {
	if m := fencedArrayRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else if m := bareArrayRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var raw []any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return []string{}
	}

	out := []string{}
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
