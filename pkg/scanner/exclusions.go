// Copyright 2025 walteh LLC
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

package scanner

import (
	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🚫 Exclusions is an ordered set of glob patterns. A path is excluded when
// any pattern matches either its base name or its root-relative path.
type Exclusions struct {
	patterns []string
}

// 🏭 NewExclusions validates the patterns and returns the rule set.
// Patterns use doublestar glob syntax (`.*`, `node_modules`, `**/cache`).
func NewExclusions(patterns []string) (Exclusions, error) {
	for _, p := range patterns {
		if p == "" {
			return Exclusions{}, errors.New("empty exclusion pattern")
		}
		if !doublestar.ValidatePattern(p) {
			return Exclusions{}, errors.Errorf("invalid exclusion pattern %q", p)
		}
	}
	return Exclusions{patterns: patterns}, nil
}

// 🔍 Match reports whether base or rel matches any pattern. Patterns were
// validated at construction, so match errors cannot occur here.
func (e Exclusions) Match(base, rel string) bool {
	for _, p := range e.patterns {
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// 📋 Patterns returns the configured patterns in order.
func (e Exclusions) Patterns() []string {
	out := make([]string, len(e.patterns))
	copy(out, e.patterns)
	return out
}
