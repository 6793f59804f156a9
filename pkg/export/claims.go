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

package export

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// 🔒 claimTable reserves destination entry paths so two workers (or two
// source files from different branches of the tree) can never write the
// same destination file. Collisions are resolved by appending __2, __3, …
// before the extension; nothing is silently overwritten.
type claimTable struct {
	destRoot string

	mu    sync.Mutex
	taken map[string]struct{} // entry paths, slash-separated
}

func newClaimTable(destRoot string) *claimTable {
	return &claimTable{destRoot: destRoot, taken: make(map[string]struct{})}
}

// 🎯 claim reserves a unique entry path for category/relPath and returns it
// together with the corresponding filesystem path. Pre-existing files at
// the destination count as collisions too, so re-running into a non-empty
// directory never overwrites earlier output.
func (c *claimTable) claim(categoryName, relPath string) (entryPath, destPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := relPath
	for n := 2; ; n++ {
		entry := path.Join(categoryName, candidate)
		fsPath := filepath.Join(c.destRoot, filepath.FromSlash(entry))
		if _, reserved := c.taken[entry]; !reserved {
			// Anything but a clean stat counts as absent; the copy itself
			// will surface real I/O problems.
			if _, err := os.Lstat(fsPath); err != nil {
				c.taken[entry] = struct{}{}
				return entry, fsPath
			}
		}
		candidate = disambiguate(relPath, n)
	}
}

// disambiguate turns dir/name.ext into dir/name__n.ext.
func disambiguate(relPath string, n int) string {
	dir, base := path.Split(relPath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return dir + fmt.Sprintf("%s__%d%s", stem, n, ext)
}
