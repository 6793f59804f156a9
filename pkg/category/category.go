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

// Package category maps file extensions to named categories.
package category

import (
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🗑️ Misc is the catch-all category for unrecognized extensions.
const Misc = "misc"

// 📦 Definition is one named bucket of extensions, in configuration order.
type Definition struct {
	Name       string
	Extensions []string
}

// 🗺️ Table resolves extensions to category names. It is immutable after
// construction and safe for concurrent use.
type Table struct {
	names []string
	index map[string]string // normalized extension -> category name
}

// 🏭 NewTable builds a lookup table from ordered category definitions.
// Extensions are normalized to lowercase with a leading dot. A normalized
// extension claimed by more than one definition (or twice within one) is a
// configuration error, never silently dropped.
func NewTable(defs []Definition) (*Table, error) {
	t := &Table{
		names: make([]string, 0, len(defs)),
		index: make(map[string]string),
	}
	for _, def := range defs {
		if def.Name == "" {
			return nil, errors.New("category with empty name")
		}
		if def.Name == Misc {
			return nil, errors.Errorf("category name %q is reserved", Misc)
		}
		t.names = append(t.names, def.Name)
		for _, ext := range def.Extensions {
			norm := normalize(ext)
			if norm == "" {
				return nil, errors.Errorf("category %q has an empty extension", def.Name)
			}
			if owner, ok := t.index[norm]; ok {
				if owner == def.Name {
					return nil, errors.Errorf("category %q lists extension %q twice", def.Name, norm)
				}
				return nil, errors.Errorf("extension %q claimed by both %q and %q", norm, owner, def.Name)
			}
			t.index[norm] = def.Name
		}
	}
	return t, nil
}

// 🎯 Classify returns the category name for a file path. Lookup is by
// lowercased extension; paths with no matching extension land in Misc.
func (t *Table) Classify(path string) string {
	ext := Ext(path)
	if ext == "" {
		return Misc
	}
	if name, ok := t.index[ext]; ok {
		return name
	}
	return Misc
}

// 📋 Names returns the category names in configuration order, without Misc.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Ext returns the normalized extension of path (".PDF" -> ".pdf"), or ""
// when the path has none.
func Ext(path string) string {
	return normalize(filepath.Ext(path))
}

func normalize(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
