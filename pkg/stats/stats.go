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

// Package stats accumulates per-category totals from a record stream.
package stats

import (
	"sort"

	"github.com/walteh/tap/pkg/scanner"
)

// 🪣 Bucket holds the running count and byte total for one category.
type Bucket struct {
	Count int
	Bytes int64
}

// 📊 CategoryTotals is the mutable accumulator for a single run. It uses
// memory proportional to the number of distinct categories, never the file
// count, and its updates are commutative over arrival order. It is owned by
// exactly one goroutine at a time and is not internally synchronized.
type CategoryTotals struct {
	Categories map[string]Bucket
	TotalFiles int
	TotalBytes int64
}

// 🏭 NewCategoryTotals returns an empty accumulator.
func NewCategoryTotals() *CategoryTotals {
	return &CategoryTotals{Categories: make(map[string]Bucket)}
}

// ➕ Add folds one record into the totals.
func (t *CategoryTotals) Add(rec scanner.FileRecord) {
	b := t.Categories[rec.Category]
	b.Count++
	b.Bytes += rec.Size
	t.Categories[rec.Category] = b
	t.TotalFiles++
	t.TotalBytes += rec.Size
}

// 📋 Line is one row of the end-of-run summary.
type Line struct {
	Category string
	Count    int
	Bytes    int64
}

// 📊 Summary returns the totals sorted by count descending, then name, so
// reports are stable regardless of worker interleaving.
func (t *CategoryTotals) Summary() []Line {
	lines := make([]Line, 0, len(t.Categories))
	for name, b := range t.Categories {
		lines = append(lines, Line{Category: name, Count: b.Count, Bytes: b.Bytes})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Count != lines[j].Count {
			return lines[i].Count > lines[j].Count
		}
		return lines[i].Category < lines[j].Category
	})
	return lines
}

// 🚰 Collect drains a record stream into fresh totals. This is the whole of
// inspect mode: no copying, O(#categories) memory.
func Collect(records <-chan scanner.FileRecord) *CategoryTotals {
	totals := NewCategoryTotals()
	for rec := range records {
		totals.Add(rec)
	}
	return totals
}
