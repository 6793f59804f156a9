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

// Package scanner walks a source tree and classifies every regular file.
package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/tap/pkg/category"
	"gitlab.com/tozd/go/errors"
)

// 📄 FileRecord describes one regular file that passed exclusion filtering.
// Records are immutable once emitted.
type FileRecord struct {
	SourcePath string    // absolute (or root-joined) path of the source file
	RelPath    string    // path relative to the scan root, slash-separated
	Size       int64     // size from metadata, contents are never read
	Category   string    // category name assigned by the table
	ModTime    time.Time // modification time from metadata
}

// ⚠️ Warning records a path that was skipped because of an I/O error.
// Warnings never abort a scan.
type Warning struct {
	Path string
	Err  error
}

// 🎯 Scanner produces a lazy stream of FileRecords for one root.
type Scanner struct {
	root     string
	table    *category.Table
	excl     Exclusions
	warnings []Warning
}

// 🏭 New creates a scanner for root. The table and exclusion set are
// read-only for the scanner's lifetime.
func New(root string, table *category.Table, excl Exclusions) *Scanner {
	return &Scanner{root: root, table: table, excl: excl}
}

// 🚶 Scan walks the root and sends a FileRecord for every regular file that
// passes the exclusion rules. The returned channel is closed when the walk
// finishes or ctx is cancelled. The tree is never materialized in memory.
func (s *Scanner) Scan(ctx context.Context) <-chan FileRecord {
	out := make(chan FileRecord)
	logger := zerolog.Ctx(ctx)

	go func() {
		defer close(out)

		walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return filepath.SkipAll
			}
			if err != nil {
				// Unreadable directory or vanished entry: warn and move on.
				s.warn(logger, path, err)
				return nil
			}

			rel, relErr := filepath.Rel(s.root, path)
			if relErr != nil {
				s.warn(logger, path, relErr)
				return nil
			}
			if rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if s.excl.Match(d.Name(), rel) {
				logger.Debug().Str("path", rel).Msg("excluded")
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			// Symlinks are not followed and not emitted; devices, sockets
			// and FIFOs are skipped the same way.
			if !d.Type().IsRegular() {
				return nil
			}

			info, infoErr := d.Info()
			if infoErr != nil {
				s.warn(logger, path, infoErr)
				return nil
			}

			rec := FileRecord{
				SourcePath: path,
				RelPath:    rel,
				Size:       info.Size(),
				Category:   s.table.Classify(path),
				ModTime:    info.ModTime(),
			}
			select {
			case out <- rec:
			case <-ctx.Done():
				return filepath.SkipAll
			}
			return nil
		})
		if walkErr != nil {
			s.warn(logger, s.root, walkErr)
		}
	}()

	return out
}

// ⚠️ Warnings returns the skipped-with-warning events collected so far.
// Only call it after the channel returned by Scan has been drained.
func (s *Scanner) Warnings() []Warning {
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

func (s *Scanner) warn(logger *zerolog.Logger, path string, err error) {
	logger.Warn().Str("path", path).Err(err).Msg("skipping unreadable entry")
	s.warnings = append(s.warnings, Warning{Path: path, Err: errors.Errorf("reading %s: %w", path, err)})
}

// 🔢 Count walks root and returns how many regular files would be emitted.
// Used by the CLI to size progress bars; errors are counted as skips.
func Count(ctx context.Context, root string, excl Exclusions) int {
	var n int
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if excl.Match(d.Name(), filepath.ToSlash(rel)) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n
}
