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

// Package export copies a classified record stream into a destination tree
// with a bounded pool of copy workers, optionally streaming every copied
// file into a single zip container.
package export

import (
	"time"

	"github.com/walteh/tap/pkg/scanner"
	"github.com/walteh/tap/pkg/stats"
)

// DefaultConcurrency bounds simultaneous in-flight copies when the job does
// not say otherwise. The ceiling bounds open descriptors and destination
// I/O contention; it is a hard cap, not a hint.
const DefaultConcurrency = 10

// 🧾 Job describes one export invocation. Immutable once created.
type Job struct {
	Root             string // source tree to scan
	Destination      string // destination root, created if absent
	Archive          bool   // also stream copied files into a zip container
	ArchivePath      string // archive location, Destination+".zip" when empty
	Concurrency      int    // ceiling for in-flight copies, DefaultConcurrency when <= 0
	CompressionLevel int    // archive deflate level
	CopyBufferKB     int    // per-worker copy buffer in KiB
}

// 📄 CopyResult is the terminal outcome of one copy task. Never mutated
// after creation.
type CopyResult struct {
	Record      scanner.FileRecord
	EntryPath   string // category/relative path actually used, after disambiguation
	DestPath    string // absolute destination path, empty when the copy failed
	BytesCopied int64
	Err         error // nil on success
}

// ❓ Failed reports whether the copy failed.
func (r CopyResult) Failed() bool {
	return r.Err != nil
}

// 📊 Result is everything the reporting layer needs to distinguish total
// success, partial success, and an aborted run.
type Result struct {
	Totals      *stats.CategoryTotals // all processed records, successes and failures
	Copied      int                   // successful copies
	BytesCopied int64
	Failures    []CopyResult      // per-file failures, run continued past each
	Warnings    []scanner.Warning // scan-side skips
	Aborted     bool              // a fatal error stopped submission early
	AbortErr    error             // the fatal error when Aborted
	ArchivePath string            // set when the archive was renamed into place
	ArchiveErr  error             // archive failure, directory export unaffected
	Elapsed     time.Duration
}

// ❓ PartialSuccess reports a completed run in which some but not all files
// were copied.
func (r *Result) PartialSuccess() bool {
	return !r.Aborted && len(r.Failures) > 0
}
