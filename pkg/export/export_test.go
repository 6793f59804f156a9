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

package export_test

import (
	"archive/zip"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tap/pkg/category"
	"github.com/walteh/tap/pkg/export"
	"github.com/walteh/tap/pkg/scanner"
)

// 🧪 testContext returns a context with a test logger attached
func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

// 🧪 writeFile creates a file with parents
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// 🧪 buildFixtureTree creates the scenario tree from the design docs:
// 10 pdf files, 5 jpg files, 1 unknown extension, plus a node_modules
// subtree that must never be exported.
func buildFixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, filepath.Join(root, "docs", fmt.Sprintf("a%d.pdf", i)), fmt.Sprintf("pdf-%d", i))
	}
	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(root, "pics", fmt.Sprintf("b%d.jpg", i)), fmt.Sprintf("jpg-%d", i))
	}
	writeFile(t, filepath.Join(root, "c.xyz"), "unknown")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), "skip me")
	return root
}

// 🧪 relFiles returns the sorted slash-relative paths of all files under dir
func relFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if !d.IsDir() {
			rel, relErr := filepath.Rel(dir, path)
			require.NoError(t, relErr)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

func newPipeline(t *testing.T, job export.Job) *export.Pipeline {
	t.Helper()
	table, err := category.NewTable(category.Defaults())
	require.NoError(t, err)
	excl, err := scanner.NewExclusions([]string{".*", "node_modules"})
	require.NoError(t, err)
	p, err := export.New(export.Options{Job: job, Table: table, Exclusions: excl})
	require.NoError(t, err)
	return p
}

// 🧪 TestExportScenario tests the canonical 10/5/1 fixture
func TestExportScenario(t *testing.T) {
	root := buildFixtureTree(t)
	dest := filepath.Join(t.TempDir(), "out")

	p := newPipeline(t, export.Job{Root: root, Destination: dest})
	result, err := p.Run(testContext(t))
	require.NoError(t, err)

	assert.False(t, result.Aborted)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 16, result.Copied)
	assert.Equal(t, 10, result.Totals.Categories["documents"].Count)
	assert.Equal(t, 5, result.Totals.Categories["images"].Count)
	assert.Equal(t, 1, result.Totals.Categories[category.Misc].Count)

	files := relFiles(t, dest)
	assert.Len(t, files, 16)
	assert.Contains(t, files, "documents/docs/a0.pdf")
	assert.Contains(t, files, "images/pics/b4.jpg")
	assert.Contains(t, files, "misc/c.xyz")
	for _, f := range files {
		assert.NotContains(t, f, "node_modules")
	}
}

// 🧪 TestExportTotalsIndependentOfConcurrency tests that limit=1 and
// limit=50 produce identical totals and identical destination trees
func TestExportTotalsIndependentOfConcurrency(t *testing.T) {
	root := buildFixtureTree(t)

	run := func(limit int) (map[string]int, []string) {
		dest := filepath.Join(t.TempDir(), "out")
		p := newPipeline(t, export.Job{Root: root, Destination: dest, Concurrency: limit})
		result, err := p.Run(testContext(t))
		require.NoError(t, err)
		require.Empty(t, result.Failures)

		counts := map[string]int{}
		for name, b := range result.Totals.Categories {
			counts[name] = b.Count
		}
		return counts, relFiles(t, dest)
	}

	serialCounts, serialTree := run(1)
	parallelCounts, parallelTree := run(50)

	assert.Equal(t, serialCounts, parallelCounts)
	assert.Equal(t, serialTree, parallelTree)

	var sum int
	for _, c := range serialCounts {
		sum += c
	}
	assert.Equal(t, 16, sum)
}

// 🧪 TestExportPartialFailure tests that one failing file leaves the other
// N-1 exported and reported as successes
func TestExportPartialFailure(t *testing.T) {
	root := buildFixtureTree(t)
	dest := filepath.Join(t.TempDir(), "out")

	// Block the misc category directory with a plain file so the single
	// .xyz record fails while everything else copies fine.
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, category.Misc), []byte("in the way"), 0o644))

	p := newPipeline(t, export.Job{Root: root, Destination: dest})
	result, err := p.Run(testContext(t))
	require.NoError(t, err)

	assert.False(t, result.Aborted)
	assert.True(t, result.PartialSuccess())
	assert.Equal(t, 15, result.Copied)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "c.xyz", result.Failures[0].Record.RelPath)
	assert.Error(t, result.Failures[0].Err)

	// Totals still cover every scanned record
	assert.Equal(t, 16, result.Totals.TotalFiles)

	files := relFiles(t, dest)
	assert.Contains(t, files, "documents/docs/a3.pdf")
	assert.NotContains(t, files, "misc/c.xyz")
}

// 🧪 TestExportUnreadableSource tests a per-file permission failure
func TestExportUnreadableSource(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.txt"), "fine")
	locked := filepath.Join(root, "locked.txt")
	writeFile(t, locked, "secret")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	dest := filepath.Join(t.TempDir(), "out")
	p := newPipeline(t, export.Job{Root: root, Destination: dest})
	result, err := p.Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Copied)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "locked.txt", result.Failures[0].Record.RelPath)
	assert.Contains(t, result.Failures[0].Err.Error(), "opening source")
}

// 🧪 TestExportCollisionOnRerun tests that re-exporting into the same
// destination disambiguates instead of overwriting
func TestExportCollisionOnRerun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report.pdf"), "first run")
	dest := filepath.Join(t.TempDir(), "out")

	p := newPipeline(t, export.Job{Root: root, Destination: dest})
	_, err := p.Run(testContext(t))
	require.NoError(t, err)

	// Same relative path again, different content
	writeFile(t, filepath.Join(root, "report.pdf"), "second run")
	p = newPipeline(t, export.Job{Root: root, Destination: dest})
	result, err := p.Run(testContext(t))
	require.NoError(t, err)
	require.Empty(t, result.Failures)

	files := relFiles(t, dest)
	assert.Equal(t, []string{"documents/report.pdf", "documents/report__2.pdf"}, files)

	first, err := os.ReadFile(filepath.Join(dest, "documents", "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "first run", string(first))

	second, err := os.ReadFile(filepath.Join(dest, "documents", "report__2.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "second run", string(second))
}

// 🧪 TestExportArchiveStructuralEquivalence tests that archive entries
// mirror the directory layout exactly
func TestExportArchiveStructuralEquivalence(t *testing.T) {
	root := buildFixtureTree(t)
	dest := filepath.Join(t.TempDir(), "out")

	p := newPipeline(t, export.Job{Root: root, Destination: dest, Archive: true})
	result, err := p.Run(testContext(t))
	require.NoError(t, err)
	require.NoError(t, result.ArchiveErr)
	require.NotEmpty(t, result.ArchivePath)

	zr, err := zip.OpenReader(result.ArchivePath)
	require.NoError(t, err)
	defer zr.Close()

	var entries []string
	for _, f := range zr.File {
		entries = append(entries, f.Name)
	}
	sort.Strings(entries)

	assert.Equal(t, relFiles(t, dest), entries)
}

// 🧪 TestExportArchiveFailureLeavesDirectoryExport tests that a failed
// archive never blocks the directory output
func TestExportArchiveFailureLeavesDirectoryExport(t *testing.T) {
	root := buildFixtureTree(t)
	dest := filepath.Join(t.TempDir(), "out")

	p := newPipeline(t, export.Job{
		Root:        root,
		Destination: dest,
		Archive:     true,
		// Temp file creation fails: the parent directory does not exist
		ArchivePath: filepath.Join(t.TempDir(), "missing", "out.zip"),
	})
	result, err := p.Run(testContext(t))
	require.NoError(t, err)

	assert.Error(t, result.ArchiveErr)
	assert.Empty(t, result.ArchivePath)
	assert.False(t, result.Aborted)
	assert.Equal(t, 16, result.Copied)
	assert.Len(t, relFiles(t, dest), 16)
}

// 🧪 TestExportCancelledBeforeStart tests the aborted flag
func TestExportCancelledBeforeStart(t *testing.T) {
	root := buildFixtureTree(t)
	dest := filepath.Join(t.TempDir(), "out")

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	p := newPipeline(t, export.Job{Root: root, Destination: dest})
	result, err := p.Run(ctx)
	require.NoError(t, err)

	assert.True(t, result.Aborted)
	assert.Error(t, result.AbortErr)
}

// 🧪 TestExportFatalDestination tests that an uncreatable destination root
// aborts before any work starts
func TestExportFatalDestination(t *testing.T) {
	root := buildFixtureTree(t)
	blocked := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	p := newPipeline(t, export.Job{Root: root, Destination: filepath.Join(blocked, "out")})
	_, err := p.Run(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating destination root")
}

// 🧪 TestNewValidation tests option validation
func TestNewValidation(t *testing.T) {
	table, err := category.NewTable(category.Defaults())
	require.NoError(t, err)

	_, err = export.New(export.Options{Job: export.Job{Destination: "d"}, Table: table})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root is required")

	_, err = export.New(export.Options{Job: export.Job{Root: "r"}, Table: table})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination is required")

	_, err = export.New(export.Options{Job: export.Job{Root: "r", Destination: "d"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category table is required")
}
