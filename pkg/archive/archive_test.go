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

package archive_test

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tap/pkg/archive"
)

// 🧪 readEntry extracts one entry from a zip file
func readEntry(t *testing.T, zr *zip.ReadCloser, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

// 🧪 TestWriterRoundTrip tests streaming entries and the atomic rename
func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "export.zip")

	w, err := archive.NewWriter(finalPath, archive.Options{})
	require.NoError(t, err)

	require.NoError(t, w.Add("documents/report.pdf", time.Now(), strings.NewReader("pdf body")))
	require.NoError(t, w.Add("images/deep/a.jpg", time.Now(), strings.NewReader("jpeg body")))

	// Nothing at the final path until Close succeeds
	_, statErr := os.Stat(finalPath)
	require.True(t, os.IsNotExist(statErr))

	require.NoError(t, w.Close())

	zr, err := zip.OpenReader(finalPath)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 2)
	assert.Equal(t, "pdf body", readEntry(t, zr, "documents/report.pdf"))
	assert.Equal(t, "jpeg body", readEntry(t, zr, "images/deep/a.jpg"))
	assert.Equal(t, []string{"documents/report.pdf", "images/deep/a.jpg"}, w.Entries())

	// No temp files left behind
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

// 🧪 TestWriterAddFile tests streaming from disk
func TestWriterAddFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("from disk"), 0o644))

	w, err := archive.NewWriter(filepath.Join(dir, "out.zip"), archive.Options{CompressionLevel: 9, BufferKB: 4})
	require.NoError(t, err)
	require.NoError(t, w.AddFile("documents/src.txt", src))
	require.NoError(t, w.Close())

	zr, err := zip.OpenReader(filepath.Join(dir, "out.zip"))
	require.NoError(t, err)
	defer zr.Close()
	assert.Equal(t, "from disk", readEntry(t, zr, "documents/src.txt"))
}

// 🧪 TestWriterAddFileMissingSource tests the all-or-nothing contract
func TestWriterAddFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "out.zip")

	w, err := archive.NewWriter(finalPath, archive.Options{})
	require.NoError(t, err)
	require.NoError(t, w.Add("documents/ok.txt", time.Now(), strings.NewReader("ok")))

	err = w.AddFile("documents/gone.txt", filepath.Join(dir, "does-not-exist"))
	require.Error(t, err)

	w.Abort()

	// Abort leaves nothing behind, not even the temp file
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// 🧪 TestWriterRejectsBadLevel tests option validation
func TestWriterRejectsBadLevel(t *testing.T) {
	_, err := archive.NewWriter(filepath.Join(t.TempDir(), "x.zip"), archive.Options{CompressionLevel: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid compression level")
}

// 🧪 TestWriterAddAfterClose tests terminal state handling
func TestWriterAddAfterClose(t *testing.T) {
	w, err := archive.NewWriter(filepath.Join(t.TempDir(), "x.zip"), archive.Options{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	err = w.Add("a/b", time.Now(), strings.NewReader("x"))
	require.Error(t, err)
	// Close is idempotent
	require.NoError(t, w.Close())
}
