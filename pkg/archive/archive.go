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

// Package archive streams files into a single zip container.
//
// Entries are compressed and flushed as they arrive, so the exported set
// never has to fit in memory. The container is written to a temporary path
// and renamed into place only when every entry succeeded; a failed entry
// write aborts the whole archive.
package archive

import (
	"archive/zip"
	"compress/flate"
	"io"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultCompressionLevel matches flate's default trade-off.
	DefaultCompressionLevel = 6
	// DefaultBufferKB is the per-entry copy buffer size in KiB.
	DefaultBufferKB = 256
)

// 🔧 Options configures compression level and the internal copy buffer.
type Options struct {
	CompressionLevel int // flate level 0-9, DefaultCompressionLevel when zero
	BufferKB         int // copy buffer in KiB, DefaultBufferKB when zero
}

// 📦 Writer writes category-prefixed entries into one zip file.
// It is not safe for concurrent use; the export pipeline funnels entries
// through a single goroutine.
type Writer struct {
	finalPath string
	tmpPath   string
	f         *os.File
	zw        *zip.Writer
	buf       []byte
	entries   []string
	done      bool
}

// 🏭 NewWriter creates the temporary container next to path so the final
// rename stays on one filesystem.
func NewWriter(finalPath string, opts Options) (*Writer, error) {
	level := opts.CompressionLevel
	if level == 0 {
		level = DefaultCompressionLevel
	}
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, errors.Errorf("invalid compression level %d", level)
	}
	bufKB := opts.BufferKB
	if bufKB <= 0 {
		bufKB = DefaultBufferKB
	}

	tmpPath := finalPath + ".tmp-" + uuid.NewString()
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, errors.Errorf("creating temporary archive: %w", err)
	}

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	return &Writer{
		finalPath: finalPath,
		tmpPath:   tmpPath,
		f:         f,
		zw:        zw,
		buf:       make([]byte, bufKB*1024),
	}, nil
}

// ➕ Add streams one entry into the container. entryPath uses forward
// slashes and mirrors the category/relative-path layout of directory
// export. Any error leaves the writer unusable; call Abort.
func (w *Writer) Add(entryPath string, modTime time.Time, r io.Reader) error {
	if w.done {
		return errors.New("archive writer already finished")
	}
	name := path.Clean(entryPath)
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modTime,
	}
	entry, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return errors.Errorf("creating entry %s: %w", name, err)
	}
	if _, err := io.CopyBuffer(entry, r, w.buf); err != nil {
		return errors.Errorf("writing entry %s: %w", name, err)
	}
	// Flush so partially written archives hold complete previous entries
	// and memory stays bounded by the buffer, not the entry count.
	if err := w.zw.Flush(); err != nil {
		return errors.Errorf("flushing entry %s: %w", name, err)
	}
	w.entries = append(w.entries, name)
	return nil
}

// ➕ AddFile streams the file at srcPath as entryPath.
func (w *Writer) AddFile(entryPath, srcPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return errors.Errorf("opening %s: %w", srcPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Errorf("stating %s: %w", srcPath, err)
	}
	return w.Add(entryPath, info.ModTime(), f)
}

// ✅ Close finalizes the container and atomically renames it into place.
// On any error the temporary file is removed and nothing appears at the
// final path.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	if err := w.zw.Close(); err != nil {
		w.discard()
		return errors.Errorf("finalizing archive: %w", err)
	}
	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.tmpPath)
		return errors.Errorf("closing archive file: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.finalPath); err != nil {
		_ = os.Remove(w.tmpPath)
		return errors.Errorf("renaming archive into place: %w", err)
	}
	return nil
}

// 🗑️ Abort discards the temporary container. Safe to call after a failed
// Add or instead of Close.
func (w *Writer) Abort() {
	if w.done {
		return
	}
	w.done = true
	w.discard()
}

func (w *Writer) discard() {
	_ = w.zw.Close()
	_ = w.f.Close()
	_ = os.Remove(w.tmpPath)
}

// 📋 Entries returns the entry paths written so far, in order.
func (w *Writer) Entries() []string {
	out := make([]string, len(w.entries))
	copy(out, w.entries)
	return out
}

// 📍 Path returns the final archive path.
func (w *Writer) Path() string {
	return w.finalPath
}
