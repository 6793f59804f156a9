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
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/tap/pkg/archive"
	"github.com/walteh/tap/pkg/category"
	"github.com/walteh/tap/pkg/scanner"
	"github.com/walteh/tap/pkg/stats"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Test hooks, nil outside of tests.
var (
	testHookCopyStart func()
	testHookCopyEnd   func()
)

// 🔧 Options wires the pipeline's collaborators.
type Options struct {
	// Job is the export job description
	Job Job
	// Table classifies files, loaded and validated before the run
	Table *category.Table
	// Exclusions filter the scan
	Exclusions scanner.Exclusions
	// OnResult, when set, is called from the aggregator goroutine for every
	// CopyResult. Used by the CLI for progress rendering.
	OnResult func(CopyResult)
}

// 🎯 Pipeline drains a scan stream through a bounded pool of copy workers.
type Pipeline struct {
	opts Options
}

// 🏭 New validates the options and creates a pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Job.Root == "" {
		return nil, errors.New("job root is required")
	}
	if opts.Job.Destination == "" {
		return nil, errors.New("job destination is required")
	}
	if opts.Table == nil {
		return nil, errors.New("category table is required")
	}
	if opts.Job.Concurrency <= 0 {
		opts.Job.Concurrency = DefaultConcurrency
	}
	if opts.Job.ArchivePath == "" {
		opts.Job.ArchivePath = opts.Job.Destination + ".zip"
	}
	return &Pipeline{opts: opts}, nil
}

// 🏃 Run scans the root and copies every record into the destination tree.
//
// Per-file failures are recorded and never stop the run. A fatal error
// (destination root unreachable) stops submission of new work, lets
// in-flight copies finish, and reports the partial result. The returned
// error is non-nil only when the run could not start at all.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	job := p.opts.Job
	start := time.Now()

	if err := os.MkdirAll(job.Destination, 0o755); err != nil {
		return nil, errors.Errorf("creating destination root: %w", err)
	}

	// Single producer: the scanner feeds the pool. Cancelling scanCtx is
	// how a fatal error stops submission without forcing in-flight copies.
	scanCtx, stopScan := context.WithCancel(ctx)
	defer stopScan()

	scan := scanner.New(job.Root, p.opts.Table, p.opts.Exclusions)
	records := scan.Scan(scanCtx)

	var aw *archive.Writer
	result := &Result{Totals: stats.NewCategoryTotals()}
	if job.Archive {
		var err error
		aw, err = archive.NewWriter(job.ArchivePath, archive.Options{
			CompressionLevel: job.CompressionLevel,
			BufferKB:         job.CopyBufferKB,
		})
		if err != nil {
			// Archive failures are fatal for the archive only; the
			// directory export proceeds.
			logger.Error().Err(err).Msg("archive disabled")
			result.ArchiveErr = err
		}
	}

	// Single-owner aggregation: one goroutine owns the totals, the failure
	// list, and the archive writer, so no worker ever touches shared state.
	results := make(chan CopyResult)
	aggDone := make(chan struct{})
	go func() {
		defer close(aggDone)
		for res := range results {
			result.Totals.Add(res.Record)
			if res.Failed() {
				result.Failures = append(result.Failures, res)
				logger.Warn().Str("file", res.Record.RelPath).Err(res.Err).Msg("copy failed")
			} else {
				result.Copied++
				result.BytesCopied += res.BytesCopied
				if aw != nil && result.ArchiveErr == nil {
					if err := aw.AddFile(res.EntryPath, res.DestPath); err != nil {
						logger.Error().Err(err).Msg("archive aborted")
						result.ArchiveErr = err
						aw.Abort()
					}
				}
			}
			if p.opts.OnResult != nil {
				p.opts.OnResult(res)
			}
		}
	}()

	claims := newClaimTable(job.Destination)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(job.Concurrency)

	for rec := range records {
		if gctx.Err() != nil {
			// Fatal error in a worker: stop submitting, drain the scanner.
			stopScan()
			for range records {
			}
			break
		}
		rec := rec
		g.Go(func() error {
			if testHookCopyStart != nil {
				testHookCopyStart()
			}
			defer func() {
				if testHookCopyEnd != nil {
					testHookCopyEnd()
				}
			}()
			res, fatal := p.copyOne(rec, claims)
			results <- res
			return fatal
		})
	}

	fatalErr := g.Wait()
	close(results)
	<-aggDone

	if fatalErr != nil {
		result.Aborted = true
		result.AbortErr = fatalErr
	} else if ctx.Err() != nil {
		result.Aborted = true
		result.AbortErr = ctx.Err()
	}

	if aw != nil && result.ArchiveErr == nil {
		if result.Aborted {
			// A truncated archive is worse than no archive.
			aw.Abort()
		} else if err := aw.Close(); err != nil {
			result.ArchiveErr = err
		} else {
			result.ArchivePath = aw.Path()
		}
	}

	result.Warnings = scan.Warnings()
	result.Elapsed = time.Since(start)

	logger.Info().
		Int("scanned", result.Totals.TotalFiles).
		Int("copied", result.Copied).
		Int("failed", len(result.Failures)).
		Bool("aborted", result.Aborted).
		Dur("elapsed", result.Elapsed).
		Msg("export finished")

	return result, nil
}

// 📄 copyOne copies a single record. The returned error is non-nil only for
// fatal conditions that must stop the whole pipeline; per-file problems are
// carried inside the CopyResult.
func (p *Pipeline) copyOne(rec scanner.FileRecord, claims *claimTable) (CopyResult, error) {
	res := CopyResult{Record: rec}

	entryPath, destPath := claims.claim(rec.Category, rec.RelPath)
	res.EntryPath = entryPath

	// Category and intermediate directories are created lazily, on first
	// need. MkdirAll is idempotent, so concurrent workers can race here.
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		if _, statErr := os.Stat(p.opts.Job.Destination); statErr != nil {
			return res, errors.Errorf("destination root unreachable: %w", statErr)
		}
		res.Err = errors.Errorf("creating category directory: %w", err)
		return res, nil
	}

	src, err := os.Open(rec.SourcePath)
	if err != nil {
		res.Err = errors.Errorf("opening source: %w", err)
		return res, nil
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if _, statErr := os.Stat(p.opts.Job.Destination); statErr != nil {
			return res, errors.Errorf("destination root unreachable: %w", statErr)
		}
		res.Err = errors.Errorf("creating destination file: %w", err)
		return res, nil
	}

	bufKB := p.opts.Job.CopyBufferKB
	if bufKB <= 0 {
		bufKB = archive.DefaultBufferKB
	}
	n, err := io.CopyBuffer(dst, src, make([]byte, bufKB*1024))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Leave no partial file behind; the claimed name stays burned,
		// which keeps disambiguation deterministic.
		_ = os.Remove(destPath)
		res.Err = errors.Errorf("copying bytes: %w", err)
		return res, nil
	}

	res.DestPath = destPath
	res.BytesCopied = n
	return res, nil
}
