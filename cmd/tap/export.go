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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/tap/pkg/export"
	"github.com/walteh/tap/pkg/log"
	"github.com/walteh/tap/pkg/scanner"
	"gitlab.com/tozd/go/errors"
)

// errPartialExport marks a run that finished but recorded per-file
// failures, so main can map it to its own exit code.
var errPartialExport = errors.Base("export completed with failures")

// 📦 newExportCmd creates the export subcommand
func newExportCmd() *cobra.Command {
	var (
		output      string
		zipArchive  bool
		zipPath     string
		keepTree    bool
		concurrency int
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "export SOURCE",
		Short: "Copy every file from a source into a category-per-directory tree",
		Long: `Scan the source, classify every regular file and copy it into
<output>/<category>/, renaming on collision so nothing is overwritten.

With --zip the exported tree is also packed into a single zip archive;
unless --keep-tree is set the directory tree is removed once the
archive is safely in place.

SOURCE is a directory or a raw partition such as /dev/sdb1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			table, err := cfg.Table()
			if err != nil {
				return err
			}
			excl, err := cfg.Exclusions()
			if err != nil {
				return err
			}

			root, cleanup, err := resolveSource(ctx, args[0], cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if output == "" {
				output = "tap_export_" + time.Now().Format("20060102_150405")
			}
			if concurrency == 0 {
				concurrency = cfg.Export.MaxConcurrentCopies
			}

			console := log.New(os.Stdout, consoleLevel())
			console.Header(fmt.Sprintf("exporting %s to %s", args[0], output))

			total := scanner.Count(ctx, root, excl)
			bar, _ := pterm.DefaultProgressbar.WithTotal(total).WithTitle("exporting").Start()

			job := export.Job{
				Root:             root,
				Destination:      output,
				Archive:          zipArchive || cfg.Archive.Enabled,
				ArchivePath:      zipPath,
				Concurrency:      concurrency,
				CompressionLevel: cfg.Archive.CompressionLevel,
				CopyBufferKB:     cfg.Archive.BufferSizeKB,
			}

			pipeline, err := export.New(export.Options{
				Job:        job,
				Table:      table,
				Exclusions: excl,
				OnResult: func(res export.CopyResult) {
					bar.Increment()
					if verbose || res.Failed() {
						console.LogCopyResult(res)
					}
				},
			})
			if err != nil {
				return err
			}

			result, err := pipeline.Run(ctx)
			bar.Stop()
			if err != nil {
				return err
			}

			console.LogSummary("EXPORT RESULTS", result.Totals)
			for _, w := range result.Warnings {
				console.Warningf("%v", w.Err)
			}

			if result.Aborted {
				writeRunLog(console, output, result)
				return errors.Errorf("export aborted: %w", result.AbortErr)
			}
			if result.ArchiveErr != nil {
				console.Errorf("archive failed, directory export kept: %v", result.ArchiveErr)
			}
			if result.ArchivePath != "" {
				console.Successf("archive written to %s (%s)", result.ArchivePath, log.FormatSize(archiveSize(result.ArchivePath)))
			}

			// The archive is the deliverable once it exists; the tree only
			// survives on request or when archiving failed.
			removeTree := result.ArchivePath != "" && !keepTree
			logDir := output
			if removeTree {
				logDir = filepath.Dir(result.ArchivePath)
			}
			writeRunLog(console, logDir, result)
			if removeTree {
				if err := os.RemoveAll(output); err != nil {
					console.Warningf("removing exported tree: %v", err)
				}
			}

			if result.PartialSuccess() {
				return errors.Errorf("%w: %d of %d files failed",
					errPartialExport, len(result.Failures), result.Totals.TotalFiles)
			}
			console.Successf("copied %d files (%s) in %s",
				result.Copied, log.FormatSize(result.BytesCopied), result.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination directory (default: tap_export_<timestamp>)")
	cmd.Flags().BoolVar(&zipArchive, "zip", false, "pack the export into a zip archive")
	cmd.Flags().StringVar(&zipPath, "zip-path", "", "archive path (default: <output>.zip)")
	cmd.Flags().BoolVar(&keepTree, "keep-tree", false, "keep the directory tree after archiving")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent copies (default from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every copied file")

	return cmd
}

func writeRunLog(console *log.Logger, dir string, result *export.Result) {
	path, err := log.WriteRunLog(dir, result)
	if err != nil {
		console.Warningf("writing run log: %v", err)
		return
	}
	console.Infof("run log written to %s", path)
}

func archiveSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
