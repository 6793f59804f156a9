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
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/tap/pkg/log"
	"github.com/walteh/tap/pkg/scanner"
	"github.com/walteh/tap/pkg/stats"
)

// 🔍 newInspectCmd creates the inspect subcommand
func newInspectCmd() *cobra.Command {
	var writeLog bool

	cmd := &cobra.Command{
		Use:   "inspect SOURCE",
		Short: "Scan a source and report per-category totals without copying",
		Long: `Walk the source, classify every regular file by extension and print
a per-category summary. Nothing is written to the source.

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

			console := log.New(os.Stdout, consoleLevel())
			console.Header("inspecting " + args[0])

			total := scanner.Count(ctx, root, excl)
			bar, _ := pterm.DefaultProgressbar.WithTotal(total).WithTitle("scanning").Start()

			sc := scanner.New(root, table, excl)
			totals := stats.NewCategoryTotals()
			for rec := range sc.Scan(ctx) {
				totals.Add(rec)
				bar.Increment()
			}
			bar.Stop()

			if err := ctx.Err(); err != nil {
				return err
			}

			console.LogSummary("INSPECTION RESULTS", totals)
			for _, w := range sc.Warnings() {
				console.Warningf("%v", w.Err)
			}

			if writeLog {
				path, err := log.WriteInspectLog(args[0], totals, sc.Warnings())
				if err != nil {
					return err
				}
				console.Successf("inspection log written to %s", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeLog, "log", false, "write a timestamped inspection log to the current directory")

	return cmd
}

func consoleLevel() zerolog.Level {
	if flagDebug {
		return zerolog.DebugLevel
	}
	return zerolog.Disabled
}
