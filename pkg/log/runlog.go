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

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/walteh/tap/pkg/export"
	"github.com/walteh/tap/pkg/scanner"
	"github.com/walteh/tap/pkg/stats"
	"gitlab.com/tozd/go/errors"
)

// RunLogName is the detail log written into the destination after export.
const RunLogName = "tap.log"

const ruleWidth = 70

// 📄 WriteRunLog writes the detailed export log into the destination
// directory and returns its path.
func WriteRunLog(destDir string, result *export.Result) (string, error) {
	var b strings.Builder

	b.WriteString("TAP LOG\n")
	b.WriteString(strings.Repeat("═", ruleWidth))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Timestamp: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total files scanned: %d\n", result.Totals.TotalFiles)
	fmt.Fprintf(&b, "Total size: %s\n", FormatSize(result.Totals.TotalBytes))
	fmt.Fprintf(&b, "Elapsed: %s\n\n", result.Elapsed.Round(time.Millisecond))

	writeCategorySection(&b, result.Totals)

	fmt.Fprintf(&b, "\nFiles copied: %d\n", result.Copied)
	fmt.Fprintf(&b, "Files failed: %d\n", len(result.Failures))
	if result.Aborted {
		fmt.Fprintf(&b, "Run aborted: %v\n", result.AbortErr)
	}
	if result.ArchivePath != "" {
		fmt.Fprintf(&b, "Archive: %s\n", result.ArchivePath)
	}
	if result.ArchiveErr != nil {
		fmt.Fprintf(&b, "Archive failed: %v\n", result.ArchiveErr)
	}

	writeWarningSection(&b, result.Warnings)

	if len(result.Failures) > 0 {
		b.WriteString("\nEXPORT ERRORS\n")
		b.WriteString(strings.Repeat("─", ruleWidth))
		b.WriteString("\n")
		for _, f := range result.Failures {
			fmt.Fprintf(&b, "Failed to copy %s: %v\n", f.Record.RelPath, f.Err)
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("═", ruleWidth))
	b.WriteString("\nEnd of log\n")

	path := filepath.Join(destDir, RunLogName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", errors.Errorf("writing run log: %w", err)
	}
	return path, nil
}

// 📄 WriteInspectLog writes an inspection log next to the working directory
// and returns its path. The file name embeds the source name and a
// timestamp so repeated inspections never clobber each other.
func WriteInspectLog(source string, totals *stats.CategoryTotals, warnings []scanner.Warning) (string, error) {
	var b strings.Builder

	b.WriteString("TAP INSPECTION LOG\n")
	b.WriteString(strings.Repeat("═", ruleWidth))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Source: %s\n", source)
	fmt.Fprintf(&b, "Timestamp: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total files scanned: %d\n", totals.TotalFiles)
	fmt.Fprintf(&b, "Total size: %s\n\n", FormatSize(totals.TotalBytes))

	writeCategorySection(&b, totals)
	writeWarningSection(&b, warnings)

	b.WriteString("\n")
	b.WriteString(strings.Repeat("═", ruleWidth))
	b.WriteString("\nEnd of log\n")

	name := fmt.Sprintf("tap_inspect_%s_%s.txt",
		filepath.Base(filepath.Clean(source)),
		time.Now().Format("20060102_150405"))
	if err := os.WriteFile(name, []byte(b.String()), 0o644); err != nil {
		return "", errors.Errorf("writing inspect log: %w", err)
	}
	return name, nil
}

func writeCategorySection(b *strings.Builder, totals *stats.CategoryTotals) {
	b.WriteString("FILES BY CATEGORY\n")
	b.WriteString(strings.Repeat("─", ruleWidth))
	b.WriteString("\n")
	for _, line := range totals.Summary() {
		fmt.Fprintf(b, "%s: %d files (%s)\n", line.Category, line.Count, FormatSize(line.Bytes))
	}
}

func writeWarningSection(b *strings.Builder, warnings []scanner.Warning) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("\nSCAN ERRORS\n")
	b.WriteString(strings.Repeat("─", ruleWidth))
	b.WriteString("\n")
	for _, w := range warnings {
		fmt.Fprintf(b, "%v\n", w.Err)
	}
}
