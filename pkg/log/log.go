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
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/tap/pkg/export"
	"github.com/walteh/tap/pkg/stats"
)

// 🎨 Display configuration
const (
	fileIndent    = 4  // spaces to indent file entries
	categoryWidth = 16 // width for the category column
	countWidth    = 8  // width for the count column
)

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 LogCopyResult logs the outcome of one copy operation
func (l *Logger) LogCopyResult(res export.CopyResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var symbol string
	if res.Failed() {
		symbol = color.New(color.FgRed).Sprint("✗")
	} else {
		symbol = color.New(color.FgGreen).Sprint("✓")
	}

	fmt.Fprintf(l.console, "%*s%s %s %s\n",
		fileIndent, "",
		symbol,
		res.Record.RelPath,
		color.New(color.Faint).Sprint(res.Record.Category))

	evt := l.zlog.Info()
	if res.Failed() {
		evt = l.zlog.Warn().Err(res.Err)
	}
	evt.
		Str("file", res.Record.RelPath).
		Str("category", res.Record.Category).
		Int64("bytes", res.BytesCopied).
		Msg("copy result")
}

// 📊 LogSummary renders the per-category totals table
func (l *Logger) LogSummary(title string, totals *stats.CategoryTotals) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "\n%s\n", color.New(color.Bold).Sprint(title))
	for _, line := range totals.Summary() {
		fmt.Fprintf(l.console, "%*s%s %s %s\n",
			fileIndent, "",
			color.New(color.FgCyan).Sprintf("%-*s", categoryWidth, line.Category),
			fmt.Sprintf("%*d", countWidth, line.Count),
			color.New(color.Faint).Sprint(FormatSize(line.Bytes)))
	}
	fmt.Fprintf(l.console, "%*s%s %s %s\n",
		fileIndent, "",
		color.New(color.Bold).Sprintf("%-*s", categoryWidth, "total"),
		fmt.Sprintf("%*d", countWidth, totals.TotalFiles),
		color.New(color.Faint).Sprint(FormatSize(totals.TotalBytes)))

	l.zlog.Info().
		Int("files", totals.TotalFiles).
		Int64("bytes", totals.TotalBytes).
		Msg(title)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tapText := color.New(color.Bold, color.FgCyan).Sprint("tap")
	fmt.Fprintf(l.console, "\n%s %s\n\n", tapText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

// 📏 FormatSize renders a byte count for humans
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
