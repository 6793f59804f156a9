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
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/tap/pkg/config"
	"github.com/walteh/tap/pkg/device"
	"gitlab.com/tozd/go/errors"
)

var (
	flagConfig string
	flagDebug  bool
)

// 🎯 newRootCmd assembles the tap CLI
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tap",
		Short: "tap - triage and export files from attached drives",
		Long: `tap scans a drive or directory, classifies every file by extension
and exports the result into a category-per-directory tree, optionally
packed into a single zip archive.

Sources may be directories or raw partitions (/dev/sdb1); partitions
are mounted read-only for the duration of the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if flagDebug {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.NewConsoleWriter()).
				With().Timestamp().Logger().Level(level)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newDevicesCmd())

	return rootCmd
}

// loadConfig reads the active config file, falling back to built-in
// defaults when none exists.
func loadConfig(ctx context.Context) (*config.Config, error) {
	return config.Load(ctx, flagConfig)
}

// resolveSource turns a command argument into a readable directory. Raw
// device arguments get a read-only mount; the returned cleanup unmounts
// only what this call mounted.
func resolveSource(ctx context.Context, arg string, cfg *config.Config) (string, func(), error) {
	if !device.IsDevicePath(arg) {
		info, err := os.Stat(arg)
		if err != nil {
			return "", nil, errors.Errorf("checking source: %w", err)
		}
		if !info.IsDir() {
			return "", nil, errors.Errorf("source %s is not a directory", arg)
		}
		return arg, func() {}, nil
	}

	point, readOnly, mounted, err := device.MountPoint(arg)
	if err != nil {
		return "", nil, err
	}
	if mounted {
		if !readOnly {
			return "", nil, errors.Errorf("device %s is mounted writable at %s, refusing to read from it", arg, point)
		}
		return point, func() {}, nil
	}

	point, err = device.MountReadOnly(ctx, arg, cfg.Mount.BaseDir, cfg.Mount.Prefix)
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := device.Unmount(ctx, point); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("mountpoint", point).Msg("unmount failed")
		}
	}
	return point, cleanup, nil
}
