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

// Package config loads and validates the tap configuration.
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/tap/pkg/category"
	"github.com/walteh/tap/pkg/scanner"
	"gitlab.com/tozd/go/errors"
)

// 📦 CategoryDef is one user-defined category. Order in the config file is
// meaningful: the first definition claiming an extension wins, and duplicate
// claims are rejected at load time.
type CategoryDef struct {
	Name       string   `json:"name" yaml:"name" hcl:"name,label"`
	Extensions []string `json:"extensions" yaml:"extensions" hcl:"extensions"`
}

// 🔧 ExportSettings bound the copy engine.
type ExportSettings struct {
	MaxConcurrentCopies int `json:"max_concurrent_copies" yaml:"max_concurrent_copies" hcl:"max_concurrent_copies,optional"`
}

// 🔧 ArchiveSettings configure the optional zip container.
type ArchiveSettings struct {
	Enabled          bool `json:"enabled" yaml:"enabled" hcl:"enabled,optional"`
	CompressionLevel int  `json:"compression_level" yaml:"compression_level" hcl:"compression_level,optional"`
	BufferSizeKB     int  `json:"buffer_size_kb" yaml:"buffer_size_kb" hcl:"buffer_size_kb,optional"`
}

// 🔧 MountSettings configure read-only device mounting.
type MountSettings struct {
	BaseDir        string   `json:"base_dir" yaml:"base_dir" hcl:"base_dir,optional"`
	Prefix         string   `json:"prefix" yaml:"prefix" hcl:"prefix,optional"`
	DevicePrefixes []string `json:"device_prefixes" yaml:"device_prefixes" hcl:"device_prefixes,optional"`
}

// 📚 Config is the complete tap configuration. The core treats it as
// immutable once validated.
type Config struct {
	Categories []CategoryDef    `json:"categories" yaml:"categories" hcl:"category,block"`
	Exclude    []string         `json:"exclude" yaml:"exclude" hcl:"exclude,optional"`
	Export     *ExportSettings  `json:"export,omitempty" yaml:"export,omitempty" hcl:"export,block"`
	Archive    *ArchiveSettings `json:"archive,omitempty" yaml:"archive,omitempty" hcl:"archive,block"`
	Mount      *MountSettings   `json:"mount,omitempty" yaml:"mount,omitempty" hcl:"mount,block"`
}

// 🏭 Default returns the built-in configuration: the default category
// table, the classic forensic exclusions, and a concurrency ceiling of 10.
func Default() *Config {
	defs := category.Defaults()
	cats := make([]CategoryDef, 0, len(defs))
	for _, d := range defs {
		cats = append(cats, CategoryDef{Name: d.Name, Extensions: d.Extensions})
	}
	return &Config{
		Categories: cats,
		Exclude: []string{
			".*", // hidden files and directories
			"System Volume Information",
			"$RECYCLE.BIN",
			"node_modules",
		},
		Export: &ExportSettings{MaxConcurrentCopies: 10},
		Archive: &ArchiveSettings{
			Enabled:          false,
			CompressionLevel: 6,
			BufferSizeKB:     256,
		},
		Mount: &MountSettings{
			BaseDir:        "/mnt",
			Prefix:         "tap_",
			DevicePrefixes: []string{"sd", "nvme", "mmcblk", "vd"},
		},
	}
}

// 📍 DefaultPath returns the per-user config location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Errorf("determining config directory: %w", err)
	}
	return filepath.Join(base, "tap", "config.yaml"), nil
}

// 🎯 Load loads the configuration from path. An empty path means the
// per-user default location; a missing file there falls back to the
// built-in defaults.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	implicit := path == ""
	if implicit {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if implicit && os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("no config file, using defaults")
			return Default(), nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Str("path", path).Int("categories", len(cfg.Categories)).Msg("config loaded")
	return cfg, nil
}

// 🔍 Validate fills in defaults and rejects inconsistent settings,
// including duplicate extension claims.
func (cfg *Config) Validate() error {
	def := Default()
	if len(cfg.Categories) == 0 {
		cfg.Categories = def.Categories
	}
	if cfg.Exclude == nil {
		cfg.Exclude = def.Exclude
	}
	if cfg.Export == nil {
		cfg.Export = def.Export
	}
	if cfg.Archive == nil {
		cfg.Archive = def.Archive
	}
	if cfg.Mount == nil {
		cfg.Mount = def.Mount
	}

	if cfg.Export.MaxConcurrentCopies <= 0 {
		cfg.Export.MaxConcurrentCopies = def.Export.MaxConcurrentCopies
	}
	if cfg.Archive.CompressionLevel == 0 {
		cfg.Archive.CompressionLevel = def.Archive.CompressionLevel
	}
	if cfg.Archive.CompressionLevel < 1 || cfg.Archive.CompressionLevel > 9 {
		return errors.Errorf("archive.compression_level must be 1-9, got %d", cfg.Archive.CompressionLevel)
	}
	if cfg.Archive.BufferSizeKB <= 0 {
		cfg.Archive.BufferSizeKB = def.Archive.BufferSizeKB
	}
	if cfg.Mount.BaseDir == "" {
		cfg.Mount.BaseDir = def.Mount.BaseDir
	}
	if cfg.Mount.Prefix == "" {
		cfg.Mount.Prefix = def.Mount.Prefix
	}
	if len(cfg.Mount.DevicePrefixes) == 0 {
		cfg.Mount.DevicePrefixes = def.Mount.DevicePrefixes
	}

	// Fail classification problems at load, before any scanning begins.
	if _, err := cfg.Table(); err != nil {
		return err
	}
	if _, err := cfg.Exclusions(); err != nil {
		return err
	}
	return nil
}

// 🗺️ Table builds the category lookup table, preserving config order.
func (cfg *Config) Table() (*category.Table, error) {
	defs := make([]category.Definition, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		defs = append(defs, category.Definition{Name: c.Name, Extensions: c.Extensions})
	}
	return category.NewTable(defs)
}

// 🚫 Exclusions builds the validated exclusion rule set.
func (cfg *Config) Exclusions() (scanner.Exclusions, error) {
	return scanner.NewExclusions(cfg.Exclude)
}
