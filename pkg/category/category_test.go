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

package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tap/pkg/category"
)

// 🧪 TestClassify tests extension lookup and normalization
func TestClassify(t *testing.T) {
	table, err := category.NewTable([]category.Definition{
		{Name: "documents", Extensions: []string{".pdf", ".txt"}},
		{Name: "images", Extensions: []string{"JPG", ".png"}},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "plain_extension", path: "report.pdf", want: "documents"},
		{name: "uppercase_extension", path: "SCAN.PDF", want: "documents"},
		{name: "nested_path", path: "a/b/c/notes.txt", want: "documents"},
		{name: "extension_without_dot_in_config", path: "photo.jpg", want: "images"},
		{name: "unknown_extension", path: "data.xyz", want: category.Misc},
		{name: "no_extension", path: "Makefile", want: category.Misc},
		{name: "trailing_dot", path: "weird.", want: category.Misc},
		{name: "dotfile", path: ".gitignore", want: category.Misc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Classify(tt.path))
			// Classification is pure: repeated calls agree
			assert.Equal(t, table.Classify(tt.path), table.Classify(tt.path))
		})
	}
}

// 🧪 TestNewTableErrors tests load-time validation
func TestNewTableErrors(t *testing.T) {
	tests := []struct {
		name          string
		defs          []category.Definition
		expectedError string
	}{
		{
			name: "duplicate_across_categories",
			defs: []category.Definition{
				{Name: "documents", Extensions: []string{".pdf"}},
				{Name: "scans", Extensions: []string{".PDF"}},
			},
			expectedError: `extension ".pdf" claimed by both "documents" and "scans"`,
		},
		{
			name: "duplicate_within_category",
			defs: []category.Definition{
				{Name: "images", Extensions: []string{".jpg", ".JPG"}},
			},
			expectedError: `lists extension ".jpg" twice`,
		},
		{
			name:          "empty_name",
			defs:          []category.Definition{{Name: "", Extensions: []string{".a"}}},
			expectedError: "empty name",
		},
		{
			name:          "reserved_name",
			defs:          []category.Definition{{Name: "misc", Extensions: []string{".a"}}},
			expectedError: "reserved",
		},
		{
			name:          "empty_extension",
			defs:          []category.Definition{{Name: "images", Extensions: []string{"."}}},
			expectedError: "empty extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := category.NewTable(tt.defs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

// 🧪 TestDefaultsAreValid makes sure the built-in table always loads
func TestDefaultsAreValid(t *testing.T) {
	table, err := category.NewTable(category.Defaults())
	require.NoError(t, err)

	assert.Equal(t, "documents", table.Classify("letter.docx"))
	assert.Equal(t, "images", table.Classify("IMG_0001.HEIC"))
	assert.Equal(t, "code", table.Classify("main.go"))
	assert.NotContains(t, table.Names(), category.Misc)
}

// 🧪 TestExt tests extension normalization
func TestExt(t *testing.T) {
	assert.Equal(t, ".pdf", category.Ext("x/y/REPORT.PDF"))
	assert.Equal(t, ".gz", category.Ext("backup.tar.gz"))
	assert.Equal(t, "", category.Ext("README"))
}
