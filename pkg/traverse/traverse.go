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

// Package traverse walks the target tree and applies every loaded pair to
// every selected file.
package traverse

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/batrepl/pkg/pairs"
	"github.com/walteh/batrepl/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// DefaultPatterns selects the file types the tool was built for
var DefaultPatterns = []string{"*.html", "*.js"}

// 🔧 Options configures a Driver
type Options struct {
	// Pairs are applied to each selected file in order. May be empty, in
	// which case the run scans the tree and does nothing.
	Pairs []pairs.Pair
	// Patterns are base-name globs selecting target files, matched
	// case-insensitively. Defaults to DefaultPatterns.
	Patterns []string
}

// 🚶 Driver runs one full replacement pass over a target tree
type Driver struct {
	pairs    []pairs.Pair
	patterns []string
}

// 🏭 New creates a driver with the given options
func New(opts Options) (*Driver, error) {
	source := opts.Patterns
	if len(source) == 0 {
		source = DefaultPatterns
	}
	// File names are lowercased before matching, so patterns are stored
	// lowercased too.
	patterns := make([]string, 0, len(source))
	for _, pattern := range source {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid file pattern %q", pattern)
		}
		patterns = append(patterns, strings.ToLower(pattern))
	}
	return &Driver{
		pairs:    opts.Pairs,
		patterns: patterns,
	}, nil
}

// 📊 Summary aggregates the outcome of every (file, pair) attempt so the
// result of a run is inspectable without reading the log
type Summary struct {
	FilesScanned int // Files seen during the walk
	FilesMatched int // Files selected by the patterns
	Replacements int // Attempts that modified a file
	Unchanged    int // Attempts that left a file as-is
	Failures     int // Attempts that failed and were skipped
}

// String returns a one-line rendering of the summary
func (s Summary) String() string {
	return fmt.Sprintf("%d files matched (%d scanned), %d replacements, %d unchanged, %d failures",
		s.FilesMatched, s.FilesScanned, s.Replacements, s.Unchanged, s.Failures)
}

// 🏃 Run recursively enumerates targetDir and applies every pair, in table
// order, to each selected file. Pairs compose sequentially: each attempt
// re-reads the latest on-disk content, so no pair is short-circuited even
// when an earlier pair already changed the file. Per-file failures never
// abort the run; only a failure to enumerate the tree itself does.
func (d *Driver) Run(ctx context.Context, targetDir string) (Summary, error) {
	logger := zerolog.Ctx(ctx)

	var summary Summary
	err := filepath.WalkDir(targetDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == targetDir {
				return err
			}
			logger.Error().Err(err).Str("path", path).Msg("skipping unreadable path")
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		summary.FilesScanned++
		if !d.selects(entry.Name()) {
			return nil
		}
		summary.FilesMatched++

		for _, pair := range d.pairs {
			res := rewrite.Apply(ctx, path, pair.Find, pair.Replace)
			switch res.Outcome {
			case rewrite.Replaced:
				summary.Replacements++
			case rewrite.Unchanged:
				summary.Unchanged++
			case rewrite.Failed:
				summary.Failures++
			}
		}
		return nil
	})
	if err != nil {
		return summary, errors.Errorf("walking %s: %w", targetDir, err)
	}

	logger.Info().
		Int("files_matched", summary.FilesMatched).
		Int("replacements", summary.Replacements).
		Int("failures", summary.Failures).
		Msg("replacement operation completed")
	return summary, nil
}

// selects reports whether a base name matches any include pattern
func (d *Driver) selects(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range d.patterns {
		if ok, _ := doublestar.Match(pattern, lower); ok {
			return true
		}
	}
	return false
}

// TODO(dr.methodical): 🧪 Add tests for symlinked directories inside the target tree
