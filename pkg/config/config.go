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

// Package config holds the run configuration, loadable from a file in any
// of the supported formats and overridable by command-line flags.
package config

import (
	"context"

	"github.com/walteh/batrepl/pkg/journal"
	"gitlab.com/tozd/go/errors"
)

// 📚 Config is the complete run configuration
type Config struct {
	// Source is the path to the replacement table file
	Source string `json:"source" yaml:"source" hcl:"source,optional"`
	// Target is the directory tree to rewrite
	Target string `json:"target" yaml:"target" hcl:"target,optional"`
	// Log is the log level name; NONE (the default) disables the log file
	Log string `json:"log,omitempty" yaml:"log,omitempty" hcl:"log,optional"`
	// Include overrides the default *.html / *.js file patterns
	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`

	// location is the path this config was loaded from, if any
	location string
}

// Location returns the path the config was loaded from, or "" for a
// flags-only config
func (c *Config) Location() string {
	return c.location
}

// ✅ Validate checks the config after flag merging
func (c *Config) Validate(ctx context.Context) error {
	if c.Source == "" {
		return errors.New("source table file is required")
	}
	if c.Target == "" {
		return errors.New("target directory is required")
	}
	if _, err := journal.ParseLevel(c.Log); err != nil {
		return errors.Errorf("validating log level: %w", err)
	}
	return nil
}
