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

// Package journal owns the run log. A Journal is created once at startup
// from configuration, handed through the pipeline by context, and closed at
// process exit. There is no process-global logging state.
package journal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/batrepl/pkg/charset"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options configures a Journal
type Options struct {
	// Dir is where the timestamped log file is created, conventionally the
	// directory containing the table file.
	Dir string
	// Level filters what the log file records; None disables the file.
	Level Level
	// Console receives user-facing status lines. Defaults to os.Stdout.
	Console io.Writer
}

// 📔 Journal is the structured record of one run: a timestamped log file for
// per-event detail plus a console writer for user-facing status lines.
type Journal struct {
	zlog    zerolog.Logger
	console io.Writer
	file    *os.File
	path    string
	mu      sync.Mutex
}

// 🏭 New creates a journal. With Level None no file is touched and the
// structured logger discards everything; console output still works.
func New(opts Options) (*Journal, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	j := &Journal{
		zlog:    zerolog.Nop(),
		console: console,
	}
	if opts.Level == None {
		return j, nil
	}

	name := fmt.Sprintf("replace_log_%s.txt", time.Now().Format("20060102_150405"))
	path := filepath.Join(opts.Dir, name)
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Errorf("creating log file: %w", err)
	}
	if _, err := file.Write(charset.BOM()); err != nil {
		file.Close()
		return nil, errors.Errorf("writing log file header: %w", err)
	}

	writer := zerolog.ConsoleWriter{
		Out:        file,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05",
	}
	j.file = file
	j.path = path
	j.zlog = zerolog.New(writer).With().Timestamp().Logger().Level(opts.Level.zerologLevel())
	j.zlog.Info().Msg("logging started")
	return j, nil
}

// Enabled reports whether a log file is being written
func (j *Journal) Enabled() bool {
	return j.file != nil
}

// Path returns the log file path, or "" when file logging is disabled
func (j *Journal) Path() string {
	return j.path
}

// 🔌 Context attaches the journal's structured logger so downstream packages
// can log through zerolog.Ctx without holding the journal itself
func (j *Journal) Context(ctx context.Context) context.Context {
	return j.zlog.WithContext(ctx)
}

// 🚪 Close flushes and closes the log file. Safe to call when disabled.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	if err := j.file.Close(); err != nil {
		return errors.Errorf("closing log file: %w", err)
	}
	j.file = nil
	return nil
}

// 📝 Infof prints an informational console line
func (j *Journal) Infof(format string, args ...interface{}) {
	j.consoleLine("ℹ️ ", color.FgCyan, format, args...)
	j.zlog.Info().Msgf(format, args...)
}

// 📝 Successf prints a success console line
func (j *Journal) Successf(format string, args ...interface{}) {
	j.consoleLine("✅", color.FgGreen, format, args...)
	j.zlog.Info().Msgf(format, args...)
}

// 📝 Warningf prints a warning console line
func (j *Journal) Warningf(format string, args ...interface{}) {
	j.consoleLine("⚠️ ", color.FgYellow, format, args...)
	j.zlog.Warn().Msgf(format, args...)
}

// 📝 Errorf prints an error console line
func (j *Journal) Errorf(format string, args ...interface{}) {
	j.consoleLine("❌", color.FgRed, format, args...)
	j.zlog.Error().Msgf(format, args...)
}

func (j *Journal) consoleLine(symbol string, attr color.Attribute, format string, args ...interface{}) {
	j.mu.Lock()
	defer j.mu.Unlock()
	fmt.Fprintf(j.console, "%s %s\n", symbol, color.New(attr).Sprint(fmt.Sprintf(format, args...)))
}
