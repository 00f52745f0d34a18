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

// Package rewrite applies a single replacement pair to a single target file.
package rewrite

import (
	"context"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/batrepl/pkg/charset"
	"gitlab.com/tozd/go/errors"
)

// 📊 Outcome classifies one (file, pair) attempt
type Outcome int

const (
	Unchanged Outcome = iota // Content did not contain the find text; no write
	Replaced                 // Content changed and was written back
	Failed                   // The attempt failed; see FailureKind
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Replaced:
		return "replaced"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ⚠️ FailureKind distinguishes permission failures from other I/O failures
type FailureKind int

const (
	FailureNone       FailureKind = iota
	FailurePermission             // Read or write blocked by filesystem permissions
	FailureIO                     // Any other failure while processing the file
)

// String returns a string representation of FailureKind
func (k FailureKind) String() string {
	switch k {
	case FailurePermission:
		return "permission"
	case FailureIO:
		return "io"
	default:
		return "none"
	}
}

// 📄 Result is the full record of one attempt. Failures never propagate as
// returned errors: a failed attempt is a no-op for that file and the run
// continues with the next file or pair.
type Result struct {
	Outcome Outcome
	Failure FailureKind // FailureNone unless Outcome is Failed
	Count   int         // Occurrences replaced when Outcome is Replaced
	Err     error       // Underlying error when Outcome is Failed
}

// ✏️ Apply performs one literal find-and-replace pass over the file at path.
// The file is read whole with a lossy UTF-8 decode, every non-overlapping
// occurrence of find is substituted, and the file is rewritten in place only
// when the content actually changed. A leading byte-order mark is preserved.
func Apply(ctx context.Context, path, find, replace string) Result {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(logger, path, find, errors.Errorf("reading %s: %w", path, err))
	}

	rest, hadBOM := charset.CutBOM(data)
	content := charset.DecodeLossy(rest)

	updated := strings.ReplaceAll(content, find, replace)
	if updated == content {
		logger.Debug().
			Str("file", path).
			Str("find", find).
			Msg("no replacement, content unchanged")
		return Result{Outcome: Unchanged}
	}

	out := []byte(updated)
	if hadBOM {
		out = append(charset.BOM(), out...)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fail(logger, path, find, errors.Errorf("writing %s: %w", path, err))
	}

	count := strings.Count(content, find)
	logger.Info().
		Str("file", path).
		Str("find", find).
		Str("replace", replace).
		Int("count", count).
		Msg("replacement performed")
	return Result{Outcome: Replaced, Count: count}
}

// fail logs one failed attempt and wraps it into a Result
func fail(logger *zerolog.Logger, path, find string, err error) Result {
	kind := FailureIO
	if errors.Is(err, fs.ErrPermission) {
		kind = FailurePermission
	}
	logger.Error().
		Err(err).
		Str("file", path).
		Str("find", find).
		Stringer("kind", kind).
		Msg("skipping file")
	return Result{Outcome: Failed, Failure: kind, Err: err}
}
