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

// Package pairs loads the replacement table that drives a run.
package pairs

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/batrepl/pkg/charset"
	"gitlab.com/tozd/go/errors"
)

// 🚫 ErrEncodingUndetected means the table file matches no supported encoding.
// This is fatal for the whole run: no target file is touched.
var ErrEncodingUndetected = errors.Base("unable to detect table file encoding")

// 🔄 Pair is one find/replace association applied to every selected file
type Pair struct {
	Find    string // Literal text to search for
	Replace string // Literal text to substitute
	Note    string // Optional third-column annotation, informational only
}

// 📖 Load reads the replacement table at tablePath. The file's encoding is
// probed before parsing; the whole table must decode cleanly under one
// candidate. Rows parse as CSV with double-quote quoting and doubled-quote
// escaping:
//   - rows with fewer than 2 fields are skipped silently
//   - rows with 2 fields yield a pair with no note
//   - rows with 3 or more fields yield a pair plus a note, which is logged
//     and then discarded
//
// Pair order matches row order and determines application order per file.
// Duplicate or overlapping find-texts are allowed.
func Load(ctx context.Context, tablePath string) ([]Pair, error) {
	logger := zerolog.Ctx(ctx)

	det, err := charset.Detect(tablePath)
	if err != nil {
		return nil, errors.Errorf("probing table file: %w", err)
	}
	if !det.Detected() {
		return nil, errors.Errorf("probing table file %s: %w", tablePath, ErrEncodingUndetected)
	}
	logger.Debug().Str("table", tablePath).Stringer("encoding", det.Encoding).Msg("table encoding detected")

	reader := csv.NewReader(strings.NewReader(det.Text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var loaded []Pair
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Errorf("parsing table row: %w", err)
		}
		if len(record) < 2 {
			continue
		}

		pair := Pair{
			Find:    unescapeQuotes(record[0]),
			Replace: unescapeQuotes(record[1]),
		}
		if len(record) >= 3 {
			pair.Note = record[2]
			logger.Info().
				Str("find", pair.Find).
				Str("note", pair.Note).
				Msg("pair loaded with note")
		}
		loaded = append(loaded, pair)
	}

	logger.Info().Int("pairs", len(loaded)).Str("table", tablePath).Msg("replacement table loaded")
	return loaded, nil
}

// unescapeQuotes collapses doubled quote characters left in a parsed field.
// The CSV reader already unescapes quoted fields; this second pass also
// covers doubled quotes appearing in unquoted fields.
func unescapeQuotes(field string) string {
	return strings.ReplaceAll(field, `""`, `"`)
}
