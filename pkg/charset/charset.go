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

// Package charset probes file content against the supported text encodings
// and provides the permissive decode used when rewriting target files.
package charset

import (
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// 🔤 Encoding identifies one of the supported text encodings
type Encoding int

const (
	Unknown Encoding = iota
	UTF8             // Variable-width, superset of ASCII; tried first
	ShiftJIS         // Legacy double-byte; tried second
)

// String returns a string representation of Encoding
func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case ShiftJIS:
		return "shift-jis"
	default:
		return "unknown"
	}
}

// 🎯 Detection is the tagged result of probing bytes against the candidates.
// A zero Detection means no candidate decoded the content cleanly.
type Detection struct {
	Encoding Encoding // Which candidate matched, or Unknown
	Text     string   // Fully decoded content when a candidate matched
}

// Detected reports whether any candidate encoding matched
func (d Detection) Detected() bool {
	return d.Encoding != Unknown
}

// utf8BOM is the byte-order mark some editors prefix to UTF-8 files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CutBOM splits a UTF-8 byte-order mark off the front of data
func CutBOM(data []byte) ([]byte, bool) {
	return bytes.CutPrefix(data, utf8BOM)
}

// BOM returns the UTF-8 byte-order mark
func BOM() []byte {
	return append([]byte(nil), utf8BOM...)
}

// 🔍 Detect probes the file at path. The whole file must decode cleanly
// under a candidate before that candidate is accepted; a prefix that decodes
// is not enough, since Shift-JIS can mis-read byte runs as partial characters
// that only fail later in the file. The returned error covers I/O only; a
// file matching no candidate yields a zero Detection and a nil error.
func Detect(path string) (Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Detection{}, errors.Errorf("reading %s: %w", path, err)
	}
	return DetectBytes(data), nil
}

// DetectBytes probes in-memory content against each candidate in priority order
func DetectBytes(data []byte) Detection {
	rest, _ := CutBOM(data)
	if utf8.Valid(rest) {
		return Detection{Encoding: UTF8, Text: string(rest)}
	}

	decoded, err := decodeShiftJIS(data)
	if err == nil {
		return Detection{Encoding: ShiftJIS, Text: decoded}
	}

	return Detection{}
}

// decodeShiftJIS decodes the whole input strictly. The x/text decoder
// substitutes U+FFFD for byte sequences outside the character set instead of
// failing, so the output is scanned for the replacement rune to turn a lossy
// decode back into a hard failure.
func decodeShiftJIS(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return "", errors.Errorf("decoding shift-jis: %w", err)
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		// No Shift-JIS sequence maps to U+FFFD, so its presence always
		// means the decoder substituted for invalid input.
		return "", errors.New("shift-jis decode produced replacement characters")
	}
	return string(decoded), nil
}

// 🛟 DecodeLossy decodes content as UTF-8, substituting the replacement
// character for invalid byte sequences instead of failing. Target files come
// from a large unpredictable corpus with mixed or partially corrupt
// encodings, so rewriting tolerates what probing would reject.
func DecodeLossy(data []byte) string {
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}
