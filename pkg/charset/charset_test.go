package charset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batrepl/pkg/charset"
)

func TestDetectBytes(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		want     charset.Encoding
		wantText string
	}{
		{
			name:     "plain_ascii",
			data:     []byte("hello world"),
			want:     charset.UTF8,
			wantText: "hello world",
		},
		{
			name:     "utf8_multibyte",
			data:     []byte("こんにちは"),
			want:     charset.UTF8,
			wantText: "こんにちは",
		},
		{
			name:     "utf8_with_bom",
			data:     append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...),
			want:     charset.UTF8,
			wantText: "hello",
		},
		{
			name: "shift_jis_only",
			// "こんにちは" encoded as Shift-JIS; invalid as UTF-8
			data:     []byte{0x82, 0xB1, 0x82, 0xF1, 0x82, 0xC9, 0x82, 0xBF, 0x82, 0xCD},
			want:     charset.ShiftJIS,
			wantText: "こんにちは",
		},
		{
			name: "valid_under_neither",
			// 0xFD and 0xFE are not valid Shift-JIS lead bytes and not valid UTF-8
			data: []byte{0xFE, 0xFD, 0xFE, 0xFD},
			want: charset.Unknown,
		},
		{
			name:     "empty_file",
			data:     []byte{},
			want:     charset.UTF8,
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := charset.DetectBytes(tt.data)
			assert.Equal(t, tt.want, det.Encoding)
			assert.Equal(t, tt.want != charset.Unknown, det.Detected())
			if tt.want != charset.Unknown {
				assert.Equal(t, tt.wantText, det.Text)
			}
		})
	}
}

func TestDetect_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.csv")
	require.NoError(t, os.WriteFile(path, []byte("before,after\n"), 0o644))

	det, err := charset.Detect(path)
	require.NoError(t, err)
	assert.Equal(t, charset.UTF8, det.Encoding)
	assert.Equal(t, "before,after\n", det.Text)
}

func TestDetect_MissingFile(t *testing.T) {
	_, err := charset.Detect(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestDetect_FullFileStrictness(t *testing.T) {
	// A file whose prefix decodes cleanly but whose tail is garbage must not
	// be classified by the prefix alone.
	data := append([]byte("clean prefix "), 0xFE, 0xFD)
	det := charset.DetectBytes(data)
	assert.False(t, det.Detected())
}

func TestDecodeLossy(t *testing.T) {
	got := charset.DecodeLossy([]byte{'a', 0xFF, 'b'})
	assert.Equal(t, "a�b", got)

	got = charset.DecodeLossy([]byte("untouched"))
	assert.Equal(t, "untouched", got)
}

func TestCutBOM(t *testing.T) {
	rest, had := charset.CutBOM(append(charset.BOM(), 'x'))
	assert.True(t, had)
	assert.Equal(t, []byte{'x'}, rest)

	rest, had = charset.CutBOM([]byte("x"))
	assert.False(t, had)
	assert.Equal(t, []byte("x"), rest)
}
