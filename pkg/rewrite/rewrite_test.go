package rewrite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/batrepl/pkg/charset"
	"github.com/walteh/batrepl/pkg/rewrite"
)

func testCtx(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func writeTarget(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		find        string
		replace     string
		wantOutcome rewrite.Outcome
		wantCount   int
		wantContent string
	}{
		{
			name:        "single_occurrence",
			content:     "foo baz",
			find:        "foo",
			replace:     "bar",
			wantOutcome: rewrite.Replaced,
			wantCount:   1,
			wantContent: "bar baz",
		},
		{
			name:        "every_occurrence",
			content:     "foo baz foo",
			find:        "foo",
			replace:     "bar",
			wantOutcome: rewrite.Replaced,
			wantCount:   2,
			wantContent: "bar baz bar",
		},
		{
			name:        "no_match",
			content:     "nothing here",
			find:        "foo",
			replace:     "bar",
			wantOutcome: rewrite.Unchanged,
			wantContent: "nothing here",
		},
		{
			name:        "replacement_can_shrink",
			content:     "aaa",
			find:        "aa",
			replace:     "a",
			wantOutcome: rewrite.Replaced,
			wantCount:   1,
			wantContent: "aa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTarget(t, []byte(tt.content))

			res := rewrite.Apply(testCtx(t), path, tt.find, tt.replace)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantCount, res.Count)
			assert.Equal(t, rewrite.FailureNone, res.Failure)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, string(data))
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	path := writeTarget(t, []byte("foo baz"))
	ctx := testCtx(t)

	res := rewrite.Apply(ctx, path, "foo", "bar")
	assert.Equal(t, rewrite.Replaced, res.Outcome)

	// The find text is gone after the first pass, so the second pass must
	// not rewrite the file.
	before, err := os.Stat(path)
	require.NoError(t, err)

	res = rewrite.Apply(ctx, path, "foo", "bar")
	assert.Equal(t, rewrite.Unchanged, res.Outcome)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestApply_SequentialComposition(t *testing.T) {
	path := writeTarget(t, []byte("a"))
	ctx := testCtx(t)

	res := rewrite.Apply(ctx, path, "a", "b")
	assert.Equal(t, rewrite.Replaced, res.Outcome)
	res = rewrite.Apply(ctx, path, "b", "c")
	assert.Equal(t, rewrite.Replaced, res.Outcome)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c", string(data))
}

func TestApply_PreservesBOM(t *testing.T) {
	path := writeTarget(t, append(charset.BOM(), []byte("foo")...))

	res := rewrite.Apply(testCtx(t), path, "foo", "bar")
	assert.Equal(t, rewrite.Replaced, res.Outcome)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, append(charset.BOM(), []byte("bar")...), data)
}

func TestApply_LossyDecode(t *testing.T) {
	// An invalid byte must not abort the pass; it decodes to the
	// replacement character and the rest of the file is still rewritten.
	path := writeTarget(t, []byte{'f', 'o', 'o', ' ', 0xFF, ' ', 'f', 'o', 'o'})

	res := rewrite.Apply(testCtx(t), path, "foo", "bar")
	assert.Equal(t, rewrite.Replaced, res.Outcome)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bar � bar", string(data))
}

func TestApply_MissingFile(t *testing.T) {
	res := rewrite.Apply(testCtx(t), filepath.Join(t.TempDir(), "absent.html"), "a", "b")
	assert.Equal(t, rewrite.Failed, res.Outcome)
	assert.Equal(t, rewrite.FailureIO, res.Failure)
	require.Error(t, res.Err)
}

func TestApply_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed when running as root")
	}

	path := writeTarget(t, []byte("foo"))
	require.NoError(t, os.Chmod(path, 0o444))

	res := rewrite.Apply(testCtx(t), path, "foo", "bar")
	assert.Equal(t, rewrite.Failed, res.Outcome)
	assert.Equal(t, rewrite.FailurePermission, res.Failure)

	require.NoError(t, os.Chmod(path, 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo", string(data))
}
