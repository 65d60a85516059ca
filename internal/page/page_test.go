package page

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
)

func TestParse_TypedFieldsAndPassthrough(t *testing.T) {
	src := []byte("---\ntitle: Getting Started\nlayout: guide\nnav_order: 3\nauthor: docs-team\ntags: [setup, intro]\n---\n# Hello\n")

	p, err := Parse("guide/getting-started", src)
	require.NoError(t, err)
	require.Equal(t, "Getting Started", p.Title)
	require.Equal(t, "guide", p.Layout)
	require.True(t, p.HasNavOrder())
	require.Equal(t, 3, *p.NavOrder)
	require.Equal(t, []byte("# Hello\n"), p.Body)

	// Unrecognized keys survive opaquely; recognized keys do not leak into Extra.
	require.Equal(t, "docs-team", p.Extra["author"])
	require.Contains(t, p.Extra, "tags")
	require.NotContains(t, p.Extra, KeyTitle)
	require.NotContains(t, p.Extra, KeyNavOrder)
}

func TestParse_NoFrontmatter(t *testing.T) {
	p, err := Parse("reference/api-keys", []byte("# API Keys\n"))
	require.NoError(t, err)
	require.False(t, p.HadFrontmatter)
	require.False(t, p.HasNavOrder())
	require.Equal(t, "Api Keys", p.Title)
}

func TestParse_MissingClosingDelimiter_IsMetadataError(t *testing.T) {
	_, err := Parse("broken", []byte("---\ntitle: Broken\n# Body\n"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryMetadata))

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	path, ok := classified.Context().GetString("path")
	require.True(t, ok)
	require.Equal(t, "broken", path)
}

func TestParse_InvalidYAML_IsMetadataError(t *testing.T) {
	_, err := Parse("broken", []byte("---\ntitle: [oops\n---\nbody\n"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryMetadata))
}

func TestParse_NavOrderCoercion(t *testing.T) {
	p, err := Parse("a", []byte("---\nnav_order: \"7\"\n---\nbody\n"))
	require.NoError(t, err)
	require.Equal(t, 7, *p.NavOrder)

	_, err = Parse("b", []byte("---\nnav_order: 1.5\n---\nbody\n"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryMetadata))

	_, err = Parse("c", []byte("---\nnav_order: [1]\n---\nbody\n"))
	require.Error(t, err)
}

func TestParse_EmptyTitleFallsBackToPath(t *testing.T) {
	p, err := Parse("guide/install_notes", []byte("---\ntitle: \"  \"\n---\nbody\n"))
	require.NoError(t, err)
	require.Equal(t, "Install Notes", p.Title)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "intro.md")
	require.NoError(t, os.WriteFile(src, []byte("---\ntitle: Intro\n---\nhello\n"), 0o644))

	p, err := ParseFile(src, "intro")
	require.NoError(t, err)
	require.Equal(t, src, p.SourcePath)
	require.Equal(t, "Intro", p.Title)

	_, err = ParseFile(filepath.Join(dir, "missing.md"), "missing")
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestFingerprint_StableAcrossKeyOrder(t *testing.T) {
	a, err := Parse("p", []byte("---\ntitle: T\nalpha: 1\nzeta: 2\n---\nbody\n"))
	require.NoError(t, err)
	b, err := Parse("p", []byte("---\nzeta: 2\nalpha: 1\ntitle: T\n---\nbody\n"))
	require.NoError(t, err)

	fpA, err := a.Fingerprint()
	require.NoError(t, err)
	fpB, err := b.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, fpA, fpB)
	require.NotEmpty(t, fpA)
}

func TestFingerprint_ChangesWithBody(t *testing.T) {
	a, err := Parse("p", []byte("---\ntitle: T\n---\none\n"))
	require.NoError(t, err)
	b, err := Parse("p", []byte("---\ntitle: T\n---\ntwo\n"))
	require.NoError(t, err)

	fpA, _ := a.Fingerprint()
	fpB, _ := b.Fingerprint()
	require.NotEqual(t, fpA, fpB)
}
