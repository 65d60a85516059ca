package site

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docsmith/docsmith/internal/config"
	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	src := t.TempDir()
	out := t.TempDir()
	return &config.Config{
		Site:   config.SiteConfig{Title: "Test Docs", DefaultLayout: "default"},
		Source: config.SourceConfig{Dir: src},
		Build:  config.BuildConfig{Workers: 4},
		Output: config.OutputConfig{Directory: out},
	}
}

func writePage(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func runBuild(t *testing.T, cfg *config.Config) *BuildResult {
	t.Helper()
	b, err := NewBuilder(cfg)
	require.NoError(t, err)
	res, err := b.Build(context.Background())
	require.NoError(t, err)
	return res
}

func TestBuild_NavOrderScenario(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "a.md", "---\ntitle: A\nnav_order: 2\n---\nAlpha\n")
	writePage(t, cfg.Source.Dir, "b.md", "---\ntitle: B\nnav_order: 1\n---\nBeta\n")
	writePage(t, cfg.Source.Dir, "c.md", "---\ntitle: C\n---\nGamma\n")

	res := runBuild(t, cfg)
	require.Equal(t, OutcomeSuccess, res.Report.Outcome)
	require.Equal(t, []string{"b", "a", "c"}, res.Nav.Paths())
}

func TestBuild_WritesPrettyURLsAndNavArtifact(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "index.md", "---\ntitle: Home\nnav_order: 1\n---\n# Welcome\n")
	writePage(t, cfg.Source.Dir, "guide/setup.md", "---\ntitle: Setup\nnav_order: 2\n---\n# Setup\n")

	res := runBuild(t, cfg)
	require.Equal(t, 2, res.Report.PagesRendered)

	html, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "guide", "setup", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(html), "Setup")
	require.Contains(t, string(html), "Test Docs")

	navData, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "nav.json"))
	require.NoError(t, err)
	require.JSONEq(t,
		`{"entries":[{"title":"Home","path":"index"},{"title":"Setup","path":"guide/setup"}]}`,
		string(navData))
}

func TestBuild_MetadataErrorIsolatedAndReported(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "good.md", "---\ntitle: Good\nnav_order: 1\n---\nok\n")
	writePage(t, cfg.Source.Dir, "broken.md", "---\ntitle: Broken\nno closing delimiter\n")

	res := runBuild(t, cfg)

	// The broken page is excluded from the index but the build continues.
	require.Equal(t, []string{"good"}, res.Nav.Paths())
	require.Equal(t, 1, res.Report.PagesRendered)

	errorIssues := res.Report.Errors()
	require.Len(t, errorIssues, 1)
	require.Equal(t, IssueMetadataError, errorIssues[0].Code)
	require.Equal(t, "broken", errorIssues[0].Page)
	require.Equal(t, OutcomeFailed, res.Report.Outcome)
}

func TestBuild_DuplicatePathAbortsWithBothSources(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "page.md", "one\n")
	writePage(t, cfg.Source.Dir, "page.markdown", "two\n")

	b, err := NewBuilder(cfg)
	require.NoError(t, err)
	res, err := b.Build(context.Background())
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))

	require.Empty(t, res.Nav.Entries)
	dups := res.Report.Errors()
	require.Len(t, dups, 1)
	require.Equal(t, IssueDuplicatePath, dups[0].Code)
	require.Contains(t, dups[0].Message, "page.md")
	require.Contains(t, dups[0].Message, "page.markdown")

	// No navigation artifact may exist for an aborted build.
	_, statErr := os.Stat(filepath.Join(cfg.Output.Directory, "nav.json"))
	require.True(t, os.IsNotExist(statErr))
}

func TestBuild_DanglingLinkIsWarningAndRenderSucceeds(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "index.md", "See [missing](nothere.md).\n")

	res := runBuild(t, cfg)
	require.Equal(t, OutcomeWarning, res.Report.Outcome)
	require.Equal(t, 1, res.Report.PagesRendered)

	warnings := res.Report.Warnings()
	require.Len(t, warnings, 1)
	require.Equal(t, IssueDanglingLink, warnings[0].Code)
	require.Contains(t, warnings[0].Message, "nothere")
}

func TestBuild_TableAndCodeBlockVerbatim(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "ref.md",
		"| Name | Key |\n|---|---|\n| Prod | pk_live_001 |\n\n```\nexport TOKEN=abc123\n```\n")

	res := runBuild(t, cfg)
	require.Equal(t, OutcomeSuccess, res.Report.Outcome)

	html, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "ref", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(html), "pk_live_001")
	require.Contains(t, string(html), "export TOKEN=abc123")
}

func TestBuild_AssetsCopiedVerbatim(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "index.md", "![d](img/diagram.png)\n")
	writePage(t, cfg.Source.Dir, "img/diagram.png", "\x89PNG-fake-bytes")

	res := runBuild(t, cfg)
	require.Equal(t, 1, res.Report.AssetsCopied)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "img", "diagram.png"))
	require.NoError(t, err)
	require.Equal(t, "\x89PNG-fake-bytes", string(data))
}

func TestBuild_FingerprintSkipOnRebuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.Fingerprints = true
	writePage(t, cfg.Source.Dir, "a.md", "---\ntitle: A\nnav_order: 1\n---\nstable\n")
	writePage(t, cfg.Source.Dir, "b.md", "---\ntitle: B\nnav_order: 2\n---\nstable too\n")

	first := runBuild(t, cfg)
	require.Equal(t, 2, first.Report.PagesRendered)
	require.Equal(t, 0, first.Report.PagesSkipped)

	// Nothing changed: everything skips.
	second := runBuild(t, cfg)
	require.Equal(t, 0, second.Report.PagesRendered)
	require.Equal(t, 2, second.Report.PagesSkipped)

	// Touch one page body: only that page re-renders.
	writePage(t, cfg.Source.Dir, "b.md", "---\ntitle: B\nnav_order: 2\n---\nchanged\n")
	third := runBuild(t, cfg)
	require.Equal(t, 1, third.Report.PagesRendered)
	require.Equal(t, 1, third.Report.PagesSkipped)
}

func TestBuild_DanglingWarningSurvivesSkippedRebuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.Fingerprints = true
	writePage(t, cfg.Source.Dir, "index.md", "---\ntitle: Home\nnav_order: 1\n---\nSee [missing](nothere.md).\n")

	first := runBuild(t, cfg)
	require.Equal(t, OutcomeWarning, first.Report.Outcome)
	require.Equal(t, 1, first.Report.PagesRendered)
	require.Len(t, first.Report.Warnings(), 1)

	// The unchanged rebuild skips the render, but the link is still broken;
	// the outcome must not improve to success.
	second := runBuild(t, cfg)
	require.Equal(t, 0, second.Report.PagesRendered)
	require.Equal(t, 1, second.Report.PagesSkipped)
	require.Equal(t, OutcomeWarning, second.Report.Outcome)

	warnings := second.Report.Warnings()
	require.Len(t, warnings, 1)
	require.Equal(t, IssueDanglingLink, warnings[0].Code)
	require.Equal(t, "index", warnings[0].Page)
}

func TestBuild_CancelledContextReportsParseFailures(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "a.md", "---\ntitle: A\n---\nbody\n")

	b, err := NewBuilder(cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := b.Build(ctx)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, res.Report.Outcome)

	errs := res.Report.Errors()
	require.NotEmpty(t, errs)
	for _, issue := range errs {
		require.Equal(t, IssueParseFailure, issue.Code)
	}
}

func TestBuild_NavChangeInvalidatesAllSkips(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.Fingerprints = true
	writePage(t, cfg.Source.Dir, "a.md", "---\ntitle: A\nnav_order: 1\n---\nbody\n")
	writePage(t, cfg.Source.Dir, "b.md", "---\ntitle: B\nnav_order: 2\n---\nbody\n")
	runBuild(t, cfg)

	// Retitling page A changes the nav menu embedded in every page.
	writePage(t, cfg.Source.Dir, "a.md", "---\ntitle: A New Title\nnav_order: 1\n---\nbody\n")
	res := runBuild(t, cfg)
	require.Equal(t, 2, res.Report.PagesRendered)
	require.Equal(t, 0, res.Report.PagesSkipped)
}

func TestBuild_EmptySourceYieldsEmptyIndex(t *testing.T) {
	cfg := testConfig(t)
	res := runBuild(t, cfg)
	require.Equal(t, OutcomeSuccess, res.Report.Outcome)
	require.Empty(t, res.Nav.Entries)
	require.Equal(t, 0, res.Report.PagesRendered)
}

func TestBuild_ReportPersisted(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "index.md", "hello\n")

	runBuild(t, cfg)
	data, err := os.ReadFile(filepath.Join(cfg.Output.Directory, ".docsmith", "report.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"outcome": "success"`)
}

func TestBuild_CustomLayoutFromSource(t *testing.T) {
	cfg := testConfig(t)
	writePage(t, cfg.Source.Dir, "_layouts/bare.html.tmpl", "<main>{{ .Content }}</main>")
	writePage(t, cfg.Source.Dir, "page.md", "---\ntitle: P\nlayout: bare\n---\nhello\n")

	res := runBuild(t, cfg)
	require.Equal(t, OutcomeSuccess, res.Report.Outcome)

	html, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "page", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(html), "<main>")
	require.NotContains(t, string(html), "<nav>")
}
