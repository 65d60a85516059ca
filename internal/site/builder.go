// Package site orchestrates a full Docsmith build: discover sources, parse
// pages in parallel, derive the navigation index at the parse barrier, render
// and write pages in parallel, and collect everything into a build report.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docsmith/docsmith/internal/config"
	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/logfields"
	"github.com/docsmith/docsmith/internal/metrics"
	"github.com/docsmith/docsmith/internal/nav"
	"github.com/docsmith/docsmith/internal/page"
	"github.com/docsmith/docsmith/internal/render"
)

// Stage names recorded in reports and metrics.
const (
	StageDiscover = "discover"
	StageParse    = "parse"
	StageNav      = "nav"
	StageRender   = "render"
	StageAssets   = "assets"
)

// BuildResult bundles the report with the derived navigation index.
type BuildResult struct {
	Report *Report
	Nav    nav.Index
}

// Builder runs build passes over a configured site.
type Builder struct {
	cfg        *config.Config
	renderer   *render.Renderer
	minifier   *render.Minifier
	layouts    *Layouts
	recorder   metrics.Recorder
	liveReload bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder wires a metrics recorder into the builder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithLiveReload injects the live reload script into every rendered page.
func WithLiveReload() Option {
	return func(b *Builder) { b.liveReload = true }
}

// NewBuilder constructs a builder, loading layout templates from the source.
func NewBuilder(cfg *config.Config, opts ...Option) (*Builder, error) {
	layouts, err := LoadLayouts(cfg.Source.Dir, cfg.Site.DefaultLayout)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		cfg:      cfg,
		renderer: render.New(),
		layouts:  layouts,
		recorder: metrics.NoopRecorder{},
	}
	if cfg.Build.Minify {
		b.minifier = render.NewMinifier()
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build runs one full pass. Per-page failures are collected into the report;
// only identity-breaking duplicate paths abort the batch, and then both
// conflicting sources are named. The returned error is non-nil only for
// aborts and infrastructure failures, never for per-page issues.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	buildID := uuid.NewString()
	report := NewReport(buildID)
	result := &BuildResult{Report: report}

	slog.Info("Starting site build",
		logfields.BuildID(buildID),
		logfields.Source(b.cfg.Source.Dir),
		logfields.Output(b.cfg.Output.Directory))

	outputDir := b.cfg.Output.Directory
	prior := NewFingerprints()
	if b.cfg.Output.Clean {
		if err := os.RemoveAll(outputDir); err != nil {
			return result, ferrors.FileSystemError(err, "clean output directory").
				WithContext("output", outputDir).
				Build()
		}
	} else if b.cfg.Build.Fingerprints {
		prior = LoadFingerprints(outputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, ferrors.FileSystemError(err, "create output directory").
			WithContext("output", outputDir).
			Build()
	}

	// Stage: discover.
	stageStart := time.Now()
	sources, err := Discover(b.cfg.Source.Dir, b.cfg.Output.Directory)
	b.finishStage(report, StageDiscover, stageStart)
	if err != nil {
		report.AddIssue(IssueDiscovery, SeverityError, "", err.Error())
		report.Finalize()
		return result, err
	}

	var pageSources, assetSources []SourceFile
	for _, sf := range sources {
		if sf.IsAsset {
			assetSources = append(assetSources, sf)
		} else {
			pageSources = append(pageSources, sf)
		}
	}
	report.PagesDiscovered = len(pageSources)

	// Duplicate page paths break link resolution and the navigation index;
	// abort before parsing and name both sources.
	if dupErr := checkDuplicatePaths(pageSources, report); dupErr != nil {
		report.Finalize()
		return result, dupErr
	}

	// Stage: parse (parallel, isolated per-page failures).
	stageStart = time.Now()
	pages := b.parsePages(ctx, pageSources, report)
	b.finishStage(report, StageParse, stageStart)
	report.PagesParsed = len(pages)

	// Stage: nav. Runs strictly after the parse barrier.
	stageStart = time.Now()
	index := nav.Build(pages)
	result.Nav = index
	b.finishStage(report, StageNav, stageStart)

	next := NewFingerprints()
	next.Nav = NavSignature(index)
	navChanged := next.Nav != prior.Nav

	// Stage: render + write (parallel).
	stageStart = time.Now()
	b.renderPages(ctx, pages, index, prior, next, navChanged, report)
	b.finishStage(report, StageRender, stageStart)

	// Stage: assets.
	stageStart = time.Now()
	b.copyAssets(assetSources, report)
	b.finishStage(report, StageAssets, stageStart)

	if err := b.writeNavArtifact(index); err != nil {
		report.AddIssue(IssueWriteFailure, SeverityError, "", err.Error())
	}
	if b.cfg.Build.Fingerprints {
		if err := next.Persist(outputDir); err != nil {
			slog.Warn("Failed to persist fingerprint manifest", logfields.Error(err))
		}
	}

	report.Finalize()
	if err := report.Persist(outputDir); err != nil {
		slog.Warn("Failed to persist build report", logfields.Error(err))
	}

	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(string(report.Outcome))

	slog.Info("Site build finished",
		logfields.BuildID(buildID),
		logfields.Outcome(string(report.Outcome)),
		slog.Int("rendered", report.PagesRendered),
		slog.Int("skipped", report.PagesSkipped),
		slog.Int("issues", len(report.Issues)))

	return result, nil
}

// checkDuplicatePaths reports the first duplicate page identity as a fatal
// build error naming both conflicting sources.
func checkDuplicatePaths(sources []SourceFile, report *Report) error {
	byPath := make(map[string]SourceFile, len(sources))
	for _, sf := range sources {
		if first, dup := byPath[sf.Path]; dup {
			msg := fmt.Sprintf("duplicate page path %q: %s and %s", sf.Path, first.SourcePath, sf.SourcePath)
			report.AddIssue(IssueDuplicatePath, SeverityError, sf.Path, msg)
			return ferrors.NewError(ferrors.CategoryBuild, "duplicate page path").
				Fatal().
				WithContext("path", sf.Path).
				WithContext("first", first.SourcePath).
				WithContext("second", sf.SourcePath).
				Build()
		}
		byPath[sf.Path] = sf
	}
	return nil
}

// parsePages parses all page sources with bounded parallelism. Slots for
// failed pages stay nil and are compacted afterwards so the surviving pages
// keep discovery order, which the nav builder relies on for unordered pages.
func (b *Builder) parsePages(ctx context.Context, sources []SourceFile, report *Report) []*page.Page {
	parsed := make([]*page.Page, len(sources))
	errs := make([]error, len(sources))

	forEachParallel(len(sources), b.cfg.Build.Workers, func(i int) {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			return
		}
		p, err := page.ParseFile(sources[i].SourcePath, sources[i].Path)
		if err != nil {
			errs[i] = err
			return
		}
		parsed[i] = p
	})

	metadataErrors := 0
	pages := make([]*page.Page, 0, len(sources))
	for i, p := range parsed {
		if p != nil {
			pages = append(pages, p)
			continue
		}
		err := errs[i]
		if ferrors.HasCategory(err, ferrors.CategoryMetadata) {
			metadataErrors++
			report.AddIssue(IssueMetadataError, SeverityError, sources[i].Path, err.Error())
			slog.Warn("Page excluded: malformed front matter",
				logfields.Page(sources[i].Path),
				logfields.Error(err))
			continue
		}
		report.AddIssue(IssueParseFailure, SeverityError, sources[i].Path, err.Error())
	}
	b.recorder.AddMetadataErrors(metadataErrors)
	return pages
}

// renderPages renders and writes all pages with bounded parallelism.
func (b *Builder) renderPages(ctx context.Context, pages []*page.Page, index nav.Index,
	prior, next Fingerprints, navChanged bool, report *Report) {

	known := render.NewPathSet(pagePaths(pages))

	var mu sync.Mutex
	rendered, skipped, danglingTotal := 0, 0, 0

	forEachParallel(len(pages), b.cfg.Build.Workers, func(i int) {
		if ctx.Err() != nil {
			return
		}
		p := pages[i]

		var fingerprint string
		if b.cfg.Build.Fingerprints {
			fp, err := p.Fingerprint()
			if err == nil {
				fingerprint = fp
			}
		}

		outPath := b.outputPathFor(p.Path)
		if fingerprint != "" && !navChanged && prior.Pages[p.Path] == fingerprint && fileExists(outPath) {
			// The body is unchanged, so any dangling links in it are still
			// there; skipping the render must not drop them from the report.
			stillDangling := render.CheckLinks(p.Body, p.Path, known)
			mu.Lock()
			skipped++
			next.Pages[p.Path] = fingerprint
			for _, target := range stillDangling {
				danglingTotal++
				report.AddIssue(IssueDanglingLink, SeverityWarning, p.Path,
					fmt.Sprintf("internal link to unknown page %q", target))
			}
			mu.Unlock()
			return
		}

		res, err := b.renderer.Render(p, known)
		if err != nil {
			mu.Lock()
			report.AddIssue(IssueRenderFailure, SeverityError, p.Path, err.Error())
			mu.Unlock()
			return
		}

		html, err := b.applyLayout(p, res, index)
		if err != nil {
			mu.Lock()
			report.AddIssue(IssueRenderFailure, SeverityError, p.Path, err.Error())
			mu.Unlock()
			return
		}

		if err := writeFileAtomicish(outPath, html); err != nil {
			mu.Lock()
			report.AddIssue(IssueWriteFailure, SeverityError, p.Path, err.Error())
			mu.Unlock()
			return
		}

		mu.Lock()
		rendered++
		if fingerprint != "" {
			next.Pages[p.Path] = fingerprint
		}
		for _, target := range res.Dangling {
			danglingTotal++
			report.AddIssue(IssueDanglingLink, SeverityWarning, p.Path,
				fmt.Sprintf("internal link to unknown page %q", target))
		}
		mu.Unlock()
	})

	report.PagesRendered = rendered
	report.PagesSkipped = skipped
	b.recorder.AddPagesRendered(rendered)
	b.recorder.AddPagesSkipped(skipped)
	b.recorder.AddDanglingLinks(danglingTotal)
}

// applyLayout wraps a rendered body in its layout template.
func (b *Builder) applyLayout(p *page.Page, res *render.Result, index nav.Index) ([]byte, error) {
	tmpl := b.layouts.Lookup(p.Layout)

	var buf bytes.Buffer
	data := LayoutData{
		SiteTitle:   b.cfg.Site.Title,
		Title:       p.Title,
		Content:     template.HTML(res.HTML), // #nosec G203 -- renderer output
		Nav:         index.Entries,
		CurrentPath: p.Path,
		LiveReload:  b.liveReload,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, ferrors.RenderError(err, "execute layout template").
			WithContext("path", p.Path).
			WithContext("layout", p.Layout).
			Build()
	}

	out := buf.Bytes()
	if b.minifier != nil {
		out = b.minifier.Minify(out)
	}
	return out, nil
}

func (b *Builder) copyAssets(assets []SourceFile, report *Report) {
	copied := 0
	for _, asset := range assets {
		dst := filepath.Join(b.cfg.Output.Directory, filepath.FromSlash(asset.Path))
		if err := copyFile(asset.SourcePath, dst); err != nil {
			report.AddIssue(IssueWriteFailure, SeverityError, asset.Path, err.Error())
			continue
		}
		copied++
	}
	report.AssetsCopied = copied
}

// writeNavArtifact emits the navigation index for the site publisher.
func (b *Builder) writeNavArtifact(index nav.Index) error {
	data, err := index.MarshalJSON()
	if err != nil {
		return err
	}
	// #nosec G306 -- public site artifact.
	return os.WriteFile(filepath.Join(b.cfg.Output.Directory, "nav.json"), data, 0o644)
}

// outputPathFor maps a page path to its pretty-URL output file.
func (b *Builder) outputPathFor(pagePath string) string {
	return filepath.Join(b.cfg.Output.Directory, filepath.FromSlash(pagePath), "index.html")
}

func (b *Builder) finishStage(report *Report, stage string, start time.Time) {
	d := time.Since(start)
	report.RecordStage(stage, d)
	b.recorder.ObserveStageDuration(stage, d)
	slog.Debug("Stage complete", logfields.Stage(stage), logfields.DurationMS(float64(d.Milliseconds())))
}

func pagePaths(pages []*page.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Path
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func writeFileAtomicish(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	// #nosec G306 -- rendered pages are public content.
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	// #nosec G304 -- src comes from site discovery.
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 -- dst is derived from discovery under the output dir.
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
