package commands

import (
	"encoding/json"
	"fmt"
	"os"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/linkcheck"
	"github.com/docsmith/docsmith/internal/page"
	"github.com/docsmith/docsmith/internal/render"
	"github.com/docsmith/docsmith/internal/site"
)

// LintCmd implements the 'lint' command: a parse-only pass over the source
// tree reporting metadata errors and dangling internal links, without writing
// any output. With --rendered it additionally checks the links of an already
// rendered site.
type LintCmd struct {
	Format   string `short:"f" default:"text" enum:"text,json" help:"Output format (text or json)"`
	Rendered bool   `help:"Also verify links in the rendered output directory"`
}

// lintIssue is one finding of the lint pass.
type lintIssue struct {
	Severity site.IssueSeverity `json:"severity"`
	Page     string             `json:"page"`
	Message  string             `json:"message"`
}

func (l *LintCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		logClassified(err)
		return err
	}

	issues, err := lintSource(cfg.Source.Dir, cfg.Output.Directory)
	if err != nil {
		logClassified(err)
		return err
	}

	if l.Rendered {
		broken, err := linkcheck.CheckDir(cfg.Output.Directory)
		if err != nil {
			logClassified(err)
			return err
		}
		for _, b := range broken {
			issues = append(issues, lintIssue{
				Severity: site.SeverityWarning,
				Page:     b.Page,
				Message:  fmt.Sprintf("broken reference <%s %s>: %s", b.Tag, b.Target, b.Reason),
			})
		}
	}

	if err := printIssues(issues, l.Format); err != nil {
		return err
	}

	errorCount := 0
	for _, issue := range issues {
		if issue.Severity == site.SeverityError {
			errorCount++
		}
	}
	if errorCount > 0 {
		return fmt.Errorf("lint found %d errors", errorCount)
	}
	return nil
}

// lintSource parses every page without rendering or writing anything.
func lintSource(sourceDir, outputDir string) ([]lintIssue, error) {
	sources, err := site.Discover(sourceDir, outputDir)
	if err != nil {
		return nil, err
	}

	var issues []lintIssue
	var pages []*page.Page
	for _, sf := range sources {
		if sf.IsAsset {
			continue
		}
		p, err := page.ParseFile(sf.SourcePath, sf.Path)
		if err != nil {
			severity := site.SeverityError
			if !ferrors.HasCategory(err, ferrors.CategoryMetadata) {
				severity = site.SeverityWarning
			}
			issues = append(issues, lintIssue{Severity: severity, Page: sf.Path, Message: err.Error()})
			continue
		}
		pages = append(pages, p)
	}

	known := render.NewPathSet(pagePaths(pages))
	for _, p := range pages {
		for _, target := range render.CheckLinks(p.Body, p.Path, known) {
			issues = append(issues, lintIssue{
				Severity: site.SeverityWarning,
				Page:     p.Path,
				Message:  fmt.Sprintf("internal link to unknown page %q", target),
			})
		}
	}
	return issues, nil
}

func pagePaths(pages []*page.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Path
	}
	return out
}

func printIssues(issues []lintIssue, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(issues)
	default:
		for _, issue := range issues {
			fmt.Printf("[%s] %s: %s\n", issue.Severity, issue.Page, issue.Message)
		}
		fmt.Printf("%d issues\n", len(issues))
	}
	return nil
}
