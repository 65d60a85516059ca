// Package page defines the unit of documentation content Docsmith builds
// from: a path-identified Markdown document with typed front matter fields
// and an opaque passthrough map for everything else.
package page

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/frontmatter"
)

// Well-known front matter keys. Any other key is preserved opaquely in Extra.
const (
	KeyTitle    = "title"
	KeyLayout   = "layout"
	KeyNavOrder = "nav_order"
)

// Page is one parsed documentation page.
//
// Path uniquely identifies the page across the site; two pages sharing a Path
// abort the build. NavOrder is nil when the author declared none.
type Page struct {
	Path       string
	SourcePath string

	Title    string
	Layout   string
	NavOrder *int

	// Extra carries unrecognized front matter keys, passed through untouched
	// so downstream templates and future fields survive a rebuild.
	Extra map[string]any

	Body  []byte
	Style frontmatter.Style

	// HadFrontmatter reports whether the source carried a front matter block.
	HadFrontmatter bool
}

// HasNavOrder reports whether the author declared a navigation position.
func (p *Page) HasNavOrder() bool { return p.NavOrder != nil }

// Parse builds a Page from raw source bytes.
//
// path is the site-relative identifier (slashes, no extension). Malformed
// front matter (unterminated block, invalid YAML) yields a metadata-category
// error naming the path; the caller excludes the page and keeps building.
func Parse(path string, src []byte) (*Page, error) {
	blk, err := frontmatter.Split(src)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryMetadata, "malformed front matter block").
			WithContext("path", path).
			Build()
	}

	fields, err := frontmatter.ParseYAML(blk.Meta)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryMetadata, "invalid front matter YAML").
			WithContext("path", path).
			Build()
	}

	p := &Page{
		Path:           path,
		Body:           blk.Body,
		Style:          blk.Style,
		HadFrontmatter: blk.Present,
		Extra:          map[string]any{},
	}

	for k, v := range fields {
		switch k {
		case KeyTitle:
			if s, ok := v.(string); ok {
				p.Title = strings.TrimSpace(s)
			}
		case KeyLayout:
			if s, ok := v.(string); ok {
				p.Layout = strings.TrimSpace(s)
			}
		case KeyNavOrder:
			order, err := coerceNavOrder(v)
			if err != nil {
				return nil, ferrors.MetadataError(err.Error(), path).Build()
			}
			p.NavOrder = &order
		default:
			p.Extra[k] = v
		}
	}

	if p.Title == "" {
		p.Title = TitleFromPath(path)
	}

	return p, nil
}

// ParseFile reads a source file and parses it into a Page.
func ParseFile(sourcePath, path string) (*Page, error) {
	// #nosec G304 -- paths come from site discovery, not user input.
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, ferrors.FileSystemError(err, "read page source").
			WithContext("path", path).
			WithContext("source", sourcePath).
			Build()
	}

	p, err := Parse(path, src)
	if err != nil {
		return nil, err
	}
	p.SourcePath = sourcePath
	return p, nil
}

// TitleFromPath derives a human-readable fallback title from a page path,
// e.g. "guide/getting-started" -> "Getting Started".
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return path
	}
	return strings.Join(words, " ")
}

// coerceNavOrder accepts the integer representations yaml.v3 may produce.
// Fractional or non-numeric values are a metadata error, not a silent default.
func coerceNavOrder(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("nav_order must be an integer, got %v", n)
		}
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("nav_order must be an integer, got %q", n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("nav_order must be an integer, got %T", v)
	}
}
