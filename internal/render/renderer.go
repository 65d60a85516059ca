// Package render converts page bodies into HTML output. It is a pure
// transformation: the renderer receives the page and the full path set
// explicitly and never consults ambient state, so independent pages can be
// rendered concurrently.
package render

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/page"
)

// Heading is a heading entry for table-of-contents rendering.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// Result wraps the rendered HTML and what the renderer learned on the way.
type Result struct {
	HTML     []byte
	Headings []Heading
	// Dangling lists internal link destinations that matched no known page.
	// They are warnings; a non-empty list does not make the render fail.
	Dangling []string
}

// Renderer transforms Markdown page bodies into HTML fragments.
type Renderer struct {
	md goldmark.Markdown
}

// New constructs a renderer with GitHub-flavored Markdown extensions and
// class-based syntax highlighting. Code block content renders verbatim.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
					chromahtml.PreventSurroundingPre(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			htmlrenderer.WithUnsafe(),
		),
	)
	return &Renderer{md: md}
}

// Render converts one page body into HTML, resolving internal links against
// the full set of known page paths.
func (r *Renderer) Render(p *page.Page, known PathSet) (*Result, error) {
	body := p.Body
	reader := text.NewReader(body)
	doc := r.md.Parser().Parse(reader)

	dangling := rewriteInternalLinks(doc, p.Path, known)
	headings := assignHeadingIDs(doc, body)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, doc); err != nil {
		return nil, ferrors.RenderError(err, "render page body").
			WithContext("path", p.Path).
			Build()
	}

	return &Result{HTML: buf.Bytes(), Headings: headings, Dangling: dangling}, nil
}

// rewriteInternalLinks mutates link destinations in the parsed AST so output
// URLs point at rendered pages. Working on the AST rather than the source
// text keeps code fences and inline code verbatim. Returns dangling internal
// destinations, deduplicated, in document order.
func rewriteInternalLinks(doc ast.Node, pagePath string, known PathSet) []string {
	var dangling []string
	seen := map[string]struct{}{}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			if url, ok := ResolveAssetURL(string(node.Destination), pagePath); ok {
				node.Destination = []byte(url)
			}
		case *ast.Link:
			resolved, anchor, internal := ResolveDestination(string(node.Destination), pagePath)
			if !internal {
				if url, ok := ResolveAssetURL(string(node.Destination), pagePath); ok {
					node.Destination = []byte(url)
				}
				return ast.WalkContinue, nil
			}
			node.Destination = []byte(OutputURL(resolved, anchor))
			if !known.Contains(resolved) {
				if _, dup := seen[resolved]; !dup {
					seen[resolved] = struct{}{}
					dangling = append(dangling, resolved)
				}
			}
		}
		return ast.WalkContinue, nil
	})

	return dangling
}

// assignHeadingIDs gives every heading a stable slug id (deduplicated with a
// numeric suffix) and collects them for navigation.
func assignHeadingIDs(doc ast.Node, src []byte) []Heading {
	headings := make([]Heading, 0, 8)
	slugCounts := map[string]int{}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}

		headingText := nodeText(h, src)
		id := ""
		if attr, found := h.AttributeString("id"); found {
			if b, isBytes := attr.([]byte); isBytes {
				id = string(b)
			}
		}
		if id == "" {
			base := Slugify(headingText)
			if count := slugCounts[base]; count > 0 {
				id = fmt.Sprintf("%s-%d", base, count)
			} else {
				id = base
			}
			slugCounts[base]++
			h.SetAttributeString("id", []byte(id))
		} else {
			slugCounts[id]++
		}

		headings = append(headings, Heading{ID: id, Text: headingText, Level: h.Level})
		return ast.WalkContinue, nil
	})

	return headings
}

func nodeText(root ast.Node, src []byte) string {
	var b bytes.Buffer
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
