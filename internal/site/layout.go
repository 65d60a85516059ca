package site

import (
	_ "embed"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/nav"
)

//go:embed layout_default.html.tmpl
var defaultLayoutTmpl string

// LayoutData is the data every layout template receives. Rendering is
// explicit-parameter only: the page and the full navigation index are passed
// in, never read from ambient state.
type LayoutData struct {
	SiteTitle   string
	Title       string
	Content     template.HTML
	Nav         []nav.Entry
	CurrentPath string
	LiveReload  bool
}

// Layouts resolves layout names to templates. Site authors may override or
// add layouts by dropping `<name>.html.tmpl` files into `_layouts/` inside
// the source dir; the built-in default always exists.
type Layouts struct {
	templates   map[string]*template.Template
	defaultName string
}

// LoadLayouts parses the built-in default layout plus any overrides found in
// sourceDir/_layouts. defaultName selects the site-wide fallback layout.
func LoadLayouts(sourceDir, defaultName string) (*Layouts, error) {
	l := &Layouts{templates: map[string]*template.Template{}, defaultName: defaultName}

	builtin, err := template.New("default").Parse(defaultLayoutTmpl)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "parse built-in layout").Build()
	}
	l.templates["default"] = builtin

	layoutDir := filepath.Join(sourceDir, "_layouts")
	entries, err := os.ReadDir(layoutDir)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, ferrors.FileSystemError(err, "read layouts directory").
			WithContext("path", layoutDir).
			Build()
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".html.tmpl") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(layoutDir, name))
		if err != nil {
			return nil, ferrors.FileSystemError(err, "read layout file").
				WithContext("file", name).
				Build()
		}
		layoutName := strings.TrimSuffix(name, ".html.tmpl")
		tmpl, err := template.New(layoutName).Parse(string(raw))
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse layout template").
				WithContext("file", name).
				Build()
		}
		l.templates[layoutName] = tmpl
	}

	return l, nil
}

// Lookup returns the template for a layout name. An empty name means the
// site default; an unknown name falls back to the default as well.
func (l *Layouts) Lookup(name string) *template.Template {
	if name == "" {
		name = l.defaultName
	}
	if tmpl, ok := l.templates[name]; ok {
		return tmpl
	}
	return l.templates["default"]
}
