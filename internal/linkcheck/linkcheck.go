// Package linkcheck verifies that links in rendered HTML pages resolve to
// files inside the output tree. It runs over build output, after the renderer
// has already rewritten page links, and catches layout or asset references
// the renderer never saw.
package linkcheck

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
)

// Ref is one link or resource reference found in a rendered page.
type Ref struct {
	// Page is the output-relative path of the HTML file holding the reference.
	Page string
	// Target is the raw href or src value.
	Target string
	// Tag is the element the reference came from (a, img, script, link).
	Tag string
}

// Broken is a reference whose target does not exist in the output tree.
type Broken struct {
	Ref
	// Reason describes why the target failed to resolve.
	Reason string
}

// CheckDir scans every .html file under outputDir and returns the references
// that do not resolve. External links are not fetched.
func CheckDir(outputDir string) ([]Broken, error) {
	var broken []Broken

	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}

		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		refs, err := extractFile(p, rel)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if reason, ok := check(outputDir, ref); !ok {
				broken = append(broken, Broken{Ref: ref, Reason: reason})
			}
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.FileSystemError(err, "scan rendered output").
			WithContext("output", outputDir).
			Build()
	}

	sort.Slice(broken, func(i, j int) bool {
		if broken[i].Page != broken[j].Page {
			return broken[i].Page < broken[j].Page
		}
		return broken[i].Target < broken[j].Target
	})
	return broken, nil
}

func extractFile(htmlPath, rel string) ([]Ref, error) {
	// #nosec G304 -- path comes from walking the output dir.
	f, err := os.Open(htmlPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Extract(f, rel)
}

// Extract parses HTML and returns all link and resource references.
func Extract(r io.Reader, page string) ([]Ref, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "parse rendered HTML").
			WithContext("page", page).
			Build()
	}

	var refs []Ref
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if v := attr(n, "href"); v != "" {
					refs = append(refs, Ref{Page: page, Target: v, Tag: n.Data})
				}
			case "img", "script":
				if v := attr(n, "src"); v != "" {
					refs = append(refs, Ref{Page: page, Target: v, Tag: n.Data})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// check resolves one reference against the output tree.
func check(outputDir string, ref Ref) (string, bool) {
	u, err := url.Parse(ref.Target)
	if err != nil {
		return "unparseable target", false
	}
	// External and non-navigable targets are out of scope.
	if u.Scheme != "" || u.Host != "" || strings.HasPrefix(ref.Target, "//") {
		return "", true
	}
	if u.Path == "" {
		// Pure fragment or query; resolves to the page itself.
		return "", true
	}

	target := u.Path
	if strings.HasPrefix(target, "/") {
		target = strings.TrimPrefix(target, "/")
	} else {
		target = path.Join(path.Dir(ref.Page), target)
	}
	target = path.Clean(target)
	if target == "." {
		target = ""
	}

	full := filepath.Join(outputDir, filepath.FromSlash(target))
	info, err := os.Stat(full)
	if err == nil && !info.IsDir() {
		return "", true
	}
	// Directory-style page URLs resolve to their index document.
	if _, err := os.Stat(filepath.Join(full, "index.html")); err == nil {
		return "", true
	}
	return "target not found in output", false
}
