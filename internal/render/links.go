package render

import (
	"path"
	"strings"

	"github.com/docsmith/docsmith/internal/markdown"
)

// PathSet is the set of known page paths used to validate internal links.
type PathSet map[string]struct{}

// NewPathSet builds a PathSet from page paths.
func NewPathSet(paths []string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// Contains reports whether the path is a known page.
func (s PathSet) Contains(p string) bool {
	_, ok := s[p]
	return ok
}

// ResolveDestination classifies a link destination found on pagePath.
//
// For an internal page reference (a relative or site-root-relative `.md` /
// `.markdown` target) it returns the resolved page path, any `#anchor`
// suffix, and internal=true. External links, anchor-only links and non-page
// targets (assets) return internal=false and must pass through untouched.
func ResolveDestination(dest, pagePath string) (resolved, anchor string, internal bool) {
	low := strings.ToLower(dest)
	if strings.HasPrefix(low, "http://") || strings.HasPrefix(low, "https://") ||
		strings.HasPrefix(low, "mailto:") || strings.HasPrefix(low, "tel:") ||
		strings.HasPrefix(dest, "#") {
		return "", "", false
	}

	target := dest
	if idx := strings.IndexByte(target, '#'); idx >= 0 {
		anchor = target[idx:]
		target = target[:idx]
	}

	lowTarget := strings.ToLower(target)
	switch {
	case strings.HasSuffix(lowTarget, ".md"):
		target = target[:len(target)-len(".md")]
	case strings.HasSuffix(lowTarget, ".markdown"):
		target = target[:len(target)-len(".markdown")]
	default:
		return "", "", false
	}
	if target == "" {
		return "", "", false
	}

	return resolveAgainst(pagePath, target), anchor, true
}

// OutputURL is the pretty URL a resolved page path renders to.
func OutputURL(resolved, anchor string) string {
	return "/" + resolved + "/" + anchor
}

// CheckLinks extracts the links of a Markdown body and returns the internal
// destinations that match no known page, deduplicated, in body order. Link
// syntax inside code fences is never extracted, so it is never reported.
func CheckLinks(body []byte, pagePath string, known PathSet) []string {
	var dangling []string
	seen := map[string]struct{}{}

	for _, l := range markdown.ExtractLinks(body) {
		if l.Kind == markdown.LinkKindImage || l.Kind == markdown.LinkKindAuto {
			continue
		}
		resolved, _, internal := ResolveDestination(l.Destination, pagePath)
		if !internal || known.Contains(resolved) {
			continue
		}
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		dangling = append(dangling, resolved)
	}

	return dangling
}

// ResolveAssetURL maps a relative asset reference to its root-relative output
// URL. Assets copy through at their source-relative location while pages move
// into directory-style URLs, so a relative reference left untouched would
// resolve one directory too deep in the browser.
func ResolveAssetURL(dest, pagePath string) (string, bool) {
	low := strings.ToLower(dest)
	if strings.HasPrefix(low, "http://") || strings.HasPrefix(low, "https://") ||
		strings.HasPrefix(low, "mailto:") || strings.HasPrefix(low, "tel:") ||
		strings.HasPrefix(dest, "//") || strings.HasPrefix(dest, "/") ||
		strings.HasPrefix(dest, "#") || dest == "" {
		return "", false
	}
	return "/" + resolveAgainst(pagePath, dest), true
}

// resolveAgainst resolves a link target against the linking page's directory.
// A leading slash anchors the target at the site root.
func resolveAgainst(pagePath, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	dir := path.Dir(pagePath)
	if dir == "." {
		dir = ""
	}
	return strings.TrimPrefix(path.Clean(path.Join(dir, target)), "/")
}
