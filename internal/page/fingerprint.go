package page

import (
	"github.com/inful/mdfp"

	"github.com/docsmith/docsmith/internal/frontmatter"
)

// Fingerprint computes the canonical content fingerprint for a page.
//
// The front matter is re-serialized with sorted keys and LF newlines before
// hashing so that formatting-only edits do not change the fingerprint. Any
// stored fingerprint field is excluded from its own hash.
func (p *Page) Fingerprint() (string, error) {
	fields := p.fieldsForHash()

	meta := ""
	if len(fields) > 0 {
		serialized, err := frontmatter.SerializeYAML(fields, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		meta = trimSingleTrailingNewline(string(serialized))
	}

	return mdfp.CalculateFingerprintFromParts(meta, string(p.Body)), nil
}

func (p *Page) fieldsForHash() map[string]any {
	fields := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		if k == mdfp.FingerprintField {
			continue
		}
		fields[k] = v
	}
	if p.Title != "" {
		fields[KeyTitle] = p.Title
	}
	if p.Layout != "" {
		fields[KeyLayout] = p.Layout
	}
	if p.NavOrder != nil {
		fields[KeyNavOrder] = *p.NavOrder
	}
	return fields
}

func trimSingleTrailingNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s[:len(s)-1]
	}
	return s
}
