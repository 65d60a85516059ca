package markdown

import "strings"

// LinkKind distinguishes the Markdown construct a link came from.
type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

// Link is one link-like construct found in a Markdown body.
type Link struct {
	Kind        LinkKind
	Destination string
}

// IsExternal reports whether the destination points outside the site.
func (l Link) IsExternal() bool {
	low := strings.ToLower(l.Destination)
	return strings.HasPrefix(low, "http://") ||
		strings.HasPrefix(low, "https://") ||
		strings.HasPrefix(low, "mailto:") ||
		strings.HasPrefix(low, "tel:")
}

// IsAnchorOnly reports whether the link targets a fragment of the same page.
func (l Link) IsAnchorOnly() bool {
	return strings.HasPrefix(l.Destination, "#")
}
