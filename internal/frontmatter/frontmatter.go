package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Delimiter is the line marking the start and end of a front matter block.
const Delimiter = "---"

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but never closed it. Pages failing this way are excluded
// from the navigation index and surfaced in the build report.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter found but closing delimiter is missing")

// Style captures newline shape so documents can be rewritten without
// churning unrelated bytes. It does not attempt to preserve YAML formatting.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Block is the result of splitting a raw page source.
type Block struct {
	// Meta holds the raw YAML bytes between the delimiters, nil when the
	// document had no front matter.
	Meta []byte
	// Body is the page body with the front matter removed.
	Body []byte
	// Present reports whether a front matter block was found.
	Present bool
	// Style records the detected newline style of the source.
	Style Style
}

// Split separates a `---` delimited YAML front matter block from the body.
//
// A document that does not begin with the delimiter has no front matter: the
// whole input is the body. A document that opens a block and never closes it
// is malformed and yields ErrMissingClosingDelimiter.
func Split(src []byte) (Block, error) {
	style := detectStyle(src)
	nl := style.Newline

	open := []byte(Delimiter + nl)
	if !bytes.HasPrefix(src, open) {
		return Block{Body: src, Style: style}, nil
	}

	rest := src[len(open):]

	// Empty block: the closing delimiter immediately follows the opening one.
	if bytes.HasPrefix(rest, open) {
		return Block{Meta: []byte{}, Body: rest[len(open):], Present: true, Style: style}, nil
	}

	closeSeq := []byte(nl + Delimiter + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return Block{Style: style}, ErrMissingClosingDelimiter
	}

	meta := rest[:idx+len(nl)]
	body := rest[idx+len(closeSeq):]
	return Block{Meta: meta, Body: body, Present: true, Style: style}, nil
}

// Join reassembles a document from raw front matter and body. When the block
// was absent, the body is returned as-is.
func Join(b Block) []byte {
	if !b.Present {
		return b.Body
	}

	nl := b.Style.Newline
	if nl == "" {
		nl = "\n"
	}

	fence := []byte(Delimiter + nl)
	out := make([]byte, 0, 2*len(fence)+len(b.Meta)+len(b.Body))
	out = append(out, fence...)
	out = append(out, b.Meta...)
	out = append(out, fence...)
	out = append(out, b.Body...)
	return out
}

// ParseYAML parses raw front matter bytes (without delimiters) into a map.
// Empty input yields an empty, non-nil map.
func ParseYAML(meta []byte) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(src []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(src); i++ {
		if src[i] == '\r' && src[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if src[i] == '\n' {
			break
		}
	}

	return Style{
		Newline:            newline,
		HasTrailingNewline: len(src) > 0 && src[len(src)-1] == '\n',
	}
}
