package render

import (
	"bytes"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
)

// Minifier shrinks rendered HTML before it is written out. Construction is
// cheap; one instance is safe for concurrent use.
type Minifier struct {
	m *minify.M
}

// NewMinifier builds an HTML minifier that keeps document structure intact.
func NewMinifier() *Minifier {
	m := minify.New()
	m.Add("text/html", &mhtml.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return &Minifier{m: m}
}

// Minify returns the minified HTML, or the input unchanged on failure so a
// cosmetic step can never break a build.
func (mf *Minifier) Minify(raw []byte) []byte {
	var buf bytes.Buffer
	if err := mf.m.Minify("text/html", &buf, bytes.NewReader(raw)); err != nil {
		return raw
	}
	return buf.Bytes()
}
