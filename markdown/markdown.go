// Package markdown renders pretalx abstracts as plain text that video
// platforms accept as a description.
//
// Video descriptions don't support markup, so emphasis is expressed with the
// `*bold*` / `_italic_` conventions, links keep their target in parentheses
// and HTML tags are dropped while their text is kept. Angle brackets are
// rejected in descriptions and are replaced by single angle quotation marks.
package markdown

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Renderer converts markdown into description text.
type Renderer interface {
	Render(src string) (string, error)
}

// PlainText is the goldmark based Renderer.
type PlainText struct {
	md goldmark.Markdown
}

func NewPlainText() *PlainText {
	r := renderer.NewRenderer(renderer.WithNodeRenderers(
		util.Prioritized(&nodeRenderer{}, 1000),
	))
	return &PlainText{md: goldmark.New(goldmark.WithRenderer(r))}
}

func (p *PlainText) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.Wrap(err, "Failed to render markdown")
	}
	return buf.String(), nil
}
