// Package markdown converts post bodies written in Markdown to HTML.
// Raw HTML in the source is omitted; callers still sanitize the result.
package markdown

import (
	"bytes"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		goldmarkhtml.WithHardWraps(),
	),
)

// RenderMarkdown writes the HTML rendering of src to w.
func RenderMarkdown(w io.Writer, src string) error {
	return md.Convert([]byte(src), w)
}

// ToHTML returns the HTML rendering of src.
func ToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, src); err != nil {
		return "", err
	}
	return buf.String(), nil
}
