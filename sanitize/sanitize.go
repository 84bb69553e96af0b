// Package sanitize reduces rich-text HTML to a fixed allow-list of elements
// and attributes. Anything outside the list is stripped, not escaped; the
// text inside a stripped element is kept.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// Elements is the allow-list of HTML elements that survive sanitizing.
var Elements = []string{
	"a", "abbr", "acronym", "b", "blockquote", "br", "code", "div", "em",
	"h1", "h2", "h3", "h4", "h5", "h6", "hr", "i", "img", "li", "ol", "p",
	"pre", "span", "strong", "table", "tbody", "td", "th", "thead", "tr", "ul",
}

var policy = NewPolicy()

// NewPolicy builds the content policy. The returned policy is safe for
// concurrent use once constructed.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(Elements...)

	p.AllowAttrs("class", "style").Globally()
	p.AllowAttrs("href", "rel", "target").OnElements("a")
	p.AllowAttrs("src", "alt", "width", "height").OnElements("img")

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("mailto", "http", "https")
	return p
}

// HTML returns raw with every disallowed element and attribute removed.
// It is idempotent: HTML(HTML(s)) == HTML(s).
func HTML(raw string) string {
	return policy.Sanitize(raw)
}
