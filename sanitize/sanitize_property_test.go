//go:build property

package sanitize_test

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/eringen/folio/sanitize"
)

var fragments = []interface{}{
	"<p>", "</p>", "<div onclick=\"x()\">", "</div>", "<section>", "</section>",
	"<a href=\"https://example.com\">", "<a href=\"javascript:x()\">", "</a>",
	"<script>alert(1)</script>", "<style>p{color:red}</style>",
	"<img src=\"/a.png\" alt=\"a\">", "<b>", "</b>", "<iframe>", "</iframe>",
	"text", " & ", "\"quoted\"", "<br>", "<h3 class=\"t\">", "</h3>",
}

func genDocument() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf(fragments...)).Map(func(parts []interface{}) string {
		var b strings.Builder
		for _, p := range parts {
			b.WriteString(p.(string))
		}
		return b.String()
	})
}

func TestSanitizerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("sanitizing is a fixed point", prop.ForAll(
		func(doc string) bool {
			once := sanitize.HTML(doc)
			return sanitize.HTML(once) == once
		},
		genDocument(),
	))

	properties.Property("script and handlers never survive", prop.ForAll(
		func(doc string) bool {
			out := sanitize.HTML(doc)
			return !strings.Contains(out, "<script") &&
				!strings.Contains(out, "onclick") &&
				!strings.Contains(out, "javascript:")
		},
		genDocument(),
	))

	properties.TestingRun(t)
}
