package sanitize_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/eringen/folio/sanitize"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "script removed with its body",
			in:   `<p>hi</p><script>alert(1)</script>`,
			want: `<p>hi</p>`,
		},
		{
			name: "link kept",
			in:   `<a href="https://example.com/x">link</a>`,
			want: `<a href="https://example.com/x">link</a>`,
		},
		{
			name: "event handler stripped",
			in:   `<p onclick="evil()">hi</p>`,
			want: `<p>hi</p>`,
		},
		{
			name: "unknown element stripped and text kept",
			in:   `<section>kept text</section>`,
			want: `kept text`,
		},
		{
			name: "class kept on any element",
			in:   `<span class="note">x</span>`,
			want: `<span class="note">x</span>`,
		},
		{
			name: "javascript url dropped",
			in:   `<a href="javascript:alert(1)">x</a>`,
			want: `x`,
		},
		{
			name: "headings kept",
			in:   `<h2>Title</h2><h6>small</h6>`,
			want: `<h2>Title</h2><h6>small</h6>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(sanitize.HTML(tt.in), qt.Equals, tt.want)
		})
	}
}

func TestHTMLImageAttributes(t *testing.T) {
	c := qt.New(t)
	got := sanitize.HTML(`<img src="/static/media/content/a.png" alt="a" width="10" onerror="x()">`)
	c.Assert(got, qt.Contains, `src="/static/media/content/a.png"`)
	c.Assert(got, qt.Contains, `alt="a"`)
	c.Assert(got, qt.Contains, `width="10"`)
	c.Assert(got, qt.Not(qt.Contains), "onerror")
}

func TestHTMLIdempotent(t *testing.T) {
	inputs := []string{
		`<p>plain</p>`,
		`<div onclick="x()"><script>bad()</script>text & more</div>`,
		`<table><tr><td>"quoted"</td></tr></table>`,
		`<form><input value="x">label</form>`,
		`<p>unclosed <b>bold`,
	}
	for _, in := range inputs {
		c := qt.New(t)
		once := sanitize.HTML(in)
		c.Assert(sanitize.HTML(once), qt.Equals, once, qt.Commentf("input %q", in))
	}
}
