package views

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/folio"
)

var funcs = template.FuncMap{
	"date":     formatDate,
	"postURL":  postPath,
	"safeHTML": safeHTML,
	"excerpt":  excerpt,
	"pager":    newPager,
	"active":   active,
	"eq64":     func(a, b int64) bool { return a == b },
	"derefID": func(id *int64) int64 {
		if id == nil {
			return 0
		}
		return *id
	},
	"websiteJSONLD": func(cfg folio.SiteConfig) template.JS {
		return template.JS(folio.WebsiteJsonLD(cfg))
	},
	"postingJSONLD": func(p folio.Post, cfg folio.SiteConfig) template.JS {
		return template.JS(folio.BlogPostingJsonLD(p, cfg))
	},
	"kb": func(n int64) string {
		return strconv.FormatFloat(float64(n)/1024, 'f', 1, 64) + " KB"
	},
	"year": func() int { return time.Now().Year() },
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func postPath(p folio.Post) string {
	return "/post/" + url.PathEscape(p.Slug) + "/"
}

// safeHTML marks stored post content as trusted. It is sanitized when saved.
func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

// excerpt trims s to at most n runes on a word boundary.
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

func active(current, prefix string) bool {
	if prefix == "/" {
		return current == "/"
	}
	return strings.HasPrefix(current, prefix)
}

type pager struct {
	Number  int
	Pages   int
	PrevURL string
	NextURL string
}

// newPager links neighbouring pages of path, keeping the search query.
func newPager(number, pages int, path, query string) pager {
	link := func(n int) string {
		v := url.Values{}
		if query != "" {
			v.Set("q", query)
		}
		if n > 1 {
			v.Set("page", strconv.Itoa(n))
		}
		if len(v) == 0 {
			return path
		}
		return path + "?" + v.Encode()
	}
	p := pager{Number: number, Pages: pages}
	if number > 1 {
		p.PrevURL = link(number - 1)
	}
	if number < pages {
		p.NextURL = link(number + 1)
	}
	return p
}
