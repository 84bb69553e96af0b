package folio

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapURL is one <url> entry.
type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// sitemapExcluded lists path prefixes that never appear in the sitemap.
var sitemapExcluded = []string{
	"/admin", "/login", "/logout", "/register", "/static",
	"/sitemap.xml", "/robots.txt", "/feed.xml",
}

func lastMod(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// StaticPaths returns the parameterless public GET routes, sorted.
func StaticPaths(routes []*echo.Route) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range routes {
		if r.Method != http.MethodGet || strings.ContainsAny(r.Path, ":*") || seen[r.Path] {
			continue
		}
		excluded := false
		for _, prefix := range sitemapExcluded {
			if strings.HasPrefix(r.Path, prefix) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		seen[r.Path] = true
		out = append(out, r.Path)
	}
	sort.Strings(out)
	return out
}

// BuildSitemap lists static pages, published posts, categories and tags.
// Static pages carry staticMod as their modification time. posts must
// already be limited to published ones.
func BuildSitemap(base string, staticPaths []string, posts []Post, categories []Category, tags []Tag, staticMod time.Time) []SitemapURL {
	urls := make([]SitemapURL, 0, len(staticPaths)+len(posts)+len(categories)+len(tags))
	for _, p := range staticPaths {
		urls = append(urls, SitemapURL{
			Loc:        BuildURL(base, p),
			LastMod:    lastMod(staticMod),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	for _, p := range posts {
		urls = append(urls, SitemapURL{
			Loc:        PostURL(base, p),
			LastMod:    lastMod(p.LastModified()),
			ChangeFreq: "monthly",
			Priority:   "0.9",
		})
	}
	for _, c := range categories {
		urls = append(urls, SitemapURL{
			Loc:        BuildURL(base, "category", c.Slug),
			LastMod:    lastMod(c.CreatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	for _, t := range tags {
		urls = append(urls, SitemapURL{
			Loc:        BuildURL(base, "tag", t.Slug),
			LastMod:    lastMod(t.CreatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	return urls
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Store.AllPublishedPosts(ctx)
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategories(ctx)
	if err != nil {
		return err
	}
	tags, err := a.Store.ListTags(ctx)
	if err != nil {
		return err
	}
	sitemap := sitemapURLSet{
		XMLNS: sitemapNS,
		URLs:  BuildSitemap(a.Config.URL, StaticPaths(a.Echo.Routes()), posts, cats, tags, a.startedAt),
	}
	return writeXML(c, "application/xml; charset=utf-8", sitemap)
}

// Robots renders robots.txt for the site at base.
func Robots(base string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /login/\n")
	b.WriteString("Disallow: /register/\n")
	b.WriteString("Sitemap: " + strings.TrimSuffix(base, "/") + "/sitemap.xml\n")
	return b.String()
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, Robots(a.Config.URL))
}

// writeXML encodes v with the XML declaration and sends it in one write, so
// an encoding failure still reaches the error handler.
func writeXML(c echo.Context, contentType string, v any) error {
	out, err := xml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %T: %w", v, err)
	}
	return c.Blob(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
