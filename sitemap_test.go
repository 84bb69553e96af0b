package folio

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestStaticPaths(t *testing.T) {
	e := echo.New()
	noop := func(echo.Context) error { return nil }
	e.GET("/", noop)
	e.GET("/about/", noop)
	e.GET("/contact/", noop)
	e.POST("/contact/", noop)
	e.GET("/search/", noop)
	e.GET("/post/:slug/", noop)
	e.GET("/login/", noop)
	e.GET("/feed.xml", noop)
	e.Static("/static", "static")
	g := e.Group("/admin")
	g.GET("/", noop)

	got := StaticPaths(e.Routes())
	want := []string{"/", "/about/", "/contact/", "/search/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StaticPaths = %v, want %v", got, want)
	}
}

func TestBuildSitemap(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	updated := created.Add(48 * time.Hour)

	urls := BuildSitemap("http://example.com",
		[]string{"/", "/about/"},
		[]Post{{Slug: "hello", CreatedAt: created, UpdatedAt: updated}, {Slug: "fresh", CreatedAt: created}},
		[]Category{{Slug: "go", CreatedAt: created}},
		[]Tag{{Slug: "tips", CreatedAt: created}},
		started,
	)

	want := []SitemapURL{
		{Loc: "http://example.com/", LastMod: "2024-05-01T12:00:00Z", ChangeFreq: "weekly", Priority: "0.8"},
		{Loc: "http://example.com/about/", LastMod: "2024-05-01T12:00:00Z", ChangeFreq: "weekly", Priority: "0.8"},
		{Loc: "http://example.com/post/hello/", LastMod: "2024-01-04T02:04:05Z", ChangeFreq: "monthly", Priority: "0.9"},
		{Loc: "http://example.com/post/fresh/", LastMod: "2024-01-02T02:04:05Z", ChangeFreq: "monthly", Priority: "0.9"},
		{Loc: "http://example.com/category/go/", LastMod: "2024-01-02T02:04:05Z", ChangeFreq: "weekly", Priority: "0.8"},
		{Loc: "http://example.com/tag/tips/", LastMod: "2024-01-02T02:04:05Z", ChangeFreq: "weekly", Priority: "0.7"},
	}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("BuildSitemap =\n%+v\nwant\n%+v", urls, want)
	}

	out, err := xml.Marshal(sitemapURLSet{XMLNS: sitemapNS, URLs: urls})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(out), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`) {
		t.Errorf("unexpected sitemap root: %s", out[:80])
	}
}

func TestRobots(t *testing.T) {
	got := Robots("https://blog.example.com/")
	want := "User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /login/\nDisallow: /register/\nSitemap: https://blog.example.com/sitemap.xml\n"
	if got != want {
		t.Errorf("Robots =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildFeed(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	feed := buildFeed(SiteConfig{Name: "Blog", URL: "http://example.com", Description: "d"}, []Post{{
		Title:           "Hello",
		Slug:            "hello",
		MetaDescription: "meta",
		AuthorName:      "alice",
		CategoryName:    "Go",
		Tags:            []Tag{{Name: "Tips"}},
		CreatedAt:       created,
	}})

	if feed.Version != "2.0" || feed.Channel.Title != "Blog" || feed.Channel.Link != "http://example.com" {
		t.Errorf("channel = %+v", feed.Channel)
	}
	if len(feed.Channel.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(feed.Channel.Items))
	}
	item := feed.Channel.Items[0]
	if item.Link != "http://example.com/post/hello/" || item.GUID != item.Link {
		t.Errorf("link/guid = %q/%q", item.Link, item.GUID)
	}
	if item.Description != "meta" {
		t.Errorf("Description = %q, want the meta description when there is no summary", item.Description)
	}
	if !reflect.DeepEqual(item.Categories, []string{"Go", "Tips"}) {
		t.Errorf("Categories = %v", item.Categories)
	}
	if item.PubDate != "Tue, 02 Jan 2024 03:04:05 +0000" {
		t.Errorf("PubDate = %q", item.PubDate)
	}
}

func TestWriteXML(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/feed.xml", nil), rec)
	if err := writeXML(c, "application/rss+xml; charset=utf-8", buildFeed(SiteConfig{Name: "Blog", URL: "http://example.com"}, nil)); err != nil {
		t.Fatalf("writeXML: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/rss+xml; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), xml.Header+"<rss") {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil), rec)
	if err := writeXML(c, "application/xml", make(chan int)); err == nil {
		t.Fatal("writeXML accepted a value xml cannot encode")
	}
	if c.Response().Committed {
		t.Error("response committed before the encoding error was returned")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want nothing written", rec.Body.String())
	}
}
