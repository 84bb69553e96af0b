package folio_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio"
	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/views"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "secret123"
)

type testSite struct {
	app       *folio.App
	srv       *httptest.Server
	staticDir string
}

func newTestSite(t *testing.T, tweaks ...func(*folio.SiteConfig)) *testSite {
	t.Helper()
	dir := t.TempDir()
	cfg := folio.SiteConfig{
		Name:           "Test Blog",
		URL:            "http://example.com",
		Description:    "A blog under test",
		DatabaseDriver: folio.DriverSQLite,
		DatabaseURL:    filepath.Join(dir, "blog.db"),
		SecretKey:      "test-secret-key-test-secret-key!",
		StaticDir:      filepath.Join(dir, "static"),
		Admin:          folio.AdminSeed{Username: "admin", Email: adminEmail, Password: adminPassword},
	}
	for _, tweak := range tweaks {
		tweak(&cfg)
	}

	app := folio.New(cfg, views.Default(), folio.WithLogger(logger.Discard()))
	require.NoError(t, app.Setup(context.Background()))
	t.Cleanup(func() { app.Close() })

	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	return &testSite{app: app, srv: srv, staticDir: cfg.StaticDir}
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t    *testing.T
	site *testSite
	c    *http.Client
}

func (s *testSite) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		site: s,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.c.Get(b.site.srv.URL + path)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

// csrf returns the token cookie, visiting a page first if there is none.
func (b *browser) csrf() string {
	b.t.Helper()
	u, _ := url.Parse(b.site.srv.URL)
	for _, ck := range b.c.Jar.Cookies(u) {
		if ck.Name == "_csrf" {
			return ck.Value
		}
	}
	b.get("/login/")
	for _, ck := range b.c.Jar.Cookies(u) {
		if ck.Name == "_csrf" {
			return ck.Value
		}
	}
	b.t.Fatal("no _csrf cookie issued")
	return ""
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	form.Set("_csrf", b.csrf())
	resp, err := b.c.PostForm(b.site.srv.URL+path, form)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) login(email, password string) *http.Response {
	b.t.Helper()
	resp, _ := b.post("/login/", url.Values{"email": {email}, "password": {password}})
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPublishAndUnpublish(t *testing.T) {
	site := newTestSite(t)
	admin := site.browser(t)

	resp := admin.login(adminEmail, adminPassword)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/", resp.Header.Get("Location"))

	for range 2 {
		resp, _ := admin.post("/admin/posts/new/", url.Values{
			"title":     {"Hello World"},
			"content":   {"<p>First words.</p>"},
			"format":    {"html"},
			"published": {"true"},
		})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/admin/posts/", resp.Header.Get("Location"))
	}

	second, err := site.app.Store.GetPostBySlug(context.Background(), "hello-world-1")
	require.NoError(t, err)
	require.True(t, second.Published)

	resp, _ = admin.post(fmt.Sprintf("/admin/posts/%d/edit/", second.ID), url.Values{
		"title":   {"Hello World"},
		"content": {"<p>First words.</p>"},
		"format":  {"html"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	anon := site.browser(t)
	resp, body := anon.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/post/hello-world/"`)
	assert.NotContains(t, body, "hello-world-1")

	resp, body = admin.get("/admin/posts/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/post/hello-world/")
	assert.Contains(t, body, "/post/hello-world-1/")
	assert.Contains(t, body, "Draft")

	resp, _ = anon.get("/post/hello-world-1/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = admin.get("/post/hello-world-1/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "First words.")

	resp, _ = anon.get("/post/hello-world/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminAccessControl(t *testing.T) {
	site := newTestSite(t)

	anon := site.browser(t)
	resp, _ := anon.get("/admin/posts/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login/?next=%2Fadmin%2Fposts%2F", resp.Header.Get("Location"))

	_, err := site.app.Service.CreateUser(context.Background(), folio.UserInput{
		Username: "reader", Email: "reader@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	reader := site.browser(t)
	resp = reader.login("reader@example.com", "secret123")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = reader.get("/admin/")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoginFailures(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t)

	resp, body := b.post("/login/", url.Values{"email": {adminEmail}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password.")

	resp, _ = b.post("/login/", url.Values{"email": {"not-an-email"}, "password": {"x"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = b.c.PostForm(site.srv.URL+"/login/", url.Values{"email": {adminEmail}, "password": {adminPassword}})
	readBody(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "a post without the csrf token is rejected")
}

func TestNextRedirectAfterLogin(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t)

	resp, _ := b.post("/login/", url.Values{
		"email": {adminEmail}, "password": {adminPassword}, "next": {"/admin/media/"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/media/", resp.Header.Get("Location"))
}

func TestPublicPages(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t)

	for _, path := range []string{"/", "/about/", "/contact/", "/login/", "/search/?q=hello", "/category/technology/", "/tag/tips/"} {
		resp, body := b.get(path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, "Test Blog", path)
	}

	resp, _ := b.get("/search/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = b.get("/about")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)

	resp, body := b.get("/category/nope/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")
}

func TestContactForm(t *testing.T) {
	site := newTestSite(t)
	b := site.browser(t)

	resp, body := b.post("/contact/", url.Values{"name": {"A"}, "email": {"a@example.com"}, "subject": {"Hi"}, "message": {"short"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "field-error")

	resp, _ = b.post("/contact/", url.Values{
		"name": {"Alice"}, "email": {"a@example.com"}, "subject": {"Hello"}, "message": {"A long enough message."},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = b.get("/contact/")
	assert.Contains(t, body, "Your message has been sent.")
}

func TestSitemapRobotsAndFeed(t *testing.T) {
	site := newTestSite(t)
	ctx := context.Background()

	u, err := site.app.Store.GetUserByEmail(ctx, adminEmail)
	require.NoError(t, err)
	author := folio.Caller{UserID: u.ID, Username: u.Username, Authenticated: true, IsAdmin: true}
	_, err = site.app.Service.CreatePost(ctx, folio.PostInput{Title: "Visible Post", Content: "x", Summary: "seen", Published: true}, author)
	require.NoError(t, err)
	_, err = site.app.Service.CreatePost(ctx, folio.PostInput{Title: "Hidden Draft", Content: "x"}, author)
	require.NoError(t, err)

	b := site.browser(t)

	resp, body := b.get("/sitemap.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")
	assert.Contains(t, body, "<loc>http://example.com/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/about/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/post/visible-post/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/category/technology/</loc>")
	assert.NotContains(t, body, "hidden-draft")
	assert.NotContains(t, body, "/admin")
	assert.NotContains(t, body, "/login")

	resp, body = b.get("/robots.txt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, folio.Robots("http://example.com"), body)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))

	resp, body = b.get("/feed.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<title>Visible Post</title>")
	assert.NotContains(t, body, "Hidden Draft")
}

func pngFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func (b *browser) upload(path, field, filename string, data []byte, extra map[string]string) (*http.Response, string) {
	b.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range extra {
		require.NoError(b.t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(b.t, err)
	_, err = fw.Write(data)
	require.NoError(b.t, err)
	require.NoError(b.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, b.site.srv.URL+path, &body)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-CSRF-Token", b.csrf())
	resp, err := b.c.Do(req)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func TestEditorImageUpload(t *testing.T) {
	site := newTestSite(t)
	admin := site.browser(t)
	require.Equal(t, http.StatusSeeOther, admin.login(adminEmail, adminPassword).StatusCode)

	resp, body := admin.upload("/admin/upload-editor-image/", "image", "inline.png", pngFile(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var ok struct {
		Success bool   `json:"success"`
		URL     string `json:"url"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &ok))
	assert.True(t, ok.Success)
	require.True(t, strings.HasPrefix(ok.URL, "http://example.com/static/media/content/"), ok.URL)

	stored := strings.TrimPrefix(ok.URL, "http://example.com/static/")
	_, err := os.Stat(filepath.Join(site.staticDir, filepath.FromSlash(stored)))
	assert.NoError(t, err)

	resp, body = admin.upload("/admin/upload-editor-image/", "image", "notes.txt", []byte("hello"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var bad struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &bad))
	assert.NotEmpty(t, bad.Error)
}

func TestOversizedUploads(t *testing.T) {
	site := newTestSite(t, func(cfg *folio.SiteConfig) { cfg.MaxBodyBytes = 4096 })
	admin := site.browser(t)
	require.Equal(t, http.StatusSeeOther, admin.login(adminEmail, adminPassword).StatusCode)
	big := bytes.Repeat([]byte{0x89}, 8000)

	resp, body := admin.upload("/admin/upload-editor-image/", "image", "big.png", big, nil)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode, body)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	var bad struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &bad))
	assert.False(t, bad.Success)
	assert.Equal(t, "The upload is larger than the 4 KB limit.", bad.Error)

	resp, _ = admin.upload("/admin/media/upload/", "image", "big.png", big, map[string]string{"image_type": "content"})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/media/", resp.Header.Get("Location"))

	resp, body = admin.get("/admin/media/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "The upload is larger than the 4 KB limit.")

	resp, _ = admin.upload("/admin/posts/new/", "featured_image", "big.png", big, map[string]string{"title": "Too big"})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/posts/new/", resp.Header.Get("Location"))

	items, err := site.app.Store.ListMedia(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, items.Items)
}

func TestMediaGallery(t *testing.T) {
	site := newTestSite(t)
	admin := site.browser(t)
	require.Equal(t, http.StatusSeeOther, admin.login(adminEmail, adminPassword).StatusCode)

	resp, _ := admin.upload("/admin/media/upload/", "image", "photo.png", pngFile(t), map[string]string{
		"image_type": "featured",
		"alt_text":   "A photo",
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	items, err := site.app.Store.ListMedia(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, items.Items, 1)
	m := items.Items[0]
	assert.Equal(t, "photo.png", m.Filename)
	assert.Equal(t, "A photo", m.AltText)
	assert.True(t, strings.HasPrefix(m.Filepath, "media/featured/"))

	resp, body := admin.get("/admin/media/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/static/"+m.Filepath)

	resp, _ = admin.post(fmt.Sprintf("/admin/media/%d/delete/", m.ID), url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, err = os.Stat(filepath.Join(site.staticDir, filepath.FromSlash(m.Filepath)))
	assert.True(t, os.IsNotExist(err))
}

func TestAdminTermsAndUsers(t *testing.T) {
	site := newTestSite(t)
	admin := site.browser(t)
	require.Equal(t, http.StatusSeeOther, admin.login(adminEmail, adminPassword).StatusCode)
	ctx := context.Background()

	resp, _ := admin.post("/admin/categories/new/", url.Values{"name": {"Technology"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	cat, err := site.app.Store.GetCategoryBySlug(ctx, "technology-1")
	require.NoError(t, err)

	resp, body := admin.post("/admin/categories/new/", url.Values{"name": {"x"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "at least 2 characters")

	resp, _ = admin.post(fmt.Sprintf("/admin/categories/%d/delete/", cat.ID), url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, err = site.app.Store.GetCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, folio.ErrNotFound)

	resp, _ = admin.post("/admin/tags/new/", url.Values{"name": {"Golang"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = admin.get("/admin/tags/")
	assert.Contains(t, body, "golang")

	resp, _ = admin.post("/admin/users/new/", url.Values{
		"username": {"writer"}, "email": {"writer@example.com"},
		"password": {"secret123"}, "confirm_password": {"secret123"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body = admin.post("/admin/users/new/", url.Values{
		"username": {"other"}, "email": {"other@example.com"},
		"password": {"secret123"}, "confirm_password": {"different"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "passwords must match")

	me, err := site.app.Store.GetUserByEmail(ctx, adminEmail)
	require.NoError(t, err)
	resp, _ = admin.post(fmt.Sprintf("/admin/users/%d/delete/", me.ID), url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = admin.get("/admin/users/")
	assert.Contains(t, body, "You cannot delete your own account.")
}
