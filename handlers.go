package folio

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	postsPerPage  = 6
	searchPerPage = 10
)

// pageData builds the shared view data for a public page.
func (a *App) pageData(c echo.Context, meta PageMeta) (PageData, error) {
	d := a.baseData(c, meta)
	sb, err := a.Service.Sidebar(c.Request().Context())
	if err != nil {
		return d, err
	}
	d.Sidebar = sb
	return d, nil
}

// baseData is pageData without the database-backed sidebar.
func (a *App) baseData(c echo.Context, meta PageMeta) PageData {
	if meta.URL == "" {
		meta.URL = BuildURL(a.Config.URL, c.Request().URL.Path)
	}
	if meta.Description == "" {
		meta.Description = a.Config.Description
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	return PageData{
		Site:     a.Config,
		Meta:     meta,
		Caller:   CallerOf(c),
		CSRF:     CsrfToken(c),
		Flashes:  takeFlashes(c),
		Path:     c.Request().URL.Path,
		MediaURL: a.mediaURL,
	}
}

func (a *App) mediaURL(p string) string {
	if p == "" || a.Media == nil {
		return ""
	}
	return a.Media.URL(p)
}

func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (a *App) handleIndex(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Store.ListPosts(ctx, PostFilter{PublishedOnly: true}, pageParam(c), postsPerPage)
	if err != nil {
		return err
	}
	d, err := a.pageData(c, PageMeta{Title: a.Config.Name})
	if err != nil {
		return err
	}
	return Render(c, a.Views.Index(d, posts))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Service.PostForCaller(ctx, c.Param("slug"), CallerOf(c))
	if err != nil {
		return err
	}
	related, err := a.Service.RelatedPosts(ctx, post)
	if err != nil {
		return err
	}
	meta := PageMeta{
		Title:       post.Title,
		Description: firstNonEmpty(post.MetaDescription, post.Summary),
		Keywords:    post.MetaKeywords,
		URL:         BuildURL(a.Config.URL, "post", post.Slug),
		OGType:      "article",
	}
	d, err := a.pageData(c, meta)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(d, post, related))
}

func (a *App) handleCategory(c echo.Context) error {
	ctx := c.Request().Context()
	cat, err := a.Store.GetCategoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	posts, err := a.Store.ListPosts(ctx, PostFilter{PublishedOnly: true, CategoryID: cat.ID}, pageParam(c), postsPerPage)
	if err != nil {
		return err
	}
	d, err := a.pageData(c, PageMeta{Title: "Category: " + cat.Name})
	if err != nil {
		return err
	}
	return Render(c, a.Views.Category(d, cat, posts))
}

func (a *App) handleTag(c echo.Context) error {
	ctx := c.Request().Context()
	tag, err := a.Store.GetTagBySlug(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	posts, err := a.Store.ListPosts(ctx, PostFilter{PublishedOnly: true, TagID: tag.ID}, pageParam(c), postsPerPage)
	if err != nil {
		return err
	}
	d, err := a.pageData(c, PageMeta{Title: "Tag: " + tag.Name})
	if err != nil {
		return err
	}
	return Render(c, a.Views.Tag(d, tag, posts))
}

func (a *App) handleSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	ctx := c.Request().Context()
	posts, err := a.Store.ListPosts(ctx, PostFilter{PublishedOnly: true, Query: q, InSummary: true}, pageParam(c), searchPerPage)
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategoriesPublished(ctx)
	if err != nil {
		return err
	}
	d, err := a.pageData(c, PageMeta{Title: "Search: " + q})
	if err != nil {
		return err
	}
	return Render(c, a.Views.Search(d, q, posts, cats))
}

func (a *App) handleAbout(c echo.Context) error {
	d, err := a.pageData(c, PageMeta{Title: "About"})
	if err != nil {
		return err
	}
	return Render(c, a.Views.About(d))
}

func (a *App) handleContact(c echo.Context) error {
	d, err := a.pageData(c, PageMeta{Title: "Contact"})
	if err != nil {
		return err
	}
	return Render(c, a.Views.Contact(d, ContactForm{}, nil))
}

func (a *App) handleContactSubmit(c echo.Context) error {
	var form ContactForm
	if err := bindForm(c, &form); err != nil {
		verr, ok := AsValidation(err)
		if !ok {
			return err
		}
		d, err := a.pageData(c, PageMeta{Title: "Contact"})
		if err != nil {
			return err
		}
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Contact(d, form, verr))
	}
	a.Log.Info("contact message received", "from", form.Email, "subject", form.Subject)
	return redirectWith(c, "success", "Your message has been sent. Thank you!", "/contact/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	switch {
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.As(err, &he):
		code = he.Code
	}

	if code == http.StatusRequestEntityTooLarge {
		if err := a.tooLarge(c); err != nil {
			a.Echo.DefaultHTTPErrorHandler(err, c)
		}
		return
	}

	d := a.baseData(c, PageMeta{})
	switch {
	case code == http.StatusNotFound:
		d.Meta.Title = "Page not found"
		_ = RenderStatus(c, code, a.Views.NotFound(d))
	case code == http.StatusForbidden:
		d.Meta.Title = "Forbidden"
		_ = RenderStatus(c, code, a.Views.Forbidden(d))
	case code >= 500:
		a.Log.Error("server error", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
		d.Meta.Title = "Server error"
		_ = RenderStatus(c, code, a.Views.ServerError(d))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
