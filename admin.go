package folio

import (
	"errors"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const adminPostsPerPage = 10

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

// formUpload returns the file sent in field, or nil when none was chosen.
// The caller closes it with closeUpload.
func formUpload(c echo.Context, field string) (*Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Filename == "" {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &Upload{Filename: fh.Filename, Body: f}, nil
}

func closeUpload(up *Upload) {
	if up == nil {
		return
	}
	if cl, ok := up.Body.(io.Closer); ok {
		_ = cl.Close()
	}
}

func (a *App) adminData(c echo.Context, title string) PageData {
	return a.baseData(c, PageMeta{Title: title + " | Admin"})
}

func (a *App) handleAdminDashboard(c echo.Context) error {
	dash, err := a.Service.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	dash.System = SystemInfo{
		Version:      Version,
		GoVersion:    runtime.Version(),
		Driver:       a.Store.Driver(),
		MediaBackend: a.Config.MediaBackend,
		StartedAt:    a.startedAt,
	}
	return Render(c, a.Views.AdminDashboard(a.adminData(c, "Dashboard"), dash))
}

func (a *App) handleAdminPosts(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	posts, err := a.Store.ListPosts(c.Request().Context(), PostFilter{Query: q}, pageParam(c), adminPostsPerPage)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminPosts(a.adminData(c, "Posts"), posts, q))
}

func (a *App) postEditor(c echo.Context, id int64, form PostForm) (PostEditor, error) {
	ctx := c.Request().Context()
	e := PostEditor{ID: id, Form: form}
	var err error
	if e.Categories, err = a.Store.ListCategories(ctx); err != nil {
		return e, err
	}
	if e.Tags, err = a.Store.ListTags(ctx); err != nil {
		return e, err
	}
	return e, nil
}

func (a *App) renderPostEditor(c echo.Context, code int, e PostEditor) error {
	title := "New post"
	if e.ID > 0 {
		title = "Edit post"
	}
	return RenderStatus(c, code, a.Views.AdminPostForm(a.adminData(c, title), e))
}

func (a *App) handleAdminPostNew(c echo.Context) error {
	e, err := a.postEditor(c, 0, PostForm{Format: FormatHTML, Published: true})
	if err != nil {
		return err
	}
	return a.renderPostEditor(c, http.StatusOK, e)
}

func (a *App) handleAdminPostCreate(c echo.Context) error {
	var form PostForm
	err := bindForm(c, &form)
	if err == nil {
		var up *Upload
		if up, err = formUpload(c, "featured_image"); err != nil {
			return err
		}
		defer closeUpload(up)
		in := form.Input()
		in.FeaturedImage = up
		var p Post
		if p, err = a.Service.CreatePost(c.Request().Context(), in, CallerOf(c)); err == nil {
			return redirectWith(c, "success", "Post \""+p.Title+"\" created.", "/admin/posts/")
		}
	}
	return a.postFormError(c, 0, form, err)
}

// postFormError shows the editor again for a validation failure and passes
// anything else to the error handler.
func (a *App) postFormError(c echo.Context, id int64, form PostForm, err error) error {
	verr, ok := AsValidation(err)
	if !ok {
		return err
	}
	e, lerr := a.postEditor(c, id, form)
	if lerr != nil {
		return lerr
	}
	e.Error = verr
	return a.renderPostEditor(c, http.StatusUnprocessableEntity, e)
}

func (a *App) handleAdminPostEdit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := a.Store.GetPost(c.Request().Context(), id)
	if err != nil {
		return err
	}
	e, err := a.postEditor(c, id, PostFormFrom(p))
	if err != nil {
		return err
	}
	e.Post = p
	return a.renderPostEditor(c, http.StatusOK, e)
}

func (a *App) handleAdminPostUpdate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var form PostForm
	err = bindForm(c, &form)
	if err == nil {
		var up *Upload
		if up, err = formUpload(c, "featured_image"); err != nil {
			return err
		}
		defer closeUpload(up)
		in := form.Input()
		in.FeaturedImage = up
		var p Post
		if p, err = a.Service.UpdatePost(c.Request().Context(), id, in); err == nil {
			return redirectWith(c, "success", "Post \""+p.Title+"\" updated.", "/admin/posts/")
		}
	}
	return a.postFormError(c, id, form, err)
}

func (a *App) handleAdminPostDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := a.Service.DeletePost(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		a.Log.Error("delete post", "id", id, "error", err)
		return redirectWith(c, "error", "The post could not be deleted.", "/admin/posts/")
	}
	return redirectWith(c, "success", "Post deleted.", "/admin/posts/")
}
