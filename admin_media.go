package folio

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const mediaPerPage = 24

func (a *App) handleAdminMedia(c echo.Context) error {
	items, err := a.Store.ListMedia(c.Request().Context(), pageParam(c), mediaPerPage)
	if err != nil {
		return err
	}
	for i := range items.Items {
		items.Items[i].URL = a.Media.URL(items.Items[i].Filepath)
	}
	return Render(c, a.Views.AdminMedia(a.adminData(c, "Media"), items))
}

func (a *App) handleAdminMediaUpload(c echo.Context) error {
	var form MediaForm
	if err := bindForm(c, &form); err != nil {
		return a.mediaError(c, err)
	}
	up, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	if up == nil {
		return redirectWith(c, "error", "Choose an image to upload.", "/admin/media/")
	}
	defer closeUpload(up)

	m, err := a.Service.UploadMedia(c.Request().Context(), form.MediaKind(), *up, form.AltText, CallerOf(c))
	if err != nil {
		return a.mediaError(c, err)
	}
	return redirectWith(c, "success", "Image \""+m.Filename+"\" uploaded.", "/admin/media/")
}

// mediaError flashes upload and storage failures back to the gallery.
func (a *App) mediaError(c echo.Context, err error) error {
	if verr, ok := AsValidation(err); ok {
		return redirectWith(c, "error", verr.Message, "/admin/media/")
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	a.Log.Error("media operation failed", "error", err)
	return redirectWith(c, "error", "The file could not be stored or removed. Nothing was changed.", "/admin/media/")
}

func (a *App) handleAdminMediaDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := a.Service.DeleteMedia(c.Request().Context(), id); err != nil {
		return a.mediaError(c, err)
	}
	return redirectWith(c, "success", "Image deleted.", "/admin/media/")
}

type editorUploadResponse struct {
	Success bool   `json:"success,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleEditorImageUpload receives images pasted into the post editor and
// answers with JSON the editor script understands.
func (a *App) handleEditorImageUpload(c echo.Context) error {
	up, err := formUpload(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, editorUploadResponse{Error: "the upload could not be read"})
	}
	if up == nil {
		return c.JSON(http.StatusBadRequest, editorUploadResponse{Error: "no image provided"})
	}
	defer closeUpload(up)

	url, err := a.Service.UploadEditorImage(c.Request().Context(), *up)
	if err != nil {
		if verr, ok := AsValidation(err); ok {
			return c.JSON(http.StatusBadRequest, editorUploadResponse{Error: verr.Message})
		}
		a.Log.Error("editor image upload", "error", err)
		return c.JSON(http.StatusInternalServerError, editorUploadResponse{Error: "the image could not be stored"})
	}
	return c.JSON(http.StatusOK, editorUploadResponse{Success: true, URL: BuildAbsolute(a.Config.URL, url)})
}

// tooLarge answers a request the body limit rejected. The editor gets its
// JSON error, admin forms get a flash on the page they came from.
func (a *App) tooLarge(c echo.Context) error {
	msg := fmt.Sprintf("The upload is larger than the %s limit.", byteSize(a.Config.MaxBodyBytes))
	path := c.Request().URL.Path
	switch {
	case strings.TrimSuffix(path, "/") == "/admin/upload-editor-image":
		return c.JSON(http.StatusRequestEntityTooLarge, editorUploadResponse{Error: msg})
	case strings.TrimSuffix(path, "/") == "/admin/media/upload":
		return redirectWith(c, "error", msg, "/admin/media/")
	case strings.HasPrefix(path, "/admin/") && (strings.HasSuffix(path, "/new/") || strings.HasSuffix(path, "/edit/")):
		return redirectWith(c, "error", msg, path)
	case strings.HasPrefix(path, "/admin/"):
		return redirectWith(c, "error", msg, "/admin/")
	}
	return c.String(http.StatusRequestEntityTooLarge, msg)
}

func byteSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
