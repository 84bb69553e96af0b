package folio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) renderTermForm(c echo.Context, code int, e TermEditor) error {
	title := "New " + e.Kind
	if e.ID > 0 {
		title = "Edit " + e.Kind
	}
	return RenderStatus(c, code, a.Views.AdminTermForm(a.adminData(c, title), e))
}

// termFormError shows the term form again for a validation failure.
func (a *App) termFormError(c echo.Context, e TermEditor, err error) error {
	verr, ok := AsValidation(err)
	if !ok {
		return err
	}
	e.Error = verr
	return a.renderTermForm(c, http.StatusUnprocessableEntity, e)
}

func (a *App) handleAdminCategories(c echo.Context) error {
	cats, err := a.Store.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminCategories(a.adminData(c, "Categories"), cats))
}

func (a *App) handleAdminCategoryNew(c echo.Context) error {
	return a.renderTermForm(c, http.StatusOK, TermEditor{Kind: "category"})
}

func (a *App) handleAdminCategoryCreate(c echo.Context) error {
	e := TermEditor{Kind: "category"}
	err := bindForm(c, &e.Form)
	if err == nil {
		var cat Category
		if cat, err = a.Service.CreateCategory(c.Request().Context(), e.Form.Name); err == nil {
			return redirectWith(c, "success", "Category \""+cat.Name+"\" created.", "/admin/categories/")
		}
	}
	return a.termFormError(c, e, err)
}

func (a *App) handleAdminCategoryEdit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	cat, err := a.Store.GetCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return a.renderTermForm(c, http.StatusOK, TermEditor{Kind: "category", ID: id, Form: TermForm{Name: cat.Name}})
}

func (a *App) handleAdminCategoryUpdate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	e := TermEditor{Kind: "category", ID: id}
	err = bindForm(c, &e.Form)
	if err == nil {
		var cat Category
		if cat, err = a.Service.UpdateCategory(c.Request().Context(), id, e.Form.Name); err == nil {
			return redirectWith(c, "success", "Category \""+cat.Name+"\" updated.", "/admin/categories/")
		}
	}
	return a.termFormError(c, e, err)
}

func (a *App) handleAdminCategoryDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = a.Service.DeleteCategory(c.Request().Context(), id)
	switch {
	case errors.Is(err, ErrCategoryInUse):
		return redirectWith(c, "error", "Cannot delete a category that still has posts.", "/admin/categories/")
	case err != nil:
		return err
	}
	return redirectWith(c, "success", "Category deleted.", "/admin/categories/")
}

func (a *App) handleAdminTags(c echo.Context) error {
	tags, err := a.Store.ListTags(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminTags(a.adminData(c, "Tags"), tags))
}

func (a *App) handleAdminTagNew(c echo.Context) error {
	return a.renderTermForm(c, http.StatusOK, TermEditor{Kind: "tag"})
}

func (a *App) handleAdminTagCreate(c echo.Context) error {
	e := TermEditor{Kind: "tag"}
	err := bindForm(c, &e.Form)
	if err == nil {
		var tag Tag
		if tag, err = a.Service.CreateTag(c.Request().Context(), e.Form.Name); err == nil {
			return redirectWith(c, "success", "Tag \""+tag.Name+"\" created.", "/admin/tags/")
		}
	}
	return a.termFormError(c, e, err)
}

func (a *App) handleAdminTagEdit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	tag, err := a.Store.GetTag(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return a.renderTermForm(c, http.StatusOK, TermEditor{Kind: "tag", ID: id, Form: TermForm{Name: tag.Name}})
}

func (a *App) handleAdminTagUpdate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	e := TermEditor{Kind: "tag", ID: id}
	err = bindForm(c, &e.Form)
	if err == nil {
		var tag Tag
		if tag, err = a.Service.UpdateTag(c.Request().Context(), id, e.Form.Name); err == nil {
			return redirectWith(c, "success", "Tag \""+tag.Name+"\" updated.", "/admin/tags/")
		}
	}
	return a.termFormError(c, e, err)
}

func (a *App) handleAdminTagDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := a.Service.DeleteTag(c.Request().Context(), id); err != nil {
		return err
	}
	return redirectWith(c, "success", "Tag deleted.", "/admin/tags/")
}
