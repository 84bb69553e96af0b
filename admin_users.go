package folio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) renderUserForm(c echo.Context, code int, e UserEditor) error {
	title := "New user"
	if e.ID > 0 {
		title = "Edit user"
	}
	e.Form.Password, e.Form.Confirm = "", ""
	return RenderStatus(c, code, a.Views.AdminUserForm(a.adminData(c, title), e))
}

func (a *App) userFormError(c echo.Context, e UserEditor, err error) error {
	verr, ok := AsValidation(err)
	if !ok {
		return err
	}
	e.Error = verr
	return a.renderUserForm(c, http.StatusUnprocessableEntity, e)
}

func (a *App) handleAdminUsers(c echo.Context) error {
	users, err := a.Store.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminUsers(a.adminData(c, "Users"), users))
}

func (a *App) handleAdminUserNew(c echo.Context) error {
	return a.renderUserForm(c, http.StatusOK, UserEditor{})
}

func (a *App) handleAdminUserCreate(c echo.Context) error {
	var e UserEditor
	err := bindForm(c, &e.Form)
	if err == nil {
		var u User
		if u, err = a.Service.CreateUser(c.Request().Context(), e.Form.Input()); err == nil {
			return redirectWith(c, "success", "User \""+u.Username+"\" created.", "/admin/users/")
		}
	}
	return a.userFormError(c, e, err)
}

func (a *App) handleAdminUserEdit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	u, err := a.Store.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	form := UserForm{Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
	return a.renderUserForm(c, http.StatusOK, UserEditor{ID: id, Form: form})
}

func (a *App) handleAdminUserUpdate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	e := UserEditor{ID: id}
	err = bindForm(c, &e.Form)
	if err == nil {
		var u User
		if u, err = a.Service.UpdateUser(c.Request().Context(), id, e.Form.Input()); err == nil {
			return redirectWith(c, "success", "User \""+u.Username+"\" updated.", "/admin/users/")
		}
	}
	return a.userFormError(c, e, err)
}

func (a *App) handleAdminUserDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = a.Service.DeleteUser(c.Request().Context(), id, CallerOf(c))
	switch {
	case errors.Is(err, ErrSelfDelete):
		return redirectWith(c, "error", "You cannot delete your own account.", "/admin/users/")
	case err != nil:
		return err
	}
	return redirectWith(c, "success", "User deleted. Their posts and media now belong to you.", "/admin/users/")
}
