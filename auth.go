package folio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	return next
}

func (a *App) handleLoginForm(c echo.Context) error {
	caller := CallerOf(c)
	if caller.Authenticated {
		return c.Redirect(http.StatusSeeOther, a.landing(caller, c.QueryParam("next")))
	}
	d, err := a.pageData(c, PageMeta{Title: "Sign in"})
	if err != nil {
		return err
	}
	return Render(c, a.Views.Login(d, LoginForm{Next: safeNext(c.QueryParam("next"))}, ""))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	var form LoginForm
	renderErr := func(code int, msg string) error {
		d, err := a.pageData(c, PageMeta{Title: "Sign in"})
		if err != nil {
			return err
		}
		form.Password = ""
		return RenderStatus(c, code, a.Views.Login(d, form, msg))
	}

	if !a.loginLimiter.Check(ip) {
		return renderErr(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	if err := bindForm(c, &form); err != nil {
		verr, ok := AsValidation(err)
		if !ok {
			return err
		}
		return renderErr(http.StatusUnprocessableEntity, verr.Message)
	}

	u, err := a.Service.Authenticate(c.Request().Context(), form.Email, form.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		a.loginLimiter.Record(ip)
		a.Log.Warn("failed login", "ip", ip)
		return renderErr(http.StatusUnauthorized, "Invalid email or password.")
	}
	if err != nil {
		return err
	}
	a.loginLimiter.Reset(ip)

	if err := setUserSession(c, u.ID); err != nil {
		return err
	}
	caller := Caller{UserID: u.ID, Username: u.Username, Authenticated: true, IsAdmin: u.IsAdmin}
	return redirectWith(c, "success", "Welcome back, "+u.Username+"!", a.landing(caller, form.Next))
}

// landing picks where a signed-in caller goes after login.
func (a *App) landing(caller Caller, next string) string {
	if n := safeNext(next); n != "" {
		return n
	}
	if CanAdminister(caller) {
		return "/admin/"
	}
	return "/"
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return redirectWith(c, "info", "You have been signed out.", "/")
}
