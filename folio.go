// Package folio is a small blog CMS built with Go, Echo, and templ.
// It provides public post browsing, categories, tags, search, RSS and a
// sitemap, plus an admin back-office for posts, taxonomy, users and media.
//
// Sites provide their own templates via the ViewFuncs struct (the views
// package has a default set), and folio handles the handler logic,
// middleware, and database operations.
package folio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/media"
)

// Version is stamped at build time.
var Version = "dev"

// ViewFuncs holds the templ components the handlers render. Every page gets
// the shared PageData first.
type ViewFuncs struct {
	Index    func(d PageData, posts Page[Post]) templ.Component
	Post     func(d PageData, post Post, related []Post) templ.Component
	Category func(d PageData, category Category, posts Page[Post]) templ.Component
	Tag      func(d PageData, tag Tag, posts Page[Post]) templ.Component
	Search   func(d PageData, query string, posts Page[Post], categories []Category) templ.Component
	About    func(d PageData) templ.Component
	Contact  func(d PageData, form ContactForm, verr *ValidationError) templ.Component
	Login    func(d PageData, form LoginForm, message string) templ.Component

	AdminDashboard  func(d PageData, dash Dashboard) templ.Component
	AdminPosts      func(d PageData, posts Page[Post], query string) templ.Component
	AdminPostForm   func(d PageData, e PostEditor) templ.Component
	AdminCategories func(d PageData, categories []Category) templ.Component
	AdminTags       func(d PageData, tags []Tag) templ.Component
	AdminTermForm   func(d PageData, e TermEditor) templ.Component
	AdminUsers      func(d PageData, users []User) templ.Component
	AdminUserForm   func(d PageData, e UserEditor) templ.Component
	AdminMedia      func(d PageData, items Page[Media]) templ.Component

	NotFound    func(d PageData) templ.Component
	Forbidden   func(d PageData) templ.Component
	ServerError func(d PageData) templ.Component
}

// App is the central folio application. It wires together the store,
// service, handlers, middleware, and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Service *Service
	Media   *media.Store
	Views   ViewFuncs
	Log     *slog.Logger

	loginLimiter *LoginLimiter
	mediaBackend media.Backend
	customRoutes []func(*App)
	startedAt    time.Time
	ready        bool
}

// New creates a folio App with the given configuration and views. Nothing
// is opened until Setup.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.Validator = newFormValidator()

	a := &App{
		Config:    cfg,
		Echo:      e,
		Views:     views,
		startedAt: dbTime(time.Now()),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the database, applies migrations, prepares media storage,
// seeds an empty installation and registers middleware and routes. It is
// called by Start; tests call it directly and serve a.Echo themselves.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if a.Config.SecretKey == "" {
		return errors.New("folio: SECRET_KEY is required")
	}
	if a.Log == nil {
		a.Log = logger.New(logger.Options{
			Debug:       a.Config.Debug,
			SentryDSN:   a.Config.SentryDSN,
			Environment: a.Config.Environment,
		})
	}

	store, err := NewStore(a.Config.DatabaseDriver, a.Config.DatabaseURL, a.Log)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("folio: migrate: %w", err)
	}

	backend, err := a.newMediaBackend(ctx)
	if err != nil {
		return fmt.Errorf("folio: init media: %w", err)
	}
	a.Media = media.NewStore(backend, media.WithMaxBytes(a.Config.MaxBodyBytes))

	a.Service = NewService(store, a.Media, a.Log)
	if err := a.Service.Bootstrap(ctx, a.Config.Admin); err != nil {
		return fmt.Errorf("folio: bootstrap: %w", err)
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	return nil
}

func (a *App) newMediaBackend(ctx context.Context) (media.Backend, error) {
	if a.mediaBackend != nil {
		return a.mediaBackend, nil
	}
	switch a.Config.MediaBackend {
	case MediaLocal:
		return media.NewLocal(a.Config.StaticDir, "/static"), nil
	case MediaS3:
		return media.NewS3(ctx, a.Config.S3)
	}
	return nil, fmt.Errorf("unknown media backend %q", a.Config.MediaBackend)
}

// Start runs Setup and serves until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	a.Log.Info("listening", "addr", a.Config.Addr, "version", Version)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/static", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public routes
	e.GET("/", a.handleIndex)
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/category/:slug/", a.handleCategory)
	e.GET("/tag/:slug/", a.handleTag)
	e.GET("/search/", a.handleSearch)
	e.GET("/about/", a.handleAbout)
	e.GET("/contact/", a.handleContact)
	e.POST("/contact/", a.handleContactSubmit)
	e.GET("/login/", a.handleLoginForm)
	e.POST("/login/", a.handleLogin)
	e.POST("/logout/", a.handleLogout)

	// Admin routes
	g := e.Group("/admin", a.requireAdmin)
	g.GET("/", a.handleAdminDashboard)

	g.GET("/posts/", a.handleAdminPosts)
	g.GET("/posts/new/", a.handleAdminPostNew)
	g.POST("/posts/new/", a.handleAdminPostCreate)
	g.GET("/posts/:id/edit/", a.handleAdminPostEdit)
	g.POST("/posts/:id/edit/", a.handleAdminPostUpdate)
	g.POST("/posts/:id/delete/", a.handleAdminPostDelete)

	g.GET("/categories/", a.handleAdminCategories)
	g.GET("/categories/new/", a.handleAdminCategoryNew)
	g.POST("/categories/new/", a.handleAdminCategoryCreate)
	g.GET("/categories/:id/edit/", a.handleAdminCategoryEdit)
	g.POST("/categories/:id/edit/", a.handleAdminCategoryUpdate)
	g.POST("/categories/:id/delete/", a.handleAdminCategoryDelete)

	g.GET("/tags/", a.handleAdminTags)
	g.GET("/tags/new/", a.handleAdminTagNew)
	g.POST("/tags/new/", a.handleAdminTagCreate)
	g.GET("/tags/:id/edit/", a.handleAdminTagEdit)
	g.POST("/tags/:id/edit/", a.handleAdminTagUpdate)
	g.POST("/tags/:id/delete/", a.handleAdminTagDelete)

	g.GET("/users/", a.handleAdminUsers)
	g.GET("/users/new/", a.handleAdminUserNew)
	g.POST("/users/new/", a.handleAdminUserCreate)
	g.GET("/users/:id/edit/", a.handleAdminUserEdit)
	g.POST("/users/:id/edit/", a.handleAdminUserUpdate)
	g.POST("/users/:id/delete/", a.handleAdminUserDelete)

	g.GET("/media/", a.handleAdminMedia)
	g.POST("/media/upload/", a.handleAdminMediaUpload)
	g.POST("/media/:id/delete/", a.handleAdminMediaDelete)
	g.POST("/upload-editor-image/", a.handleEditorImageUpload)
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close releases the database. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
