package folio

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/eringen/folio/media"
)

// Media backends selectable through MEDIA_BACKEND.
const (
	MediaLocal = "local"
	MediaS3    = "s3"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr           string // Listen address (default ":3000")
	DatabaseDriver string // "sqlite" or "pgx" (default "sqlite")
	DatabaseURL    string // DSN or sqlite path (default "data/folio.db")

	SecretKey    string // Required: session signing secret
	CookieSecure bool   // Set true for HTTPS
	MaxBodyBytes int64  // Request body and upload cap (default 16 MiB)
	Debug        bool

	StaticDir    string         // Static root served under /static (default "static")
	MediaBackend string         // "local" or "s3" (default "local")
	S3           media.S3Config // Used when MediaBackend is "s3"

	SentryDSN   string
	Environment string // Reported to Sentry (default "development")

	Admin AdminSeed // First admin, created on an empty database
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = DriverSQLite
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/folio.db"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = media.DefaultMaxBytes
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.MediaBackend == "" {
		c.MediaBackend = MediaLocal
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// LoadConfig reads the site configuration from the environment, after
// loading a .env file from the working directory if one exists.
func LoadConfig() (SiteConfig, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return SiteConfig{}, err
		}
		slog.Debug("no .env file found, using environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SITE_NAME", "Blog")
	v.SetDefault("SITE_URL", "http://localhost:3000")
	v.SetDefault("ADDR", ":3000")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_URL", "data/folio.db")
	v.SetDefault("MAX_CONTENT_LENGTH", media.DefaultMaxBytes)
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("MEDIA_BACKEND", MediaLocal)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ADMIN_USERNAME", "admin")

	cfg := SiteConfig{
		Name:           v.GetString("SITE_NAME"),
		URL:            v.GetString("SITE_URL"),
		Description:    v.GetString("SITE_DESCRIPTION"),
		Author:         v.GetString("SITE_AUTHOR"),
		Addr:           v.GetString("ADDR"),
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		SecretKey:      v.GetString("SECRET_KEY"),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		MaxBodyBytes:   v.GetInt64("MAX_CONTENT_LENGTH"),
		Debug:          v.GetBool("DEBUG"),
		StaticDir:      v.GetString("STATIC_DIR"),
		MediaBackend:   v.GetString("MEDIA_BACKEND"),
		S3: media.S3Config{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			Region:    v.GetString("S3_REGION"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			PublicURL: v.GetString("S3_PUBLIC_URL"),
		},
		SentryDSN:   v.GetString("SENTRY_DSN"),
		Environment: v.GetString("APP_ENV"),
		Admin: AdminSeed{
			Username: v.GetString("ADMIN_USERNAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the static root (default "static"). Local media is
// stored beneath it.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}

// WithMediaBackend replaces the backend chosen by MediaBackend.
func WithMediaBackend(b media.Backend) Option {
	return func(a *App) {
		a.mediaBackend = b
	}
}
