package folio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/folio/media"
	"github.com/eringen/folio/slug"
)

// slugAttempts bounds how often an insert is retried after losing a slug
// race to a concurrent writer.
const slugAttempts = 3

// Service holds the content rules: slug assignment, sanitizing, media
// lifecycle, user management. Handlers go through it; tests can too.
type Service struct {
	store      *Store
	media      *media.Store
	log        *slog.Logger
	now        func() time.Time
	bcryptCost int
}

// NewService wires a Service over store and files.
func NewService(store *Store, files *media.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:      store,
		media:      files,
		log:        log,
		now:        func() time.Time { return dbTime(time.Now()) },
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Store returns the underlying store for read-only listings.
func (s *Service) Store() *Store { return s.store }

// Media returns the file store.
func (s *Service) Media() *media.Store { return s.media }

// Upload is a file received from a form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// assignSlug derives a slug from name, unique in table apart from excludeID,
// and calls save with it. save is retried with a fresh slug if the store
// reports a slug collision.
func (s *Service) assignSlug(ctx context.Context, table, field, name string, excludeID int64, save func(string) error) error {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return s.store.SlugExists(ctx, table, candidate, excludeID)
	}
	for attempt := 1; attempt <= slugAttempts; attempt++ {
		sl, err := slug.For(ctx, name, exists)
		switch {
		case errors.Is(err, slug.ErrEmpty):
			return invalid(field, "must contain at least one letter or digit")
		case errors.Is(err, slug.ErrExhausted):
			return invalid(field, "too many entries already use this name")
		case err != nil:
			return err
		}

		err = save(sl)
		if col, dup := duplicateColumn(err); dup && col == "slug" {
			s.log.Warn("slug taken concurrently, retrying", "table", table, "slug", sl, "attempt", attempt)
			continue
		}
		return err
	}
	return invalid(field, "could not reserve a unique address, try again")
}

// AdminSeed is the first admin account created by Bootstrap.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}

var (
	defaultCategories = []string{"Technology", "Travel", "Food", "Lifestyle"}
	defaultTags       = []string{"Python", "Flask", "Web Development", "Tips"}
)

// Bootstrap prepares an empty installation: when there are no users and seed
// is complete it creates the admin account, then the default categories and
// tags if those tables are empty too.
func (s *Service) Bootstrap(ctx context.Context, seed AdminSeed) error {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	if seed.Email == "" || seed.Password == "" {
		s.log.Warn("no users exist; set ADMIN_EMAIL and ADMIN_PASSWORD or run create-admin")
		return nil
	}
	if seed.Username == "" {
		seed.Username = "admin"
	}
	admin, err := s.CreateUser(ctx, UserInput{
		Username: seed.Username,
		Email:    seed.Email,
		Password: seed.Password,
		IsAdmin:  true,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("admin user created", "username", admin.Username)

	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		for _, name := range defaultCategories {
			if _, err := s.CreateCategory(ctx, name); err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}
	}
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		for _, name := range defaultTags {
			if _, err := s.CreateTag(ctx, name); err != nil {
				return fmt.Errorf("seed tag %q: %w", name, err)
			}
		}
	}
	return nil
}

// Sidebar loads the blocks shown beside public listings.
func (s *Service) Sidebar(ctx context.Context) (Sidebar, error) {
	var sb Sidebar
	var err error
	if sb.Categories, err = s.store.ListCategories(ctx); err != nil {
		return sb, err
	}
	if sb.PopularTags, err = s.store.PopularTags(ctx, 10); err != nil {
		return sb, err
	}
	if sb.Recent, err = s.store.RecentPosts(ctx, PostFilter{PublishedOnly: true}, 5); err != nil {
		return sb, err
	}
	return sb, nil
}

// Dashboard gathers the admin landing page figures.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	var err error
	if d.Counts, err = s.store.Counts(ctx); err != nil {
		return d, err
	}
	if d.Recent, err = s.store.RecentPosts(ctx, PostFilter{}, 5); err != nil {
		return d, err
	}
	return d, nil
}
