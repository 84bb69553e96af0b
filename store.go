package folio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-extras/go-kit/must"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var gooseDialects = map[string]string{
	DriverSQLite:   "sqlite3",
	DriverPostgres: "postgres",
}

var migrationDirs = map[string]string{
	DriverSQLite:   "migrations/sqlite",
	DriverPostgres: "migrations/postgres",
}

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// Store is the persistence layer. Queries are written with ? placeholders
// and rebound for the active driver.
type Store struct {
	db     *sqlx.DB
	driver string
	log    *slog.Logger
}

// NewStore connects to the database. For sqlite the parent directory of dsn
// is created and foreign keys, WAL and a busy timeout are enabled.
func NewStore(driver, dsn string, log *slog.Logger) (*Store, error) {
	if _, ok := gooseDialects[driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if log == nil {
		log = slog.Default()
	}
	if driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(sqlitePath(dsn)), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		if !strings.Contains(dsn, "_pragma") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + sqlitePragmas
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(4)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info("database connected", "driver", driver)
	return &Store{db: db, driver: driver, log: log}, nil
}

func sqlitePath(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	return dsn
}

func (s *Store) migrationsFS() fs.FS {
	return must.Must(fs.Sub(Migrations, migrationDirs[s.driver]))
}

func (s *Store) setupGoose() error {
	if err := goose.SetDialect(gooseDialects[s.driver]); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(s.migrationsFS())
	goose.SetLogger(goose.NopLogger())
	return nil
}

// Migrate applies all pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db.DB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	s.log.Info("migrations applied", "driver", s.driver)
	return nil
}

// MigrateDown rolls back the most recent migration.
func (s *Store) MigrateDown(ctx context.Context) error {
	if err := s.setupGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, s.db.DB, "."); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}
	s.log.Info("rolled back one migration", "driver", s.driver)
	return nil
}

// Driver returns the database/sql driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withTx runs fn in a transaction, committing only if fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, q sqlx.QueryerContext, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Store) selectAll(ctx context.Context, q sqlx.QueryerContext, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, s.db.Rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, e sqlx.ExecerContext, query string, args ...any) (sql.Result, error) {
	return e.ExecContext(ctx, s.db.Rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id and returns the new id.
func (s *Store) insert(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowxContext(ctx, s.db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// expectRow maps a zero-row UPDATE or DELETE to ErrNotFound.
func expectRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// slugTables are the tables whose slug column SlugExists may query.
var slugTables = map[string]bool{"posts": true, "categories": true, "tags": true}

// SlugExists reports whether slug is used in table by a row other than
// excludeID. Pass 0 to check all rows.
func (s *Store) SlugExists(ctx context.Context, table, slug string, excludeID int64) (bool, error) {
	if !slugTables[table] {
		return false, fmt.Errorf("slug lookup on unknown table %q", table)
	}
	var n int
	err := s.get(ctx, s.db, &n, "SELECT COUNT(*) FROM "+table+" WHERE slug = ? AND id <> ?", slug, excludeID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Counts are the dashboard totals.
type Counts struct {
	Posts      int
	Published  int
	Categories int
	Tags       int
	Users      int
	Media      int
}

// Counts returns row totals for the dashboard.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	queries := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&c.Posts, "SELECT COUNT(*) FROM posts", nil},
		{&c.Published, "SELECT COUNT(*) FROM posts WHERE published = ?", []any{true}},
		{&c.Categories, "SELECT COUNT(*) FROM categories", nil},
		{&c.Tags, "SELECT COUNT(*) FROM tags", nil},
		{&c.Users, "SELECT COUNT(*) FROM users", nil},
		{&c.Media, "SELECT COUNT(*) FROM media", nil},
	}
	for _, q := range queries {
		if err := s.get(ctx, s.db, q.dest, q.query, q.args...); err != nil {
			return Counts{}, err
		}
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// dbTime truncates to microseconds so sqlite and postgres round-trip the
// same value.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// offset converts a 1-based page number into a LIMIT/OFFSET pair.
func offset(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}
