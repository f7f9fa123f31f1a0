// Package cache stores lint results in SQLite, keyed by document content and
// the configuration that produced them.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned by Get when no entry matches.
var ErrNotFound = errors.New("cache entry not found")

// Cache is a lint result cache. It is safe for concurrent use.
type Cache struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens the cache database at path, creating it and running pending
// migrations as needed. Use ":memory:" for a private in-memory cache.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create cache directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive for the lifetime of the cache.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	c := &Cache{db: db, path: path, logger: logger}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("cache opened", slog.String("path", path))
	return c, nil
}

func (c *Cache) migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(c.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Path returns the database path the cache was opened with.
func (c *Cache) Path() string {
	return c.path
}

// ContentHash returns the key component derived from a document's text.
func ContentHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Fingerprint identifies the rule selection and style configuration that
// lint results depend on.
func Fingerprint(lintCfg *lint.Config, cfg style.Config) string {
	styleJSON, _ := json.Marshal(cfg)
	h := sha256.New()
	h.Write([]byte(lintCfg.Fingerprint()))
	h.Write([]byte{0})
	h.Write(styleJSON)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached violations for a document, or ErrNotFound.
func (c *Cache) Get(ctx context.Context, contentHash, fingerprint string) ([]lint.Violation, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT violations FROM lint_results WHERE content_hash = ? AND fingerprint = ?`,
		contentHash, fingerprint,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var violations []lint.Violation
	if err := json.Unmarshal([]byte(payload), &violations); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return violations, nil
}

// Put stores the violations for a document, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, contentHash, fingerprint string, violations []lint.Violation) error {
	if violations == nil {
		violations = []lint.Violation{}
	}
	payload, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO lint_results (content_hash, fingerprint, violations, created_at) VALUES (?, ?, ?, ?)`,
		contentHash, fingerprint, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Prune deletes entries written before cutoff and returns how many were
// removed.
func (c *Cache) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM lint_results WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	c.logger.Debug("cache pruned", slog.Int64("removed", n))
	return n, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lint_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// Version returns the applied migration version.
func (c *Cache) Version() (int64, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite"); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.GetDBVersion(c.db)
}
