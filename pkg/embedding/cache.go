package embedding

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Cache decorates an Embedder with a SQLite store keyed by (text hash, model)
// so repeated ingests and queries do not re-bill the embeddings API.
type Cache struct {
	db     *sql.DB
	inner  Embedder
	logger *slog.Logger
}

// OpenCache opens (or creates) the cache database at path and wraps inner.
func OpenCache(path string, inner Embedder, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db, inner: inner, logger: logger}, nil
}

// runMigrations applies pending schema migrations embedded in the binary.
// Safe to call on every startup; already-applied migrations are skipped.
func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Model returns the inner embedder's model name.
func (c *Cache) Model() string { return c.inner.Model() }

// Embed returns a cached vector when present, otherwise calls the inner
// embedder and stores the result. Cache read failures fall through to the
// inner embedder; write failures are logged and the vector is still returned.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := hashText(text)

	var blob []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT vector FROM embeddings WHERE text_hash = ? AND model = ?`,
		key, c.inner.Model(),
	).Scan(&blob)
	switch {
	case err == nil:
		vec, decErr := decodeVector(blob)
		if decErr == nil {
			return vec, nil
		}
		c.logger.Warn("discarding corrupt cached vector", "hash", key, "error", decErr)
	case errors.Is(err, sql.ErrNoRows):
		// Miss.
	default:
		c.logger.Warn("embedding cache read failed", "hash", key, "error", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embeddings (text_hash, model, vector) VALUES (?, ?, ?)`,
		key, c.inner.Model(), encodeVector(vec),
	); err != nil {
		c.logger.Warn("embedding cache write failed", "hash", key, "error", err)
	}
	return vec, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
