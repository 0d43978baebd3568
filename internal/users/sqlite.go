// ABOUTME: SQLite implementation of the user Store using modernc.org/sqlite
// ABOUTME: Provides user/language persistence with automatic schema creation

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "users")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("user store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			language_code TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// UpsertUser records a user, keeping the original created_at on conflict.
func (s *SQLiteStore) UpsertUser(ctx context.Context, id int64, username string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET username = excluded.username`,
		id, username, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upserting user %d: %w", id, err)
	}
	return nil
}

// SetLanguage stores the user's chosen answer language.
func (s *SQLiteStore) SetLanguage(ctx context.Context, id int64, languageCode string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, language_code, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET language_code = excluded.language_code`,
		id, languageCode, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("setting language for user %d: %w", id, err)
	}
	return nil
}

// GetLanguage returns the user's stored language, or ErrNotFound when the
// user is unknown or never chose one.
func (s *SQLiteStore) GetLanguage(ctx context.Context, id int64) (string, error) {
	var lang string
	err := s.db.QueryRowContext(ctx,
		`SELECT language_code FROM users WHERE id = ?`, id).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying language for user %d: %w", id, err)
	}
	if lang == "" {
		return "", ErrNotFound
	}
	return lang, nil
}

// ListUsers returns all known users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, language_code, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.LanguageCode, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
