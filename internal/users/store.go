// ABOUTME: Store interface and data types for user profile persistence.
// ABOUTME: Tracks known users and their chosen answer language.

package users

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested user or attribute does not exist
var ErrNotFound = errors.New("not found")

// User represents a known bot user
type User struct {
	ID           int64
	Username     string
	LanguageCode string
	CreatedAt    time.Time
}

// Store defines the interface for user profile persistence
type Store interface {
	// UpsertUser records a user, updating the username if it changed.
	UpsertUser(ctx context.Context, id int64, username string) error

	// SetLanguage stores the user's chosen answer language, creating the
	// user row if needed.
	SetLanguage(ctx context.Context, id int64, languageCode string) error

	// GetLanguage returns the user's stored language.
	// Returns ErrNotFound when the user is unknown or never chose one.
	GetLanguage(ctx context.Context, id int64) (string, error)

	// ListUsers returns all known users ordered by creation time.
	ListUsers(ctx context.Context) ([]*User, error)

	// Close releases the underlying resources.
	Close() error
}
