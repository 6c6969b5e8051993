// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"polyphona/internal/models"
)

// TokenTTL is the fixed validity window of a bearer token. The refresh date
// of a new token is set to issue time + TokenTTL.
const TokenTTL = 15 * time.Minute

var (
	ErrSongNotFound  = errors.New("song not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("token not found")
	ErrUserExists    = errors.New("user already exists")
)

// NotFoundError reports a missing row together with the entity kind and the
// identifying attributes that were supplied, e.g.
// "Song with id=4, username=alice does not exist". It unwraps to the
// per-entity sentinel so callers can keep using errors.Is.
type NotFoundError struct {
	Entity string
	Attrs  string

	sentinel error
}

func (e *NotFoundError) Error() string {
	if e.Attrs == "" {
		return fmt.Sprintf("%s does not exist", e.Entity)
	}
	return fmt.Sprintf("%s with %s does not exist", e.Entity, e.Attrs)
}

func (e *NotFoundError) Unwrap() error { return e.sentinel }

func SongNotFound(id int) *NotFoundError {
	return &NotFoundError{Entity: "Song", Attrs: fmt.Sprintf("id=%d", id), sentinel: ErrSongNotFound}
}

// SongNotFoundForUser covers the joined ownership+existence lookup. A single
// error is used whether the song is absent or simply not owned by the caller,
// so non-owners cannot probe for song existence.
func SongNotFoundForUser(id int, username string) *NotFoundError {
	return &NotFoundError{Entity: "Song", Attrs: fmt.Sprintf("id=%d, username=%s", id, username), sentinel: ErrSongNotFound}
}

func UserNotFound(username string) *NotFoundError {
	return &NotFoundError{Entity: "User", Attrs: fmt.Sprintf("username=%s", username), sentinel: ErrUserNotFound}
}

func TokenNotFound(token string) *NotFoundError {
	return &NotFoundError{Entity: "Token", Attrs: fmt.Sprintf("token=%s", token), sentinel: ErrTokenNotFound}
}

type SongStorage interface {
	// CreateForUser inserts the song and its ownership link in one
	// transaction. Created and Updated are both set to the insert time.
	CreateForUser(ctx context.Context, song *models.Song, username string) (*models.Song, error)
	GetByID(ctx context.Context, id int) (*models.Song, error)
	// ListByUser returns the user's songs in insertion order. An unknown
	// username yields an empty list; callers that want an error must check
	// UserStorage.Exists first.
	ListByUser(ctx context.Context, username string) ([]models.Song, error)
	// Update succeeds only if an ownership link exists for (id, username).
	// Only Name, Tracks and Updated change.
	Update(ctx context.Context, id int, name string, tracks []byte, username string) (*models.Song, error)
	// Delete has the same ownership precondition as Update and removes the
	// song together with every link referencing it.
	Delete(ctx context.Context, id int, username string) error
}

type UserStorage interface {
	Create(ctx context.Context, user *models.User) error
	Exists(ctx context.Context, username string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// CheckCredentials reports whether the password matches. Unknown users
	// and wrong passwords are indistinguishable to the caller.
	CheckCredentials(ctx context.Context, username, password string) (bool, error)
}

type TokenStorage interface {
	Save(ctx context.Context, username, token string) error
	// Resolve maps a token back to its username. The refresh date is not
	// consulted here: expiry is enforced only by SweepExpired, so a stale
	// token keeps resolving until the next sweep.
	Resolve(ctx context.Context, token string) (string, error)
	DeleteToken(ctx context.Context, token string) error
	// SweepExpired removes every token whose refresh date is at or before
	// now. Idempotent; returns the number of rows removed.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}
