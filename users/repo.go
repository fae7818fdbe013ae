package users

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// Repo defines the interface for user storage operations.
type Repo interface {
	// Create stores a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by their internal ID.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email, the external identifier used
	// for manual attendance entry.
	GetByEmail(ctx context.Context, email string) (*User, error)
}
