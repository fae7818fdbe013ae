package sessions

import "context"

// Repo defines the interface for session storage operations.
type Repo interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*Session, error)

	// Update persists lifecycle changes to an existing session.
	Update(ctx context.Context, session *Session) error

	// ListByLecturer returns a lecturer's sessions, newest first.
	ListByLecturer(ctx context.Context, lecturerID string) ([]*Session, error)

	// SoftDelete hides a session without destroying its attendance.
	SoftDelete(ctx context.Context, id string) error
}
