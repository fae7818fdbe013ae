package attendance

import (
	"context"

	"github.com/pkg/errors"
)

// ErrDuplicate signals the store-level uniqueness constraint on
// (session_id, student_id). It is the authoritative duplicate guard; the
// pre-insert existence check is only an early exit.
var ErrDuplicate = errors.New("attendance already recorded for this session")

// Repo defines the interface for attendance storage operations.
type Repo interface {
	// Insert stores a new record. It returns ErrDuplicate when a record
	// already exists for the same (session, student) pair.
	Insert(ctx context.Context, record *Record) error

	// Exists reports whether a record exists for the pair.
	Exists(ctx context.Context, sessionID, studentID string) (bool, error)

	// ListBySession returns a session's records, newest first.
	ListBySession(ctx context.Context, sessionID string) ([]*Record, error)

	// ListByStudent returns a page of the student's records, newest
	// first, along with the total count.
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*Record, int64, error)
}
