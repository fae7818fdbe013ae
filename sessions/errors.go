package sessions

import "github.com/pkg/errors"

var (
	ErrNotFound         = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is already ended or expired")
	ErrNotOwner         = errors.New("session belongs to another lecturer")
)
