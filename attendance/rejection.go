package attendance

import (
	"fmt"
	"net/http"
)

// Reason is the closed set of externally visible rejection causes. Each
// claim rejection carries exactly one reason.
type Reason string

const (
	ReasonInvalidToken     Reason = "INVALID_TOKEN"
	ReasonSessionNotFound  Reason = "SESSION_NOT_FOUND"
	ReasonSessionNotActive Reason = "SESSION_NOT_ACTIVE"
	ReasonDuplicateClaim   Reason = "DUPLICATE_CLAIM"
	ReasonAlreadyMarked    Reason = "ALREADY_MARKED"
	ReasonOutOfRange       Reason = "OUT_OF_RANGE"
	ReasonNotSessionOwner  Reason = "NOT_SESSION_OWNER"
	ReasonUnknownStudent   Reason = "UNKNOWN_STUDENT"
)

// Rejection is the negative outcome of an admission attempt. It is an
// expected result of a correctly functioning system, not an internal
// failure, and maps to a stable HTTP status for callers.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

// HTTPStatus maps the rejection reason to its response status code.
func (r *Rejection) HTTPStatus() int {
	switch r.Reason {
	case ReasonSessionNotFound, ReasonUnknownStudent:
		return http.StatusNotFound
	case ReasonDuplicateClaim, ReasonAlreadyMarked:
		return http.StatusConflict
	case ReasonNotSessionOwner:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// AsRejection unwraps err as a *Rejection if it is one.
func AsRejection(err error) (*Rejection, bool) {
	rejection, ok := err.(*Rejection)
	return rejection, ok
}

func reject(reason Reason, format string, args ...interface{}) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
