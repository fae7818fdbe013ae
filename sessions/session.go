// Package sessions manages lecture attendance sessions: time-boxed
// windows anchored to a GPS location, each carrying a signed QR token.
package sessions

import (
	"time"

	"gorm.io/gorm"

	"github.com/classattend/attendance-server/geo"
)

// Status is the lifecycle state of a session. ACTIVE transitions to
// ENDED (manual) or EXPIRED (window elapsed); both are terminal.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusEnded   Status = "ENDED"
	StatusExpired Status = "EXPIRED"
)

// Session represents one lecture period during which attendance can be
// claimed.
type Session struct {
	ID              string         `gorm:"primaryKey" json:"id"`
	LecturerID      string         `gorm:"index;not null" json:"lecturer_id"`
	CourseID        string         `gorm:"index" json:"course_id,omitempty"`
	Name            string         `gorm:"not null" json:"name"`
	Latitude        float64        `gorm:"not null" json:"latitude"`
	Longitude       float64        `gorm:"not null" json:"longitude"`
	QRToken         string         `gorm:"not null" json:"qr_code"`
	Status          Status         `gorm:"not null" json:"status"`
	StartTime       time.Time      `gorm:"not null" json:"start_time"`
	DurationSeconds int            `gorm:"not null" json:"duration"`
	EndTime         *time.Time     `json:"end_time,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Anchor returns the location registered at session creation, against
// which claimant proximity is measured.
func (s *Session) Anchor() geo.Coordinate {
	return geo.Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Deadline returns the instant the session's active window closes.
func (s *Session) Deadline() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationSeconds) * time.Second)
}

// Terminal reports whether the session can accept no further claims.
func (s *Session) Terminal() bool {
	return s.Status == StatusEnded || s.Status == StatusExpired
}

// ExpireIfDue flips an ACTIVE session whose window has elapsed to
// EXPIRED, setting EndTime to the window boundary. It reports whether a
// transition happened. Calling it on a terminal session is a no-op.
func (s *Session) ExpireIfDue(now time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	deadline := s.Deadline()
	if !now.After(deadline) {
		return false
	}
	s.Status = StatusExpired
	s.EndTime = &deadline
	return true
}

// End terminates an ACTIVE session early. Terminal sessions cannot be
// ended again.
func (s *Session) End(now time.Time) error {
	if s.Status != StatusActive {
		return ErrSessionNotActive
	}
	s.Status = StatusEnded
	s.EndTime = &now
	return nil
}
