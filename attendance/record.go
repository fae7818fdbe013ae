// Package attendance decides whether a presence claim is accepted and
// records the outcome. A claim passes through an ordered gate sequence:
// token validity, session existence, session lifecycle, duplicate check,
// and proximity — the first failing gate determines the rejection.
package attendance

import "time"

// Status is the recorded outcome of a claim. Only VALID outcomes are
// persisted.
type Status string

const StatusValid Status = "VALID"

// Origin records how an attendance entry came to exist.
type Origin string

const (
	OriginScanned       Origin = "SCANNED"
	OriginManuallyAdded Origin = "MANUALLY_ENTERED"
)

// Record is one accepted attendance claim. Records are immutable once
// written; at most one exists per (SessionID, StudentID) pair.
type Record struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	SessionID      string    `gorm:"uniqueIndex:idx_session_student;not null" json:"session_id"`
	StudentID      string    `gorm:"uniqueIndex:idx_session_student;not null" json:"student_id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DistanceMeters float64   `json:"distance"`
	Status         Status    `gorm:"not null" json:"status"`
	Origin         Origin    `gorm:"not null" json:"origin"`
	ScannedAt      time.Time `gorm:"not null" json:"scanned_at"`
}
