package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/classattend/attendance-server/geo"
	"github.com/classattend/attendance-server/qrtoken"
	"github.com/classattend/attendance-server/sessions"
	"github.com/classattend/attendance-server/users"
)

// Repos holds all repository dependencies for the Service.
type Repos struct {
	Sessions   sessions.Repo
	Attendance Repo
	Users      users.Repo
}

// Service is the admission controller. It validates scanned claims
// through the full gate sequence and manual entries through the reduced
// one, persists accepted records, and notifies the session owner.
type Service struct {
	repos       Repos
	codec       *qrtoken.Codec
	notifier    Notifier
	maxDistance float64
	nowTime     func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes the admission controller. maxDistanceMeters is
// the deployment-mode proximity threshold, passed in explicitly rather
// than read from ambient state.
func NewService(repos Repos, codec *qrtoken.Codec, notifier Notifier, maxDistanceMeters float64, options ...ServiceOption) (*Service, error) {
	if repos.Sessions == nil {
		return nil, errors.New("[attendance.NewService] Sessions repo is required")
	}
	if repos.Attendance == nil {
		return nil, errors.New("[attendance.NewService] Attendance repo is required")
	}
	if repos.Users == nil {
		return nil, errors.New("[attendance.NewService] Users repo is required")
	}
	if codec == nil {
		return nil, errors.New("[attendance.NewService] codec is required")
	}
	if notifier == nil {
		return nil, errors.New("[attendance.NewService] notifier is required")
	}
	if maxDistanceMeters <= 0 {
		return nil, errors.New("[attendance.NewService] maxDistanceMeters must be positive")
	}

	service := &Service{
		repos:       repos,
		codec:       codec,
		notifier:    notifier,
		maxDistance: maxDistanceMeters,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// ScannedClaim is a student's assertion of presence backed by a scanned
// QR token and their device location.
type ScannedClaim struct {
	Token     string
	StudentID string
	Location  geo.Coordinate
}

// AdmitScan runs a scanned claim through the gate sequence and persists
// the record when every gate passes. A *Rejection return carries the
// single externally visible reason; any other error is infrastructure
// failure.
func (s *Service) AdmitScan(ctx context.Context, claim ScannedClaim) (*Record, error) {
	// Gate 1: token structure, signature, and age.
	sessionID, _, err := s.codec.Validate(claim.Token)
	if err != nil {
		return nil, reject(ReasonInvalidToken, "invalid or expired QR code")
	}

	// Gates 2 and 3: session exists and is still ACTIVE.
	session, err := s.loadActiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Gate 4: no prior claim by this student. The store constraint is
	// the authoritative guard; this is an early exit.
	exists, err := s.repos.Attendance.Exists(ctx, sessionID, claim.StudentID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.AdmitScan] attendance lookup")
	}
	if exists {
		return nil, reject(ReasonDuplicateClaim, "attendance already marked for this session")
	}

	// Gate 5: proximity to the session anchor.
	proximity := geo.CheckProximity(claim.Location, session.Anchor(), s.maxDistance)
	if !proximity.Valid {
		return nil, reject(ReasonOutOfRange,
			"you are too far from the lecture location: %.2f meters away, maximum allowed is %.0f meters",
			proximity.DistanceMeters, s.maxDistance)
	}

	record := &Record{
		ID:             uuid.New().String(),
		SessionID:      sessionID,
		StudentID:      claim.StudentID,
		Latitude:       claim.Location.Latitude,
		Longitude:      claim.Location.Longitude,
		DistanceMeters: proximity.DistanceMeters,
		Status:         StatusValid,
		Origin:         OriginScanned,
		ScannedAt:      s.nowTime(),
	}
	if err := s.insertAndNotify(ctx, session, record, ReasonDuplicateClaim); err != nil {
		return nil, err
	}
	return record, nil
}

// AdmitManual records presence on a student's behalf. Only the session's
// owner may do this; the token and proximity gates are bypassed and the
// location is recorded as zero.
func (s *Service) AdmitManual(ctx context.Context, sessionID, studentEmail, actingLecturerID string) (*Record, error) {
	session, err := s.repos.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, reject(ReasonSessionNotFound, "session not found")
		}
		return nil, errors.Wrap(err, "[Service.AdmitManual] session lookup")
	}
	if session.LecturerID != actingLecturerID {
		return nil, reject(ReasonNotSessionOwner, "you can only mark attendance for your own sessions")
	}
	if err := s.ensureActive(ctx, session); err != nil {
		return nil, err
	}

	student, err := s.repos.Users.GetByEmail(ctx, studentEmail)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, reject(ReasonUnknownStudent, "no student found for %s", studentEmail)
		}
		return nil, errors.Wrap(err, "[Service.AdmitManual] student lookup")
	}

	exists, err := s.repos.Attendance.Exists(ctx, sessionID, student.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.AdmitManual] attendance lookup")
	}
	if exists {
		return nil, reject(ReasonAlreadyMarked, "attendance already marked for this student")
	}

	record := &Record{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		StudentID: student.ID,
		Status:    StatusValid,
		Origin:    OriginManuallyAdded,
		ScannedAt: s.nowTime(),
	}
	if err := s.insertAndNotify(ctx, session, record, ReasonAlreadyMarked); err != nil {
		return nil, err
	}
	return record, nil
}

// loadActiveSession resolves gates 2 and 3 for scanned claims.
func (s *Service) loadActiveSession(ctx context.Context, sessionID string) (*sessions.Session, error) {
	session, err := s.repos.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, reject(ReasonSessionNotFound, "session not found")
		}
		return nil, errors.Wrap(err, "[Service.loadActiveSession] session lookup")
	}
	if err := s.ensureActive(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ensureActive applies lazy expiry and rejects terminal sessions.
func (s *Service) ensureActive(ctx context.Context, session *sessions.Session) error {
	if session.ExpireIfDue(s.nowTime()) {
		if err := s.repos.Sessions.Update(ctx, session); err != nil {
			return errors.Wrap(err, "[Service.ensureActive] persisting expiry")
		}
	}
	if session.Status != sessions.StatusActive {
		return reject(ReasonSessionNotActive, "session is not active")
	}
	return nil
}

func (s *Service) insertAndNotify(ctx context.Context, session *sessions.Session, record *Record, duplicateReason Reason) error {
	if err := s.repos.Attendance.Insert(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Lost the race against a concurrent claim for the same pair.
			return reject(duplicateReason, "attendance already marked for this session")
		}
		return errors.Wrap(err, "[Service.insertAndNotify] attendance insert")
	}

	log.Info().
		Str("session_id", record.SessionID).
		Str("student_id", record.StudentID).
		Str("origin", string(record.Origin)).
		Float64("distance_m", record.DistanceMeters).
		Msg("attendance recorded")

	s.notifier.Notify(SessionChannel(session.ID), EventAttendanceUpdate, record)
	return nil
}
