package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/classattend/attendance-server/geo"
	"github.com/classattend/attendance-server/qrtoken"
)

// DefaultDuration is the active window of a newly created session.
const DefaultDuration = 5 * time.Minute

// Service governs the session lifecycle: creation with a freshly minted
// QR token and an armed expiry timer, owner-triggered early termination,
// and idempotent auto-expiry.
type Service struct {
	repo      Repo
	codec     *qrtoken.Codec
	scheduler *Scheduler
	duration  time.Duration
	nowTime   func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithDuration overrides the default session window.
func WithDuration(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.duration = d
	}
}

// NewService initializes a session Service with required dependencies.
func NewService(repo Repo, codec *qrtoken.Codec, scheduler *Scheduler, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[sessions.NewService] repo is required")
	}
	if codec == nil {
		return nil, errors.New("[sessions.NewService] codec is required")
	}
	if scheduler == nil {
		return nil, errors.New("[sessions.NewService] scheduler is required")
	}

	service := &Service{
		repo:      repo,
		codec:     codec,
		scheduler: scheduler,
		duration:  DefaultDuration,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// Create opens a new ACTIVE session anchored at the given location and
// arms its one-shot expiry timer.
func (s *Service) Create(ctx context.Context, lecturerID, name, courseID string, anchor geo.Coordinate) (*Session, error) {
	if err := anchor.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Service.Create] invalid anchor location")
	}

	now := s.nowTime()
	session := &Session{
		ID:              uuid.New().String(),
		LecturerID:      lecturerID,
		CourseID:        courseID,
		Name:            name,
		Latitude:        anchor.Latitude,
		Longitude:       anchor.Longitude,
		Status:          StatusActive,
		StartTime:       now,
		DurationSeconds: int(s.duration.Seconds()),
	}
	session.QRToken = s.codec.Issue(session.ID)

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[Service.Create] repo.Create")
	}

	sessionID := session.ID
	s.scheduler.Arm(sessionID, s.duration, func() {
		s.expire(sessionID)
	})

	return session, nil
}

// End terminates the lecturer's own ACTIVE session early and cancels its
// pending expiry timer.
func (s *Service) End(ctx context.Context, sessionID, lecturerID string) (*Session, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.LecturerID != lecturerID {
		return nil, ErrNotOwner
	}
	if err := session.End(s.nowTime()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[Service.End] repo.Update")
	}
	s.scheduler.Cancel(sessionID)
	return session, nil
}

// Get returns a session by ID, applying lazy expiry first so callers
// always observe the effective lifecycle state.
func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.ExpireIfDue(s.nowTime()) {
		if err := s.repo.Update(ctx, session); err != nil {
			return nil, errors.Wrap(err, "[Service.Get] repo.Update")
		}
	}
	return session, nil
}

// ListByLecturer returns the lecturer's sessions, newest first.
func (s *Service) ListByLecturer(ctx context.Context, lecturerID string) ([]*Session, error) {
	return s.repo.ListByLecturer(ctx, lecturerID)
}

// Delete soft-deletes the lecturer's own session and cancels any pending
// expiry timer.
func (s *Service) Delete(ctx context.Context, sessionID, lecturerID string) error {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.LecturerID != lecturerID {
		return ErrNotOwner
	}
	if err := s.repo.SoftDelete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[Service.Delete] repo.SoftDelete")
	}
	s.scheduler.Cancel(sessionID)
	return nil
}

// expire is the timer callback. It re-reads the session and transitions
// it only if still ACTIVE, so racing with a manual end is harmless.
func (s *Service) expire(sessionID string) {
	ctx := context.Background()
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("auto-expiry: session lookup failed")
		return
	}
	if !session.ExpireIfDue(s.nowTime()) {
		return
	}
	if err := s.repo.Update(ctx, session); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("auto-expiry: session update failed")
		return
	}
	log.Info().Str("session_id", sessionID).Msg("session auto-expired")
}
