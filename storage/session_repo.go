package storage

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/classattend/attendance-server/sessions"
)

var _ sessions.Repo = (*SessionRepo)(nil)

type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (sr *SessionRepo) Create(ctx context.Context, session *sessions.Session) error {
	return sr.db.WithContext(ctx).Create(session).Error
}

func (sr *SessionRepo) Get(ctx context.Context, id string) (*sessions.Session, error) {
	var session sessions.Session
	err := sr.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sessions.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (sr *SessionRepo) Update(ctx context.Context, session *sessions.Session) error {
	return sr.db.WithContext(ctx).Save(session).Error
}

func (sr *SessionRepo) ListByLecturer(ctx context.Context, lecturerID string) ([]*sessions.Session, error) {
	var result []*sessions.Session
	err := sr.db.WithContext(ctx).
		Where("lecturer_id = ?", lecturerID).
		Order("start_time DESC").
		Find(&result).Error
	return result, err
}

func (sr *SessionRepo) SoftDelete(ctx context.Context, id string) error {
	result := sr.db.WithContext(ctx).Delete(&sessions.Session{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sessions.ErrNotFound
	}
	return nil
}
