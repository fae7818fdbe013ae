package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/classattend/attendance-server/attendance"
)

var _ attendance.Repo = (*AttendanceRepo)(nil)

type AttendanceRepo struct {
	db *gorm.DB
}

func NewAttendanceRepo(db *gorm.DB) *AttendanceRepo {
	return &AttendanceRepo{db: db}
}

// Insert relies on the composite unique index on (session_id, student_id)
// as the authoritative duplicate guard under concurrent claims.
func (ar *AttendanceRepo) Insert(ctx context.Context, record *attendance.Record) error {
	err := ar.db.WithContext(ctx).Create(record).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return attendance.ErrDuplicate
	}
	return err
}

func (ar *AttendanceRepo) Exists(ctx context.Context, sessionID, studentID string) (bool, error) {
	var count int64
	err := ar.db.WithContext(ctx).
		Model(&attendance.Record{}).
		Where("session_id = ? AND student_id = ?", sessionID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (ar *AttendanceRepo) ListBySession(ctx context.Context, sessionID string) ([]*attendance.Record, error) {
	var result []*attendance.Record
	err := ar.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("scanned_at DESC").
		Find(&result).Error
	return result, err
}

func (ar *AttendanceRepo) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*attendance.Record, int64, error) {
	var total int64
	query := ar.db.WithContext(ctx).
		Model(&attendance.Record{}).
		Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var result []*attendance.Record
	err := ar.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("scanned_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error
	return result, total, err
}
