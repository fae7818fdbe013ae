package fakeattendancerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/classattend/attendance-server/attendance"
)

var _ attendance.Repo = (*FakeAttendanceRepo)(nil)

type pairKey struct {
	sessionID string
	studentID string
}

type FakeAttendanceRepo struct {
	records map[pairKey]*attendance.Record
	lock    sync.RWMutex

	// InsertErr, when set, is returned by the next Insert call. Used to
	// simulate constraint violations and storage failures.
	InsertErr error
}

func NewFakeAttendanceRepo() *FakeAttendanceRepo {
	return &FakeAttendanceRepo{records: make(map[pairKey]*attendance.Record)}
}

func (ar *FakeAttendanceRepo) Insert(_ context.Context, record *attendance.Record) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if ar.InsertErr != nil {
		err := ar.InsertErr
		ar.InsertErr = nil
		return err
	}

	key := pairKey{sessionID: record.SessionID, studentID: record.StudentID}
	if _, ok := ar.records[key]; ok {
		return attendance.ErrDuplicate
	}
	copied := *record
	ar.records[key] = &copied
	return nil
}

func (ar *FakeAttendanceRepo) Exists(_ context.Context, sessionID, studentID string) (bool, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	_, ok := ar.records[pairKey{sessionID: sessionID, studentID: studentID}]
	return ok, nil
}

func (ar *FakeAttendanceRepo) ListBySession(_ context.Context, sessionID string) ([]*attendance.Record, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	var result []*attendance.Record
	for key, record := range ar.records {
		if key.sessionID != sessionID {
			continue
		}
		copied := *record
		result = append(result, &copied)
	}
	sortNewestFirst(result)
	return result, nil
}

func (ar *FakeAttendanceRepo) ListByStudent(_ context.Context, studentID string, limit, offset int) ([]*attendance.Record, int64, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	var all []*attendance.Record
	for key, record := range ar.records {
		if key.studentID != studentID {
			continue
		}
		copied := *record
		all = append(all, &copied)
	}
	sortNewestFirst(all)

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func sortNewestFirst(records []*attendance.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ScannedAt.After(records[j].ScannedAt)
	})
}
