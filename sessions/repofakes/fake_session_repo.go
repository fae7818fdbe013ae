package fakesessionrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/classattend/attendance-server/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	sessions map[string]*sessions.Session
	deleted  map[string]bool
	lock     sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
		deleted:  make(map[string]bool),
	}
}

func (sr *FakeSessionRepo) Create(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	copied := *session
	sr.sessions[copied.ID] = &copied
	return nil
}

func (sr *FakeSessionRepo) Get(_ context.Context, id string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	session, ok := sr.sessions[id]
	if !ok || sr.deleted[id] {
		return nil, sessions.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (sr *FakeSessionRepo) Update(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if _, ok := sr.sessions[session.ID]; !ok {
		return sessions.ErrNotFound
	}
	copied := *session
	sr.sessions[copied.ID] = &copied
	return nil
}

func (sr *FakeSessionRepo) ListByLecturer(_ context.Context, lecturerID string) ([]*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	var result []*sessions.Session
	for id, session := range sr.sessions {
		if sr.deleted[id] || session.LecturerID != lecturerID {
			continue
		}
		copied := *session
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.After(result[j].StartTime)
	})
	return result, nil
}

func (sr *FakeSessionRepo) SoftDelete(_ context.Context, id string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if _, ok := sr.sessions[id]; !ok {
		return sessions.ErrNotFound
	}
	sr.deleted[id] = true
	return nil
}
