package sessions

import (
	"sync"
	"time"
)

// Scheduler arms one cancellable expiry timer per session. Cancelling a
// timer for a session that ended early prevents the callback from firing
// and releases the timer.
type Scheduler struct {
	timers map[string]*time.Timer
	lock   sync.Mutex
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*time.Timer)}
}

// Arm schedules fn to run once after d. Re-arming a session replaces its
// existing timer.
func (s *Scheduler) Arm(sessionID string, d time.Duration, fn func()) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if existing, ok := s.timers[sessionID]; ok {
		existing.Stop()
	}
	s.timers[sessionID] = time.AfterFunc(d, func() {
		s.remove(sessionID)
		fn()
	})
}

// Cancel stops a pending timer for the session, if any.
func (s *Scheduler) Cancel(sessionID string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if timer, ok := s.timers[sessionID]; ok {
		timer.Stop()
		delete(s.timers, sessionID)
	}
}

// Stop cancels all pending timers.
func (s *Scheduler) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) remove(sessionID string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.timers, sessionID)
}
