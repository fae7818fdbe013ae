package sessions_test

import (
	"testing"
	"time"

	"github.com/classattend/attendance-server/sessions"
)

func TestScheduler_FiresOnce(t *testing.T) {
	s := sessions.NewScheduler()
	defer s.Stop()

	fired := make(chan struct{}, 1)
	s.Arm("session-1", 5*time.Millisecond, func() {
		fired <- struct{}{}
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestScheduler_CancelPreventsFiring(t *testing.T) {
	s := sessions.NewScheduler()
	defer s.Stop()

	fired := make(chan struct{}, 1)
	s.Arm("session-1", 20*time.Millisecond, func() {
		fired <- struct{}{}
	})
	s.Cancel("session-1")

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestScheduler_RearmReplacesTimer(t *testing.T) {
	s := sessions.NewScheduler()
	defer s.Stop()

	firstFired := make(chan struct{}, 1)
	secondFired := make(chan struct{}, 1)
	s.Arm("session-1", 20*time.Millisecond, func() { firstFired <- struct{}{} })
	s.Arm("session-1", 5*time.Millisecond, func() { secondFired <- struct{}{} })

	select {
	case <-secondFired:
	case <-time.After(time.Second):
		t.Fatal("replacement timer did not fire")
	}

	select {
	case <-firstFired:
		t.Fatal("replaced timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}
