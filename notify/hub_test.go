package notify_test

import (
	"sync"
	"testing"

	"github.com/classattend/attendance-server/notify"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	events   []notify.Event
	writeErr error
	closed   bool
	lock     sync.Mutex
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.events = append(c.events, v.(notify.Event))
	return nil
}

func (c *fakeConn) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []notify.Event {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]notify.Event(nil), c.events...)
}

func TestHub_NotifySubscribers(t *testing.T) {
	hub := notify.NewHub()
	conn := &fakeConn{}
	other := &fakeConn{}

	hub.Subscribe("session:1", conn)
	hub.Subscribe("session:2", other)

	hub.Notify("session:1", "attendance-update", map[string]string{"student": "jane"})

	events := conn.received()
	require.Len(t, events, 1)
	require.Equal(t, "attendance-update", events[0].Event)
	require.Empty(t, other.received())
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := notify.NewHub()
	conn := &fakeConn{}

	unsubscribe := hub.Subscribe("session:1", conn)
	unsubscribe()

	hub.Notify("session:1", "attendance-update", nil)
	require.Empty(t, conn.received())
}

func TestHub_DropsFailingSubscriber(t *testing.T) {
	hub := notify.NewHub()
	failing := &fakeConn{writeErr: errors.New("broken pipe")}
	healthy := &fakeConn{}

	hub.Subscribe("session:1", failing)
	hub.Subscribe("session:1", healthy)

	hub.Notify("session:1", "attendance-update", nil)
	require.True(t, failing.closed)
	require.Len(t, healthy.received(), 1)

	// The failed subscriber no longer receives anything.
	failing.writeErr = nil
	hub.Notify("session:1", "attendance-update", nil)
	require.Empty(t, failing.received())
	require.Len(t, healthy.received(), 2)
}
