// Package notify delivers attendance events to websocket subscribers.
// Lecturers join a per-session channel and receive updates as students
// are admitted. Delivery is fire and forget.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Conn is the subset of *websocket.Conn the hub needs, extracted so
// tests can substitute a fake connection.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Event is the JSON envelope written to subscribers.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type subscriber struct {
	conn Conn
	lock sync.Mutex
}

func (s *subscriber) write(event Event) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.conn.WriteJSON(event)
}

// Hub fans events out to per-channel subscriber sets.
type Hub struct {
	channels map[string]map[*subscriber]struct{}
	lock     sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*subscriber]struct{})}
}

// Subscribe attaches conn to a channel and returns an unsubscribe
// function. The caller owns the connection's read side.
func (h *Hub) Subscribe(channel string, conn Conn) func() {
	sub := &subscriber{conn: conn}

	h.lock.Lock()
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*subscriber]struct{})
	}
	h.channels[channel][sub] = struct{}{}
	h.lock.Unlock()

	return func() {
		h.remove(channel, sub)
	}
}

// Notify writes the event to every subscriber of the channel. Failed
// subscribers are dropped; errors never propagate to the caller.
func (h *Hub) Notify(channel, event string, payload interface{}) {
	h.lock.RLock()
	subs := make([]*subscriber, 0, len(h.channels[channel]))
	for sub := range h.channels[channel] {
		subs = append(subs, sub)
	}
	h.lock.RUnlock()

	envelope := Event{Event: event, Payload: payload}
	for _, sub := range subs {
		if err := sub.write(envelope); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("dropping unresponsive subscriber")
			h.remove(channel, sub)
			_ = sub.conn.Close()
		}
	}
}

func (h *Hub) remove(channel string, sub *subscriber) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if subs, ok := h.channels[channel]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
}
