package attendance

// Notifier delivers events to subscriber channels. Delivery is fire and
// forget; failures must not affect the admission outcome.
type Notifier interface {
	Notify(channel, event string, payload interface{})
}

// SessionChannel is the subscriber channel a session's owner listens on.
func SessionChannel(sessionID string) string {
	return "session:" + sessionID
}

// EventAttendanceUpdate announces a newly accepted attendance record.
const EventAttendanceUpdate = "attendance-update"
