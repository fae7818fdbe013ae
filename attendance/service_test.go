package attendance_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/classattend/attendance-server/attendance"
	fakeattendancerepo "github.com/classattend/attendance-server/attendance/repofakes"
	"github.com/classattend/attendance-server/geo"
	"github.com/classattend/attendance-server/qrtoken"
	"github.com/classattend/attendance-server/sessions"
	fakesessionrepo "github.com/classattend/attendance-server/sessions/repofakes"
	"github.com/classattend/attendance-server/users"
	fakeuserrepo "github.com/classattend/attendance-server/users/repofakes"
	"github.com/stretchr/testify/require"
)

const (
	testSecret      = "test-qr-secret"
	testLecturerID  = "lecturer-1"
	testStudentID   = "student-1"
	testStudentMail = "jane.doe@university.edu"
	testMaxDistance = 10.0
)

var testAnchor = geo.Coordinate{Latitude: 12.9716, Longitude: 77.5946}

type notifyCall struct {
	channel string
	event   string
	payload interface{}
}

type fakeNotifier struct {
	calls []notifyCall
	lock  sync.Mutex
}

func (n *fakeNotifier) Notify(channel, event string, payload interface{}) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.calls = append(n.calls, notifyCall{channel: channel, event: event, payload: payload})
}

func (n *fakeNotifier) Calls() []notifyCall {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]notifyCall(nil), n.calls...)
}

type fixture struct {
	sessionRepo    *fakesessionrepo.FakeSessionRepo
	attendanceRepo *fakeattendancerepo.FakeAttendanceRepo
	userRepo       *fakeuserrepo.FakeUserRepo
	notifier       *fakeNotifier
	codec          *qrtoken.Codec
	service        *attendance.Service
	now            time.Time
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		sessionRepo:    fakesessionrepo.NewFakeSessionRepo(),
		attendanceRepo: fakeattendancerepo.NewFakeAttendanceRepo(),
		userRepo:       fakeuserrepo.NewFakeUserRepo(),
		notifier:       &fakeNotifier{},
		now:            time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	codec, err := qrtoken.New(testSecret, qrtoken.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.codec = codec

	service, err := attendance.NewService(attendance.Repos{
		Sessions:   f.sessionRepo,
		Attendance: f.attendanceRepo,
		Users:      f.userRepo,
	}, codec, f.notifier, testMaxDistance, attendance.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.service = service

	require.NoError(t, f.userRepo.Create(context.Background(), &users.User{
		ID:    testStudentID,
		Email: testStudentMail,
		Name:  "Jane Doe",
		Role:  users.RoleStudent,
	}))

	return f
}

// createSession stores an ACTIVE session starting at f.now and returns it
// with a valid token.
func (f *fixture) createSession(t *testing.T) *sessions.Session {
	t.Helper()

	session := &sessions.Session{
		ID:              "session-1",
		LecturerID:      testLecturerID,
		Name:            "Distributed Systems",
		Latitude:        testAnchor.Latitude,
		Longitude:       testAnchor.Longitude,
		Status:          sessions.StatusActive,
		StartTime:       f.now,
		DurationSeconds: 300,
	}
	session.QRToken = f.codec.Issue(session.ID)
	require.NoError(t, f.sessionRepo.Create(context.Background(), session))
	return session
}

func (f *fixture) scan(session *sessions.Session) attendance.ScannedClaim {
	return attendance.ScannedClaim{
		Token:     session.QRToken,
		StudentID: testStudentID,
		Location:  testAnchor,
	}
}

func requireRejection(t *testing.T, err error, reason attendance.Reason, status int) *attendance.Rejection {
	t.Helper()

	rejection, ok := attendance.AsRejection(err)
	require.True(t, ok, "expected a rejection, got %v", err)
	require.Equal(t, reason, rejection.Reason)
	require.Equal(t, status, rejection.HTTPStatus())
	return rejection
}

func TestAdmitScan_Accepts(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	record, err := f.service.AdmitScan(context.Background(), f.scan(session))
	require.NoError(t, err)
	require.Equal(t, attendance.StatusValid, record.Status)
	require.Equal(t, attendance.OriginScanned, record.Origin)
	require.Equal(t, session.ID, record.SessionID)
	require.Equal(t, testStudentID, record.StudentID)
	require.Zero(t, record.DistanceMeters)
	require.Equal(t, f.now, record.ScannedAt)

	calls := f.notifier.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "session:"+session.ID, calls[0].channel)
	require.Equal(t, attendance.EventAttendanceUpdate, calls[0].event)
}

func TestAdmitScan_InvalidToken(t *testing.T) {
	f := setupFixture(t)
	f.createSession(t)

	_, err := f.service.AdmitScan(context.Background(), attendance.ScannedClaim{
		Token:     "not:a-real:token",
		StudentID: testStudentID,
		Location:  testAnchor,
	})
	requireRejection(t, err, attendance.ReasonInvalidToken, http.StatusBadRequest)
}

func TestAdmitScan_ExpiredToken(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	f.now = f.now.Add(qrtoken.DefaultMaxAge + time.Millisecond)

	_, err := f.service.AdmitScan(context.Background(), f.scan(session))
	requireRejection(t, err, attendance.ReasonInvalidToken, http.StatusBadRequest)
}

func TestAdmitScan_SessionNotFound(t *testing.T) {
	f := setupFixture(t)

	// A correctly signed token whose session does not exist.
	token := f.codec.Issue("ghost-session")

	_, err := f.service.AdmitScan(context.Background(), attendance.ScannedClaim{
		Token:     token,
		StudentID: testStudentID,
		Location:  testAnchor,
	})
	requireRejection(t, err, attendance.ReasonSessionNotFound, http.StatusNotFound)
}

func TestAdmitScan_LazyExpiry(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	t.Run("claim just inside the window is evaluated against ACTIVE", func(t *testing.T) {
		f.now = session.StartTime.Add(299 * time.Second)
		_, err := f.service.AdmitScan(context.Background(), f.scan(session))
		require.NoError(t, err)
	})

	t.Run("claim past the window flips the session to EXPIRED", func(t *testing.T) {
		f.now = session.StartTime.Add(301 * time.Second)
		claim := f.scan(session)
		claim.StudentID = "student-2"

		_, err := f.service.AdmitScan(context.Background(), claim)
		requireRejection(t, err, attendance.ReasonSessionNotActive, http.StatusBadRequest)

		stored, getErr := f.sessionRepo.Get(context.Background(), session.ID)
		require.NoError(t, getErr)
		require.Equal(t, sessions.StatusExpired, stored.Status)
		require.Equal(t, session.StartTime.Add(300*time.Second), *stored.EndTime)
	})
}

func TestAdmitScan_EndedSession(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	require.NoError(t, session.End(f.now.Add(time.Minute)))
	require.NoError(t, f.sessionRepo.Update(context.Background(), session))

	_, err := f.service.AdmitScan(context.Background(), f.scan(session))
	requireRejection(t, err, attendance.ReasonSessionNotActive, http.StatusBadRequest)
}

func TestAdmitScan_DuplicateClaim(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	_, err := f.service.AdmitScan(context.Background(), f.scan(session))
	require.NoError(t, err)

	_, err = f.service.AdmitScan(context.Background(), f.scan(session))
	requireRejection(t, err, attendance.ReasonDuplicateClaim, http.StatusConflict)
}

func TestAdmitScan_DuplicateRace(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	// The existence check passes but the insert hits the uniqueness
	// constraint, as under two concurrent claims from the same student.
	f.attendanceRepo.InsertErr = attendance.ErrDuplicate

	_, err := f.service.AdmitScan(context.Background(), f.scan(session))
	requireRejection(t, err, attendance.ReasonDuplicateClaim, http.StatusConflict)
}

func TestAdmitScan_OutOfRange(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	claim := f.scan(session)
	// ~250m north of the anchor, threshold 10m.
	claim.Location = geo.Coordinate{Latitude: testAnchor.Latitude + 0.00225, Longitude: testAnchor.Longitude}

	_, err := f.service.AdmitScan(context.Background(), claim)
	rejection := requireRejection(t, err, attendance.ReasonOutOfRange, http.StatusBadRequest)
	require.Contains(t, rejection.Message, "meters away")

	// Nothing was persisted and nobody was notified.
	exists, existsErr := f.attendanceRepo.Exists(context.Background(), session.ID, testStudentID)
	require.NoError(t, existsErr)
	require.False(t, exists)
	require.Empty(t, f.notifier.Calls())
}

func TestAdmitManual_Accepts(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	record, err := f.service.AdmitManual(context.Background(), session.ID, testStudentMail, testLecturerID)
	require.NoError(t, err)
	require.Equal(t, attendance.OriginManuallyAdded, record.Origin)
	require.Equal(t, testStudentID, record.StudentID)
	require.Zero(t, record.Latitude)
	require.Zero(t, record.Longitude)
	require.Zero(t, record.DistanceMeters)

	calls := f.notifier.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "session:"+session.ID, calls[0].channel)
}

func TestAdmitManual_NonOwnerRejected(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	_, err := f.service.AdmitManual(context.Background(), session.ID, testStudentMail, "lecturer-2")
	requireRejection(t, err, attendance.ReasonNotSessionOwner, http.StatusForbidden)
}

func TestAdmitManual_UnknownStudent(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	_, err := f.service.AdmitManual(context.Background(), session.ID, "nobody@university.edu", testLecturerID)
	requireRejection(t, err, attendance.ReasonUnknownStudent, http.StatusNotFound)
}

func TestAdmitManual_AlreadyMarked(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	_, err := f.service.AdmitScan(context.Background(), f.scan(session))
	require.NoError(t, err)

	_, err = f.service.AdmitManual(context.Background(), session.ID, testStudentMail, testLecturerID)
	requireRejection(t, err, attendance.ReasonAlreadyMarked, http.StatusConflict)
}

func TestAdmitManual_TerminalSession(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t)

	f.now = session.StartTime.Add(301 * time.Second)

	_, err := f.service.AdmitManual(context.Background(), session.ID, testStudentMail, testLecturerID)
	requireRejection(t, err, attendance.ReasonSessionNotActive, http.StatusBadRequest)
}

func TestAdmitManual_SessionNotFound(t *testing.T) {
	f := setupFixture(t)

	_, err := f.service.AdmitManual(context.Background(), "ghost-session", testStudentMail, testLecturerID)
	requireRejection(t, err, attendance.ReasonSessionNotFound, http.StatusNotFound)
}
