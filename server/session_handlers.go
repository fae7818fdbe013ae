package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/classattend/attendance-server/geo"
	"github.com/classattend/attendance-server/qrtoken"
	"github.com/classattend/attendance-server/sessions"
	"github.com/classattend/attendance-server/users"
)

type createSessionRequest struct {
	Name      string   `json:"name" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	CourseID  string   `json:"course_id"`
}

// CreateSession opens a new attendance session anchored at the
// lecturer's current location.
func (s *Server) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	anchor := geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	session, err := s.deps.Sessions.Create(c.Request.Context(), currentUserID(c), req.Name, req.CourseID, anchor)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "session created successfully", "session": session})
}

// EndSession terminates the lecturer's own active session early.
func (s *Server) EndSession(c *gin.Context) {
	session, err := s.deps.Sessions.End(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		s.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session ended successfully", "session": session})
}

// GetSession returns a session with its attendance records. Lecturers
// can only view their own sessions.
func (s *Server) GetSession(c *gin.Context) {
	session, err := s.deps.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondSessionError(c, err)
		return
	}
	if currentRole(c) == users.RoleLecturer && session.LecturerID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only view your own sessions"})
		return
	}

	records, err := s.deps.Attendance.ListBySession(c.Request.Context(), session.ID)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session, "attendance": records})
}

// ListSessions returns the lecturer's sessions, newest first.
func (s *Server) ListSessions(c *gin.Context) {
	list, err := s.deps.Sessions.ListByLecturer(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list})
}

// DeleteSession soft-deletes the lecturer's own session.
func (s *Server) DeleteSession(c *gin.Context) {
	if err := s.deps.Sessions.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		s.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session deleted successfully"})
}

// SessionQRImage renders the session's current token as a PNG QR code.
func (s *Server) SessionQRImage(c *gin.Context) {
	session, err := s.deps.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondSessionError(c, err)
		return
	}
	if session.LecturerID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only view your own sessions"})
		return
	}

	png, err := qrtoken.Image(session.QRToken, qrtoken.DefaultImageSize)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sessions.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, sessions.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only manage your own sessions"})
	case errors.Is(err, sessions.ErrSessionNotActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "session is already ended or expired"})
	default:
		s.internalError(c, err)
	}
}
