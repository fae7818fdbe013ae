package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classattend/attendance-server/attendance"
	"github.com/classattend/attendance-server/geo"
)

type markAttendanceRequest struct {
	QRCode    string   `json:"qrCode" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

type manualAttendanceRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	StudentEmail string `json:"student_email" binding:"required,email"`
}

// MarkAttendance admits a student's scanned claim.
func (s *Server) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := s.deps.Admission.AdmitScan(c.Request.Context(), attendance.ScannedClaim{
		Token:     req.QRCode,
		StudentID: currentUserID(c),
		Location:  geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude},
	})
	if err != nil {
		s.respondAdmissionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "attendance marked successfully", "attendance": record})
}

// MarkManualAttendance lets a lecturer record a student's presence in
// their own session without a scan.
func (s *Server) MarkManualAttendance(c *gin.Context) {
	var req manualAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := s.deps.Admission.AdmitManual(c.Request.Context(), req.SessionID, req.StudentEmail, currentUserID(c))
	if err != nil {
		s.respondAdmissionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "attendance marked successfully", "attendance": record})
}

// AttendanceHistory returns a page of the student's attendance records.
func (s *Server) AttendanceHistory(c *gin.Context) {
	limit := parsePositiveInt(c.Query("limit"), 50)
	offset := parsePositiveInt(c.Query("offset"), 0)

	records, total, err := s.deps.Attendance.ListByStudent(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attendance": records,
		"pagination": gin.H{
			"total":   total,
			"limit":   limit,
			"offset":  offset,
			"hasMore": int64(offset+limit) < total,
		},
	})
}

func (s *Server) respondAdmissionError(c *gin.Context, err error) {
	if rejection, ok := attendance.AsRejection(err); ok {
		c.JSON(rejection.HTTPStatus(), gin.H{
			"error":  rejection.Message,
			"reason": rejection.Reason,
		})
		return
	}
	s.internalError(c, err)
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
