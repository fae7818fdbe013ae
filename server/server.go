// Package server exposes the attendance service over HTTP: auth,
// session management for lecturers, claim submission for students, and a
// websocket feed of live attendance updates.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classattend/attendance-server/attendance"
	"github.com/classattend/attendance-server/internal/config"
	"github.com/classattend/attendance-server/notify"
	"github.com/classattend/attendance-server/sessions"
	"github.com/classattend/attendance-server/users"
)

// Deps bundles the collaborators the HTTP layer orchestrates.
type Deps struct {
	Sessions   *sessions.Service
	Admission  *attendance.Service
	Users      users.Repo
	Attendance attendance.Repo
	Hub        *notify.Hub
}

type Server struct {
	engine *gin.Engine
	config config.Config
	deps   Deps
}

func New(cfg config.Config, deps Deps) *Server {
	if cfg.GetEnv() != "DEV" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: gin.New(),
		config: cfg,
		deps:   deps,
	}
	s.engine.Use(gin.Recovery(), requestLogger(), corsMiddleware(cfg))
	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	api := s.engine.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.Register)
	authGroup.POST("/login", s.Login)

	authed := api.Group("", s.authRequired())

	sessionGroup := authed.Group("/sessions")
	sessionGroup.POST("", s.requireRole(users.RoleLecturer), s.CreateSession)
	sessionGroup.GET("", s.requireRole(users.RoleLecturer), s.ListSessions)
	sessionGroup.GET("/:id", s.GetSession)
	sessionGroup.GET("/:id/qr", s.requireRole(users.RoleLecturer), s.SessionQRImage)
	sessionGroup.POST("/:id/end", s.requireRole(users.RoleLecturer), s.EndSession)
	sessionGroup.DELETE("/:id", s.requireRole(users.RoleLecturer), s.DeleteSession)

	attendanceGroup := authed.Group("/attendance")
	attendanceGroup.POST("/mark", s.requireRole(users.RoleStudent), s.MarkAttendance)
	attendanceGroup.POST("/manual", s.requireRole(users.RoleLecturer), s.MarkManualAttendance)
	attendanceGroup.GET("/history", s.requireRole(users.RoleStudent), s.AttendanceHistory)

	authed.GET("/ws/sessions/:id", s.requireRole(users.RoleLecturer), s.SessionFeed)
}

// Handler returns the root http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}
