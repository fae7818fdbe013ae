package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/classattend/attendance-server/attendance"
	"github.com/classattend/attendance-server/sessions"
)

// SessionFeed upgrades the connection and streams attendance updates for
// one of the lecturer's sessions until the client disconnects.
func (s *Server) SessionFeed(c *gin.Context) {
	session, err := s.deps.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondSessionError(c, err)
		return
	}
	if session.LecturerID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only watch your own sessions"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.config.GetAllowedOrigins().IsAllowedOrigin(origin)
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	unsubscribe := s.deps.Hub.Subscribe(sessionChannel(session), conn)
	defer unsubscribe()

	// Drain the read side until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func sessionChannel(session *sessions.Session) string {
	return attendance.SessionChannel(session.ID)
}
