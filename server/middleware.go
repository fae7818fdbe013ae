package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/classattend/attendance-server/internal/config"
	"github.com/classattend/attendance-server/users"
)

const (
	ctxUserIDKey = "userID"
	ctxRoleKey   = "userRole"
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	allowed := cfg.GetAllowedOrigins()
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed.IsAllowedOrigin(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", cfg.GetAllowedMethods())
			c.Header("Access-Control-Allow-Headers", cfg.GetAllowedHeaders())
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authRequired extracts and verifies the bearer token, accepting a
// "token" query parameter as a fallback for websocket handshakes.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := parseAccessToken(raw, s.config.GetJWTSecret())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxRoleKey, claims.Role)
		c.Next()
	}
}

func (s *Server) requireRole(role users.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := currentRole(c)
		if current != role && current != users.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

func currentRole(c *gin.Context) users.RoleType {
	if role, ok := c.Get(ctxRoleKey); ok {
		if typed, ok := role.(users.RoleType); ok {
			return typed
		}
	}
	return ""
}
