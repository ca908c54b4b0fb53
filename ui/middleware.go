package ui

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"phewasview/domain/core"
)

const (
	sessionCookie = "phewas_session"
	sessionHeader = "X-Session-ID"
	sessionKey    = "session_id"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.Use(sessionMiddleware())
}

// sessionMiddleware takes the session from the query, header or cookie, in
// that order, and issues a fresh one when none is present
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query(sessionKey)
		if raw == "" {
			raw = c.GetHeader(sessionHeader)
		}
		if raw == "" {
			raw, _ = c.Cookie(sessionCookie)
		}

		id, err := core.ParseSessionID(raw)
		if err != nil {
			id = core.NewSessionID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, id.String(), 0, "/", "", false, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

// sessionFrom returns override when set, else the middleware's session
func sessionFrom(c *gin.Context, override string) core.SessionID {
	if override = strings.TrimSpace(override); override != "" {
		return core.SessionID(override)
	}
	if v, ok := c.Get(sessionKey); ok {
		if id, ok := v.(core.SessionID); ok {
			return id
		}
	}
	return core.NewSessionID()
}
