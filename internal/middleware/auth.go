package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rosterdesk/internal/models"
	"rosterdesk/internal/service"
)

const currentSessionKey = "current_session"

type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (models.Session, error)
}

// SessionCookie describes the cookie carrying the session id.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (sc SessionCookie) Read(c *gin.Context) string {
	value, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return value
}

func (sc SessionCookie) Set(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, sessionID, 0, "/", "", sc.Secure, true)
}

func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// SessionGuard admits only requests carrying a live session. Anonymous
// requests are sent to the login page; idle sessions are destroyed and
// sent there with the expired notice.
func SessionGuard(cookie SessionCookie, auth Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := auth.Authenticate(c.Request.Context(), cookie.Read(c))
		switch {
		case err == nil:
		case errors.Is(err, service.ErrUnauthenticated):
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		case errors.Is(err, service.ErrSessionExpired):
			cookie.Clear(c)
			c.Redirect(http.StatusFound, "/login?expired=1")
			c.Abort()
			return
		default:
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("session lookup failed")
			c.String(http.StatusServiceUnavailable, "System error. Please try again later.")
			c.Abort()
			return
		}

		c.Set(currentSessionKey, session)
		c.Next()
	}
}

// CurrentSession returns the session stored by SessionGuard.
func CurrentSession(c *gin.Context) (models.Session, bool) {
	val, exists := c.Get(currentSessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := val.(models.Session)
	return session, ok
}
