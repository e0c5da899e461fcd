package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rosterdesk/internal/security"
)

// CSRF rejects state-changing requests whose token does not match the
// current session. POST forms carry the token as a form field; GET links
// that mutate carry it in the query string. Must run after SessionGuard.
func CSRF(secret string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		var token string
		if c.Request.Method == http.MethodPost {
			token = c.PostForm(security.CSRFField)
		} else {
			token = c.Query(security.CSRFField)
		}

		if !security.ValidCSRFToken(secret, session.ID, token) {
			log.Warn().
				Str("event", "csrf_rejected").
				Str("username", session.Username).
				Str("client_ip", c.ClientIP()).
				Str("path", c.Request.URL.Path).
				Msg("csrf token mismatch")
			c.String(http.StatusForbidden, "Invalid or missing security token. Please reload the page and try again.")
			c.Abort()
			return
		}

		c.Next()
	}
}
