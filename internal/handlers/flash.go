package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"rosterdesk/internal/security"
)

const flashParam = "flash"

// redirectWithFlash sends the browser to path with a signed result message.
func (h HandlerSet) redirectWithFlash(c *gin.Context, path string, status security.FlashStatus, message string) {
	token, err := security.IssueFlash(h.cfg.Security.FlashSecret, security.Flash{
		Status:  status,
		Message: message,
	}, h.cfg.Security.FlashTTL)
	if err != nil {
		h.log.Error().Err(err).Msg("issue flash failed")
		c.Redirect(http.StatusFound, path)
		return
	}
	c.Redirect(http.StatusFound, path+"?"+url.Values{flashParam: {token}}.Encode())
}

// flash returns the verified message carried by the request, if any.
// Forged or stale tokens are ignored.
func (h HandlerSet) flash(c *gin.Context) *security.Flash {
	token := c.Query(flashParam)
	if token == "" {
		return nil
	}
	f, err := security.ParseFlash(h.cfg.Security.FlashSecret, token)
	if err != nil {
		h.log.Debug().Err(err).Msg("ignoring flash token")
		return nil
	}
	return &f
}
