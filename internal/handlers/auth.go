package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rosterdesk/internal/service"
)

const (
	msgInvalidLogin = "Invalid username or password."
	msgSystemError  = "System error. Please try again later."
)

func (h HandlerSet) LoginPage(c *gin.Context) {
	expired := c.Query("expired") == "1"

	if id := h.cookie.Read(c); id != "" {
		_, err := h.auth.Authenticate(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Redirect(http.StatusFound, "/dashboard")
			return
		case errors.Is(err, service.ErrSessionExpired):
			h.cookie.Clear(c)
			expired = true
		}
	}

	c.HTML(http.StatusOK, "login.html", h.page(c, "Login", gin.H{
		"Expired":   expired,
		"LoggedOut": c.Query("logout") == "success",
	}))
}

func (h HandlerSet) Login(c *gin.Context) {
	input := service.LoginInput{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
		ClientIP: c.ClientIP(),
	}

	session, err := h.auth.Login(c.Request.Context(), input, h.cookie.Read(c))
	if err != nil {
		status, message := http.StatusUnauthorized, msgInvalidLogin
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.log.Error().Err(err).Str("client_ip", input.ClientIP).Msg("login failed")
			status, message = http.StatusInternalServerError, msgSystemError
		}
		c.HTML(status, "login.html", h.page(c, "Login", gin.H{
			"Error":    message,
			"Username": strings.TrimSpace(input.Username),
		}))
		return
	}

	h.cookie.Set(c, session.ID)
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), h.cookie.Read(c), c.ClientIP()); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
	}
	h.cookie.Clear(c)
	c.Redirect(http.StatusFound, "/login?logout=success")
}
