package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rosterdesk/internal/config"
	"rosterdesk/internal/middleware"
	"rosterdesk/internal/security"
	"rosterdesk/internal/service"
)

// HealthCheck pings one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	students *service.StudentService
	backups  *service.BackupService
	cookie   middleware.SessionCookie
	checks   []HealthCheck
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	auth *service.AuthService,
	students *service.StudentService,
	backups *service.BackupService,
	checks ...HealthCheck,
) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		students: students,
		backups:  backups,
		cookie: middleware.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
		},
		checks: checks,
	}
}

func (h HandlerSet) Register(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	router.GET("/healthz", h.Health)

	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.GET("/logout", h.Logout)

	protected := router.Group("/")
	protected.Use(middleware.SessionGuard(h.cookie, h.auth, h.log))
	protected.GET("/dashboard", h.Dashboard)
	protected.GET("/students/new", h.NewStudent)
	protected.GET("/backups", h.ListBackups)
	protected.GET("/backups/download", h.DownloadBackup)

	mutating := protected.Group("/")
	mutating.Use(middleware.CSRF(h.cfg.Security.CSRFSecret, h.log))
	mutating.POST("/students", h.CreateStudent)
	mutating.GET("/students/delete", h.DeleteStudent)
	mutating.POST("/backups", h.CreateBackup)
	mutating.GET("/backups/delete", h.DeleteBackup)
}

// page builds the data every template expects.
func (h HandlerSet) page(c *gin.Context, title string, extra gin.H) gin.H {
	data := gin.H{
		"Title":  title,
		"Limits": h.cfg.Limits,
	}
	if session, ok := middleware.CurrentSession(c); ok {
		data["User"] = session.Username
		data["CSRFToken"] = security.CSRFToken(h.cfg.Security.CSRFSecret, session.ID)
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func actor(c *gin.Context) string {
	session, _ := middleware.CurrentSession(c)
	return session.Username
}
