package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"rosterdesk/internal/security"
	"rosterdesk/internal/service"
)

func (h HandlerSet) ListBackups(c *gin.Context) {
	files, err := h.backups.List(c.Request.Context())
	if err != nil {
		c.HTML(http.StatusInternalServerError, "backups.html", h.page(c, "Database Backup", gin.H{
			"LoadError": true,
			"Flash":     h.flash(c),
		}))
		return
	}

	c.HTML(http.StatusOK, "backups.html", h.page(c, "Database Backup", gin.H{
		"Backups": files,
		"Flash":   h.flash(c),
	}))
}

func (h HandlerSet) CreateBackup(c *gin.Context) {
	file, err := h.backups.Create(c.Request.Context(), actor(c))
	if err != nil {
		h.redirectWithFlash(c, "/backups", security.FlashError, "Failed to create backup. Please check server configuration.")
		return
	}
	h.redirectWithFlash(c, "/backups", security.FlashSuccess, "Database backup created successfully: "+file.Name)
}

func (h HandlerSet) DownloadBackup(c *gin.Context) {
	f, info, err := h.backups.Open(c.Query("file"), actor(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.String(http.StatusBadRequest, "Invalid file")
		case errors.Is(err, service.ErrBackupNotFound):
			c.String(http.StatusNotFound, "Backup not found")
		default:
			h.log.Error().Err(err).Msg("open backup failed")
			c.String(http.StatusInternalServerError, msgSystemError)
		}
		return
	}
	defer f.Close()

	c.DataFromReader(http.StatusOK, info.Size, "application/sql", f, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": info.Name}),
	})
}

func (h HandlerSet) DeleteBackup(c *gin.Context) {
	err := h.backups.Delete(c.Query("file"), actor(c))
	switch {
	case err == nil:
		h.redirectWithFlash(c, "/backups", security.FlashDeleted, "Backup deleted successfully")
	case errors.Is(err, service.ErrInvalidInput):
		h.redirectWithFlash(c, "/backups", security.FlashError, "Invalid file")
	case errors.Is(err, service.ErrBackupNotFound):
		h.redirectWithFlash(c, "/backups", security.FlashError, "Backup not found")
	default:
		h.redirectWithFlash(c, "/backups", security.FlashError, "Failed to delete backup")
	}
}
