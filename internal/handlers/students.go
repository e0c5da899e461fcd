package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rosterdesk/internal/security"
	"rosterdesk/internal/service"
)

func (h HandlerSet) Dashboard(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		c.HTML(http.StatusInternalServerError, "dashboard.html", h.page(c, "Dashboard", gin.H{
			"LoadError": true,
			"Flash":     h.flash(c),
		}))
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", h.page(c, "Dashboard", gin.H{
		"Students": students,
		"Flash":    h.flash(c),
	}))
}

func (h HandlerSet) NewStudent(c *gin.Context) {
	c.HTML(http.StatusOK, "add_student.html", h.page(c, "Add Student", gin.H{
		"Form": service.StudentInput{},
	}))
}

func (h HandlerSet) CreateStudent(c *gin.Context) {
	input := service.StudentInput{
		StudentCode: c.PostForm("student_id"),
		FullName:    c.PostForm("fullname"),
		Email:       c.PostForm("email"),
		Course:      c.PostForm("course"),
		Description: c.PostForm("course_description"),
	}.Normalize()

	_, err := h.students.Create(c.Request.Context(), input, actor(c))
	if err == nil {
		c.HTML(http.StatusCreated, "add_student.html", h.page(c, "Add Student", gin.H{
			"Form":     service.StudentInput{},
			"Success":  "Student added successfully!",
			"Redirect": true,
		}))
		return
	}

	data := gin.H{"Form": input}
	status := http.StatusInternalServerError

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		data["Errors"] = verr.Messages
	case errors.Is(err, service.ErrDuplicateStudent):
		status = http.StatusConflict
		data["Error"] = "This Student ID already exists in the system."
	default:
		data["Error"] = "Failed to add student. Please try again."
	}

	c.HTML(status, "add_student.html", h.page(c, "Add Student", data))
}

func (h HandlerSet) DeleteStudent(c *gin.Context) {
	err := h.students.Delete(c.Request.Context(), c.Query("id"), actor(c))
	switch {
	case err == nil:
		h.redirectWithFlash(c, "/dashboard", security.FlashSuccess, "Student deleted successfully")
	case errors.Is(err, service.ErrInvalidInput):
		h.redirectWithFlash(c, "/dashboard", security.FlashError, "Invalid student ID")
	case errors.Is(err, service.ErrStudentNotFound):
		h.redirectWithFlash(c, "/dashboard", security.FlashError, "Student not found")
	default:
		h.redirectWithFlash(c, "/dashboard", security.FlashError, "Failed to delete student")
	}
}
