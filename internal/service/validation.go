package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"rosterdesk/internal/config"
)

var (
	studentCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	personNamePattern  = regexp.MustCompile(`^[A-Za-z\s'-]+$`)
)

// StudentInput is the create form as submitted, before trimming.
type StudentInput struct {
	StudentCode string
	FullName    string
	Email       string
	Course      string
	Description string
}

// Normalize trims every field.
func (in StudentInput) Normalize() StudentInput {
	return StudentInput{
		StudentCode: strings.TrimSpace(in.StudentCode),
		FullName:    strings.TrimSpace(in.FullName),
		Email:       strings.TrimSpace(in.Email),
		Course:      strings.TrimSpace(in.Course),
		Description: strings.TrimSpace(in.Description),
	}
}

// LoginInput is the login form as submitted.
type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

var studentMessages = map[string]map[string]string{
	"StudentCode": {
		"required":    "Student ID is required.",
		"max":         "Student ID exceeds maximum length.",
		"studentcode": "Student ID can only contain letters, numbers, hyphens, and underscores.",
	},
	"FullName": {
		"required":   "Full Name is required.",
		"max":        "Full Name exceeds maximum length.",
		"personname": "Full Name can only contain letters, spaces, hyphens, and apostrophes.",
	},
	"Email": {
		"required": "Email is required.",
		"max":      "Email exceeds maximum length.",
		"email":    "Invalid email format.",
	},
	"Course": {
		"required": "Course is required.",
		"max":      "Course name exceeds maximum length.",
	},
	"Description": {
		"max": "Course description exceeds maximum length.",
	},
}

// Validator checks form input against the configured field limits. Rules
// are registered per struct at construction, so the limits come from
// configuration rather than struct tags.
type Validator struct {
	validate *validator.Validate
}

func NewValidator(limits config.LimitsConfig) (*Validator, error) {
	v := validator.New()

	if err := v.RegisterValidation("studentcode", func(fl validator.FieldLevel) bool {
		return studentCodePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register studentcode: %w", err)
	}
	if err := v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register personname: %w", err)
	}

	v.RegisterStructValidationMapRules(map[string]string{
		"StudentCode": fmt.Sprintf("required,max=%d,studentcode", limits.StudentCode),
		"FullName":    fmt.Sprintf("required,max=%d,personname", limits.FullName),
		"Email":       fmt.Sprintf("required,max=%d,email", limits.Email),
		"Course":      fmt.Sprintf("required,max=%d", limits.Course),
		"Description": fmt.Sprintf("max=%d", limits.Description),
	}, StudentInput{})

	v.RegisterStructValidationMapRules(map[string]string{
		"Username": fmt.Sprintf("required,max=%d", limits.Username),
		"Password": fmt.Sprintf("required,max=%d", limits.Password),
	}, LoginInput{})

	return &Validator{validate: v}, nil
}

// Student returns nil or a *ValidationError listing every failing field.
// The input is expected to be normalized already.
func (v *Validator) Student(in StudentInput) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate student: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := studentMessages[fe.StructField()][fe.Tag()]
		if !ok {
			msg = fe.StructField() + " is invalid."
		}
		messages = append(messages, msg)
	}
	return &ValidationError{Messages: messages}
}

// Login reports whether the credentials are well-formed. The reason is
// never shown to the user.
func (v *Validator) Login(in LoginInput) error {
	if err := v.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return nil
}
