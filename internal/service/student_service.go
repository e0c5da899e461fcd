package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"rosterdesk/internal/models"
	"rosterdesk/internal/repository"
)

type StudentStore interface {
	Create(ctx context.Context, student models.Student) (models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	DeleteAndCompact(ctx context.Context, id int64) error
}

type StudentService struct {
	students  StudentStore
	validator *Validator
	log       zerolog.Logger
}

func NewStudentService(students StudentStore, validator *Validator, log zerolog.Logger) *StudentService {
	return &StudentService{
		students:  students,
		validator: validator,
		log:       log,
	}
}

// Create validates and stores a new student. Invalid input never reaches
// the database.
func (s *StudentService) Create(ctx context.Context, in StudentInput, actor string) (models.Student, error) {
	in = in.Normalize()
	if err := s.validator.Student(in); err != nil {
		studentMutationsTotal.WithLabelValues("create", "invalid").Inc()
		return models.Student{}, err
	}

	student, err := s.students.Create(ctx, models.Student{
		StudentCode: in.StudentCode,
		FullName:    in.FullName,
		Email:       in.Email,
		Course:      in.Course,
		Description: in.Description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateStudentCode) {
			studentMutationsTotal.WithLabelValues("create", "duplicate").Inc()
			s.log.Warn().
				Str("event", "student_create").
				Str("username", actor).
				Str("student_code", in.StudentCode).
				Msg("duplicate student code")
			return models.Student{}, ErrDuplicateStudent
		}
		studentMutationsTotal.WithLabelValues("create", "error").Inc()
		s.log.Error().Err(err).
			Str("event", "student_create").
			Str("username", actor).
			Msg("insert student failed")
		return models.Student{}, fmt.Errorf("create student: %w", err)
	}

	studentMutationsTotal.WithLabelValues("create", "ok").Inc()
	s.log.Info().
		Str("event", "student_create").
		Str("username", actor).
		Int64("student_id", student.ID).
		Str("student_code", student.StudentCode).
		Msg("student added")

	return student, nil
}

func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("event", "student_list").Msg("list students failed")
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ParseStudentID accepts only positive decimal ids.
func ParseStudentID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing student id", ErrInvalidInput)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad student id %q", ErrInvalidInput, raw)
	}
	return id, nil
}

// Delete removes the student with the given id and renumbers the rest.
func (s *StudentService) Delete(ctx context.Context, rawID string, actor string) error {
	id, err := ParseStudentID(rawID)
	if err != nil {
		studentMutationsTotal.WithLabelValues("delete", "invalid").Inc()
		s.log.Warn().
			Str("event", "student_delete").
			Str("username", actor).
			Str("raw_id", rawID).
			Msg("invalid student id")
		return err
	}

	if err := s.students.DeleteAndCompact(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			studentMutationsTotal.WithLabelValues("delete", "not_found").Inc()
			s.log.Warn().
				Str("event", "student_delete").
				Str("username", actor).
				Int64("student_id", id).
				Msg("student not found")
			return ErrStudentNotFound
		}
		studentMutationsTotal.WithLabelValues("delete", "error").Inc()
		s.log.Error().Err(err).
			Str("event", "student_delete").
			Str("username", actor).
			Int64("student_id", id).
			Msg("delete student failed")
		return fmt.Errorf("delete student: %w", err)
	}

	studentMutationsTotal.WithLabelValues("delete", "ok").Inc()
	s.log.Info().
		Str("event", "student_delete").
		Str("username", actor).
		Int64("student_id", id).
		Msg("student deleted")
	return nil
}
