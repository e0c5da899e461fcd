package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rosterdesk/internal/models"
)

var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrDuplicateStudentCode = errors.New("student code already exists")
)

type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func (r *StudentRepository) Create(ctx context.Context, student models.Student) (models.Student, error) {
	const query = `
		INSERT INTO students (
			student_code, full_name, email, course, course_description, created_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW()
		)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		student.StudentCode,
		student.FullName,
		student.Email,
		student.Course,
		student.Description,
	).Scan(&student.ID, &student.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "students_student_code_key") {
			return models.Student{}, ErrDuplicateStudentCode
		}
		return models.Student{}, err
	}
	return student, nil
}

func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `
		SELECT id, student_code, full_name, email, course, course_description, created_at
		FROM students
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]models.Student, 0)
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(
			&s.ID,
			&s.StudentCode,
			&s.FullName,
			&s.Email,
			&s.Course,
			&s.Description,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// DeleteAndCompact removes one student and renumbers the remaining rows to
// 1..n in their previous id order, then points the identity sequence at
// n+1. Everything runs in one transaction under a table lock so that
// concurrent inserts cannot interleave with the renumbering.
func (r *StudentRepository) DeleteAndCompact(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE students IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock students: %w", err)
		}

		var found int64
		err := tx.QueryRow(ctx, `SELECT id FROM students WHERE id = $1`, id).Scan(&found)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("verify student: %w", err)
		}

		cmd, err := tx.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete student: %w", err)
		}
		if cmd.RowsAffected() != 1 {
			return ErrStudentNotFound
		}

		// Two passes keep the primary key unique at every row update:
		// first move every id to its negative, then assign 1..n.
		if _, err := tx.Exec(ctx, `UPDATE students SET id = -id`); err != nil {
			return fmt.Errorf("renumber (negate): %w", err)
		}

		const renumber = `
			UPDATE students AS s
			SET id = r.new_id
			FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY id DESC) AS new_id
				FROM students
			) AS r
			WHERE s.id = r.id
		`
		if _, err := tx.Exec(ctx, renumber); err != nil {
			return fmt.Errorf("renumber (assign): %w", err)
		}

		const resetSequence = `
			SELECT setval(pg_get_serial_sequence('students', 'id'), COALESCE(MAX(id), 0) + 1, false)
			FROM students
		`
		if _, err := tx.Exec(ctx, resetSequence); err != nil {
			return fmt.Errorf("reset sequence: %w", err)
		}

		return nil
	})
}
