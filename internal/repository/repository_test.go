package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"rosterdesk/internal/config"
	"rosterdesk/internal/database"
	"rosterdesk/internal/models"
)

// setupTestDB starts a disposable Postgres, applies the migrations and
// returns a pool. Skipped unless TEST_INTEGRATION is set.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:16-alpine",
		postgres.WithDatabase("roster_test"),
		postgres.WithUsername("roster"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	cfg := config.PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "roster",
		Password: "test-password",
		Database: "roster_test",
		SSLMode:  "disable",
		MaxOpen:  4,
		MaxIdle:  1,
	}

	if err := database.Migrate(cfg, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func seedStudents(t *testing.T, repo *StudentRepository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := repo.Create(context.Background(), models.Student{
			StudentCode: fmt.Sprintf("STU-%03d", i),
			FullName:    "Student Number",
			Email:       fmt.Sprintf("s%d@example.edu", i),
			Course:      "Computer Science",
		})
		if err != nil {
			t.Fatalf("seed student %d: %v", i, err)
		}
	}
}

func studentIDs(t *testing.T, pool *pgxpool.Pool) []int64 {
	t.Helper()
	rows, err := pool.Query(context.Background(), `SELECT id FROM students ORDER BY id`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestStudentCreateAndList(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewStudentRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Student{
		StudentCode: "STU-001",
		FullName:    "Ada Lovelace",
		Email:       "ada@example.edu",
		Course:      "Mathematics",
		Description: "Analytical engines",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID != 1 || created.CreatedAt.IsZero() {
		t.Errorf("created = %+v", created)
	}

	_, err = repo.Create(ctx, models.Student{
		StudentCode: "STU-001",
		FullName:    "Someone Else",
		Email:       "else@example.edu",
		Course:      "Physics",
	})
	if !errors.Is(err, ErrDuplicateStudentCode) {
		t.Fatalf("duplicate Create() err = %v, want ErrDuplicateStudentCode", err)
	}

	students, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(students) != 1 || students[0].Description != "Analytical engines" {
		t.Errorf("List() = %+v", students)
	}
}

func TestStudentListEmpty(t *testing.T) {
	pool := setupTestDB(t)
	students, err := NewStudentRepository(pool).List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if students == nil || len(students) != 0 {
		t.Errorf("List() = %#v, want empty non-nil slice", students)
	}
}

func TestDeleteAndCompactRenumbers(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewStudentRepository(pool)
	ctx := context.Background()

	seedStudents(t, repo, 5)

	if err := repo.DeleteAndCompact(ctx, 3); err != nil {
		t.Fatalf("DeleteAndCompact() error: %v", err)
	}

	ids := studentIDs(t, pool)
	want := []int64{1, 2, 3, 4}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}

	// Former id 4 (STU-004) is now id 3.
	var code string
	if err := pool.QueryRow(ctx, `SELECT student_code FROM students WHERE id = 3`).Scan(&code); err != nil {
		t.Fatal(err)
	}
	if code != "STU-004" {
		t.Errorf("id 3 holds %s, want STU-004", code)
	}

	next, err := repo.Create(ctx, models.Student{
		StudentCode: "STU-NEW",
		FullName:    "New Student",
		Email:       "new@example.edu",
		Course:      "History",
	})
	if err != nil {
		t.Fatalf("Create() after compact: %v", err)
	}
	if next.ID != 5 {
		t.Errorf("next id = %d, want 5", next.ID)
	}
}

func TestDeleteAndCompactLastRowResetsSequence(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewStudentRepository(pool)
	ctx := context.Background()

	seedStudents(t, repo, 1)
	if err := repo.DeleteAndCompact(ctx, 1); err != nil {
		t.Fatalf("DeleteAndCompact() error: %v", err)
	}

	created, err := repo.Create(ctx, models.Student{
		StudentCode: "STU-X",
		FullName:    "Only Student",
		Email:       "x@example.edu",
		Course:      "Art",
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != 1 {
		t.Errorf("id after emptying table = %d, want 1", created.ID)
	}
}

func TestDeleteAndCompactNotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewStudentRepository(pool)
	ctx := context.Background()

	seedStudents(t, repo, 3)
	if err := repo.DeleteAndCompact(ctx, 42); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}

	ids := studentIDs(t, pool)
	if fmt.Sprint(ids) != "[1 2 3]" {
		t.Errorf("ids changed after failed delete: %v", ids)
	}
}

func TestUserCreateAndFind(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, "admin", []byte("$2a$10$hash"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := repo.Create(ctx, "admin", []byte("x")); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate Create() err = %v", err)
	}

	found, err := repo.FindByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("FindByUsername() error: %v", err)
	}
	if found.ID != created.ID || string(found.PasswordHash) != "$2a$10$hash" {
		t.Errorf("found = %+v", found)
	}

	if _, err := repo.FindByUsername(ctx, "admin' OR '1'='1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("injection-shaped username: err = %v", err)
	}
}
