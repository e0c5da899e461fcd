package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rosterdesk/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already exists")
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, username string, passwordHash []byte) (models.User, error) {
	const query = `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, username, password_hash, created_at
	`

	var user models.User
	var hash string
	err := r.pool.QueryRow(ctx, query, username, string(passwordHash)).Scan(
		&user.ID,
		&user.Username,
		&hash,
		&user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	user.PasswordHash = []byte(hash)
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM users WHERE username = $1
	`

	row := r.pool.QueryRow(ctx, query, username)
	var user models.User
	var hash string
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&hash,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	user.PasswordHash = []byte(hash)
	return user, nil
}
