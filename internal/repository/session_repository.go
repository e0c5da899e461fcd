package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rosterdesk/internal/models"
	"rosterdesk/internal/security"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

// SessionRepository keeps sessions in Redis under a hash of the cookie
// value. Entries live for ttl after their last save. The activity timeout
// is enforced by the session guard, which needs to see an expired entry to
// tell "expired" apart from "never logged in", so ttl must be longer than
// the timeout.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

func (r *SessionRepository) Save(ctx context.Context, session models.Session) error {
	if session.ID == "" {
		return errors.New("session id required")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, r.key(session.ID), payload, r.ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, id string) (models.Session, error) {
	if id == "" {
		return models.Session{}, ErrSessionNotFound
	}

	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	session.ID = id
	return session, nil
}

// Touch records activity and extends the entry's lifetime.
func (r *SessionRepository) Touch(ctx context.Context, session models.Session, now time.Time) (models.Session, error) {
	session.LastActivity = now
	if err := r.Save(ctx, session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *SessionRepository) key(id string) string {
	return sessionKeyPrefix + security.SessionKey(id)
}
