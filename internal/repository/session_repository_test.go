package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"rosterdesk/internal/models"
)

func newTestSessions(t *testing.T, ttl time.Duration) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionRepository(client, ttl), mr
}

func TestSessionSaveGetDelete(t *testing.T) {
	repo, mr := newTestSessions(t, time.Hour)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	session := models.Session{
		ID:           "opaque-cookie-value",
		UserID:       7,
		Username:     "admin",
		Initialized:  true,
		LoginAt:      now,
		LastActivity: now,
	}
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	for _, key := range mr.Keys() {
		if strings.Contains(key, session.ID) {
			t.Fatalf("raw session id leaked into key %q", key)
		}
	}

	got, err := repo.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.ID != session.ID || got.UserID != 7 || got.Username != "admin" || !got.Initialized {
		t.Errorf("Get() = %+v", got)
	}
	if !got.LastActivity.Equal(now) {
		t.Errorf("LastActivity = %v, want %v", got.LastActivity, now)
	}

	if err := repo.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := repo.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get() after delete: err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionGetUnknown(t *testing.T) {
	repo, _ := newTestSessions(t, time.Hour)

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := repo.Get(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("empty id: err = %v", err)
	}
}

func TestSessionTouchExtendsTTL(t *testing.T) {
	repo, mr := newTestSessions(t, time.Minute)
	ctx := context.Background()

	start := time.Now().UTC()
	session := models.Session{ID: "s1", Username: "admin", Initialized: true, LastActivity: start}
	if err := repo.Save(ctx, session); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(50 * time.Second)

	later := start.Add(50 * time.Second)
	if _, err := repo.Touch(ctx, session, later); err != nil {
		t.Fatalf("Touch() error: %v", err)
	}

	mr.FastForward(50 * time.Second)

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("session should survive after touch: %v", err)
	}
	if !got.LastActivity.Equal(later) {
		t.Errorf("LastActivity = %v, want %v", got.LastActivity, later)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("entry should be gone after ttl, err = %v", err)
	}
}
