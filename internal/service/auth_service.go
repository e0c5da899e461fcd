package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rosterdesk/internal/models"
	"rosterdesk/internal/repository"
	"rosterdesk/internal/security"
)

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Touch(ctx context.Context, session models.Session, now time.Time) (models.Session, error)
	Delete(ctx context.Context, id string) error
}

type AuthService struct {
	users     UserStore
	sessions  SessionStore
	validator *Validator
	timeout   time.Duration
	log       zerolog.Logger
	now       func() time.Time
	verify    func(password string, hash []byte) (bool, error)

	// dummyHash is compared against when the username is unknown, so a
	// miss costs the same bcrypt work as a wrong password.
	dummyHash []byte
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	validator *Validator,
	timeout time.Duration,
	bcryptCost int,
	log zerolog.Logger,
) *AuthService {
	dummyHash, err := security.HashPassword("rosterdesk-unknown-user", bcryptCost)
	if err != nil {
		log.Warn().Err(err).Int("cost", bcryptCost).Msg("dummy password hash unavailable")
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		validator: validator,
		timeout:   timeout,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		verify:    security.VerifyPassword,
		dummyHash: dummyHash,
	}
}

// Login checks the credentials and, on success, replaces whatever session
// the browser presented with a freshly minted one. Every credential
// problem surfaces as ErrInvalidCredentials; any other error is a system
// failure.
func (s *AuthService) Login(ctx context.Context, in LoginInput, currentSessionID string) (models.Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Password = strings.TrimSpace(in.Password)

	if err := s.validator.Login(in); err != nil {
		s.rejectLogin(in, "malformed_input")
		return models.Session{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_, _ = s.verify(in.Password, s.dummyHash)
			s.rejectLogin(in, "unknown_user")
			return models.Session{}, ErrInvalidCredentials
		}
		loginAttemptsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).
			Str("event", "login").
			Str("username", in.Username).
			Str("client_ip", in.ClientIP).
			Msg("user lookup failed")
		return models.Session{}, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.verify(in.Password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("stored password hash is unreadable")
		s.rejectLogin(in, "unsupported_hash")
		return models.Session{}, ErrInvalidCredentials
	}
	if !ok {
		s.rejectLogin(in, "wrong_password")
		return models.Session{}, ErrInvalidCredentials
	}

	if currentSessionID != "" {
		if err := s.sessions.Delete(ctx, currentSessionID); err != nil {
			s.log.Warn().Err(err).Msg("discard previous session failed")
		}
	}

	id, err := security.GenerateSessionID()
	if err != nil {
		return models.Session{}, err
	}

	now := s.now()
	session := models.Session{
		ID:           id,
		UserID:       user.ID,
		Username:     user.Username,
		Initialized:  true,
		LoginAt:      now,
		LastActivity: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		loginAttemptsTotal.WithLabelValues("error").Inc()
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}

	loginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().
		Str("event", "login").
		Str("username", user.Username).
		Str("client_ip", in.ClientIP).
		Msg("login succeeded")

	return session, nil
}

func (s *AuthService) rejectLogin(in LoginInput, reason string) {
	loginAttemptsTotal.WithLabelValues("rejected").Inc()
	s.log.Warn().
		Str("event", "login").
		Str("username", in.Username).
		Str("client_ip", in.ClientIP).
		Str("reason", reason).
		Msg("login rejected")
}

// Authenticate resolves the session behind a cookie value and records the
// request as activity. It returns ErrUnauthenticated when there is no
// usable session and ErrSessionExpired when the session idled past the
// timeout, in which case the session is also destroyed.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (models.Session, error) {
	if sessionID == "" {
		return models.Session{}, ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return models.Session{}, ErrUnauthenticated
		}
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !session.Initialized || session.Username == "" {
		return models.Session{}, ErrUnauthenticated
	}

	now := s.now()
	if session.Expired(now, s.timeout) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Msg("delete expired session failed")
		}
		s.log.Info().
			Str("event", "session_expired").
			Str("username", session.Username).
			Msg("session expired")
		return models.Session{}, ErrSessionExpired
	}

	session, err = s.sessions.Touch(ctx, session, now)
	if err != nil {
		return models.Session{}, fmt.Errorf("touch session: %w", err)
	}
	return session, nil
}

// Logout destroys the session behind the cookie value, if any. Logging
// out without a session, or with an expired one, is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string, clientIP string) error {
	if sessionID == "" {
		return nil
	}

	username := ""
	if session, err := s.sessions.Get(ctx, sessionID); err == nil {
		username = session.Username
	} else if !errors.Is(err, repository.ErrSessionNotFound) {
		s.log.Warn().Err(err).Msg("load session for logout failed")
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if username != "" {
		s.log.Info().
			Str("event", "logout").
			Str("username", username).
			Str("client_ip", clientIP).
			Msg("user logged out")
	}
	return nil
}
