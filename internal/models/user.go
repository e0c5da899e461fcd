package models

import "time"

// User is an administrator account. The web application only reads it.
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Session is the server-side state behind the session cookie.
type Session struct {
	ID           string    `json:"-"`
	UserID       int64     `json:"uid"`
	Username     string    `json:"user"`
	Initialized  bool      `json:"initialized"`
	LoginAt      time.Time `json:"login_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Expired reports whether more than timeout has passed since the last
// authenticated request.
func (s Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}
