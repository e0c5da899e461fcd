package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateSessionID returns a new opaque session identifier for the cookie.
func GenerateSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SessionKey hashes a session id for use as a storage key, so the store
// never holds a usable cookie value.
func SessionKey(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:])
}

type FlashStatus string

const (
	FlashSuccess FlashStatus = "success"
	FlashError   FlashStatus = "error"
	FlashDeleted FlashStatus = "deleted"
)

// Flash is a one-line result message carried across a redirect.
type Flash struct {
	Status  FlashStatus
	Message string
}

type flashClaims struct {
	Status  FlashStatus `json:"st"`
	Message string      `json:"msg"`
	jwt.RegisteredClaims
}

var ErrInvalidFlash = errors.New("invalid flash token")

// IssueFlash signs a flash message so that a crafted query string cannot
// inject arbitrary text into an authenticated page.
func IssueFlash(secret string, flash Flash, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := flashClaims{
		Status:  flash.Status,
		Message: flash.Message,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign flash: %w", err)
	}
	return signed, nil
}

func ParseFlash(secret string, tokenStr string) (Flash, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &flashClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Flash{}, fmt.Errorf("%w: %v", ErrInvalidFlash, err)
	}
	claims, ok := token.Claims.(*flashClaims)
	if !ok || !token.Valid {
		return Flash{}, ErrInvalidFlash
	}
	return Flash{Status: claims.Status, Message: claims.Message}, nil
}
