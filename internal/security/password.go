package security

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var ErrUnsupportedHash = errors.New("unsupported password hash format")

const argon2Prefix = "$argon2id$"

// HashPassword hashes with bcrypt at the configured cost factor.
func HashPassword(password string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: %w", err)
	}
	return hash, nil
}

// VerifyPassword compares password against a stored hash in constant time.
// bcrypt hashes ($2a$, $2b$, $2y$) and argon2id hashes are accepted.
func VerifyPassword(password string, encodedHash []byte) (bool, error) {
	if strings.HasPrefix(string(encodedHash), argon2Prefix) {
		return verifyArgon2(password, encodedHash)
	}

	err := bcrypt.CompareHashAndPassword(normalizeBcrypt(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	}
}

// normalizeBcrypt maps the $2y$ prefix emitted by PHP's password_hash to
// $2a$, which x/crypto/bcrypt understands. The algorithms are identical.
func normalizeBcrypt(hash []byte) []byte {
	if len(hash) > 4 && string(hash[:4]) == "$2y$" {
		out := make([]byte, len(hash))
		copy(out, hash)
		out[2] = 'a'
		return out
	}
	return hash
}

func verifyArgon2(password string, encodedHash []byte) (bool, error) {
	// $argon2id$v=19$t=3,m=65536,p=2$<salt>$<hash>
	parts := strings.Split(string(encodedHash), "$")
	if len(parts) != 6 {
		return false, ErrUnsupportedHash
	}

	var (
		time    uint32
		memory  uint32
		threads uint8
	)
	if _, err := fmt.Sscanf(parts[3], "t=%d,m=%d,p=%d", &time, &memory, &threads); err != nil {
		return false, fmt.Errorf("parse hash params: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.StdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}
