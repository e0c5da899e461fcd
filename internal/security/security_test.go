package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if string(hash) == "s3cret-pass" {
		t.Fatal("hash must not equal the password")
	}

	ok, err := VerifyPassword("s3cret-pass", hash)
	if err != nil || !ok {
		t.Fatalf("VerifyPassword(correct) = %v, %v", ok, err)
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil || ok {
		t.Fatalf("VerifyPassword(wrong) = %v, %v", ok, err)
	}
}

func TestVerifyPasswordAcceptsPHPBcryptPrefix(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	phpHash := []byte("$2y$" + string(hash[4:]))

	ok, err := VerifyPassword("admin123", phpHash)
	if err != nil || !ok {
		t.Fatalf("VerifyPassword($2y$) = %v, %v", ok, err)
	}
}

func TestVerifyPasswordArgon2(t *testing.T) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		t.Fatal(err)
	}
	key := argon2.IDKey([]byte("legacy"), salt, 1, 8*1024, 1, 32)
	encoded := fmt.Sprintf("$argon2id$v=19$t=%d,m=%d,p=%d$%s$%s", 1, 8*1024, 1,
		base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(key))

	ok, err := VerifyPassword("legacy", []byte(encoded))
	if err != nil || !ok {
		t.Fatalf("VerifyPassword(argon2 correct) = %v, %v", ok, err)
	}
	ok, err = VerifyPassword("nope", []byte(encoded))
	if err != nil || ok {
		t.Fatalf("VerifyPassword(argon2 wrong) = %v, %v", ok, err)
	}
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	ok, err := VerifyPassword("x", []byte("plaintext"))
	if ok {
		t.Fatal("garbage hash must never verify")
	}
	if !errors.Is(err, ErrUnsupportedHash) {
		t.Fatalf("error = %v, want ErrUnsupportedHash", err)
	}
}

func TestSessionIDsAreUniqueAndKeyed(t *testing.T) {
	a, err := GenerateSessionID()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateSessionID()
	if a == b {
		t.Fatal("session ids must differ")
	}
	if SessionKey(a) == a {
		t.Fatal("storage key must not be the raw id")
	}
	if SessionKey(a) != SessionKey(a) {
		t.Fatal("storage key must be deterministic")
	}
}

func TestCSRFTokenBoundToSession(t *testing.T) {
	token := CSRFToken("secret", "session-a")

	if !ValidCSRFToken("secret", "session-a", token) {
		t.Fatal("token must validate for its session")
	}
	if ValidCSRFToken("secret", "session-b", token) {
		t.Fatal("token must not validate for another session")
	}
	if ValidCSRFToken("other", "session-a", token) {
		t.Fatal("token must not validate under another secret")
	}
	if ValidCSRFToken("secret", "session-a", "") {
		t.Fatal("empty token must not validate")
	}
}

func TestFlashRoundTrip(t *testing.T) {
	token, err := IssueFlash("k", Flash{Status: FlashSuccess, Message: "Backup created"}, time.Minute)
	if err != nil {
		t.Fatalf("IssueFlash() error: %v", err)
	}

	flash, err := ParseFlash("k", token)
	if err != nil {
		t.Fatalf("ParseFlash() error: %v", err)
	}
	if flash.Status != FlashSuccess || flash.Message != "Backup created" {
		t.Errorf("flash = %+v", flash)
	}
}

func TestFlashRejectsTamperingAndExpiry(t *testing.T) {
	token, _ := IssueFlash("k", Flash{Status: FlashSuccess, Message: "ok"}, time.Minute)

	if _, err := ParseFlash("other-key", token); !errors.Is(err, ErrInvalidFlash) {
		t.Errorf("wrong key: err = %v", err)
	}

	parts := strings.Split(token, ".")
	forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"st":"success","msg":"<b>pwned</b>"}`)) + "." + parts[2]
	if _, err := ParseFlash("k", forged); !errors.Is(err, ErrInvalidFlash) {
		t.Errorf("forged payload: err = %v", err)
	}

	expired, _ := IssueFlash("k", Flash{Status: FlashError, Message: "late"}, -time.Minute)
	if _, err := ParseFlash("k", expired); !errors.Is(err, ErrInvalidFlash) {
		t.Errorf("expired: err = %v", err)
	}
}
