package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

const CSRFField = "csrf_token"

// CSRFToken derives the anti-forgery token for a session. It is an HMAC of
// the session id, so it changes whenever the session id is rotated.
func CSRFToken(secret string, sessionID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join([]string{"csrf", sessionID}, "\n")))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func ValidCSRFToken(secret string, sessionID string, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	expected := CSRFToken(secret, sessionID)
	return hmac.Equal([]byte(token), []byte(expected))
}
