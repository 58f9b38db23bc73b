package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

// TokenBytes is the number of random bytes for tokens
const TokenBytes = 32

// GenerateToken creates a new random token suitable for CSRF cookies
func GenerateToken() (string, error) {
	return generateRandomString(TokenBytes)
}

// TokensMatch compares two tokens in constant time. Empty tokens never match.
func TokensMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// CredentialsMatch checks basic auth credentials against the configured pair.
// Unconfigured credentials never match, which keeps admin routes closed by default.
func CredentialsMatch(user, password, wantUser, wantPassword string) bool {
	if wantUser == "" || wantPassword == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(wantPassword)) == 1
	return userOK && passOK
}

// generateRandomString generates a cryptographically random base64url-encoded string
func generateRandomString(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
