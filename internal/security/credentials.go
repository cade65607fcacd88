package security

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// CheckCredentials compares a login attempt against the configured admin account.
// The configured password may be plain text or a bcrypt hash.
func CheckCredentials(username, password, wantUsername, wantPassword string) bool {
	if wantUsername == "" || wantPassword == "" {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(wantUsername)) == 1

	var passOK bool
	if isBcryptHash(wantPassword) {
		passOK = bcrypt.CompareHashAndPassword([]byte(wantPassword), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(wantPassword)) == 1
	}

	return userOK && passOK
}
