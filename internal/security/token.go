package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for a missing, malformed, tampered or expired admin token
var ErrInvalidToken = errors.New("invalid admin token")

const tokenIssuer = "rpsarena"

// AdminClaims are the claims carried by the admin session cookie
type AdminClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies admin session tokens with HS256.
// Each token also has a CSRF token derived from its ID, so no server-side state is needed.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer for tokens that expire after ttl
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the given admin username
func (i *TokenIssuer) Issue(subject string) (string, *AdminClaims, error) {
	now := i.now()
	claims := &AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks the signature and expiry of a token
func (i *TokenIssuer) Verify(token string) (*AdminClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	claims := &AdminClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CSRFToken returns the CSRF token bound to an admin token ID
func (i *TokenIssuer) CSRFToken(tokenID string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte("csrf:" + tokenID))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidCSRF reports whether token is the CSRF token for tokenID
func (i *TokenIssuer) ValidCSRF(tokenID, token string) bool {
	if tokenID == "" || token == "" {
		return false
	}
	return hmac.Equal([]byte(i.CSRFToken(tokenID)), []byte(token))
}
