package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"rpsarena/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AdminSession is issued on a successful admin login
type AdminSession struct {
	Token     string
	CSRFToken string
	ExpiresAt time.Time
}

// AuthService authenticates the single configured admin account
type AuthService struct {
	username string
	password string
	tokens   *security.TokenIssuer
	lockout  security.LockoutStore
}

// NewAuthService creates a new auth service. password may be plain text or a bcrypt hash.
func NewAuthService(username, password string, tokens *security.TokenIssuer, lockout security.LockoutStore) *AuthService {
	return &AuthService{
		username: username,
		password: password,
		tokens:   tokens,
		lockout:  lockout,
	}
}

// Login checks credentials for a client, counting failures towards its lockout
func (s *AuthService) Login(ctx context.Context, client, username, password string) (*AdminSession, error) {
	remaining, err := s.lockout.Check(ctx, client)
	if errors.Is(err, security.ErrLockedOut) {
		minutes := int(math.Ceil(remaining.Minutes()))
		return nil, fmt.Errorf("%w, try again in %d minutes", security.ErrLockedOut, minutes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check lockout: %w", err)
	}

	if !security.CheckCredentials(username, password, s.username, s.password) {
		if err := s.lockout.RecordFailure(ctx, client); err != nil {
			log.WithError(err).Warn("Failed to record login failure")
		}
		log.WithField("client", client).Warn("Admin login failed")
		return nil, ErrInvalidCredentials
	}

	if err := s.lockout.Reset(ctx, client); err != nil {
		log.WithError(err).Warn("Failed to reset login attempts")
	}

	token, claims, err := s.tokens.Issue(username)
	if err != nil {
		return nil, err
	}

	log.WithField("client", client).Info("Admin logged in")
	return &AdminSession{
		Token:     token,
		CSRFToken: s.tokens.CSRFToken(claims.ID),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate validates an admin token from a cookie
func (s *AuthService) Authenticate(token string) (*security.AdminClaims, error) {
	return s.tokens.Verify(token)
}

// ValidCSRF checks the CSRF token sent with a state-changing admin request
func (s *AuthService) ValidCSRF(claims *security.AdminClaims, token string) bool {
	return s.tokens.ValidCSRF(claims.ID, token)
}

// CSRFToken returns the CSRF token for an authenticated admin
func (s *AuthService) CSRFToken(claims *security.AdminClaims) string {
	return s.tokens.CSRFToken(claims.ID)
}
