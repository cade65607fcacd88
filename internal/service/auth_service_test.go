package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpsarena/internal/security"
)

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := security.HashPassword("s3cret")
	require.NoError(t, err)

	for _, stored := range []string{"s3cret", hash} {
		t.Run(fmt.Sprintf("stored password %.4s", stored), func(t *testing.T) {
			tokens := security.NewTokenIssuer("test-secret", time.Hour)
			svc := NewAuthService("admin", stored, tokens, security.NewMemoryLockout(3, time.Minute))

			_, err := svc.Login(ctx, "10.0.0.1", "admin", "wrong")
			assert.ErrorIs(t, err, ErrInvalidCredentials)

			session, err := svc.Login(ctx, "10.0.0.1", "admin", "s3cret")
			require.NoError(t, err)
			assert.NotEmpty(t, session.Token)
			assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

			claims, err := svc.Authenticate(session.Token)
			require.NoError(t, err)
			assert.Equal(t, "admin", claims.Subject)
			assert.True(t, svc.ValidCSRF(claims, session.CSRFToken))
			assert.Equal(t, session.CSRFToken, svc.CSRFToken(claims))
			assert.False(t, svc.ValidCSRF(claims, "forged"))
		})
	}
}

func TestAuthServiceLockout(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	svc := NewAuthService("admin", "s3cret", tokens, security.NewMemoryLockout(security.DefaultMaxAttempts, security.DefaultLockout))

	for i := 0; i < security.DefaultMaxAttempts; i++ {
		_, err := svc.Login(ctx, "10.0.0.2", "admin", "nope")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := svc.Login(ctx, "10.0.0.2", "admin", "s3cret")
	require.ErrorIs(t, err, security.ErrLockedOut)
	assert.Contains(t, err.Error(), "try again in 15 minutes")

	// Other clients are unaffected
	_, err = svc.Login(ctx, "10.0.0.3", "admin", "s3cret")
	assert.NoError(t, err)
}

func TestAuthServiceSuccessResetsFailures(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	svc := NewAuthService("admin", "s3cret", tokens, security.NewMemoryLockout(3, time.Minute))

	for round := 0; round < 3; round++ {
		for i := 0; i < 2; i++ {
			_, err := svc.Login(ctx, "c", "admin", "bad")
			require.ErrorIs(t, err, ErrInvalidCredentials)
		}
		_, err := svc.Login(ctx, "c", "admin", "s3cret")
		require.NoError(t, err, "round %d", round)
	}
}

func TestAuthServiceRejectsForeignTokens(t *testing.T) {
	svc := NewAuthService("admin", "s3cret", security.NewTokenIssuer("one", time.Hour), security.NewMemoryLockout(3, time.Minute))
	other := security.NewTokenIssuer("two", time.Hour)

	token, _, err := other.Issue("admin")
	require.NoError(t, err)

	_, err = svc.Authenticate(token)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}
