package security

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTokenIssuer(t *testing.T) {
	c := newClock()
	issuer := NewTokenIssuer("test-secret", 24*time.Hour)
	issuer.now = c.now

	token, claims, err := issuer.Issue("admin")
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Subject)
	assert.Equal(t, claims.ID, got.ID)

	t.Run("other secret", func(t *testing.T) {
		other := NewTokenIssuer("another-secret", 24*time.Hour)
		other.now = c.now
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, tok := range []string{"", "abc", "a.b.c"} {
			_, err := issuer.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken, tok)
		}
	})

	t.Run("csrf bound to token id", func(t *testing.T) {
		csrf := issuer.CSRFToken(claims.ID)
		assert.True(t, issuer.ValidCSRF(claims.ID, csrf))
		assert.False(t, issuer.ValidCSRF("other-id", csrf))
		assert.False(t, issuer.ValidCSRF(claims.ID, ""))
	})

	t.Run("expired", func(t *testing.T) {
		c.advance(24*time.Hour + time.Minute)
		_, err := issuer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestCheckCredentials(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	tests := []struct {
		name               string
		user, pass         string
		wantUser, wantPass string
		want               bool
	}{
		{name: "plain match", user: "admin", pass: "s3cret", wantUser: "admin", wantPass: "s3cret", want: true},
		{name: "plain wrong password", user: "admin", pass: "nope", wantUser: "admin", wantPass: "s3cret", want: false},
		{name: "wrong user", user: "root", pass: "s3cret", wantUser: "admin", wantPass: "s3cret", want: false},
		{name: "bcrypt match", user: "admin", pass: "s3cret", wantUser: "admin", wantPass: hash, want: true},
		{name: "bcrypt wrong password", user: "admin", pass: "nope", wantUser: "admin", wantPass: hash, want: false},
		{name: "hash is not a password", user: "admin", pass: hash, wantUser: "admin", wantPass: hash, want: false},
		{name: "no password configured", user: "admin", pass: "", wantUser: "admin", wantPass: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckCredentials(tt.user, tt.pass, tt.wantUser, tt.wantPass))
		})
	}
}

func TestMemoryLockout(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store := NewMemoryLockout(DefaultMaxAttempts, DefaultLockout)
	store.now = c.now

	for i := 0; i < DefaultMaxAttempts-1; i++ {
		require.NoError(t, store.RecordFailure(ctx, "1.2.3.4"))
	}
	_, err := store.Check(ctx, "1.2.3.4")
	assert.NoError(t, err)

	require.NoError(t, store.RecordFailure(ctx, "1.2.3.4"))
	c.advance(5 * time.Minute)
	remaining, err := store.Check(ctx, "1.2.3.4")
	assert.ErrorIs(t, err, ErrLockedOut)
	assert.Equal(t, 10*time.Minute, remaining)

	_, err = store.Check(ctx, "5.6.7.8")
	assert.NoError(t, err, "other clients are unaffected")

	c.advance(10*time.Minute + time.Second)
	_, err = store.Check(ctx, "1.2.3.4")
	assert.NoError(t, err, "lockout window passed")

	for i := 0; i < DefaultMaxAttempts; i++ {
		require.NoError(t, store.RecordFailure(ctx, "9.9.9.9"))
	}
	require.NoError(t, store.Reset(ctx, "9.9.9.9"))
	_, err = store.Check(ctx, "9.9.9.9")
	assert.NoError(t, err)
}

func TestRateLimiter(t *testing.T) {
	c := newClock()
	rl := NewRateLimiter(3, time.Minute)
	rl.now = c.now

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("a"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	c.advance(time.Minute)
	assert.True(t, rl.Allow("a"))

	c.advance(3 * time.Minute)
	assert.Equal(t, 2, rl.Sweep())
}

func TestClientIP(t *testing.T) {
	behindProxy, err := NewClientIPResolver([]string{"10.0.0.0/8", " 192.0.2.10 "})
	require.NoError(t, err)
	direct, err := NewClientIPResolver(nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		resolver *ClientIPResolver
		headers  map[string]string
		remote   string
		want     string
	}{
		{name: "remote addr", resolver: direct, remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "spoofed forwarded header from untrusted peer", resolver: direct, headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, remote: "198.51.100.20:1", want: "198.51.100.20"},
		{name: "spoofed real ip from untrusted peer", resolver: behindProxy, headers: map[string]string{"X-Real-IP": "1.2.3.4"}, remote: "198.51.100.20:1", want: "198.51.100.20"},
		{name: "nil resolver trusts nobody", resolver: nil, headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, remote: "198.51.100.20:1", want: "198.51.100.20"},
		{name: "forwarded chain", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, remote: "10.0.0.1:1", want: "203.0.113.9"},
		{name: "client prefix in chain is ignored", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.9"}, remote: "10.0.0.1:1", want: "203.0.113.9"},
		{name: "all hops trusted", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "10.0.0.3, 10.0.0.2"}, remote: "10.0.0.1:1", want: "10.0.0.3"},
		{name: "single trusted ip", resolver: behindProxy, headers: map[string]string{"X-Forwarded-For": "203.0.113.5"}, remote: "192.0.2.10:1", want: "203.0.113.5"},
		{name: "real ip behind proxy", resolver: behindProxy, headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remote: "10.0.0.1:1", want: "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tt.resolver.ClientIP(r))
		})
	}
}

func TestNewClientIPResolverRejectsGarbage(t *testing.T) {
	_, err := NewClientIPResolver([]string{"10.0.0.0/8", "proxy.local"})
	assert.Error(t, err)
	_, err = NewClientIPResolver([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

func TestAdminCookie(t *testing.T) {
	plain := httptest.NewRequest("POST", "/api/admin/login", nil)
	proxied := httptest.NewRequest("POST", "/api/admin/login", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")

	c := AdminCookie(plain, "tok", time.Now().Add(time.Hour))
	assert.Equal(t, AdminCookieName, c.Name)
	assert.Equal(t, "/api", c.Path)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Greater(t, c.MaxAge, 3500)

	assert.True(t, AdminCookie(proxied, "tok", time.Now().Add(time.Hour)).Secure)

	expired := ExpiredAdminCookie(proxied)
	assert.Equal(t, -1, expired.MaxAge)
	assert.Empty(t, expired.Value)
	assert.True(t, expired.Secure)
}
