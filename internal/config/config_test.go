package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_TYPE", "LLM_TIMEOUT", "DEFAULT_ROUNDS", "SESSION_DURATION", "DEBUG", "TRUSTED_PROXIES"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, 20*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 5, cfg.DefaultRounds)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LoginLockout)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("DEFAULT_ROUNDS", "7")
	t.Setenv("DEBUG", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, ,192.0.2.10")

	cfg := Load()
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 7, cfg.DefaultRounds)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)
}

func TestInvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		get  func(c *Config) interface{}
		want interface{}
	}{
		{name: "bad duration", key: "LLM_TIMEOUT", val: "soon", get: func(c *Config) interface{} { return c.LLMTimeout }, want: 20 * time.Second},
		{name: "bad int", key: "DEFAULT_ROUNDS", val: "five", get: func(c *Config) interface{} { return c.DefaultRounds }, want: 5},
		{name: "bad bool", key: "DEBUG", val: "maybe", get: func(c *Config) interface{} { return c.Debug }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			assert.Equal(t, tt.want, tt.get(Load()))
		})
	}
}
