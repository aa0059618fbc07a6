package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:        "8375",
		Env:         "development",
		JWTSecret:   "secure-secret-at-least-32-chars-long",
		JWTTTLHours: 168,
		DBPassword:  "secure-password",
		DBSSLMode:   "require",
		RedisURL:    "redis://localhost:6379",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.DevBootstrap = true
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateBasics(t *testing.T) {
	c := validConfig()
	c.Port = ""
	assert.Error(t, c.Validate())

	c = validConfig()
	c.JWTTTLHours = 0
	assert.Error(t, c.Validate())

	c = validConfig()
	c.TracingExporter = "jaeger"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.JWTSecret = "short-but-fine-in-dev"
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9999")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("JWT_TTL_HOURS", "2")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 2, c.JWTTTLHours)
	assert.Equal(t, "inkpost", c.DBName)
	assert.Contains(t, c.DSN(), "dbname=inkpost")
}
