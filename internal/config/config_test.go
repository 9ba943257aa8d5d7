package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", " s3cret ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "bunny-bank", cfg.JWTIssuer)
	assert.Equal(t, time.Duration(0), cfg.JWTTTL())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "bcrypt", cfg.CredentialHashing)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5.0, cfg.LoginRatePerSec)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_TTL_MINUTES", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,,")
	t.Setenv("CREDENTIAL_HASHING", "plain")
	t.Setenv("SEED_FILE", "seed.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "plain", cfg.CredentialHashing)
	assert.Equal(t, "seed.yaml", cfg.SeedFile)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRejectsUnknownHashing(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CREDENTIAL_HASHING", "md5")
	_, err := Load()
	assert.ErrorContains(t, err, "CREDENTIAL_HASHING")
}
