package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_EXPIRE", "")
	t.Setenv("MAX_FILE_UPLOAD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpire)
	assert.Equal(t, int64(1_000_000), cfg.MaxUpload)
	assert.Contains(t, cfg.DSN(), "dbname=staybook")
	assert.False(t, cfg.UseS3())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRE", "7d")
	t.Setenv("GEOCODE_TTL", "90m")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/stays")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpire)
	assert.Equal(t, 90*time.Minute, cfg.GeocodeTTL)
	assert.Equal(t, "postgres://u:p@db/stays", cfg.DSN())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRE", "soon")

	_, err := Load()
	assert.Error(t, err)
}
