package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET", "s3cret")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "./notes.db", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.Secret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SECRET", "s3cret")
	t.Setenv("PORT", "8081")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/notes")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "postgres://u:p@localhost/notes", cfg.DatabaseURL)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("SECRET", "from-env")
	t.Setenv("PORT", "8081")

	cfg, err := Load([]string{"-port", "9000", "-secret", "from-flag", "-driver", "mongo", "-db", "mongodb://localhost:27017"})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, "from-flag", cfg.Secret)
	assert.Equal(t, DriverMongo, cfg.DBDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURL)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("SECRET", "")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "SECRET")
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("SECRET", "x")
		t.Setenv("PORT", "abc")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "PORT")
	})

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("SECRET", "x")
		t.Setenv("TOKEN_TTL", "soon")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "TOKEN_TTL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("SECRET", "x")
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "oracle")
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Setenv("SECRET", "x")
		_, err := Load([]string{"-nope"})
		assert.Error(t, err)
	})
}
