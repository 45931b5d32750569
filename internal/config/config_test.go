package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().HTTP.Port, cfg.HTTP.Port)
	assert.Equal(t, "evalforge", cfg.Mongo.Database)
	assert.False(t, cfg.AI.IsEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evalforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9090"
mongo:
  database: forms_test
editor:
  sessionTtl: 30m
ai:
  models:
    template: gemini-test
`), 0o600))

	t.Setenv("MONGO_DATABASE", "")
	t.Setenv("REDIS_URI", "redis://cache:6380")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("EDITOR_SESSION_TTL", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "forms_test", cfg.Mongo.Database)
	assert.Equal(t, 30*time.Minute, cfg.Editor.SessionTTL)
	assert.Equal(t, "gemini-test", cfg.AI.Models.Template)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Models.Formula, "unset keys keep defaults")
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.True(t, cfg.AI.IsEnabled())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("http: ["), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad session ttl", func(t *testing.T) {
		t.Setenv("EDITOR_SESSION_TTL", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "EDITOR_SESSION_TTL")
	})
}
