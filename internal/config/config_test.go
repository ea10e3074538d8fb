package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "bbolt", cfg.Storage.Driver)
	assert.Equal(t, "./data/licenses.db", cfg.Storage.Path)
	assert.Equal(t, 120, cfg.HTTP.RateLimit)
	assert.Equal(t, 24*time.Hour, cfg.Telegram.DigestInterval)
	require.NoError(t, Validate(cfg))
}

func TestFileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licmon.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
driver = "redis"
redis_addr = "10.0.0.5:6379"

[http]
rate_limit = 30
`), 0o644))
	t.Setenv("LICMON_HTTP__RATE_LIMIT", "5")
	t.Setenv("LICMON_LOG__LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "10.0.0.5:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 5, cfg.HTTP.RateLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "licmon:", cfg.Storage.RedisPrefix, "defaults survive")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorContains(t, err, "error loading config")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.Storage.Driver = "bbolt"
		c.Storage.Path = "x.db"
		return c
	}

	c := base()
	c.Storage.Driver = "sqlite"
	assert.ErrorContains(t, Validate(c), "unknown storage.driver")

	c = base()
	c.Telegram.Token = "abc"
	assert.ErrorContains(t, Validate(c), "admin_chat_id")

	c = base()
	c.Clock.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, Validate(c), "clock.timezone")

	assert.NoError(t, Validate(base()))
}

func TestInitConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licmon.toml")
	require.NoError(t, InitConfig(path))
	assert.ErrorContains(t, InitConfig(path), "already exists")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
}
