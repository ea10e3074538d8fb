package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides, e.g. LICMON_STORAGE__PATH.
const EnvPrefix = "LICMON_"

// Config represents the application configuration
type Config struct {
	Storage struct {
		Driver      string `koanf:"driver"`
		Path        string `koanf:"path"`
		RedisAddr   string `koanf:"redis_addr"`
		RedisPrefix string `koanf:"redis_prefix"`
	} `koanf:"storage"`

	HTTP struct {
		Addr      string `koanf:"addr"`
		RateLimit int    `koanf:"rate_limit"`
	} `koanf:"http"`

	Telegram struct {
		Token          string        `koanf:"token"`
		AdminChatID    int64         `koanf:"admin_chat_id"`
		DigestInterval time.Duration `koanf:"digest_interval"`
	} `koanf:"telegram"`

	Clock struct {
		Timezone string `koanf:"timezone"`
	} `koanf:"clock"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`

	Seed struct {
		OnStart bool `koanf:"on_start"`
	} `koanf:"seed"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"storage.driver":           "bbolt",
		"storage.path":             "./data/licenses.db",
		"storage.redis_addr":       "127.0.0.1:6379",
		"storage.redis_prefix":     "licmon:",
		"http.addr":                "127.0.0.1:8080",
		"http.rate_limit":          120,
		"telegram.digest_interval": "24h",
		"clock.timezone":           "Local",
		"log.level":                "info",
		"log.format":               "console",
		"seed.on_start":            false,
	}
}

// LoadConfig layers defaults, the TOML file at configPath (or a default
// location when empty) and LICMON_ environment variables.
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, path := range []string{"./licmon.toml", "$HOME/.licmon.toml"} {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// LICMON_HTTP__RATE_LIMIT -> http.rate_limit
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	switch cfg.Storage.Driver {
	case "bbolt":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the bbolt driver")
		}
	case "redis":
		if cfg.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}
	if cfg.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative")
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.AdminChatID == 0 {
		return fmt.Errorf("telegram.admin_chat_id is required when telegram.token is set")
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves clock.timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Clock.Timezone == "" || c.Clock.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Clock.Timezone)
	if err != nil {
		return nil, fmt.Errorf("clock.timezone: %w", err)
	}
	return loc, nil
}

// InitConfig writes a sample configuration file
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# License Monitor configuration

[storage]
driver = "bbolt"           # bbolt or redis
path = "./data/licenses.db"
redis_addr = "127.0.0.1:6379"
redis_prefix = "licmon:"

[http]
addr = "127.0.0.1:8080"
rate_limit = 120           # requests per minute per client, 0 disables

[telegram]
token = ""
admin_chat_id = 0
digest_interval = "24h"    # 0 disables the alert digest

[clock]
timezone = "Local"

[log]
level = "info"
format = "console"         # console or json

[seed]
on_start = false
`
	return os.WriteFile(configPath, []byte(sampleConfig), 0o644)
}
