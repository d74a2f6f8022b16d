package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nikbrunner/shelf/internal/logger"
)

// Backend kinds.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendRedis  = "redis"
	BackendREST   = "rest"
	BackendMemory = "memory"
)

type Config struct {
	Backend struct {
		Kind      string
		Path      string
		RedisAddr string
		RedisDB   int
		RESTURL   string
		Token     string
		User      string
		Timeout   time.Duration
	}
	Engine struct {
		BulkConcurrency int
		Locale          string
	}
	Log struct {
		Level  string
		Pretty bool
		File   string
	}
	Share struct {
		BaseURL string
	}
	Checker struct {
		Concurrency    int
		Timeout        time.Duration
		ExcludeDomains []string
	}
	UI struct {
		Theme string
	}
	Serve struct {
		Addr           string
		AllowedOrigins []string
	}
}

// DefaultDir returns ~/.config/shelf.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "shelf"), nil
}

// Load reads config from the environment (SHELF_ prefix) and an optional
// config.yaml in dir. An explicit file must exist.
func Load(dir, file string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	cfg.Backend.Kind = strings.ToLower(v.GetString("backend.kind"))
	cfg.Backend.Path = v.GetString("backend.path")
	cfg.Backend.RedisAddr = v.GetString("backend.redis_addr")
	cfg.Backend.RedisDB = v.GetInt("backend.redis_db")
	cfg.Backend.RESTURL = strings.TrimRight(v.GetString("backend.rest_url"), "/")
	cfg.Backend.Token = v.GetString("backend.token")
	cfg.Backend.User = v.GetString("backend.user")
	cfg.Backend.Timeout = v.GetDuration("backend.timeout")
	cfg.Engine.BulkConcurrency = v.GetInt("engine.bulk_concurrency")
	cfg.Engine.Locale = v.GetString("engine.locale")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Pretty = v.GetBool("log.pretty")
	cfg.Log.File = v.GetString("log.file")
	cfg.Share.BaseURL = strings.TrimRight(v.GetString("share.base_url"), "/")
	cfg.Checker.Concurrency = v.GetInt("checker.concurrency")
	cfg.Checker.Timeout = v.GetDuration("checker.timeout")
	cfg.Checker.ExcludeDomains = v.GetStringSlice("checker.exclude_domains")
	cfg.UI.Theme = strings.ToLower(v.GetString("ui.theme"))
	cfg.Serve.Addr = v.GetString("serve.addr")
	cfg.Serve.AllowedOrigins = v.GetStringSlice("serve.allowed_origins")

	if cfg.Backend.Path == "" {
		switch cfg.Backend.Kind {
		case BackendSQLite:
			cfg.Backend.Path = filepath.Join(dir, "shelf.db")
		case BackendJSON:
			cfg.Backend.Path = filepath.Join(dir, "bookmarks.json")
		}
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(dir, "shelf.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.kind", BackendSQLite)
	v.SetDefault("backend.redis_addr", "localhost:6379")
	v.SetDefault("backend.redis_db", 0)
	v.SetDefault("backend.rest_url", "http://localhost:8000")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("engine.bulk_concurrency", 8)
	v.SetDefault("engine.locale", "en")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("share.base_url", "http://localhost:5173")
	v.SetDefault("checker.concurrency", 10)
	v.SetDefault("checker.timeout", "10s")
	v.SetDefault("checker.exclude_domains", []string{"github.com", "gitlab.com"})
	v.SetDefault("ui.theme", "dark")
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.allowed_origins", []string{"*"})
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case BackendSQLite, BackendJSON, BackendRedis, BackendREST, BackendMemory:
	default:
		return fmt.Errorf("unsupported backend kind %q: must be sqlite, json, redis, rest, or memory", c.Backend.Kind)
	}
	if c.Backend.Kind == BackendREST && c.Backend.RESTURL == "" {
		return fmt.Errorf("SHELF_BACKEND_REST_URL is required for the rest backend")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Engine.BulkConcurrency <= 0 {
		return fmt.Errorf("engine.bulk_concurrency must be positive, got %d", c.Engine.BulkConcurrency)
	}
	if c.Checker.Concurrency <= 0 {
		return fmt.Errorf("checker.concurrency must be positive, got %d", c.Checker.Concurrency)
	}
	if c.Checker.Timeout <= 0 {
		return fmt.Errorf("checker.timeout must be positive, got %s", c.Checker.Timeout)
	}
	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr must not be empty")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("unknown theme %q: must be dark or light", c.UI.Theme)
	}
	return nil
}
