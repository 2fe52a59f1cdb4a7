package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"gopherauth/internal/ratelimit"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	App       AppConfig       `toml:"app"`
	Log       LogConfig       `toml:"log"`
	Auth      AuthConfig      `toml:"auth"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type AppConfig struct {
	Name           string   `toml:"name"`
	Env            string   `toml:"env"`
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	GinMode        string   `toml:"gin_mode"`
	TrustedProxies []string `toml:"trusted_proxies"`
}

type LogConfig struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

type AuthConfig struct {
	SessionSecret     string `toml:"session_secret"`
	SessionTTLMinute  int    `toml:"session_ttl_minute"`
	SessionCookieName string `toml:"session_cookie_name"`
	FlashCookieName   string `toml:"flash_cookie_name"`
	CookieSecure      bool   `toml:"cookie_secure"`
	BcryptCost        int    `toml:"bcrypt_cost"`
}

type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DB           string `toml:"db"`
	Params       string `toml:"params"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxOpenConns int    `toml:"max_open_conns"`
	AutoMigrate  bool   `toml:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RateLimitConfig holds quotas in limiter notation, e.g. "50 per hour".
type RateLimitConfig struct {
	Enabled   bool     `toml:"enabled"`
	Backend   string   `toml:"backend"`
	KeyPrefix string   `toml:"key_prefix"`
	Default   []string `toml:"default"`
	Register  []string `toml:"register"`
	Login     []string `toml:"login"`
}

func Load() (*Config, error) {
	// .env only seeds variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env file failed: %w", err)
	}

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "prod") || strings.EqualFold(c.App.Env, "production")
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	d := c.Database
	switch d.Driver {
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			d.Host, d.Port, d.User, d.Password, d.DB)
		if d.Params != "" {
			dsn += " " + d.Params
		}
		return dsn
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.DB,
			d.Params,
		)
	}
}

// UsesRedis reports whether the process needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.RateLimit.Enabled && c.RateLimit.Backend == BackendRedis
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.SessionSecret) == "" {
		return errors.New("auth.session_secret is required (set SESSION_SECRET)")
	}
	if c.IsProduction() && len(c.Auth.SessionSecret) < 32 {
		return errors.New("auth.session_secret must be at least 32 bytes in production")
	}
	if c.Auth.SessionTTLMinute <= 0 {
		return errors.New("auth.session_ttl_minute must be positive")
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.RateLimit.Backend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unsupported rate limit backend %q", c.RateLimit.Backend)
	}
	for scope, rates := range map[string][]string{
		"default":  c.RateLimit.Default,
		"register": c.RateLimit.Register,
		"login":    c.RateLimit.Login,
	} {
		if _, err := ratelimit.ParseRates(rates); err != nil {
			return fmt.Errorf("rate_limit.%s: %w", scope, err)
		}
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "gopherauth",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Auth: AuthConfig{
			SessionTTLMinute:  120,
			SessionCookieName: "gopherauth_session",
			FlashCookieName:   "gopherauth_flash",
			BcryptCost:        10,
		},
		Database: DatabaseConfig{
			Driver:       DriverMySQL,
			Host:         "127.0.0.1",
			Port:         3306,
			User:         "root",
			Password:     "",
			DB:           "gopherauth",
			Params:       "parseTime=true&loc=Local&charset=utf8mb4",
			MaxIdleConns: 10,
			MaxOpenConns: 50,
			AutoMigrate:  true,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		RateLimit: RateLimitConfig{
			Enabled:   true,
			Backend:   BackendMemory,
			KeyPrefix: "ratelimit",
			Default:   []string{"200 per day", "50 per hour"},
			Register:  []string{"4 per minute"},
			Login:     []string{"9 per minute"},
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.TrustedProxies = getEnvAsList("TRUSTED_PROXIES", cfg.App.TrustedProxies)

	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	cfg.Auth.SessionSecret = getEnv("SESSION_SECRET", cfg.Auth.SessionSecret)
	cfg.Auth.SessionTTLMinute = getEnvAsInt("SESSION_TTL_MINUTE", cfg.Auth.SessionTTLMinute)
	cfg.Auth.CookieSecure = getEnvAsBool("COOKIE_SECURE", cfg.Auth.CookieSecure)
	cfg.Auth.BcryptCost = getEnvAsInt("BCRYPT_COST", cfg.Auth.BcryptCost)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DB = getEnv("DB_NAME", cfg.Database.DB)
	cfg.Database.Params = getEnv("DB_PARAMS", cfg.Database.Params)
	cfg.Database.AutoMigrate = getEnvAsBool("DB_AUTO_MIGRATE", cfg.Database.AutoMigrate)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.RateLimit.Enabled = getEnvAsBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.Backend = getEnv("RATE_LIMIT_BACKEND", cfg.RateLimit.Backend)
	cfg.RateLimit.Default = getEnvAsList("RATE_LIMIT_DEFAULT", cfg.RateLimit.Default)
	cfg.RateLimit.Register = getEnvAsList("RATE_LIMIT_REGISTER", cfg.RateLimit.Register)
	cfg.RateLimit.Login = getEnvAsList("RATE_LIMIT_LOGIN", cfg.RateLimit.Login)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsList splits a comma-separated value. Blank items are dropped.
func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
