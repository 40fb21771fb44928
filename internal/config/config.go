package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// mongo
	MongoURI    string `toml:"mongo_uri"`
	MongoDBName string `toml:"mongo_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// http
	AllowedOrigins []string `toml:"allowed_origins"`
	RequireAuth    bool     `toml:"require_auth"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`

	// translation
	GeminiBaseURL            string `toml:"gemini_base_url"`
	GeminiModel              string `toml:"gemini_model"`
	TranslateRateLimitPerMin int    `toml:"translate_rate_limit_per_min"`
	TranslateCacheSizeMB     int    `toml:"translate_cache_size_mb"`
	TranslateCacheTTLSec     int    `toml:"translate_cache_ttl_sec"`

	// auth
	LoginRateLimitPerMin int `toml:"login_rate_limit_per_min"`
	SessionTTLHours      int `toml:"session_ttl_hours"`

	// deploy
	DeployScript  string `toml:"deploy_script"`
	DeployWorkDir string `toml:"deploy_work_dir"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg, env = t.Development, EnvDevelopment
	case "prod", "production":
		cfg, env = t.Production, EnvProduction
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] section in config", env)
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads the TOML file at path, picks the section for env and applies
// env var overrides on top of it.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

type lookupEnvFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupEnvFunc) error {
	if v, ok := lookup("MONGODB_URI"); ok && v != "" {
		c.MongoURI = v
	}
	if v, ok := lookup("DB_NAME"); ok && v != "" {
		c.MongoDBName = v
	}
	if v, ok := lookup("GEMINI_MODEL"); ok && v != "" {
		c.GeminiModel = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PORT env var [%s]: %w", v, err)
		}
		c.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 3001
	}
	if c.MongoDBName == "" {
		c.MongoDBName = "blog_huy"
	}
	if c.GeminiBaseURL == "" {
		c.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-2.5-flash"
	}
	if c.MaxBodyBytes == 0 {
		// posts carry data: image URLs
		c.MaxBodyBytes = 10 << 20
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24
	}
	if c.DeployScript == "" {
		c.DeployScript = "deploy.sh"
	}
}

func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal", "panic")),
		validation.Field(&c.MongoURI, validation.Required),
		validation.Field(&c.MongoDBName, validation.Required),
		validation.Field(&c.RedisHost, validation.Required),
		validation.Field(&c.RedisPort, validation.Required, is.Port),
		validation.Field(&c.PrometheusMetricsPort, validation.Required, is.Port),
		validation.Field(&c.AllowedOrigins, validation.Each(validation.Required)),
		validation.Field(&c.MaxBodyBytes, validation.Min(int64(1024))),
		validation.Field(&c.GeminiBaseURL, validation.Required, is.URL),
		validation.Field(&c.GeminiModel, validation.Required),
		validation.Field(&c.TranslateRateLimitPerMin, validation.Min(0)),
		validation.Field(&c.TranslateCacheSizeMB, validation.Min(0)),
		validation.Field(&c.TranslateCacheTTLSec, validation.Min(0)),
		validation.Field(&c.LoginRateLimitPerMin, validation.Min(0)),
		validation.Field(&c.SessionTTLHours, validation.Min(1)),
		validation.Field(&c.DeployScript, validation.Required),
	)
	if err != nil {
		return err
	}

	if c.Environment == EnvProduction && !c.RequireAuth {
		return errors.New("require_auth must be enabled in production")
	}

	return nil
}
