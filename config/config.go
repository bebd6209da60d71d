package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Backend   BackendConfig   `yaml:"backend" toml:"backend"`
	Sync      SyncConfig      `yaml:"sync" toml:"sync"`
	Archive   ArchiveConfig   `yaml:"archive" toml:"archive"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Workspace WorkspaceConfig `yaml:"workspace" toml:"workspace"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Users     []User          `yaml:"users" toml:"users"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" toml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// BackendConfig points at the external analysis service.
type BackendConfig struct {
	BaseURL        string  `yaml:"base_url" toml:"base_url"`
	APIToken       string  `yaml:"api_token" toml:"api_token"`
	TimeoutSeconds int     `yaml:"timeout_seconds" toml:"timeout_seconds"`
	RequestsPerSec float64 `yaml:"requests_per_sec" toml:"requests_per_sec"`
	Burst          int     `yaml:"burst" toml:"burst"`
}

// Timeout returns the per-request timeout applied by the HTTP client.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// SyncConfig holds the ERP sync workflow switches. Unset booleans default to on.
type SyncConfig struct {
	SmartParsing *bool `yaml:"smart_parsing" toml:"smart_parsing"`
	IncludeAI    *bool `yaml:"include_ai" toml:"include_ai"`
	MaxUploadMB  int   `yaml:"max_upload_mb" toml:"max_upload_mb"`
}

func (s SyncConfig) SmartParsingEnabled() bool {
	return s.SmartParsing == nil || *s.SmartParsing
}

func (s SyncConfig) IncludeAIEnabled() bool {
	return s.IncludeAI == nil || *s.IncludeAI
}

// ArchiveConfig configures the optional object-storage copy of raw uploads.
type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	Endpoint   string `yaml:"endpoint" toml:"endpoint"`
	AccessKey  string `yaml:"access_key" toml:"access_key"`
	SecretKey  string `yaml:"secret_key" toml:"secret_key"`
	Bucket     string `yaml:"bucket" toml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl" toml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days" toml:"expire_days"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret" toml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours" toml:"token_expire_hours"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type WorkspaceConfig struct {
	MaxWorkspaces int `yaml:"max_workspaces" toml:"max_workspaces"`
}

type RateLimitConfig struct {
	RequestsPerSec float64 `yaml:"requests_per_sec" toml:"requests_per_sec"`
	Burst          int     `yaml:"burst" toml:"burst"`
}

type User struct {
	Username  string `yaml:"username" toml:"username"`
	Password  string `yaml:"password" toml:"password"`
	Workspace string `yaml:"workspace" toml:"workspace"`
}

// Load reads a YAML or TOML file (chosen by extension), applies .env and
// PNL_* environment overrides, then fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse toml config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml config: %w", err)
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is required")
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PNL_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("PNL_BACKEND_TOKEN"); v != "" {
		cfg.Backend.APIToken = v
	}
	if v := os.Getenv("PNL_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("PNL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PNL_SMART_PARSING"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Sync.SmartParsing = &on
		}
	}
	if v := os.Getenv("PNL_ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv("PNL_ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Archive.SecretKey = v
	}
	if v := os.Getenv("PNL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = 120
	}
	if cfg.Backend.RequestsPerSec == 0 {
		cfg.Backend.RequestsPerSec = 20
	}
	if cfg.Backend.Burst == 0 {
		cfg.Backend.Burst = 10
	}
	if cfg.Sync.MaxUploadMB == 0 {
		cfg.Sync.MaxUploadMB = 32
	}
	if cfg.Archive.ExpireDays == 0 {
		cfg.Archive.ExpireDays = 7
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Workspace.MaxWorkspaces == 0 {
		cfg.Workspace.MaxWorkspaces = 50
	}
	if cfg.RateLimit.RequestsPerSec == 0 {
		cfg.RateLimit.RequestsPerSec = 5
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 20
	}
	// A user without a workspace works in a private one.
	for i := range cfg.Users {
		if cfg.Users[i].Workspace == "" {
			cfg.Users[i].Workspace = cfg.Users[i].Username
		}
	}
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
