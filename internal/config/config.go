// Package config provides configuration loading and validation for the
// service. Values merge in precedence order: built-in defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all tunables for the matcher service.
type Config struct {
	Port int `yaml:"port" validate:"gte=1,lte=65535"`

	// Catalog sources. CatalogJSON wins when both are set.
	CatalogDir  string `yaml:"catalog_dir"`
	CatalogJSON string `yaml:"catalog_json"`

	// Fuzzy-detection thresholds. The requirement side is stricter by
	// design; both are integers in [0,100].
	RequirementThreshold int `yaml:"requirement_threshold" validate:"gte=0,lte=100"`
	CandidateThreshold   int `yaml:"candidate_threshold" validate:"gte=0,lte=100"`

	MaxWorkers int `yaml:"max_workers" validate:"gte=1,lte=256"`

	// Session store for the re-download flow.
	SessionStore      string `yaml:"session_store" validate:"oneof=memory sqlite"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes" validate:"gte=1"`
	SQLitePath        string `yaml:"sqlite_path"`

	// Optional integrations.
	DatabaseURL  string `yaml:"database_url"`
	APIKeyHash   string `yaml:"api_key_hash"`
	JWTSecret    string `yaml:"jwt_secret"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	UseBrowser   bool   `yaml:"use_browser"`
	Verbose      bool   `yaml:"verbose"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                 8080,
		CatalogDir:           "skill_data",
		RequirementThreshold: 85,
		CandidateThreshold:   80,
		MaxWorkers:           4,
		SessionStore:         "memory",
		SessionTTLMinutes:    30,
		SQLitePath:           "sessions.db",
	}
}

// Load builds the effective configuration. A YAML file path may be
// supplied directly or via the MATCHER_CONFIG environment variable;
// a missing file is only an error when explicitly requested.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if path == "" {
		path = os.Getenv("MATCHER_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints via struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.SessionStore == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("invalid configuration: sqlite session store requires sqlite_path")
	}
	return nil
}

// applyEnv overlays environment variables onto the config. Unparsable
// numeric values are ignored so a stray variable cannot take the
// service down.
func applyEnv(cfg *Config) {
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setInt(&cfg.Port, "PORT")
	setString(&cfg.CatalogDir, "CATALOG_DIR")
	setString(&cfg.CatalogJSON, "CATALOG_JSON")
	setInt(&cfg.RequirementThreshold, "REQUIREMENT_THRESHOLD")
	setInt(&cfg.CandidateThreshold, "CANDIDATE_THRESHOLD")
	setInt(&cfg.MaxWorkers, "MAX_WORKERS")
	setString(&cfg.SessionStore, "SESSION_STORE")
	setInt(&cfg.SessionTTLMinutes, "SESSION_TTL_MINUTES")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.APIKeyHash, "API_KEY_HASH")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setBool(&cfg.UseBrowser, "USE_BROWSER")
	setBool(&cfg.Verbose, "VERBOSE")
}
