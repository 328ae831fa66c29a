// ABOUTME: Centralized configuration for the yaan assistant
// ABOUTME: Loads .env, an optional YAML file, then environment overrides with validation
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Preference backends
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// Config holds all configuration for the assistant
type Config struct {
	// Identity
	UserID   string `yaml:"user_id"`
	UserName string `yaml:"user_name"`

	// Storage settings
	DBPath            string `yaml:"db_path"`
	PreferenceBackend string `yaml:"preference_backend"`

	// Charm settings
	CharmHost   string `yaml:"charm_host"`
	CharmDBName string `yaml:"charm_db"`
	AutoSync    bool   `yaml:"auto_sync"`

	// OpenAI settings
	OpenAIKey   string        `yaml:"-"`
	ChatModel   string        `yaml:"chat_model"`
	LLMFallback bool          `yaml:"llm_fallback"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	RetryDelay  time.Duration `yaml:"retry_delay"`

	// Conversation settings
	HistoryLimit     int           `yaml:"history_limit"`
	QuestionInterval time.Duration `yaml:"question_interval"`
	AskProbability   float64       `yaml:"ask_probability"`
	Seed             int64         `yaml:"seed"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		UserID:            "default_user",
		UserName:          "User",
		DBPath:            filepath.Join(xdg.DataHome, "yaan", "yaan.db"),
		PreferenceBackend: BackendSQLite,
		CharmHost:         "charm.2389.dev",
		CharmDBName:       "yaan",
		AutoSync:          true,
		ChatModel:         "gpt-4o-mini",
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryDelay:        2 * time.Second,
		HistoryLimit:      20,
		QuestionInterval:  5 * time.Minute,
		AskProbability:    0.3,
		LogLevel:          "warn",
	}
}

// DefaultConfigPath is where the YAML config file lives unless YAAN_CONFIG says otherwise
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "yaan", "config.yaml")
}

// Load reads .env, the YAML config file and environment variables, in that order of precedence (lowest first)
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	path := getEnv("YAAN_CONFIG", DefaultConfigPath())
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.UserID = getEnv("YAAN_USER", c.UserID)
	c.UserName = getEnv("YAAN_USER_NAME", c.UserName)
	c.DBPath = getEnv("YAAN_DB_PATH", c.DBPath)
	c.PreferenceBackend = getEnv("YAAN_PREFERENCES", c.PreferenceBackend)
	c.CharmHost = getEnv("CHARM_HOST", c.CharmHost)
	c.CharmDBName = getEnv("CHARM_DB", c.CharmDBName)
	c.AutoSync = getEnvBool("CHARM_AUTO_SYNC", c.AutoSync)
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.ChatModel = getEnv("YAAN_OPENAI_MODEL", c.ChatModel)
	c.LLMFallback = getEnvBool("YAAN_LLM_FALLBACK", c.LLMFallback)
	c.Timeout = getEnvDuration("OPENAI_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("OPENAI_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("OPENAI_RETRY_DELAY", c.RetryDelay)
	c.HistoryLimit = getEnvInt("YAAN_HISTORY_LIMIT", c.HistoryLimit)
	c.QuestionInterval = getEnvDuration("YAAN_QUESTION_INTERVAL", c.QuestionInterval)
	c.AskProbability = getEnvFloat("YAAN_ASK_PROBABILITY", c.AskProbability)
	c.Seed = int64(getEnvInt("YAAN_SEED", int(c.Seed)))
	c.LogLevel = getEnv("YAAN_LOG_LEVEL", c.LogLevel)
}

func (c *Config) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("YAAN_USER must not be empty")
	}
	if c.PreferenceBackend != BackendSQLite && c.PreferenceBackend != BackendCharm {
		return fmt.Errorf("YAAN_PREFERENCES must be %q or %q, got %q", BackendSQLite, BackendCharm, c.PreferenceBackend)
	}
	if c.AskProbability < 0 || c.AskProbability > 1 {
		return fmt.Errorf("YAAN_ASK_PROBABILITY must be 0-1, got %f", c.AskProbability)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("YAAN_HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.QuestionInterval < 0 {
		return fmt.Errorf("YAAN_QUESTION_INTERVAL must not be negative, got %v", c.QuestionInterval)
	}
	if c.LLMFallback && c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when YAAN_LLM_FALLBACK is enabled")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
