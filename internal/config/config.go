// ABOUTME: Configuration loading and parsing for globustelecom-bot
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the corresponding fields are unset.
const (
	DefaultOfferThreshold = 3
	DefaultChunkSize      = 4000
	DefaultClaimTTL       = 15 * time.Minute
	DefaultGeminiModel    = "gemini-2.5-flash-lite"
)

// Config represents the complete bot configuration
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Redis      RedisConfig      `yaml:"redis"`
	Database   DatabaseConfig   `yaml:"database"`
	Escalation EscalationConfig `yaml:"escalation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// TelegramConfig holds Bot API credentials and the operator chat.
// OperatorChatID may be zero, in which case escalation degrades to a
// "support not configured" notice instead of relaying.
type TelegramConfig struct {
	Token          string `yaml:"token"`
	OperatorChatID int64  `yaml:"operator_chat_id"`
}

// GeminiConfig holds the answer-generation backend configuration
type GeminiConfig struct {
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	KnowledgeBase string `yaml:"knowledge_base"`
}

// RedisConfig holds the claim-store backend address. An empty address
// selects the in-memory claim store (single-process deployments).
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DatabaseConfig holds the user-profile database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EscalationConfig holds escalation-offer and claim-routing tuning
type EscalationConfig struct {
	OfferThreshold int           `yaml:"offer_threshold"`
	ChunkSize      int           `yaml:"chunk_size"`
	ClaimTTL       time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	ClaimTTLRaw string `yaml:"claim_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values and defaults applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills unset fields with their default values
func (c *Config) applyDefaults() {
	if c.Escalation.OfferThreshold == 0 {
		c.Escalation.OfferThreshold = DefaultOfferThreshold
	}
	if c.Escalation.ChunkSize == 0 {
		c.Escalation.ChunkSize = DefaultChunkSize
	}
	if c.Escalation.ClaimTTL == 0 {
		c.Escalation.ClaimTTL = DefaultClaimTTL
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultGeminiModel
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Escalation.OfferThreshold < 0 {
		return fmt.Errorf("escalation.offer_threshold must not be negative")
	}

	if c.Escalation.ChunkSize < 1 {
		return fmt.Errorf("escalation.chunk_size must be positive")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Escalation.ClaimTTLRaw != "" {
		ttl, err := time.ParseDuration(cfg.Escalation.ClaimTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing claim_ttl %q: %w", cfg.Escalation.ClaimTTLRaw, err)
		}
		cfg.Escalation.ClaimTTL = ttl
	}

	return nil
}
