// Package config provides configuration loading for docqd.
//
// Configuration is loaded from a YAML file and overridden by
// environment variables, with hardcoded defaults underneath.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/docqd/internal/embeddings"
	"github.com/fyrsmithlabs/docqd/internal/highlight"
	"github.com/fyrsmithlabs/docqd/internal/llm"
	"github.com/fyrsmithlabs/docqd/internal/logging"
	"github.com/fyrsmithlabs/docqd/internal/passage"
	"github.com/fyrsmithlabs/docqd/internal/qa"
	"github.com/fyrsmithlabs/docqd/internal/retrieval"
	"github.com/fyrsmithlabs/docqd/internal/telemetry"
	"github.com/fyrsmithlabs/docqd/internal/vectorstore"
)

// Config holds the complete docqd configuration.
type Config struct {
	Server      ServerConfig       `koanf:"server"`
	Logging     logging.Config     `koanf:"logging"`
	VectorStore vectorstore.Config `koanf:"vectorstore"`
	Embeddings  embeddings.Config  `koanf:"embeddings"`
	LLM         llm.Config         `koanf:"llm"`
	Retrieval   retrieval.Config   `koanf:"retrieval"`
	Answer      AnswerConfig       `koanf:"answer"`
	Passage     passage.Config     `koanf:"passage"`
	Highlight   highlight.Config   `koanf:"highlight"`
	Telemetry   telemetry.Config   `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitRPS caps sustained requests per second per client IP.
	// Zero disables rate limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// AnswerConfig controls how model output is requested and parsed.
type AnswerConfig struct {
	// Mode is "plain" (free text plus full source list) or
	// "structured" (strict {answer, search} JSON).
	Mode string `koanf:"mode"`
}

// applyDefaults sets default values for missing configuration fields.
//
// StripHeader defaults to true here rather than in the passage package:
// false is a meaningful setting and only the loader can distinguish
// "unset" from "explicitly disabled" via the raw koanf keys.
func applyDefaults(cfg *Config, stripHeaderSet bool) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RateLimitRPS > 0 && cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = int(cfg.Server.RateLimitRPS) * 2
	}

	cfg.Logging.ApplyDefaults()
	if cfg.Logging.Fields == nil {
		cfg.Logging.Fields = map[string]string{"service": "docqd"}
	}

	cfg.VectorStore.ApplyDefaults()
	cfg.Embeddings.ApplyDefaults()
	cfg.LLM.ApplyDefaults()
	cfg.Retrieval.ApplyDefaults()
	cfg.Passage.ApplyDefaults()
	cfg.Highlight.ApplyDefaults()
	cfg.Telemetry.ApplyDefaults()

	if !stripHeaderSet {
		cfg.Passage.StripHeader = true
	}

	if cfg.Answer.Mode == "" {
		cfg.Answer.Mode = "plain"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit rps cannot be negative")
	}

	if err := c.Logging.Validate(); err != nil {
		return err
	}

	switch c.VectorStore.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("unknown vector store provider %q", c.VectorStore.Provider)
	}

	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval top_k must be at least 1, got %d", c.Retrieval.TopK)
	}

	if _, err := qa.ParseMode(c.Answer.Mode); err != nil {
		return err
	}

	if err := c.Telemetry.Validate(); err != nil {
		return err
	}

	return nil
}

// Mode returns the parsed answer mode. Call only after Validate.
func (c *Config) Mode() qa.Mode {
	mode, _ := qa.ParseMode(c.Answer.Mode)
	return mode
}
