package vectorstore

import (
	"fmt"

	"go.uber.org/zap"
)

// Config selects and configures a vector store backend.
type Config struct {
	// Provider picks the backend: "chromem" (default, embedded) or
	// "qdrant" (external server).
	Provider string `koanf:"provider"`

	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "chromem"
	}
	c.Chromem.ApplyDefaults()
	c.Qdrant.ApplyDefaults()
}

// NewStore creates a Store for the configured provider.
//
// The chromem provider is the default: embedded, persistent, and with
// no external service to run. The qdrant provider needs a reachable
// Qdrant server and is the right choice when the index is shared or
// too large to hold locally.
func NewStore(cfg Config, embedder Embedder, logger *zap.Logger) (Store, error) {
	switch cfg.Provider {
	case "chromem", "":
		return NewChromemStore(cfg.Chromem, embedder, logger)
	case "qdrant":
		return NewQdrantStore(cfg.Qdrant, embedder, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q (supported: chromem, qdrant)", ErrInvalidConfig, cfg.Provider)
	}
}
