package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQdrantConfigApplyDefaults(t *testing.T) {
	var cfg QdrantConfig
	cfg.ApplyDefaults()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6334, cfg.Port)
	assert.Equal(t, "passages", cfg.Collection)
	assert.Equal(t, uint64(1536), cfg.VectorSize)
	assert.False(t, cfg.UseTLS)
}

func TestQdrantConfigPreservesSetValues(t *testing.T) {
	cfg := QdrantConfig{
		Host:       "qdrant.internal",
		Port:       7443,
		Collection: "contracts",
		VectorSize: 384,
		UseTLS:     true,
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "qdrant.internal", cfg.Host)
	assert.Equal(t, 7443, cfg.Port)
	assert.Equal(t, "contracts", cfg.Collection)
	assert.Equal(t, uint64(384), cfg.VectorSize)
}
