package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}

func TestApplyDefaultsPreservesSetValues(t *testing.T) {
	cfg := Config{Level: "debug", Format: "console"}
	cfg.ApplyDefaults()

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid json",
			cfg:  Config{Level: "info", Format: "json"},
		},
		{
			name: "valid console",
			cfg:  Config{Level: "warn", Format: "console"},
		},
		{
			name:    "bad format",
			cfg:     Config{Level: "info", Format: "logfmt"},
			wantErr: "format must be",
		},
		{
			name:    "bad level",
			cfg:     Config{Level: "loud", Format: "json"},
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNew(t *testing.T) {
	logger, err := New(Config{Level: "debug", Format: "console", Caller: true})
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDefaultLevel(t *testing.T) {
	logger, err := New(Config{})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNewConstantFields(t *testing.T) {
	logger, err := New(Config{Fields: map[string]string{"service": "docqd"}})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestSyncIgnoresStdoutErrors(t *testing.T) {
	logger, err := New(Config{})
	require.NoError(t, err)

	// Syncing a stdout-backed logger returns EINVAL or ENOTTY on Linux;
	// both are swallowed.
	assert.NoError(t, Sync(logger))
}
