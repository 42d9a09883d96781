// Package llm wraps the language-model invocation used to compose
// grounded answers.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrInvalidConfig indicates invalid configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Model is the invocation capability the answer pipeline depends on.
// Tests substitute fakes.
type Model interface {
	// Invoke sends a single prompt and returns the model's text output.
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for the OpenAI-compatible chat client.
type Config struct {
	// BaseURL is the base URL for the chat completions API.
	BaseURL string `koanf:"base_url"`

	// Model is the chat model to use.
	Model string `koanf:"model"`

	// APIKey authenticates against the API.
	APIKey string `koanf:"api_key"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// Client invokes an OpenAI-compatible chat model through langchaingo.
//
// Temperature is pinned to 0: repeated identical questions against the
// same context must yield stable answers.
type Client struct {
	llm    *openai.LLM
	config Config
}

// NewClient creates a chat client with the given configuration.
func NewClient(config Config) (*Client, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithModel(config.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	return &Client{llm: llm, config: config}, nil
}

// Invoke sends the prompt and returns the model's text output.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(0),
	)
	if err != nil {
		return "", fmt.Errorf("invoking model %s: %w", c.config.Model, err)
	}
	return out, nil
}

// Ensure Client implements Model.
var _ Model = (*Client)(nil)
