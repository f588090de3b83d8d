// Package openai is the OpenAI chat-completions provider.
package openai

import (
	"context"
	"net/http"
	"time"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm/chatapi"
)

const (
	ProviderID         = "openai"
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	defaultTemperature = 0.7
)

// Config configures the client. Zero values fall back to the defaults.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	HTTP    *http.Client
}

// Client implements llm.Provider for OpenAI.
type Client struct {
	api   *chatapi.Client
	model string
}

// New creates a Client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HTTP == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		cfg.HTTP = &http.Client{Timeout: timeout}
	}
	return &Client{
		api:   &chatapi.Client{Provider: ProviderID, BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, HTTP: cfg.HTTP},
		model: cfg.Model,
	}
}

// ID returns the provider id.
func (c *Client) ID() string { return ProviderID }

// ProviderConfig describes this client for the registry.
func (c *Client) ProviderConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		ID:           ProviderID,
		Name:         "OpenAI",
		BaseURL:      c.api.BaseURL,
		DefaultModel: c.model,
		APIKey:       c.api.APIKey,
	}
}

// Generate performs a chat completion.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	if temperature == nil {
		temperature = llm.Float(defaultTemperature)
	}

	text, err := c.api.Complete(ctx, chatapi.ChatRequest{
		Model:       model,
		Messages:    req.AsMessages(),
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return llm.Response{}, err
	}
	return llm.ChatResponse(ProviderID, model, text), nil
}
