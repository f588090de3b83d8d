// Package perplexity is the Perplexity chat-completions provider.
package perplexity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm/chatapi"
)

const (
	ProviderID     = "perplexity"
	DefaultBaseURL = "https://api.perplexity.ai"
	DefaultModel   = "llama-3.1-sonar-small-128k-online"

	defaultTemperature = 0.2
	defaultTopP        = 0.9
	defaultMaxTokens   = 1000
)

// Config configures the client. Zero values fall back to the defaults.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	HTTP    *http.Client
}

// Client implements llm.Provider for Perplexity.
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
		Name:         "Perplexity",
		BaseURL:      c.api.BaseURL,
		DefaultModel: c.model,
		APIKey:       c.api.APIKey,
	}
}

// Generate performs a chat completion. Perplexity rejects conversations that
// do not end with a user turn, so one is appended when needed.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	if temperature == nil {
		temperature = llm.Float(defaultTemperature)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	text, err := c.api.Complete(ctx, chatapi.ChatRequest{
		Model:       model,
		Messages:    EnsureUserLast(req.AsMessages()),
		Temperature: temperature,
		TopP:        llm.Float(defaultTopP),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return llm.Response{}, err
	}
	if text == "" {
		text = "No response from Perplexity API"
	}
	return llm.ChatResponse(ProviderID, model, text), nil
}

// EnsureUserLast appends a user turn quoting the last message when the
// conversation does not already end with one.
func EnsureUserLast(msgs []llm.Message) []llm.Message {
	if len(msgs) == 0 {
		return msgs
	}
	last := msgs[len(msgs)-1]
	if last.Role == llm.RoleUser {
		return msgs
	}
	return append(msgs, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Given the assistant's response: \"%s\", what would you like to know?", last.Content),
	})
}
