// Package ollama is the local-inference provider backed by an Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm/chatapi"
)

const (
	ProviderID     = "ollama"
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama2"

	maxErrorBodyBytes = 2048
)

// Config configures the client. Zero values fall back to the defaults.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	HTTP    *http.Client
}

var (
	_ llm.HealthChecker = (*Client)(nil)
	_ llm.ModelLister   = (*Client)(nil)
	_ llm.ModelPuller   = (*Client)(nil)
)

// Client implements llm.Provider for a local Ollama server.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
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
			timeout = 5 * time.Minute
		}
		cfg.HTTP = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    cfg.HTTP,
	}
}

// ID returns the provider id.
func (c *Client) ID() string { return ProviderID }

// ProviderConfig describes this client for the registry.
func (c *Client) ProviderConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		ID:           ProviderID,
		Name:         "Ollama",
		BaseURL:      c.baseURL,
		DefaultModel: c.model,
		IsLocal:      true,
	}
}

type options struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message llm.Message `json:"message"`
	Done    bool        `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate uses /api/chat for message lists and /api/generate for a single
// prompt. Streaming is always off.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	opts := options{Temperature: req.Temperature, NumPredict: req.MaxTokens}

	if len(req.Messages) > 0 {
		var out chatResponse
		if err := c.post(ctx, "/api/chat", chatRequest{Model: model, Messages: req.Messages, Options: opts}, &out); err != nil {
			return llm.Response{}, err
		}
		return llm.LocalResponse(ProviderID, model, out.Message.Content), nil
	}

	var out generateResponse
	if err := c.post(ctx, "/api/generate", generateRequest{Model: model, Prompt: req.Prompt, Options: opts}, &out); err != nil {
		return llm.Response{}, err
	}
	return llm.LocalResponse(ProviderID, model, out.Response), nil
}

// HealthCheck reports whether the server answers /api/tags.
func (c *Client) HealthCheck(ctx context.Context) bool {
	resp, err := c.get(ctx, "/api/tags")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// ListModels returns the names of the locally installed models, or an empty
// slice when the server cannot be queried.
func (c *Client) ListModels(ctx context.Context) []string {
	resp, err := c.get(ctx, "/api/tags")
	if err != nil {
		return []string{}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return []string{}
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return []string{}
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names
}

// PullModel asks the server to download a model and waits for it to finish.
func (c *Client) PullModel(ctx context.Context, name string) error {
	body := struct {
		Name   string `json:"name"`
		Stream bool   `json:"stream"`
	}{Name: name}
	return c.post(ctx, "/api/pull", body, nil)
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &llm.ProviderError{Provider: ProviderID, Message: "failed to marshal request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &llm.ProviderError{Provider: ProviderID, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &llm.ProviderError{Provider: ProviderID, Message: "local server unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &llm.ProviderError{
			Provider: ProviderID,
			Status:   resp.StatusCode,
			Message:  chatapi.ErrorMessage(errorBody, "Failed to generate completion"),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &llm.ProviderError{Provider: ProviderID, Message: "malformed response body", Err: err}
	}
	return nil
}
