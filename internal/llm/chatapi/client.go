// Package chatapi speaks the OpenAI-compatible chat-completions protocol
// shared by the hosted providers.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
)

const maxErrorBodyBytes = 2048

// ChatRequest is the chat-completions request body.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client posts chat-completion requests to {BaseURL}/chat/completions.
type Client struct {
	Provider string
	BaseURL  string
	APIKey   string
	HTTP     *http.Client
}

// Complete sends req and returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", &llm.ConfigurationError{Provider: c.Provider, Reason: "API key is not set"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", &llm.ProviderError{Provider: c.Provider, Message: "failed to marshal request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &llm.ProviderError{Provider: c.Provider, Message: "failed to create request", Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", &llm.ProviderError{Provider: c.Provider, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &llm.ProviderError{
			Provider: c.Provider,
			Status:   resp.StatusCode,
			Message:  ErrorMessage(errorBody, resp.Status),
		}
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", &llm.ProviderError{Provider: c.Provider, Message: "malformed response body", Err: err}
	}
	if len(completion.Choices) == 0 {
		return "", &llm.ProviderError{Provider: c.Provider, Message: "response contained no choices"}
	}
	return completion.Choices[0].Message.Content, nil
}

// ErrorMessage pulls the upstream message out of an error body shaped like
// {"error":{"message":...}} or {"error":"..."}. It returns fallback when
// neither shape parses.
func ErrorMessage(body []byte, fallback string) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}
	if fallback == "" {
		fallback = "request failed"
	}
	return fallback
}
