package perplexity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm/chatapi"
)

func TestGenerateDefaults(t *testing.T) {
	var got chatapi.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer pplx", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"researched"}}]}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "pplx", BaseURL: srv.URL})
	resp, err := c.Generate(context.Background(), llm.PromptRequest("market?"))
	require.NoError(t, err)

	assert.Equal(t, "researched", resp.Text)
	assert.Equal(t, llm.KindChat, resp.Kind)
	assert.Equal(t, DefaultModel, got.Model)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.2, *got.Temperature)
	require.NotNil(t, got.TopP)
	assert.Equal(t, 0.9, *got.TopP)
	assert.Equal(t, 1000, got.MaxTokens)
	assert.False(t, got.Stream)
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	}))
	defer srv.Close()

	resp, err := New(Config{APIKey: "pplx", BaseURL: srv.URL}).Generate(context.Background(), llm.PromptRequest("x"))
	require.NoError(t, err)
	assert.Equal(t, "No response from Perplexity API", resp.Text)
}

func TestGenerateWithoutKey(t *testing.T) {
	_, err := New(Config{BaseURL: "http://127.0.0.1:1"}).Generate(context.Background(), llm.PromptRequest("x"))
	assert.True(t, llm.IsConfigurationError(err))
}

func TestEnsureUserLast(t *testing.T) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: "ctx"},
		{Role: llm.RoleAssistant, Content: "Here is an idea"},
	}
	out := EnsureUserLast(msgs)
	require.Len(t, out, 3)
	assert.Equal(t, llm.RoleUser, out[2].Role)
	assert.Equal(t, `Given the assistant's response: "Here is an idea", what would you like to know?`, out[2].Content)

	already := []llm.Message{{Role: llm.RoleUser, Content: "q"}}
	assert.Equal(t, already, EnsureUserLast(already))
	assert.Empty(t, EnsureUserLast(nil))
}
