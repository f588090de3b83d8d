package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
)

func TestGenerateUsesGenerateEndpointForPrompts(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama2","response":"expanded thought","done":true}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/"})
	resp, err := c.Generate(context.Background(), llm.Request{Prompt: "Enhance:\n\nidea", Temperature: llm.Float(0.3)})
	require.NoError(t, err)

	assert.Equal(t, llm.KindLocal, resp.Kind)
	assert.Equal(t, "expanded thought", resp.Text)
	assert.Equal(t, "llama2", got["model"])
	assert.Equal(t, "Enhance:\n\nidea", got["prompt"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, 0.3, got["options"].(map[string]any)["temperature"])
}

func TestGenerateUsesChatEndpointForMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "mistral", body.Model)
		assert.Len(t, body.Messages, 2)
		_, _ = w.Write([]byte(`{"model":"mistral","message":{"role":"assistant","content":"hello"},"done":true}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	resp, err := c.Generate(context.Background(), llm.Request{
		Model:    "mistral",
		Messages: []llm.Message{{Role: llm.RoleSystem, Content: "ctx"}, {Role: llm.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, "mistral", resp.Model)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("upstream error message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
		}))
		defer srv.Close()

		_, err := New(Config{BaseURL: srv.URL}).Generate(context.Background(), llm.PromptRequest("x"))
		var perr *llm.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusNotFound, perr.Status)
		assert.Equal(t, "model 'nope' not found", perr.Message)
	})

	t.Run("unparseable error body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}))
		defer srv.Close()

		_, err := New(Config{BaseURL: srv.URL}).Generate(context.Background(), llm.PromptRequest("x"))
		var perr *llm.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "Failed to generate completion", perr.Message)
	})

	t.Run("malformed success body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := New(Config{BaseURL: srv.URL}).Generate(context.Background(), llm.PromptRequest("x"))
		assert.True(t, llm.IsProviderError(err))
	})

	t.Run("unreachable server", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := New(Config{BaseURL: url}).Generate(context.Background(), llm.PromptRequest("x"))
		var perr *llm.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 0, perr.Status)
	})
}

func TestHealthAndModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama2:latest"},{"name":"mistral:7b"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	assert.True(t, c.HealthCheck(context.Background()))
	assert.Equal(t, []string{"llama2:latest", "mistral:7b"}, c.ListModels(context.Background()))
}

func TestHealthAndModelsWhenDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	assert.False(t, c.HealthCheck(context.Background()))
	models := c.ListModels(context.Background())
	assert.NotNil(t, models)
	assert.Empty(t, models)

	srv.Close()
	assert.Empty(t, c.ListModels(context.Background()))
}

func TestPullModel(t *testing.T) {
	var name string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pull", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		name, _ = body["name"].(string)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	require.NoError(t, New(Config{BaseURL: srv.URL}).PullModel(context.Background(), "phi3"))
	assert.Equal(t, "phi3", name)
}
