package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

type fakeProvider struct {
	mu      sync.Mutex
	id      string
	text    string
	err     error
	healthy bool
	models  []string
	reqs    []Request
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) Generate(_ context.Context, req Request) (Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return Response{}, f.err
	}
	return ChatResponse(f.id, req.Model, f.text), nil
}

func (f *fakeProvider) HealthCheck(context.Context) bool { return f.healthy }

func (f *fakeProvider) ListModels(context.Context) []string { return f.models }

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type testRig struct {
	reg        *Registry
	ollama     *fakeProvider
	openai     *fakeProvider
	perplexity *fakeProvider
}

func newRig(openaiKey, perplexityKey string) *testRig {
	rig := &testRig{
		reg:        NewRegistry(nil),
		ollama:     &fakeProvider{id: "ollama", text: "local answer", healthy: true, models: []string{"llama2", "mistral"}},
		openai:     &fakeProvider{id: "openai", text: "openai answer"},
		perplexity: &fakeProvider{id: "perplexity", text: "perplexity answer"},
	}
	rig.reg.Register(ProviderConfig{ID: "ollama", DefaultModel: "llama2", IsLocal: true}, rig.ollama)
	rig.reg.Register(ProviderConfig{ID: "openai", DefaultModel: "gpt-3.5-turbo", APIKey: openaiKey}, rig.openai)
	rig.reg.Register(ProviderConfig{ID: "perplexity", DefaultModel: "sonar", APIKey: perplexityKey}, rig.perplexity)
	return rig
}

func TestResolve(t *testing.T) {
	rig := newRig("sk", "")

	_, _, err := rig.reg.Resolve(nil)
	assert.ErrorIs(t, err, ErrNoProviderAvailable)

	require.NoError(t, rig.reg.SetActive("ollama"))

	p, model, err := rig.reg.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.ID())
	assert.Equal(t, "llama2", model)

	p, model, err = rig.reg.Resolve(&models.ModelOverride{Provider: "openai", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.ID())
	assert.Equal(t, "gpt-4o", model)

	_, model, err = rig.reg.Resolve(&models.ModelOverride{Provider: "openai"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", model)

	_, _, err = rig.reg.Resolve(&models.ModelOverride{Provider: "anthropic"})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	assert.Equal(t, "ollama", rig.reg.Active(), "override must not change the active provider")
}

func TestGenerateWithFallback(t *testing.T) {
	t.Run("local failure falls back exactly once", func(t *testing.T) {
		rig := newRig("sk", "pk")
		require.NoError(t, rig.reg.SetActive("ollama"))
		rig.ollama.err = &ProviderError{Provider: "ollama", Message: "connection refused"}

		resp, err := rig.reg.GenerateWithFallback(context.Background(), PromptRequest("hi"), nil)
		require.NoError(t, err)
		assert.Equal(t, "openai answer", resp.Text)
		assert.Equal(t, 1, rig.ollama.calls())
		assert.Equal(t, 1, rig.openai.calls())
		assert.Equal(t, 0, rig.perplexity.calls())
		assert.Equal(t, "gpt-3.5-turbo", rig.openai.reqs[0].Model)
	})

	t.Run("failed fallback is not retried again", func(t *testing.T) {
		rig := newRig("sk", "pk")
		require.NoError(t, rig.reg.SetActive("ollama"))
		rig.ollama.err = &ProviderError{Provider: "ollama", Status: 500, Message: "boom"}
		rig.openai.err = &ProviderError{Provider: "openai", Status: 429, Message: "rate limited"}

		_, err := rig.reg.GenerateWithFallback(context.Background(), PromptRequest("hi"), nil)
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 429, perr.Status)
		assert.Equal(t, 1, rig.openai.calls())
		assert.Equal(t, 0, rig.perplexity.calls())
	})

	t.Run("hosted failure passes straight through", func(t *testing.T) {
		rig := newRig("sk", "pk")
		require.NoError(t, rig.reg.SetActive("openai"))
		rig.openai.err = &ProviderError{Provider: "openai", Status: 401, Message: "bad key"}

		_, err := rig.reg.GenerateWithFallback(context.Background(), PromptRequest("hi"), nil)
		assert.True(t, IsProviderError(err))
		assert.Equal(t, 1, rig.openai.calls())
		assert.Equal(t, 0, rig.perplexity.calls())
		assert.Equal(t, 0, rig.ollama.calls())
	})

	t.Run("local failure without hosted keys returns the local error", func(t *testing.T) {
		rig := newRig("", "")
		require.NoError(t, rig.reg.SetActive("ollama"))
		rig.ollama.err = &ProviderError{Provider: "ollama", Message: "down"}

		_, err := rig.reg.GenerateWithFallback(context.Background(), PromptRequest("hi"), nil)
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "ollama", perr.Provider)
		assert.Equal(t, 0, rig.openai.calls())
	})

	t.Run("configuration errors are not retried", func(t *testing.T) {
		rig := newRig("sk", "")
		require.NoError(t, rig.reg.SetActive("ollama"))
		rig.ollama.err = &ConfigurationError{Provider: "ollama", Reason: "nope"}

		_, err := rig.reg.GenerateWithFallback(context.Background(), PromptRequest("hi"), nil)
		assert.True(t, IsConfigurationError(err))
		assert.Equal(t, 0, rig.openai.calls())
	})

	t.Run("step override bypasses active provider", func(t *testing.T) {
		rig := newRig("sk", "pk")
		require.NoError(t, rig.reg.SetActive("ollama"))

		resp, err := rig.reg.GenerateWithFallback(context.Background(), PromptRequest("hi"),
			&models.ModelOverride{Provider: "perplexity", Model: "sonar-pro"})
		require.NoError(t, err)
		assert.Equal(t, "perplexity answer", resp.Text)
		assert.Equal(t, "sonar-pro", rig.perplexity.reqs[0].Model)
		assert.Equal(t, 0, rig.ollama.calls())
	})
}

func TestSelectProvider(t *testing.T) {
	t.Run("unhealthy local switches to hosted", func(t *testing.T) {
		rig := newRig("sk", "pk")
		rig.ollama.healthy = false

		id, err := rig.reg.SelectProvider(context.Background(), "ollama")
		require.NoError(t, err)
		assert.Equal(t, "openai", id)
		assert.Equal(t, "openai", rig.reg.Active())
	})

	t.Run("healthy local is selected", func(t *testing.T) {
		rig := newRig("sk", "")
		id, err := rig.reg.SelectProvider(context.Background(), "ollama")
		require.NoError(t, err)
		assert.Equal(t, "ollama", id)
	})

	t.Run("unhealthy local without hosted keys", func(t *testing.T) {
		rig := newRig("", "")
		rig.ollama.healthy = false

		_, err := rig.reg.SelectProvider(context.Background(), "ollama")
		assert.ErrorIs(t, err, ErrNoProviderAvailable)
		assert.Equal(t, "", rig.reg.Active())
	})

	t.Run("hosted without key", func(t *testing.T) {
		rig := newRig("", "")
		_, err := rig.reg.SelectProvider(context.Background(), "perplexity")
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("unknown provider", func(t *testing.T) {
		rig := newRig("", "")
		_, err := rig.reg.SelectProvider(context.Background(), "anthropic")
		assert.True(t, errors.Is(err, ErrUnknownProvider))
	})
}

func TestRegistryInfo(t *testing.T) {
	rig := newRig("sk", "")
	require.NoError(t, rig.reg.SetActive("openai"))

	infos := rig.reg.Providers()
	require.Len(t, infos, 3)
	assert.Equal(t, "ollama", infos[0].ID)
	assert.True(t, infos[0].Configured)
	assert.True(t, infos[1].Active)
	assert.False(t, infos[2].Configured)

	got, err := rig.reg.Models(context.Background(), "ollama")
	require.NoError(t, err)
	assert.Equal(t, []string{"llama2", "mistral"}, got)

	ok, err := rig.reg.HealthCheck(context.Background(), "perplexity")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, rig.reg.Ready())
	assert.True(t, IsConfigurationError(NewRegistry(nil).Ready()))
}

func TestSetDefaultModel(t *testing.T) {
	ctx := context.Background()

	t.Run("installed local model is used for later calls", func(t *testing.T) {
		rig := newRig("", "")
		require.NoError(t, rig.reg.SetActive("ollama"))
		require.NoError(t, rig.reg.SetDefaultModel(ctx, "ollama", "mistral"))

		_, model, err := rig.reg.Resolve(nil)
		require.NoError(t, err)
		assert.Equal(t, "mistral", model)

		_, err = rig.reg.GenerateWithFallback(ctx, PromptRequest("hi"), nil)
		require.NoError(t, err)
		assert.Equal(t, "mistral", rig.ollama.reqs[0].Model)
		assert.Equal(t, "mistral", rig.reg.Providers()[0].DefaultModel)
	})

	t.Run("model not installed locally", func(t *testing.T) {
		rig := newRig("", "")
		err := rig.reg.SetDefaultModel(ctx, "ollama", "phi3")
		assert.ErrorIs(t, err, ErrUnknownModel)
		assert.Equal(t, "llama2", rig.reg.Providers()[0].DefaultModel)
	})

	t.Run("local server with no models", func(t *testing.T) {
		rig := newRig("", "")
		rig.ollama.models = nil
		assert.True(t, IsProviderError(rig.reg.SetDefaultModel(ctx, "ollama", "llama2")))
	})

	t.Run("hosted providers accept any model", func(t *testing.T) {
		rig := newRig("sk", "")
		require.NoError(t, rig.reg.SetDefaultModel(ctx, "openai", "gpt-4o"))
		_, model, err := rig.reg.Resolve(&models.ModelOverride{Provider: "openai"})
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", model)
	})

	t.Run("empty model and unknown provider", func(t *testing.T) {
		rig := newRig("", "")
		assert.ErrorIs(t, rig.reg.SetDefaultModel(ctx, "openai", ""), ErrUnknownModel)
		assert.ErrorIs(t, rig.reg.SetDefaultModel(ctx, "anthropic", "x"), ErrUnknownProvider)
	})
}

func TestSelectProviderAdoptsInstalledModel(t *testing.T) {
	rig := newRig("", "")
	rig.ollama.models = []string{"mistral", "phi3"}

	id, err := rig.reg.SelectProvider(context.Background(), "ollama")
	require.NoError(t, err)
	assert.Equal(t, "ollama", id)

	_, model, err := rig.reg.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "mistral", model)

	rig.ollama.models = nil
	_, err = rig.reg.SelectProvider(context.Background(), "ollama")
	require.NoError(t, err)
	_, model, err = rig.reg.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "mistral", model, "an empty model list leaves the default alone")
}

type pullingProvider struct {
	fakeProvider
	pulled []string
}

func (p *pullingProvider) PullModel(_ context.Context, name string) error {
	p.pulled = append(p.pulled, name)
	return nil
}

func TestPullModel(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil)
	local := &pullingProvider{fakeProvider: fakeProvider{id: "ollama", healthy: true}}
	reg.Register(ProviderConfig{ID: "ollama", DefaultModel: "llama2", IsLocal: true}, local)
	reg.Register(ProviderConfig{ID: "openai", APIKey: "sk"}, &fakeProvider{id: "openai"})

	require.NoError(t, reg.PullModel(ctx, "ollama", "phi3"))
	assert.Equal(t, []string{"phi3"}, local.pulled)

	assert.True(t, IsConfigurationError(reg.PullModel(ctx, "openai", "gpt-4o")))
	assert.ErrorIs(t, reg.PullModel(ctx, "ollama", ""), ErrUnknownModel)
	assert.ErrorIs(t, reg.PullModel(ctx, "anthropic", "x"), ErrUnknownProvider)
}
