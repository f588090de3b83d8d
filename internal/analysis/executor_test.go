package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

// scriptedProvider answers each call with the next scripted reply. An entry
// with a non-nil err fails that call.
type scriptedProvider struct {
	mu      sync.Mutex
	id      string
	replies []scripted
	prompts []string
	reqs    []llm.Request
}

type scripted struct {
	text string
	err  error
}

func (p *scriptedProvider) ID() string { return p.id }

func (p *scriptedProvider) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, req.Prompt)
	p.reqs = append(p.reqs, req)
	i := len(p.prompts) - 1
	if i >= len(p.replies) {
		return llm.LocalResponse(p.id, req.Model, "reply"), nil
	}
	r := p.replies[i]
	if r.err != nil {
		return llm.Response{}, r.err
	}
	return llm.LocalResponse(p.id, req.Model, r.text), nil
}

type fixedSearcher struct {
	result  string
	queries []string
}

func (s *fixedSearcher) Search(_ context.Context, query string) string {
	s.queries = append(s.queries, query)
	return s.result
}

func localRegistry(p llm.Provider) *llm.Registry {
	reg := llm.NewRegistry(nil)
	reg.Register(llm.ProviderConfig{ID: p.ID(), DefaultModel: "llama2", IsLocal: true}, p)
	_ = reg.SetActive(p.ID())
	return reg
}

func TestRunProducesOneResultPerStepInOrder(t *testing.T) {
	p := &scriptedProvider{id: "ollama", replies: []scripted{{text: " a "}, {text: "b"}, {text: "c"}}}
	exec := NewExecutor(localRegistry(p), nil, nil)

	workflow := []models.WorkflowStep{
		{ID: "third", Name: "Third", Prompt: "T3", Order: 2},
		{ID: "first", Name: "First", Prompt: "T1", Order: 0},
		{ID: "second", Name: "Second", Prompt: "T2", Order: 1},
	}
	analysis, err := exec.Run(context.Background(), "note", workflow)
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisStatusCompleted, analysis.Status)
	require.Len(t, analysis.Steps, 3)
	assert.Equal(t, []models.StepResult{
		{StepID: "first", Content: "a"},
		{StepID: "second", Content: "b"},
		{StepID: "third", Content: "c"},
	}, analysis.Steps)
	assert.Equal(t, "T1\n\nnote", p.prompts[0])
}

func TestEndToEndContextThreading(t *testing.T) {
	p := &scriptedProvider{id: "ollama", replies: []scripted{{text: "A searchable index of local podcasts."}, {text: "Market looks good."}}}
	exec := NewExecutor(localRegistry(p), nil, nil)

	note := "build a local podcast search tool"
	workflow := []models.WorkflowStep{
		{ID: "s1", Name: "Enhance", Prompt: "Enhance:", Order: 0, ContextSteps: []string{}},
		{ID: "s2", Name: "Market", Prompt: "Market analysis using above:", Order: 1, ContextSteps: []string{"s1"}},
	}
	analysis, err := exec.Run(context.Background(), note, workflow)
	require.NoError(t, err)

	require.Len(t, p.prompts, 2)
	second := p.prompts[1]
	assert.Contains(t, second, "A searchable index of local podcasts.")
	assert.Contains(t, second, "Based on the above context:")
	assert.Contains(t, second, "Market analysis using above:")
	assert.Contains(t, second, note)
	assert.Equal(t,
		"Enhance:\nA searchable index of local podcasts.\n\nBased on the above context:\nMarket analysis using above:\n\n"+note,
		second)
	assert.Equal(t, "Market looks good.", analysis.Steps[1].Content)
}

func TestFailedStepIsIsolated(t *testing.T) {
	p := &scriptedProvider{id: "ollama", replies: []scripted{
		{err: &llm.ProviderError{Provider: "ollama", Status: 500, Message: "boom"}},
		{text: "second ok"},
	}}
	exec := NewExecutor(localRegistry(p), nil, nil)

	workflow := []models.WorkflowStep{
		{ID: "step1", Name: "Enhance", Prompt: "Enhance:", Order: 0},
		{ID: "step2", Name: "Market", Prompt: "Market:", Order: 1, ContextSteps: []string{"step1"}},
	}
	analysis, err := exec.Run(context.Background(), "idea", workflow)
	require.NoError(t, err)

	require.Len(t, analysis.Steps, 2)
	assert.Equal(t, StepFailureMessage, analysis.Steps[0].Error)
	assert.Empty(t, analysis.Steps[0].Content)
	assert.Equal(t, "second ok", analysis.Steps[1].Content)
	assert.Equal(t, models.AnalysisStatusCompleted, analysis.Status)

	require.Len(t, p.prompts, 2)
	assert.Equal(t, "Market:\n\nidea", p.prompts[1])
	assert.NotContains(t, p.prompts[1], "Enhance")
}

func TestWebSearchContext(t *testing.T) {
	t.Run("search results are placed ahead of step context", func(t *testing.T) {
		p := &scriptedProvider{id: "ollama", replies: []scripted{{text: "enhanced"}, {text: "market"}}}
		s := &fixedSearcher{result: "Web Search Results:\n\n1. X"}
		exec := NewExecutor(localRegistry(p), s, nil)

		workflow := []models.WorkflowStep{
			{ID: "step1", Name: "Enhance", Prompt: "Enhance:", Order: 0},
			{ID: "step2", Name: "Market", Prompt: "Market:", Order: 1, ContextSteps: []string{"step1"}, UseWebSearch: true},
		}
		_, err := exec.Run(context.Background(), "idea", workflow)
		require.NoError(t, err)

		assert.Equal(t, []string{"idea"}, s.queries)
		assert.Equal(t,
			"Web Search Context:\nWeb Search Results:\n\n1. X\n\nEnhance:\nenhanced\n\nBased on the above context:\nMarket:\n\nidea",
			p.prompts[1])
	})

	t.Run("empty search still runs the step", func(t *testing.T) {
		p := &scriptedProvider{id: "ollama", replies: []scripted{{text: "ok"}}}
		exec := NewExecutor(localRegistry(p), &fixedSearcher{}, nil)

		workflow := []models.WorkflowStep{{ID: "s", Name: "S", Prompt: "Research:", UseWebSearch: true}}
		analysis, err := exec.Run(context.Background(), "idea", workflow)
		require.NoError(t, err)

		assert.Equal(t, "Research:\n\nidea", p.prompts[0])
		assert.Equal(t, "ok", analysis.Steps[0].Content)
		assert.False(t, analysis.Steps[0].Failed())
	})
}

func TestRunFallsBackToHostedProvider(t *testing.T) {
	local := &scriptedProvider{id: "ollama", replies: []scripted{{err: &llm.ProviderError{Provider: "ollama", Message: "connection refused"}}}}
	hosted := &scriptedProvider{id: "openai", replies: []scripted{{text: "hosted answer"}}}

	reg := llm.NewRegistry(nil)
	reg.Register(llm.ProviderConfig{ID: "ollama", DefaultModel: "llama2", IsLocal: true}, local)
	reg.Register(llm.ProviderConfig{ID: "openai", DefaultModel: "gpt-3.5-turbo", APIKey: "sk"}, hosted)
	require.NoError(t, reg.SetActive("ollama"))

	analysis, err := NewExecutor(reg, nil, nil).Run(context.Background(), "idea",
		[]models.WorkflowStep{{ID: "s", Name: "S", Prompt: "P"}})
	require.NoError(t, err)

	assert.Equal(t, "hosted answer", analysis.Steps[0].Content)
	assert.Len(t, hosted.prompts, 1)
	assert.Equal(t, "gpt-3.5-turbo", hosted.reqs[0].Model)
}

func TestRunHonoursStepOverride(t *testing.T) {
	local := &scriptedProvider{id: "ollama"}
	hosted := &scriptedProvider{id: "perplexity", replies: []scripted{{text: "pinned"}}}

	reg := llm.NewRegistry(nil)
	reg.Register(llm.ProviderConfig{ID: "ollama", DefaultModel: "llama2", IsLocal: true}, local)
	reg.Register(llm.ProviderConfig{ID: "perplexity", DefaultModel: "sonar", APIKey: "pk"}, hosted)
	require.NoError(t, reg.SetActive("ollama"))

	workflow := []models.WorkflowStep{
		{ID: "a", Name: "A", Prompt: "P", Order: 0, Model: &models.ModelOverride{Provider: "perplexity", Model: "sonar-pro"}},
		{ID: "b", Name: "B", Prompt: "Q", Order: 1, Model: &models.ModelOverride{Model: "mistral"}},
	}
	analysis, err := NewExecutor(reg, nil, nil).Run(context.Background(), "idea", workflow)
	require.NoError(t, err)

	assert.Equal(t, "pinned", analysis.Steps[0].Content)
	assert.Equal(t, "sonar-pro", hosted.reqs[0].Model)
	require.Len(t, local.reqs, 1)
	assert.Equal(t, "mistral", local.reqs[0].Model)
}

func TestRunWithoutAnyProvider(t *testing.T) {
	reg := llm.NewRegistry(nil)
	reg.Register(llm.ProviderConfig{ID: "openai"}, &scriptedProvider{id: "openai"})

	_, err := NewExecutor(reg, nil, nil).Run(context.Background(), "idea", models.DefaultWorkflowTemplates[0].Steps)
	assert.True(t, llm.IsConfigurationError(err))
}

func TestRunWithCancelledContext(t *testing.T) {
	p := &scriptedProvider{id: "ollama"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analysis, err := NewExecutor(localRegistry(p), nil, nil).Run(ctx, "idea", models.DefaultWorkflowTemplates[0].Steps)
	require.NoError(t, err)
	require.Len(t, analysis.Steps, 3)
	for _, s := range analysis.Steps {
		assert.True(t, s.Failed())
	}
	assert.Empty(t, p.prompts)
}

func TestComposePrompt(t *testing.T) {
	names := map[string]string{"a": "Alpha", "b": "Beta"}
	outputs := map[string]string{"a": "out-a", "b": "out-b"}

	step := models.WorkflowStep{Prompt: "Do it:", ContextSteps: []string{"b", "missing", "a"}}
	got := ComposePrompt(step, "note", names, outputs, "")
	assert.Equal(t, "Beta:\nout-b\n\nAlpha:\nout-a\n\nBased on the above context:\nDo it:\n\nnote", got)

	assert.Equal(t, "Do it:\n\nnote", ComposePrompt(models.WorkflowStep{Prompt: "Do it:"}, "note", names, outputs, ""))
	assert.True(t, strings.HasPrefix(ComposePrompt(models.WorkflowStep{Prompt: "P"}, "n", nil, nil, "S"), "Web Search Context:\nS\n\n"))
}

func TestPinOverride(t *testing.T) {
	assert.Nil(t, pinOverride(nil, ""))
	assert.Equal(t, &models.ModelOverride{Provider: "ollama"}, pinOverride(nil, "ollama"))
	explicit := &models.ModelOverride{Provider: "openai", Model: "gpt-4o"}
	assert.Same(t, explicit, pinOverride(explicit, "ollama"))
	assert.Equal(t, &models.ModelOverride{Provider: "ollama", Model: "phi3"}, pinOverride(&models.ModelOverride{Model: "phi3"}, "ollama"))
}

var errBoom = errors.New("boom")
