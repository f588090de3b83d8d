// Package analysis runs thoughts through AI workflows and shapes the
// results.
package analysis

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/search"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

// StepFailureMessage is recorded for a step whose provider call failed.
const StepFailureMessage = "Failed to generate analysis. Please check your configuration and try again."

const instrumentationName = "thought-organizer/analysis"

// Generator is the slice of the provider registry the analysis code needs.
type Generator interface {
	GenerateWithFallback(ctx context.Context, req llm.Request, override *models.ModelOverride) (llm.Response, error)
	Active() string
	Ready() error
}

// Executor runs workflows step by step.
type Executor struct {
	gen      Generator
	searcher search.Searcher
	logger   *logging.Logger
	tracer   trace.Tracer
	steps    metric.Int64Counter
}

// NewExecutor creates an Executor. searcher may be nil when web search is
// unavailable; steps asking for it then run without search context.
func NewExecutor(gen Generator, searcher search.Searcher, logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.Nop()
	}
	counter, _ := otel.Meter(instrumentationName).Int64Counter(
		"workflow.steps",
		metric.WithDescription("Workflow steps attempted, by outcome"),
	)
	return &Executor{
		gen:      gen,
		searcher: searcher,
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		steps:    counter,
	}
}

// Run executes every step of workflow against note, in ascending order.
// A failing step is recorded and the run continues; the returned analysis
// always has one result per step and status "completed". Run only fails when
// no provider is configured at all.
func (e *Executor) Run(ctx context.Context, note string, workflow []models.WorkflowStep) (models.ThoughtAnalysis, error) {
	if err := e.gen.Ready(); err != nil {
		return models.ThoughtAnalysis{}, err
	}

	steps := models.SortedSteps(workflow)
	active := e.gen.Active()

	ctx, span := e.tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.Int("workflow.steps", len(steps)),
		attribute.String("provider.active", active),
	))
	defer span.End()

	names := make(map[string]string, len(steps))
	for _, s := range steps {
		names[s.ID] = s.Name
	}

	outputs := make(map[string]string, len(steps))
	results := make([]models.StepResult, 0, len(steps))
	failed := 0

	for _, step := range steps {
		result := e.runStep(ctx, note, step, names, outputs, active)
		if result.Failed() {
			failed++
		} else {
			outputs[step.ID] = result.Content
		}
		results = append(results, result)
	}

	span.SetAttributes(attribute.Int("workflow.failed_steps", failed))
	e.logger.Info("workflow completed", "steps", len(steps), "failed", failed)

	return models.ThoughtAnalysis{Status: models.AnalysisStatusCompleted, Steps: results}, nil
}

func (e *Executor) runStep(ctx context.Context, note string, step models.WorkflowStep, names, outputs map[string]string, active string) models.StepResult {
	ctx, span := e.tracer.Start(ctx, "workflow.step", trace.WithAttributes(
		attribute.String("step.id", step.ID),
		attribute.String("step.name", step.Name),
		attribute.Bool("step.web_search", step.UseWebSearch),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return e.fail(ctx, span, step, err)
	}

	var searchContext string
	if step.UseWebSearch && e.searcher != nil {
		searchContext = e.searcher.Search(ctx, note)
		if searchContext == "" {
			e.logger.Debug("no web search context", "step", step.ID)
		}
	}

	prompt := ComposePrompt(step, note, names, outputs, searchContext)

	resp, err := e.gen.GenerateWithFallback(ctx, llm.PromptRequest(prompt), pinOverride(step.Model, active))
	if err != nil {
		return e.fail(ctx, span, step, err)
	}

	span.SetAttributes(attribute.String("provider", resp.Provider), attribute.String("model", resp.Model))
	e.count(ctx, "ok")
	return models.StepResult{StepID: step.ID, Content: NormalizeText(resp)}
}

func (e *Executor) fail(ctx context.Context, span trace.Span, step models.WorkflowStep, err error) models.StepResult {
	e.logger.Warn("workflow step failed", "step", step.ID, "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.count(ctx, "error")
	return models.StepResult{StepID: step.ID, Error: StepFailureMessage}
}

func (e *Executor) count(ctx context.Context, outcome string) {
	if e.steps != nil {
		e.steps.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// pinOverride fixes the provider for steps without an explicit one to the
// selection read when the run started.
func pinOverride(override *models.ModelOverride, active string) *models.ModelOverride {
	if override != nil && override.Provider != "" {
		return override
	}
	if active == "" {
		return override
	}
	pinned := &models.ModelOverride{Provider: active}
	if override != nil {
		pinned.Model = override.Model
	}
	return pinned
}

// ComposePrompt builds the prompt for one step. Web search context comes
// first, then the outputs of the referenced context steps in the order they
// are listed. Referenced steps without an output are skipped.
func ComposePrompt(step models.WorkflowStep, note string, names, outputs map[string]string, searchContext string) string {
	var block strings.Builder
	if searchContext != "" {
		block.WriteString("Web Search Context:\n")
		block.WriteString(searchContext)
		block.WriteString("\n\n")
	}
	for _, id := range step.ContextSteps {
		out, ok := outputs[id]
		if !ok {
			continue
		}
		block.WriteString(names[id])
		block.WriteString(":\n")
		block.WriteString(out)
		block.WriteString("\n\n")
	}

	if block.Len() == 0 {
		return step.Prompt + "\n\n" + note
	}
	return block.String() + "Based on the above context:\n" + step.Prompt + "\n\n" + note
}
