package models

import (
	"fmt"
	"sort"
	"time"
)

// ModelOverride pins a workflow step to a specific provider and model.
type ModelOverride struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// WorkflowStep is one prompt stage of a section's analysis workflow.
type WorkflowStep struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Prompt       string         `json:"prompt"`                 // Prepended to the note content
	Order        int            `json:"order"`                  // Ascending execution order
	ContextSteps []string       `json:"contextSteps"`           // Earlier steps whose output is threaded in
	Model        *ModelOverride `json:"model,omitempty"`        // Optional provider+model pin
	UseWebSearch bool           `json:"useWebSearch,omitempty"` // Inject search results for the note
}

// Section groups thoughts and owns the workflow applied to each of them.
type Section struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Workflow  []WorkflowStep `json:"workflow"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// WorkflowTemplate is a named, reusable workflow definition.
type WorkflowTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Steps       []WorkflowStep `json:"steps"`
}

// DefaultWorkflowTemplates are offered when creating a section.
var DefaultWorkflowTemplates = []WorkflowTemplate{
	{
		ID:          "thought-analysis",
		Name:        "Thought Analysis",
		Description: "Analyze thoughts with enhancement, market analysis, and business case",
		Steps: []WorkflowStep{
			{
				ID:           "step1",
				Name:         "Thought Enhancement",
				Prompt:       "Enhance and expand upon this thought:",
				Order:        0,
				ContextSteps: []string{},
			},
			{
				ID:           "step2",
				Name:         "Market Analysis",
				Prompt:       "Provide a market analysis for this concept:",
				Order:        1,
				ContextSteps: []string{"step1"},
				UseWebSearch: true,
			},
			{
				ID:           "step3",
				Name:         "Business Case",
				Prompt:       "Develop a business case for this idea:",
				Order:        2,
				ContextSteps: []string{"step1", "step2"},
				UseWebSearch: true,
			},
		},
	},
	{
		ID:          "story-generator",
		Name:        "Story Generator",
		Description: "Generate creative stories from thoughts",
		Steps: []WorkflowStep{
			{
				ID:           "step1",
				Name:         "Story Generation",
				Prompt:       "Create a short story based on this thought:",
				Order:        0,
				ContextSteps: []string{},
			},
		},
	},
}

// TemplateByID returns a copy of the named default template.
func TemplateByID(id string) (WorkflowTemplate, bool) {
	for _, t := range DefaultWorkflowTemplates {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return WorkflowTemplate{}, false
}

// Clone returns a deep copy so callers can edit the steps freely.
func (t WorkflowTemplate) Clone() WorkflowTemplate {
	out := t
	out.Steps = CloneWorkflow(t.Steps)
	return out
}

// CloneWorkflow deep-copies a list of steps.
func CloneWorkflow(steps []WorkflowStep) []WorkflowStep {
	out := make([]WorkflowStep, len(steps))
	for i, s := range steps {
		out[i] = s
		out[i].ContextSteps = append([]string(nil), s.ContextSteps...)
		if s.Model != nil {
			m := *s.Model
			out[i].Model = &m
		}
	}
	return out
}

// SortedSteps returns the steps ordered by Order. Steps sharing an order keep
// their declaration order.
func SortedSteps(steps []WorkflowStep) []WorkflowStep {
	out := CloneWorkflow(steps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// WorkflowError describes why a workflow definition was rejected.
type WorkflowError struct {
	StepID string
	Reason string
}

func (e *WorkflowError) Error() string {
	if e.StepID == "" {
		return "invalid workflow: " + e.Reason
	}
	return fmt.Sprintf("invalid workflow step %q: %s", e.StepID, e.Reason)
}

// ValidateWorkflow checks that step ids are unique and non-empty and that
// every context reference points at a step with a strictly lower order.
func ValidateWorkflow(steps []WorkflowStep) error {
	orders := make(map[string]int, len(steps))
	for _, s := range steps {
		if s.ID == "" {
			return &WorkflowError{Reason: "step id is required"}
		}
		if _, dup := orders[s.ID]; dup {
			return &WorkflowError{StepID: s.ID, Reason: "duplicate step id"}
		}
		orders[s.ID] = s.Order
	}
	for _, s := range steps {
		for _, ref := range s.ContextSteps {
			refOrder, ok := orders[ref]
			if !ok {
				return &WorkflowError{StepID: s.ID, Reason: fmt.Sprintf("context step %q does not exist", ref)}
			}
			if refOrder >= s.Order {
				return &WorkflowError{StepID: s.ID, Reason: fmt.Sprintf("context step %q must run before this step", ref)}
			}
		}
	}
	return nil
}
