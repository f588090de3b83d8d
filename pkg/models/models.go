// Package models defines the domain models for the thought organizer
package models

import (
	"time"
)

// ThoughtStatus represents where a thought is in its analysis lifecycle
type ThoughtStatus string

const (
	ThoughtStatusPending   ThoughtStatus = "pending"
	ThoughtStatusAnalyzing ThoughtStatus = "analyzing"
	ThoughtStatusCompleted ThoughtStatus = "completed"
	ThoughtStatusError     ThoughtStatus = "error"
)

// AnalysisStatusCompleted is the only status a finished analysis run reports.
const AnalysisStatusCompleted = "completed"

// SortOption selects the ordering of a thought listing
type SortOption string

const (
	SortByDate         SortOption = "date"
	SortByMarketImpact SortOption = "marketImpact"
	SortByViability    SortOption = "viability"
	SortByTotalScore   SortOption = "totalScore"
)

// Valid reports whether o is a known sort option.
func (o SortOption) Valid() bool {
	switch o {
	case SortByDate, SortByMarketImpact, SortByViability, SortByTotalScore:
		return true
	}
	return false
}

// ChatRole is the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// Thought is a short note captured by the user inside a section
type Thought struct {
	ID          string           `json:"id"`
	Content     string           `json:"content"`
	SectionID   string           `json:"sectionId"`
	Status      ThoughtStatus    `json:"status"`
	AIAnalysis  *ThoughtAnalysis `json:"aiAnalysis,omitempty"`
	Ranking     *Ranking         `json:"ranking,omitempty"`
	Insights    *AIResponse      `json:"insights,omitempty"` // Latest quick analysis
	ChatHistory []ChatMessage    `json:"chatHistory,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
}

// ThoughtAnalysis is the ordered collection of step results produced by
// one workflow run.
type ThoughtAnalysis struct {
	Status string       `json:"status"`
	Steps  []StepResult `json:"steps"`
}

// Step returns the result recorded for stepID, if any.
func (a *ThoughtAnalysis) Step(stepID string) (StepResult, bool) {
	if a == nil {
		return StepResult{}, false
	}
	for _, s := range a.Steps {
		if s.StepID == stepID {
			return s, true
		}
	}
	return StepResult{}, false
}

// StepResult holds either the content or the error of a single workflow step
type StepResult struct {
	StepID  string `json:"stepId"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the step ended in an error.
func (r StepResult) Failed() bool {
	return r.Error != ""
}

// Ranking is the scored market impact / viability pair, each in [0, 10]
type Ranking struct {
	MarketImpact int `json:"marketImpact"`
	Viability    int `json:"viability"`
}

// TotalScore is the sum of both scores.
func (r Ranking) TotalScore() int {
	return r.MarketImpact + r.Viability
}

// ChatMessage is one turn in a conversation about a thought
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AIResponse is the result of the quick, non-workflow analysis of a thought
type AIResponse struct {
	Enhancement    string  `json:"enhancement"`
	MarketResearch string  `json:"marketResearch"`
	BusinessCase   string  `json:"businessCase"`
	Ranking        Ranking `json:"ranking"`
}

// ThoughtChatContext is the background a chat about a thought is grounded in
type ThoughtChatContext struct {
	ThoughtContent string
	Enhancement    string
	MarketResearch string
	BusinessCase   string
	Analysis       []NamedContent // successful workflow step outputs
	Ranking        *Ranking
}

// NamedContent is a labelled block of text.
type NamedContent struct {
	Name    string
	Content string
}

// HealthStatus represents service health
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProblemDetails represents RFC 7807 Problem Details
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}
