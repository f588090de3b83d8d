package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/repository"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

// ErrNotFound is returned for unknown sections and thoughts.
var ErrNotFound = repository.ErrNotFound

// WorkflowRunner executes a section workflow against a note.
type WorkflowRunner interface {
	Run(ctx context.Context, note string, workflow []models.WorkflowStep) (models.ThoughtAnalysis, error)
}

// QuickAnalyzer produces the scored, non-workflow analysis of a note.
type QuickAnalyzer interface {
	Analyze(ctx context.Context, content string) models.AIResponse
}

// ChatResponder answers the last message of a conversation about a thought.
type ChatResponder interface {
	Reply(ctx context.Context, history []models.ChatMessage, thought *models.ThoughtChatContext) string
}

// ValidationError reports bad caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is caused by bad input, including
// rejected workflow definitions.
func IsValidationError(err error) bool {
	var ve *ValidationError
	var we *models.WorkflowError
	return errors.As(err, &ve) || errors.As(err, &we)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
