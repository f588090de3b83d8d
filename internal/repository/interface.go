package repository

import (
	"context"
	"errors"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository persists sections and the thoughts of each section. Lists are
// stored and loaded whole; a missing list loads as empty.
type Repository interface {
	// LoadSections returns all sections in their saved order.
	LoadSections(ctx context.Context) ([]models.Section, error)
	// SaveSections replaces the stored sections.
	SaveSections(ctx context.Context, sections []models.Section) error
	// LoadThoughts returns the thoughts of a section in their saved order.
	LoadThoughts(ctx context.Context, sectionID string) ([]models.Thought, error)
	// SaveThoughts replaces the stored thoughts of a section.
	SaveThoughts(ctx context.Context, sectionID string, thoughts []models.Thought) error
	// DeleteThoughts removes every thought of a section.
	DeleteThoughts(ctx context.Context, sectionID string) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}
