package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/repository"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

// DefaultSectionName is used by EnsureDefault.
const DefaultSectionName = "Thought Analysis"

// SectionService manages sections and their workflows.
type SectionService struct {
	mu     sync.Mutex
	store  repository.Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewSectionService creates a new SectionService.
func NewSectionService(store repository.Repository, logger *logging.Logger) *SectionService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &SectionService{store: store, logger: logger, now: time.Now}
}

// List returns all sections.
func (s *SectionService) List(ctx context.Context) ([]models.Section, error) {
	return s.store.LoadSections(ctx)
}

// Get returns the section with the given id.
func (s *SectionService) Get(ctx context.Context, id string) (*models.Section, error) {
	sections, err := s.store.LoadSections(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sections {
		if sections[i].ID == id {
			return &sections[i], nil
		}
	}
	return nil, notFound("section", id)
}

// Create adds a section with the given workflow.
func (s *SectionService) Create(ctx context.Context, name string, workflow []models.WorkflowStep) (*models.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if err := models.ValidateWorkflow(workflow); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sections, err := s.store.LoadSections(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	section := models.Section{
		ID:        uuid.New().String(),
		Name:      name,
		Workflow:  models.CloneWorkflow(workflow),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveSections(ctx, append(sections, section)); err != nil {
		return nil, err
	}
	s.logger.Info("section created", "section_id", section.ID, "steps", len(workflow))
	return &section, nil
}

// CreateFromTemplate adds a section using a copy of a built-in template.
func (s *SectionService) CreateFromTemplate(ctx context.Context, name, templateID string) (*models.Section, error) {
	tmpl, ok := models.TemplateByID(templateID)
	if !ok {
		return nil, &ValidationError{Field: "template", Message: "unknown template " + templateID}
	}
	if strings.TrimSpace(name) == "" {
		name = tmpl.Name
	}
	return s.Create(ctx, name, tmpl.Steps)
}

// Update replaces a section's name and workflow.
func (s *SectionService) Update(ctx context.Context, id, name string, workflow []models.WorkflowStep) (*models.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if err := models.ValidateWorkflow(workflow); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sections, err := s.store.LoadSections(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sections {
		if sections[i].ID != id {
			continue
		}
		sections[i].Name = name
		sections[i].Workflow = models.CloneWorkflow(workflow)
		sections[i].UpdatedAt = s.now().UTC()
		if err := s.store.SaveSections(ctx, sections); err != nil {
			return nil, err
		}
		updated := sections[i]
		return &updated, nil
	}
	return nil, notFound("section", id)
}

// Delete removes a section and all of its thoughts.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sections, err := s.store.LoadSections(ctx)
	if err != nil {
		return err
	}
	kept := sections[:0]
	for _, sec := range sections {
		if sec.ID != id {
			kept = append(kept, sec)
		}
	}
	if len(kept) == len(sections) {
		return notFound("section", id)
	}
	if err := s.store.SaveSections(ctx, kept); err != nil {
		return err
	}
	if err := s.store.DeleteThoughts(ctx, id); err != nil {
		s.logger.Warn("failed to delete section thoughts", "section_id", id, "error", err)
	}
	s.logger.Info("section deleted", "section_id", id)
	return nil
}

// EnsureDefault creates the default section when none exist and returns
// the first section.
func (s *SectionService) EnsureDefault(ctx context.Context) (*models.Section, error) {
	sections, err := s.store.LoadSections(ctx)
	if err != nil {
		return nil, err
	}
	if len(sections) > 0 {
		return &sections[0], nil
	}
	return s.Create(ctx, DefaultSectionName, models.DefaultWorkflowTemplates[0].Steps)
}
