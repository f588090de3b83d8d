package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/search"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/services"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

// ResultSearcher returns parsed search hits for a query.
type ResultSearcher interface {
	Results(ctx context.Context, query string) ([]search.Result, error)
}

// Server holds the dependencies for the API server.
type Server struct {
	Sections  *services.SectionService
	Thoughts  *services.ThoughtService
	Providers *llm.Registry
	Searcher  ResultSearcher
	Logger    *logging.Logger
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates a new Server.
func NewServer(sections *services.SectionService, thoughts *services.ThoughtService, providers *llm.Registry, searcher ResultSearcher, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		Sections:  sections,
		Thoughts:  thoughts,
		Providers: providers,
		Searcher:  searcher,
		Logger:    logger,
	}
}

// SectionRequest is the body of section create and update calls. Template
// is only used on create when no workflow is given.
type SectionRequest struct {
	Name     string                `json:"name"`
	Template string                `json:"template,omitempty"`
	Workflow []models.WorkflowStep `json:"workflow"`
}

// ListSections returns all sections
// (GET /api/v1/sections)
func (s *Server) ListSections(c echo.Context) error {
	sections, err := s.Sections.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sections)
}

// CreateSection adds a section from a workflow or a template
// (POST /api/v1/sections)
func (s *Server) CreateSection(c echo.Context) error {
	ctx := c.Request().Context()

	var req SectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	var (
		section *models.Section
		err     error
	)
	if req.Workflow == nil && req.Template != "" {
		section, err = s.Sections.CreateFromTemplate(ctx, req.Name, req.Template)
	} else {
		section, err = s.Sections.Create(ctx, req.Name, req.Workflow)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, section)
}

// GetSection returns one section
// (GET /api/v1/sections/{id})
func (s *Server) GetSection(c echo.Context, id string) error {
	section, err := s.Sections.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, section)
}

// UpdateSection replaces a section's name and workflow
// (PUT /api/v1/sections/{id})
func (s *Server) UpdateSection(c echo.Context, id string) error {
	var req SectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	section, err := s.Sections.Update(c.Request().Context(), id, req.Name, req.Workflow)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, section)
}

// DeleteSection removes a section and its thoughts
// (DELETE /api/v1/sections/{id})
func (s *Server) DeleteSection(c echo.Context, id string) error {
	if err := s.Sections.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTemplates returns the built-in workflow templates
// (GET /api/v1/templates)
func (s *Server) ListTemplates(c echo.Context) error {
	out := make([]models.WorkflowTemplate, len(models.DefaultWorkflowTemplates))
	for i, t := range models.DefaultWorkflowTemplates {
		out[i] = t.Clone()
	}
	return c.JSON(http.StatusOK, out)
}
