package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

// ThoughtRequest is the body of thought add and edit calls.
type ThoughtRequest struct {
	Content string `json:"content"`
}

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	Message string `json:"message"`
}

// ListThoughts returns a section's thoughts
// (GET /api/v1/sections/{id}/thoughts)
func (s *Server) ListThoughts(c echo.Context, id string, params ListThoughtsParams) error {
	var sortBy models.SortOption
	if params.Sort != nil {
		sortBy = models.SortOption(*params.Sort)
	}
	limit := 0
	if params.Limit != nil {
		if *params.Limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must not be negative")
		}
		limit = *params.Limit
	}
	thoughts, err := s.Thoughts.List(c.Request().Context(), id, sortBy, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, thoughts)
}

// AddThought stores and analyzes a new thought
// (POST /api/v1/sections/{id}/thoughts)
func (s *Server) AddThought(c echo.Context, id string) error {
	var req ThoughtRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	thought, err := s.Thoughts.Add(c.Request().Context(), id, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, thought)
}

// EditThought changes a thought and re-analyzes it
// (PUT /api/v1/sections/{id}/thoughts/{tid})
func (s *Server) EditThought(c echo.Context, id, tid string) error {
	var req ThoughtRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	thought, err := s.Thoughts.Edit(c.Request().Context(), id, tid, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, thought)
}

// DeleteThought removes a thought
// (DELETE /api/v1/sections/{id}/thoughts/{tid})
func (s *Server) DeleteThought(c echo.Context, id, tid string) error {
	if err := s.Thoughts.Delete(c.Request().Context(), id, tid); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AnalyzeThought re-runs the section workflow
// (POST /api/v1/sections/{id}/thoughts/{tid}/analyze)
func (s *Server) AnalyzeThought(c echo.Context, id, tid string) error {
	thought, err := s.Thoughts.Retry(c.Request().Context(), id, tid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, thought)
}

// RankThought scores a thought
// (POST /api/v1/sections/{id}/thoughts/{tid}/rank)
func (s *Server) RankThought(c echo.Context, id, tid string) error {
	thought, err := s.Thoughts.Rank(c.Request().Context(), id, tid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, thought)
}

// ChatThought answers a question about a thought
// (POST /api/v1/sections/{id}/thoughts/{tid}/chat)
func (s *Server) ChatThought(c echo.Context, id, tid string) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	msg, err := s.Thoughts.Chat(c.Request().Context(), id, tid, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msg)
}

// ClearThoughtChat drops a thought's conversation
// (DELETE /api/v1/sections/{id}/thoughts/{tid}/chat)
func (s *Server) ClearThoughtChat(c echo.Context, id, tid string) error {
	if err := s.Thoughts.ClearChat(c.Request().Context(), id, tid); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
