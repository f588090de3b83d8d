package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/search"
)

// ProvidersResponse lists the registered providers.
type ProvidersResponse struct {
	Active    string             `json:"active"`
	Providers []llm.ProviderInfo `json:"providers"`
}

// SelectProviderRequest is the body of a provider switch.
type SelectProviderRequest struct {
	Provider string `json:"provider"`
}

// SelectProviderResponse reports which provider ended up active, which may
// differ from the requested one after a fallback.
type SelectProviderResponse struct {
	Requested string `json:"requested"`
	Active    string `json:"active"`
	Fallback  bool   `json:"fallback"`
}

// ModelsResponse lists the models of one provider.
type ModelsResponse struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

// SelectModelRequest is the body of a default model change.
type SelectModelRequest struct {
	Model string `json:"model"`
}

// SelectModelResponse reports the provider's new default model.
type SelectModelResponse struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// SearchResponse holds parsed search hits and the formatted context block.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
	Context string          `json:"context"`
}

// ListProviders returns the provider registry
// (GET /api/v1/providers)
func (s *Server) ListProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, ProvidersResponse{
		Active:    s.Providers.Active(),
		Providers: s.Providers.Providers(),
	})
}

// SelectProvider switches the active provider
// (PUT /api/v1/providers/active)
func (s *Server) SelectProvider(c echo.Context) error {
	var req SelectProviderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if req.Provider == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "provider is required")
	}
	active, err := s.Providers.SelectProvider(c.Request().Context(), req.Provider)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SelectProviderResponse{
		Requested: req.Provider,
		Active:    active,
		Fallback:  active != req.Provider,
	})
}

// ListProviderModels lists a provider's models
// (GET /api/v1/providers/{id}/models)
func (s *Server) ListProviderModels(c echo.Context, id string) error {
	models, err := s.Providers.Models(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ModelsResponse{Provider: id, Models: models})
}

// SelectProviderModel changes a provider's default model
// (PUT /api/v1/providers/{id}/model)
func (s *Server) SelectProviderModel(c echo.Context, id string) error {
	var req SelectModelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "model is required")
	}
	if err := s.Providers.SetDefaultModel(c.Request().Context(), id, model); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SelectModelResponse{Provider: id, Model: model})
}

// Search runs a web search
// (GET /api/v1/search)
func (s *Server) Search(c echo.Context, params SearchParams) error {
	q := strings.TrimSpace(params.Q)
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	if s.Searcher == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "web search is disabled")
	}
	results, err := s.Searcher.Results(c.Request().Context(), q)
	if err != nil {
		s.Logger.Warn("web search failed", "query", q, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "web search failed")
	}
	if results == nil {
		results = []search.Result{}
	}
	return c.JSON(http.StatusOK, SearchResponse{Query: q, Results: results, Context: search.Format(results)})
}
