package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ListThoughtsParams defines parameters for ListThoughts.
type ListThoughtsParams struct {
	// Sort is one of date, marketImpact, viability or totalScore.
	Sort *string `form:"sort,omitempty" json:"sort,omitempty"`
	// Limit caps the number of thoughts returned.
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// SearchParams defines parameters for Search.
type SearchParams struct {
	Q string `form:"q" json:"q"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /sections)
	ListSections(ctx echo.Context) error
	// (POST /sections)
	CreateSection(ctx echo.Context) error
	// (GET /sections/{id})
	GetSection(ctx echo.Context, id string) error
	// (PUT /sections/{id})
	UpdateSection(ctx echo.Context, id string) error
	// (DELETE /sections/{id})
	DeleteSection(ctx echo.Context, id string) error
	// (GET /templates)
	ListTemplates(ctx echo.Context) error
	// (GET /sections/{id}/thoughts)
	ListThoughts(ctx echo.Context, id string, params ListThoughtsParams) error
	// (POST /sections/{id}/thoughts)
	AddThought(ctx echo.Context, id string) error
	// (PUT /sections/{id}/thoughts/{tid})
	EditThought(ctx echo.Context, id string, tid string) error
	// (DELETE /sections/{id}/thoughts/{tid})
	DeleteThought(ctx echo.Context, id string, tid string) error
	// (POST /sections/{id}/thoughts/{tid}/analyze)
	AnalyzeThought(ctx echo.Context, id string, tid string) error
	// (POST /sections/{id}/thoughts/{tid}/rank)
	RankThought(ctx echo.Context, id string, tid string) error
	// (POST /sections/{id}/thoughts/{tid}/chat)
	ChatThought(ctx echo.Context, id string, tid string) error
	// (DELETE /sections/{id}/thoughts/{tid}/chat)
	ClearThoughtChat(ctx echo.Context, id string, tid string) error
	// (GET /providers)
	ListProviders(ctx echo.Context) error
	// (PUT /providers/active)
	SelectProvider(ctx echo.Context) error
	// (GET /providers/{id}/models)
	ListProviderModels(ctx echo.Context, id string) error
	// (PUT /providers/{id}/model)
	SelectProviderModel(ctx echo.Context, id string) error
	// (GET /search)
	Search(ctx echo.Context, params SearchParams) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func pathParam(ctx echo.Context, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return v, nil
}

func pathParams(ctx echo.Context) (string, string, error) {
	id, err := pathParam(ctx, "id")
	if err != nil {
		return "", "", err
	}
	tid, err := pathParam(ctx, "tid")
	if err != nil {
		return "", "", err
	}
	return id, tid, nil
}

// ListSections converts echo context to params.
func (w *ServerInterfaceWrapper) ListSections(ctx echo.Context) error {
	return w.Handler.ListSections(ctx)
}

// CreateSection converts echo context to params.
func (w *ServerInterfaceWrapper) CreateSection(ctx echo.Context) error {
	return w.Handler.CreateSection(ctx)
}

// GetSection converts echo context to params.
func (w *ServerInterfaceWrapper) GetSection(ctx echo.Context) error {
	id, err := pathParam(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.GetSection(ctx, id)
}

// UpdateSection converts echo context to params.
func (w *ServerInterfaceWrapper) UpdateSection(ctx echo.Context) error {
	id, err := pathParam(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.UpdateSection(ctx, id)
}

// DeleteSection converts echo context to params.
func (w *ServerInterfaceWrapper) DeleteSection(ctx echo.Context) error {
	id, err := pathParam(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.DeleteSection(ctx, id)
}

// ListTemplates converts echo context to params.
func (w *ServerInterfaceWrapper) ListTemplates(ctx echo.Context) error {
	return w.Handler.ListTemplates(ctx)
}

// ListThoughts converts echo context to params.
func (w *ServerInterfaceWrapper) ListThoughts(ctx echo.Context) error {
	id, err := pathParam(ctx, "id")
	if err != nil {
		return err
	}

	var params ListThoughtsParams
	err = runtime.BindQueryParameter("form", true, false, "sort", ctx.QueryParams(), &params.Sort)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter sort: %s", err))
	}
	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}
	return w.Handler.ListThoughts(ctx, id, params)
}

// AddThought converts echo context to params.
func (w *ServerInterfaceWrapper) AddThought(ctx echo.Context) error {
	id, err := pathParam(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.AddThought(ctx, id)
}

// EditThought converts echo context to params.
func (w *ServerInterfaceWrapper) EditThought(ctx echo.Context) error {
	id, tid, err := pathParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.EditThought(ctx, id, tid)
}

// DeleteThought converts echo context to params.
func (w *ServerInterfaceWrapper) DeleteThought(ctx echo.Context) error {
	id, tid, err := pathParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.DeleteThought(ctx, id, tid)
}

// AnalyzeThought converts echo context to params.
func (w *ServerInterfaceWrapper) AnalyzeThought(ctx echo.Context) error {
	id, tid, err := pathParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.AnalyzeThought(ctx, id, tid)
}

// RankThought converts echo context to params.
func (w *ServerInterfaceWrapper) RankThought(ctx echo.Context) error {
	id, tid, err := pathParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.RankThought(ctx, id, tid)
}

// ChatThought converts echo context to params.
func (w *ServerInterfaceWrapper) ChatThought(ctx echo.Context) error {
	id, tid, err := pathParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ChatThought(ctx, id, tid)
}

// ClearThoughtChat converts echo context to params.
func (w *ServerInterfaceWrapper) ClearThoughtChat(ctx echo.Context) error {
	id, tid, err := pathParams(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ClearThoughtChat(ctx, id, tid)
}

// ListProviders converts echo context to params.
func (w *ServerInterfaceWrapper) ListProviders(ctx echo.Context) error {
	return w.Handler.ListProviders(ctx)
}

// SelectProvider converts echo context to params.
func (w *ServerInterfaceWrapper) SelectProvider(ctx echo.Context) error {
	return w.Handler.SelectProvider(ctx)
}

// ListProviderModels converts echo context to params.
func (w *ServerInterfaceWrapper) ListProviderModels(ctx echo.Context) error {
	id, err := pathParam(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.ListProviderModels(ctx, id)
}

// SelectProviderModel converts echo context to params.
func (w *ServerInterfaceWrapper) SelectProviderModel(ctx echo.Context) error {
	id, err := pathParam(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.SelectProviderModel(ctx, id)
}

// Search converts echo context to params.
func (w *ServerInterfaceWrapper) Search(ctx echo.Context) error {
	var params SearchParams
	err := runtime.BindQueryParameter("form", true, true, "q", ctx.QueryParams(), &params.Q)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter q: %s", err))
	}
	return w.Handler.Search(ctx, params)
}

// EchoRouter is the subset of echo.Echo and echo.Group used for routing.
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers under a path prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.GET(baseURL+"/sections", wrapper.ListSections)
	router.POST(baseURL+"/sections", wrapper.CreateSection)
	router.GET(baseURL+"/sections/:id", wrapper.GetSection)
	router.PUT(baseURL+"/sections/:id", wrapper.UpdateSection)
	router.DELETE(baseURL+"/sections/:id", wrapper.DeleteSection)
	router.GET(baseURL+"/templates", wrapper.ListTemplates)
	router.GET(baseURL+"/sections/:id/thoughts", wrapper.ListThoughts)
	router.POST(baseURL+"/sections/:id/thoughts", wrapper.AddThought)
	router.PUT(baseURL+"/sections/:id/thoughts/:tid", wrapper.EditThought)
	router.DELETE(baseURL+"/sections/:id/thoughts/:tid", wrapper.DeleteThought)
	router.POST(baseURL+"/sections/:id/thoughts/:tid/analyze", wrapper.AnalyzeThought)
	router.POST(baseURL+"/sections/:id/thoughts/:tid/rank", wrapper.RankThought)
	router.POST(baseURL+"/sections/:id/thoughts/:tid/chat", wrapper.ChatThought)
	router.DELETE(baseURL+"/sections/:id/thoughts/:tid/chat", wrapper.ClearThoughtChat)
	router.GET(baseURL+"/providers", wrapper.ListProviders)
	router.PUT(baseURL+"/providers/active", wrapper.SelectProvider)
	router.GET(baseURL+"/providers/:id/models", wrapper.ListProviderModels)
	router.PUT(baseURL+"/providers/:id/model", wrapper.SelectProviderModel)
	router.GET(baseURL+"/search", wrapper.Search)
}
