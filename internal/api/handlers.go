// Package api contains the HTTP handlers for the thought organizer
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/services"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

const (
	serviceName    = "thought-organizer"
	serviceVersion = "2.0.0"

	problemContentType = "application/problem+json"
)

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the health endpoint
type Handler struct {
	store    Pinger
	registry *llm.Registry
}

// NewHandler creates a new Handler with required dependencies
func NewHandler(store Pinger, registry *llm.Registry) *Handler {
	return &Handler{store: store, registry: registry}
}

// HandleHealth reports storage and provider state. It returns 503 when the
// store is unreachable.
func (h *Handler) HandleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := models.HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   serviceName,
		Version:   serviceVersion,
		Checks:    map[string]string{},
	}
	code := http.StatusOK

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			status.Status = "degraded"
			status.Checks["storage"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status.Checks["storage"] = "ok"
		}
	}
	if h.registry != nil {
		if err := h.registry.Ready(); err != nil {
			status.Checks["provider"] = err.Error()
		} else {
			status.Checks["provider"] = h.registry.Active()
		}
	}
	return c.JSON(code, status)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code, http.StatusText(he.Code)
	case services.IsValidationError(err):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, llm.ErrUnknownProvider):
		return http.StatusBadRequest, "Unknown provider"
	case errors.Is(err, llm.ErrUnknownModel):
		return http.StatusBadRequest, "Unknown model"
	case llm.IsConfigurationError(err), errors.Is(err, llm.ErrNoProviderAvailable):
		return http.StatusServiceUnavailable, "AI provider unavailable"
	case llm.IsProviderError(err):
		return http.StatusBadGateway, "AI provider error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// ErrorHandler writes every error as an RFC 7807 Problem Details response.
func ErrorHandler(logger *logging.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, title := statusFor(err)

		detail := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if msg, ok := he.Message.(string); ok {
				detail = msg
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.Path(), "status", code, "error", err)
		}

		problem := models.ProblemDetails{
			Type:     "about:blank",
			Title:    title,
			Status:   code,
			Detail:   detail,
			Instance: c.Request().URL.Path,
		}
		if sc := trace.SpanContextFromContext(c.Request().Context()); sc.HasTraceID() {
			problem.TraceID = sc.TraceID().String()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		data, mErr := json.Marshal(problem)
		if mErr != nil {
			_ = c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		_ = c.Blob(code, problemContentType, data)
	}
}
