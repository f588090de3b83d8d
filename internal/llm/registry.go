package llm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

type entry struct {
	cfg    ProviderConfig
	base   Provider // unwrapped adapter, used for health checks and model listing
	client Provider // base wrapped in middleware, used for generation
}

// ProviderInfo is the public view of a registered provider.
type ProviderInfo struct {
	ProviderConfig
	Configured bool `json:"configured"`
	Active     bool `json:"active"`
}

// Registry holds the configured providers and the active selection.
type Registry struct {
	mu      sync.RWMutex
	active  string
	order   []string
	entries map[string]*entry

	logger    Logger
	fallbacks metric.Int64Counter
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger Logger) *Registry {
	if logger == nil {
		logger = nopLogger{}
	}
	counter, _ := otel.Meter("thought-organizer/llm").Int64Counter(
		"llm.provider.fallbacks",
		metric.WithDescription("Local provider failures retried against a hosted provider"),
	)
	return &Registry{
		entries:   make(map[string]*entry),
		logger:    logger,
		fallbacks: counter,
	}
}

// Register adds a provider. Registration order decides which hosted provider
// is tried first on fallback.
func (r *Registry) Register(cfg ProviderConfig, p Provider, mws ...Middleware) {
	if cfg.ID == "" {
		cfg.ID = p.ID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[cfg.ID]; !exists {
		r.order = append(r.order, cfg.ID)
	}
	r.entries[cfg.ID] = &entry{cfg: cfg, base: p, client: Wrap(p, mws...)}
}

// Active returns the active provider id, or "" when none is selected.
func (r *Registry) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetActive selects a provider without probing it.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	r.active = id
	return nil
}

// Providers lists the registered providers in registration order.
func (r *Registry) Providers() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ProviderInfo, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		out = append(out, ProviderInfo{
			ProviderConfig: e.cfg,
			Configured:     e.cfg.Configured(),
			Active:         id == r.active,
		})
	}
	return out
}

// Ready returns a ConfigurationError when no registered provider could serve
// a request at all.
func (r *Registry) Ready() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if r.entries[id].cfg.Configured() {
			return nil
		}
	}
	return &ConfigurationError{Reason: "no AI provider configured"}
}

func (r *Registry) lookup(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Resolve picks the provider and model for a call. A step override pins its
// provider and model regardless of the active selection.
func (r *Registry) Resolve(override *models.ModelOverride) (Provider, string, error) {
	e, model, err := r.resolve(override)
	if err != nil {
		return nil, "", err
	}
	return e.client, model, nil
}

func (r *Registry) resolve(override *models.ModelOverride) (*entry, string, error) {
	if override != nil && override.Provider != "" {
		e, ok := r.lookup(override.Provider)
		if !ok {
			return nil, "", fmt.Errorf("%w: %s", ErrUnknownProvider, override.Provider)
		}
		model := override.Model
		if model == "" {
			model = e.cfg.DefaultModel
		}
		return e, model, nil
	}

	active := r.Active()
	if active == "" {
		return nil, "", ErrNoProviderAvailable
	}
	e, ok := r.lookup(active)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownProvider, active)
	}
	if override != nil && override.Model != "" {
		return e, override.Model, nil
	}
	return e, e.cfg.DefaultModel, nil
}

// hostedFallback returns the first hosted provider with credentials.
func (r *Registry) hostedFallback() (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		e := r.entries[id]
		if !e.cfg.IsLocal && e.cfg.APIKey != "" {
			return e, true
		}
	}
	return nil, false
}

// SelectProvider makes id the active provider. Selecting a local provider
// probes it first; when it is unreachable the first hosted provider with a
// key is selected instead. It returns the id that ended up active.
func (r *Registry) SelectProvider(ctx context.Context, id string) (string, error) {
	e, ok := r.lookup(id)
	if !ok {
		return r.Active(), fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}

	if !e.cfg.IsLocal {
		if e.cfg.APIKey == "" {
			return r.Active(), &ConfigurationError{Provider: id, Reason: "API key is not set"}
		}
		r.setActive(id)
		return id, nil
	}

	if r.healthy(ctx, e) {
		r.adoptInstalledModel(ctx, e)
		r.setActive(id)
		return id, nil
	}

	fb, ok := r.hostedFallback()
	if !ok {
		r.logger.Warn("local provider unreachable and no hosted provider configured", "provider", id)
		return r.Active(), ErrNoProviderAvailable
	}
	r.logger.Warn("local provider unreachable, switching to hosted provider", "provider", id, "fallback", fb.cfg.ID)
	r.setActive(fb.cfg.ID)
	return fb.cfg.ID, nil
}

func (r *Registry) setActive(id string) {
	r.mu.Lock()
	r.active = id
	r.mu.Unlock()
	r.logger.Info("active AI provider changed", "provider", id)
}

func (r *Registry) healthy(ctx context.Context, e *entry) bool {
	hc, ok := e.base.(HealthChecker)
	if !ok {
		return true
	}
	return hc.HealthCheck(ctx)
}

// HealthCheck probes one provider. Hosted providers report whether they
// have credentials.
func (r *Registry) HealthCheck(ctx context.Context, id string) (bool, error) {
	e, ok := r.lookup(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	if !e.cfg.IsLocal {
		return e.cfg.Configured(), nil
	}
	return r.healthy(ctx, e), nil
}

// Models lists the models a provider offers. Providers that cannot
// enumerate models report their default model only.
func (r *Registry) Models(ctx context.Context, id string) ([]string, error) {
	e, ok := r.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	if ml, ok := e.base.(ModelLister); ok {
		return ml.ListModels(ctx), nil
	}
	return []string{e.cfg.DefaultModel}, nil
}

// PullModel downloads model on provider id.
func (r *Registry) PullModel(ctx context.Context, id, model string) error {
	e, ok := r.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	if model == "" {
		return fmt.Errorf("%w: model is required", ErrUnknownModel)
	}
	mp, ok := e.base.(ModelPuller)
	if !ok {
		return &ConfigurationError{Provider: id, Reason: "provider cannot download models"}
	}
	r.logger.Info("pulling model", "provider", id, "model", model)
	return mp.PullModel(ctx, model)
}

// SetDefaultModel changes the model used for calls to id that do not name
// one. Local providers only accept a model that is installed.
func (r *Registry) SetDefaultModel(ctx context.Context, id, model string) error {
	e, ok := r.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	if model == "" {
		return fmt.Errorf("%w: model is required", ErrUnknownModel)
	}
	if ml, ok := e.base.(ModelLister); ok && e.cfg.IsLocal {
		installed := ml.ListModels(ctx)
		if len(installed) == 0 {
			return &ProviderError{Provider: id, Message: "no models available"}
		}
		if !slices.Contains(installed, model) {
			return fmt.Errorf("%w: %s has no model %q", ErrUnknownModel, id, model)
		}
	}
	r.setDefaultModel(id, model)
	return nil
}

// setDefaultModel swaps in a copy of the entry so callers holding the old
// entry keep a consistent view.
func (r *Registry) setDefaultModel(id, model string) {
	r.mu.Lock()
	old, ok := r.entries[id]
	if ok {
		next := *old
		next.cfg.DefaultModel = model
		r.entries[id] = &next
	}
	r.mu.Unlock()
	if ok {
		r.logger.Info("default model changed", "provider", id, "model", model)
	}
}

// adoptInstalledModel switches a local provider to its first installed model
// when the configured default is not installed.
func (r *Registry) adoptInstalledModel(ctx context.Context, e *entry) {
	ml, ok := e.base.(ModelLister)
	if !ok {
		return
	}
	installed := ml.ListModels(ctx)
	if len(installed) == 0 || slices.Contains(installed, e.cfg.DefaultModel) {
		return
	}
	r.logger.Warn("configured model not installed, using first installed model",
		"provider", e.cfg.ID, "configured", e.cfg.DefaultModel, "model", installed[0])
	r.setDefaultModel(e.cfg.ID, installed[0])
}

// GenerateWithFallback resolves a provider and calls it. A ProviderError
// from a local provider is retried exactly once against the first hosted
// provider with credentials. Hosted failures are returned as they are.
func (r *Registry) GenerateWithFallback(ctx context.Context, req Request, override *models.ModelOverride) (Response, error) {
	e, model, err := r.resolve(override)
	if err != nil {
		return Response{}, err
	}

	req.Model = model
	resp, err := e.client.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}

	var perr *ProviderError
	if !e.cfg.IsLocal || !errors.As(err, &perr) || ctx.Err() != nil {
		return Response{}, err
	}

	fb, ok := r.hostedFallback()
	if !ok {
		return Response{}, err
	}

	r.logger.Warn("local provider failed, retrying on hosted provider",
		"provider", e.cfg.ID, "fallback", fb.cfg.ID, "error", err)
	if r.fallbacks != nil {
		r.fallbacks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", e.cfg.ID),
			attribute.String("to", fb.cfg.ID),
		))
	}

	req.Model = fb.cfg.DefaultModel
	resp, ferr := fb.client.Generate(ctx, req)
	if ferr != nil {
		return Response{}, fmt.Errorf("fallback to %s after %s failure: %w", fb.cfg.ID, e.cfg.ID, ferr)
	}
	return resp, nil
}
