package llm

import "context"

// Provider turns a prompt or message list into generated text.
type Provider interface {
	// ID is the stable provider id ("ollama", "openai", "perplexity").
	ID() string
	// Generate performs one completion. Failures are *ProviderError or
	// *ConfigurationError.
	Generate(ctx context.Context, req Request) (Response, error)
}

// HealthChecker is implemented by providers that can probe reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	// ListModels returns the available model ids, or an empty slice on any
	// failure.
	ListModels(ctx context.Context) []string
}

// ModelPuller is implemented by local providers that can download models.
type ModelPuller interface {
	PullModel(ctx context.Context, name string) error
}

// ProviderConfig describes one configured backend.
type ProviderConfig struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BaseURL      string `json:"baseUrl"`
	DefaultModel string `json:"defaultModel"`
	IsLocal      bool   `json:"isLocal"`
	APIKey       string `json:"-"`
}

// Configured reports whether the provider can be called: local providers
// need no credentials, hosted ones need an API key.
func (c ProviderConfig) Configured() bool {
	return c.IsLocal || c.APIKey != ""
}

// Logger is the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
