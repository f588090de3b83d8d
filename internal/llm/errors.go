package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProviderAvailable means neither the requested provider nor any
	// fallback can serve requests.
	ErrNoProviderAvailable = errors.New("no AI provider available")
	// ErrUnknownProvider means the provider id is not registered.
	ErrUnknownProvider = errors.New("unknown AI provider")
	// ErrUnknownModel means the provider does not offer the requested model.
	ErrUnknownModel = errors.New("unknown model")
)

// ConfigurationError reports a missing credential or setting. It is raised
// before any network call.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Provider == "" {
		return "provider not configured: " + e.Reason
	}
	return fmt.Sprintf("provider %s not configured: %s", e.Provider, e.Reason)
}

// ProviderError is a failed backend call. Status is the upstream HTTP
// status, or 0 when the request never produced a usable response.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cerr *ConfigurationError
	return errors.As(err, &cerr)
}

// IsProviderError reports whether err is or wraps a ProviderError.
func IsProviderError(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr)
}
