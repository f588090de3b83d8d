package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Middleware decorates a Provider with a cross-cutting concern.
type Middleware func(Provider) Provider

// Wrap applies middlewares in left-to-right order:
// Wrap(p, A, B) == A(B(p)).
func Wrap(inner Provider, mws ...Middleware) Provider {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			out = mws[i](out)
		}
	}
	return out
}

type providerFunc struct {
	id string
	fn func(ctx context.Context, req Request) (Response, error)
}

func (p providerFunc) ID() string { return p.id }

func (p providerFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return p.fn(ctx, req)
}

// WithTimeout bounds every call to d. A non-positive d disables it.
func WithTimeout(d time.Duration) Middleware {
	return func(next Provider) Provider {
		if d <= 0 {
			return next
		}
		return providerFunc{id: next.ID(), fn: func(ctx context.Context, req Request) (Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.Generate(ctx, req)
		}}
	}
}

// WithRateLimit limits calls to rps per second with the given burst.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Middleware {
	return func(next Provider) Provider {
		if rps <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		lim := rate.NewLimiter(rate.Limit(rps), burst)
		return providerFunc{id: next.ID(), fn: func(ctx context.Context, req Request) (Response, error) {
			if err := lim.Wait(ctx); err != nil {
				return Response{}, &ProviderError{Provider: next.ID(), Message: "rate limit wait aborted", Err: err}
			}
			return next.Generate(ctx, req)
		}}
	}
}

// WithLogging records the duration and outcome of each call.
func WithLogging(logger Logger) Middleware {
	return func(next Provider) Provider {
		if logger == nil {
			return next
		}
		return providerFunc{id: next.ID(), fn: func(ctx context.Context, req Request) (Response, error) {
			start := time.Now()
			resp, err := next.Generate(ctx, req)
			if err != nil {
				logger.Warn("provider call failed", "provider", next.ID(), "model", req.Model, "duration", time.Since(start), "error", err)
				return resp, err
			}
			logger.Debug("provider call completed", "provider", next.ID(), "model", resp.Model, "kind", resp.Kind.String(), "duration", time.Since(start))
			return resp, nil
		}}
	}
}
