package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// rateLimitedProvider wraps a Provider with a token-bucket limiter so a burst
// of debate turns cannot overwhelm a local model-serving backend.
type rateLimitedProvider struct {
	Provider
	limiter *rate.Limiter
}

// WithRateLimit returns p limited to rps generation requests per second.
// A non-positive rps returns p unchanged.
func WithRateLimit(p Provider, rps float64) Provider {
	if rps <= 0 {
		return p
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedProvider{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *rateLimitedProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, MapTransportError(err, r.Name())
	}
	return r.Provider.Generate(ctx, req)
}
