package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/eristic-ai/eristic/types"
)

// MapHTTPError converts an upstream HTTP status into a structured error.
func MapHTTPError(status int, msg, provider string) *types.Error {
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return types.NewError(types.ErrUpstreamTimeout, msg).
			WithHTTPStatus(http.StatusGatewayTimeout).
			WithRetryable(true).
			WithProvider(provider)
	case status == http.StatusServiceUnavailable:
		return types.NewError(types.ErrProviderUnavailable, msg).
			WithHTTPStatus(http.StatusServiceUnavailable).
			WithRetryable(true).
			WithProvider(provider)
	case status >= 500:
		return types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(http.StatusBadGateway).
			WithRetryable(true).
			WithProvider(provider)
	default:
		return types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(http.StatusBadGateway).
			WithProvider(provider)
	}
}

// MapTransportError converts a client-side transport failure into a
// structured error. Context expiry becomes an upstream timeout so callers
// can distinguish slow backends from unreachable ones.
func MapTransportError(err error, provider string) *types.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.ErrUpstreamTimeout, "request to "+provider+" timed out").
			WithHTTPStatus(http.StatusGatewayTimeout).
			WithRetryable(true).
			WithProvider(provider).
			WithCause(err)
	}
	return types.NewError(types.ErrProviderUnavailable, "unable to reach "+provider).
		WithHTTPStatus(http.StatusServiceUnavailable).
		WithRetryable(true).
		WithProvider(provider).
		WithCause(err)
}

// ReadErrorMessage extracts a human-readable message from an upstream error
// body, falling back to the raw text.
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}

	if len(data) == 0 {
		return "upstream returned an empty error body"
	}
	return fmt.Sprintf("upstream error: %s", data)
}
