// Package mocks provides test doubles for the llm.Provider interface.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/eristic-ai/eristic/llm"
	"github.com/eristic-ai/eristic/types"
)

// MockProvider is a scripted llm.Provider. It records every request so
// tests can assert on prompt content and call counts.
type MockProvider struct {
	mu sync.RWMutex

	response         string
	err              error
	promptTokens     int
	completionTokens int
	delay            time.Duration
	available        bool
	models           []string

	generateFunc func(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error)

	requests  []*llm.GenerateRequest
	callCount int
}

// NewMockProvider creates a provider that succeeds with a fixed response.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		response:         "Mock response",
		promptTokens:     10,
		completionTokens: 20,
		available:        true,
		models:           []string{"mock-model"},
	}
}

// WithResponse sets the fixed response content.
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithError makes every Generate call fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithTokenUsage sets the reported token counts.
func (m *MockProvider) WithTokenUsage(prompt, completion int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptTokens = prompt
	m.completionTokens = completion
	return m
}

// WithDelay makes Generate sleep before answering, honoring ctx.
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithAvailable sets the IsAvailable result.
func (m *MockProvider) WithAvailable(available bool) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
	return m
}

// WithModels sets the ListModels result.
func (m *MockProvider) WithModels(models ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models = models
	return m
}

// WithGenerateFunc installs a custom Generate implementation. Requests
// are still recorded.
func (m *MockProvider) WithGenerateFunc(fn func(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateFunc = fn
	return m
}

// Name implements llm.Provider.
func (m *MockProvider) Name() string { return "mock" }

// Generate implements llm.Provider.
func (m *MockProvider) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	response := m.response
	err := m.err
	delay := m.delay
	fn := m.generateFunc
	prompt, completion := m.promptTokens, m.completionTokens
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, llm.MapTransportError(ctx.Err(), m.Name())
		case <-time.After(delay):
		}
	}

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = "mock-model"
	}
	return &llm.GenerateResponse{
		Content: response,
		Model:   model,
		Tokens: types.TokenUsage{
			Prompt:     prompt,
			Completion: completion,
			Total:      prompt + completion,
		},
		CreatedAt: time.Now(),
	}, nil
}

// IsAvailable implements llm.Provider.
func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available
}

// ListModels implements llm.Provider.
func (m *MockProvider) ListModels(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]string{}, m.models...), nil
}

// Requests returns a copy of all recorded requests.
func (m *MockProvider) Requests() []*llm.GenerateRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*llm.GenerateRequest{}, m.requests...)
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *llm.GenerateRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// CallCount returns the number of Generate calls.
func (m *MockProvider) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCount
}
