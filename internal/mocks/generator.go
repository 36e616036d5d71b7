package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/summarizer-api/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, prompt string, opts generation.Options) (string, error)

	// Default response values
	Response string
	Err      error

	// Call tracking for verification
	GenerateCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Generate was called
		Count int

		// Prompts contains all prompts passed to Generate calls
		Prompts []string

		// Options contains the options of every call
		Options []generation.Options
	}
}

// Generate implements the generation.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts generation.Options) (string, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Prompts = append(m.GenerateCalls.Prompts, prompt)
	m.GenerateCalls.Options = append(m.GenerateCalls.Options, opts)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt, opts)
	}

	return m.Response, m.Err
}

// CallCount returns how many times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return m.GenerateCalls.Count
}

// Prompts returns a copy of the recorded prompts.
func (m *MockGenerator) Prompts() []string {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return append([]string(nil), m.GenerateCalls.Prompts...)
}

// RecordedOptions returns a copy of the recorded options.
func (m *MockGenerator) RecordedOptions() []generation.Options {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return append([]generation.Options(nil), m.GenerateCalls.Options...)
}

// NewMockGeneratorWithResponse creates a MockGenerator that returns the given text
func NewMockGeneratorWithResponse(response string) *MockGenerator {
	return &MockGenerator{
		Response: response,
	}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{
		Err: err,
	}
}

// MockGeneratorWithTransientFailure creates a MockGenerator that simulates a transient failure
func MockGeneratorWithTransientFailure() *MockGenerator {
	return &MockGenerator{
		Err: generation.ErrTransientFailure,
	}
}

// MockGeneratorWithContentBlocked creates a MockGenerator that simulates content being blocked
func MockGeneratorWithContentBlocked() *MockGenerator {
	return &MockGenerator{
		Err: generation.ErrContentBlocked,
	}
}

// Reset resets the call tracking state
func (m *MockGenerator) Reset() {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()

	m.GenerateCalls.Count = 0
	m.GenerateCalls.Prompts = nil
	m.GenerateCalls.Options = nil
}
