// Package llmtest provides a scriptable llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/skillsync/profile-builder/internal/llm"
)

// MockLLMClient implements llm.Client with optional function fields.
// Calls are counted so tests can assert the model was invoked exactly once.
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier, opts llm.GenerationOptions) (string, error)
	GetModelFunc     func(tier llm.ModelTier) string
	CloseFunc        func() error

	mu      sync.Mutex
	calls   int
	prompts []string
}

// Returning builds a mock that always answers with output
func Returning(output string) *MockLLMClient {
	return &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier, llm.GenerationOptions) (string, error) {
			return output, nil
		},
	}
}

// Failing builds a mock whose every call fails with err
func Failing(err error) *MockLLMClient {
	return &MockLLMClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier, llm.GenerationOptions) (string, error) {
			return "", err
		},
	}
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, opts llm.GenerationOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier, opts)
	}
	return `{"full_name": "Mock Person"}`, nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

func (m *MockLLMClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns how many times GenerateJSON was invoked
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPrompt returns the most recent prompt, or "" before any call
func (m *MockLLMClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
