package mock

import (
	"context"
	"fmt"
)

// MockLabeler is a test double for ai.KeywordLabeler.
// It allows custom behavior injection via a function field.
type MockLabeler struct {
	// KeywordsFunc is called by Keywords if set.
	// If nil, uses default deterministic behavior.
	KeywordsFunc func(ctx context.Context, titles []string) ([]string, error)

	callCount int
	requested [][]string
}

// NewMockLabeler creates a mock labeler with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockLabeler() *MockLabeler {
	return &MockLabeler{}
}

// Keywords returns deterministic keywords derived from the title count.
func (m *MockLabeler) Keywords(ctx context.Context, titles []string) ([]string, error) {
	m.callCount++
	m.requested = append(m.requested, titles)

	if m.KeywordsFunc != nil {
		return m.KeywordsFunc(ctx, titles)
	}

	if len(titles) == 0 {
		return []string{}, nil
	}
	return []string{fmt.Sprintf("topic-%d", len(titles))}, nil
}

// CallCount returns the number of times Keywords was called.
func (m *MockLabeler) CallCount() int {
	return m.callCount
}

// Requests returns the title batches passed to Keywords, in call order.
func (m *MockLabeler) Requests() [][]string {
	return m.requested
}

// Reset clears the call count, recorded requests, and injected behavior.
func (m *MockLabeler) Reset() {
	m.callCount = 0
	m.requested = nil
	m.KeywordsFunc = nil
}
