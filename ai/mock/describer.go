package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync/atomic"
)

// MockDescriber is a test double for ai.Describer.
// It allows custom behavior injection via function fields.
type MockDescriber struct {
	// DescribeFunc is called by Describe if set.
	// If nil, uses default deterministic behavior.
	DescribeFunc func(ctx context.Context, data []byte) (string, error)

	callCount atomic.Int64
}

// NewMockDescriber creates a mock describer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockDescriber() *MockDescriber {
	return &MockDescriber{}
}

// Describe generates a deterministic description based on the content hash,
// so identical asset bytes always describe identically.
func (m *MockDescriber) Describe(ctx context.Context, data []byte) (string, error) {
	m.callCount.Add(1)

	if m.DescribeFunc != nil {
		return m.DescribeFunc(ctx, data)
	}

	h := fnv.New32a()
	h.Write(data)
	return fmt.Sprintf("mock description of asset %08x", h.Sum32()), nil
}

// CallCount returns the number of times Describe was called.
// Safe to read while concurrent describe calls are in flight.
func (m *MockDescriber) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockDescriber) Reset() {
	m.callCount.Store(0)
	m.DescribeFunc = nil
}
