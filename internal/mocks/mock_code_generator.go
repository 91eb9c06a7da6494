package mocks

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// MockCodeGenerator implements domain.CodeGenerator for testing. Default
// behavior yields a deterministic unique sequence.
type MockCodeGenerator struct {
	GenerateFunc func(ctx context.Context) (string, error)

	counter atomic.Int64
}

// NewMockCodeGenerator creates a new MockCodeGenerator
func NewMockCodeGenerator() *MockCodeGenerator {
	return &MockCodeGenerator{}
}

// Generate returns the next code in the sequence
func (m *MockCodeGenerator) Generate(ctx context.Context) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx)
	}
	return fmt.Sprintf("TESTCODE%04d", m.counter.Add(1)), nil
}

// Compile-time interface compliance verification
var _ domain.CodeGenerator = (*MockCodeGenerator)(nil)
