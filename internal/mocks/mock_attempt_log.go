package mocks

import (
	"context"
	"sync"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// MockAttemptLog implements domain.AttemptLog for testing
type MockAttemptLog struct {
	RecordFunc func(ctx context.Context, attempt *domain.ValidationAttempt) error
	RecentFunc func(ctx context.Context, credentialID string, limit int) ([]*domain.ValidationAttempt, error)

	mu       sync.Mutex
	recorded []*domain.ValidationAttempt
}

// NewMockAttemptLog creates a new MockAttemptLog
func NewMockAttemptLog() *MockAttemptLog {
	return &MockAttemptLog{}
}

// Record stores the attempt in memory
func (m *MockAttemptLog) Record(ctx context.Context, attempt *domain.ValidationAttempt) error {
	m.mu.Lock()
	cl := *attempt
	m.recorded = append(m.recorded, &cl)
	m.mu.Unlock()

	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, attempt)
	}
	return nil
}

// Recent returns recorded attempts for the credential, newest first
func (m *MockAttemptLog) Recent(ctx context.Context, credentialID string, limit int) ([]*domain.ValidationAttempt, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, credentialID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ValidationAttempt
	for i := len(m.recorded) - 1; i >= 0 && len(out) < limit; i-- {
		if m.recorded[i].CredentialID == credentialID {
			out = append(out, m.recorded[i])
		}
	}
	return out, nil
}

// Recorded returns all recorded attempts in arrival order
func (m *MockAttemptLog) Recorded() []*domain.ValidationAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.ValidationAttempt, len(m.recorded))
	copy(out, m.recorded)
	return out
}

// Compile-time interface compliance verification
var _ domain.AttemptLog = (*MockAttemptLog)(nil)
