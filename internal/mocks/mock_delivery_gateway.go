package mocks

import (
	"context"
	"sync"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// SentPayload records one Send call for assertions
type SentPayload struct {
	Destination string
	Channel     domain.DeliveryChannel
	Payload     domain.CredentialPayload
}

// MockDeliveryGateway implements domain.DeliveryGateway for testing
type MockDeliveryGateway struct {
	SendFunc func(ctx context.Context, destination string, channel domain.DeliveryChannel, payload domain.CredentialPayload) error

	mu   sync.Mutex
	sent []SentPayload
}

// NewMockDeliveryGateway creates a new MockDeliveryGateway
func NewMockDeliveryGateway() *MockDeliveryGateway {
	return &MockDeliveryGateway{}
}

// Send records the payload; default behavior is success
func (m *MockDeliveryGateway) Send(ctx context.Context, destination string, channel domain.DeliveryChannel, payload domain.CredentialPayload) error {
	m.mu.Lock()
	m.sent = append(m.sent, SentPayload{Destination: destination, Channel: channel, Payload: payload})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, destination, channel, payload)
	}
	return nil
}

// Sent returns a copy of the recorded sends
func (m *MockDeliveryGateway) Sent() []SentPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentPayload, len(m.sent))
	copy(out, m.sent)
	return out
}

// Compile-time interface compliance verification
var _ domain.DeliveryGateway = (*MockDeliveryGateway)(nil)
