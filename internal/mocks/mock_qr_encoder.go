package mocks

import (
	"github.com/vulgatecnn/afa100-sub001/domain"
)

// MockQREncoder implements domain.QREncoder for testing
type MockQREncoder struct {
	EncodeFunc func(cred *domain.AccessCredential) (string, error)
	DecodeFunc func(token string) (string, error)
}

// NewMockQREncoder creates a new MockQREncoder
func NewMockQREncoder() *MockQREncoder {
	return &MockQREncoder{}
}

// Encode returns a trivial token wrapping the code value
func (m *MockQREncoder) Encode(cred *domain.AccessCredential) (string, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(cred)
	}
	return "qr:" + cred.CodeValue, nil
}

// Decode strips the trivial wrapping
func (m *MockQREncoder) Decode(token string) (string, error) {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(token)
	}
	if len(token) > 3 && token[:3] == "qr:" {
		return token[3:], nil
	}
	return token, nil
}

// Compile-time interface compliance verification
var _ domain.QREncoder = (*MockQREncoder)(nil)
