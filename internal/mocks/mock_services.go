package mocks

import (
	"context"
	"time"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// MockApprovalService implements domain.ApprovalService for testing
type MockApprovalService struct {
	ApproveFunc      func(ctx context.Context, applicationID string, cfg domain.IssueConfig, reviewerID string) (*domain.AccessCredential, error)
	RejectFunc       func(ctx context.Context, applicationID, reason, reviewerID string) error
	BatchApproveFunc func(ctx context.Context, applicationIDs []string, cfg domain.IssueConfig, reviewerID string) []domain.BatchResult
	BatchRejectFunc  func(ctx context.Context, applicationIDs []string, reason, reviewerID string) []domain.BatchResult
}

// NewMockApprovalService creates a new MockApprovalService
func NewMockApprovalService() *MockApprovalService {
	return &MockApprovalService{}
}

func (m *MockApprovalService) Approve(ctx context.Context, applicationID string, cfg domain.IssueConfig, reviewerID string) (*domain.AccessCredential, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, applicationID, cfg, reviewerID)
	}
	return nil, domain.ErrApplicationNotFound
}

func (m *MockApprovalService) Reject(ctx context.Context, applicationID, reason, reviewerID string) error {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, applicationID, reason, reviewerID)
	}
	return domain.ErrApplicationNotFound
}

func (m *MockApprovalService) BatchApprove(ctx context.Context, applicationIDs []string, cfg domain.IssueConfig, reviewerID string) []domain.BatchResult {
	if m.BatchApproveFunc != nil {
		return m.BatchApproveFunc(ctx, applicationIDs, cfg, reviewerID)
	}
	return nil
}

func (m *MockApprovalService) BatchReject(ctx context.Context, applicationIDs []string, reason, reviewerID string) []domain.BatchResult {
	if m.BatchRejectFunc != nil {
		return m.BatchRejectFunc(ctx, applicationIDs, reason, reviewerID)
	}
	return nil
}

// MockValidationService implements domain.ValidationService for testing
type MockValidationService struct {
	ValidateFunc func(ctx context.Context, codeValue, deviceID string, now time.Time) domain.Decision
}

// NewMockValidationService creates a new MockValidationService
func NewMockValidationService() *MockValidationService {
	return &MockValidationService{}
}

func (m *MockValidationService) Validate(ctx context.Context, codeValue, deviceID string, now time.Time) domain.Decision {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, codeValue, deviceID, now)
	}
	return domain.Deny(domain.DenyNotFound, "")
}

// MockLifecycleService implements domain.LifecycleService for testing
type MockLifecycleService struct {
	RegenerateFunc     func(ctx context.Context, credentialID string, overrides *domain.IssueConfig, actorID string) (*domain.AccessCredential, error)
	ExtendValidityFunc func(ctx context.Context, credentialID string, additionalHours int, actorID string) (*domain.AccessCredential, error)
	RevokeFunc         func(ctx context.Context, credentialID, actorID string) error
	ResendFunc         func(ctx context.Context, credentialID string, channel domain.DeliveryChannel, actorID string) error
}

// NewMockLifecycleService creates a new MockLifecycleService
func NewMockLifecycleService() *MockLifecycleService {
	return &MockLifecycleService{}
}

func (m *MockLifecycleService) Regenerate(ctx context.Context, credentialID string, overrides *domain.IssueConfig, actorID string) (*domain.AccessCredential, error) {
	if m.RegenerateFunc != nil {
		return m.RegenerateFunc(ctx, credentialID, overrides, actorID)
	}
	return nil, domain.ErrCredentialNotFound
}

func (m *MockLifecycleService) ExtendValidity(ctx context.Context, credentialID string, additionalHours int, actorID string) (*domain.AccessCredential, error) {
	if m.ExtendValidityFunc != nil {
		return m.ExtendValidityFunc(ctx, credentialID, additionalHours, actorID)
	}
	return nil, domain.ErrCredentialNotFound
}

func (m *MockLifecycleService) Revoke(ctx context.Context, credentialID, actorID string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, credentialID, actorID)
	}
	return domain.ErrCredentialNotFound
}

func (m *MockLifecycleService) Resend(ctx context.Context, credentialID string, channel domain.DeliveryChannel, actorID string) error {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, credentialID, channel, actorID)
	}
	return domain.ErrCredentialNotFound
}

// Compile-time interface compliance verification
var (
	_ domain.ApprovalService   = (*MockApprovalService)(nil)
	_ domain.ValidationService = (*MockValidationService)(nil)
	_ domain.LifecycleService  = (*MockLifecycleService)(nil)
)
