package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vulgatecnn/afa100-sub001/domain"
	"github.com/vulgatecnn/afa100-sub001/internal/mocks"
)

// newTestLogger returns a logger that discards output
func newTestLogger() *zap.Logger {
	return zap.NewNop()
}

// newPendingApplication builds a Pending application for review tests
func newPendingApplication(t *testing.T) *domain.VisitorApplication {
	t.Helper()

	now := time.Now().UTC()
	return &domain.VisitorApplication{
		ID:              uuid.NewString(),
		MerchantID:      "merchant-1",
		VisitorName:     "Jane Visitor",
		VisitorPhone:    "+12025550100",
		VisitorEmail:    "jane@example.com",
		Purpose:         "vendor meeting",
		VisitDate:       now.Add(24 * time.Hour),
		DurationMinutes: 60,
		State:           domain.ApplicationPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// newActiveCredential builds an Active credential seeded with the given
// usage limit, valid for eight hours from now
func newActiveCredential(t *testing.T, usageLimit int) *domain.AccessCredential {
	t.Helper()

	now := time.Now().UTC()
	return &domain.AccessCredential{
		ID:            uuid.NewString(),
		ApplicationID: uuid.NewString(),
		MerchantID:    "merchant-1",
		CodeValue:     "CODE" + uuid.NewString()[:8],
		UsageLimit:    usageLimit,
		UsageCount:    0,
		ValidFrom:     now.Add(-time.Minute),
		ValidUntil:    now.Add(8 * time.Hour),
		Status:        domain.CredentialActive,
		Version:       1,
		CreatedBy:     "reviewer-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// newValidationServiceForTest wires a validation service over mock
// dependencies with a generous timeout
func newValidationServiceForTest(credRepo *mocks.MockCredentialRepository) (domain.ValidationService, *mocks.MockAttemptLog, *mocks.MockAuditLogger) {
	attempts := mocks.NewMockAttemptLog()
	audit := mocks.NewMockAuditLogger()
	svc := NewValidationService(credRepo, attempts, audit, 3, 2*time.Second, newTestLogger())
	return svc, attempts, audit
}
