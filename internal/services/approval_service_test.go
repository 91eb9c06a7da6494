package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vulgatecnn/afa100-sub001/domain"
	"github.com/vulgatecnn/afa100-sub001/internal/mocks"
)

func createApprovalServiceForTest(t *testing.T) (domain.ApprovalService, *mocks.MockApplicationRepository, *mocks.MockCredentialRepository, *mocks.MockDeliveryGateway) {
	t.Helper()

	appRepo := mocks.NewMockApplicationRepository()
	credRepo := mocks.NewMockCredentialRepository()
	gateway := mocks.NewMockDeliveryGateway()
	svc := NewApprovalService(
		appRepo,
		credRepo,
		mocks.NewMockCodeGenerator(),
		gateway,
		mocks.NewMockQREncoder(),
		mocks.NewMockAuditLogger(),
		IssueDefaults{UsageLimit: 1, ValidHours: 24},
		newTestLogger(),
	)
	return svc, appRepo, credRepo, gateway
}

func TestApprovalServiceImpl_Approve(t *testing.T) {
	svc, appRepo, _, gateway := createApprovalServiceForTest(t)
	app := newPendingApplication(t)
	appRepo.Seed(app)

	cfg := domain.IssueConfig{UsageLimit: 2, ValidHours: 8, DeviceScope: []string{"dev-1"}}
	cred, err := svc.Approve(context.Background(), app.ID, cfg, "reviewer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cred.Status != domain.CredentialActive {
		t.Errorf("expected Active credential, got %s", cred.Status)
	}
	if cred.UsageCount != 0 || cred.UsageLimit != 2 {
		t.Errorf("unexpected usage fields: count=%d limit=%d", cred.UsageCount, cred.UsageLimit)
	}
	if !cred.ValidFrom.Before(cred.ValidUntil) {
		t.Error("validFrom must precede validUntil")
	}
	wantUntil := cred.ValidFrom.Add(8 * time.Hour)
	if !cred.ValidUntil.Equal(wantUntil) {
		t.Errorf("expected validUntil %v, got %v", wantUntil, cred.ValidUntil)
	}

	stored := appRepo.Get(app.ID)
	if stored.State != domain.ApplicationApproved {
		t.Errorf("expected application Approved, got %s", stored.State)
	}
	if stored.ReviewedBy != "reviewer-1" || stored.ReviewedAt == nil {
		t.Error("review fields must be set on approval")
	}

	sent := gateway.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sent))
	}
	if sent[0].Payload.CodeValue != cred.CodeValue {
		t.Error("delivered payload must carry the issued code")
	}
	if sent[0].Payload.QREncoding == "" {
		t.Error("delivered payload must carry a QR encoding")
	}
}

func TestApprovalServiceImpl_ApproveDefaults(t *testing.T) {
	svc, appRepo, _, _ := createApprovalServiceForTest(t)
	app := newPendingApplication(t)
	appRepo.Seed(app)

	cred, err := svc.Approve(context.Background(), app.ID, domain.IssueConfig{}, "reviewer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.UsageLimit != 1 {
		t.Errorf("expected default usage limit 1, got %d", cred.UsageLimit)
	}
	want := cred.ValidFrom.Add(24 * time.Hour)
	if !cred.ValidUntil.Equal(want) {
		t.Errorf("expected default 24h validity, got %v", cred.ValidUntil.Sub(cred.ValidFrom))
	}
}

func TestApprovalServiceImpl_ApproveInvalid(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(appRepo *mocks.MockApplicationRepository) string
		cfg         domain.IssueConfig
		expectedErr error
	}{
		{
			name: "application not pending",
			setup: func(appRepo *mocks.MockApplicationRepository) string {
				app := newPendingApplication(t)
				app.State = domain.ApplicationApproved
				appRepo.Seed(app)
				return app.ID
			},
			cfg:         domain.IssueConfig{UsageLimit: 1, ValidHours: 8},
			expectedErr: domain.ErrInvalidState,
		},
		{
			name: "application missing",
			setup: func(appRepo *mocks.MockApplicationRepository) string {
				return "no-such-application"
			},
			cfg:         domain.IssueConfig{UsageLimit: 1, ValidHours: 8},
			expectedErr: domain.ErrApplicationNotFound,
		},
		{
			name: "usage limit below one",
			setup: func(appRepo *mocks.MockApplicationRepository) string {
				app := newPendingApplication(t)
				appRepo.Seed(app)
				return app.ID
			},
			cfg:         domain.IssueConfig{UsageLimit: -1, ValidHours: 8},
			expectedErr: domain.ErrInvalidConfig,
		},
		{
			name: "negative valid hours",
			setup: func(appRepo *mocks.MockApplicationRepository) string {
				app := newPendingApplication(t)
				appRepo.Seed(app)
				return app.ID
			},
			cfg:         domain.IssueConfig{UsageLimit: 1, ValidHours: -4},
			expectedErr: domain.ErrInvalidConfig,
		},
		{
			name: "time window out of range",
			setup: func(appRepo *mocks.MockApplicationRepository) string {
				app := newPendingApplication(t)
				appRepo.Seed(app)
				return app.ID
			},
			cfg: domain.IssueConfig{
				UsageLimit: 1, ValidHours: 8,
				TimeWindow: &domain.TimeWindow{StartMinute: 9 * 60, EndMinute: 25 * 60},
			},
			expectedErr: domain.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, appRepo, _, _ := createApprovalServiceForTest(t)
			id := tt.setup(appRepo)

			_, err := svc.Approve(context.Background(), id, tt.cfg, "reviewer-1")
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestApprovalServiceImpl_DeliveryFailureDoesNotUndoApproval(t *testing.T) {
	svc, appRepo, credRepo, gateway := createApprovalServiceForTest(t)
	app := newPendingApplication(t)
	appRepo.Seed(app)
	gateway.SendFunc = func(ctx context.Context, destination string, channel domain.DeliveryChannel, payload domain.CredentialPayload) error {
		return errors.New("sms provider down")
	}

	cred, err := svc.Approve(context.Background(), app.ID, domain.IssueConfig{UsageLimit: 1, ValidHours: 8}, "reviewer-1")
	if err != nil {
		t.Fatalf("approval must survive delivery failure, got %v", err)
	}
	if appRepo.Get(app.ID).State != domain.ApplicationApproved {
		t.Error("application must stay Approved after delivery failure")
	}
	if credRepo.Get(cred.ID) == nil {
		t.Error("credential must stay stored after delivery failure")
	}
}

func TestApprovalServiceImpl_Reject(t *testing.T) {
	svc, appRepo, _, _ := createApprovalServiceForTest(t)
	app := newPendingApplication(t)
	appRepo.Seed(app)

	err := svc.Reject(context.Background(), app.ID, "duplicate request", "reviewer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := appRepo.Get(app.ID)
	if stored.State != domain.ApplicationRejected {
		t.Errorf("expected Rejected, got %s", stored.State)
	}
	if stored.RejectionReason != "duplicate request" {
		t.Errorf("unexpected rejection reason %q", stored.RejectionReason)
	}
	if stored.ReviewedBy != "reviewer-1" || stored.ReviewedAt == nil {
		t.Error("review fields must be set on rejection")
	}
}

func TestApprovalServiceImpl_RejectApprovedApplication(t *testing.T) {
	svc, appRepo, _, _ := createApprovalServiceForTest(t)
	app := newPendingApplication(t)
	appRepo.Seed(app)

	if _, err := svc.Approve(context.Background(), app.ID, domain.IssueConfig{UsageLimit: 1, ValidHours: 8}, "reviewer-1"); err != nil {
		t.Fatalf("setup approve failed: %v", err)
	}

	err := svc.Reject(context.Background(), app.ID, "duplicate request", "reviewer-2")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if appRepo.Get(app.ID).State != domain.ApplicationApproved {
		t.Error("failed reject must leave the application Approved")
	}
}

func TestApprovalServiceImpl_BatchApprovePartialFailure(t *testing.T) {
	svc, appRepo, _, _ := createApprovalServiceForTest(t)

	good1 := newPendingApplication(t)
	alreadyDone := newPendingApplication(t)
	alreadyDone.State = domain.ApplicationRejected
	good2 := newPendingApplication(t)
	appRepo.Seed(good1)
	appRepo.Seed(alreadyDone)
	appRepo.Seed(good2)

	ids := []string{good1.ID, alreadyDone.ID, "missing-id", good2.ID}
	results := svc.BatchApprove(context.Background(), ids, domain.IssueConfig{UsageLimit: 1, ValidHours: 8}, "reviewer-1")

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Credential == nil {
		t.Errorf("first application should succeed: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState for reviewed application, got %v", results[1].Err)
	}
	if !errors.Is(results[2].Err, domain.ErrApplicationNotFound) {
		t.Errorf("expected ErrApplicationNotFound, got %v", results[2].Err)
	}
	if results[3].Err != nil || results[3].Credential == nil {
		t.Errorf("failure on one id must not roll back later successes: %v", results[3].Err)
	}

	if appRepo.Get(good2.ID).State != domain.ApplicationApproved {
		t.Error("later application must be Approved despite earlier failures")
	}
}

func TestApprovalServiceImpl_BatchReject(t *testing.T) {
	svc, appRepo, _, _ := createApprovalServiceForTest(t)

	pending := newPendingApplication(t)
	approved := newPendingApplication(t)
	approved.State = domain.ApplicationApproved
	appRepo.Seed(pending)
	appRepo.Seed(approved)

	results := svc.BatchReject(context.Background(), []string{pending.ID, approved.ID}, "site closed", "reviewer-1")

	if results[0].Err != nil {
		t.Errorf("pending application should reject cleanly: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", results[1].Err)
	}
}
