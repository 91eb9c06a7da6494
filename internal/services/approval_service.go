package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// IssueDefaults seed the issue config when the reviewer omits fields
type IssueDefaults struct {
	UsageLimit int
	ValidHours int
}

// ApprovalServiceImpl implements domain.ApprovalService
type ApprovalServiceImpl struct {
	appRepo  domain.ApplicationRepository
	credRepo domain.CredentialRepository
	codeGen  domain.CodeGenerator
	gateway  domain.DeliveryGateway
	qrEnc    domain.QREncoder
	audit    domain.AuditLogger
	defaults IssueDefaults
	logger   *zap.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	appRepo domain.ApplicationRepository,
	credRepo domain.CredentialRepository,
	codeGen domain.CodeGenerator,
	gateway domain.DeliveryGateway,
	qrEnc domain.QREncoder,
	audit domain.AuditLogger,
	defaults IssueDefaults,
	logger *zap.Logger,
) domain.ApprovalService {
	return &ApprovalServiceImpl{
		appRepo:  appRepo,
		credRepo: credRepo,
		codeGen:  codeGen,
		gateway:  gateway,
		qrEnc:    qrEnc,
		audit:    audit,
		defaults: defaults,
		logger:   logger,
	}
}

// Approve implements domain.ApprovalService. The application must be
// Pending; on success a single Active credential is issued and the
// application moves to Approved. Delivery is best-effort and never undoes
// the approval.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, applicationID string, cfg domain.IssueConfig, reviewerID string) (*domain.AccessCredential, error) {
	cfg = s.applyDefaults(cfg)
	if err := validateIssueConfig(cfg); err != nil {
		return nil, err
	}

	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.State != domain.ApplicationPending {
		return nil, fmt.Errorf("approve %s in state %s: %w", applicationID, app.State, domain.ErrInvalidState)
	}

	code, err := s.codeGen.Generate(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cred := &domain.AccessCredential{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		MerchantID:    app.MerchantID,
		CodeValue:     code,
		UsageLimit:    cfg.UsageLimit,
		UsageCount:    0,
		ValidFrom:     now,
		ValidUntil:    now.Add(time.Duration(cfg.ValidHours) * time.Hour),
		TimeWindow:    cfg.TimeWindow,
		DeviceScope:   cfg.DeviceScope,
		Status:        domain.CredentialActive,
		Version:       1,
		CreatedBy:     reviewerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.credRepo.Create(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	app.State = domain.ApplicationApproved
	app.ReviewedBy = reviewerID
	app.ReviewedAt = &now
	app.UpdatedAt = now
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to mark application approved: %w", err)
	}

	s.logger.Info("application approved",
		zap.String("application_id", app.ID),
		zap.String("credential_id", cred.ID),
		zap.String("reviewer_id", reviewerID),
		zap.Int("usage_limit", cred.UsageLimit),
		zap.Time("valid_until", cred.ValidUntil))
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.ApplicationApprovedEvent).
		WithActor(reviewerID).
		WithMetadata("application_id", app.ID).
		WithCredential(cred))
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CredentialIssuedEvent).
		WithActor(reviewerID).
		WithCredential(cred))

	s.deliver(ctx, app, cred)
	return cred, nil
}

// Reject implements domain.ApprovalService
func (s *ApprovalServiceImpl) Reject(ctx context.Context, applicationID, reason, reviewerID string) error {
	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.State != domain.ApplicationPending {
		return fmt.Errorf("reject %s in state %s: %w", applicationID, app.State, domain.ErrInvalidState)
	}

	now := time.Now().UTC()
	app.State = domain.ApplicationRejected
	app.ReviewedBy = reviewerID
	app.ReviewedAt = &now
	app.RejectionReason = reason
	app.UpdatedAt = now
	if err := s.appRepo.Update(ctx, app); err != nil {
		return fmt.Errorf("failed to mark application rejected: %w", err)
	}

	s.logger.Info("application rejected",
		zap.String("application_id", app.ID),
		zap.String("reviewer_id", reviewerID),
		zap.String("reason", reason))
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.ApplicationRejectedEvent).
		WithActor(reviewerID).
		WithMetadata("application_id", app.ID).
		WithMetadata("reason", reason))
	return nil
}

// BatchApprove applies Approve to each id independently. A failure on one
// application never rolls back the others; the caller gets a per-id result.
func (s *ApprovalServiceImpl) BatchApprove(ctx context.Context, applicationIDs []string, cfg domain.IssueConfig, reviewerID string) []domain.BatchResult {
	results := make([]domain.BatchResult, 0, len(applicationIDs))
	for _, id := range applicationIDs {
		cred, err := s.Approve(ctx, id, cfg, reviewerID)
		results = append(results, domain.BatchResult{ApplicationID: id, Credential: cred, Err: err})
	}
	return results
}

// BatchReject applies Reject to each id independently
func (s *ApprovalServiceImpl) BatchReject(ctx context.Context, applicationIDs []string, reason, reviewerID string) []domain.BatchResult {
	results := make([]domain.BatchResult, 0, len(applicationIDs))
	for _, id := range applicationIDs {
		err := s.Reject(ctx, id, reason, reviewerID)
		results = append(results, domain.BatchResult{ApplicationID: id, Err: err})
	}
	return results
}

func (s *ApprovalServiceImpl) applyDefaults(cfg domain.IssueConfig) domain.IssueConfig {
	if cfg.UsageLimit == 0 {
		cfg.UsageLimit = s.defaults.UsageLimit
	}
	if cfg.ValidHours == 0 {
		cfg.ValidHours = s.defaults.ValidHours
	}
	return cfg
}

func (s *ApprovalServiceImpl) deliver(ctx context.Context, app *domain.VisitorApplication, cred *domain.AccessCredential) {
	destination := app.VisitorPhone
	channel := domain.ChannelSMS
	if destination == "" {
		destination = app.VisitorEmail
		channel = domain.ChannelEmail
	}
	if destination == "" {
		return
	}

	qrToken, err := s.qrEnc.Encode(cred)
	if err != nil {
		s.logger.Warn("failed to encode qr token", zap.String("credential_id", cred.ID), zap.Error(err))
	}

	payload := domain.CredentialPayload{
		CodeValue:  cred.CodeValue,
		ValidUntil: cred.ValidUntil,
		QREncoding: qrToken,
	}
	if err := s.gateway.Send(ctx, destination, channel, payload); err != nil {
		s.logger.Warn("credential delivery failed",
			zap.String("credential_id", cred.ID),
			zap.String("channel", string(channel)),
			zap.Error(err))
	}
}

func validateIssueConfig(cfg domain.IssueConfig) error {
	if cfg.UsageLimit < 1 {
		return fmt.Errorf("usage limit %d: %w", cfg.UsageLimit, domain.ErrInvalidConfig)
	}
	if cfg.ValidHours <= 0 {
		return fmt.Errorf("valid hours %d: %w", cfg.ValidHours, domain.ErrInvalidConfig)
	}
	if cfg.TimeWindow != nil {
		if cfg.TimeWindow.StartMinute < 0 || cfg.TimeWindow.StartMinute >= 24*60 ||
			cfg.TimeWindow.EndMinute < 0 || cfg.TimeWindow.EndMinute >= 24*60 {
			return fmt.Errorf("time window out of range: %w", domain.ErrInvalidConfig)
		}
	}
	return nil
}
