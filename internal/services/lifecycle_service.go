package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// LifecycleServiceImpl implements domain.LifecycleService. Every mutation
// goes through the version CAS, so an in-flight validation racing a revoke
// or regenerate is invalidated and forced to re-read the new status.
type LifecycleServiceImpl struct {
	credRepo     domain.CredentialRepository
	appRepo      domain.ApplicationRepository
	codeGen      domain.CodeGenerator
	gateway      domain.DeliveryGateway
	qrEnc        domain.QREncoder
	audit        domain.AuditLogger
	redisClient  *redis.Client
	resendWindow time.Duration
	casRetries   int
	logger       *zap.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	credRepo domain.CredentialRepository,
	appRepo domain.ApplicationRepository,
	codeGen domain.CodeGenerator,
	gateway domain.DeliveryGateway,
	qrEnc domain.QREncoder,
	audit domain.AuditLogger,
	redisClient *redis.Client,
	resendWindow time.Duration,
	casRetries int,
	logger *zap.Logger,
) domain.LifecycleService {
	return &LifecycleServiceImpl{
		credRepo:     credRepo,
		appRepo:      appRepo,
		codeGen:      codeGen,
		gateway:      gateway,
		qrEnc:        qrEnc,
		audit:        audit,
		redisClient:  redisClient,
		resendWindow: resendWindow,
		casRetries:   casRetries,
		logger:       logger,
	}
}

// Regenerate implements domain.LifecycleService. The old credential is
// revoked before the replacement is issued, so its code never validates
// again once this returns. The new credential gets a fresh code and the inherited
// config unless overridden.
func (s *LifecycleServiceImpl) Regenerate(ctx context.Context, credentialID string, overrides *domain.IssueConfig, actorID string) (*domain.AccessCredential, error) {
	old, err := s.credRepo.FindByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if old.Status != domain.CredentialActive && old.Status != domain.CredentialExhausted {
		return nil, fmt.Errorf("regenerate credential in status %s: %w", old.Status, domain.ErrInvalidState)
	}

	if err := s.casMutate(ctx, old, func(c *domain.AccessCredential) error {
		if c.Status != domain.CredentialActive && c.Status != domain.CredentialExhausted {
			return fmt.Errorf("regenerate credential in status %s: %w", c.Status, domain.ErrInvalidState)
		}
		c.Status = domain.CredentialRevoked
		return nil
	}); err != nil {
		return nil, err
	}

	code, err := s.codeGen.Generate(ctx)
	if err != nil {
		return nil, err
	}

	cfg := domain.IssueConfig{
		UsageLimit:  old.UsageLimit,
		DeviceScope: old.DeviceScope,
		TimeWindow:  old.TimeWindow,
	}
	validUntil := old.ValidUntil
	if overrides != nil {
		if overrides.UsageLimit > 0 {
			cfg.UsageLimit = overrides.UsageLimit
		}
		if overrides.ValidHours > 0 {
			validUntil = time.Now().UTC().Add(time.Duration(overrides.ValidHours) * time.Hour)
		}
		if overrides.DeviceScope != nil {
			cfg.DeviceScope = overrides.DeviceScope
		}
		if overrides.TimeWindow != nil {
			cfg.TimeWindow = overrides.TimeWindow
		}
	}

	now := time.Now().UTC()
	fresh := &domain.AccessCredential{
		ID:            uuid.NewString(),
		ApplicationID: old.ApplicationID,
		MerchantID:    old.MerchantID,
		CodeValue:     code,
		UsageLimit:    cfg.UsageLimit,
		UsageCount:    0,
		ValidFrom:     now,
		ValidUntil:    validUntil,
		TimeWindow:    cfg.TimeWindow,
		DeviceScope:   cfg.DeviceScope,
		Status:        domain.CredentialActive,
		Version:       1,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.credRepo.Create(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to store regenerated credential: %w", err)
	}

	s.logger.Info("credential regenerated",
		zap.String("old_credential_id", old.ID),
		zap.String("new_credential_id", fresh.ID),
		zap.String("actor_id", actorID))
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CredentialRegeneratedEvent).
		WithActor(actorID).
		WithMetadata("old_credential_id", old.ID).
		WithCredential(fresh))
	return fresh, nil
}

// ExtendValidity implements domain.LifecycleService. The extension is
// applied exactly once per call; a transport-level retry that raced the
// original lands on a bumped version and re-reads before re-applying.
func (s *LifecycleServiceImpl) ExtendValidity(ctx context.Context, credentialID string, additionalHours int, actorID string) (*domain.AccessCredential, error) {
	if additionalHours <= 0 {
		return nil, fmt.Errorf("additional hours %d: %w", additionalHours, domain.ErrInvalidConfig)
	}

	cred, err := s.credRepo.FindByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	if err := s.casMutate(ctx, cred, func(c *domain.AccessCredential) error {
		if c.Status != domain.CredentialActive {
			return fmt.Errorf("extend credential in status %s: %w", c.Status, domain.ErrInvalidState)
		}
		// Status may lag reality; a lapsed credential is expired
		// whether or not anything marked it yet.
		if c.ExpiredAt(time.Now().UTC()) {
			return fmt.Errorf("extend credential past its validity: %w", domain.ErrInvalidState)
		}
		c.ValidUntil = c.ValidUntil.Add(time.Duration(additionalHours) * time.Hour)
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("credential validity extended",
		zap.String("credential_id", cred.ID),
		zap.Int("additional_hours", additionalHours),
		zap.Time("valid_until", cred.ValidUntil),
		zap.String("actor_id", actorID))
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CredentialExtendedEvent).
		WithActor(actorID).
		WithMetadata("additional_hours", additionalHours).
		WithCredential(cred))
	return cred, nil
}

// Revoke implements domain.LifecycleService. Idempotent: revoking an
// already-revoked credential is a no-op success. The version bump makes
// the revocation immediately visible to racing validations.
func (s *LifecycleServiceImpl) Revoke(ctx context.Context, credentialID, actorID string) error {
	cred, err := s.credRepo.FindByID(ctx, credentialID)
	if err != nil {
		return err
	}

	if err := s.casMutate(ctx, cred, func(c *domain.AccessCredential) error {
		c.Status = domain.CredentialRevoked
		return nil
	}); err != nil {
		return err
	}

	s.logger.Info("credential revoked",
		zap.String("credential_id", credentialID),
		zap.String("actor_id", actorID))
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CredentialRevokedEvent).
		WithActor(actorID).
		WithCredential(cred))
	return nil
}

// Resend implements domain.LifecycleService. Gateway failure is reported to
// the caller but leaves the credential untouched; send is not an in-band
// part of the credential state machine.
func (s *LifecycleServiceImpl) Resend(ctx context.Context, credentialID string, channel domain.DeliveryChannel, actorID string) error {
	cred, err := s.credRepo.FindByID(ctx, credentialID)
	if err != nil {
		return err
	}
	if cred.Status != domain.CredentialActive {
		return fmt.Errorf("resend credential in status %s: %w", cred.Status, domain.ErrInvalidState)
	}

	if err := s.checkResendThrottle(ctx, credentialID); err != nil {
		return err
	}

	app, err := s.appRepo.FindByID(ctx, cred.ApplicationID)
	if err != nil {
		return err
	}
	destination := app.VisitorPhone
	if channel == domain.ChannelEmail {
		destination = app.VisitorEmail
	}

	qrToken, err := s.qrEnc.Encode(cred)
	if err != nil {
		return fmt.Errorf("failed to encode qr token: %w", err)
	}
	payload := domain.CredentialPayload{
		CodeValue:  cred.CodeValue,
		ValidUntil: cred.ValidUntil,
		QREncoding: qrToken,
	}
	if err := s.gateway.Send(ctx, destination, channel, payload); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	s.logger.Info("credential resent",
		zap.String("credential_id", credentialID),
		zap.String("channel", string(channel)),
		zap.String("actor_id", actorID))
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CredentialResentEvent).
		WithActor(actorID).
		WithMetadata("channel", string(channel)).
		WithCredential(cred))
	return nil
}

// casMutate applies mutate under the version CAS with bounded retries.
// The closure sees the freshest copy on every round and may veto with an
// error; lifecycle callers treat retry exhaustion as a version conflict.
func (s *LifecycleServiceImpl) casMutate(ctx context.Context, cred *domain.AccessCredential, mutate func(*domain.AccessCredential) error) error {
	for attempt := 0; ; attempt++ {
		if err := mutate(cred); err != nil {
			return err
		}
		err := s.credRepo.UpdateConditional(ctx, cred, cred.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= s.casRetries {
			return err
		}

		fresh, ferr := s.credRepo.FindByID(ctx, cred.ID)
		if ferr != nil {
			return ferr
		}
		*cred = *fresh
	}
}

// checkResendThrottle enforces one resend per window per credential
func (s *LifecycleServiceImpl) checkResendThrottle(ctx context.Context, credentialID string) error {
	if s.redisClient == nil {
		return nil
	}
	key := "resend:" + credentialID
	ok, err := s.redisClient.SetNX(ctx, key, 1, s.resendWindow).Result()
	if err != nil {
		return fmt.Errorf("failed to check resend throttle: %w", err)
	}
	if !ok {
		ttl, _ := s.redisClient.TTL(ctx, key).Result()
		return fmt.Errorf("wait %d seconds: %w", int64(ttl.Seconds()), domain.ErrResendThrottled)
	}
	return nil
}
