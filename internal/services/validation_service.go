package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// ValidationServiceImpl implements domain.ValidationService, the hot path
// behind every physical device presentation. Concurrency control is a
// per-credential version CAS in the store; there are no in-process locks,
// so validations against different credentials never contend.
type ValidationServiceImpl struct {
	credRepo   domain.CredentialRepository
	attempts   domain.AttemptLog
	audit      domain.AuditLogger
	casRetries int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewValidationService creates a new validation service
func NewValidationService(
	credRepo domain.CredentialRepository,
	attempts domain.AttemptLog,
	audit domain.AuditLogger,
	casRetries int,
	timeout time.Duration,
	logger *zap.Logger,
) domain.ValidationService {
	return &ValidationServiceImpl{
		credRepo:   credRepo,
		attempts:   attempts,
		audit:      audit,
		casRetries: casRetries,
		timeout:    timeout,
		logger:     logger,
	}
}

// Validate implements domain.ValidationService. Any uncertainty (store
// failure, deadline overrun) denies with Timeout: the device fails closed.
func (s *ValidationServiceImpl) Validate(ctx context.Context, codeValue, deviceID string, now time.Time) domain.Decision {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	decision := s.validate(ctx, codeValue, deviceID, now)
	s.report(codeValue, deviceID, now, decision)
	return decision
}

func (s *ValidationServiceImpl) validate(ctx context.Context, codeValue, deviceID string, now time.Time) domain.Decision {
	cred, err := s.credRepo.FindByCode(ctx, codeValue)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return domain.Deny(domain.DenyNotFound, "")
		}
		return s.failClosed("lookup", err)
	}

	for attempt := 0; ; attempt++ {
		if reason, ok := s.checkState(cred, deviceID, now); !ok {
			return domain.Deny(reason, cred.ID)
		}

		// Atomic conditional increment; a concurrent use, revoke or
		// regenerate invalidates our version and forces a re-read.
		readVersion := cred.Version
		cred.UsageCount++
		if cred.UsageCount == cred.UsageLimit {
			cred.Status = domain.CredentialExhausted
		}
		err := s.credRepo.UpdateConditional(ctx, cred, readVersion)
		if err == nil {
			return domain.Allow(cred.ID, cred.UsageLimit-cred.UsageCount)
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return s.failClosed("increment", err)
		}
		if attempt >= s.casRetries {
			return domain.Deny(domain.DenyTransientConflict, cred.ID)
		}

		cred, err = s.credRepo.FindByID(ctx, cred.ID)
		if err != nil {
			return s.failClosed("re-read", err)
		}
	}
}

// checkState evaluates the non-mutating denial conditions in a fixed order
func (s *ValidationServiceImpl) checkState(cred *domain.AccessCredential, deviceID string, now time.Time) (domain.DenyReason, bool) {
	if cred.ExpiredAt(now) && cred.Status != domain.CredentialRevoked {
		s.markLazily(cred, domain.CredentialExpired)
		return domain.DenyExpired, false
	}
	if cred.Status == domain.CredentialRevoked {
		return domain.DenyRevoked, false
	}
	if !cred.PermitsDevice(deviceID) {
		return domain.DenyDeviceNotPermitted, false
	}
	if cred.TimeWindow != nil && !cred.TimeWindow.Contains(now) {
		return domain.DenyOutsideTimeWindow, false
	}
	if cred.UsageCount >= cred.UsageLimit {
		s.markLazily(cred, domain.CredentialExhausted)
		return domain.DenyUsageExceeded, false
	}
	return "", true
}

// markLazily records a derived status. It is opportunistic and idempotent:
// a version conflict just means someone else already observed the same
// fact, and correctness never depends on the write landing.
func (s *ValidationServiceImpl) markLazily(cred *domain.AccessCredential, status domain.CredentialStatus) {
	if cred.Status == status || cred.Status == domain.CredentialRevoked {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	stale := *cred
	stale.Status = status
	if err := s.credRepo.UpdateConditional(ctx, &stale, cred.Version); err != nil &&
		!errors.Is(err, domain.ErrVersionConflict) {
		s.logger.Warn("lazy status mark failed",
			zap.String("credential_id", cred.ID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func (s *ValidationServiceImpl) failClosed(stage string, err error) domain.Decision {
	s.logger.Error("validation failing closed",
		zap.String("stage", stage),
		zap.Error(err))
	return domain.Deny(domain.DenyTimeout, "")
}

// report emits the attempt to the audit log and the ephemeral attempt log.
// Both are best-effort and never slow down or fail the door decision.
func (s *ValidationServiceImpl) report(codeValue, deviceID string, now time.Time, decision domain.Decision) {
	eventType := domain.AccessAllowedEvent
	if !decision.Allowed {
		eventType = domain.AccessDeniedEvent
	}
	event := domain.NewAuditEvent(eventType).WithDevice(deviceID)
	event.CredentialID = decision.CredentialID
	if !decision.Allowed {
		event.Success = false
		event.WithMetadata("reason", string(decision.Reason))
	}
	s.audit.LogEvent(context.Background(), event)

	if decision.CredentialID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	attempt := &domain.ValidationAttempt{
		CredentialID: decision.CredentialID,
		DeviceID:     deviceID,
		PresentedAt:  now,
		Allowed:      decision.Allowed,
		Reason:       decision.Reason,
	}
	if err := s.attempts.Record(ctx, attempt); err != nil {
		s.logger.Warn("attempt log write failed",
			zap.String("credential_id", decision.CredentialID),
			zap.Error(err))
	}
}
