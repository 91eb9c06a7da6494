package domain

import (
	"context"
	"time"
)

// ApplicationRepository defines visitor application data access operations
type ApplicationRepository interface {
	Create(ctx context.Context, app *VisitorApplication) error
	FindByID(ctx context.Context, id string) (*VisitorApplication, error)
	Update(ctx context.Context, app *VisitorApplication) error
}

// CredentialRepository defines credential data access operations. Records
// are never deleted; superseded credentials are retained for audit.
type CredentialRepository interface {
	Create(ctx context.Context, cred *AccessCredential) error
	FindByID(ctx context.Context, id string) (*AccessCredential, error)
	FindByCode(ctx context.Context, codeValue string) (*AccessCredential, error)
	FindActiveByApplication(ctx context.Context, applicationID string) (*AccessCredential, error)
	CodeValueTaken(ctx context.Context, codeValue string) (bool, error)
	// UpdateConditional persists usage_count, status, valid_until and a
	// bumped version in one atomic statement guarded by expectedVersion.
	// Returns ErrVersionConflict when the guard fails.
	UpdateConditional(ctx context.Context, cred *AccessCredential, expectedVersion int64) error
}

// AttemptLog records the recent validation attempts for a credential.
// Entries are ephemeral; the log is capped and TTL-bound.
type AttemptLog interface {
	Record(ctx context.Context, attempt *ValidationAttempt) error
	Recent(ctx context.Context, credentialID string, limit int) ([]*ValidationAttempt, error)
}

// CodeGenerator produces unguessable passcode values that do not collide
// with any live credential.
type CodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// ApprovalService drives a visitor application from review to issuance
type ApprovalService interface {
	Approve(ctx context.Context, applicationID string, cfg IssueConfig, reviewerID string) (*AccessCredential, error)
	Reject(ctx context.Context, applicationID, reason, reviewerID string) error
	BatchApprove(ctx context.Context, applicationIDs []string, cfg IssueConfig, reviewerID string) []BatchResult
	BatchReject(ctx context.Context, applicationIDs []string, reason, reviewerID string) []BatchResult
}

// ValidationService is the hot path invoked by access devices
type ValidationService interface {
	Validate(ctx context.Context, codeValue, deviceID string, now time.Time) Decision
}

// LifecycleService covers administrative mutations on issued credentials
type LifecycleService interface {
	Regenerate(ctx context.Context, credentialID string, overrides *IssueConfig, actorID string) (*AccessCredential, error)
	ExtendValidity(ctx context.Context, credentialID string, additionalHours int, actorID string) (*AccessCredential, error)
	Revoke(ctx context.Context, credentialID, actorID string) error
	Resend(ctx context.Context, credentialID string, channel DeliveryChannel, actorID string) error
}

// DeliveryGateway sends an issued credential to the visitor. The engine
// depends only on this contract; transport is an external collaborator.
type DeliveryGateway interface {
	Send(ctx context.Context, destination string, channel DeliveryChannel, payload CredentialPayload) error
}

// QREncoder produces the printable/scannable encoding carried in a
// delivery payload.
type QREncoder interface {
	Encode(cred *AccessCredential) (string, error)
	Decode(token string) (codeValue string, err error)
}
