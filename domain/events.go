package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Review events
	ApplicationApprovedEvent AuditEventType = "APPLICATION_APPROVED"
	ApplicationRejectedEvent AuditEventType = "APPLICATION_REJECTED"

	// Credential lifecycle events
	CredentialIssuedEvent      AuditEventType = "CREDENTIAL_ISSUED"
	CredentialRegeneratedEvent AuditEventType = "CREDENTIAL_REGENERATED"
	CredentialExtendedEvent    AuditEventType = "CREDENTIAL_EXTENDED"
	CredentialRevokedEvent     AuditEventType = "CREDENTIAL_REVOKED"
	CredentialResentEvent      AuditEventType = "CREDENTIAL_RESENT"

	// Device events
	AccessAllowedEvent AuditEventType = "ACCESS_ALLOWED"
	AccessDeniedEvent  AuditEventType = "ACCESS_DENIED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType    AuditEventType         `json:"event_type"`
	MerchantID   string                 `json:"merchant_id,omitempty"`
	CredentialID string                 `json:"credential_id,omitempty"`
	DeviceID     string                 `json:"device_id,omitempty"`
	ActorID      string                 `json:"actor_id,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg     string                 `json:"error_msg,omitempty"`
	Success      bool                   `json:"success"`
}

// AuditLogger defines operations for audit logging
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent)
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithCredential sets the credential and merchant fields
func (e *AuditEvent) WithCredential(cred *AccessCredential) *AuditEvent {
	if cred != nil {
		e.CredentialID = cred.ID
		e.MerchantID = cred.MerchantID
	}
	return e
}

// WithDevice sets the device field
func (e *AuditEvent) WithDevice(deviceID string) *AuditEvent {
	e.DeviceID = deviceID
	return e
}

// WithActor sets the acting administrator
func (e *AuditEvent) WithActor(actorID string) *AuditEvent {
	e.ActorID = actorID
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}
