package domain

import "errors"

// Application review errors
var (
	ErrApplicationNotFound = errors.New("visitor application not found")
	ErrInvalidState        = errors.New("operation not legal for current lifecycle state")
	ErrInvalidConfig       = errors.New("issue config out of range")
)

// Credential errors
var (
	ErrCredentialNotFound  = errors.New("credential not found")
	ErrVersionConflict     = errors.New("credential version conflict")
	ErrGenerationExhausted = errors.New("code generation retry bound hit")
)

// Lifecycle errors
var (
	ErrResendThrottled = errors.New("resend window has not elapsed")
	ErrDeliveryFailed  = errors.New("delivery gateway reported failure")
	ErrUnknownChannel  = errors.New("unknown delivery channel")
)
