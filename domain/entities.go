package domain

import "time"

// ApplicationState tracks a visitor application through merchant review
type ApplicationState string

const (
	ApplicationPending  ApplicationState = "pending"
	ApplicationApproved ApplicationState = "approved"
	ApplicationRejected ApplicationState = "rejected"
	ApplicationExpired  ApplicationState = "expired"
)

// CredentialStatus is the lifecycle status of an issued passcode
type CredentialStatus string

const (
	CredentialActive    CredentialStatus = "active"
	CredentialExhausted CredentialStatus = "exhausted"
	CredentialExpired   CredentialStatus = "expired"
	CredentialRevoked   CredentialStatus = "revoked"
)

// DeliveryChannel selects how a credential is sent to the visitor
type DeliveryChannel string

const (
	ChannelSMS   DeliveryChannel = "sms"
	ChannelEmail DeliveryChannel = "email"
	ChannelChat  DeliveryChannel = "chat"
)

// VisitorApplication represents a visit request awaiting merchant review
type VisitorApplication struct {
	ID              string
	MerchantID      string
	VisitorName     string
	VisitorPhone    string
	VisitorEmail    string
	Purpose         string
	VisitDate       time.Time
	DurationMinutes int
	State           ApplicationState
	ReviewedBy      string
	ReviewedAt      *time.Time
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TimeWindow is an optional daily restriction applied on top of the
// absolute validity window, expressed as minutes since midnight.
type TimeWindow struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Contains reports whether t falls inside the daily window. Windows that
// wrap midnight (start > end) are supported.
func (w TimeWindow) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	if w.StartMinute <= w.EndMinute {
		return m >= w.StartMinute && m <= w.EndMinute
	}
	return m >= w.StartMinute || m <= w.EndMinute
}

// AccessCredential is the issued passcode a visitor presents at a device
type AccessCredential struct {
	ID            string
	ApplicationID string
	MerchantID    string
	CodeValue     string
	UsageLimit    int
	UsageCount    int
	ValidFrom     time.Time
	ValidUntil    time.Time
	TimeWindow    *TimeWindow
	DeviceScope   []string // empty means all merchant devices
	Status        CredentialStatus
	Version       int64
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PermitsDevice reports whether deviceID is inside the credential's scope.
// An empty scope permits every device of the owning merchant.
func (c *AccessCredential) PermitsDevice(deviceID string) bool {
	if len(c.DeviceScope) == 0 {
		return true
	}
	for _, d := range c.DeviceScope {
		if d == deviceID {
			return true
		}
	}
	return false
}

// ExpiredAt reports whether the absolute validity window has passed
func (c *AccessCredential) ExpiredAt(now time.Time) bool {
	return now.After(c.ValidUntil)
}

// IssueConfig carries the parameters for credential issuance. Zero values
// are filled from the engine defaults before use.
type IssueConfig struct {
	UsageLimit  int
	ValidHours  int
	DeviceScope []string
	TimeWindow  *TimeWindow
}

// DenyReason explains a validation denial to the calling device
type DenyReason string

const (
	DenyNotFound           DenyReason = "not_found"
	DenyExpired            DenyReason = "expired"
	DenyRevoked            DenyReason = "revoked"
	DenyDeviceNotPermitted DenyReason = "device_not_permitted"
	DenyOutsideTimeWindow  DenyReason = "outside_time_window"
	DenyUsageExceeded      DenyReason = "usage_exceeded"
	DenyTransientConflict  DenyReason = "transient_conflict"
	DenyTimeout            DenyReason = "timeout"
)

// Decision is the outcome of a single validation attempt. Denials are
// first-class outcomes the device branches on, never errors.
type Decision struct {
	Allowed       bool
	Reason        DenyReason
	CredentialID  string
	RemainingUses int
}

// Allow builds an allowed decision for the given credential
func Allow(credentialID string, remaining int) Decision {
	return Decision{Allowed: true, CredentialID: credentialID, RemainingUses: remaining}
}

// Deny builds a denied decision with the given reason
func Deny(reason DenyReason, credentialID string) Decision {
	return Decision{Allowed: false, Reason: reason, CredentialID: credentialID}
}

// ValidationAttempt is the ephemeral record of one device presentation
type ValidationAttempt struct {
	CredentialID string     `json:"credential_id"`
	DeviceID     string     `json:"device_id"`
	PresentedAt  time.Time  `json:"presented_at"`
	Allowed      bool       `json:"allowed"`
	Reason       DenyReason `json:"reason,omitempty"`
}

// CredentialPayload is what the Delivery Gateway sends to the visitor
type CredentialPayload struct {
	CodeValue  string
	ValidUntil time.Time
	QREncoding string
}

// BatchResult reports the outcome of one item in a batch review operation
type BatchResult struct {
	ApplicationID string
	Credential    *AccessCredential
	Err           error
}
