package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// ValidationHandlers handles the device-facing validation endpoint
type ValidationHandlers struct {
	validationSvc domain.ValidationService
	qrEnc         domain.QREncoder
}

// NewValidationHandlers creates new validation handlers
func NewValidationHandlers(validationSvc domain.ValidationService, qrEnc domain.QREncoder) *ValidationHandlers {
	return &ValidationHandlers{validationSvc: validationSvc, qrEnc: qrEnc}
}

// ValidateRequest is what a device sends on each presentation. Exactly one
// of code or qr_token is expected; a scanned QR is decoded to its code
// before validation.
type ValidateRequest struct {
	Code      string     `json:"code"`
	QRToken   string     `json:"qr_token"`
	DeviceID  string     `json:"device_id" binding:"required"`
	Timestamp *time.Time `json:"timestamp"`
}

// Validate handles POST /device/validate. The response always carries an
// allow/deny decision; a device that cannot parse it must fail closed.
func (h *ValidationHandlers) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"allowed": false, "reason": "bad_request", "error": err.Error()})
		return
	}

	code := req.Code
	if code == "" && req.QRToken != "" {
		decoded, err := h.qrEnc.Decode(req.QRToken)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"allowed": false, "reason": string(domain.DenyNotFound)})
			return
		}
		code = decoded
	}
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"allowed": false, "reason": "bad_request", "error": "code or qr_token required"})
		return
	}

	now := time.Now().UTC()
	if req.Timestamp != nil {
		now = req.Timestamp.UTC()
	}

	decision := h.validationSvc.Validate(c.Request.Context(), code, req.DeviceID, now)
	resp := gin.H{"allowed": decision.Allowed}
	if decision.Allowed {
		resp["remaining_uses"] = decision.RemainingUses
	} else {
		resp["reason"] = string(decision.Reason)
	}
	c.JSON(http.StatusOK, resp)
}
