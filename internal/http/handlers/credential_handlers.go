package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// CredentialHandlers handles administrative lifecycle operations on
// issued credentials
type CredentialHandlers struct {
	lifecycleSvc domain.LifecycleService
	attempts     domain.AttemptLog
}

// NewCredentialHandlers creates new credential handlers
func NewCredentialHandlers(lifecycleSvc domain.LifecycleService, attempts domain.AttemptLog) *CredentialHandlers {
	return &CredentialHandlers{lifecycleSvc: lifecycleSvc, attempts: attempts}
}

// RegenerateRequest represents a regenerate request
type RegenerateRequest struct {
	Overrides *IssueConfigRequest `json:"overrides,omitempty"`
	ActorID   string              `json:"actor_id" binding:"required"`
}

// ExtendRequest represents an extend-validity request
type ExtendRequest struct {
	AdditionalHours int    `json:"additional_hours" binding:"required"`
	ActorID         string `json:"actor_id" binding:"required"`
}

// RevokeRequest represents a revoke request
type RevokeRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
}

// ResendRequest represents a resend request
type ResendRequest struct {
	Channel string `json:"channel" binding:"required,oneof=sms email chat"`
	ActorID string `json:"actor_id" binding:"required"`
}

// Regenerate handles POST /credentials/:id/regenerate
func (h *CredentialHandlers) Regenerate(c *gin.Context) {
	var req RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var overrides *domain.IssueConfig
	if req.Overrides != nil {
		cfg := req.Overrides.toDomain()
		overrides = &cfg
	}

	cred, err := h.lifecycleSvc.Regenerate(c.Request.Context(), c.Param("id"), overrides, req.ActorID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": credentialResponse(cred)})
}

// Extend handles POST /credentials/:id/extend
func (h *CredentialHandlers) Extend(c *gin.Context) {
	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cred, err := h.lifecycleSvc.ExtendValidity(c.Request.Context(), c.Param("id"), req.AdditionalHours, req.ActorID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": credentialResponse(cred)})
}

// Revoke handles POST /credentials/:id/revoke
func (h *CredentialHandlers) Revoke(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.lifecycleSvc.Revoke(c.Request.Context(), c.Param("id"), req.ActorID); err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "credential revoked"}})
}

// Resend handles POST /credentials/:id/resend
func (h *CredentialHandlers) Resend(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.lifecycleSvc.Resend(c.Request.Context(), c.Param("id"), domain.DeliveryChannel(req.Channel), req.ActorID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "credential resent"}})
}

// RecentAttempts handles GET /credentials/:id/attempts
func (h *CredentialHandlers) RecentAttempts(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	attempts, err := h.attempts.Recent(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load attempts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": attempts})
}

func respondLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCredentialNotFound), errors.Is(err, domain.ErrApplicationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrResendThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDeliveryFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGenerationExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
