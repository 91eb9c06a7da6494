package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// ApprovalHandlers handles merchant review HTTP requests
type ApprovalHandlers struct {
	approvalSvc domain.ApprovalService
}

// NewApprovalHandlers creates new approval handlers
func NewApprovalHandlers(approvalSvc domain.ApprovalService) *ApprovalHandlers {
	return &ApprovalHandlers{approvalSvc: approvalSvc}
}

// IssueConfigRequest mirrors domain.IssueConfig on the wire
type IssueConfigRequest struct {
	UsageLimit  int                `json:"usage_limit"`
	ValidHours  int                `json:"valid_hours"`
	DeviceScope []string           `json:"device_scope,omitempty"`
	TimeWindow  *domain.TimeWindow `json:"time_window,omitempty"`
}

// ApproveRequest represents a single approval request
type ApproveRequest struct {
	IssueConfigRequest
	ReviewerID string `json:"reviewer_id" binding:"required"`
}

// RejectRequest represents a single rejection request
type RejectRequest struct {
	Reason     string `json:"reason" binding:"required"`
	ReviewerID string `json:"reviewer_id" binding:"required"`
}

// BatchApproveRequest represents a batch approval request
type BatchApproveRequest struct {
	ApplicationIDs []string `json:"application_ids" binding:"required,min=1"`
	IssueConfigRequest
	ReviewerID string `json:"reviewer_id" binding:"required"`
}

// BatchRejectRequest represents a batch rejection request
type BatchRejectRequest struct {
	ApplicationIDs []string `json:"application_ids" binding:"required,min=1"`
	Reason         string   `json:"reason" binding:"required"`
	ReviewerID     string   `json:"reviewer_id" binding:"required"`
}

func (r IssueConfigRequest) toDomain() domain.IssueConfig {
	return domain.IssueConfig{
		UsageLimit:  r.UsageLimit,
		ValidHours:  r.ValidHours,
		DeviceScope: r.DeviceScope,
		TimeWindow:  r.TimeWindow,
	}
}

// Approve handles POST /applications/:id/approve
func (h *ApprovalHandlers) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cred, err := h.approvalSvc.Approve(c.Request.Context(), c.Param("id"), req.toDomain(), req.ReviewerID)
	if err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": credentialResponse(cred)})
}

// Reject handles POST /applications/:id/reject
func (h *ApprovalHandlers) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.approvalSvc.Reject(c.Request.Context(), c.Param("id"), req.Reason, req.ReviewerID); err != nil {
		respondReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "application rejected"}})
}

// BatchApprove handles POST /applications/approve
func (h *ApprovalHandlers) BatchApprove(c *gin.Context) {
	var req BatchApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.approvalSvc.BatchApprove(c.Request.Context(), req.ApplicationIDs, req.toDomain(), req.ReviewerID)
	c.JSON(http.StatusMultiStatus, gin.H{"data": batchResponse(results)})
}

// BatchReject handles POST /applications/reject
func (h *ApprovalHandlers) BatchReject(c *gin.Context) {
	var req BatchRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.approvalSvc.BatchReject(c.Request.Context(), req.ApplicationIDs, req.Reason, req.ReviewerID)
	c.JSON(http.StatusMultiStatus, gin.H{"data": batchResponse(results)})
}

func batchResponse(results []domain.BatchResult) []gin.H {
	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		item := gin.H{"application_id": r.ApplicationID, "ok": r.Err == nil}
		if r.Err != nil {
			item["error"] = r.Err.Error()
		}
		if r.Credential != nil {
			item["credential"] = credentialResponse(r.Credential)
		}
		out = append(out, item)
	}
	return out
}

func credentialResponse(cred *domain.AccessCredential) gin.H {
	return gin.H{
		"id":             cred.ID,
		"application_id": cred.ApplicationID,
		"code_value":     cred.CodeValue,
		"usage_limit":    cred.UsageLimit,
		"usage_count":    cred.UsageCount,
		"valid_from":     cred.ValidFrom,
		"valid_until":    cred.ValidUntil,
		"device_scope":   cred.DeviceScope,
		"time_window":    cred.TimeWindow,
		"status":         cred.Status,
	}
}

func respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound), errors.Is(err, domain.ErrCredentialNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGenerationExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
