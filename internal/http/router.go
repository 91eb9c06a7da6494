package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/vulgatecnn/afa100-sub001/internal/http/handlers"
	"github.com/vulgatecnn/afa100-sub001/internal/http/middleware"
)

func BuildRouter(ah *handlers.ApprovalHandlers, vh *handlers.ValidationHandlers, ch *handlers.CredentialHandlers, devmw *middleware.DeviceKeyMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// Device-facing hot path
	device := r.Group("/device").Use(devmw.Require())
	device.POST("/validate", vh.Validate)

	// Merchant review surface
	apps := r.Group("/applications")
	apps.POST("/:id/approve", ah.Approve)
	apps.POST("/:id/reject", ah.Reject)
	apps.POST("/approve", ah.BatchApprove)
	apps.POST("/reject", ah.BatchReject)

	// Credential lifecycle surface
	creds := r.Group("/credentials")
	creds.POST("/:id/regenerate", ch.Regenerate)
	creds.POST("/:id/extend", ch.Extend)
	creds.POST("/:id/revoke", ch.Revoke)
	creds.POST("/:id/resend", ch.Resend)
	creds.GET("/:id/attempts", ch.RecentAttempts)

	return r
}
