package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vulgatecnn/afa100-sub001/internal/config"
	httpx "github.com/vulgatecnn/afa100-sub001/internal/http"
	"github.com/vulgatecnn/afa100-sub001/internal/http/handlers"
	"github.com/vulgatecnn/afa100-sub001/internal/http/middleware"
)

func Run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.RedisClient.Ping(context.Background()).Err(); err != nil {
		return err
	}

	ah := handlers.NewApprovalHandlers(c.ApprovalSvc)
	vh := handlers.NewValidationHandlers(c.ValidationSvc, c.QREncoder)
	ch := handlers.NewCredentialHandlers(c.LifecycleSvc, c.AttemptLog)
	devmw := middleware.NewDeviceKeyMW(cfg.DeviceAPIKey)

	r := httpx.BuildRouter(ah, vh, ch, devmw)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}
