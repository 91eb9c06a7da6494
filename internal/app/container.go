package app

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vulgatecnn/afa100-sub001/domain"
	"github.com/vulgatecnn/afa100-sub001/internal/config"
	"github.com/vulgatecnn/afa100-sub001/internal/infrastructure/database"
	"github.com/vulgatecnn/afa100-sub001/internal/infrastructure/notifications"
	"github.com/vulgatecnn/afa100-sub001/internal/infrastructure/repositories"
	"github.com/vulgatecnn/afa100-sub001/internal/qr"
	"github.com/vulgatecnn/afa100-sub001/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client

	// Repositories
	AppRepo    domain.ApplicationRepository
	CredRepo   domain.CredentialRepository
	AttemptLog domain.AttemptLog

	// Services
	CodeGen       domain.CodeGenerator
	QREncoder     domain.QREncoder
	Gateway       domain.DeliveryGateway
	AuditLogger   domain.AuditLogger
	ApprovalSvc   domain.ApprovalService
	ValidationSvc domain.ValidationService
	LifecycleSvc  domain.LifecycleService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	container := &Container{Config: cfg, Logger: logger}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	if err := container.initRedis(); err != nil {
		return nil, err
	}
	container.initRepositories()
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() error {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB).Client
	return nil
}

func (c *Container) initRepositories() {
	c.AppRepo = repositories.NewApplicationRepository(c.DB)
	c.CredRepo = repositories.NewCredentialRepository(c.DB)
	c.AttemptLog = repositories.NewAttemptLog(c.RedisClient, c.Config.AttemptLogSize, c.Config.AttemptLogTTL)
}

func (c *Container) initServices() {
	c.CodeGen = services.NewCodeGenerator(c.CredRepo, c.Config.CodeLength, c.Config.GenerateRetries, c.Logger)
	c.QREncoder = qr.NewEncoder(c.Config.QRSecret, c.Config.QRIssuer)
	c.Gateway = notifications.NewTwilioGateway(c.Config.TwilioSID, c.Config.TwilioToken, c.Config.TwilioFrom, c.Logger)
	c.AuditLogger = services.NewZapAuditLogger(c.Logger)

	c.ApprovalSvc = services.NewApprovalService(
		c.AppRepo,
		c.CredRepo,
		c.CodeGen,
		c.Gateway,
		c.QREncoder,
		c.AuditLogger,
		services.IssueDefaults{
			UsageLimit: c.Config.DefaultUsageLimit,
			ValidHours: c.Config.DefaultValidHours,
		},
		c.Logger,
	)
	c.ValidationSvc = services.NewValidationService(
		c.CredRepo,
		c.AttemptLog,
		c.AuditLogger,
		c.Config.CASRetries,
		c.Config.ValidateTimeout,
		c.Logger,
	)
	c.LifecycleSvc = services.NewLifecycleService(
		c.CredRepo,
		c.AppRepo,
		c.CodeGen,
		c.Gateway,
		c.QREncoder,
		c.AuditLogger,
		c.RedisClient,
		c.Config.ResendWindow,
		c.Config.CASRetries,
		c.Logger,
	)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
