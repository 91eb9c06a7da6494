package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// CredentialRepositoryImpl implements domain.CredentialRepository using GORM.
// Credential rows are append-and-update only; superseded records stay for audit.
type CredentialRepositoryImpl struct {
	db *gorm.DB
}

// DBCredential represents the database model for AccessCredential
type DBCredential struct {
	ID                string `gorm:"primaryKey;size:36"`
	ApplicationID     string `gorm:"index;size:36"`
	MerchantID        string `gorm:"index;size:36"`
	CodeValue         string `gorm:"uniqueIndex;size:64"`
	UsageLimit        int
	UsageCount        int
	ValidFrom         time.Time
	ValidUntil        time.Time
	WindowStartMinute *int
	WindowEndMinute   *int
	DeviceScope       string `gorm:"type:text"` // JSON array of device ids
	Status            string `gorm:"index;size:16"`
	Version           int64
	CreatedBy         string `gorm:"size:36"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (DBCredential) TableName() string {
	return "access_credentials"
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *gorm.DB) domain.CredentialRepository {
	return &CredentialRepositoryImpl{db: db}
}

// Create implements domain.CredentialRepository
func (r *CredentialRepositoryImpl) Create(ctx context.Context, cred *domain.AccessCredential) error {
	dbCred, err := r.domainToDB(cred)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(dbCred).Error
}

// FindByID implements domain.CredentialRepository
func (r *CredentialRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.AccessCredential, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByCode implements domain.CredentialRepository
func (r *CredentialRepositoryImpl) FindByCode(ctx context.Context, codeValue string) (*domain.AccessCredential, error) {
	return r.findOne(ctx, "code_value = ?", codeValue)
}

// FindActiveByApplication implements domain.CredentialRepository
func (r *CredentialRepositoryImpl) FindActiveByApplication(ctx context.Context, applicationID string) (*domain.AccessCredential, error) {
	return r.findOne(ctx, "application_id = ? AND status = ?", applicationID, string(domain.CredentialActive))
}

// CodeValueTaken reports whether a live credential already holds codeValue.
// Expired and revoked records do not block reuse of the code space.
func (r *CredentialRepositoryImpl) CodeValueTaken(ctx context.Context, codeValue string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBCredential{}).
		Where("code_value = ? AND status IN ?", codeValue,
			[]string{string(domain.CredentialActive), string(domain.CredentialExhausted)}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateConditional implements the compare-and-set primitive. The update
// touches usage_count, status, valid_until and version in a single
// statement guarded by the expected version, so concurrent writers on the
// same credential serialize without any in-process lock.
func (r *CredentialRepositoryImpl) UpdateConditional(ctx context.Context, cred *domain.AccessCredential, expectedVersion int64) error {
	res := r.db.WithContext(ctx).Model(&DBCredential{}).
		Where("id = ? AND version = ?", cred.ID, expectedVersion).
		Updates(map[string]interface{}{
			"usage_count": cred.UsageCount,
			"status":      string(cred.Status),
			"valid_until": cred.ValidUntil,
			"version":     expectedVersion + 1,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	cred.Version = expectedVersion + 1
	return nil
}

func (r *CredentialRepositoryImpl) findOne(ctx context.Context, query string, args ...interface{}) (*domain.AccessCredential, error) {
	var dbCred DBCredential
	err := r.db.WithContext(ctx).Where(query, args...).First(&dbCred).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbCred)
}

func (r *CredentialRepositoryImpl) domainToDB(cred *domain.AccessCredential) (*DBCredential, error) {
	scope, err := json.Marshal(cred.DeviceScope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal device scope: %w", err)
	}

	dbCred := &DBCredential{
		ID:            cred.ID,
		ApplicationID: cred.ApplicationID,
		MerchantID:    cred.MerchantID,
		CodeValue:     cred.CodeValue,
		UsageLimit:    cred.UsageLimit,
		UsageCount:    cred.UsageCount,
		ValidFrom:     cred.ValidFrom,
		ValidUntil:    cred.ValidUntil,
		DeviceScope:   string(scope),
		Status:        string(cred.Status),
		Version:       cred.Version,
		CreatedBy:     cred.CreatedBy,
		CreatedAt:     cred.CreatedAt,
		UpdatedAt:     cred.UpdatedAt,
	}
	if cred.TimeWindow != nil {
		start, end := cred.TimeWindow.StartMinute, cred.TimeWindow.EndMinute
		dbCred.WindowStartMinute = &start
		dbCred.WindowEndMinute = &end
	}
	return dbCred, nil
}

func (r *CredentialRepositoryImpl) dbToDomain(dbCred *DBCredential) (*domain.AccessCredential, error) {
	var scope []string
	if dbCred.DeviceScope != "" {
		if err := json.Unmarshal([]byte(dbCred.DeviceScope), &scope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal device scope: %w", err)
		}
	}

	cred := &domain.AccessCredential{
		ID:            dbCred.ID,
		ApplicationID: dbCred.ApplicationID,
		MerchantID:    dbCred.MerchantID,
		CodeValue:     dbCred.CodeValue,
		UsageLimit:    dbCred.UsageLimit,
		UsageCount:    dbCred.UsageCount,
		ValidFrom:     dbCred.ValidFrom,
		ValidUntil:    dbCred.ValidUntil,
		DeviceScope:   scope,
		Status:        domain.CredentialStatus(dbCred.Status),
		Version:       dbCred.Version,
		CreatedBy:     dbCred.CreatedBy,
		CreatedAt:     dbCred.CreatedAt,
		UpdatedAt:     dbCred.UpdatedAt,
	}
	if dbCred.WindowStartMinute != nil && dbCred.WindowEndMinute != nil {
		cred.TimeWindow = &domain.TimeWindow{
			StartMinute: *dbCred.WindowStartMinute,
			EndMinute:   *dbCred.WindowEndMinute,
		}
	}
	return cred, nil
}
