package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// ApplicationRepositoryImpl implements domain.ApplicationRepository using GORM
type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

// DBApplication represents the database model for VisitorApplication
type DBApplication struct {
	ID              string `gorm:"primaryKey;size:36"`
	MerchantID      string `gorm:"index;size:36"`
	VisitorName     string `gorm:"size:128"`
	VisitorPhone    string `gorm:"size:32"`
	VisitorEmail    string `gorm:"size:255"`
	Purpose         string `gorm:"size:512"`
	VisitDate       time.Time
	DurationMinutes int
	State           string `gorm:"index;size:16"`
	ReviewedBy      string `gorm:"size:36"`
	ReviewedAt      *time.Time
	RejectionReason string `gorm:"size:512"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (DBApplication) TableName() string {
	return "visitor_applications"
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) domain.ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

// Create implements domain.ApplicationRepository
func (r *ApplicationRepositoryImpl) Create(ctx context.Context, app *domain.VisitorApplication) error {
	return r.db.WithContext(ctx).Create(r.domainToDB(app)).Error
}

// FindByID implements domain.ApplicationRepository
func (r *ApplicationRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.VisitorApplication, error) {
	var dbApp DBApplication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbApp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbApp), nil
}

// Update implements domain.ApplicationRepository
func (r *ApplicationRepositoryImpl) Update(ctx context.Context, app *domain.VisitorApplication) error {
	return r.db.WithContext(ctx).Save(r.domainToDB(app)).Error
}

func (r *ApplicationRepositoryImpl) domainToDB(app *domain.VisitorApplication) *DBApplication {
	return &DBApplication{
		ID:              app.ID,
		MerchantID:      app.MerchantID,
		VisitorName:     app.VisitorName,
		VisitorPhone:    app.VisitorPhone,
		VisitorEmail:    app.VisitorEmail,
		Purpose:         app.Purpose,
		VisitDate:       app.VisitDate,
		DurationMinutes: app.DurationMinutes,
		State:           string(app.State),
		ReviewedBy:      app.ReviewedBy,
		ReviewedAt:      app.ReviewedAt,
		RejectionReason: app.RejectionReason,
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}

func (r *ApplicationRepositoryImpl) dbToDomain(dbApp *DBApplication) *domain.VisitorApplication {
	return &domain.VisitorApplication{
		ID:              dbApp.ID,
		MerchantID:      dbApp.MerchantID,
		VisitorName:     dbApp.VisitorName,
		VisitorPhone:    dbApp.VisitorPhone,
		VisitorEmail:    dbApp.VisitorEmail,
		Purpose:         dbApp.Purpose,
		VisitDate:       dbApp.VisitDate,
		DurationMinutes: dbApp.DurationMinutes,
		State:           domain.ApplicationState(dbApp.State),
		ReviewedBy:      dbApp.ReviewedBy,
		ReviewedAt:      dbApp.ReviewedAt,
		RejectionReason: dbApp.RejectionReason,
		CreatedAt:       dbApp.CreatedAt,
		UpdatedAt:       dbApp.UpdatedAt,
	}
}
