package repository

import (
	"context"

	"github.com/younegotiate/negotiate-api/internal/models"
	"gorm.io/gorm"
)

// CompanyRepository defines the interface for company data access
type CompanyRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Company, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
	List(ctx context.Context, query *ListQuery) ([]models.Company, int64, error)
	FindSubclientByID(ctx context.Context, id uint) (*models.Subclient, error)
	FindSubclientsByCompany(ctx context.Context, companyID uint) ([]models.Subclient, error)
	CreateSubclient(ctx context.Context, subclient *models.Subclient) error
	UpdateSubclient(ctx context.Context, subclient *models.Subclient) error
	FindActiveMembership(ctx context.Context, companyID uint) (*models.CompanyMembership, error)
	CreateMembership(ctx context.Context, membership *models.CompanyMembership) error
	UpdateMembership(ctx context.Context, membership *models.CompanyMembership) error
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) FindByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Preload("Subclients").
		First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepository) Update(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *companyRepository) List(ctx context.Context, query *ListQuery) ([]models.Company, int64, error) {
	var companies []models.Company
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Company{})

	if query.Search != "" {
		db = db.Where("name ILIKE ?", "%"+query.Search+"%")
	}
	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("name ASC").
		Limit(query.PerPage).
		Offset((query.Page - 1) * query.PerPage).
		Find(&companies).Error
	return companies, total, err
}

func (r *companyRepository) FindSubclientByID(ctx context.Context, id uint) (*models.Subclient, error) {
	var subclient models.Subclient
	err := r.db.WithContext(ctx).First(&subclient, id).Error
	if err != nil {
		return nil, err
	}
	return &subclient, nil
}

func (r *companyRepository) FindSubclientsByCompany(ctx context.Context, companyID uint) ([]models.Subclient, error) {
	var subclients []models.Subclient
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&subclients).Error
	return subclients, err
}

func (r *companyRepository) CreateSubclient(ctx context.Context, subclient *models.Subclient) error {
	return r.db.WithContext(ctx).Create(subclient).Error
}

func (r *companyRepository) UpdateSubclient(ctx context.Context, subclient *models.Subclient) error {
	return r.db.WithContext(ctx).Save(subclient).Error
}

// FindActiveMembership returns the current membership carrying the platform
// fee percentage. Revenue split falls back to a zero fee when none is active.
func (r *companyRepository) FindActiveMembership(ctx context.Context, companyID uint) (*models.CompanyMembership, error) {
	var membership models.CompanyMembership
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, models.MembershipStatusActive).
		Where("expires_at IS NULL OR expires_at > NOW()").
		Order("created_at DESC").
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *companyRepository) CreateMembership(ctx context.Context, membership *models.CompanyMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *companyRepository) UpdateMembership(ctx context.Context, membership *models.CompanyMembership) error {
	return r.db.WithContext(ctx).Save(membership).Error
}
