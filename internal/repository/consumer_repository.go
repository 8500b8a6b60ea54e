package repository

import (
	"context"
	"time"

	"github.com/younegotiate/negotiate-api/internal/models"
	"gorm.io/gorm"
)

// ConsumerRepository defines the interface for consumer account data access
type ConsumerRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Consumer, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Consumer, error)
	FindByAccountNumber(ctx context.Context, companyID uint, accountNumber string) (*models.Consumer, error)
	Create(ctx context.Context, consumer *models.Consumer) error
	Update(ctx context.Context, consumer *models.Consumer) error
	List(ctx context.Context, companyID uint, superAdmin bool, query *ListQuery) ([]models.Consumer, int64, error)
	FindExpired(ctx context.Context, asOf time.Time) ([]models.Consumer, error)
	FindDueForRestart(ctx context.Context, asOf time.Time) ([]models.Consumer, error)
	CountByStatus(ctx context.Context, companyID uint, superAdmin bool) (map[string]int64, error)
}

type consumerRepository struct {
	db *gorm.DB
}

// NewConsumerRepository creates a new consumer repository
func NewConsumerRepository(db *gorm.DB) ConsumerRepository {
	return &consumerRepository{db: db}
}

func (r *consumerRepository) FindByID(ctx context.Context, id uint) (*models.Consumer, error) {
	var consumer models.Consumer
	err := r.db.WithContext(ctx).First(&consumer, id).Error
	if err != nil {
		return nil, err
	}
	return &consumer, nil
}

// FindByIDWithDetails loads the account with everything offer math and
// schedule generation need in one round trip.
func (r *consumerRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Consumer, error) {
	var consumer models.Consumer
	err := r.db.WithContext(ctx).
		Preload("Company").
		Preload("Subclient").
		Preload("Negotiation").
		Preload("PaymentProfiles", "deleted_at IS NULL").
		First(&consumer, id).Error
	if err != nil {
		return nil, err
	}
	return &consumer, nil
}

func (r *consumerRepository) FindByAccountNumber(ctx context.Context, companyID uint, accountNumber string) (*models.Consumer, error) {
	var consumer models.Consumer
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND account_number = ?", companyID, accountNumber).
		First(&consumer).Error
	if err != nil {
		return nil, err
	}
	return &consumer, nil
}

func (r *consumerRepository) Create(ctx context.Context, consumer *models.Consumer) error {
	return r.db.WithContext(ctx).Create(consumer).Error
}

func (r *consumerRepository) Update(ctx context.Context, consumer *models.Consumer) error {
	return r.db.WithContext(ctx).Save(consumer).Error
}

func (r *consumerRepository) List(ctx context.Context, companyID uint, superAdmin bool, query *ListQuery) ([]models.Consumer, int64, error) {
	var consumers []models.Consumer
	var total int64

	db := r.db.WithContext(ctx).
		Model(&models.Consumer{}).
		Scopes(CompanyScope(companyID, superAdmin))

	if query.Search != "" {
		term := "%" + query.Search + "%"
		db = db.Where("account_number ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?",
			term, term, term, term)
	}
	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if subclientID := query.Filters["subclient_id"]; subclientID != "" {
		db = db.Where("subclient_id = ?", subclientID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	switch query.SortBy {
	case "account_number", "current_balance", "status", "created_at":
		sortBy = query.SortBy
	}
	sortDir := "DESC"
	if query.SortDir == "asc" {
		sortDir = "ASC"
	}

	err := db.Preload("Company").
		Order(sortBy + " " + sortDir).
		Limit(query.PerPage).
		Offset((query.Page - 1) * query.PerPage).
		Find(&consumers).Error
	return consumers, total, err
}

// FindExpired returns joined accounts whose offer window has passed. The
// expiry sweep deactivates them.
func (r *consumerRepository) FindExpired(ctx context.Context, asOf time.Time) ([]models.Consumer, error) {
	var consumers []models.Consumer
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", asOf).
		Where("status IN ?", []string{models.ConsumerStatusJoined, models.ConsumerStatusPaymentSetup}).
		Find(&consumers).Error
	return consumers, err
}

// FindDueForRestart returns held accounts whose restart date has arrived
func (r *consumerRepository) FindDueForRestart(ctx context.Context, asOf time.Time) ([]models.Consumer, error) {
	var consumers []models.Consumer
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ConsumerStatusHold).
		Where("restart_date IS NOT NULL AND restart_date <= ?", asOf).
		Find(&consumers).Error
	return consumers, err
}

func (r *consumerRepository) CountByStatus(ctx context.Context, companyID uint, superAdmin bool) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&models.Consumer{}).
		Scopes(CompanyScope(companyID, superAdmin)).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
