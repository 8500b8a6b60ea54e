package repository

import (
	"context"

	"github.com/younegotiate/negotiate-api/internal/models"
	"gorm.io/gorm"
)

// NegotiationRepository defines the interface for negotiation data access
type NegotiationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ConsumerNegotiation, error)
	FindByConsumerID(ctx context.Context, consumerID uint) (*models.ConsumerNegotiation, error)
	Create(ctx context.Context, negotiation *models.ConsumerNegotiation) error
	Update(ctx context.Context, negotiation *models.ConsumerNegotiation) error
	Delete(ctx context.Context, id uint) error
	ListPendingByCompany(ctx context.Context, companyID uint, query *ListQuery) ([]models.ConsumerNegotiation, int64, error)
}

type negotiationRepository struct {
	db *gorm.DB
}

// NewNegotiationRepository creates a new negotiation repository
func NewNegotiationRepository(db *gorm.DB) NegotiationRepository {
	return &negotiationRepository{db: db}
}

func (r *negotiationRepository) FindByID(ctx context.Context, id uint) (*models.ConsumerNegotiation, error) {
	var negotiation models.ConsumerNegotiation
	err := r.db.WithContext(ctx).First(&negotiation, id).Error
	if err != nil {
		return nil, err
	}
	return &negotiation, nil
}

func (r *negotiationRepository) FindByConsumerID(ctx context.Context, consumerID uint) (*models.ConsumerNegotiation, error) {
	var negotiation models.ConsumerNegotiation
	err := r.db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		First(&negotiation).Error
	if err != nil {
		return nil, err
	}
	return &negotiation, nil
}

func (r *negotiationRepository) Create(ctx context.Context, negotiation *models.ConsumerNegotiation) error {
	return r.db.WithContext(ctx).Create(negotiation).Error
}

func (r *negotiationRepository) Update(ctx context.Context, negotiation *models.ConsumerNegotiation) error {
	return r.db.WithContext(ctx).Save(negotiation).Error
}

func (r *negotiationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ConsumerNegotiation{}, id).Error
}

// ListPendingByCompany returns negotiations awaiting a creditor decision,
// newest first. Feeds the creditor's offer review queue.
func (r *negotiationRepository) ListPendingByCompany(ctx context.Context, companyID uint, query *ListQuery) ([]models.ConsumerNegotiation, int64, error) {
	var negotiations []models.ConsumerNegotiation
	var total int64

	db := r.db.WithContext(ctx).
		Model(&models.ConsumerNegotiation{}).
		Where("company_id = ?", companyID).
		Where("state IN ?", []string{
			models.NegotiationStatePendingConsumerOffer,
			models.NegotiationStatePendingCreditorCounter,
		})

	if negotiationType := query.Filters["negotiation_type"]; negotiationType != "" {
		db = db.Where("negotiation_type = ?", negotiationType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Consumer").
		Order("updated_at DESC").
		Limit(query.PerPage).
		Offset((query.Page - 1) * query.PerPage).
		Find(&negotiations).Error
	return negotiations, total, err
}
