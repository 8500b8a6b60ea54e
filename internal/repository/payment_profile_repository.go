package repository

import (
	"context"

	"github.com/younegotiate/negotiate-api/internal/models"
	"gorm.io/gorm"
)

// PaymentProfileRepository defines the interface for payment profile data access
type PaymentProfileRepository interface {
	FindByID(ctx context.Context, id uint) (*models.PaymentProfile, error)
	FindByConsumer(ctx context.Context, consumerID uint) ([]models.PaymentProfile, error)
	FindDefaultByConsumer(ctx context.Context, consumerID uint) (*models.PaymentProfile, error)
	Create(ctx context.Context, profile *models.PaymentProfile) error
	Delete(ctx context.Context, id uint) error
	SoftDeleteByConsumer(ctx context.Context, consumerID uint) error
}

type paymentProfileRepository struct {
	db *gorm.DB
}

// NewPaymentProfileRepository creates a new payment profile repository
func NewPaymentProfileRepository(db *gorm.DB) PaymentProfileRepository {
	return &paymentProfileRepository{db: db}
}

func (r *paymentProfileRepository) FindByID(ctx context.Context, id uint) (*models.PaymentProfile, error) {
	var profile models.PaymentProfile
	err := r.db.WithContext(ctx).First(&profile, id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *paymentProfileRepository) FindByConsumer(ctx context.Context, consumerID uint) ([]models.PaymentProfile, error) {
	var profiles []models.PaymentProfile
	err := r.db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

// FindDefaultByConsumer returns the newest stored method, which the capture
// job uses when a schedule row carries no explicit profile.
func (r *paymentProfileRepository) FindDefaultByConsumer(ctx context.Context, consumerID uint) (*models.PaymentProfile, error) {
	var profile models.PaymentProfile
	err := r.db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Order("created_at DESC").
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *paymentProfileRepository) Create(ctx context.Context, profile *models.PaymentProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *paymentProfileRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentProfile{}, id).Error
}

// SoftDeleteByConsumer removes every stored method for an account, used when
// the account deactivates.
func (r *paymentProfileRepository) SoftDeleteByConsumer(ctx context.Context, consumerID uint) error {
	return r.db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Delete(&models.PaymentProfile{}).Error
}
