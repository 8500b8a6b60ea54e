package repository

import (
	"context"

	"github.com/younegotiate/negotiate-api/internal/models"
	"gorm.io/gorm"
)

// TransactionRepository defines the interface for transaction data access
type TransactionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Transaction, error)
	FindByConsumer(ctx context.Context, consumerID uint) ([]models.Transaction, error)
	Create(ctx context.Context, transaction *models.Transaction) error
	List(ctx context.Context, companyID uint, superAdmin bool, query *ListQuery) ([]models.Transaction, int64, error)
	LatestPerConsumer(ctx context.Context, companyID uint, superAdmin bool) ([]models.Transaction, error)
	SumSuccessfulByConsumer(ctx context.Context, consumerID uint) (float64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).First(&transaction, id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepository) FindByConsumer(ctx context.Context, consumerID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Order("created_at DESC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *transactionRepository) List(ctx context.Context, companyID uint, superAdmin bool, query *ListQuery) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	db := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Scopes(CompanyScope(companyID, superAdmin))

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if consumerID := query.Filters["consumer_id"]; consumerID != "" {
		db = db.Where("consumer_id = ?", consumerID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Limit(query.PerPage).
		Offset((query.Page - 1) * query.PerPage).
		Find(&transactions).Error
	return transactions, total, err
}

// LatestPerConsumer returns each consumer's most recent transaction using a
// window function, avoiding an N+1 over the consumer list.
func (r *transactionRepository) LatestPerConsumer(ctx context.Context, companyID uint, superAdmin bool) ([]models.Transaction, error) {
	var transactions []models.Transaction

	sub := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("*, ROW_NUMBER() OVER (PARTITION BY consumer_id ORDER BY created_at DESC) AS rn").
		Scopes(CompanyScope(companyID, superAdmin))

	err := r.db.WithContext(ctx).
		Table("(?) AS ranked", sub).
		Where("rn = 1").
		Scan(&transactions).Error
	return transactions, err
}

func (r *transactionRepository) SumSuccessfulByConsumer(ctx context.Context, consumerID uint) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("consumer_id = ? AND status = ?", consumerID, models.TransactionStatusSuccessful).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}
