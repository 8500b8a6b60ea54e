package repository

import (
	"context"
	"time"

	"github.com/younegotiate/negotiate-api/internal/models"
	"gorm.io/gorm"
)

// ScheduleTransactionRepository defines the interface for schedule row data access
type ScheduleTransactionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ScheduleTransaction, error)
	FindByConsumer(ctx context.Context, consumerID uint) ([]models.ScheduleTransaction, error)
	FindDue(ctx context.Context, asOf time.Time) ([]models.ScheduleTransaction, error)
	FindUnconsumedByNegotiation(ctx context.Context, negotiationID uint) ([]models.ScheduleTransaction, error)
	CreateBatch(ctx context.Context, rows []models.ScheduleTransaction) error
	Update(ctx context.Context, row *models.ScheduleTransaction) error
	CancelUnconsumedByConsumer(ctx context.Context, consumerID uint) error
	SumScheduledByConsumer(ctx context.Context, consumerID uint) (float64, error)
}

type scheduleTransactionRepository struct {
	db *gorm.DB
}

// NewScheduleTransactionRepository creates a new schedule transaction repository
func NewScheduleTransactionRepository(db *gorm.DB) ScheduleTransactionRepository {
	return &scheduleTransactionRepository{db: db}
}

func (r *scheduleTransactionRepository) FindByID(ctx context.Context, id uint) (*models.ScheduleTransaction, error) {
	var row models.ScheduleTransaction
	err := r.db.WithContext(ctx).First(&row, id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *scheduleTransactionRepository) FindByConsumer(ctx context.Context, consumerID uint) ([]models.ScheduleTransaction, error) {
	var rows []models.ScheduleTransaction
	err := r.db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Order("schedule_date ASC").
		Find(&rows).Error
	return rows, err
}

// FindDue returns scheduled rows whose date has arrived, with the consumer
// and payment profile preloaded for the capture job.
func (r *scheduleTransactionRepository) FindDue(ctx context.Context, asOf time.Time) ([]models.ScheduleTransaction, error) {
	var rows []models.ScheduleTransaction
	err := r.db.WithContext(ctx).
		Preload("Consumer").
		Preload("PaymentProfile").
		Where("status = ? AND schedule_date <= ?", models.ScheduleStatusScheduled, asOf).
		Order("schedule_date ASC").
		Find(&rows).Error
	return rows, err
}

// FindUnconsumedByNegotiation returns scheduled and failed rows still owed
// against a plan. Regeneration reuses these instead of duplicating them.
func (r *scheduleTransactionRepository) FindUnconsumedByNegotiation(ctx context.Context, negotiationID uint) ([]models.ScheduleTransaction, error) {
	var rows []models.ScheduleTransaction
	err := r.db.WithContext(ctx).
		Where("negotiation_id = ?", negotiationID).
		Where("status IN ?", []string{models.ScheduleStatusScheduled, models.ScheduleStatusFailed}).
		Order("schedule_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *scheduleTransactionRepository) CreateBatch(ctx context.Context, rows []models.ScheduleTransaction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *scheduleTransactionRepository) Update(ctx context.Context, row *models.ScheduleTransaction) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// CancelUnconsumedByConsumer voids every future row on the plan. Used when a
// consumer declines, disputes, or deactivates mid-plan.
func (r *scheduleTransactionRepository) CancelUnconsumedByConsumer(ctx context.Context, consumerID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.ScheduleTransaction{}).
		Where("consumer_id = ? AND status IN ?", consumerID,
			[]string{models.ScheduleStatusScheduled, models.ScheduleStatusFailed}).
		Update("status", models.ScheduleStatusCancelled).Error
}

func (r *scheduleTransactionRepository) SumScheduledByConsumer(ctx context.Context, consumerID uint) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).
		Model(&models.ScheduleTransaction{}).
		Where("consumer_id = ? AND status = ?", consumerID, models.ScheduleStatusScheduled).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}
