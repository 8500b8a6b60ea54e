package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduleTransaction is a planned future capture created when an offer is
// accepted, and consumed by the payment job when its date arrives.
type ScheduleTransaction struct {
	ID               uint  `gorm:"primaryKey" json:"id"`
	ConsumerID       uint  `gorm:"not null;index" json:"consumer_id"`
	NegotiationID    uint  `gorm:"not null;index" json:"negotiation_id"`
	PaymentProfileID *uint `gorm:"index" json:"payment_profile_id"`

	Amount          float64    `gorm:"type:decimal(12,2);not null" json:"amount"`
	ScheduleDate    time.Time  `gorm:"type:date;not null;index" json:"schedule_date"`
	Status          string     `gorm:"default:scheduled;not null;index" json:"status"`
	TransactionType string     `gorm:"not null" json:"transaction_type"`
	AttemptCount    int        `gorm:"default:0" json:"attempt_count"`
	LastAttemptedAt *time.Time `json:"last_attempted_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Associations
	Consumer       Consumer        `gorm:"foreignKey:ConsumerID" json:"-"`
	PaymentProfile *PaymentProfile `gorm:"foreignKey:PaymentProfileID" json:"payment_profile,omitempty"`
}

// TableName specifies the table name for ScheduleTransaction
func (ScheduleTransaction) TableName() string {
	return "schedule_transactions"
}

// Schedule transaction status constants
const (
	ScheduleStatusScheduled  = "scheduled"
	ScheduleStatusSuccessful = "successful"
	ScheduleStatusFailed     = "failed"
	ScheduleStatusCancelled  = "cancelled"
)

// Schedule transaction type constants
const (
	TransactionTypePif         = "pif"
	TransactionTypeInstallment = "installment"
)

// IsConsumed returns true once the row has been captured successfully
func (s *ScheduleTransaction) IsConsumed() bool {
	return s.Status == ScheduleStatusSuccessful
}

// IsDue returns true when the row is scheduled and its date has arrived
func (s *ScheduleTransaction) IsDue(now time.Time) bool {
	return s.Status == ScheduleStatusScheduled && !s.ScheduleDate.After(now)
}

// MayRetry returns true for failed rows that can be re-attempted
func (s *ScheduleTransaction) MayRetry() bool {
	return s.Status == ScheduleStatusFailed
}

// ScheduleTransactionResponse is the JSON response format for schedule rows
type ScheduleTransactionResponse struct {
	ID              uint       `json:"id"`
	ConsumerID      uint       `json:"consumer_id"`
	Amount          float64    `json:"amount"`
	ScheduleDate    time.Time  `json:"schedule_date"`
	Status          string     `json:"status"`
	TransactionType string     `json:"transaction_type"`
	AttemptCount    int        `json:"attempt_count"`
	LastAttemptedAt *time.Time `json:"last_attempted_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToResponse converts ScheduleTransaction to its response format
func (s *ScheduleTransaction) ToResponse() ScheduleTransactionResponse {
	return ScheduleTransactionResponse{
		ID:              s.ID,
		ConsumerID:      s.ConsumerID,
		Amount:          s.Amount,
		ScheduleDate:    s.ScheduleDate,
		Status:          s.Status,
		TransactionType: s.TransactionType,
		AttemptCount:    s.AttemptCount,
		LastAttemptedAt: s.LastAttemptedAt,
		CreatedAt:       s.CreatedAt,
	}
}
