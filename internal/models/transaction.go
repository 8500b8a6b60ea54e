package models

import (
	"time"
)

// Transaction is the immutable record of an attempted capture, including the
// raw gateway payload and the computed revenue split.
type Transaction struct {
	ID                    uint  `gorm:"primaryKey" json:"id"`
	ConsumerID            uint  `gorm:"not null;index" json:"consumer_id"`
	CompanyID             uint  `gorm:"not null;index" json:"company_id"`
	ScheduleTransactionID *uint `gorm:"index" json:"schedule_transaction_id"`

	Amount          float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status          string  `gorm:"not null;index" json:"status"`
	PaymentMode     string  `json:"payment_mode"`
	GatewayResponse string  `gorm:"type:text" json:"-"`
	ReferenceID     string  `gorm:"index" json:"reference_id"`

	RnnShare     float64 `gorm:"type:decimal(12,2);default:0" json:"rnn_share"`
	CompanyShare float64 `gorm:"type:decimal(12,2);default:0" json:"company_share"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Consumer            Consumer             `gorm:"foreignKey:ConsumerID" json:"-"`
	ScheduleTransaction *ScheduleTransaction `gorm:"foreignKey:ScheduleTransactionID" json:"-"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// Transaction status constants
const (
	TransactionStatusSuccessful = "successful"
	TransactionStatusFailed     = "failed"
)

// TransactionResponse is the JSON response format for transactions
type TransactionResponse struct {
	ID                    uint      `json:"id"`
	ConsumerID            uint      `json:"consumer_id"`
	ScheduleTransactionID *uint     `json:"schedule_transaction_id"`
	Amount                float64   `json:"amount"`
	Status                string    `json:"status"`
	PaymentMode           string    `json:"payment_mode"`
	ReferenceID           string    `json:"reference_id"`
	RnnShare              float64   `json:"rnn_share"`
	CompanyShare          float64   `json:"company_share"`
	CreatedAt             time.Time `json:"created_at"`
}

// ToResponse converts Transaction to TransactionResponse
func (t *Transaction) ToResponse() TransactionResponse {
	return TransactionResponse{
		ID:                    t.ID,
		ConsumerID:            t.ConsumerID,
		ScheduleTransactionID: t.ScheduleTransactionID,
		Amount:                t.Amount,
		Status:                t.Status,
		PaymentMode:           t.PaymentMode,
		ReferenceID:           t.ReferenceID,
		RnnShare:              t.RnnShare,
		CompanyShare:          t.CompanyShare,
		CreatedAt:             t.CreatedAt,
	}
}
