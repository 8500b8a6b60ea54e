package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentProfile is a consumer's stored payment method tokenized at one of
// the supported merchant gateways.
type PaymentProfile struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ConsumerID uint `gorm:"not null;index" json:"consumer_id"`

	Method   string `gorm:"not null" json:"method"`
	Merchant string `gorm:"not null" json:"merchant"`

	Token    string  `gorm:"not null" json:"-"`
	Last4    string  `json:"last4"`
	Expiry   *string `json:"expiry"`
	BankName *string `json:"bank_name"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for PaymentProfile
func (PaymentProfile) TableName() string {
	return "payment_profiles"
}

// Payment method constants
const (
	PaymentMethodCard = "card"
	PaymentMethodACH  = "ach"
)

// Merchant gateway constants
const (
	MerchantAuthorizeNet = "authorize_net"
	MerchantStripe       = "stripe"
	MerchantTilled       = "tilled"
	MerchantUSAEpay      = "usaepay"
)
