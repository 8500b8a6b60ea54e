package models

import (
	"time"

	"gorm.io/gorm"
)

// Consumer represents a placed account a consumer can negotiate against
type Consumer struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	CompanyID   uint  `gorm:"not null;index" json:"company_id"`
	SubclientID *uint `gorm:"index" json:"subclient_id"`
	UserID      *uint `gorm:"index" json:"user_id"`

	AccountNumber string `gorm:"not null;index" json:"account_number"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `gorm:"index" json:"email"`
	Mobile        string `json:"mobile"`

	Status         string  `gorm:"default:joined;not null;index" json:"status"`
	CurrentBalance float64 `gorm:"type:decimal(12,2);not null" json:"current_balance"`
	TotalBalance   float64 `gorm:"type:decimal(12,2);not null" json:"total_balance"`

	// Nullable negotiation terms; effective values fall back to subclient then company
	PifDiscountPercent      *float64 `gorm:"type:decimal(5,2)" json:"pif_discount_percent"`
	PaySetupDiscountPercent *float64 `gorm:"type:decimal(5,2)" json:"pay_setup_discount_percent"`
	MinMonthlyPayPercent    *float64 `gorm:"type:decimal(5,2)" json:"min_monthly_pay_percent"`
	MaxDaysFirstPay         *int     `json:"max_days_first_pay"`

	CounterOffer     bool `gorm:"default:false" json:"counter_offer"`
	CustomOffer      bool `gorm:"default:false" json:"custom_offer"`
	OfferAccepted    bool `gorm:"default:false" json:"offer_accepted"`
	HasFailedPayment bool `gorm:"default:false" json:"has_failed_payment"`

	DisputedAt  *time.Time `json:"disputed_at"`
	RestartDate *time.Time `gorm:"type:date" json:"restart_date"`
	HoldReason  *string    `json:"hold_reason"`
	ExpiryDate  *time.Time `gorm:"type:date;index" json:"expiry_date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Associations
	Company         Company              `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Subclient       *Subclient           `gorm:"foreignKey:SubclientID" json:"subclient,omitempty"`
	Negotiation     *ConsumerNegotiation `gorm:"foreignKey:ConsumerID" json:"negotiation,omitempty"`
	PaymentProfiles []PaymentProfile     `gorm:"foreignKey:ConsumerID" json:"payment_profiles,omitempty"`
}

// TableName specifies the table name for Consumer
func (Consumer) TableName() string {
	return "consumers"
}

// Consumer status constants
const (
	ConsumerStatusJoined          = "joined"
	ConsumerStatusPaymentSetup    = "payment_setup"
	ConsumerStatusPaymentAccepted = "payment_accepted"
	ConsumerStatusSettled         = "settled"
	ConsumerStatusDispute         = "dispute"
	ConsumerStatusNotPaying       = "not_paying"
	ConsumerStatusDeactivated     = "deactivated"
	ConsumerStatusPaymentDeclined = "payment_declined"
	ConsumerStatusRenegotiate     = "renegotiate"
	ConsumerStatusHold            = "hold"
)

// FullName returns the consumer's display name
func (c *Consumer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	return c.FirstName + " " + c.LastName
}

// MayNegotiate returns true if the consumer can open or revise an offer
func (c *Consumer) MayNegotiate() bool {
	switch c.Status {
	case ConsumerStatusJoined, ConsumerStatusPaymentSetup, ConsumerStatusRenegotiate:
		return true
	}
	return false
}

// MayAcceptOffer returns true if an offer on this account can be accepted
func (c *Consumer) MayAcceptOffer() bool {
	return c.Status == ConsumerStatusPaymentSetup || c.Status == ConsumerStatusJoined ||
		c.Status == ConsumerStatusRenegotiate
}

// MayDecline returns true if the consumer can decline the current plan
func (c *Consumer) MayDecline() bool {
	return c.Status == ConsumerStatusPaymentSetup || c.Status == ConsumerStatusPaymentAccepted
}

// MayRestart returns true if a held account can resume its plan
func (c *Consumer) MayRestart() bool {
	return c.Status == ConsumerStatusHold
}

// MaySettle returns true if the account can flip to settled
func (c *Consumer) MaySettle() bool {
	return c.Status == ConsumerStatusPaymentAccepted
}

// IsExpired returns true if the account's offer window has passed
func (c *Consumer) IsExpired() bool {
	return c.ExpiryDate != nil && time.Now().After(*c.ExpiryDate)
}

// EffectivePifDiscountPercent resolves the PIF discount: consumer override,
// then subclient, then company default.
func (c *Consumer) EffectivePifDiscountPercent() float64 {
	if c.PifDiscountPercent != nil {
		return *c.PifDiscountPercent
	}
	if c.Subclient != nil && c.Subclient.PifDiscountPercent != nil {
		return *c.Subclient.PifDiscountPercent
	}
	return c.Company.PifDiscountPercent
}

// EffectivePaySetupDiscountPercent resolves the installment-plan discount
func (c *Consumer) EffectivePaySetupDiscountPercent() float64 {
	if c.PaySetupDiscountPercent != nil {
		return *c.PaySetupDiscountPercent
	}
	if c.Subclient != nil && c.Subclient.PaySetupDiscountPercent != nil {
		return *c.Subclient.PaySetupDiscountPercent
	}
	return c.Company.PaySetupDiscountPercent
}

// EffectiveMinMonthlyPayPercent resolves the minimum-monthly divisor
func (c *Consumer) EffectiveMinMonthlyPayPercent() float64 {
	if c.MinMonthlyPayPercent != nil {
		return *c.MinMonthlyPayPercent
	}
	if c.Subclient != nil && c.Subclient.MinMonthlyPayPercent != nil {
		return *c.Subclient.MinMonthlyPayPercent
	}
	return c.Company.MinMonthlyPayPercent
}

// EffectiveMaxDaysFirstPay resolves the first-payment window in days
func (c *Consumer) EffectiveMaxDaysFirstPay() int {
	if c.MaxDaysFirstPay != nil {
		return *c.MaxDaysFirstPay
	}
	if c.Subclient != nil && c.Subclient.MaxDaysFirstPay != nil {
		return *c.Subclient.MaxDaysFirstPay
	}
	if c.Company.MaxDaysFirstPay > 0 {
		return c.Company.MaxDaysFirstPay
	}
	return 30
}

// ConsumerResponse is the JSON response format for consumers
type ConsumerResponse struct {
	ID               uint       `json:"id"`
	CompanyID        uint       `json:"company_id"`
	SubclientID      *uint      `json:"subclient_id"`
	AccountNumber    string     `json:"account_number"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	Mobile           string     `json:"mobile"`
	Status           string     `json:"status"`
	CurrentBalance   float64    `json:"current_balance"`
	TotalBalance     float64    `json:"total_balance"`
	CounterOffer     bool       `json:"counter_offer"`
	CustomOffer      bool       `json:"custom_offer"`
	OfferAccepted    bool       `json:"offer_accepted"`
	HasFailedPayment bool       `json:"has_failed_payment"`
	DisputedAt       *time.Time `json:"disputed_at"`
	RestartDate      *time.Time `json:"restart_date"`
	HoldReason       *string    `json:"hold_reason"`
	ExpiryDate       *time.Time `json:"expiry_date"`
	CompanyName      string     `json:"company_name,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ToResponse converts Consumer to ConsumerResponse
func (c *Consumer) ToResponse() ConsumerResponse {
	resp := ConsumerResponse{
		ID:               c.ID,
		CompanyID:        c.CompanyID,
		SubclientID:      c.SubclientID,
		AccountNumber:    c.AccountNumber,
		FullName:         c.FullName(),
		Email:            c.Email,
		Mobile:           c.Mobile,
		Status:           c.Status,
		CurrentBalance:   c.CurrentBalance,
		TotalBalance:     c.TotalBalance,
		CounterOffer:     c.CounterOffer,
		CustomOffer:      c.CustomOffer,
		OfferAccepted:    c.OfferAccepted,
		HasFailedPayment: c.HasFailedPayment,
		DisputedAt:       c.DisputedAt,
		RestartDate:      c.RestartDate,
		HoldReason:       c.HoldReason,
		ExpiryDate:       c.ExpiryDate,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}

	if c.Company.ID != 0 {
		resp.CompanyName = c.Company.Name
	}

	return resp
}
