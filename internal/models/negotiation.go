package models

import (
	"time"
)

// ConsumerNegotiation captures the consumer's offer and the creditor's
// counter-offer in parallel column families. Exactly one of the PIF or
// installment families is populated, depending on NegotiationType.
type ConsumerNegotiation struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ConsumerID uint `gorm:"not null;uniqueIndex" json:"consumer_id"`
	CompanyID  uint `gorm:"not null;index" json:"company_id"`

	State           string `gorm:"default:no_offer;not null;index" json:"state"`
	NegotiationType string `gorm:"not null" json:"negotiation_type"`
	InstallmentType string `gorm:"default:monthly" json:"installment_type"`

	PaymentPlanCurrentBalance *float64 `gorm:"type:decimal(12,2)" json:"payment_plan_current_balance"`

	// Consumer offer columns
	OneTimeSettlement *float64   `gorm:"type:decimal(12,2)" json:"one_time_settlement"`
	MonthlyAmount     *float64   `gorm:"type:decimal(12,2)" json:"monthly_amount"`
	NoOfInstallments  *int       `json:"no_of_installments"`
	LastMonthAmount   *float64   `gorm:"type:decimal(12,2)" json:"last_month_amount"`
	FirstPayDate      *time.Time `gorm:"type:date" json:"first_pay_date"`
	Note              *string    `gorm:"type:text" json:"note"`

	// Creditor counter columns
	CounterOneTimeAmount    *float64   `gorm:"type:decimal(12,2)" json:"counter_one_time_amount"`
	CounterMonthlyAmount    *float64   `gorm:"type:decimal(12,2)" json:"counter_monthly_amount"`
	CounterNoOfInstallments *int       `json:"counter_no_of_installments"`
	CounterLastMonthAmount  *float64   `gorm:"type:decimal(12,2)" json:"counter_last_month_amount"`
	CounterFirstPayDate     *time.Time `gorm:"type:date" json:"counter_first_pay_date"`
	CounterNote             *string    `gorm:"type:text" json:"counter_note"`

	OfferAccepted        bool `gorm:"default:false" json:"offer_accepted"`
	CounterOfferAccepted bool `gorm:"default:false" json:"counter_offer_accepted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Consumer Consumer `gorm:"foreignKey:ConsumerID" json:"-"`
}

// TableName specifies the table name for ConsumerNegotiation
func (ConsumerNegotiation) TableName() string {
	return "consumer_negotiations"
}

// Negotiation state constants
const (
	NegotiationStateNoOffer                = "no_offer"
	NegotiationStatePendingConsumerOffer   = "pending_consumer_offer"
	NegotiationStatePendingCreditorCounter = "pending_creditor_counter"
	NegotiationStateAutoApproved           = "auto_approved"
	NegotiationStateManuallyAccepted       = "manually_accepted"
	NegotiationStateDeclined               = "declined"
)

// Negotiation type constants
const (
	NegotiationTypePif         = "pif"
	NegotiationTypeInstallment = "installment"
)

// Installment cadence constants
const (
	InstallmentTypeWeekly    = "weekly"
	InstallmentTypeBimonthly = "bimonthly"
	InstallmentTypeMonthly   = "monthly"
)

// IsAccepted returns true once either side's offer has been accepted
func (n *ConsumerNegotiation) IsAccepted() bool {
	return n.OfferAccepted || n.CounterOfferAccepted
}

// IsPif returns true for lump-sum settlement negotiations
func (n *ConsumerNegotiation) IsPif() bool {
	return n.NegotiationType == NegotiationTypePif
}

// MayCounter returns true while either side can still revise terms
func (n *ConsumerNegotiation) MayCounter() bool {
	switch n.State {
	case NegotiationStateNoOffer, NegotiationStatePendingConsumerOffer, NegotiationStatePendingCreditorCounter:
		return true
	}
	return false
}

// MayAccept returns true while a pending offer exists to accept
func (n *ConsumerNegotiation) MayAccept() bool {
	return n.State == NegotiationStatePendingConsumerOffer ||
		n.State == NegotiationStatePendingCreditorCounter
}

// AcceptedAmount returns the settlement or monthly amount that was accepted.
// When the creditor's counter was the accepted side, the counter columns win.
func (n *ConsumerNegotiation) AcceptedAmount() float64 {
	if n.IsPif() {
		if n.CounterOfferAccepted && n.CounterOneTimeAmount != nil {
			return *n.CounterOneTimeAmount
		}
		if n.OneTimeSettlement != nil {
			return *n.OneTimeSettlement
		}
		return 0
	}
	if n.CounterOfferAccepted && n.CounterMonthlyAmount != nil {
		return *n.CounterMonthlyAmount
	}
	if n.MonthlyAmount != nil {
		return *n.MonthlyAmount
	}
	return 0
}

// AcceptedFirstPayDate returns the accepted side's first payment date
func (n *ConsumerNegotiation) AcceptedFirstPayDate() time.Time {
	if n.CounterOfferAccepted && n.CounterFirstPayDate != nil {
		return *n.CounterFirstPayDate
	}
	if n.FirstPayDate != nil {
		return *n.FirstPayDate
	}
	return time.Now()
}

// AcceptedInstallmentTerms returns (installments, lastMonthAmount) for the accepted side
func (n *ConsumerNegotiation) AcceptedInstallmentTerms() (int, float64) {
	if n.CounterOfferAccepted && n.CounterNoOfInstallments != nil {
		last := 0.0
		if n.CounterLastMonthAmount != nil {
			last = *n.CounterLastMonthAmount
		}
		return *n.CounterNoOfInstallments, last
	}
	installments := 0
	if n.NoOfInstallments != nil {
		installments = *n.NoOfInstallments
	}
	last := 0.0
	if n.LastMonthAmount != nil {
		last = *n.LastMonthAmount
	}
	return installments, last
}

// ClearCounterColumns nulls every creditor counter field. Called whenever a
// fresh pending counter replaces the previous one.
func (n *ConsumerNegotiation) ClearCounterColumns() {
	n.CounterOneTimeAmount = nil
	n.CounterMonthlyAmount = nil
	n.CounterNoOfInstallments = nil
	n.CounterLastMonthAmount = nil
	n.CounterFirstPayDate = nil
	n.CounterNote = nil
}

// NegotiationResponse is the JSON response format for negotiations
type NegotiationResponse struct {
	ID                      uint       `json:"id"`
	ConsumerID              uint       `json:"consumer_id"`
	State                   string     `json:"state"`
	NegotiationType         string     `json:"negotiation_type"`
	InstallmentType         string     `json:"installment_type"`
	OneTimeSettlement       *float64   `json:"one_time_settlement"`
	MonthlyAmount           *float64   `json:"monthly_amount"`
	NoOfInstallments        *int       `json:"no_of_installments"`
	LastMonthAmount         *float64   `json:"last_month_amount"`
	FirstPayDate            *time.Time `json:"first_pay_date"`
	Note                    string     `json:"note,omitempty"`
	CounterOneTimeAmount    *float64   `json:"counter_one_time_amount"`
	CounterMonthlyAmount    *float64   `json:"counter_monthly_amount"`
	CounterNoOfInstallments *int       `json:"counter_no_of_installments"`
	CounterLastMonthAmount  *float64   `json:"counter_last_month_amount"`
	CounterFirstPayDate     *time.Time `json:"counter_first_pay_date"`
	CounterNote             string     `json:"counter_note,omitempty"`
	OfferAccepted           bool       `json:"offer_accepted"`
	CounterOfferAccepted    bool       `json:"counter_offer_accepted"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// ToResponse converts ConsumerNegotiation to NegotiationResponse. Free-text
// notes are decoded back from their HTML-entity encoded stored form.
func (n *ConsumerNegotiation) ToResponse() NegotiationResponse {
	return NegotiationResponse{
		ID:                      n.ID,
		ConsumerID:              n.ConsumerID,
		State:                   n.State,
		NegotiationType:         n.NegotiationType,
		InstallmentType:         n.InstallmentType,
		OneTimeSettlement:       n.OneTimeSettlement,
		MonthlyAmount:           n.MonthlyAmount,
		NoOfInstallments:        n.NoOfInstallments,
		LastMonthAmount:         n.LastMonthAmount,
		FirstPayDate:            n.FirstPayDate,
		Note:                    DecodeText(n.Note),
		CounterOneTimeAmount:    n.CounterOneTimeAmount,
		CounterMonthlyAmount:    n.CounterMonthlyAmount,
		CounterNoOfInstallments: n.CounterNoOfInstallments,
		CounterLastMonthAmount:  n.CounterLastMonthAmount,
		CounterFirstPayDate:     n.CounterFirstPayDate,
		CounterNote:             DecodeText(n.CounterNote),
		OfferAccepted:           n.OfferAccepted,
		CounterOfferAccepted:    n.CounterOfferAccepted,
		CreatedAt:               n.CreatedAt,
		UpdatedAt:               n.UpdatedAt,
	}
}
