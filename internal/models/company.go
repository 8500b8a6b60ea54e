package models

import (
	"time"

	"gorm.io/gorm"
)

// Company is a creditor tenant placing consumer accounts
type Company struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`

	// Default negotiation terms applied when neither the consumer nor the
	// subclient carries an override
	PifDiscountPercent      float64 `gorm:"type:decimal(5,2);default:0" json:"pif_discount_percent"`
	PaySetupDiscountPercent float64 `gorm:"type:decimal(5,2);default:0" json:"pay_setup_discount_percent"`
	MinMonthlyPayPercent    float64 `gorm:"type:decimal(5,2);default:0" json:"min_monthly_pay_percent"`
	MaxDaysFirstPay         int     `gorm:"default:30" json:"max_days_first_pay"`

	IsSuperAdmin bool   `gorm:"default:false" json:"is_super_admin"`
	Status       string `gorm:"default:active;index" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Associations
	Subclients  []Subclient         `gorm:"foreignKey:CompanyID" json:"subclients,omitempty"`
	Memberships []CompanyMembership `gorm:"foreignKey:CompanyID" json:"memberships,omitempty"`
}

// TableName specifies the table name for Company
func (Company) TableName() string {
	return "companies"
}

// Company status constants
const (
	CompanyStatusActive   = "active"
	CompanyStatusInactive = "inactive"
)

// Subclient groups accounts under a company with optional term overrides
type Subclient struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CompanyID uint   `gorm:"not null;index" json:"company_id"`
	Name      string `gorm:"not null" json:"name"`

	PifDiscountPercent      *float64 `gorm:"type:decimal(5,2)" json:"pif_discount_percent"`
	PaySetupDiscountPercent *float64 `gorm:"type:decimal(5,2)" json:"pay_setup_discount_percent"`
	MinMonthlyPayPercent    *float64 `gorm:"type:decimal(5,2)" json:"min_monthly_pay_percent"`
	MaxDaysFirstPay         *int     `json:"max_days_first_pay"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for Subclient
func (Subclient) TableName() string {
	return "subclients"
}

// CompanyMembership carries the billing plan; Fee is the platform's cut (%)
// applied to every successful capture for the company's consumers.
type CompanyMembership struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CompanyID uint       `gorm:"not null;index" json:"company_id"`
	PlanName  string     `gorm:"not null" json:"plan_name"`
	Fee       float64    `gorm:"type:decimal(5,2);not null" json:"fee"`
	Status    string     `gorm:"default:active;index" json:"status"`
	ExpiresAt *time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for CompanyMembership
func (CompanyMembership) TableName() string {
	return "company_memberships"
}

// Membership status constants
const (
	MembershipStatusActive   = "active"
	MembershipStatusExpired  = "expired"
	MembershipStatusCanceled = "canceled"
)

// IsActive returns true when the membership is current
func (m *CompanyMembership) IsActive() bool {
	if m.Status != MembershipStatusActive {
		return false
	}
	return m.ExpiresAt == nil || time.Now().Before(*m.ExpiresAt)
}
