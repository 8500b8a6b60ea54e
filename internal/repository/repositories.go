package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User           UserRepository
	RefreshToken   RefreshTokenRepository
	Company        CompanyRepository
	Consumer       ConsumerRepository
	Negotiation    NegotiationRepository
	Schedule       ScheduleTransactionRepository
	Transaction    TransactionRepository
	PaymentProfile PaymentProfileRepository
	Notification   NotificationRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:           NewUserRepository(db),
		RefreshToken:   NewRefreshTokenRepository(db),
		Company:        NewCompanyRepository(db),
		Consumer:       NewConsumerRepository(db),
		Negotiation:    NewNegotiationRepository(db),
		Schedule:       NewScheduleTransactionRepository(db),
		Transaction:    NewTransactionRepository(db),
		PaymentProfile: NewPaymentProfileRepository(db),
		Notification:   NewNotificationRepository(db),
	}
}
