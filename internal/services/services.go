package services

import (
	"github.com/younegotiate/negotiate-api/internal/config"
	"github.com/younegotiate/negotiate-api/internal/gateway"
	"github.com/younegotiate/negotiate-api/internal/jobs"
	"github.com/younegotiate/negotiate-api/internal/repository"
	"github.com/younegotiate/negotiate-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	Offer        *OfferService
	Negotiation  *NegotiationService
	Schedule     *ScheduleService
	Payment      *PaymentService
	Consumer     *ConsumerService
	Company      *CompanyService
	Notification *NotificationService
	Report       *ReportService
	Audit        *AuditService
	Email        *EmailService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(db)

	offerSvc := NewOfferService(repos.Consumer)
	scheduleSvc := NewScheduleService(repos.Schedule, repos.PaymentProfile)
	dispatcher := gateway.NewDispatcher(cfg)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, emailSvc, cfg),
		Offer:        offerSvc,
		Negotiation:  NewNegotiationService(repos.Consumer, repos.Negotiation, offerSvc, scheduleSvc, repos.PaymentProfile, notificationSvc, emailSvc, auditSvc, worker),
		Schedule:     scheduleSvc,
		Payment:      NewPaymentService(repos.Schedule, repos.Transaction, repos.Consumer, repos.Negotiation, repos.PaymentProfile, repos.Company, notificationSvc, emailSvc, auditSvc, dispatcher),
		Consumer:     NewConsumerService(repos.Consumer, repos.Negotiation, scheduleSvc, repos.PaymentProfile, notificationSvc, auditSvc, worker),
		Company:      NewCompanyService(repos.Company, notificationSvc, auditSvc),
		Notification: notificationSvc,
		Report:       NewReportService(repos.Consumer, repos.Transaction, repos.Schedule, storage),
		Audit:        auditSvc,
		Email:        emailSvc,
	}
}
