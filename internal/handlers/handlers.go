package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/younegotiate/negotiate-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Consumer       *ConsumerHandler
	Negotiation    *NegotiationHandler
	Schedule       *ScheduleHandler
	Payment        *PaymentHandler
	Company        *CompanyHandler
	PaymentProfile *PaymentProfileHandler
	Notification   *NotificationHandler
	Report         *ReportHandler
	Audit          *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(),
		Auth:           NewAuthHandler(svcs.Auth),
		Consumer:       NewConsumerHandler(svcs.Consumer, svcs.Offer),
		Negotiation:    NewNegotiationHandler(svcs.Negotiation),
		Schedule:       NewScheduleHandler(svcs.Schedule, svcs.Payment),
		Payment:        NewPaymentHandler(svcs.Payment),
		Company:        NewCompanyHandler(svcs.Company),
		PaymentProfile: NewPaymentProfileHandler(svcs.Consumer),
		Notification:   NewNotificationHandler(svcs.Notification),
		Report:         NewReportHandler(svcs.Report),
		Audit:          NewAuditHandler(svcs.Audit),
	}
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
