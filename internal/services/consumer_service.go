package services

import (
	"context"
	"fmt"
	"time"

	"github.com/younegotiate/negotiate-api/internal/jobs"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
	"github.com/younegotiate/negotiate-api/internal/statemachine"
	"github.com/younegotiate/negotiate-api/pkg/logger"
)

// HoldRequest pauses a payment plan until a restart date
type HoldRequest struct {
	Reason      string     `json:"reason" binding:"required"`
	RestartDate *time.Time `json:"restart_date" binding:"required"`
}

// ConsumerService manages account lifecycle outside the negotiation loop:
// disputes, holds, restarts, deactivation, and the background sweeps.
type ConsumerService struct {
	consumerRepo    repository.ConsumerRepository
	negotiationRepo repository.NegotiationRepository
	scheduleSvc     *ScheduleService
	profileRepo     repository.PaymentProfileRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewConsumerService(
	consumerRepo repository.ConsumerRepository,
	negotiationRepo repository.NegotiationRepository,
	scheduleSvc *ScheduleService,
	profileRepo repository.PaymentProfileRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *ConsumerService {
	return &ConsumerService{
		consumerRepo:    consumerRepo,
		negotiationRepo: negotiationRepo,
		scheduleSvc:     scheduleSvc,
		profileRepo:     profileRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *ConsumerService) FindByID(ctx context.Context, id uint) (*models.Consumer, error) {
	return s.consumerRepo.FindByIDWithDetails(ctx, id)
}

func (s *ConsumerService) List(ctx context.Context, companyID uint, superAdmin bool, query *repository.ListQuery) ([]models.Consumer, int64, error) {
	return s.consumerRepo.List(ctx, companyID, superAdmin, query)
}

func (s *ConsumerService) CountByStatus(ctx context.Context, companyID uint, superAdmin bool) (map[string]int64, error) {
	return s.consumerRepo.CountByStatus(ctx, companyID, superAdmin)
}

// Create imports a placed account for a company
func (s *ConsumerService) Create(ctx context.Context, consumer *models.Consumer, actorID uint, ip, userAgent string) error {
	if consumer.CurrentBalance <= 0 || consumer.AccountNumber == "" {
		return ErrValidation
	}
	if _, err := s.consumerRepo.FindByAccountNumber(ctx, consumer.CompanyID, consumer.AccountNumber); err == nil {
		return ErrDuplicate
	}

	consumer.Status = models.ConsumerStatusJoined
	if consumer.TotalBalance == 0 {
		consumer.TotalBalance = consumer.CurrentBalance
	}
	if err := s.consumerRepo.Create(ctx, consumer); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actorID, "create_consumer", "consumer", consumer.ID,
		fmt.Sprintf("account=%s balance=%.2f", consumer.AccountNumber, consumer.CurrentBalance), ip, userAgent)
	return nil
}

// Dispute flags the account as disputed and voids its future captures
func (s *ConsumerService) Dispute(ctx context.Context, consumerID uint, actorID uint, ip, userAgent string) (*models.Consumer, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}

	cfsm := statemachine.NewConsumerFSM(consumer)
	if err := cfsm.Dispute(ctx); err != nil {
		return nil, ErrInvalidState
	}
	now := time.Now()
	consumer.DisputedAt = &now

	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}
	s.scheduleSvc.CancelForConsumer(ctx, consumer.ID)

	s.notifyAgents(consumer, "Account Disputed",
		fmt.Sprintf("Account %s was marked as disputed", consumer.AccountNumber))
	s.auditSvc.Log(ctx, actorID, "dispute", "consumer", consumer.ID, "", ip, userAgent)
	return consumer, nil
}

// MarkNotPaying flags the account as not paying and voids future captures
func (s *ConsumerService) MarkNotPaying(ctx context.Context, consumerID uint, actorID uint, ip, userAgent string) (*models.Consumer, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}

	cfsm := statemachine.NewConsumerFSM(consumer)
	if err := cfsm.NotPaying(ctx); err != nil {
		return nil, ErrInvalidState
	}
	now := time.Now()
	consumer.DisputedAt = &now

	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}
	s.scheduleSvc.CancelForConsumer(ctx, consumer.ID)
	if consumer.Negotiation != nil {
		if err := s.negotiationRepo.Delete(ctx, consumer.Negotiation.ID); err != nil {
			return nil, err
		}
		consumer.Negotiation = nil
	}

	s.notifyAgents(consumer, "Account Not Paying",
		fmt.Sprintf("Account %s was marked as not paying", consumer.AccountNumber))
	s.auditSvc.Log(ctx, actorID, "not_paying", "consumer", consumer.ID, "", ip, userAgent)
	return consumer, nil
}

// Hold pauses an active plan until the restart date. Schedule rows stay in
// place; the capture job skips held accounts.
func (s *ConsumerService) Hold(ctx context.Context, consumerID uint, req *HoldRequest, actorID uint, ip, userAgent string) (*models.Consumer, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}
	if req.RestartDate == nil || req.RestartDate.Before(time.Now()) {
		return nil, ErrValidation
	}

	cfsm := statemachine.NewConsumerFSM(consumer)
	if err := cfsm.Hold(ctx); err != nil {
		return nil, ErrInvalidState
	}
	consumer.HoldReason = &req.Reason
	consumer.RestartDate = req.RestartDate

	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "hold", "consumer", consumer.ID,
		fmt.Sprintf("restart=%s reason=%s", req.RestartDate.Format("2006-01-02"), req.Reason), ip, userAgent)
	return consumer, nil
}

// Restart resumes a held plan. Overdue rows are captured on the next run.
func (s *ConsumerService) Restart(ctx context.Context, consumerID uint, actorID uint, ip, userAgent string) (*models.Consumer, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}

	cfsm := statemachine.NewConsumerFSM(consumer)
	if err := cfsm.Restart(ctx); err != nil {
		return nil, ErrInvalidState
	}
	consumer.HoldReason = nil
	consumer.RestartDate = nil

	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "restart", "consumer", consumer.ID, "", ip, userAgent)
	return consumer, nil
}

// Renegotiate reopens the offer loop on an accepted or declined plan
func (s *ConsumerService) Renegotiate(ctx context.Context, consumerID uint, actorID uint, ip, userAgent string) (*models.Consumer, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}

	cfsm := statemachine.NewConsumerFSM(consumer)
	if err := cfsm.Renegotiate(ctx); err != nil {
		return nil, ErrInvalidState
	}
	consumer.OfferAccepted = false
	consumer.CounterOffer = false

	if consumer.Negotiation != nil {
		nfsm := statemachine.NewNegotiationFSM(consumer.Negotiation)
		if err := nfsm.Renegotiate(ctx); err == nil {
			consumer.Negotiation.OfferAccepted = false
			consumer.Negotiation.CounterOfferAccepted = false
			consumer.Negotiation.ClearCounterColumns()
			s.negotiationRepo.Update(ctx, consumer.Negotiation)
		}
	}

	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}
	s.scheduleSvc.CancelForConsumer(ctx, consumer.ID)

	s.auditSvc.Log(ctx, actorID, "renegotiate", "consumer", consumer.ID, "", ip, userAgent)
	return consumer, nil
}

// Deactivate removes the account from negotiation, voiding schedules and
// stored payment methods.
func (s *ConsumerService) Deactivate(ctx context.Context, consumerID uint, actorID uint, ip, userAgent string) (*models.Consumer, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}

	cfsm := statemachine.NewConsumerFSM(consumer)
	if err := cfsm.Deactivate(ctx); err != nil {
		return nil, ErrInvalidState
	}

	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}
	s.scheduleSvc.CancelForConsumer(ctx, consumer.ID)
	s.profileRepo.SoftDeleteByConsumer(ctx, consumer.ID)

	s.auditSvc.Log(ctx, actorID, "deactivate", "consumer", consumer.ID, "", ip, userAgent)
	return consumer, nil
}

// AddPaymentProfile stores a tokenized payment method for the account
func (s *ConsumerService) AddPaymentProfile(ctx context.Context, profile *models.PaymentProfile) error {
	if profile.Token == "" || profile.Merchant == "" || profile.Method == "" {
		return ErrValidation
	}
	if _, err := s.consumerRepo.FindByID(ctx, profile.ConsumerID); err != nil {
		return ErrNotFound
	}
	return s.profileRepo.Create(ctx, profile)
}

// RemovePaymentProfile soft-deletes a stored payment method
func (s *ConsumerService) RemovePaymentProfile(ctx context.Context, consumerID, profileID uint) error {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return ErrNotFound
	}
	if profile.ConsumerID != consumerID {
		return ErrUnauthorized
	}
	return s.profileRepo.Delete(ctx, profileID)
}

// SweepExpiredOffers deactivates accounts whose offer window lapsed without
// an accepted plan. Runs daily from the worker.
func (s *ConsumerService) SweepExpiredOffers(ctx context.Context) error {
	consumers, err := s.consumerRepo.FindExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to load expired accounts: %w", err)
	}

	for i := range consumers {
		consumer := &consumers[i]
		cfsm := statemachine.NewConsumerFSM(consumer)
		if err := cfsm.Deactivate(ctx); err != nil {
			continue
		}
		if err := s.consumerRepo.Update(ctx, consumer); err != nil {
			logger.Error(fmt.Sprintf("Failed to deactivate expired consumer %d: %v", consumer.ID, err))
			continue
		}
		s.scheduleSvc.CancelForConsumer(ctx, consumer.ID)
	}

	if len(consumers) > 0 {
		logger.Info(fmt.Sprintf("Expired offer sweep deactivated %d accounts", len(consumers)))
	}
	return nil
}

// SweepDueRestarts resumes held plans whose restart date has arrived. Runs
// hourly from the worker.
func (s *ConsumerService) SweepDueRestarts(ctx context.Context) error {
	consumers, err := s.consumerRepo.FindDueForRestart(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to load accounts due for restart: %w", err)
	}

	for i := range consumers {
		consumer := &consumers[i]
		cfsm := statemachine.NewConsumerFSM(consumer)
		if err := cfsm.Restart(ctx); err != nil {
			continue
		}
		consumer.HoldReason = nil
		consumer.RestartDate = nil
		if err := s.consumerRepo.Update(ctx, consumer); err != nil {
			logger.Error(fmt.Sprintf("Failed to restart consumer %d: %v", consumer.ID, err))
		}
	}

	if len(consumers) > 0 {
		logger.Info(fmt.Sprintf("Restart sweep resumed %d held accounts", len(consumers)))
	}
	return nil
}

func (s *ConsumerService) notifyAgents(consumer *models.Consumer, title, message string) {
	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		return s.notificationSvc.NotifyCompanyAgents(jobCtx, consumer.CompanyID, title, message,
			models.NotificationTypeSystem)
	})
}
