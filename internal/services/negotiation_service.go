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

// OfferRequest is a consumer's proposed settlement or payment plan
type OfferRequest struct {
	NegotiationType string     `json:"negotiation_type" binding:"required,oneof=pif installment"`
	InstallmentType string     `json:"installment_type" binding:"omitempty,oneof=weekly bimonthly monthly"`
	Amount          float64    `json:"amount" binding:"required,gt=0"`
	FirstPayDate    *time.Time `json:"first_pay_date" binding:"required"`
	Note            string     `json:"note"`
}

// CounterRequest is a creditor's counter to a pending consumer offer
type CounterRequest struct {
	Amount       float64    `json:"amount" binding:"required,gt=0"`
	FirstPayDate *time.Time `json:"first_pay_date" binding:"required"`
	Note         string     `json:"note"`
}

// NegotiationService drives the offer/counter-offer loop between consumers
// and creditors.
type NegotiationService struct {
	consumerRepo    repository.ConsumerRepository
	negotiationRepo repository.NegotiationRepository
	offerSvc        *OfferService
	scheduleSvc     *ScheduleService
	profileRepo     repository.PaymentProfileRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewNegotiationService(
	consumerRepo repository.ConsumerRepository,
	negotiationRepo repository.NegotiationRepository,
	offerSvc *OfferService,
	scheduleSvc *ScheduleService,
	profileRepo repository.PaymentProfileRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *NegotiationService {
	return &NegotiationService{
		consumerRepo:    consumerRepo,
		negotiationRepo: negotiationRepo,
		offerSvc:        offerSvc,
		scheduleSvc:     scheduleSvc,
		profileRepo:     profileRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *NegotiationService) FindByConsumer(ctx context.Context, consumerID uint) (*models.ConsumerNegotiation, error) {
	return s.negotiationRepo.FindByConsumerID(ctx, consumerID)
}

func (s *NegotiationService) ListPending(ctx context.Context, companyID uint, query *repository.ListQuery) ([]models.ConsumerNegotiation, int64, error) {
	return s.negotiationRepo.ListPendingByCompany(ctx, companyID, query)
}

// SubmitOffer records a consumer offer. Offers at or above the creditor's
// standing terms are accepted immediately and the payment schedule is
// generated in the same call; everything else lands in the creditor's
// review queue.
func (s *NegotiationService) SubmitOffer(ctx context.Context, consumerID uint, req *OfferRequest, actorID uint, ip, userAgent string) (*models.ConsumerNegotiation, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}

	if !consumer.MayNegotiate() {
		return nil, ErrInvalidState
	}
	if err := s.validateOffer(consumer, req); err != nil {
		return nil, err
	}

	negotiation := consumer.Negotiation
	if negotiation == nil {
		negotiation = &models.ConsumerNegotiation{
			ConsumerID: consumer.ID,
			CompanyID:  consumer.CompanyID,
			State:      models.NegotiationStateNoOffer,
		}
	}
	if !negotiation.MayCounter() {
		return nil, ErrInvalidState
	}

	negotiation.NegotiationType = req.NegotiationType
	if req.NegotiationType == models.NegotiationTypeInstallment {
		installmentType := req.InstallmentType
		if installmentType == "" {
			installmentType = models.InstallmentTypeMonthly
		}
		negotiation.InstallmentType = installmentType
	}
	negotiation.FirstPayDate = req.FirstPayDate
	negotiation.Note = models.EncodeText(req.Note)

	terms := s.offerSvc.Terms(consumer)
	autoApproved := false

	if req.NegotiationType == models.NegotiationTypePif {
		negotiation.OneTimeSettlement = &req.Amount
		negotiation.MonthlyAmount = nil
		negotiation.NoOfInstallments = nil
		negotiation.LastMonthAmount = nil
		autoApproved = s.offerSvc.MeetsSettlementThreshold(consumer, req.Amount)
	} else {
		plan := PlanInstallments(terms.PayableNegotiatedAmount, req.Amount)
		negotiation.OneTimeSettlement = nil
		negotiation.MonthlyAmount = &req.Amount
		negotiation.NoOfInstallments = &plan.Installments
		negotiation.LastMonthAmount = &plan.LastAmount
		autoApproved = s.offerSvc.MeetsMonthlyThreshold(consumer, req.Amount)
	}

	// A fresh consumer offer supersedes any standing counter
	negotiation.ClearCounterColumns()
	consumer.CounterOffer = false
	consumer.CustomOffer = !autoApproved

	nfsm := statemachine.NewNegotiationFSM(negotiation)
	cfsm := statemachine.NewConsumerFSM(consumer)

	if autoApproved {
		if err := nfsm.AutoApprove(ctx); err != nil {
			return nil, ErrInvalidState
		}
		negotiation.OfferAccepted = true
		s.stampPlanBalance(negotiation, terms)

		if err := cfsm.Accept(ctx); err != nil {
			return nil, ErrInvalidState
		}
		consumer.OfferAccepted = true
	} else {
		if err := nfsm.Propose(ctx); err != nil {
			return nil, ErrInvalidState
		}
		if consumer.Status == models.ConsumerStatusJoined || consumer.Status == models.ConsumerStatusRenegotiate {
			if err := cfsm.OpenNegotiation(ctx); err != nil {
				return nil, ErrInvalidState
			}
		}
	}

	if negotiation.ID == 0 {
		err = s.negotiationRepo.Create(ctx, negotiation)
	} else {
		err = s.negotiationRepo.Update(ctx, negotiation)
	}
	if err != nil {
		return nil, err
	}
	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}

	if autoApproved {
		// Schedule generation is synchronous so the consumer sees their plan
		// in the submit response
		if _, err := s.scheduleSvc.GenerateForNegotiation(ctx, consumer, negotiation); err != nil {
			logger.Error(fmt.Sprintf("Failed to generate schedule for consumer %d: %v", consumer.ID, err))
		}
		s.notifyAccepted(consumer, negotiation)
	} else {
		s.worker.EnqueueAsync(func(jobCtx context.Context) error {
			return s.notificationSvc.NotifyCompanyAgents(jobCtx, consumer.CompanyID,
				"New Offer Received",
				fmt.Sprintf("%s submitted a %s offer on account %s", consumer.FullName(), req.NegotiationType, consumer.AccountNumber),
				models.NotificationTypeOfferReceived)
		})
	}

	s.auditSvc.Log(ctx, actorID, "submit_offer", "consumer_negotiation", negotiation.ID,
		fmt.Sprintf("type=%s amount=%.2f auto_approved=%t", req.NegotiationType, req.Amount, autoApproved), ip, userAgent)

	return negotiation, nil
}

// SubmitCounterOffer records the creditor's counter, replacing any previous
// counter columns.
func (s *NegotiationService) SubmitCounterOffer(ctx context.Context, consumerID uint, req *CounterRequest, actorID uint, ip, userAgent string) (*models.ConsumerNegotiation, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}
	negotiation := consumer.Negotiation
	if negotiation == nil {
		return nil, ErrNotFound
	}
	if !negotiation.MayCounter() {
		return nil, ErrInvalidState
	}
	if req.Amount <= 0 {
		return nil, ErrValidation
	}

	negotiation.ClearCounterColumns()
	if negotiation.IsPif() {
		negotiation.CounterOneTimeAmount = &req.Amount
	} else {
		terms := s.offerSvc.Terms(consumer)
		plan := PlanInstallments(terms.PayableNegotiatedAmount, req.Amount)
		negotiation.CounterMonthlyAmount = &req.Amount
		negotiation.CounterNoOfInstallments = &plan.Installments
		negotiation.CounterLastMonthAmount = &plan.LastAmount
	}
	negotiation.CounterFirstPayDate = req.FirstPayDate
	negotiation.CounterNote = models.EncodeText(req.Note)

	nfsm := statemachine.NewNegotiationFSM(negotiation)
	if err := nfsm.Counter(ctx); err != nil {
		return nil, ErrInvalidState
	}

	consumer.CounterOffer = true

	if err := s.negotiationRepo.Update(ctx, negotiation); err != nil {
		return nil, err
	}
	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}

	amount := req.Amount
	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		s.notificationSvc.NotifyConsumer(jobCtx, consumer.ID,
			"Counter Offer Received",
			fmt.Sprintf("The creditor countered with $%.2f on account %s", amount, consumer.AccountNumber),
			models.NotificationTypeCounterReceived)
		return s.emailSvc.SendCounterOffer(jobCtx, consumer, amount)
	})

	s.auditSvc.Log(ctx, actorID, "counter_offer", "consumer_negotiation", negotiation.ID,
		fmt.Sprintf("amount=%.2f", req.Amount), ip, userAgent)

	return negotiation, nil
}

// AcceptOffer manually accepts the pending side of the negotiation. When the
// creditor accepts, the consumer's own columns are the accepted terms; when
// the consumer accepts a counter, the counter columns win.
func (s *NegotiationService) AcceptOffer(ctx context.Context, consumerID uint, actorID uint, ip, userAgent string) (*models.ConsumerNegotiation, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}
	negotiation := consumer.Negotiation
	if negotiation == nil {
		return nil, ErrNotFound
	}
	if !negotiation.MayAccept() {
		return nil, ErrInvalidState
	}

	acceptingCounter := negotiation.State == models.NegotiationStatePendingCreditorCounter

	nfsm := statemachine.NewNegotiationFSM(negotiation)
	if err := nfsm.Accept(ctx); err != nil {
		return nil, ErrInvalidState
	}

	if acceptingCounter {
		negotiation.CounterOfferAccepted = true
	} else {
		negotiation.OfferAccepted = true
	}
	s.stampPlanBalance(negotiation, s.offerSvc.Terms(consumer))

	cfsm := statemachine.NewConsumerFSM(consumer)
	if err := cfsm.Accept(ctx); err != nil {
		return nil, ErrInvalidState
	}
	consumer.OfferAccepted = true

	if err := s.negotiationRepo.Update(ctx, negotiation); err != nil {
		return nil, err
	}
	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}

	if _, err := s.scheduleSvc.GenerateForNegotiation(ctx, consumer, negotiation); err != nil {
		logger.Error(fmt.Sprintf("Failed to generate schedule for consumer %d: %v", consumer.ID, err))
	}
	s.notifyAccepted(consumer, negotiation)

	s.auditSvc.Log(ctx, actorID, "accept_offer", "consumer_negotiation", negotiation.ID,
		fmt.Sprintf("counter=%t", acceptingCounter), ip, userAgent)

	return negotiation, nil
}

// DeclineOffer rejects the pending offer and flips the consumer to
// payment_declined. The negotiation row is removed and the account's
// unconsumed schedule rows and stored payment methods are voided.
func (s *NegotiationService) DeclineOffer(ctx context.Context, consumerID uint, actorID uint, ip, userAgent string) (*models.ConsumerNegotiation, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}
	negotiation := consumer.Negotiation
	if negotiation == nil {
		return nil, ErrNotFound
	}
	if !negotiation.MayAccept() {
		return nil, ErrInvalidState
	}

	nfsm := statemachine.NewNegotiationFSM(negotiation)
	if err := nfsm.Decline(ctx); err != nil {
		return nil, ErrInvalidState
	}

	cfsm := statemachine.NewConsumerFSM(consumer)
	if err := cfsm.Decline(ctx); err != nil {
		return nil, ErrInvalidState
	}

	if err := s.negotiationRepo.Delete(ctx, negotiation.ID); err != nil {
		return nil, err
	}
	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		return nil, err
	}
	s.scheduleSvc.CancelForConsumer(ctx, consumer.ID)
	s.profileRepo.SoftDeleteByConsumer(ctx, consumer.ID)

	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		return s.notificationSvc.NotifyConsumer(jobCtx, consumer.ID,
			"Offer Declined",
			fmt.Sprintf("Your offer on account %s was declined", consumer.AccountNumber),
			models.NotificationTypeOfferDeclined)
	})

	s.auditSvc.Log(ctx, actorID, "decline_offer", "consumer_negotiation", negotiation.ID, "", ip, userAgent)

	return negotiation, nil
}

// validateOffer enforces the creditor's structural constraints without
// touching the database.
func (s *NegotiationService) validateOffer(consumer *models.Consumer, req *OfferRequest) error {
	if req.Amount <= 0 {
		return ErrValidation
	}
	if req.Amount > consumer.CurrentBalance {
		return ErrValidation
	}
	if req.FirstPayDate == nil {
		return ErrValidation
	}

	maxFirstPay := time.Now().AddDate(0, 0, consumer.EffectiveMaxDaysFirstPay())
	if req.FirstPayDate.After(maxFirstPay) {
		return ErrValidation
	}
	if req.FirstPayDate.Before(time.Now().AddDate(0, 0, -1)) {
		return ErrValidation
	}

	// Installment offers must clear the minimum monthly floor
	if req.NegotiationType == models.NegotiationTypeInstallment {
		terms := s.offerSvc.Terms(consumer)
		if req.Amount < terms.MinMonthlyAmount {
			return ErrValidation
		}
	}
	return nil
}

// stampPlanBalance records the total the plan must retire: the settlement
// amount for lump sums, the discounted negotiated amount for installments.
func (s *NegotiationService) stampPlanBalance(negotiation *models.ConsumerNegotiation, terms *OfferTerms) {
	if negotiation.IsPif() {
		amount := negotiation.AcceptedAmount()
		negotiation.PaymentPlanCurrentBalance = &amount
	} else {
		negotiated := terms.PayableNegotiatedAmount
		negotiation.PaymentPlanCurrentBalance = &negotiated
	}
}

func (s *NegotiationService) notifyAccepted(consumer *models.Consumer, negotiation *models.ConsumerNegotiation) {
	amount := negotiation.AcceptedAmount()
	planDescription := "One-time settlement"
	if !negotiation.IsPif() {
		installments, last := negotiation.AcceptedInstallmentTerms()
		planDescription = fmt.Sprintf("%d x $%.2f %s", installments, amount, negotiation.InstallmentType)
		if last > 0 {
			planDescription = fmt.Sprintf("%s + $%.2f", planDescription, last)
		}
	}

	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		s.notificationSvc.NotifyConsumer(jobCtx, consumer.ID,
			"Offer Accepted",
			fmt.Sprintf("Your offer on account %s was accepted: %s", consumer.AccountNumber, planDescription),
			models.NotificationTypeOfferAccepted)
		s.notificationSvc.NotifyCompanyAgents(jobCtx, consumer.CompanyID,
			"Offer Accepted",
			fmt.Sprintf("Account %s accepted a plan: %s", consumer.AccountNumber, planDescription),
			models.NotificationTypeOfferAccepted)
		return s.emailSvc.SendOfferAccepted(jobCtx, consumer, amount, planDescription)
	})
}
