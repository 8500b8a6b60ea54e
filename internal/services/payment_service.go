package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/younegotiate/negotiate-api/internal/gateway"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
	"github.com/younegotiate/negotiate-api/internal/statemachine"
	"github.com/younegotiate/negotiate-api/pkg/logger"
)

// PaymentGateway captures a payment against a tokenized profile
type PaymentGateway interface {
	ProceedPayment(ctx context.Context, amount float64, profile *models.PaymentProfile) (*gateway.Response, error)
}

// PaymentService consumes due schedule rows, records transactions with their
// revenue split, and keeps account balances in sync.
type PaymentService struct {
	scheduleRepo    repository.ScheduleTransactionRepository
	transactionRepo repository.TransactionRepository
	consumerRepo    repository.ConsumerRepository
	negotiationRepo repository.NegotiationRepository
	profileRepo     repository.PaymentProfileRepository
	companyRepo     repository.CompanyRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	gateway         PaymentGateway
}

func NewPaymentService(
	scheduleRepo repository.ScheduleTransactionRepository,
	transactionRepo repository.TransactionRepository,
	consumerRepo repository.ConsumerRepository,
	negotiationRepo repository.NegotiationRepository,
	profileRepo repository.PaymentProfileRepository,
	companyRepo repository.CompanyRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	gw PaymentGateway,
) *PaymentService {
	return &PaymentService{
		scheduleRepo:    scheduleRepo,
		transactionRepo: transactionRepo,
		consumerRepo:    consumerRepo,
		negotiationRepo: negotiationRepo,
		profileRepo:     profileRepo,
		companyRepo:     companyRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		gateway:         gw,
	}
}

// RevenueSplit divides a captured amount into the platform's cut and the
// company's remainder. The platform share rounds half-up to cents and the
// company share is the exact difference, so the parts always sum to amount.
func RevenueSplit(amount, feePercent float64) (rnnShare, companyShare float64) {
	a := decimal.NewFromFloat(amount)
	fee := decimal.NewFromFloat(feePercent)
	rnn := a.Mul(fee).Div(decimal.NewFromInt(100)).Round(2)
	company := a.Sub(rnn)

	rnnShare, _ = rnn.Float64()
	companyShare, _ = company.Float64()
	return rnnShare, companyShare
}

// ProcessDueSchedules captures every scheduled row whose date has arrived.
// Runs from the worker on a fixed interval.
func (s *PaymentService) ProcessDueSchedules(ctx context.Context) error {
	rows, err := s.scheduleRepo.FindDue(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to load due schedules: %w", err)
	}

	for i := range rows {
		if err := s.captureRow(ctx, &rows[i]); err != nil {
			logger.Error(fmt.Sprintf("Capture failed for schedule %d: %v", rows[i].ID, err))
		}
	}
	return nil
}

// RetrySchedule re-attempts a failed row on demand
func (s *PaymentService) RetrySchedule(ctx context.Context, scheduleID uint, actorID uint, ip, userAgent string) (*models.ScheduleTransaction, error) {
	row, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !row.MayRetry() {
		return nil, ErrInvalidState
	}

	// Put the row back in play so captureRow treats it uniformly
	row.Status = models.ScheduleStatusScheduled
	if err := s.captureRow(ctx, row); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "retry_payment", "schedule_transaction", row.ID, "", ip, userAgent)
	return row, nil
}

func (s *PaymentService) ListTransactions(ctx context.Context, companyID uint, superAdmin bool, query *repository.ListQuery) ([]models.Transaction, int64, error) {
	return s.transactionRepo.List(ctx, companyID, superAdmin, query)
}

func (s *PaymentService) TransactionsForConsumer(ctx context.Context, consumerID uint) ([]models.Transaction, error) {
	return s.transactionRepo.FindByConsumer(ctx, consumerID)
}

// LatestTransactionPerConsumer backs the creditor's recent-activity view
func (s *PaymentService) LatestTransactionPerConsumer(ctx context.Context, companyID uint, superAdmin bool) ([]models.Transaction, error) {
	return s.transactionRepo.LatestPerConsumer(ctx, companyID, superAdmin)
}

// captureRow runs one capture attempt end to end: resolve the profile, hit
// the gateway, record the transaction with its split, and settle the account
// when the plan balance reaches zero.
func (s *PaymentService) captureRow(ctx context.Context, row *models.ScheduleTransaction) error {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, row.ConsumerID)
	if err != nil {
		return fmt.Errorf("failed to load consumer %d: %w", row.ConsumerID, err)
	}

	// Held, disputed, or deactivated accounts keep their rows scheduled but
	// are never captured. Restart resumes them where they left off.
	if consumer.Status != models.ConsumerStatusPaymentAccepted {
		return nil
	}

	profile := row.PaymentProfile
	if profile == nil && row.PaymentProfileID != nil {
		profile, _ = s.profileRepo.FindByID(ctx, *row.PaymentProfileID)
	}
	if profile == nil {
		profile, err = s.profileRepo.FindDefaultByConsumer(ctx, consumer.ID)
		if err != nil {
			s.markFailed(ctx, row, consumer, "no payment profile on file")
			return ErrNoPaymentProfile
		}
	}

	resp, err := s.gateway.ProceedPayment(ctx, row.Amount, profile)
	if err != nil {
		s.markFailed(ctx, row, consumer, err.Error())
		return err
	}

	feePercent := 0.0
	if membership, err := s.companyRepo.FindActiveMembership(ctx, consumer.CompanyID); err == nil {
		feePercent = membership.Fee
	}
	rnnShare, companyShare := RevenueSplit(row.Amount, feePercent)

	transaction := &models.Transaction{
		ConsumerID:            consumer.ID,
		CompanyID:             consumer.CompanyID,
		ScheduleTransactionID: &row.ID,
		Amount:                row.Amount,
		Status:                resp.Status,
		PaymentMode:           profile.Method,
		GatewayResponse:       resp.GatewayResponse,
		ReferenceID:           resp.ReferenceID,
		RnnShare:              rnnShare,
		CompanyShare:          companyShare,
	}
	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	now := time.Now()
	row.AttemptCount++
	row.LastAttemptedAt = &now

	if resp.Status != models.TransactionStatusSuccessful {
		row.Status = models.ScheduleStatusFailed
		consumer.HasFailedPayment = true
		s.scheduleRepo.Update(ctx, row)
		s.consumerRepo.Update(ctx, consumer)

		s.notificationSvc.NotifyConsumer(ctx, consumer.ID,
			"Payment Failed",
			fmt.Sprintf("Your payment of $%.2f on account %s could not be processed", row.Amount, consumer.AccountNumber),
			models.NotificationTypePaymentFailed)
		s.emailSvc.SendPaymentFailed(ctx, consumer, row.Amount)
		return nil
	}

	row.Status = models.ScheduleStatusSuccessful
	if err := s.scheduleRepo.Update(ctx, row); err != nil {
		return err
	}

	s.applyPayment(ctx, consumer, row.Amount)

	remaining := s.remainingPlanBalance(consumer)
	s.notificationSvc.NotifyConsumer(ctx, consumer.ID,
		"Payment Successful",
		fmt.Sprintf("We received your payment of $%.2f on account %s", row.Amount, consumer.AccountNumber),
		models.NotificationTypePaymentSuccess)
	s.sendReceiptSafe(ctx, consumer, transaction, remaining)

	if remaining <= 0 {
		s.settle(ctx, consumer)
	}
	return nil
}

// applyPayment reduces both the account balance and the plan balance
func (s *PaymentService) applyPayment(ctx context.Context, consumer *models.Consumer, amount float64) {
	balance := decimal.NewFromFloat(consumer.CurrentBalance).
		Sub(decimal.NewFromFloat(amount)).Round(2)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	consumer.CurrentBalance, _ = balance.Float64()
	s.consumerRepo.Update(ctx, consumer)

	if consumer.Negotiation != nil && consumer.Negotiation.PaymentPlanCurrentBalance != nil {
		plan := decimal.NewFromFloat(*consumer.Negotiation.PaymentPlanCurrentBalance).
			Sub(decimal.NewFromFloat(amount)).Round(2)
		if plan.IsNegative() {
			plan = decimal.Zero
		}
		planFloat, _ := plan.Float64()
		consumer.Negotiation.PaymentPlanCurrentBalance = &planFloat
		s.negotiationRepo.Update(ctx, consumer.Negotiation)
	}
}

// remainingPlanBalance prefers the plan balance when one exists, falling back
// to the account balance for ad-hoc captures.
func (s *PaymentService) remainingPlanBalance(consumer *models.Consumer) float64 {
	if consumer.Negotiation != nil && consumer.Negotiation.PaymentPlanCurrentBalance != nil {
		return *consumer.Negotiation.PaymentPlanCurrentBalance
	}
	return consumer.CurrentBalance
}

func (s *PaymentService) settle(ctx context.Context, consumer *models.Consumer) {
	cfsm := statemachine.NewConsumerFSM(consumer)
	if err := cfsm.Settle(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Consumer %d cannot settle: %v", consumer.ID, err))
		return
	}
	if err := s.consumerRepo.Update(ctx, consumer); err != nil {
		logger.Error(fmt.Sprintf("Failed to settle consumer %d: %v", consumer.ID, err))
		return
	}

	s.notificationSvc.NotifyConsumer(ctx, consumer.ID,
		"Account Settled",
		fmt.Sprintf("Congratulations! Account %s is fully paid and settled", consumer.AccountNumber),
		models.NotificationTypeAccountSettled)
	s.notificationSvc.NotifyCompanyAgents(ctx, consumer.CompanyID,
		"Account Settled",
		fmt.Sprintf("Account %s has been settled in full", consumer.AccountNumber),
		models.NotificationTypeAccountSettled)
	s.emailSvc.SendAccountSettled(ctx, consumer)
}

func (s *PaymentService) markFailed(ctx context.Context, row *models.ScheduleTransaction, consumer *models.Consumer, reason string) {
	now := time.Now()
	row.Status = models.ScheduleStatusFailed
	row.AttemptCount++
	row.LastAttemptedAt = &now
	s.scheduleRepo.Update(ctx, row)

	consumer.HasFailedPayment = true
	s.consumerRepo.Update(ctx, consumer)

	logger.Warn(fmt.Sprintf("Schedule %d marked failed: %s", row.ID, reason))
}

func (s *PaymentService) sendReceiptSafe(ctx context.Context, consumer *models.Consumer, transaction *models.Transaction, remaining float64) {
	if err := s.emailSvc.SendPaymentReceipt(ctx, consumer, transaction, remaining); err != nil {
		logger.Error(fmt.Sprintf("Failed to send receipt for transaction %d: %v", transaction.ID, err))
	}
}
