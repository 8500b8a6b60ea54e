package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
)

// ScheduleService turns an accepted negotiation into future capture rows
type ScheduleService struct {
	scheduleRepo repository.ScheduleTransactionRepository
	profileRepo  repository.PaymentProfileRepository
}

func NewScheduleService(scheduleRepo repository.ScheduleTransactionRepository, profileRepo repository.PaymentProfileRepository) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		profileRepo:  profileRepo,
	}
}

// InstallmentPlan describes how a total splits across a fixed periodic amount
type InstallmentPlan struct {
	// Full installments at the periodic amount
	Installments int
	// Trailing remainder, zero when the amount divides evenly
	LastAmount float64
}

// PlanInstallments splits total into full installments of monthly plus an
// optional smaller trailing payment. 70 at 20/mo yields 3 full installments
// and a 10 remainder, 4 rows in all.
func PlanInstallments(total, monthly float64) InstallmentPlan {
	t := decimal.NewFromFloat(total)
	m := decimal.NewFromFloat(monthly)
	if !m.IsPositive() || !t.IsPositive() {
		return InstallmentPlan{}
	}

	full := t.Div(m).IntPart()
	remainder := t.Sub(m.Mul(decimal.NewFromInt(full))).Round(2)

	last, _ := remainder.Float64()
	return InstallmentPlan{
		Installments: int(full),
		LastAmount:   last,
	}
}

// NextInstallmentDate returns the date of installment i (0-based) on the
// given cadence. Monthly dates keep the first payment's day-of-month,
// clamping to the target month's length so a Jan 31 anchor lands on Feb 28
// (or 29) and back on Mar 31 rather than drifting.
func NextInstallmentDate(first time.Time, installmentType string, i int) time.Time {
	switch installmentType {
	case models.InstallmentTypeWeekly:
		return first.AddDate(0, 0, 7*i)
	case models.InstallmentTypeBimonthly:
		return first.AddDate(0, 0, 15*i)
	default:
		year, month, day := first.Date()
		targetMonth := time.Date(year, month+time.Month(i), 1, 0, 0, 0, 0, first.Location())
		lastDay := targetMonth.AddDate(0, 1, -1).Day()
		if day > lastDay {
			day = lastDay
		}
		return time.Date(targetMonth.Year(), targetMonth.Month(), day,
			first.Hour(), first.Minute(), first.Second(), 0, first.Location())
	}
}

// GenerateForNegotiation creates the schedule rows for an accepted plan.
// Generation is idempotent: if unconsumed rows already exist for the
// negotiation they are returned untouched instead of being duplicated.
func (s *ScheduleService) GenerateForNegotiation(ctx context.Context, consumer *models.Consumer, negotiation *models.ConsumerNegotiation) ([]models.ScheduleTransaction, error) {
	if !negotiation.IsAccepted() {
		return nil, ErrInvalidState
	}

	existing, err := s.scheduleRepo.FindUnconsumedByNegotiation(ctx, negotiation.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	var profileID *uint
	if profile, err := s.profileRepo.FindDefaultByConsumer(ctx, consumer.ID); err == nil {
		profileID = &profile.ID
	}

	firstPay := negotiation.AcceptedFirstPayDate()

	var rows []models.ScheduleTransaction
	if negotiation.IsPif() {
		rows = append(rows, models.ScheduleTransaction{
			ConsumerID:       consumer.ID,
			NegotiationID:    negotiation.ID,
			PaymentProfileID: profileID,
			Amount:           negotiation.AcceptedAmount(),
			ScheduleDate:     firstPay,
			Status:           models.ScheduleStatusScheduled,
			TransactionType:  models.TransactionTypePif,
		})
	} else {
		total := 0.0
		if negotiation.PaymentPlanCurrentBalance != nil {
			total = *negotiation.PaymentPlanCurrentBalance
		}
		monthly := negotiation.AcceptedAmount()
		plan := PlanInstallments(total, monthly)
		if plan.Installments == 0 && plan.LastAmount == 0 {
			return nil, ErrValidation
		}

		for i := 0; i < plan.Installments; i++ {
			rows = append(rows, models.ScheduleTransaction{
				ConsumerID:       consumer.ID,
				NegotiationID:    negotiation.ID,
				PaymentProfileID: profileID,
				Amount:           monthly,
				ScheduleDate:     NextInstallmentDate(firstPay, negotiation.InstallmentType, i),
				Status:           models.ScheduleStatusScheduled,
				TransactionType:  models.TransactionTypeInstallment,
			})
		}
		if plan.LastAmount > 0 {
			rows = append(rows, models.ScheduleTransaction{
				ConsumerID:       consumer.ID,
				NegotiationID:    negotiation.ID,
				PaymentProfileID: profileID,
				Amount:           plan.LastAmount,
				ScheduleDate:     NextInstallmentDate(firstPay, negotiation.InstallmentType, plan.Installments),
				Status:           models.ScheduleStatusScheduled,
				TransactionType:  models.TransactionTypeInstallment,
			})
		}
	}

	if err := s.scheduleRepo.CreateBatch(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// RowsForConsumer returns the full schedule history for an account
func (s *ScheduleService) RowsForConsumer(ctx context.Context, consumerID uint) ([]models.ScheduleTransaction, error) {
	return s.scheduleRepo.FindByConsumer(ctx, consumerID)
}

// CancelForConsumer voids every future row on the account's plan
func (s *ScheduleService) CancelForConsumer(ctx context.Context, consumerID uint) error {
	return s.scheduleRepo.CancelUnconsumedByConsumer(ctx, consumerID)
}

// RemainingScheduled sums the amounts still waiting to be captured
func (s *ScheduleService) RemainingScheduled(ctx context.Context, consumerID uint) (float64, error) {
	return s.scheduleRepo.SumScheduledByConsumer(ctx, consumerID)
}
