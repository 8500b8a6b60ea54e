package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
)

type mockScheduleRepo struct {
	repository.ScheduleTransactionRepository
	mockFindUnconsumedByNegotiation func(ctx context.Context, negotiationID uint) ([]models.ScheduleTransaction, error)
	mockCreateBatch                 func(ctx context.Context, rows []models.ScheduleTransaction) error
	mockFindDue                     func(ctx context.Context, asOf time.Time) ([]models.ScheduleTransaction, error)
	mockFindByID                    func(ctx context.Context, id uint) (*models.ScheduleTransaction, error)
	mockUpdate                      func(ctx context.Context, row *models.ScheduleTransaction) error
	mockCancelUnconsumedByConsumer  func(ctx context.Context, consumerID uint) error
}

func (m *mockScheduleRepo) FindUnconsumedByNegotiation(ctx context.Context, negotiationID uint) ([]models.ScheduleTransaction, error) {
	if m.mockFindUnconsumedByNegotiation != nil {
		return m.mockFindUnconsumedByNegotiation(ctx, negotiationID)
	}
	return nil, nil
}

func (m *mockScheduleRepo) CreateBatch(ctx context.Context, rows []models.ScheduleTransaction) error {
	if m.mockCreateBatch != nil {
		return m.mockCreateBatch(ctx, rows)
	}
	return nil
}

func (m *mockScheduleRepo) FindDue(ctx context.Context, asOf time.Time) ([]models.ScheduleTransaction, error) {
	if m.mockFindDue != nil {
		return m.mockFindDue(ctx, asOf)
	}
	return nil, nil
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id uint) (*models.ScheduleTransaction, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, nil
}

func (m *mockScheduleRepo) Update(ctx context.Context, row *models.ScheduleTransaction) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, row)
	}
	return nil
}

func (m *mockScheduleRepo) CancelUnconsumedByConsumer(ctx context.Context, consumerID uint) error {
	if m.mockCancelUnconsumedByConsumer != nil {
		return m.mockCancelUnconsumedByConsumer(ctx, consumerID)
	}
	return nil
}

type mockProfileRepo struct {
	repository.PaymentProfileRepository
	mockFindByID              func(ctx context.Context, id uint) (*models.PaymentProfile, error)
	mockFindDefaultByConsumer func(ctx context.Context, consumerID uint) (*models.PaymentProfile, error)
	mockSoftDeleteByConsumer  func(ctx context.Context, consumerID uint) error
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id uint) (*models.PaymentProfile, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockProfileRepo) FindDefaultByConsumer(ctx context.Context, consumerID uint) (*models.PaymentProfile, error) {
	if m.mockFindDefaultByConsumer != nil {
		return m.mockFindDefaultByConsumer(ctx, consumerID)
	}
	return nil, ErrNotFound
}

func (m *mockProfileRepo) SoftDeleteByConsumer(ctx context.Context, consumerID uint) error {
	if m.mockSoftDeleteByConsumer != nil {
		return m.mockSoftDeleteByConsumer(ctx, consumerID)
	}
	return nil
}

func TestPlanInstallments_WithRemainder(t *testing.T) {
	plan := PlanInstallments(70, 20)

	// 3 full installments of 20 plus a trailing 10, 4 rows in all
	assert.Equal(t, 3, plan.Installments)
	assert.Equal(t, 10.00, plan.LastAmount)
}

func TestPlanInstallments_DividesEvenly(t *testing.T) {
	plan := PlanInstallments(80, 20)

	assert.Equal(t, 4, plan.Installments)
	assert.Equal(t, 0.00, plan.LastAmount)
}

func TestPlanInstallments_MonthlyExceedsTotal(t *testing.T) {
	plan := PlanInstallments(15, 20)

	assert.Equal(t, 0, plan.Installments)
	assert.Equal(t, 15.00, plan.LastAmount)
}

func TestPlanInstallments_DecimalRemainder(t *testing.T) {
	plan := PlanInstallments(100, 33.33)

	assert.Equal(t, 3, plan.Installments)
	assert.Equal(t, 0.01, plan.LastAmount)
}

func TestPlanInstallments_InvalidInputs(t *testing.T) {
	assert.Equal(t, InstallmentPlan{}, PlanInstallments(0, 20))
	assert.Equal(t, InstallmentPlan{}, PlanInstallments(100, 0))
	assert.Equal(t, InstallmentPlan{}, PlanInstallments(100, -5))
}

func TestNextInstallmentDate_MonthEndClamping(t *testing.T) {
	first := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	feb := NextInstallmentDate(first, models.InstallmentTypeMonthly, 1)
	assert.Equal(t, time.February, feb.Month())
	assert.Equal(t, 28, feb.Day())

	// The anchor day is preserved, not the clamped day
	mar := NextInstallmentDate(first, models.InstallmentTypeMonthly, 2)
	assert.Equal(t, time.March, mar.Month())
	assert.Equal(t, 31, mar.Day())
}

func TestNextInstallmentDate_LeapYear(t *testing.T) {
	first := time.Date(2028, time.January, 31, 0, 0, 0, 0, time.UTC)

	feb := NextInstallmentDate(first, models.InstallmentTypeMonthly, 1)
	assert.Equal(t, time.February, feb.Month())
	assert.Equal(t, 29, feb.Day())
}

func TestNextInstallmentDate_WeeklyAndBimonthly(t *testing.T) {
	first := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	weekly := NextInstallmentDate(first, models.InstallmentTypeWeekly, 2)
	assert.Equal(t, first.AddDate(0, 0, 14), weekly)

	bimonthly := NextInstallmentDate(first, models.InstallmentTypeBimonthly, 2)
	assert.Equal(t, first.AddDate(0, 0, 30), bimonthly)
}

func TestGenerateForNegotiation_PifSingleRow(t *testing.T) {
	scheduleRepo := &mockScheduleRepo{}
	profileRepo := &mockProfileRepo{}
	service := NewScheduleService(scheduleRepo, profileRepo)

	var created []models.ScheduleTransaction
	scheduleRepo.mockCreateBatch = func(ctx context.Context, rows []models.ScheduleTransaction) error {
		created = rows
		return nil
	}

	firstPay := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
	consumer := &models.Consumer{ID: 1}
	negotiation := &models.ConsumerNegotiation{
		ID:                10,
		ConsumerID:        1,
		NegotiationType:   models.NegotiationTypePif,
		OneTimeSettlement: floatPtr(70),
		FirstPayDate:      &firstPay,
		OfferAccepted:     true,
	}

	rows, err := service.GenerateForNegotiation(context.Background(), consumer, negotiation)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Len(t, created, 1)
	assert.Equal(t, 70.00, rows[0].Amount)
	assert.Equal(t, models.TransactionTypePif, rows[0].TransactionType)
	assert.Equal(t, firstPay, rows[0].ScheduleDate)
}

func TestGenerateForNegotiation_InstallmentRowsSumToPlanBalance(t *testing.T) {
	scheduleRepo := &mockScheduleRepo{}
	profileRepo := &mockProfileRepo{}
	service := NewScheduleService(scheduleRepo, profileRepo)

	firstPay := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
	consumer := &models.Consumer{ID: 1}
	negotiation := &models.ConsumerNegotiation{
		ID:                        10,
		ConsumerID:                1,
		NegotiationType:           models.NegotiationTypeInstallment,
		InstallmentType:           models.InstallmentTypeMonthly,
		MonthlyAmount:             floatPtr(20),
		NoOfInstallments:          intPtr(3),
		LastMonthAmount:           floatPtr(10),
		PaymentPlanCurrentBalance: floatPtr(70),
		FirstPayDate:              &firstPay,
		OfferAccepted:             true,
	}

	rows, err := service.GenerateForNegotiation(context.Background(), consumer, negotiation)
	assert.NoError(t, err)
	assert.Len(t, rows, 4)

	total := 0.0
	for _, row := range rows {
		total += row.Amount
		assert.Equal(t, models.TransactionTypeInstallment, row.TransactionType)
		assert.Equal(t, models.ScheduleStatusScheduled, row.Status)
	}
	assert.InDelta(t, 70.00, total, 0.001, "rows must retire the full plan balance")

	// Remainder row lands one cadence step after the last full installment
	assert.Equal(t, 10.00, rows[3].Amount)
	assert.Equal(t, time.December, rows[3].ScheduleDate.Month())
}

func TestGenerateForNegotiation_Idempotent(t *testing.T) {
	scheduleRepo := &mockScheduleRepo{}
	profileRepo := &mockProfileRepo{}
	service := NewScheduleService(scheduleRepo, profileRepo)

	existing := []models.ScheduleTransaction{{ID: 5, Amount: 70, Status: models.ScheduleStatusScheduled}}
	scheduleRepo.mockFindUnconsumedByNegotiation = func(ctx context.Context, negotiationID uint) ([]models.ScheduleTransaction, error) {
		return existing, nil
	}
	createCalled := false
	scheduleRepo.mockCreateBatch = func(ctx context.Context, rows []models.ScheduleTransaction) error {
		createCalled = true
		return nil
	}

	firstPay := time.Now()
	negotiation := &models.ConsumerNegotiation{
		ID:                10,
		NegotiationType:   models.NegotiationTypePif,
		OneTimeSettlement: floatPtr(70),
		FirstPayDate:      &firstPay,
		OfferAccepted:     true,
	}

	rows, err := service.GenerateForNegotiation(context.Background(), &models.Consumer{ID: 1}, negotiation)
	assert.NoError(t, err)
	assert.Equal(t, existing, rows)
	assert.False(t, createCalled, "existing unconsumed rows must not be duplicated")
}

func TestGenerateForNegotiation_RequiresAcceptance(t *testing.T) {
	service := NewScheduleService(&mockScheduleRepo{}, &mockProfileRepo{})

	negotiation := &models.ConsumerNegotiation{
		ID:              10,
		NegotiationType: models.NegotiationTypePif,
	}

	rows, err := service.GenerateForNegotiation(context.Background(), &models.Consumer{ID: 1}, negotiation)
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGenerateForNegotiation_AttachesDefaultProfile(t *testing.T) {
	scheduleRepo := &mockScheduleRepo{}
	profileRepo := &mockProfileRepo{}
	service := NewScheduleService(scheduleRepo, profileRepo)

	profileRepo.mockFindDefaultByConsumer = func(ctx context.Context, consumerID uint) (*models.PaymentProfile, error) {
		return &models.PaymentProfile{ID: 7, ConsumerID: consumerID}, nil
	}

	firstPay := time.Now()
	negotiation := &models.ConsumerNegotiation{
		ID:                10,
		NegotiationType:   models.NegotiationTypePif,
		OneTimeSettlement: floatPtr(70),
		FirstPayDate:      &firstPay,
		OfferAccepted:     true,
	}

	rows, err := service.GenerateForNegotiation(context.Background(), &models.Consumer{ID: 1}, negotiation)
	assert.NoError(t, err)
	assert.NotNil(t, rows[0].PaymentProfileID)
	assert.Equal(t, uint(7), *rows[0].PaymentProfileID)
}
