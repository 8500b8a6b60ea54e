package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/younegotiate/negotiate-api/internal/config"
	"github.com/younegotiate/negotiate-api/internal/gateway"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
)

type mockTransactionRepo struct {
	repository.TransactionRepository
	mockCreate func(ctx context.Context, transaction *models.Transaction) error
}

func (m *mockTransactionRepo) Create(ctx context.Context, transaction *models.Transaction) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, transaction)
	}
	return nil
}

type mockCompanyRepo struct {
	repository.CompanyRepository
	mockFindActiveMembership func(ctx context.Context, companyID uint) (*models.CompanyMembership, error)
}

func (m *mockCompanyRepo) FindActiveMembership(ctx context.Context, companyID uint) (*models.CompanyMembership, error) {
	if m.mockFindActiveMembership != nil {
		return m.mockFindActiveMembership(ctx, companyID)
	}
	return nil, ErrNotFound
}

type mockGateway struct {
	mockProceedPayment func(ctx context.Context, amount float64, profile *models.PaymentProfile) (*gateway.Response, error)
	calls              int
}

func (m *mockGateway) ProceedPayment(ctx context.Context, amount float64, profile *models.PaymentProfile) (*gateway.Response, error) {
	m.calls++
	if m.mockProceedPayment != nil {
		return m.mockProceedPayment(ctx, amount, profile)
	}
	return &gateway.Response{Status: models.TransactionStatusSuccessful, ReferenceID: "ref-1"}, nil
}

type paymentFixture struct {
	service      *PaymentService
	scheduleRepo *mockScheduleRepo
	txRepo       *mockTransactionRepo
	consumerRepo *mockConsumerRepo
	negRepo      *mockNegotiationRepo
	profileRepo  *mockProfileRepo
	companyRepo  *mockCompanyRepo
	gateway      *mockGateway
}

func newPaymentFixture() *paymentFixture {
	scheduleRepo := &mockScheduleRepo{}
	txRepo := &mockTransactionRepo{}
	consumerRepo := &mockConsumerRepo{}
	negRepo := &mockNegotiationRepo{}
	profileRepo := &mockProfileRepo{}
	companyRepo := &mockCompanyRepo{}
	gw := &mockGateway{}

	notificationSvc := NewNotificationService(&mockNotifRepo{}, &mockUserRepo{})
	emailSvc := NewEmailService(&config.Config{})
	auditSvc := NewAuditService(nil)

	return &paymentFixture{
		service: NewPaymentService(scheduleRepo, txRepo, consumerRepo, negRepo,
			profileRepo, companyRepo, notificationSvc, emailSvc, auditSvc, gw),
		scheduleRepo: scheduleRepo,
		txRepo:       txRepo,
		consumerRepo: consumerRepo,
		negRepo:      negRepo,
		profileRepo:  profileRepo,
		companyRepo:  companyRepo,
		gateway:      gw,
	}
}

func TestRevenueSplit_SumsExactly(t *testing.T) {
	cases := []struct {
		amount, fee, rnn, company float64
	}{
		{100.00, 10.0, 10.00, 90.00},
		{33.33, 3.5, 1.17, 32.16},
		{0.01, 10.0, 0.00, 0.01},
		{250.00, 0.0, 0.00, 250.00},
	}

	for _, c := range cases {
		rnn, company := RevenueSplit(c.amount, c.fee)
		assert.Equal(t, c.rnn, rnn)
		assert.Equal(t, c.company, company)
		assert.Equal(t, c.amount, rnn+company, "shares must sum to the captured amount")
	}
}

func TestProcessDueSchedules_CapturesAndSettles(t *testing.T) {
	f := newPaymentFixture()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusPaymentAccepted
	consumer.Negotiation = &models.ConsumerNegotiation{
		ID:                        2,
		ConsumerID:                1,
		State:                     models.NegotiationStateAutoApproved,
		NegotiationType:           models.NegotiationTypePif,
		OneTimeSettlement:         floatPtr(70),
		OfferAccepted:             true,
		PaymentPlanCurrentBalance: floatPtr(70),
	}

	row := models.ScheduleTransaction{
		ID:              5,
		ConsumerID:      1,
		NegotiationID:   2,
		Amount:          70.00,
		ScheduleDate:    time.Now().AddDate(0, 0, -1),
		Status:          models.ScheduleStatusScheduled,
		TransactionType: models.TransactionTypePif,
	}

	f.scheduleRepo.mockFindDue = func(ctx context.Context, asOf time.Time) ([]models.ScheduleTransaction, error) {
		return []models.ScheduleTransaction{row}, nil
	}
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}
	f.profileRepo.mockFindDefaultByConsumer = func(ctx context.Context, consumerID uint) (*models.PaymentProfile, error) {
		return &models.PaymentProfile{ID: 7, ConsumerID: consumerID, Method: models.PaymentMethodCard, Merchant: models.MerchantStripe, Token: "tok"}, nil
	}
	f.companyRepo.mockFindActiveMembership = func(ctx context.Context, companyID uint) (*models.CompanyMembership, error) {
		return &models.CompanyMembership{CompanyID: companyID, Fee: 10, Status: models.MembershipStatusActive}, nil
	}

	var recorded *models.Transaction
	f.txRepo.mockCreate = func(ctx context.Context, transaction *models.Transaction) error {
		recorded = transaction
		return nil
	}

	err := f.service.ProcessDueSchedules(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, f.gateway.calls)

	assert.NotNil(t, recorded)
	assert.Equal(t, 70.00, recorded.Amount)
	assert.Equal(t, 7.00, recorded.RnnShare)
	assert.Equal(t, 63.00, recorded.CompanyShare)
	assert.Equal(t, models.TransactionStatusSuccessful, recorded.Status)

	// Balances reduced and the plan retired in full
	assert.Equal(t, 30.00, consumer.CurrentBalance)
	assert.Equal(t, 0.00, *consumer.Negotiation.PaymentPlanCurrentBalance)
	assert.Equal(t, models.ConsumerStatusSettled, consumer.Status)
}

func TestProcessDueSchedules_SkipsHeldAccount(t *testing.T) {
	f := newPaymentFixture()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusHold

	row := models.ScheduleTransaction{
		ID:           5,
		ConsumerID:   1,
		Amount:       20.00,
		ScheduleDate: time.Now().AddDate(0, 0, -3),
		Status:       models.ScheduleStatusScheduled,
	}

	f.scheduleRepo.mockFindDue = func(ctx context.Context, asOf time.Time) ([]models.ScheduleTransaction, error) {
		return []models.ScheduleTransaction{row}, nil
	}
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	rowUpdated := false
	f.scheduleRepo.mockUpdate = func(ctx context.Context, r *models.ScheduleTransaction) error {
		rowUpdated = true
		return nil
	}

	err := f.service.ProcessDueSchedules(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, f.gateway.calls, "held accounts are never captured")
	assert.False(t, rowUpdated, "held rows stay scheduled for the restart")
}

func TestCaptureRow_GatewayDeclineFlagsConsumer(t *testing.T) {
	f := newPaymentFixture()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusPaymentAccepted

	row := models.ScheduleTransaction{
		ID:           5,
		ConsumerID:   1,
		Amount:       20.00,
		ScheduleDate: time.Now(),
		Status:       models.ScheduleStatusScheduled,
	}

	f.scheduleRepo.mockFindDue = func(ctx context.Context, asOf time.Time) ([]models.ScheduleTransaction, error) {
		return []models.ScheduleTransaction{row}, nil
	}
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}
	f.profileRepo.mockFindDefaultByConsumer = func(ctx context.Context, consumerID uint) (*models.PaymentProfile, error) {
		return &models.PaymentProfile{ID: 7, ConsumerID: consumerID, Method: models.PaymentMethodCard}, nil
	}
	f.gateway.mockProceedPayment = func(ctx context.Context, amount float64, profile *models.PaymentProfile) (*gateway.Response, error) {
		return &gateway.Response{Status: models.TransactionStatusFailed, GatewayResponse: "card declined"}, nil
	}

	var updatedRow *models.ScheduleTransaction
	f.scheduleRepo.mockUpdate = func(ctx context.Context, r *models.ScheduleTransaction) error {
		updatedRow = r
		return nil
	}

	err := f.service.ProcessDueSchedules(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, updatedRow)
	assert.Equal(t, models.ScheduleStatusFailed, updatedRow.Status)
	assert.Equal(t, 1, updatedRow.AttemptCount)
	assert.True(t, consumer.HasFailedPayment)
	assert.Equal(t, 100.00, consumer.CurrentBalance, "declines must not reduce the balance")
}

func TestCaptureRow_NoProfileMarksFailed(t *testing.T) {
	f := newPaymentFixture()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusPaymentAccepted

	row := &models.ScheduleTransaction{
		ID:           5,
		ConsumerID:   1,
		Amount:       20.00,
		ScheduleDate: time.Now(),
		Status:       models.ScheduleStatusFailed,
	}

	f.scheduleRepo.mockFindByID = func(ctx context.Context, id uint) (*models.ScheduleTransaction, error) {
		return row, nil
	}
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	_, err := f.service.RetrySchedule(context.Background(), 5, 99, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrNoPaymentProfile)
	assert.Equal(t, models.ScheduleStatusFailed, row.Status)
	assert.True(t, consumer.HasFailedPayment)
	assert.Equal(t, 0, f.gateway.calls)
}

func TestRetrySchedule_RequiresFailedRow(t *testing.T) {
	f := newPaymentFixture()

	f.scheduleRepo.mockFindByID = func(ctx context.Context, id uint) (*models.ScheduleTransaction, error) {
		return &models.ScheduleTransaction{ID: 5, Status: models.ScheduleStatusSuccessful}, nil
	}

	_, err := f.service.RetrySchedule(context.Background(), 5, 99, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRetrySchedule_SucceedsOnSecondAttempt(t *testing.T) {
	f := newPaymentFixture()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusPaymentAccepted
	consumer.HasFailedPayment = true
	consumer.Negotiation = &models.ConsumerNegotiation{
		ID:                        2,
		ConsumerID:                1,
		NegotiationType:           models.NegotiationTypeInstallment,
		OfferAccepted:             true,
		PaymentPlanCurrentBalance: floatPtr(80),
	}

	row := &models.ScheduleTransaction{
		ID:           5,
		ConsumerID:   1,
		Amount:       20.00,
		ScheduleDate: time.Now(),
		Status:       models.ScheduleStatusFailed,
		AttemptCount: 1,
	}

	f.scheduleRepo.mockFindByID = func(ctx context.Context, id uint) (*models.ScheduleTransaction, error) {
		return row, nil
	}
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}
	f.profileRepo.mockFindDefaultByConsumer = func(ctx context.Context, consumerID uint) (*models.PaymentProfile, error) {
		return &models.PaymentProfile{ID: 7, ConsumerID: consumerID, Method: models.PaymentMethodCard}, nil
	}

	updated, err := f.service.RetrySchedule(context.Background(), 5, 99, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusSuccessful, updated.Status)
	assert.Equal(t, 2, updated.AttemptCount)
	assert.Equal(t, 60.00, *consumer.Negotiation.PaymentPlanCurrentBalance)
	assert.Equal(t, models.ConsumerStatusPaymentAccepted, consumer.Status, "partial plans do not settle")
}
