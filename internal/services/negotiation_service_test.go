package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/younegotiate/negotiate-api/internal/config"
	"github.com/younegotiate/negotiate-api/internal/jobs"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
)

type mockConsumerRepo struct {
	repository.ConsumerRepository
	mockFindByIDWithDetails func(ctx context.Context, id uint) (*models.Consumer, error)
	mockUpdate              func(ctx context.Context, consumer *models.Consumer) error
}

func (m *mockConsumerRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.Consumer, error) {
	if m.mockFindByIDWithDetails != nil {
		return m.mockFindByIDWithDetails(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockConsumerRepo) Update(ctx context.Context, consumer *models.Consumer) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, consumer)
	}
	return nil
}

type mockNegotiationRepo struct {
	repository.NegotiationRepository
	mockCreate func(ctx context.Context, negotiation *models.ConsumerNegotiation) error
	mockUpdate func(ctx context.Context, negotiation *models.ConsumerNegotiation) error
	mockDelete func(ctx context.Context, id uint) error
}

func (m *mockNegotiationRepo) Create(ctx context.Context, negotiation *models.ConsumerNegotiation) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, negotiation)
	}
	negotiation.ID = 1
	return nil
}

func (m *mockNegotiationRepo) Update(ctx context.Context, negotiation *models.ConsumerNegotiation) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, negotiation)
	}
	return nil
}

func (m *mockNegotiationRepo) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

type mockNotifRepo struct {
	repository.NotificationRepository
	mockCreate func(ctx context.Context, notification *models.Notification) error
}

func (m *mockNotifRepo) Create(ctx context.Context, notification *models.Notification) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, notification)
	}
	return nil
}

type mockUserRepo struct {
	repository.UserRepository
	mockFindByConsumerID    func(ctx context.Context, consumerID uint) (*models.User, error)
	mockFindAgentsByCompany func(ctx context.Context, companyID uint) ([]models.User, error)
}

func (m *mockUserRepo) FindByConsumerID(ctx context.Context, consumerID uint) (*models.User, error) {
	if m.mockFindByConsumerID != nil {
		return m.mockFindByConsumerID(ctx, consumerID)
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) FindAgentsByCompany(ctx context.Context, companyID uint) ([]models.User, error) {
	if m.mockFindAgentsByCompany != nil {
		return m.mockFindAgentsByCompany(ctx, companyID)
	}
	return nil, nil
}

type negotiationFixture struct {
	service      *NegotiationService
	consumerRepo *mockConsumerRepo
	negRepo      *mockNegotiationRepo
	scheduleRepo *mockScheduleRepo
	profileRepo  *mockProfileRepo
	worker       *jobs.Worker
}

func newNegotiationFixture() *negotiationFixture {
	consumerRepo := &mockConsumerRepo{}
	negRepo := &mockNegotiationRepo{}
	scheduleRepo := &mockScheduleRepo{}
	profileRepo := &mockProfileRepo{}

	worker := jobs.NewWorker(0)
	offerSvc := NewOfferService(consumerRepo)
	scheduleSvc := NewScheduleService(scheduleRepo, profileRepo)
	notificationSvc := NewNotificationService(&mockNotifRepo{}, &mockUserRepo{})
	emailSvc := NewEmailService(&config.Config{})
	auditSvc := NewAuditService(nil)

	return &negotiationFixture{
		service:      NewNegotiationService(consumerRepo, negRepo, offerSvc, scheduleSvc, profileRepo, notificationSvc, emailSvc, auditSvc, worker),
		consumerRepo: consumerRepo,
		negRepo:      negRepo,
		scheduleRepo: scheduleRepo,
		profileRepo:  profileRepo,
		worker:       worker,
	}
}

func testConsumer() *models.Consumer {
	return &models.Consumer{
		ID:             1,
		CompanyID:      1,
		AccountNumber:  "ACC-1001",
		LastName:       "Doe",
		Email:          "doe@example.com",
		Status:         models.ConsumerStatusJoined,
		CurrentBalance: 100.00,
		TotalBalance:   100.00,
		Company: models.Company{
			ID:                      1,
			Name:                    "Acme Recovery",
			PifDiscountPercent:      30,
			PaySetupDiscountPercent: 20,
			MinMonthlyPayPercent:    4,
			MaxDaysFirstPay:         30,
		},
	}
}

func TestSubmitOffer_PifAtThresholdAutoApproves(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	var generated []models.ScheduleTransaction
	f.scheduleRepo.mockCreateBatch = func(ctx context.Context, rows []models.ScheduleTransaction) error {
		generated = rows
		return nil
	}

	firstPay := time.Now().AddDate(0, 0, 10)
	req := &OfferRequest{
		NegotiationType: models.NegotiationTypePif,
		Amount:          70.00, // settlement floor for 100 at 30% off
		FirstPayDate:    &firstPay,
	}

	negotiation, err := f.service.SubmitOffer(context.Background(), 1, req, 99, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStateAutoApproved, negotiation.State)
	assert.True(t, negotiation.OfferAccepted)
	assert.Equal(t, models.ConsumerStatusPaymentAccepted, consumer.Status)
	assert.False(t, consumer.CustomOffer)

	// Lump-sum plan balance is the accepted settlement amount
	assert.NotNil(t, negotiation.PaymentPlanCurrentBalance)
	assert.Equal(t, 70.00, *negotiation.PaymentPlanCurrentBalance)

	// Schedule generated in the same call
	assert.Len(t, generated, 1)
	assert.Equal(t, 70.00, generated[0].Amount)
}

func TestSubmitOffer_InstallmentAtThresholdAutoApproves(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	var generated []models.ScheduleTransaction
	f.scheduleRepo.mockCreateBatch = func(ctx context.Context, rows []models.ScheduleTransaction) error {
		generated = rows
		return nil
	}

	firstPay := time.Now().AddDate(0, 0, 5)
	req := &OfferRequest{
		NegotiationType: models.NegotiationTypeInstallment,
		Amount:          20.00, // min monthly for negotiated 80 with divisor 4
		FirstPayDate:    &firstPay,
	}

	negotiation, err := f.service.SubmitOffer(context.Background(), 1, req, 99, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStateAutoApproved, negotiation.State)
	assert.Equal(t, models.InstallmentTypeMonthly, negotiation.InstallmentType)
	assert.Equal(t, 4, *negotiation.NoOfInstallments)
	assert.Equal(t, 0.00, *negotiation.LastMonthAmount)

	// Installment plan retires the discounted negotiated amount
	assert.Equal(t, 80.00, *negotiation.PaymentPlanCurrentBalance)
	assert.Len(t, generated, 4)
}

func TestSubmitOffer_BelowThresholdLandsInReviewQueue(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	scheduleGenerated := false
	f.scheduleRepo.mockCreateBatch = func(ctx context.Context, rows []models.ScheduleTransaction) error {
		scheduleGenerated = true
		return nil
	}

	firstPay := time.Now().AddDate(0, 0, 10)
	req := &OfferRequest{
		NegotiationType: models.NegotiationTypePif,
		Amount:          50.00,
		FirstPayDate:    &firstPay,
	}

	negotiation, err := f.service.SubmitOffer(context.Background(), 1, req, 99, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStatePendingConsumerOffer, negotiation.State)
	assert.False(t, negotiation.OfferAccepted)
	assert.Equal(t, models.ConsumerStatusPaymentSetup, consumer.Status)
	assert.True(t, consumer.CustomOffer)
	assert.False(t, scheduleGenerated, "no schedule before acceptance")
}

func TestSubmitOffer_RejectsInstallmentBelowMonthlyFloor(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	created := false
	f.negRepo.mockCreate = func(ctx context.Context, negotiation *models.ConsumerNegotiation) error {
		created = true
		return nil
	}

	firstPay := time.Now().AddDate(0, 0, 10)
	req := &OfferRequest{
		NegotiationType: models.NegotiationTypeInstallment,
		Amount:          0.50, // min monthly for negotiated 80 with divisor 4 is 20
		FirstPayDate:    &firstPay,
	}

	_, err := f.service.SubmitOffer(context.Background(), 1, req, 99, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, created, "rejected offers must not be persisted")
	assert.Equal(t, models.ConsumerStatusJoined, consumer.Status)
}

func TestSubmitOffer_RevisesOfferAfterRenegotiate(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusRenegotiate
	consumer.Negotiation = &models.ConsumerNegotiation{
		ID:              2,
		ConsumerID:      1,
		CompanyID:       1,
		State:           models.NegotiationStatePendingConsumerOffer,
		NegotiationType: models.NegotiationTypePif,
	}
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	firstPay := time.Now().AddDate(0, 0, 10)
	req := &OfferRequest{
		NegotiationType: models.NegotiationTypePif,
		Amount:          50.00, // below the 70 settlement floor, so no auto-approval
		FirstPayDate:    &firstPay,
	}

	negotiation, err := f.service.SubmitOffer(context.Background(), 1, req, 99, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStatePendingConsumerOffer, negotiation.State)
	assert.Equal(t, 50.00, *negotiation.OneTimeSettlement)
	assert.Equal(t, models.ConsumerStatusPaymentSetup, consumer.Status)
}

func TestSubmitOffer_RejectsAmountAboveBalance(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	firstPay := time.Now().AddDate(0, 0, 10)
	req := &OfferRequest{
		NegotiationType: models.NegotiationTypePif,
		Amount:          150.00,
		FirstPayDate:    &firstPay,
	}

	_, err := f.service.SubmitOffer(context.Background(), 1, req, 99, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.ConsumerStatusJoined, consumer.Status, "rejected offers must not mutate the account")
}

func TestSubmitOffer_RejectsFirstPayDateOutsideWindow(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	firstPay := time.Now().AddDate(0, 0, 45) // window is 30 days
	req := &OfferRequest{
		NegotiationType: models.NegotiationTypePif,
		Amount:          70.00,
		FirstPayDate:    &firstPay,
	}

	_, err := f.service.SubmitOffer(context.Background(), 1, req, 99, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitOffer_RejectsSettledAccount(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusSettled
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	firstPay := time.Now().AddDate(0, 0, 10)
	req := &OfferRequest{
		NegotiationType: models.NegotiationTypePif,
		Amount:          70.00,
		FirstPayDate:    &firstPay,
	}

	_, err := f.service.SubmitOffer(context.Background(), 1, req, 99, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmitCounterOffer_ReplacesPreviousCounter(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusPaymentSetup
	firstPay := time.Now().AddDate(0, 0, 10)
	consumer.Negotiation = &models.ConsumerNegotiation{
		ID:                   2,
		ConsumerID:           1,
		CompanyID:            1,
		State:                models.NegotiationStatePendingConsumerOffer,
		NegotiationType:      models.NegotiationTypeInstallment,
		InstallmentType:      models.InstallmentTypeMonthly,
		MonthlyAmount:        floatPtr(10),
		FirstPayDate:         &firstPay,
		CounterOneTimeAmount: floatPtr(999), // stale column from a prior loop
	}
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	counterPay := time.Now().AddDate(0, 0, 14)
	req := &CounterRequest{Amount: 25.00, FirstPayDate: &counterPay}

	negotiation, err := f.service.SubmitCounterOffer(context.Background(), 1, req, 50, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStatePendingCreditorCounter, negotiation.State)
	assert.True(t, consumer.CounterOffer)
	assert.Nil(t, negotiation.CounterOneTimeAmount, "stale counter columns must be cleared")
	assert.Equal(t, 25.00, *negotiation.CounterMonthlyAmount)
	assert.NotNil(t, negotiation.CounterNoOfInstallments)
}

func TestAcceptOffer_CounterColumnsWinWhenAcceptingCounter(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusPaymentSetup
	firstPay := time.Now().AddDate(0, 0, 10)
	consumer.Negotiation = &models.ConsumerNegotiation{
		ID:                   2,
		ConsumerID:           1,
		CompanyID:            1,
		State:                models.NegotiationStatePendingCreditorCounter,
		NegotiationType:      models.NegotiationTypePif,
		OneTimeSettlement:    floatPtr(50),
		FirstPayDate:         &firstPay,
		CounterOneTimeAmount: floatPtr(65),
		CounterFirstPayDate:  &firstPay,
	}
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	negotiation, err := f.service.AcceptOffer(context.Background(), 1, 99, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStateManuallyAccepted, negotiation.State)
	assert.True(t, negotiation.CounterOfferAccepted)
	assert.False(t, negotiation.OfferAccepted)
	assert.Equal(t, 65.00, negotiation.AcceptedAmount())
	assert.Equal(t, models.ConsumerStatusPaymentAccepted, consumer.Status)
}

func TestDeclineOffer(t *testing.T) {
	f := newNegotiationFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusPaymentSetup
	consumer.Negotiation = &models.ConsumerNegotiation{
		ID:              2,
		ConsumerID:      1,
		State:           models.NegotiationStatePendingConsumerOffer,
		NegotiationType: models.NegotiationTypePif,
	}
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	var deletedNegotiationID uint
	f.negRepo.mockDelete = func(ctx context.Context, id uint) error {
		deletedNegotiationID = id
		return nil
	}
	var cancelledConsumerID uint
	f.scheduleRepo.mockCancelUnconsumedByConsumer = func(ctx context.Context, consumerID uint) error {
		cancelledConsumerID = consumerID
		return nil
	}
	var clearedProfileConsumerID uint
	f.profileRepo.mockSoftDeleteByConsumer = func(ctx context.Context, consumerID uint) error {
		clearedProfileConsumerID = consumerID
		return nil
	}

	negotiation, err := f.service.DeclineOffer(context.Background(), 1, 99, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStateDeclined, negotiation.State)
	assert.Equal(t, models.ConsumerStatusPaymentDeclined, consumer.Status)

	// Declining tears the plan down: the negotiation row goes away and the
	// account's future rows and stored payment methods are voided
	assert.Equal(t, uint(2), deletedNegotiationID)
	assert.Equal(t, uint(1), cancelledConsumerID)
	assert.Equal(t, uint(1), clearedProfileConsumerID)
}
