package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/younegotiate/negotiate-api/internal/jobs"
	"github.com/younegotiate/negotiate-api/internal/models"
)

type consumerFixture struct {
	service      *ConsumerService
	consumerRepo *mockConsumerRepo
	negRepo      *mockNegotiationRepo
	scheduleRepo *mockScheduleRepo
	profileRepo  *mockProfileRepo
	worker       *jobs.Worker
}

func newConsumerFixture() *consumerFixture {
	consumerRepo := &mockConsumerRepo{}
	negRepo := &mockNegotiationRepo{}
	scheduleRepo := &mockScheduleRepo{}
	profileRepo := &mockProfileRepo{}

	worker := jobs.NewWorker(0)
	scheduleSvc := NewScheduleService(scheduleRepo, profileRepo)
	notificationSvc := NewNotificationService(&mockNotifRepo{}, &mockUserRepo{})
	auditSvc := NewAuditService(nil)

	return &consumerFixture{
		service:      NewConsumerService(consumerRepo, negRepo, scheduleSvc, profileRepo, notificationSvc, auditSvc, worker),
		consumerRepo: consumerRepo,
		negRepo:      negRepo,
		scheduleRepo: scheduleRepo,
		profileRepo:  profileRepo,
		worker:       worker,
	}
}

func TestMarkNotPaying_RemovesNegotiationAndCancelsSchedule(t *testing.T) {
	f := newConsumerFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusPaymentAccepted
	consumer.Negotiation = &models.ConsumerNegotiation{
		ID:         7,
		ConsumerID: 1,
		State:      models.NegotiationStateAutoApproved,
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

	updated, err := f.service.MarkNotPaying(context.Background(), 1, 99, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusNotPaying, updated.Status)
	assert.NotNil(t, updated.DisputedAt)
	assert.Nil(t, updated.Negotiation)
	assert.Equal(t, uint(7), deletedNegotiationID)
	assert.Equal(t, uint(1), cancelledConsumerID)
}

func TestMarkNotPaying_RejectsSettledAccount(t *testing.T) {
	f := newConsumerFixture()
	defer f.worker.Shutdown()

	consumer := testConsumer()
	consumer.Status = models.ConsumerStatusSettled
	f.consumerRepo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.Consumer, error) {
		return consumer, nil
	}

	_, err := f.service.MarkNotPaying(context.Background(), 1, 99, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, models.ConsumerStatusSettled, consumer.Status)
}
