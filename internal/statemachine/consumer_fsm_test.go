package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/younegotiate/negotiate-api/internal/models"
)

func consumerIn(status string) *models.Consumer {
	return &models.Consumer{ID: 1, Status: status}
}

func TestConsumerFSM_OpenNegotiation(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusJoined)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.OpenNegotiation(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusPaymentSetup, consumer.Status)
}

func TestConsumerFSM_OpenNegotiation_FromRenegotiate(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusRenegotiate)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.OpenNegotiation(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusPaymentSetup, consumer.Status)
}

func TestConsumerFSM_OpenNegotiation_RejectsSettled(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusSettled)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.OpenNegotiation(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.ConsumerStatusSettled, consumer.Status)
}

func TestConsumerFSM_AcceptAndSettle(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusPaymentSetup)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.Accept(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusPaymentAccepted, consumer.Status)

	// Settle requires a fresh machine because the wrapper snapshots status
	err = NewConsumerFSM(consumer).Settle(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusSettled, consumer.Status)
}

func TestConsumerFSM_Settle_RequiresAcceptedPlan(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusPaymentSetup)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.Settle(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.ConsumerStatusPaymentSetup, consumer.Status)
}

func TestConsumerFSM_Decline(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusPaymentAccepted)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.Decline(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusPaymentDeclined, consumer.Status)
}

func TestConsumerFSM_Dispute_StampsDisputedAt(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusJoined)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.Dispute(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusDispute, consumer.Status)
	assert.NotNil(t, consumer.DisputedAt)
}

func TestConsumerFSM_NotPaying_StampsDisputedAt(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusPaymentAccepted)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.NotPaying(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusNotPaying, consumer.Status)
	assert.NotNil(t, consumer.DisputedAt)
}

func TestConsumerFSM_HoldAndRestart(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusPaymentAccepted)

	err := NewConsumerFSM(consumer).Hold(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusHold, consumer.Status)

	err = NewConsumerFSM(consumer).Restart(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusPaymentAccepted, consumer.Status)
}

func TestConsumerFSM_Hold_RequiresAcceptedPlan(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusJoined)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.Hold(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.ConsumerStatusJoined, consumer.Status)
}

func TestConsumerFSM_Restart_RequiresHold(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusPaymentAccepted)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.Restart(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.ConsumerStatusPaymentAccepted, consumer.Status)
}

func TestConsumerFSM_Renegotiate(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusPaymentDeclined)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.Renegotiate(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ConsumerStatusRenegotiate, consumer.Status)
}

func TestConsumerFSM_Deactivate_AnyActiveStatus(t *testing.T) {
	for _, status := range []string{
		models.ConsumerStatusJoined,
		models.ConsumerStatusPaymentSetup,
		models.ConsumerStatusPaymentAccepted,
		models.ConsumerStatusDispute,
		models.ConsumerStatusNotPaying,
		models.ConsumerStatusHold,
	} {
		consumer := consumerIn(status)
		err := NewConsumerFSM(consumer).Deactivate(context.Background())
		assert.NoError(t, err, "deactivate from %s", status)
		assert.Equal(t, models.ConsumerStatusDeactivated, consumer.Status)
	}
}

func TestConsumerFSM_Deactivate_RejectsSettled(t *testing.T) {
	consumer := consumerIn(models.ConsumerStatusSettled)
	cfsm := NewConsumerFSM(consumer)

	err := cfsm.Deactivate(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.ConsumerStatusSettled, consumer.Status)
}

func TestConsumerFSM_Can(t *testing.T) {
	cfsm := NewConsumerFSM(consumerIn(models.ConsumerStatusPaymentAccepted))

	assert.True(t, cfsm.Can("settle"))
	assert.True(t, cfsm.Can("hold"))
	assert.False(t, cfsm.Can("open_negotiation"))
}
