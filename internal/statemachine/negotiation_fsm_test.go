package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/younegotiate/negotiate-api/internal/models"
)

func negotiationIn(state string) *models.ConsumerNegotiation {
	return &models.ConsumerNegotiation{ID: 1, ConsumerID: 1, State: state}
}

func TestNegotiationFSM_Propose(t *testing.T) {
	negotiation := negotiationIn(models.NegotiationStateNoOffer)
	nfsm := NewNegotiationFSM(negotiation)

	err := nfsm.Propose(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStatePendingConsumerOffer, negotiation.State)
}

func TestNegotiationFSM_Propose_OverACounter(t *testing.T) {
	negotiation := negotiationIn(models.NegotiationStatePendingCreditorCounter)
	nfsm := NewNegotiationFSM(negotiation)

	err := nfsm.Propose(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStatePendingConsumerOffer, negotiation.State)
}

func TestNegotiationFSM_Propose_RevisesPendingOffer(t *testing.T) {
	negotiation := negotiationIn(models.NegotiationStatePendingConsumerOffer)
	nfsm := NewNegotiationFSM(negotiation)

	err := nfsm.Propose(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStatePendingConsumerOffer, negotiation.State)
}

func TestNegotiationFSM_Propose_RejectsDecided(t *testing.T) {
	for _, state := range []string{
		models.NegotiationStateAutoApproved,
		models.NegotiationStateManuallyAccepted,
		models.NegotiationStateDeclined,
	} {
		negotiation := negotiationIn(state)
		err := NewNegotiationFSM(negotiation).Propose(context.Background())
		assert.Error(t, err, "propose from %s", state)
		assert.Equal(t, state, negotiation.State)
	}
}

func TestNegotiationFSM_Counter(t *testing.T) {
	negotiation := negotiationIn(models.NegotiationStatePendingConsumerOffer)
	nfsm := NewNegotiationFSM(negotiation)

	err := nfsm.Counter(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStatePendingCreditorCounter, negotiation.State)
}

func TestNegotiationFSM_AutoApprove(t *testing.T) {
	for _, state := range []string{
		models.NegotiationStateNoOffer,
		models.NegotiationStatePendingConsumerOffer,
		models.NegotiationStatePendingCreditorCounter,
	} {
		negotiation := negotiationIn(state)
		err := NewNegotiationFSM(negotiation).AutoApprove(context.Background())
		assert.NoError(t, err, "auto_approve from %s", state)
		assert.Equal(t, models.NegotiationStateAutoApproved, negotiation.State)
	}
}

func TestNegotiationFSM_Accept(t *testing.T) {
	negotiation := negotiationIn(models.NegotiationStatePendingCreditorCounter)
	nfsm := NewNegotiationFSM(negotiation)

	err := nfsm.Accept(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStateManuallyAccepted, negotiation.State)
}

func TestNegotiationFSM_Accept_RequiresPendingOffer(t *testing.T) {
	negotiation := negotiationIn(models.NegotiationStateNoOffer)
	nfsm := NewNegotiationFSM(negotiation)

	err := nfsm.Accept(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.NegotiationStateNoOffer, negotiation.State)
}

func TestNegotiationFSM_Decline(t *testing.T) {
	negotiation := negotiationIn(models.NegotiationStatePendingConsumerOffer)
	nfsm := NewNegotiationFSM(negotiation)

	err := nfsm.Decline(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.NegotiationStateDeclined, negotiation.State)
}

func TestNegotiationFSM_Renegotiate_ReopensTheCycle(t *testing.T) {
	for _, state := range []string{
		models.NegotiationStateAutoApproved,
		models.NegotiationStateManuallyAccepted,
		models.NegotiationStateDeclined,
	} {
		negotiation := negotiationIn(state)
		err := NewNegotiationFSM(negotiation).Renegotiate(context.Background())
		assert.NoError(t, err, "renegotiate from %s", state)
		assert.Equal(t, models.NegotiationStatePendingConsumerOffer, negotiation.State)
	}
}

func TestNegotiationFSM_Can(t *testing.T) {
	nfsm := NewNegotiationFSM(negotiationIn(models.NegotiationStatePendingConsumerOffer))

	assert.True(t, nfsm.Can("counter"))
	assert.True(t, nfsm.Can("accept"))
	assert.False(t, nfsm.Can("renegotiate"))
}
