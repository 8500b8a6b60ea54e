package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/younegotiate/negotiate-api/internal/models"
)

// NegotiationFSM wraps a negotiation with its state machine
type NegotiationFSM struct {
	negotiation *models.ConsumerNegotiation
	fsm         *fsm.FSM
}

// NewNegotiationFSM creates a new negotiation state machine
func NewNegotiationFSM(negotiation *models.ConsumerNegotiation) *NegotiationFSM {
	nfsm := &NegotiationFSM{
		negotiation: negotiation,
	}

	nfsm.fsm = fsm.NewFSM(
		negotiation.State,
		fsm.Events{
			// any undecided state → pending_consumer_offer; the self loop lets
			// a consumer revise their own pending offer
			{Name: "propose", Src: []string{models.NegotiationStateNoOffer, models.NegotiationStatePendingConsumerOffer, models.NegotiationStatePendingCreditorCounter}, Dst: models.NegotiationStatePendingConsumerOffer},

			// no_offer/pending_consumer_offer → pending_creditor_counter
			{Name: "counter", Src: []string{models.NegotiationStateNoOffer, models.NegotiationStatePendingConsumerOffer}, Dst: models.NegotiationStatePendingCreditorCounter},

			// pending offer from either side → auto_approved
			{Name: "auto_approve", Src: []string{models.NegotiationStateNoOffer, models.NegotiationStatePendingConsumerOffer, models.NegotiationStatePendingCreditorCounter}, Dst: models.NegotiationStateAutoApproved},

			// pending offer from either side → manually_accepted
			{Name: "accept", Src: []string{models.NegotiationStatePendingConsumerOffer, models.NegotiationStatePendingCreditorCounter}, Dst: models.NegotiationStateManuallyAccepted},

			// pending offer from either side → declined
			{Name: "decline", Src: []string{models.NegotiationStatePendingConsumerOffer, models.NegotiationStatePendingCreditorCounter}, Dst: models.NegotiationStateDeclined},

			// accepted/declined → pending_consumer_offer (renegotiation cycle)
			{Name: "renegotiate", Src: []string{models.NegotiationStateAutoApproved, models.NegotiationStateManuallyAccepted, models.NegotiationStateDeclined}, Dst: models.NegotiationStatePendingConsumerOffer},
		},
		fsm.Callbacks{},
	)

	return nfsm
}

// Propose records a fresh consumer offer
func (n *NegotiationFSM) Propose(ctx context.Context) error {
	if !n.negotiation.MayCounter() {
		return fmt.Errorf("negotiation cannot take an offer in current state: %s", n.negotiation.State)
	}

	// looplab reports a same-state transition as NoTransitionError; revising
	// a pending offer is exactly that and stays valid
	if err := n.fsm.Event(ctx, "propose"); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return fmt.Errorf("failed to propose offer: %w", err)
		}
	}

	n.negotiation.State = n.fsm.Current()
	return nil
}

// Counter records a creditor counter-offer
func (n *NegotiationFSM) Counter(ctx context.Context) error {
	if !n.negotiation.MayCounter() {
		return fmt.Errorf("negotiation cannot take a counter in current state: %s", n.negotiation.State)
	}

	if err := n.fsm.Event(ctx, "counter"); err != nil {
		return fmt.Errorf("failed to counter offer: %w", err)
	}

	n.negotiation.State = n.fsm.Current()
	return nil
}

// AutoApprove accepts a submission that met the counterparty threshold
func (n *NegotiationFSM) AutoApprove(ctx context.Context) error {
	if err := n.fsm.Event(ctx, "auto_approve"); err != nil {
		return fmt.Errorf("failed to auto-approve offer: %w", err)
	}

	n.negotiation.State = n.fsm.Current()
	return nil
}

// Accept records a manual acceptance of the pending offer
func (n *NegotiationFSM) Accept(ctx context.Context) error {
	if !n.negotiation.MayAccept() {
		return fmt.Errorf("negotiation cannot be accepted in current state: %s", n.negotiation.State)
	}

	if err := n.fsm.Event(ctx, "accept"); err != nil {
		return fmt.Errorf("failed to accept offer: %w", err)
	}

	n.negotiation.State = n.fsm.Current()
	return nil
}

// Decline rejects the pending offer
func (n *NegotiationFSM) Decline(ctx context.Context) error {
	if err := n.fsm.Event(ctx, "decline"); err != nil {
		return fmt.Errorf("failed to decline offer: %w", err)
	}

	n.negotiation.State = n.fsm.Current()
	return nil
}

// Renegotiate reopens a settled or declined negotiation
func (n *NegotiationFSM) Renegotiate(ctx context.Context) error {
	if err := n.fsm.Event(ctx, "renegotiate"); err != nil {
		return fmt.Errorf("failed to renegotiate: %w", err)
	}

	n.negotiation.State = n.fsm.Current()
	return nil
}

// Current returns the current state
func (n *NegotiationFSM) Current() string {
	return n.fsm.Current()
}

// Can checks if a transition is possible
func (n *NegotiationFSM) Can(event string) bool {
	return n.fsm.Can(event)
}
