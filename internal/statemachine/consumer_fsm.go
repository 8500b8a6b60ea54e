package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/younegotiate/negotiate-api/internal/models"
)

// ConsumerFSM wraps a consumer account with its status state machine
type ConsumerFSM struct {
	consumer *models.Consumer
	fsm      *fsm.FSM
}

// NewConsumerFSM creates a new consumer state machine
func NewConsumerFSM(consumer *models.Consumer) *ConsumerFSM {
	cfsm := &ConsumerFSM{
		consumer: consumer,
	}

	cfsm.fsm = fsm.NewFSM(
		consumer.Status,
		fsm.Events{
			// joined/renegotiate → payment_setup (an offer is on the table)
			{Name: "open_negotiation", Src: []string{models.ConsumerStatusJoined, models.ConsumerStatusRenegotiate}, Dst: models.ConsumerStatusPaymentSetup},

			// joined/payment_setup/renegotiate → payment_accepted
			{Name: "accept", Src: []string{models.ConsumerStatusJoined, models.ConsumerStatusPaymentSetup, models.ConsumerStatusRenegotiate}, Dst: models.ConsumerStatusPaymentAccepted},

			// payment_setup/payment_accepted → payment_declined
			{Name: "decline", Src: []string{models.ConsumerStatusPaymentSetup, models.ConsumerStatusPaymentAccepted}, Dst: models.ConsumerStatusPaymentDeclined},

			// payment_accepted → settled (balance reached zero)
			{Name: "settle", Src: []string{models.ConsumerStatusPaymentAccepted}, Dst: models.ConsumerStatusSettled},

			// any pre-settlement status → dispute
			{Name: "dispute", Src: []string{models.ConsumerStatusJoined, models.ConsumerStatusPaymentSetup, models.ConsumerStatusPaymentAccepted, models.ConsumerStatusRenegotiate}, Dst: models.ConsumerStatusDispute},

			// any pre-settlement status → not_paying
			{Name: "not_paying", Src: []string{models.ConsumerStatusJoined, models.ConsumerStatusPaymentSetup, models.ConsumerStatusPaymentAccepted, models.ConsumerStatusRenegotiate}, Dst: models.ConsumerStatusNotPaying},

			// payment_accepted → hold
			{Name: "hold", Src: []string{models.ConsumerStatusPaymentAccepted}, Dst: models.ConsumerStatusHold},

			// hold → payment_accepted (plan resumes)
			{Name: "restart", Src: []string{models.ConsumerStatusHold}, Dst: models.ConsumerStatusPaymentAccepted},

			// payment_accepted/payment_declined → renegotiate
			{Name: "renegotiate", Src: []string{models.ConsumerStatusPaymentAccepted, models.ConsumerStatusPaymentDeclined}, Dst: models.ConsumerStatusRenegotiate},

			// anything except settled → deactivated
			{Name: "deactivate", Src: []string{models.ConsumerStatusJoined, models.ConsumerStatusPaymentSetup, models.ConsumerStatusPaymentAccepted, models.ConsumerStatusDispute, models.ConsumerStatusNotPaying, models.ConsumerStatusPaymentDeclined, models.ConsumerStatusRenegotiate, models.ConsumerStatusHold}, Dst: models.ConsumerStatusDeactivated},
		},
		fsm.Callbacks{
			"enter_dispute":    func(ctx context.Context, e *fsm.Event) { cfsm.stampDisputedAt() },
			"enter_not_paying": func(ctx context.Context, e *fsm.Event) { cfsm.stampDisputedAt() },
		},
	)

	return cfsm
}

func (c *ConsumerFSM) stampDisputedAt() {
	now := time.Now()
	c.consumer.DisputedAt = &now
}

// OpenNegotiation transitions the consumer to payment_setup
func (c *ConsumerFSM) OpenNegotiation(ctx context.Context) error {
	if !c.consumer.MayNegotiate() {
		return fmt.Errorf("consumer cannot negotiate in current status: %s", c.consumer.Status)
	}

	if err := c.fsm.Event(ctx, "open_negotiation"); err != nil {
		return fmt.Errorf("failed to open negotiation: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// Accept transitions the consumer to payment_accepted
func (c *ConsumerFSM) Accept(ctx context.Context) error {
	if !c.consumer.MayAcceptOffer() {
		return fmt.Errorf("offer cannot be accepted in current status: %s", c.consumer.Status)
	}

	if err := c.fsm.Event(ctx, "accept"); err != nil {
		return fmt.Errorf("failed to accept offer: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// Decline transitions the consumer to payment_declined
func (c *ConsumerFSM) Decline(ctx context.Context) error {
	if !c.consumer.MayDecline() {
		return fmt.Errorf("consumer cannot decline in current status: %s", c.consumer.Status)
	}

	if err := c.fsm.Event(ctx, "decline"); err != nil {
		return fmt.Errorf("failed to decline: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// Settle transitions the consumer to settled
func (c *ConsumerFSM) Settle(ctx context.Context) error {
	if !c.consumer.MaySettle() {
		return fmt.Errorf("consumer cannot settle in current status: %s", c.consumer.Status)
	}

	if err := c.fsm.Event(ctx, "settle"); err != nil {
		return fmt.Errorf("failed to settle: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// Dispute transitions the consumer to dispute and stamps disputed_at
func (c *ConsumerFSM) Dispute(ctx context.Context) error {
	if err := c.fsm.Event(ctx, "dispute"); err != nil {
		return fmt.Errorf("failed to dispute: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// NotPaying transitions the consumer to not_paying and stamps disputed_at
func (c *ConsumerFSM) NotPaying(ctx context.Context) error {
	if err := c.fsm.Event(ctx, "not_paying"); err != nil {
		return fmt.Errorf("failed to mark not paying: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// Hold transitions the consumer to hold
func (c *ConsumerFSM) Hold(ctx context.Context) error {
	if err := c.fsm.Event(ctx, "hold"); err != nil {
		return fmt.Errorf("failed to hold: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// Restart transitions a held consumer back to payment_accepted
func (c *ConsumerFSM) Restart(ctx context.Context) error {
	if !c.consumer.MayRestart() {
		return fmt.Errorf("consumer cannot restart in current status: %s", c.consumer.Status)
	}

	if err := c.fsm.Event(ctx, "restart"); err != nil {
		return fmt.Errorf("failed to restart: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// Renegotiate reopens negotiation on an accepted or declined plan
func (c *ConsumerFSM) Renegotiate(ctx context.Context) error {
	if err := c.fsm.Event(ctx, "renegotiate"); err != nil {
		return fmt.Errorf("failed to renegotiate: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// Deactivate transitions the consumer to deactivated
func (c *ConsumerFSM) Deactivate(ctx context.Context) error {
	if err := c.fsm.Event(ctx, "deactivate"); err != nil {
		return fmt.Errorf("failed to deactivate: %w", err)
	}

	c.consumer.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *ConsumerFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ConsumerFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
