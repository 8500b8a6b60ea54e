package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/younegotiate/negotiate-api/internal/config"
	"github.com/younegotiate/negotiate-api/internal/models"
)

// Response is the normalized result of a capture attempt at any merchant
type Response struct {
	Status          string
	GatewayResponse string
	ReferenceID     string
}

// Gateway captures a payment against a tokenized profile
type Gateway interface {
	Name() string
	ProceedPayment(ctx context.Context, amount float64, profile *models.PaymentProfile) (*Response, error)
}

// Dispatcher routes captures to the gateway the profile was tokenized at
type Dispatcher struct {
	gateways map[string]Gateway
}

// NewDispatcher wires every configured merchant adapter
func NewDispatcher(cfg *config.Config) *Dispatcher {
	client := &http.Client{Timeout: 30 * time.Second}

	d := &Dispatcher{gateways: make(map[string]Gateway)}
	d.register(NewAuthorizeNetGateway(cfg, client))
	d.register(NewStripeGateway(cfg, client))
	d.register(NewTilledGateway(cfg, client))
	d.register(NewUSAEpayGateway(cfg, client))
	return d
}

func (d *Dispatcher) register(g Gateway) {
	d.gateways[g.Name()] = g
}

// ProceedPayment dispatches on the profile's merchant
func (d *Dispatcher) ProceedPayment(ctx context.Context, amount float64, profile *models.PaymentProfile) (*Response, error) {
	g, ok := d.gateways[profile.Merchant]
	if !ok {
		return nil, fmt.Errorf("unsupported merchant gateway: %s", profile.Merchant)
	}
	return g.ProceedPayment(ctx, amount, profile)
}
