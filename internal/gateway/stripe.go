package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/younegotiate/negotiate-api/internal/config"
	"github.com/younegotiate/negotiate-api/internal/models"
)

const stripeBaseURL = "https://api.stripe.com/v1"

// StripeGateway captures payments through the Stripe PaymentIntents API
type StripeGateway struct {
	secretKey string
	client    *http.Client
}

// NewStripeGateway creates a new Stripe adapter
func NewStripeGateway(cfg *config.Config, client *http.Client) *StripeGateway {
	return &StripeGateway{
		secretKey: cfg.StripeSecretKey,
		client:    client,
	}
}

// Name returns the merchant identifier
func (g *StripeGateway) Name() string {
	return models.MerchantStripe
}

// ProceedPayment creates and confirms a payment intent against the stored method
func (g *StripeGateway) ProceedPayment(ctx context.Context, amount float64, profile *models.PaymentProfile) (*Response, error) {
	// Stripe amounts are integer cents
	cents := int64(math.Round(amount * 100))

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", cents))
	form.Set("currency", "usd")
	form.Set("payment_method", profile.Token)
	form.Set("confirm", "true")
	form.Set("off_session", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		stripeBaseURL+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	status := models.TransactionStatusFailed
	refID := uuid.New().String()
	if err := json.Unmarshal(body, &result); err == nil {
		if result.Status == "succeeded" {
			status = models.TransactionStatusSuccessful
		}
		if result.ID != "" {
			refID = result.ID
		}
	}

	return &Response{
		Status:          status,
		GatewayResponse: string(body),
		ReferenceID:     refID,
	}, nil
}
