package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/younegotiate/negotiate-api/internal/config"
	"github.com/younegotiate/negotiate-api/internal/models"
)

const (
	tilledProductionURL = "https://api.tilled.com/v1"
	tilledSandboxURL    = "https://sandbox-api.tilled.com/v1"
)

// TilledGateway captures payments through the Tilled API
type TilledGateway struct {
	apiKey    string
	accountID string
	baseURL   string
	client    *http.Client
}

// NewTilledGateway creates a new Tilled adapter
func NewTilledGateway(cfg *config.Config, client *http.Client) *TilledGateway {
	baseURL := tilledProductionURL
	if cfg.GatewaySandbox {
		baseURL = tilledSandboxURL
	}
	return &TilledGateway{
		apiKey:    cfg.TilledAPIKey,
		accountID: cfg.TilledAccountID,
		baseURL:   baseURL,
		client:    client,
	}
}

// Name returns the merchant identifier
func (g *TilledGateway) Name() string {
	return models.MerchantTilled
}

// ProceedPayment creates and confirms a payment intent on the merchant account
func (g *TilledGateway) ProceedPayment(ctx context.Context, amount float64, profile *models.PaymentProfile) (*Response, error) {
	method := "card"
	if profile.Method == models.PaymentMethodACH {
		method = "ach_debit"
	}

	payload := map[string]interface{}{
		"amount":               int64(math.Round(amount * 100)),
		"currency":             "usd",
		"payment_method_id":    profile.Token,
		"payment_method_types": []string{method},
		"confirm":              true,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/payment-intents", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("tilled-api-key", g.apiKey)
	req.Header.Set("tilled-account", g.accountID)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tilled request failed: %w", err)
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
		// ACH debits report processing until they clear
		if result.Status == "succeeded" || result.Status == "processing" {
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
