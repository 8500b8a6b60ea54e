package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/younegotiate/negotiate-api/internal/config"
	"github.com/younegotiate/negotiate-api/internal/models"
)

const (
	usaepayProductionURL = "https://usaepay.com/api/v2"
	usaepaySandboxURL    = "https://sandbox.usaepay.com/api/v2"
)

// USAEpayGateway captures payments through the USAePay REST API
type USAEpayGateway struct {
	sourceKey string
	baseURL   string
	client    *http.Client
}

// NewUSAEpayGateway creates a new USAePay adapter
func NewUSAEpayGateway(cfg *config.Config, client *http.Client) *USAEpayGateway {
	baseURL := usaepayProductionURL
	if cfg.GatewaySandbox {
		baseURL = usaepaySandboxURL
	}
	return &USAEpayGateway{
		sourceKey: cfg.USAEpaySourceKey,
		baseURL:   baseURL,
		client:    client,
	}
}

// Name returns the merchant identifier
func (g *USAEpayGateway) Name() string {
	return models.MerchantUSAEpay
}

// ProceedPayment runs a sale against the saved customer token
func (g *USAEpayGateway) ProceedPayment(ctx context.Context, amount float64, profile *models.PaymentProfile) (*Response, error) {
	payload := map[string]interface{}{
		"command": "sale",
		"amount":  fmt.Sprintf("%.2f", amount),
		"creditcard": map[string]string{
			"number": profile.Token,
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/transactions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.sourceKey, "")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usaepay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Key        string `json:"key"`
		ResultCode string `json:"result_code"`
	}
	status := models.TransactionStatusFailed
	refID := uuid.New().String()
	if err := json.Unmarshal(body, &result); err == nil {
		// result_code A is approved
		if result.ResultCode == "A" {
			status = models.TransactionStatusSuccessful
		}
		if result.Key != "" {
			refID = result.Key
		}
	}

	return &Response{
		Status:          status,
		GatewayResponse: string(body),
		ReferenceID:     refID,
	}, nil
}
