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
	authorizeNetProductionURL = "https://api.authorize.net/xml/v1/request.api"
	authorizeNetSandboxURL    = "https://apitest.authorize.net/xml/v1/request.api"
)

// AuthorizeNetGateway captures payments through the Authorize.Net API
type AuthorizeNetGateway struct {
	loginID        string
	transactionKey string
	baseURL        string
	client         *http.Client
}

// NewAuthorizeNetGateway creates a new Authorize.Net adapter
func NewAuthorizeNetGateway(cfg *config.Config, client *http.Client) *AuthorizeNetGateway {
	baseURL := authorizeNetProductionURL
	if cfg.GatewaySandbox {
		baseURL = authorizeNetSandboxURL
	}
	return &AuthorizeNetGateway{
		loginID:        cfg.AuthorizeNetLoginID,
		transactionKey: cfg.AuthorizeNetTransactionKey,
		baseURL:        baseURL,
		client:         client,
	}
}

// Name returns the merchant identifier
func (g *AuthorizeNetGateway) Name() string {
	return models.MerchantAuthorizeNet
}

// ProceedPayment charges the stored customer profile
func (g *AuthorizeNetGateway) ProceedPayment(ctx context.Context, amount float64, profile *models.PaymentProfile) (*Response, error) {
	refID := uuid.New().String()

	payload := map[string]interface{}{
		"createTransactionRequest": map[string]interface{}{
			"merchantAuthentication": map[string]string{
				"name":           g.loginID,
				"transactionKey": g.transactionKey,
			},
			"refId": refID,
			"transactionRequest": map[string]interface{}{
				"transactionType": "authCaptureTransaction",
				"amount":          fmt.Sprintf("%.2f", amount),
				"profile": map[string]string{
					"customerProfileId": profile.Token,
				},
			},
		},
	}

	body, err := g.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	var result struct {
		TransactionResponse struct {
			ResponseCode string `json:"responseCode"`
			TransID      string `json:"transId"`
		} `json:"transactionResponse"`
	}
	status := models.TransactionStatusFailed
	if err := json.Unmarshal(body, &result); err == nil {
		// responseCode 1 is approved
		if result.TransactionResponse.ResponseCode == "1" {
			status = models.TransactionStatusSuccessful
		}
		if result.TransactionResponse.TransID != "" {
			refID = result.TransactionResponse.TransID
		}
	}

	return &Response{
		Status:          status,
		GatewayResponse: string(body),
		ReferenceID:     refID,
	}, nil
}

func (g *AuthorizeNetGateway) post(ctx context.Context, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authorize.net request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
