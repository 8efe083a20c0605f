package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
)

var _ contracts.PaymentGateway = (*HTTPPaymentGateway)(nil)

const defaultDeclineReason = "payment declined"

// HTTPPaymentGateway charges customers through the payment provider's HTTP API.
// 200 is a successful charge, 402 a decline. Anything else is an error.
type HTTPPaymentGateway struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPPaymentGateway creates a new HTTP payment gateway
func NewHTTPPaymentGateway(client *http.Client, baseURL, apiKey string) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type chargeRequest struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"customer_id"`
	PlanID         string `json:"plan_id"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
}

type chargeResponse struct {
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Error         string `json:"error"`
}

// Charge bills one interval of the plan
func (g *HTTPPaymentGateway) Charge(ctx context.Context, charge domain.ChargeRequest) (domain.PaymentResult, error) {
	body, err := json.Marshal(chargeRequest{
		SubscriptionID: charge.SubscriptionID,
		CustomerID:     charge.CustomerID,
		PlanID:         charge.Plan.ID,
		AmountCents:    charge.Plan.AmountCents,
		Currency:       charge.Plan.Currency,
	})
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("failed to process charge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPaymentRequired {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.PaymentResult{}, fmt.Errorf("charge failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var decoded chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		return domain.PaymentResult{}, fmt.Errorf("failed to decode response: %w", err)
	}

	result := domain.PaymentResult{
		TransactionID: decoded.TransactionID,
		AmountCents:   charge.Plan.AmountCents,
		Currency:      charge.Plan.Currency,
	}
	if decoded.AmountCents != 0 {
		result.AmountCents = decoded.AmountCents
	}
	if decoded.Currency != "" {
		result.Currency = decoded.Currency
	}

	if resp.StatusCode == http.StatusPaymentRequired {
		result.Error = decoded.Error
		if result.Error == "" {
			result.Error = defaultDeclineReason
		}
		return result, nil
	}
	result.Success = true
	return result, nil
}
