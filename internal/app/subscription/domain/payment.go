package domain

// ChargeRequest asks the payment gateway to bill one interval of a plan.
type ChargeRequest struct {
	SubscriptionID string
	CustomerID     string
	Plan           Plan
}

// PaymentResult is the outcome of a single charge attempt. It drives the
// lifecycle decision and is never persisted.
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Error         string `json:"error,omitempty"`
}
