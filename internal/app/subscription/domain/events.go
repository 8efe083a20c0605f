package domain

// Lifecycle event names published after a state change has been persisted.
const (
	EventSubscriptionCreated       = "subscription.created"
	EventSubscriptionCanceled      = "subscription.canceled"
	EventSubscriptionRenewed       = "subscription.renewed"
	EventSubscriptionPaymentFailed = "subscription.payment_failed"
	EventSubscriptionEnded         = "subscription.ended"
)

// Payloads of subscription.created, subscription.canceled and
// subscription.ended are a plain Snapshot.

// SubscriptionRenewedPayload is published with subscription.renewed
type SubscriptionRenewedPayload struct {
	Subscription Snapshot      `json:"subscription"`
	Payment      PaymentResult `json:"payment"`
}

// PaymentFailedPayload is published with subscription.payment_failed
type PaymentFailedPayload struct {
	Subscription Snapshot `json:"subscription"`
	PaymentError string   `json:"payment_error"`
}
