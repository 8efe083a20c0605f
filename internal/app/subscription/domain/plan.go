package domain

import "strings"

// Plan describes what a subscription bills for and how often.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AmountCents int64    `json:"amount_cents"`
	Currency    string   `json:"currency"`
	Interval    Interval `json:"interval"`
}

// Validate checks the plan descriptor before any subscription is built from it.
func (p Plan) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidPlanID
	}
	if p.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if len(p.Currency) != 3 {
		return ErrInvalidCurrency
	}
	if !p.Interval.Valid() {
		return ErrInvalidInterval
	}
	return nil
}
