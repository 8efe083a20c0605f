package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"go.uber.org/zap"
)

var _ contracts.PaymentGateway = (*BreakerGateway)(nil)

// BreakerSettings configures the payment gateway circuit breaker.
type BreakerSettings struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive faults that trips the breaker.
	FailureThreshold uint32
}

// BreakerGateway stops calling an unhealthy payment gateway. Only transport
// faults count as failures; declines are normal results.
type BreakerGateway struct {
	next    contracts.PaymentGateway
	breaker *gobreaker.CircuitBreaker[domain.PaymentResult]
}

// NewBreakerGateway wraps next with a circuit breaker
func NewBreakerGateway(next contracts.PaymentGateway, settings BreakerSettings, logger *zap.Logger) *BreakerGateway {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[domain.PaymentResult](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerGateway{next: next, breaker: breaker}
}

// Charge forwards to the wrapped gateway unless the breaker is open
func (g *BreakerGateway) Charge(ctx context.Context, req domain.ChargeRequest) (domain.PaymentResult, error) {
	result, err := g.breaker.Execute(func() (domain.PaymentResult, error) {
		return g.next.Charge(ctx, req)
	})
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("payment gateway: %w", err)
	}
	return result, nil
}

// State returns the current breaker state
func (g *BreakerGateway) State() gobreaker.State {
	return g.breaker.State()
}
