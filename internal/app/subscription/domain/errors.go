package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the lifecycle engine matches exactly
// one of these through errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state")
	ErrPaymentFailed = errors.New("payment failed")
	ErrValidation    = errors.New("validation error")
	ErrDependency    = errors.New("dependency error")
)

var (
	ErrCustomerNotFound     = fmt.Errorf("customer %w", ErrNotFound)
	ErrSubscriptionNotFound = fmt.Errorf("subscription %w", ErrNotFound)

	ErrAlreadyCancelled = fmt.Errorf("%w: subscription already cancelled", ErrInvalidState)
	ErrNotRenewable     = fmt.Errorf("%w: cannot renew: subscription not found or not active", ErrInvalidState)
	ErrPeriodMismatch   = fmt.Errorf("%w: new period must start at the current period end", ErrInvalidState)

	ErrInvalidCustomerID = fmt.Errorf("%w: customer ID cannot be empty", ErrValidation)
	ErrInvalidPlanID     = fmt.Errorf("%w: plan ID cannot be empty", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: plan amount must be positive", ErrValidation)
	ErrInvalidCurrency   = fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	ErrInvalidInterval   = fmt.Errorf("%w: interval must be month or year", ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("%w: unknown subscription status", ErrValidation)

	ErrInvalidRenewalWindow = fmt.Errorf("%w: renewal window ends before it starts", ErrValidation)
)

// DependencyError reports an unexpected fault raised by a repository,
// gateway or lookup collaborator.
type DependencyError struct {
	Op  string
	Err error
}

// NewDependencyError wraps err as a fault of the named operation.
func NewDependencyError(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func (e *DependencyError) Is(target error) bool {
	return target == ErrDependency
}

// PaymentError is returned when the gateway declines a charge that must
// succeed for the operation to proceed.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	if e.Reason == "" {
		return ErrPaymentFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrPaymentFailed, e.Reason)
}

func (e *PaymentError) Is(target error) bool {
	return target == ErrPaymentFailed
}
