package contracts

import (
	"context"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
)

// CustomerLookup checks that a customer exists in the customer domain
type CustomerLookup interface {
	Exists(ctx context.Context, customerID string) (bool, error)
}

// CustomerDirectory resolves customer contact details. FindByID returns
// domain.ErrCustomerNotFound when the customer is unknown.
type CustomerDirectory interface {
	FindByID(ctx context.Context, customerID string) (*domain.Customer, error)
}
