package list_customer_subscriptions

import (
	"context"
	"strings"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"go.uber.org/zap"
)

// Interactor lists every subscription owned by a customer
type Interactor struct {
	repo   contracts.SubscriptionRepository
	logger *zap.Logger
}

// NewInteractor creates a new list customer subscriptions interactor
func NewInteractor(repo contracts.SubscriptionRepository, logger *zap.Logger) *Interactor {
	return &Interactor{repo: repo, logger: logger}
}

// Execute returns the customer's subscriptions in any status. The result is
// never nil.
func (i *Interactor) Execute(ctx context.Context, customerID string) ([]*domain.Subscription, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrInvalidCustomerID
	}

	subs, err := i.repo.FindByCustomerID(ctx, customerID)
	if err != nil {
		i.logger.Error("list customer subscriptions failed",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return nil, domain.NewDependencyError("repo.FindByCustomerID", err)
	}
	if subs == nil {
		subs = []*domain.Subscription{}
	}
	return subs, nil
}
