package get_subscription

import (
	"context"
	"errors"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"go.uber.org/zap"
)

// Interactor handles the get subscription use case
type Interactor struct {
	repo   contracts.SubscriptionRepository
	logger *zap.Logger
}

// NewInteractor creates a new get subscription interactor
func NewInteractor(repo contracts.SubscriptionRepository, logger *zap.Logger) *Interactor {
	return &Interactor{repo: repo, logger: logger}
}

// Execute returns the subscription, or nil and no error when it does not exist.
func (i *Interactor) Execute(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	sub, err := i.repo.FindByID(ctx, subscriptionID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		return nil, nil
	}
	if err != nil {
		i.logger.Error("get subscription failed",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err),
		)
		return nil, domain.NewDependencyError("repo.FindByID", err)
	}
	return sub, nil
}
