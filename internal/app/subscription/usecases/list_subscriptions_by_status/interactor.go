package list_subscriptions_by_status

import (
	"context"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"go.uber.org/zap"
)

// Interactor lists subscriptions in a given status
type Interactor struct {
	repo   contracts.SubscriptionRepository
	logger *zap.Logger
}

// NewInteractor creates a new list subscriptions by status interactor
func NewInteractor(repo contracts.SubscriptionRepository, logger *zap.Logger) *Interactor {
	return &Interactor{repo: repo, logger: logger}
}

// Execute returns every subscription with the given status. The result is
// never nil.
func (i *Interactor) Execute(ctx context.Context, status domain.SubscriptionStatus) ([]*domain.Subscription, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	subs, err := i.repo.FindByStatus(ctx, status)
	if err != nil {
		i.logger.Error("list subscriptions by status failed",
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return nil, domain.NewDependencyError("repo.FindByStatus", err)
	}
	if subs == nil {
		subs = []*domain.Subscription{}
	}
	return subs, nil
}
