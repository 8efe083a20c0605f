package cancel_subscription

import (
	"context"
	"errors"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"go.uber.org/zap"
)

// Request contains the input for cancelling a subscription
type Request struct {
	SubscriptionID    string
	CancelAtPeriodEnd bool
	Reason            string
}

// Interactor handles the cancel subscription use case
type Interactor struct {
	repo   contracts.SubscriptionRepository
	events contracts.EventChannel
	clock  domain.Clock
	logger *zap.Logger
}

// NewInteractor creates a new cancel subscription interactor
func NewInteractor(repo contracts.SubscriptionRepository, events contracts.EventChannel, clock domain.Clock, logger *zap.Logger) *Interactor {
	return &Interactor{
		repo:   repo,
		events: events,
		clock:  clock,
		logger: logger,
	}
}

// Execute cancels a subscription. It returns nil and no error when there is
// nothing to cancel: the subscription does not exist or is already canceled.
func (i *Interactor) Execute(ctx context.Context, req Request) (*domain.Subscription, error) {
	// 1. Load subscription
	sub, err := i.repo.FindByID(ctx, req.SubscriptionID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		i.logger.Debug("nothing to cancel", zap.String("subscription_id", req.SubscriptionID))
		return nil, nil
	}
	if err != nil {
		return nil, i.fault("repo.FindByID", req.SubscriptionID, err)
	}

	// 2. Cancel via domain method
	if err := sub.Cancel(req.CancelAtPeriodEnd, req.Reason, i.clock); err != nil {
		if errors.Is(err, domain.ErrAlreadyCancelled) {
			i.logger.Debug("subscription already cancelled", zap.String("subscription_id", req.SubscriptionID))
			return nil, nil
		}
		return nil, err
	}

	// 3. Persist
	mutation, err := i.repo.Update(ctx, sub)
	if err != nil {
		return nil, i.fault("repo.Update", req.SubscriptionID, err)
	}
	if err := i.repo.Apply(ctx, mutation); err != nil {
		return nil, i.fault("repo.Apply", req.SubscriptionID, err)
	}

	// 4. Announce, for both immediate and deferred cancellation
	i.events.Publish(ctx, domain.EventSubscriptionCanceled, sub.Snapshot())

	i.logger.Info("subscription cancelled",
		zap.String("subscription_id", sub.ID()),
		zap.Bool("cancel_at_period_end", sub.CancelAtPeriodEnd()),
		zap.String("status", string(sub.Status())),
	)
	return sub, nil
}

func (i *Interactor) fault(op, subscriptionID string, err error) error {
	i.logger.Error("cancel subscription failed",
		zap.String("op", op),
		zap.String("subscription_id", subscriptionID),
		zap.Error(err),
	)
	return domain.NewDependencyError(op, err)
}
