package renew_due_subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/renew_subscription"
	"go.uber.org/zap"
)

// Renewer renews a single subscription
type Renewer interface {
	Execute(ctx context.Context, subscriptionID string) (*renew_subscription.Response, error)
}

// Request selects subscriptions whose current period ends within [From, To].
type Request struct {
	From time.Time
	To   time.Time
}

// Summary counts what happened to each subscription in the window.
type Summary struct {
	Renewed  int `json:"renewed"`
	Deferred int `json:"deferred"`
	Ended    int `json:"ended"`
	PastDue  int `json:"past_due"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Interactor renews every subscription that is due in a time window
type Interactor struct {
	repo    contracts.SubscriptionRepository
	renewer Renewer
	logger  *zap.Logger
}

// NewInteractor creates a new renew due subscriptions interactor
func NewInteractor(repo contracts.SubscriptionRepository, renewer Renewer, logger *zap.Logger) *Interactor {
	return &Interactor{repo: repo, renewer: renewer, logger: logger}
}

// Execute renews due subscriptions one at a time. A failure on one
// subscription is counted and does not stop the batch.
func (i *Interactor) Execute(ctx context.Context, req Request) (Summary, error) {
	var summary Summary
	if req.To.Before(req.From) {
		return summary, domain.ErrInvalidRenewalWindow
	}

	subs, err := i.repo.FindExpiringBetween(ctx, req.From, req.To)
	if err != nil {
		i.logger.Error("find due subscriptions failed",
			zap.Time("from", req.From),
			zap.Time("to", req.To),
			zap.Error(err),
		)
		return summary, domain.NewDependencyError("repo.FindExpiringBetween", err)
	}

	for _, sub := range subs {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if sub.Status() != domain.StatusActive {
			summary.Skipped++
			continue
		}

		resp, err := i.renewer.Execute(ctx, sub.ID())
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			// Changed state between the query and the renewal attempt.
			summary.Skipped++
			continue
		case err != nil:
			i.logger.Warn("renewal failed",
				zap.String("subscription_id", sub.ID()),
				zap.Error(err),
			)
			summary.Failed++
			continue
		}

		switch resp.Outcome {
		case renew_subscription.OutcomeRenewed:
			summary.Renewed++
		case renew_subscription.OutcomeDeferred:
			summary.Deferred++
		case renew_subscription.OutcomeEnded:
			summary.Ended++
		case renew_subscription.OutcomePastDue:
			summary.PastDue++
		}
	}

	i.logger.Info("renewal batch finished",
		zap.Int("candidates", len(subs)),
		zap.Int("renewed", summary.Renewed),
		zap.Int("deferred", summary.Deferred),
		zap.Int("ended", summary.Ended),
		zap.Int("past_due", summary.PastDue),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}
