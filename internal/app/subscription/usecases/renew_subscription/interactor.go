package renew_subscription

import (
	"context"
	"errors"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"go.uber.org/zap"
)

// Outcome describes what a renewal attempt did.
type Outcome string

const (
	// OutcomeRenewed means the charge succeeded and the period advanced.
	OutcomeRenewed Outcome = "renewed"
	// OutcomeDeferred means cancellation is pending and the period has not elapsed yet.
	OutcomeDeferred Outcome = "deferred"
	// OutcomeEnded means a pending cancellation took effect.
	OutcomeEnded Outcome = "ended"
	// OutcomePastDue means the charge was declined.
	OutcomePastDue Outcome = "past_due"
)

// Response is the result of a renewal attempt
type Response struct {
	Subscription *domain.Subscription
	Outcome      Outcome
}

// Renewed returns the subscription only when a new period was paid for.
func (r *Response) Renewed() *domain.Subscription {
	if r == nil || r.Outcome != OutcomeRenewed {
		return nil
	}
	return r.Subscription
}

// Interactor handles the renew subscription use case
type Interactor struct {
	repo    contracts.SubscriptionRepository
	gateway contracts.PaymentGateway
	events  contracts.EventChannel
	clock   domain.Clock
	logger  *zap.Logger
}

// NewInteractor creates a new renew subscription interactor
func NewInteractor(
	repo contracts.SubscriptionRepository,
	gateway contracts.PaymentGateway,
	events contracts.EventChannel,
	clock domain.Clock,
	logger *zap.Logger,
) *Interactor {
	return &Interactor{
		repo:    repo,
		gateway: gateway,
		events:  events,
		clock:   clock,
		logger:  logger,
	}
}

// Execute renews an active subscription for one more interval.
func (i *Interactor) Execute(ctx context.Context, subscriptionID string) (*Response, error) {
	// 1. Load and check the subscription can be renewed
	sub, err := i.repo.FindByID(ctx, subscriptionID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		return nil, domain.ErrNotRenewable
	}
	if err != nil {
		return nil, i.fault("repo.FindByID", subscriptionID, err)
	}
	if err := sub.CheckRenewable(); err != nil {
		return nil, err
	}

	// 2. Pending cancellation never renews
	if sub.CancelAtPeriodEnd() {
		return i.finishDeferredCancellation(ctx, sub)
	}

	// 3. Chain the next period onto the current one
	next, err := sub.NextPeriod()
	if err != nil {
		return nil, err
	}

	// 4. Charge
	i.logger.Info("processing renewal payment",
		zap.String("subscription_id", sub.ID()),
		zap.String("plan_id", sub.Plan().ID),
		zap.Int64("amount_cents", sub.Plan().AmountCents),
	)
	result, err := i.gateway.Charge(ctx, domain.ChargeRequest{
		SubscriptionID: sub.ID(),
		CustomerID:     sub.CustomerID(),
		Plan:           sub.Plan(),
	})
	if err != nil {
		return nil, i.fault("gateway.Charge", sub.ID(), err)
	}

	// 5. Declined: past due, period unchanged
	if !result.Success {
		sub.MarkPastDue(i.clock)
		if err := i.persist(ctx, sub); err != nil {
			return nil, err
		}
		i.events.Publish(ctx, domain.EventSubscriptionPaymentFailed, domain.PaymentFailedPayload{
			Subscription: sub.Snapshot(),
			PaymentError: result.Error,
		})
		i.logger.Warn("renewal payment declined",
			zap.String("subscription_id", sub.ID()),
			zap.String("reason", result.Error),
		)
		return &Response{Subscription: sub, Outcome: OutcomePastDue}, nil
	}

	// 6. Paid: advance
	if err := sub.Renew(next, i.clock); err != nil {
		return nil, err
	}
	if err := i.persist(ctx, sub); err != nil {
		return nil, err
	}
	i.events.Publish(ctx, domain.EventSubscriptionRenewed, domain.SubscriptionRenewedPayload{
		Subscription: sub.Snapshot(),
		Payment:      result,
	})

	i.logger.Info("subscription renewed",
		zap.String("subscription_id", sub.ID()),
		zap.String("transaction_id", result.TransactionID),
		zap.Time("current_period_start", next.Start),
		zap.Time("current_period_end", next.End),
	)
	return &Response{Subscription: sub, Outcome: OutcomeRenewed}, nil
}

func (i *Interactor) finishDeferredCancellation(ctx context.Context, sub *domain.Subscription) (*Response, error) {
	if !sub.CancellationDue(i.clock.Now()) {
		i.logger.Info("subscription marked for cancellation, will not be renewed",
			zap.String("subscription_id", sub.ID()),
			zap.Time("current_period_end", sub.CurrentPeriod().End),
		)
		return &Response{Subscription: sub, Outcome: OutcomeDeferred}, nil
	}

	sub.End(i.clock)
	if err := i.persist(ctx, sub); err != nil {
		return nil, err
	}
	i.events.Publish(ctx, domain.EventSubscriptionEnded, sub.Snapshot())

	i.logger.Info("subscription ended at period end", zap.String("subscription_id", sub.ID()))
	return &Response{Subscription: sub, Outcome: OutcomeEnded}, nil
}

func (i *Interactor) persist(ctx context.Context, sub *domain.Subscription) error {
	mutation, err := i.repo.Update(ctx, sub)
	if err != nil {
		return i.fault("repo.Update", sub.ID(), err)
	}
	if err := i.repo.Apply(ctx, mutation); err != nil {
		return i.fault("repo.Apply", sub.ID(), err)
	}
	return nil
}

func (i *Interactor) fault(op, subscriptionID string, err error) error {
	i.logger.Error("renew subscription failed",
		zap.String("op", op),
		zap.String("subscription_id", subscriptionID),
		zap.Error(err),
	)
	return domain.NewDependencyError(op, err)
}
