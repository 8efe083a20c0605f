package create_subscription

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"go.uber.org/zap"
)

// Request contains the input for creating a subscription
type Request struct {
	CustomerID string
	Plan       domain.Plan
}

// Interactor handles the create subscription use case
type Interactor struct {
	repo      contracts.SubscriptionRepository
	customers contracts.CustomerLookup
	gateway   contracts.PaymentGateway
	events    contracts.EventChannel
	clock     domain.Clock
	logger    *zap.Logger
	newID     func() string
}

// NewInteractor creates a new create subscription interactor
func NewInteractor(
	repo contracts.SubscriptionRepository,
	customers contracts.CustomerLookup,
	gateway contracts.PaymentGateway,
	events contracts.EventChannel,
	clock domain.Clock,
	logger *zap.Logger,
) *Interactor {
	return &Interactor{
		repo:      repo,
		customers: customers,
		gateway:   gateway,
		events:    events,
		clock:     clock,
		logger:    logger,
		newID:     func() string { return uuid.New().String() },
	}
}

// Execute creates a new subscription. The first charge is taken before
// anything is written, so a declined payment leaves no record behind.
func (i *Interactor) Execute(ctx context.Context, req Request) (*domain.Subscription, error) {
	// 1. Validate input before touching collaborators
	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, domain.ErrInvalidCustomerID
	}
	if err := req.Plan.Validate(); err != nil {
		return nil, err
	}

	// 2. Customer must exist
	exists, err := i.customers.Exists(ctx, req.CustomerID)
	if err != nil {
		return nil, i.fault("customers.Exists", err, zap.String("customer_id", req.CustomerID))
	}
	if !exists {
		return nil, domain.ErrCustomerNotFound
	}

	// 3. Build candidate aggregate
	sub, err := domain.NewSubscription(i.newID(), req.CustomerID, req.Plan, i.clock)
	if err != nil {
		return nil, err
	}

	// 4. First charge
	i.logger.Info("processing first payment",
		zap.String("subscription_id", sub.ID()),
		zap.String("plan_id", req.Plan.ID),
		zap.Int64("amount_cents", req.Plan.AmountCents),
		zap.String("currency", req.Plan.Currency),
	)
	result, err := i.gateway.Charge(ctx, domain.ChargeRequest{
		SubscriptionID: sub.ID(),
		CustomerID:     sub.CustomerID(),
		Plan:           sub.Plan(),
	})
	if err != nil {
		return nil, i.fault("gateway.Charge", err, zap.String("subscription_id", sub.ID()))
	}
	if !result.Success {
		i.logger.Warn("first payment declined",
			zap.String("customer_id", req.CustomerID),
			zap.String("reason", result.Error),
		)
		return nil, &domain.PaymentError{Reason: result.Error}
	}

	// 5. Persist
	mutation, err := i.repo.Create(ctx, sub)
	if err != nil {
		return nil, i.fault("repo.Create", err, zap.String("subscription_id", sub.ID()))
	}
	if err := i.repo.Apply(ctx, mutation); err != nil {
		return nil, i.fault("repo.Apply", err, zap.String("subscription_id", sub.ID()))
	}

	// 6. Announce
	i.events.Publish(ctx, domain.EventSubscriptionCreated, sub.Snapshot())

	i.logger.Info("subscription created",
		zap.String("subscription_id", sub.ID()),
		zap.String("customer_id", sub.CustomerID()),
		zap.String("transaction_id", result.TransactionID),
		zap.Time("current_period_end", sub.CurrentPeriod().End),
	)
	return sub, nil
}

func (i *Interactor) fault(op string, err error, fields ...zap.Field) error {
	i.logger.Error("create subscription failed", append(fields, zap.String("op", op), zap.Error(err))...)
	return domain.NewDependencyError(op, err)
}
