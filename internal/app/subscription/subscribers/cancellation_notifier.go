package subscribers

import (
	"context"
	"errors"
	"fmt"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"github.com/wuyiadepoju/subscription-billing/internal/eventbus"
	"go.uber.org/zap"
)

// CancellationNotifier emails customers when their subscription is canceled.
type CancellationNotifier struct {
	customers contracts.CustomerDirectory
	mailer    contracts.Mailer
	logger    *zap.Logger
}

// NewCancellationNotifier creates a new cancellation notifier
func NewCancellationNotifier(customers contracts.CustomerDirectory, mailer contracts.Mailer, logger *zap.Logger) *CancellationNotifier {
	return &CancellationNotifier{customers: customers, mailer: mailer, logger: logger}
}

// Register subscribes the notifier to subscription.canceled.
func (n *CancellationNotifier) Register(bus *eventbus.Bus) {
	bus.Subscribe(domain.EventSubscriptionCanceled, n.Handle)
}

// Handle sends the notice for one canceled event. An unknown customer is
// logged and skipped.
func (n *CancellationNotifier) Handle(ctx context.Context, event eventbus.Event) error {
	sub, ok := event.Payload.(domain.Snapshot)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", event.Name, event.Payload)
	}

	customer, err := n.customers.FindByID(ctx, sub.CustomerID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		n.logger.Warn("customer not found for cancellation notice",
			zap.String("subscription_id", sub.ID),
			zap.String("customer_id", sub.CustomerID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup customer %s: %w", sub.CustomerID, err)
	}

	if err := n.mailer.SendCancellationNotice(ctx, *customer, sub); err != nil {
		return fmt.Errorf("send cancellation notice for %s: %w", sub.ID, err)
	}

	n.logger.Info("cancellation notice sent",
		zap.String("subscription_id", sub.ID),
		zap.String("customer_id", sub.CustomerID),
	)
	return nil
}
