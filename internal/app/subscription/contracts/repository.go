package contracts

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
)

// SubscriptionRepository defines the interface for subscription persistence.
//
// Create and Update only build mutations; nothing is durable until Apply
// succeeds. The lifecycle engine performs no locking of its own: a load
// followed by Apply on the same subscription ID is last-writer-wins unless
// the implementation provides stronger isolation.
type SubscriptionRepository interface {
	// FindByID returns domain.ErrSubscriptionNotFound when no row exists.
	FindByID(ctx context.Context, id string) (*domain.Subscription, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]*domain.Subscription, error)
	FindByStatus(ctx context.Context, status domain.SubscriptionStatus) ([]*domain.Subscription, error)
	// FindExpiringBetween matches start <= current_period_end <= end.
	FindExpiringBetween(ctx context.Context, start, end time.Time) ([]*domain.Subscription, error)

	Create(ctx context.Context, sub *domain.Subscription) (*spanner.Mutation, error)
	Update(ctx context.Context, sub *domain.Subscription) (*spanner.Mutation, error)
	Apply(ctx context.Context, mutations ...*spanner.Mutation) error
}
