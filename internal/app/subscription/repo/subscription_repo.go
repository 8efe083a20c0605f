package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"google.golang.org/api/iterator"
)

var _ contracts.SubscriptionRepository = (*SubscriptionRepo)(nil)

const table = "subscriptions"

var columns = []string{
	"id",
	"customer_id",
	"status",
	"plan_id",
	"plan_name",
	"plan_amount_cents",
	"plan_currency",
	"plan_interval",
	"current_period_start",
	"current_period_end",
	"cancel_at_period_end",
	"canceled_at",
	"cancel_reason",
	"will_cancel_at",
	"created_at",
	"updated_at",
}

const selectColumns = `
	id, customer_id, status, plan_id, plan_name, plan_amount_cents, plan_currency, plan_interval,
	current_period_start, current_period_end, cancel_at_period_end, canceled_at, cancel_reason,
	will_cancel_at, created_at, updated_at`

// SubscriptionRepo implements the subscription repository interface using Cloud Spanner
type SubscriptionRepo struct {
	client *spanner.Client
}

// NewSubscriptionRepo creates a new subscription repository
func NewSubscriptionRepo(client *spanner.Client) *SubscriptionRepo {
	return &SubscriptionRepo{client: client}
}

// Create returns an insert mutation for a new subscription.
// The mutation must be applied using Apply() method
func (r *SubscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) (*spanner.Mutation, error) {
	return spanner.Insert(table, columns, values(sub.Snapshot())), nil
}

// Update returns a mutation overwriting an existing subscription row. Applying
// it fails with NotFound when the row does not exist.
func (r *SubscriptionRepo) Update(ctx context.Context, sub *domain.Subscription) (*spanner.Mutation, error) {
	return spanner.Update(table, columns, values(sub.Snapshot())), nil
}

// Apply applies the given mutations to the database
func (r *SubscriptionRepo) Apply(ctx context.Context, mutations ...*spanner.Mutation) error {
	if _, err := r.client.Apply(ctx, mutations); err != nil {
		return fmt.Errorf("apply %d mutation(s): %w", len(mutations), err)
	}
	return nil
}

// FindByID retrieves a subscription by ID
func (r *SubscriptionRepo) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	stmt := spanner.Statement{
		SQL:    `SELECT ` + selectColumns + ` FROM subscriptions WHERE id = @id`,
		Params: map[string]interface{}{"id": id},
	}

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	row, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("query subscription %s: %w", id, err)
	}
	return scan(row)
}

// FindByCustomerID returns the customer's subscriptions, newest first.
func (r *SubscriptionRepo) FindByCustomerID(ctx context.Context, customerID string) ([]*domain.Subscription, error) {
	return r.query(ctx, spanner.Statement{
		SQL: `SELECT ` + selectColumns + ` FROM subscriptions
			WHERE customer_id = @customerId
			ORDER BY created_at DESC`,
		Params: map[string]interface{}{"customerId": customerID},
	})
}

// FindByStatus returns subscriptions in the given status ordered by period end.
func (r *SubscriptionRepo) FindByStatus(ctx context.Context, status domain.SubscriptionStatus) ([]*domain.Subscription, error) {
	return r.query(ctx, spanner.Statement{
		SQL: `SELECT ` + selectColumns + ` FROM subscriptions
			WHERE status = @status
			ORDER BY current_period_end`,
		Params: map[string]interface{}{"status": string(status)},
	})
}

// FindExpiringBetween returns subscriptions whose current period ends in
// [start, end], ordered by period end.
func (r *SubscriptionRepo) FindExpiringBetween(ctx context.Context, start, end time.Time) ([]*domain.Subscription, error) {
	return r.query(ctx, spanner.Statement{
		SQL: `SELECT ` + selectColumns + ` FROM subscriptions
			WHERE current_period_end BETWEEN @start AND @end
			ORDER BY current_period_end`,
		Params: map[string]interface{}{"start": start, "end": end},
	})
}

func (r *SubscriptionRepo) query(ctx context.Context, stmt spanner.Statement) ([]*domain.Subscription, error) {
	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	subs := []*domain.Subscription{}
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return subs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("query subscriptions: %w", err)
		}
		sub, err := scan(row)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
}

func values(s domain.Snapshot) []interface{} {
	return []interface{}{
		s.ID,
		s.CustomerID,
		string(s.Status),
		s.Plan.ID,
		s.Plan.Name,
		s.Plan.AmountCents,
		s.Plan.Currency,
		string(s.Plan.Interval),
		s.CurrentPeriodStart,
		s.CurrentPeriodEnd,
		s.CancelAtPeriodEnd,
		nullTime(s.CanceledAt),
		spanner.NullString{StringVal: s.CancelReason, Valid: s.CancelReason != ""},
		nullTime(s.WillCancelAt),
		s.CreatedAt,
		s.UpdatedAt,
	}
}

func scan(row *spanner.Row) (*domain.Subscription, error) {
	var (
		snap         domain.Snapshot
		status       string
		interval     string
		canceledAt   spanner.NullTime
		cancelReason spanner.NullString
		willCancelAt spanner.NullTime
	)

	if err := row.Columns(
		&snap.ID,
		&snap.CustomerID,
		&status,
		&snap.Plan.ID,
		&snap.Plan.Name,
		&snap.Plan.AmountCents,
		&snap.Plan.Currency,
		&interval,
		&snap.CurrentPeriodStart,
		&snap.CurrentPeriodEnd,
		&snap.CancelAtPeriodEnd,
		&canceledAt,
		&cancelReason,
		&willCancelAt,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan subscription row: %w", err)
	}

	snap.Status = domain.SubscriptionStatus(status)
	snap.Plan.Interval = domain.Interval(interval)
	snap.CanceledAt = timePtr(canceledAt)
	snap.WillCancelAt = timePtr(willCancelAt)
	if cancelReason.Valid {
		snap.CancelReason = cancelReason.StringVal
	}

	return domain.ReconstructFromPersistence(snap), nil
}

func nullTime(t *time.Time) spanner.NullTime {
	if t == nil {
		return spanner.NullTime{}
	}
	return spanner.NullTime{Time: *t, Valid: true}
}

func timePtr(t spanner.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
