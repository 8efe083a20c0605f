package domain

import (
	"strings"
	"time"
)

// SubscriptionStatus represents the status of a subscription
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusExpired  SubscriptionStatus = "expired"
)

// Valid reports whether s is a known status.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCanceled, StatusPastDue, StatusExpired:
		return true
	}
	return false
}

// Subscription is the aggregate root for subscription management
type Subscription struct {
	id                string
	customerID        string
	status            SubscriptionStatus
	plan              Plan
	period            Period
	cancelAtPeriodEnd bool
	canceledAt        *time.Time
	cancelReason      string
	willCancelAt      *time.Time
	createdAt         time.Time
	updatedAt         time.Time
}

// Snapshot is a value copy of a subscription. It is what the repository
// stores and what lifecycle events carry.
type Snapshot struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customer_id"`
	Status             SubscriptionStatus `json:"status"`
	Plan               Plan               `json:"plan"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	CanceledAt         *time.Time         `json:"canceled_at,omitempty"`
	CancelReason       string             `json:"cancel_reason,omitempty"`
	WillCancelAt       *time.Time         `json:"will_cancel_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NewSubscription creates an active subscription whose first period starts now.
func NewSubscription(id, customerID string, plan Plan, clock Clock) (*Subscription, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrInvalidCustomerID
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	now := clock.Now()
	period, err := NextPeriod(now, plan.Interval)
	if err != nil {
		return nil, err
	}

	return &Subscription{
		id:         id,
		customerID: customerID,
		status:     StatusActive,
		plan:       plan,
		period:     period,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Cancel records a cancellation request. With atPeriodEnd the subscription
// is active until the current period elapses, including one that was past
// due or expired; otherwise it is canceled immediately. A canceled
// subscription cannot be canceled again.
func (s *Subscription) Cancel(atPeriodEnd bool, reason string, clock Clock) error {
	if s.status == StatusCanceled {
		return ErrAlreadyCancelled
	}

	now := clock.Now()
	s.canceledAt = &now
	s.cancelReason = reason
	s.cancelAtPeriodEnd = atPeriodEnd

	if atPeriodEnd {
		// Renewal only picks up active subscriptions
		s.status = StatusActive
		willCancelAt := s.period.End
		s.willCancelAt = &willCancelAt
	} else {
		s.status = StatusCanceled
		s.willCancelAt = nil
	}
	s.updatedAt = now
	return nil
}

// CheckRenewable returns ErrNotRenewable unless the subscription is active.
func (s *Subscription) CheckRenewable() error {
	if s.status != StatusActive {
		return ErrNotRenewable
	}
	return nil
}

// CancellationDue reports whether a deferred cancellation has reached the
// end of the paid period.
func (s *Subscription) CancellationDue(now time.Time) bool {
	return s.cancelAtPeriodEnd && !now.Before(s.period.End)
}

// End completes a deferred cancellation.
func (s *Subscription) End(clock Clock) {
	s.status = StatusCanceled
	s.updatedAt = clock.Now()
}

// NextPeriod returns the period chained onto the current one.
func (s *Subscription) NextPeriod() (Period, error) {
	return NextPeriod(s.period.End, s.plan.Interval)
}

// Renew advances the subscription to next, which must start where the
// current period ends.
func (s *Subscription) Renew(next Period, clock Clock) error {
	if !next.Start.Equal(s.period.End) || !next.End.After(next.Start) {
		return ErrPeriodMismatch
	}
	s.period = next
	s.updatedAt = clock.Now()
	return nil
}

// MarkPastDue records a failed renewal charge. The period is left unchanged.
func (s *Subscription) MarkPastDue(clock Clock) {
	s.status = StatusPastDue
	s.updatedAt = clock.Now()
}

// Snapshot returns a copy of the current state.
func (s *Subscription) Snapshot() Snapshot {
	return Snapshot{
		ID:                 s.id,
		CustomerID:         s.customerID,
		Status:             s.status,
		Plan:               s.plan,
		CurrentPeriodStart: s.period.Start,
		CurrentPeriodEnd:   s.period.End,
		CancelAtPeriodEnd:  s.cancelAtPeriodEnd,
		CanceledAt:         copyTime(s.canceledAt),
		CancelReason:       s.cancelReason,
		WillCancelAt:       copyTime(s.willCancelAt),
		CreatedAt:          s.createdAt,
		UpdatedAt:          s.updatedAt,
	}
}

// ReconstructFromPersistence recreates a subscription from database
func ReconstructFromPersistence(snap Snapshot) *Subscription {
	return &Subscription{
		id:                snap.ID,
		customerID:        snap.CustomerID,
		status:            snap.Status,
		plan:              snap.Plan,
		period:            Period{Start: snap.CurrentPeriodStart, End: snap.CurrentPeriodEnd},
		cancelAtPeriodEnd: snap.CancelAtPeriodEnd,
		canceledAt:        copyTime(snap.CanceledAt),
		cancelReason:      snap.CancelReason,
		willCancelAt:      copyTime(snap.WillCancelAt),
		createdAt:         snap.CreatedAt,
		updatedAt:         snap.UpdatedAt,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Getters (no setters!)
func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) CustomerID() string {
	return s.customerID
}

func (s *Subscription) Status() SubscriptionStatus {
	return s.status
}

func (s *Subscription) Plan() Plan {
	return s.plan
}

func (s *Subscription) CurrentPeriod() Period {
	return s.period
}

func (s *Subscription) CancelAtPeriodEnd() bool {
	return s.cancelAtPeriodEnd
}

func (s *Subscription) CanceledAt() *time.Time {
	return copyTime(s.canceledAt)
}

func (s *Subscription) CancelReason() string {
	return s.cancelReason
}

func (s *Subscription) WillCancelAt() *time.Time {
	return copyTime(s.willCancelAt)
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) UpdatedAt() time.Time {
	return s.updatedAt
}
