package renew_subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/mocks"
	"go.uber.org/zap"
)

type fixture struct {
	repo    *mocks.MockRepository
	gateway *mocks.MockPaymentGateway
	events  *mocks.RecordingEventChannel
}

func newInteractor(now time.Time) (*fixture, *Interactor) {
	f := &fixture{
		repo:    new(mocks.MockRepository),
		gateway: new(mocks.MockPaymentGateway),
		events:  &mocks.RecordingEventChannel{},
	}
	return f, NewInteractor(f.repo, f.gateway, f.events, domain.FixedClock{FixedTime: now}, zap.NewNop())
}

func subscription(status domain.SubscriptionStatus, interval domain.Interval, start, end time.Time, cancelAtPeriodEnd bool) *domain.Subscription {
	return domain.ReconstructFromPersistence(domain.Snapshot{
		ID:                 "sub-123",
		CustomerID:         "cust-456",
		Status:             status,
		Plan:               domain.Plan{ID: "plan-789", Name: "Pro", AmountCents: 9900, Currency: "USD", Interval: interval},
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
		CancelAtPeriodEnd:  cancelAtPeriodEnd,
		CreatedAt:          start,
		UpdatedAt:          start,
	})
}

func TestRenewSubscription_AnnualChainsPeriod(t *testing.T) {
	ctx := context.Background()
	oldStart := time.Date(2022, 12, 31, 12, 0, 0, 0, time.UTC)
	oldEnd := time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)
	f, interactor := newInteractor(oldEnd)
	sub := subscription(domain.StatusActive, domain.IntervalYear, oldStart, oldEnd, false)

	payment := domain.PaymentResult{Success: true, TransactionID: "tx_9", AmountCents: 9900, Currency: "USD"}
	f.repo.On("FindByID", ctx, "sub-123").Return(sub, nil)
	f.gateway.On("Charge", ctx, domain.ChargeRequest{SubscriptionID: "sub-123", CustomerID: "cust-456", Plan: sub.Plan()}).Return(payment, nil)
	mockMutation := &spanner.Mutation{}
	f.repo.On("Update", ctx, sub).Return(mockMutation, nil)
	f.repo.On("Apply", ctx, []*spanner.Mutation{mockMutation}).Return(nil)

	resp, err := interactor.Execute(ctx, "sub-123")

	require.NoError(t, err)
	assert.Equal(t, OutcomeRenewed, resp.Outcome)
	renewed := resp.Renewed()
	require.NotNil(t, renewed)
	assert.Equal(t, oldEnd, renewed.CurrentPeriod().Start)
	assert.Equal(t, time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), renewed.CurrentPeriod().End)
	assert.Equal(t, domain.StatusActive, renewed.Status())

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventSubscriptionRenewed, events[0].Name)
	assert.Equal(t, domain.SubscriptionRenewedPayload{Subscription: renewed.Snapshot(), Payment: payment}, events[0].Payload)
	f.repo.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func TestRenewSubscription_PeriodsNeverOverlapOrGap(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)
	sub := subscription(domain.StatusActive, domain.IntervalMonth, start, end, false)
	f, interactor := newInteractor(end)

	f.repo.On("FindByID", ctx, "sub-123").Return(sub, nil)
	f.gateway.On("Charge", ctx, mock.Anything).Return(domain.PaymentResult{Success: true}, nil)
	f.repo.On("Update", ctx, mock.Anything).Return(&spanner.Mutation{}, nil)
	f.repo.On("Apply", ctx, mock.Anything).Return(nil)

	for renewal := 0; renewal < 3; renewal++ {
		before := sub.CurrentPeriod()

		resp, err := interactor.Execute(ctx, "sub-123")

		require.NoError(t, err)
		require.Equal(t, OutcomeRenewed, resp.Outcome)
		assert.Equal(t, before.End, sub.CurrentPeriod().Start)
		assert.True(t, sub.CurrentPeriod().End.After(sub.CurrentPeriod().Start))
	}
	assert.Equal(t, time.Date(2023, 5, 28, 0, 0, 0, 0, time.UTC), sub.CurrentPeriod().End)
}

func TestRenewSubscription_PaymentDeclinedMarksPastDue(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	f, interactor := newInteractor(end)
	sub := subscription(domain.StatusActive, domain.IntervalMonth, start, end, false)

	f.repo.On("FindByID", ctx, "sub-123").Return(sub, nil)
	f.gateway.On("Charge", ctx, mock.Anything).Return(domain.PaymentResult{Success: false, Error: "insufficient funds"}, nil)
	f.repo.On("Update", ctx, mock.MatchedBy(func(s *domain.Subscription) bool {
		return s.Status() == domain.StatusPastDue
	})).Return(&spanner.Mutation{}, nil)
	f.repo.On("Apply", ctx, mock.Anything).Return(nil)

	resp, err := interactor.Execute(ctx, "sub-123")

	require.NoError(t, err)
	assert.Equal(t, OutcomePastDue, resp.Outcome)
	assert.Nil(t, resp.Renewed())
	assert.Equal(t, domain.StatusPastDue, sub.Status())
	assert.Equal(t, start, sub.CurrentPeriod().Start)
	assert.Equal(t, end, sub.CurrentPeriod().End)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventSubscriptionPaymentFailed, events[0].Name)
	payload, ok := events[0].Payload.(domain.PaymentFailedPayload)
	require.True(t, ok)
	assert.Equal(t, "insufficient funds", payload.PaymentError)
	assert.Equal(t, domain.StatusPastDue, payload.Subscription.Status)
	f.repo.AssertExpectations(t)
}

func TestRenewSubscription_DeferredCancellationBeforePeriodEnd(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	f, interactor := newInteractor(end.Add(-time.Minute))
	sub := subscription(domain.StatusActive, domain.IntervalMonth, start, end, true)

	f.repo.On("FindByID", ctx, "sub-123").Return(sub, nil)

	resp, err := interactor.Execute(ctx, "sub-123")

	require.NoError(t, err)
	assert.Equal(t, OutcomeDeferred, resp.Outcome)
	assert.Nil(t, resp.Renewed())
	assert.Equal(t, domain.StatusActive, sub.Status())
	assert.Equal(t, start, sub.UpdatedAt())
	assert.Empty(t, f.events.Events())
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRenewSubscription_DeferredCancellationAtPeriodEnd(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	sub := subscription(domain.StatusActive, domain.IntervalMonth, start, end, true)

	repo := new(mocks.MockRepository)
	gateway := new(mocks.MockPaymentGateway)
	events := &mocks.RecordingEventChannel{}
	interactor := NewInteractor(repo, gateway, events, domain.FixedClock{FixedTime: end}, zap.NewNop())

	repo.On("FindByID", ctx, "sub-123").Return(sub, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(s *domain.Subscription) bool {
		return s.Status() == domain.StatusCanceled
	})).Return(&spanner.Mutation{}, nil).Once()
	repo.On("Apply", ctx, mock.Anything).Return(nil).Once()

	resp, err := interactor.Execute(ctx, "sub-123")

	require.NoError(t, err)
	assert.Equal(t, OutcomeEnded, resp.Outcome)
	assert.Nil(t, resp.Renewed())
	assert.Equal(t, domain.StatusCanceled, sub.Status())
	assert.Equal(t, []string{domain.EventSubscriptionEnded}, events.Names())

	// The canceled subscription is terminal: a second attempt fails without
	// publishing another ended event.
	_, err = interactor.Execute(ctx, "sub-123")
	assert.ErrorIs(t, err, domain.ErrNotRenewable)
	assert.Equal(t, []string{domain.EventSubscriptionEnded}, events.Names())
	gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestRenewSubscription_PastDueWithDeferredCancelEnds(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	sub := subscription(domain.StatusPastDue, domain.IntervalMonth, start, end, false)
	require.NoError(t, sub.Cancel(true, "card expired", domain.FixedClock{FixedTime: start.AddDate(0, 0, 20)}))

	f, interactor := newInteractor(end.AddDate(1, 0, 0))
	f.repo.On("FindByID", ctx, "sub-123").Return(sub, nil)
	f.repo.On("Update", ctx, mock.MatchedBy(func(s *domain.Subscription) bool {
		return s.Status() == domain.StatusCanceled
	})).Return(&spanner.Mutation{}, nil).Once()
	f.repo.On("Apply", ctx, mock.Anything).Return(nil).Once()

	resp, err := interactor.Execute(ctx, "sub-123")

	require.NoError(t, err)
	assert.Equal(t, OutcomeEnded, resp.Outcome)
	assert.Equal(t, domain.StatusCanceled, sub.Status())
	assert.Equal(t, []string{domain.EventSubscriptionEnded}, f.events.Names())
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	f.repo.AssertExpectations(t)
}

func TestRenewSubscription_NotRenewable(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("not found", func(t *testing.T) {
		f, interactor := newInteractor(now)
		f.repo.On("FindByID", ctx, "missing").Return(nil, domain.ErrSubscriptionNotFound)

		resp, err := interactor.Execute(ctx, "missing")

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, domain.ErrNotRenewable)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	for _, status := range []domain.SubscriptionStatus{domain.StatusCanceled, domain.StatusPastDue, domain.StatusExpired} {
		t.Run(string(status), func(t *testing.T) {
			f, interactor := newInteractor(now)
			f.repo.On("FindByID", ctx, "sub-123").Return(subscription(status, domain.IntervalMonth, now.AddDate(0, -1, 0), now, false), nil)

			resp, err := interactor.Execute(ctx, "sub-123")

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, domain.ErrInvalidState)
			assert.Empty(t, f.events.Events())
			f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
		})
	}
}

func TestRenewSubscription_GatewayFaultChangesNothing(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	f, interactor := newInteractor(end)
	sub := subscription(domain.StatusActive, domain.IntervalMonth, start, end, false)
	boom := errors.New("gateway timeout")

	f.repo.On("FindByID", ctx, "sub-123").Return(sub, nil)
	f.gateway.On("Charge", ctx, mock.Anything).Return(domain.PaymentResult{}, boom)

	resp, err := interactor.Execute(ctx, "sub-123")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StatusActive, sub.Status())
	assert.Equal(t, end, sub.CurrentPeriod().End)
	assert.Empty(t, f.events.Events())
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRenewSubscription_PersistFaultPublishesNothing(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	f, interactor := newInteractor(end)
	sub := subscription(domain.StatusActive, domain.IntervalMonth, start, end, false)

	f.repo.On("FindByID", ctx, "sub-123").Return(sub, nil)
	f.gateway.On("Charge", ctx, mock.Anything).Return(domain.PaymentResult{Success: true}, nil)
	f.repo.On("Update", ctx, mock.Anything).Return(&spanner.Mutation{}, nil)
	f.repo.On("Apply", ctx, mock.Anything).Return(errors.New("aborted"))

	resp, err := interactor.Execute(ctx, "sub-123")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.Empty(t, f.events.Events())
}
