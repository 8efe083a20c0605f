package renew_due_subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/mocks"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/renew_subscription"
	"go.uber.org/zap"
)

type mockRenewer struct {
	mock.Mock
}

func (m *mockRenewer) Execute(ctx context.Context, subscriptionID string) (*renew_subscription.Response, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*renew_subscription.Response), args.Error(1)
}

func withStatus(id string, status domain.SubscriptionStatus) *domain.Subscription {
	return domain.ReconstructFromPersistence(domain.Snapshot{ID: id, Status: status})
}

func TestRenewDueSubscriptions_Summary(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mockRepo := new(mocks.MockRepository)
	renewer := new(mockRenewer)
	mockRepo.On("FindExpiringBetween", ctx, from, to).Return([]*domain.Subscription{
		withStatus("renews", domain.StatusActive),
		withStatus("declines", domain.StatusActive),
		withStatus("pending-cancel", domain.StatusActive),
		withStatus("ends", domain.StatusActive),
		withStatus("raced", domain.StatusActive),
		withStatus("faults", domain.StatusActive),
		withStatus("already-past-due", domain.StatusPastDue),
	}, nil)

	renewer.On("Execute", ctx, "renews").Return(&renew_subscription.Response{Outcome: renew_subscription.OutcomeRenewed}, nil)
	renewer.On("Execute", ctx, "declines").Return(&renew_subscription.Response{Outcome: renew_subscription.OutcomePastDue}, nil)
	renewer.On("Execute", ctx, "pending-cancel").Return(&renew_subscription.Response{Outcome: renew_subscription.OutcomeDeferred}, nil)
	renewer.On("Execute", ctx, "ends").Return(&renew_subscription.Response{Outcome: renew_subscription.OutcomeEnded}, nil)
	renewer.On("Execute", ctx, "raced").Return(nil, domain.ErrNotRenewable)
	renewer.On("Execute", ctx, "faults").Return(nil, domain.NewDependencyError("gateway.Charge", errors.New("timeout")))

	summary, err := NewInteractor(mockRepo, renewer, zap.NewNop()).Execute(ctx, Request{From: from, To: to})

	require.NoError(t, err)
	assert.Equal(t, Summary{Renewed: 1, Deferred: 1, Ended: 1, PastDue: 1, Skipped: 2, Failed: 1}, summary)
	renewer.AssertNotCalled(t, "Execute", ctx, "already-past-due")
	renewer.AssertExpectations(t)
}

func TestRenewDueSubscriptions_QueryFault(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	mockRepo := new(mocks.MockRepository)
	mockRepo.On("FindExpiringBetween", ctx, from, from).Return(nil, errors.New("unavailable"))

	summary, err := NewInteractor(mockRepo, new(mockRenewer), zap.NewNop()).Execute(ctx, Request{From: from, To: from})

	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.Equal(t, Summary{}, summary)
}

func TestRenewDueSubscriptions_InvertedWindow(t *testing.T) {
	from := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	mockRepo := new(mocks.MockRepository)

	_, err := NewInteractor(mockRepo, new(mockRenewer), zap.NewNop()).Execute(context.Background(), Request{From: from, To: from.Add(-time.Second)})

	assert.ErrorIs(t, err, domain.ErrValidation)
	mockRepo.AssertNotCalled(t, "FindExpiringBetween", mock.Anything, mock.Anything, mock.Anything)
}

func TestRenewDueSubscriptions_StopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	from := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	mockRepo := new(mocks.MockRepository)
	renewer := new(mockRenewer)
	mockRepo.On("FindExpiringBetween", ctx, from, from).Return([]*domain.Subscription{withStatus("a", domain.StatusActive)}, nil)

	_, err := NewInteractor(mockRepo, renewer, zap.NewNop()).Execute(ctx, Request{From: from, To: from})

	assert.ErrorIs(t, err, context.Canceled)
	renewer.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
