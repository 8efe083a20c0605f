package subscribers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/mocks"
	"github.com/wuyiadepoju/subscription-billing/internal/eventbus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func canceledEvent() eventbus.Event {
	return eventbus.Event{
		ID:   "evt-1",
		Name: domain.EventSubscriptionCanceled,
		Payload: domain.Snapshot{
			ID:         "sub-1",
			CustomerID: "cust-1",
			Status:     domain.StatusCanceled,
		},
	}
}

func TestCancellationNotifier_SendsNotice(t *testing.T) {
	ctx := context.Background()
	customers := new(mocks.MockCustomerDirectory)
	mailer := new(mocks.MockMailer)
	ada := &domain.Customer{ID: "cust-1", Name: "Ada", Email: "ada@example.com"}

	customers.On("FindByID", ctx, "cust-1").Return(ada, nil)
	mailer.On("SendCancellationNotice", ctx, *ada, canceledEvent().Payload).Return(nil)

	err := NewCancellationNotifier(customers, mailer, zap.NewNop()).Handle(ctx, canceledEvent())

	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestCancellationNotifier_UnknownCustomerIsSkipped(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	customers := new(mocks.MockCustomerDirectory)
	mailer := new(mocks.MockMailer)
	customers.On("FindByID", ctx, "cust-1").Return(nil, domain.ErrCustomerNotFound)

	err := NewCancellationNotifier(customers, mailer, zap.New(core)).Handle(ctx, canceledEvent())

	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("customer not found for cancellation notice").Len())
	mailer.AssertNotCalled(t, "SendCancellationNotice", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancellationNotifier_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup fault", func(t *testing.T) {
		customers := new(mocks.MockCustomerDirectory)
		customers.On("FindByID", ctx, "cust-1").Return(nil, errors.New("timeout"))

		err := NewCancellationNotifier(customers, new(mocks.MockMailer), zap.NewNop()).Handle(ctx, canceledEvent())

		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("mailer fault", func(t *testing.T) {
		customers := new(mocks.MockCustomerDirectory)
		mailer := new(mocks.MockMailer)
		customers.On("FindByID", ctx, "cust-1").Return(&domain.Customer{ID: "cust-1"}, nil)
		mailer.On("SendCancellationNotice", ctx, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		err := NewCancellationNotifier(customers, mailer, zap.NewNop()).Handle(ctx, canceledEvent())

		assert.ErrorContains(t, err, "smtp down")
	})

	t.Run("wrong payload", func(t *testing.T) {
		err := NewCancellationNotifier(new(mocks.MockCustomerDirectory), new(mocks.MockMailer), zap.NewNop()).
			Handle(ctx, eventbus.Event{Name: domain.EventSubscriptionCanceled, Payload: "nope"})

		assert.Error(t, err)
	})
}

func TestCancellationNotifier_FailureNeverReachesPublisher(t *testing.T) {
	customers := new(mocks.MockCustomerDirectory)
	mailer := new(mocks.MockMailer)
	customers.On("FindByID", mock.Anything, "cust-1").Return(&domain.Customer{ID: "cust-1"}, nil)
	mailer.On("SendCancellationNotice", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	bus := eventbus.NewBus(zap.NewNop())
	NewCancellationNotifier(customers, mailer, zap.NewNop()).Register(bus)

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), domain.EventSubscriptionCanceled, canceledEvent().Payload)
		bus.Wait()
	})
	mailer.AssertNumberOfCalls(t, "SendCancellationNotice", 1)
}
