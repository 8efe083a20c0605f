package get_subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/mocks"
	"go.uber.org/zap"
)

func TestGetSubscription(t *testing.T) {
	ctx := context.Background()
	stored := domain.ReconstructFromPersistence(domain.Snapshot{ID: "sub-1", Status: domain.StatusActive})
	boom := errors.New("deadline exceeded")

	mockRepo := new(mocks.MockRepository)
	mockRepo.On("FindByID", ctx, "sub-1").Return(stored, nil)
	mockRepo.On("FindByID", ctx, "missing").Return(nil, domain.ErrSubscriptionNotFound)
	mockRepo.On("FindByID", ctx, "broken").Return(nil, boom)
	interactor := NewInteractor(mockRepo, zap.NewNop())

	t.Run("found", func(t *testing.T) {
		sub, err := interactor.Execute(ctx, "sub-1")
		require.NoError(t, err)
		assert.Same(t, stored, sub)
	})

	t.Run("missing is absent, not an error", func(t *testing.T) {
		sub, err := interactor.Execute(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, sub)
	})

	t.Run("repository fault", func(t *testing.T) {
		sub, err := interactor.Execute(ctx, "broken")
		assert.Nil(t, sub)
		assert.ErrorIs(t, err, domain.ErrDependency)
		assert.ErrorIs(t, err, boom)
	})
}
