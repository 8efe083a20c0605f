// Package mocks provides testify mocks of the subscription ports.
package mocks

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/mock"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
)

var (
	_ contracts.SubscriptionRepository = (*MockRepository)(nil)
	_ contracts.CustomerLookup         = (*MockCustomerLookup)(nil)
	_ contracts.CustomerDirectory      = (*MockCustomerDirectory)(nil)
	_ contracts.PaymentGateway         = (*MockPaymentGateway)(nil)
	_ contracts.Mailer                 = (*MockMailer)(nil)
	_ contracts.EventChannel           = (*RecordingEventChannel)(nil)
)

// MockRepository is a mock implementation of SubscriptionRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockRepository) FindByCustomerID(ctx context.Context, customerID string) ([]*domain.Subscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *MockRepository) FindByStatus(ctx context.Context, status domain.SubscriptionStatus) ([]*domain.Subscription, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *MockRepository) FindExpiringBetween(ctx context.Context, start, end time.Time) ([]*domain.Subscription, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, sub *domain.Subscription) (*spanner.Mutation, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spanner.Mutation), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, sub *domain.Subscription) (*spanner.Mutation, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spanner.Mutation), args.Error(1)
}

func (m *MockRepository) Apply(ctx context.Context, mutations ...*spanner.Mutation) error {
	// Convert variadic to slice for mock
	args := m.Called(ctx, mutations)
	return args.Error(0)
}

// MockCustomerLookup is a mock implementation of CustomerLookup
type MockCustomerLookup struct {
	mock.Mock
}

func (m *MockCustomerLookup) Exists(ctx context.Context, customerID string) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}

// MockCustomerDirectory is a mock implementation of CustomerDirectory
type MockCustomerDirectory struct {
	mock.Mock
}

func (m *MockCustomerDirectory) FindByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Charge(ctx context.Context, req domain.ChargeRequest) (domain.PaymentResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.PaymentResult), args.Error(1)
}

// MockMailer is a mock implementation of Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendCancellationNotice(ctx context.Context, customer domain.Customer, sub domain.Snapshot) error {
	args := m.Called(ctx, customer, sub)
	return args.Error(0)
}

// PublishedEvent is one call recorded by RecordingEventChannel.
type PublishedEvent struct {
	Name    string
	Payload any
}

// RecordingEventChannel captures published events in order.
type RecordingEventChannel struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func (r *RecordingEventChannel) Publish(_ context.Context, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, PublishedEvent{Name: name, Payload: payload})
}

// Events returns a copy of everything published so far.
func (r *RecordingEventChannel) Events() []PublishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PublishedEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the published event names in order.
func (r *RecordingEventChannel) Names() []string {
	events := r.Events()
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	return names
}
