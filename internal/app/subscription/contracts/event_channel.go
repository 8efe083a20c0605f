package contracts

import "context"

// EventChannel publishes lifecycle events. Publishing never fails from the
// caller's point of view and does not wait for subscribers.
type EventChannel interface {
	Publish(ctx context.Context, name string, payload any)
}
