package contracts

import (
	"context"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
)

// Mailer delivers customer notifications
type Mailer interface {
	SendCancellationNotice(ctx context.Context, customer domain.Customer, sub domain.Snapshot) error
}
