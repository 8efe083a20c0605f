package contracts

import (
	"context"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
)

// PaymentGateway charges a customer for one interval of a plan.
//
// A declined charge is not an error: it is reported with Success false and
// a reason in PaymentResult.Error. A returned error means the gateway could
// not be reached or answered unexpectedly.
type PaymentGateway interface {
	Charge(ctx context.Context, req domain.ChargeRequest) (domain.PaymentResult, error)
}
