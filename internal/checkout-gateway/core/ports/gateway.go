package ports

import (
	"context"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
)

type CardConfirmation struct {
	ClientSecret    string
	PaymentMethodID string
	Billing         entity.Address
}

// PaymentGateway confirms a card payment against a payment intent. A declined
// card is reported as *DeclineError; any other error is a transport failure.
type PaymentGateway interface {
	ConfirmCard(ctx context.Context, req CardConfirmation) (paymentIntentID string, err error)
}

// DeclineError carries the gateway's message, shown to the customer as is.
type DeclineError struct {
	Code    string
	Message string
}

func (e *DeclineError) Error() string {
	return e.Message
}
