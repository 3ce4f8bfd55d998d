package ports

import (
	"context"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
)

// OrderAPI creates orders on the remote storefront. The returned order carries
// the authoritative totals.
type OrderAPI interface {
	CreateOrder(ctx context.Context, payload entity.OrderPayload) (*entity.CreatedOrder, error)
}

type PaymentAPI interface {
	CreateIntent(ctx context.Context, req entity.PaymentIntentRequest) (*entity.PaymentIntent, error)
	// ConfirmPayment tells the storefront that the gateway accepted the
	// payment so it can mark the order paid.
	ConfirmPayment(ctx context.Context, paymentIntentID string) error
}

type SubscriptionAPI interface {
	CreateSubscription(ctx context.Context, req entity.SubscriptionRequest) (string, error)
}

type NewsletterAPI interface {
	Subscribe(ctx context.Context, sub entity.NewsletterSubscription) error
}

// Storefront groups every remote call the sequencer makes.
type Storefront interface {
	OrderAPI
	PaymentAPI
	SubscriptionAPI
	NewsletterAPI
}
