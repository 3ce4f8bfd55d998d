package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/paymentmethod"
)

var _ ports.PaymentGateway = (*Stripe)(nil)

const testCardPrefix = "pm_card_"

type Stripe struct {
	intents paymentintent.Client
	methods paymentmethod.Client
}

func NewStripe(secretKey string) *Stripe {
	return newStripe(stripe.GetBackend(stripe.APIBackend), secretKey)
}

func newStripe(backend stripe.Backend, secretKey string) *Stripe {
	return &Stripe{
		intents: paymentintent.Client{B: backend, Key: secretKey},
		methods: paymentmethod.Client{B: backend, Key: secretKey},
	}
}

// ConfirmCard attaches the billing address to the payment method and then
// confirms the intent behind the client secret with it. Card errors come
// back as *ports.DeclineError carrying Stripe's customer-facing message.
func (s *Stripe) ConfirmCard(ctx context.Context, req ports.CardConfirmation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	intentID, err := intentIDFromSecret(req.ClientSecret)
	if err != nil {
		return "", err
	}

	// Test-mode aliases such as pm_card_visa are not stored objects and
	// cannot be updated.
	if !strings.HasPrefix(req.PaymentMethodID, testCardPrefix) {
		update := &stripe.PaymentMethodParams{BillingDetails: billingDetails(req.Billing)}
		update.Context = ctx
		if _, err := s.methods.Update(req.PaymentMethodID, update); err != nil {
			return "", declineOr(err, "stripe: set billing details on "+req.PaymentMethodID)
		}
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(req.PaymentMethodID),
	}
	params.Context = ctx

	pi, err := s.intents.Confirm(intentID, params)
	if err != nil {
		return "", declineOr(err, "stripe: confirm "+intentID)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing:
		return pi.ID, nil
	case stripe.PaymentIntentStatusRequiresAction:
		return "", &ports.DeclineError{Code: "authentication_required", Message: "Your card requires additional authentication."}
	default:
		return "", &ports.DeclineError{Code: string(pi.Status), Message: "Your payment could not be completed."}
	}
}

func declineOr(err error, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
		return &ports.DeclineError{Code: string(stripeErr.Code), Message: stripeErr.Msg}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// billingDetails leaves out empty fields so Stripe keeps what it already has.
func billingDetails(a entity.Address) *stripe.PaymentMethodBillingDetailsParams {
	return &stripe.PaymentMethodBillingDetailsParams{
		Address: &stripe.AddressParams{
			Line1:      optional(a.Line1),
			Line2:      optional(a.Line2),
			City:       optional(a.City),
			State:      optional(a.Province),
			PostalCode: optional(a.PostalCode),
			Country:    optional(a.Country),
		},
		Email: optional(a.Email),
		Name:  optional(strings.TrimSpace(a.FirstName + " " + a.LastName)),
		Phone: optional(a.Phone),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return stripe.String(s)
}
