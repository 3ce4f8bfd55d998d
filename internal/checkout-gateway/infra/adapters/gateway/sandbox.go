package gateway

import (
	"context"
	"log/slog"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
)

var _ ports.PaymentGateway = (*Sandbox)(nil)

type sandboxOutcome struct {
	code    string
	message string
}

// sandboxCards mirrors the behaviour of Stripe's test payment methods.
var sandboxCards = map[string]*sandboxOutcome{
	"pm_card_visa":                            nil,
	"pm_card_mastercard":                      nil,
	"pm_card_amex":                            nil,
	"pm_card_chargeDeclined":                  {"card_declined", "Your card was declined."},
	"pm_card_chargeDeclinedInsufficientFunds": {"card_declined", "Your card has insufficient funds."},
	"pm_card_chargeDeclinedExpiredCard":       {"expired_card", "Your card has expired."},
	"pm_card_chargeDeclinedIncorrectCvc":      {"incorrect_cvc", "Your card's security code is incorrect."},
}

// Sandbox is an in-process gateway for local runs without Stripe
// credentials. It is deterministic: the outcome depends only on the payment
// method id.
type Sandbox struct{}

func NewSandbox() *Sandbox {
	return &Sandbox{}
}

func (Sandbox) ConfirmCard(ctx context.Context, req ports.CardConfirmation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	intentID, err := intentIDFromSecret(req.ClientSecret)
	if err != nil {
		return "", err
	}

	outcome, known := sandboxCards[req.PaymentMethodID]
	if !known {
		return "", &ports.DeclineError{Code: "resource_missing", Message: "Your card number is invalid."}
	}
	if outcome != nil {
		slog.InfoContext(ctx, "sandbox card declined", "payment_intent_id", intentID, "code", outcome.code)
		return "", &ports.DeclineError{Code: outcome.code, Message: outcome.message}
	}
	return intentID, nil
}
