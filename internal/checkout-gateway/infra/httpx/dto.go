package httpx

import (
	"time"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/pricing"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator/sagalog"
)

// CheckoutRequest is the submitted form. PaymentMethodID is the tokenized
// card and is ignored for cash on delivery.
type CheckoutRequest struct {
	entity.CheckoutForm
	PaymentMethodID string `json:"paymentMethodId,omitempty"`
}

type CartResponse struct {
	Items     []entity.CartLine `json:"items"`
	Preserved bool              `json:"preserved"`
	BuyNow    *entity.CartLine  `json:"buyNow,omitempty"`
}

type QuoteResponse struct {
	Items  []entity.CartLine `json:"items"`
	Totals pricing.Totals    `json:"totals"`
	BuyNow bool              `json:"buyNow"`
}

type AttemptResponse struct {
	AttemptID       string         `json:"attemptId"`
	SessionID       string         `json:"sessionId,omitempty"`
	Status          sagalog.Status `json:"status"`
	State           string         `json:"state"`
	PaymentMethod   string         `json:"paymentMethod,omitempty"`
	OrderID         string         `json:"orderId,omitempty"`
	PaymentIntentID string         `json:"paymentIntentId,omitempty"`
	Errors          []string       `json:"errors,omitempty"`
	TraceID         string         `json:"traceId,omitempty"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	AttemptID string            `json:"attemptId,omitempty"`
	State     string            `json:"state,omitempty"`
	OrderID   string            `json:"orderId,omitempty"`
}
