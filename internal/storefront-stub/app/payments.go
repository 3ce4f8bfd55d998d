package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	errIntentNotFound = errors.New("payment intent not found")
	errAmountLimit    = errors.New("amount exceeds the payment limit")
)

type intent struct {
	entity.PaymentIntent
	OrderID string
	Amount  decimal.Decimal
}

type paymentStore struct {
	mu      sync.Mutex
	intents map[string]*intent
	limit   decimal.Decimal
}

func newPaymentStore(limit decimal.Decimal) *paymentStore {
	return &paymentStore{intents: make(map[string]*intent), limit: limit}
}

func (s *paymentStore) createIntent(req entity.PaymentIntentRequest) (*entity.PaymentIntent, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", req.Amount)
	}
	if s.limit.IsPositive() && req.Amount.GreaterThan(s.limit) {
		return nil, errAmountLimit
	}

	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	in := &intent{
		PaymentIntent: entity.PaymentIntent{
			PaymentIntentID: id,
			ClientSecret:    id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		},
		OrderID: req.OrderID,
		Amount:  req.Amount,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[id] = in
	return &in.PaymentIntent, nil
}

// orderFor returns the order bound to a payment intent.
func (s *paymentStore) orderFor(paymentIntentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[paymentIntentID]
	if !ok {
		return "", errIntentNotFound
	}
	return in.OrderID, nil
}
