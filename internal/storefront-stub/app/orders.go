package app

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending = "PENDING"
	OrderStatusPaid    = "PAID"
)

var (
	errOrderNotFound = errors.New("order not found")
	errNoItems       = errors.New("order has no items")
	errBadQuantity   = errors.New("item quantity must be at least 1")
)

type Order struct {
	entity.CreatedOrder
	Status    string              `json:"status"`
	Payload   entity.OrderPayload `json:"payload"`
	CreatedAt time.Time           `json:"createdAt"`
}

type orderStore struct {
	mu           sync.RWMutex
	orders       map[string]*Order
	deliveryCost decimal.Decimal
}

func newOrderStore(deliveryCost decimal.Decimal) *orderStore {
	return &orderStore{orders: make(map[string]*Order), deliveryCost: deliveryCost}
}

// create prices the order the way the storefront would: unit prices as sent,
// a flat delivery cost for home delivery, no tax.
func (s *orderStore) create(p entity.OrderPayload) (*Order, error) {
	if len(p.Items) == 0 {
		return nil, errNoItems
	}
	subtotal := decimal.Zero
	for _, it := range p.Items {
		if it.Quantity < 1 {
			return nil, errBadQuantity
		}
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	shipping := decimal.Zero
	if p.DeliveryMethod == entity.HomeDelivery {
		shipping = s.deliveryCost
	}

	o := &Order{
		CreatedOrder: entity.CreatedOrder{
			ID:            uuid.NewString(),
			CustomerEmail: p.CustomerEmail,
			OrderSummary: entity.OrderSummary{
				SubtotalAmount: subtotal,
				ShippingAmount: shipping,
				TotalAmount:    subtotal.Add(shipping),
			},
		},
		Status:    OrderStatusPending,
		Payload:   p,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return o, nil
}

func (s *orderStore) get(id string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, errOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *orderStore) markPaid(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return errOrderNotFound
	}
	o.Status = OrderStatusPaid
	return nil
}
