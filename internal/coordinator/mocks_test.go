package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator/sagalog"
	"github.com/shopspring/decimal"
)

type fakeStorefront struct {
	mu sync.Mutex

	orders        []entity.OrderPayload
	intents       []entity.PaymentIntentRequest
	confirms      []string
	subscriptions []entity.SubscriptionRequest
	newsletters   []entity.NewsletterSubscription

	orderErr        error
	intentErr       error
	confirmErr      error
	subscriptionErr error
	newsletterErr   error

	// blockOrder, when set, is received from before CreateOrder returns.
	blockOrder chan struct{}
}

func (f *fakeStorefront) CreateOrder(_ context.Context, payload entity.OrderPayload) (*entity.CreatedOrder, error) {
	if f.blockOrder != nil {
		<-f.blockOrder
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, payload)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &entity.CreatedOrder{
		ID:            "ord-1",
		CustomerEmail: payload.CustomerEmail,
		OrderSummary: entity.OrderSummary{
			SubtotalAmount: decimal.NewFromInt(20),
			TotalAmount:    decimal.RequireFromString("24.49"),
		},
	}, nil
}

func (f *fakeStorefront) CreateIntent(_ context.Context, req entity.PaymentIntentRequest) (*entity.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents = append(f.intents, req)
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	return &entity.PaymentIntent{ClientSecret: "pi_1_secret_abc", PaymentIntentID: "pi_1"}, nil
}

func (f *fakeStorefront) ConfirmPayment(_ context.Context, paymentIntentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirms = append(f.confirms, paymentIntentID)
	return f.confirmErr
}

func (f *fakeStorefront) CreateSubscription(_ context.Context, req entity.SubscriptionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscriptions = append(f.subscriptions, req)
	if f.subscriptionErr != nil {
		return "", f.subscriptionErr
	}
	return "sub-" + req.ProductID, nil
}

func (f *fakeStorefront) Subscribe(_ context.Context, sub entity.NewsletterSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newsletters = append(f.newsletters, sub)
	return f.newsletterErr
}

type fakeGateway struct {
	calls []ports.CardConfirmation
	err   error
}

func (g *fakeGateway) ConfirmCard(_ context.Context, req ports.CardConfirmation) (string, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return "", g.err
	}
	return "pi_1", nil
}

type fakeCarts struct {
	mu        sync.Mutex
	lines     map[string][]entity.CartLine
	preserved map[string]bool
	cleared   int
	restored  int
}

func newFakeCarts(sessionID string, lines ...entity.CartLine) *fakeCarts {
	return &fakeCarts{
		lines:     map[string][]entity.CartLine{sessionID: lines},
		preserved: map[string]bool{},
	}
}

func (c *fakeCarts) Read(_ context.Context, sessionID string) ([]entity.CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.CartLine(nil), c.lines[sessionID]...), nil
}

func (c *fakeCarts) Clear(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	delete(c.lines, sessionID)
	return nil
}

func (c *fakeCarts) Restore(_ context.Context, sessionID string, lines []entity.CartLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restored++
	c.lines[sessionID] = lines
	return nil
}

func (c *fakeCarts) MarkPreserved(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preserved[sessionID] = true
	return nil
}

type memoryLog struct {
	mu      sync.Mutex
	entries []sagalog.Entry
}

func (m *memoryLog) Save(_ context.Context, entry *sagalog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryLog) GetLatest(_ context.Context, attemptID string) (*sagalog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].AttemptID == attemptID {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, sagalog.ErrNotFound
}

func (m *memoryLog) ListOrphaned(_ context.Context, _ int) ([]sagalog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sagalog.Entry
	for _, e := range m.entries {
		if e.Status == sagalog.StatusOrphaned {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryLog) states() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.Status != sagalog.StatusOrphaned {
			out = append(out, e.State)
		}
	}
	return out
}

var errUpstream = errors.New("upstream returned 500")
