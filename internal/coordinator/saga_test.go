package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/orderpayload"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator/sagalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionID = "sess-1"

type fixture struct {
	storefront *fakeStorefront
	gateway    *fakeGateway
	carts      *fakeCarts
	log        *memoryLog
	seq        *Sequencer
}

func newFixture(lines ...entity.CartLine) *fixture {
	if len(lines) == 0 {
		lines = []entity.CartLine{cartLine("A", "10", 2)}
	}
	f := &fixture{
		storefront: &fakeStorefront{},
		gateway:    &fakeGateway{},
		carts:      newFakeCarts(sessionID, lines...),
		log:        &memoryLog{},
	}
	f.seq = NewSequencer(f.storefront, f.gateway, f.carts, f.log, Config{
		BestEffortTimeout: time.Second,
	})
	return f
}

func cartLine(productID, price string, qty int) entity.CartLine {
	p := decimal.RequireFromString(price)
	return entity.CartLine{ID: "line-" + productID, ProductID: productID, Quantity: qty, Price: &p}
}

func validForm(method entity.PaymentMethod) entity.CheckoutForm {
	return entity.CheckoutForm{
		Billing: entity.Address{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "7700 900123",
			Line1: "1 High St", City: "London", PostalCode: "AB1 2CD", Country: "GB",
		},
		ShippingSameAsBilling: true,
		DeliveryMethod:        entity.HomeDelivery,
		PaymentMethod:         method,
		AcceptTerms:           true,
	}
}

func cardRequest() Request {
	return Request{SessionID: sessionID, Form: validForm(entity.PaymentCard), PaymentMethodID: "pm_card_visa"}
}

func TestSubmit_CardHappyPath(t *testing.T) {
	f := newFixture()

	res, err := f.seq.Submit(context.Background(), cardRequest())

	require.NoError(t, err)
	assert.Equal(t, StateFinalized, res.State)
	assert.Equal(t, "ord-1", res.OrderID)
	assert.Equal(t, "/order-success/ord-1", res.Redirect)
	assert.Equal(t, "24.49", res.Summary.TotalAmount.String())
	assert.False(t, res.CartPreserved)

	require.Len(t, f.storefront.intents, 1)
	intent := f.storefront.intents[0]
	assert.Equal(t, "ord-1", intent.OrderID)
	assert.Equal(t, "24.49", intent.Amount.String(), "intent must use the server total")
	assert.Equal(t, "gbp", intent.Currency)
	assert.Equal(t, res.AttemptID, intent.Metadata["attempt_id"])

	require.Len(t, f.gateway.calls, 1)
	assert.Equal(t, "pi_1_secret_abc", f.gateway.calls[0].ClientSecret)
	assert.Equal(t, "pm_card_visa", f.gateway.calls[0].PaymentMethodID)
	assert.Equal(t, []string{"pi_1"}, f.storefront.confirms)
	assert.Equal(t, 1, f.carts.cleared)

	assert.Equal(t, []string{
		"Validating", "OrderCreated", "IntentCreated", "CardConfirmed", "ServerConfirmed", "Finalized",
	}, f.log.states())
}

func TestSubmit_IntentFailureSkipsGateway(t *testing.T) {
	f := newFixture()
	f.storefront.intentErr = errUpstream

	res, err := f.seq.Submit(context.Background(), cardRequest())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "Payment intent creation failed", stepErr.Message)
	assert.Equal(t, StateIntentCreated, stepErr.Step)
	assert.ErrorIs(t, err, errUpstream)

	assert.Empty(t, f.gateway.calls)
	assert.Empty(t, f.storefront.confirms)
	assert.Equal(t, StateErrored, res.State)
	assert.Equal(t, "ord-1", res.OrderID)
	assert.Zero(t, f.carts.cleared)

	orphans, _ := f.log.ListOrphaned(context.Background(), 10)
	require.Len(t, orphans, 1)
	assert.Equal(t, "ord-1", orphans[0].OrderID)
}

func TestSubmit_IntentMissingSecret(t *testing.T) {
	f := newFixture()
	seq := NewSequencer(&noSecretStorefront{f.storefront}, f.gateway, f.carts, f.log, Config{})

	_, err := seq.Submit(context.Background(), cardRequest())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "Payment intent creation failed", stepErr.Message)
	assert.Empty(t, f.gateway.calls)
}

type noSecretStorefront struct{ *fakeStorefront }

func (n *noSecretStorefront) CreateIntent(context.Context, entity.PaymentIntentRequest) (*entity.PaymentIntent, error) {
	return &entity.PaymentIntent{PaymentIntentID: "pi_1"}, nil
}

func TestSubmit_OrderFailureSkipsPayment(t *testing.T) {
	f := newFixture()
	f.storefront.orderErr = errUpstream

	res, err := f.seq.Submit(context.Background(), cardRequest())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "Order creation failed", stepErr.Message)
	assert.Empty(t, f.storefront.intents)
	assert.Empty(t, f.gateway.calls)
	assert.Empty(t, res.OrderID)

	orphans, _ := f.log.ListOrphaned(context.Background(), 10)
	assert.Empty(t, orphans)
}

func TestSubmit_CardDeclined(t *testing.T) {
	f := newFixture()
	f.gateway.err = &ports.DeclineError{Code: "card_declined", Message: "Your card was declined."}

	res, err := f.seq.Submit(context.Background(), cardRequest())

	var decline *ports.DeclineError
	require.ErrorAs(t, err, &decline)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "Your card was declined.", stepErr.Message)

	assert.Equal(t, StateIdle, res.State)
	assert.Empty(t, f.storefront.confirms)
	assert.Zero(t, f.carts.cleared)

	latest, err := f.log.GetLatest(context.Background(), res.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusOrphaned, latest.Status)
	assert.Equal(t, "pi_1", latest.PaymentIntentID)
}

func TestSubmit_RetryAfterDeclineCreatesNewOrder(t *testing.T) {
	f := newFixture()
	f.gateway.err = &ports.DeclineError{Message: "Your card was declined."}

	first, err := f.seq.Submit(context.Background(), cardRequest())
	require.Error(t, err)

	f.gateway.err = nil
	second, err := f.seq.Submit(context.Background(), cardRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.AttemptID, second.AttemptID)
	assert.Len(t, f.storefront.orders, 2)
}

func TestSubmit_ServerConfirmFailureStillFinalizes(t *testing.T) {
	f := newFixture()
	f.storefront.confirmErr = errUpstream

	res, err := f.seq.Submit(context.Background(), cardRequest())

	require.NoError(t, err)
	assert.Equal(t, StateFinalized, res.State)
	assert.Equal(t, "/order-success/ord-1", res.Redirect)
	assert.NotContains(t, f.log.states(), "ServerConfirmed")
	assert.Equal(t, 1, f.carts.cleared)
}

func TestSubmit_CODPath(t *testing.T) {
	f := newFixture()
	req := Request{SessionID: sessionID, Form: validForm(entity.PaymentCOD)}

	res, err := f.seq.Submit(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, StateFinalized, res.State)
	require.Len(t, f.storefront.orders, 1)
	assert.True(t, f.storefront.orders[0].IsCashOnDelivery)
	assert.Empty(t, f.storefront.intents)
	assert.Empty(t, f.gateway.calls)
	assert.Empty(t, f.storefront.confirms)
	assert.Equal(t, []string{"Validating", "CODPlacing", "Finalized"}, f.log.states())
}

func TestSubmit_CODClickAndCollectWithoutAddress(t *testing.T) {
	f := newFixture()
	form := validForm(entity.PaymentCOD)
	form.DeliveryMethod = entity.ClickAndCollect
	form.Billing.Line1 = ""
	form.Billing.PostalCode = ""

	_, err := f.seq.Submit(context.Background(), Request{SessionID: sessionID, Form: form})

	require.NoError(t, err)
	assert.Equal(t, entity.ClickAndCollect, f.storefront.orders[0].DeliveryMethod)
}

func TestSubmit_ValidationFailureMakesNoRemoteCalls(t *testing.T) {
	f := newFixture()
	form := validForm(entity.PaymentCard)
	form.Billing.Email = "not-an-email"

	res, err := f.seq.Submit(context.Background(), Request{SessionID: sessionID, Form: form, PaymentMethodID: "pm"})

	var verr *orderpayload.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Equal(t, StateErrored, res.State)
	assert.Empty(t, f.storefront.orders)
	assert.Empty(t, f.storefront.subscriptions)
}

func TestSubmit_CardWithoutPaymentMethod(t *testing.T) {
	f := newFixture()
	req := cardRequest()
	req.PaymentMethodID = ""

	_, err := f.seq.Submit(context.Background(), req)

	assert.ErrorIs(t, err, ErrMissingPaymentMethod)
	assert.Empty(t, f.storefront.orders)
}

func TestSubmit_EmptyCart(t *testing.T) {
	f := newFixture()
	f.carts.lines[sessionID] = nil

	_, err := f.seq.Submit(context.Background(), cardRequest())

	assert.ErrorIs(t, err, ErrEmptyCheckout)
	assert.Empty(t, f.storefront.orders)
}

func TestSubmit_SubscriptionFailureCreatesNoOrder(t *testing.T) {
	sub := cartLine("S", "9.99", 1)
	sub.Type = entity.LineTypeSubscription
	sub.Subscription = &entity.SubscriptionTerms{Frequency: "month", IntervalCount: 1}
	f := newFixture(cartLine("A", "10", 1), sub)
	f.storefront.subscriptionErr = errUpstream

	_, err := f.seq.Submit(context.Background(), cardRequest())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "Subscription creation failed", stepErr.Message)
	assert.Len(t, f.storefront.subscriptions, 1)
	assert.Empty(t, f.storefront.orders)
}

func TestSubmit_SubscriptionIDAttachedToOrder(t *testing.T) {
	sub := cartLine("S", "9.99", 1)
	sub.Type = entity.LineTypeSubscription
	f := newFixture(cartLine("A", "10", 1), sub)

	_, err := f.seq.Submit(context.Background(), cardRequest())

	require.NoError(t, err)
	items := f.storefront.orders[0].Items
	require.Len(t, items, 2)
	assert.Empty(t, items[0].SubscriptionID)
	assert.Equal(t, "sub-S", items[1].SubscriptionID)
}

func TestSubmit_BuyNowRestoresCart(t *testing.T) {
	cart := []entity.CartLine{cartLine("A", "10", 1), cartLine("B", "5", 1), cartLine("C", "1", 3)}
	f := newFixture(cart...)
	buyNow := entity.NewBuyNowContext(&entity.CartLine{ID: "bn", ProductID: "Z", Quantity: 1, Price: cart[0].Price})
	req := cardRequest()
	req.BuyNow = buyNow

	res, err := f.seq.Submit(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, res.CartPreserved)
	require.Len(t, f.storefront.orders[0].Items, 1)
	assert.Equal(t, "Z", f.storefront.orders[0].Items[0].ProductID)

	assert.Zero(t, f.carts.cleared)
	assert.Equal(t, 1, f.carts.restored)
	assert.True(t, f.carts.preserved[sessionID])
	assert.Equal(t, cart, f.carts.lines[sessionID])
	assert.False(t, buyNow.Active())
}

func TestSubmit_BuyNowKeptWhenAttemptFails(t *testing.T) {
	f := newFixture()
	f.storefront.orderErr = errUpstream
	buyNow := entity.NewBuyNowContext(&entity.CartLine{ProductID: "Z", Quantity: 1})
	req := cardRequest()
	req.BuyNow = buyNow

	_, err := f.seq.Submit(context.Background(), req)

	require.Error(t, err)
	assert.True(t, buyNow.Active())
	assert.Zero(t, f.carts.restored)
}

func TestSubmit_NewsletterIsBestEffort(t *testing.T) {
	f := newFixture()
	f.storefront.newsletterErr = errUpstream
	req := cardRequest()
	req.Form.SubscribeNewsletter = true
	req.ClientIP = "203.0.113.7"

	res, err := f.seq.Submit(context.Background(), req)
	f.seq.Drain()

	require.NoError(t, err)
	assert.Equal(t, StateFinalized, res.State)
	require.Len(t, f.storefront.newsletters, 1)
	assert.Equal(t, "ada@example.com", f.storefront.newsletters[0].Email)
	assert.Equal(t, "checkout", f.storefront.newsletters[0].Source)
	assert.Equal(t, "203.0.113.7", f.storefront.newsletters[0].IPAddress)
}

func TestSubmit_NoNewsletterWithoutConsent(t *testing.T) {
	f := newFixture()

	_, err := f.seq.Submit(context.Background(), cardRequest())
	f.seq.Drain()

	require.NoError(t, err)
	assert.Empty(t, f.storefront.newsletters)
}

func TestSubmit_ConcurrentSubmissionRejected(t *testing.T) {
	f := newFixture()
	f.storefront.blockOrder = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = f.seq.Submit(context.Background(), cardRequest())
	}()

	require.Eventually(t, func() bool {
		_, busy := f.seq.inflight.Load(sessionID)
		return busy
	}, time.Second, time.Millisecond)

	_, err := f.seq.Submit(context.Background(), cardRequest())
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(f.storefront.blockOrder)
	wg.Wait()
	require.NoError(t, firstErr)

	f.carts.lines[sessionID] = []entity.CartLine{cartLine("A", "10", 1)}
	_, err = f.seq.Submit(context.Background(), cardRequest())
	assert.NoError(t, err, "guard must be released after the first attempt")
}
