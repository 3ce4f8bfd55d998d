package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/orderpayload"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/pricing"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCurrency          = "gbp"
	defaultNewsletterSource  = "checkout"
	defaultBestEffortTimeout = 10 * time.Second
)

type Config struct {
	Currency          string
	PhonePrefix       string
	NewsletterSource  string
	BestEffortTimeout time.Duration
}

// Sequencer drives one checkout submission through the state machine in
// state.go. Steps run strictly in order and none is retried; a failure ends
// the attempt and the customer starts again from the top.
type Sequencer struct {
	storefront ports.Storefront
	gateway    ports.PaymentGateway
	carts      ports.CartStore
	log        sagalog.Repository
	builder    *orderpayload.Builder
	cfg        Config
	tracer     trace.Tracer

	inflight sync.Map
	bg       sync.WaitGroup
}

func NewSequencer(
	storefront ports.Storefront,
	gateway ports.PaymentGateway,
	carts ports.CartStore,
	log sagalog.Repository,
	cfg Config,
) *Sequencer {
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if cfg.NewsletterSource == "" {
		cfg.NewsletterSource = defaultNewsletterSource
	}
	if cfg.BestEffortTimeout <= 0 {
		cfg.BestEffortTimeout = defaultBestEffortTimeout
	}
	return &Sequencer{
		storefront: storefront,
		gateway:    gateway,
		carts:      carts,
		log:        log,
		builder:    orderpayload.NewBuilder(cfg.PhonePrefix),
		cfg:        cfg,
		tracer:     otel.Tracer("checkout-sequencer"),
	}
}

type Request struct {
	SessionID string
	Form      entity.CheckoutForm
	// PaymentMethodID is the tokenized card, required for card payments.
	PaymentMethodID string
	// BuyNow, when it holds a line, replaces the cart as the snapshot.
	BuyNow   *entity.BuyNowContext
	ClientIP string
}

type Result struct {
	AttemptID     string               `json:"attemptId"`
	State         State                `json:"state"`
	OrderID       string               `json:"orderId,omitempty"`
	Summary       *entity.OrderSummary `json:"summary,omitempty"`
	Totals        *pricing.Totals      `json:"totals,omitempty"`
	Redirect      string               `json:"redirect,omitempty"`
	CartPreserved bool                 `json:"cartPreserved"`
}

// Submit runs one checkout attempt. The returned Result is non-nil whenever
// an attempt was started, including failed ones, so callers can report the
// attempt id alongside the error.
func (s *Sequencer) Submit(ctx context.Context, req Request) (*Result, error) {
	if _, busy := s.inflight.LoadOrStore(req.SessionID, struct{}{}); busy {
		return nil, ErrSubmissionInProgress
	}
	defer s.inflight.Delete(req.SessionID)

	a := &attempt{
		id:        uuid.NewString(),
		sessionID: req.SessionID,
		method:    req.Form.PaymentMethod,
		state:     StateIdle,
		log:       s.log,
	}
	ctx = interceptors.WithIdempotencyKey(ctx, a.id)

	ctx, span := s.tracer.Start(ctx, "checkout.submit", trace.WithAttributes(
		attribute.String("checkout.attempt_id", a.id),
		attribute.String("checkout.payment_method", string(req.Form.PaymentMethod)),
	))
	defer span.End()

	res, err := s.run(ctx, a, req)
	res.AttemptID = a.id
	res.State = a.state
	metrics.Attempts.WithLabelValues(string(a.method), outcome(a.state, err)).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "checkout attempt failed",
			"attempt_id", a.id, "state", a.state, "order_id", a.orderID, "error", err)
		return res, err
	}
	slog.InfoContext(ctx, "checkout attempt finalized",
		"attempt_id", a.id, "order_id", a.orderID, "payment_method", a.method)
	return res, nil
}

func (s *Sequencer) run(ctx context.Context, a *attempt, req Request) (*Result, error) {
	res := &Result{}

	if err := a.transition(ctx, StateValidating, sagalog.StatusStarted); err != nil {
		return res, err
	}

	// The cart is read once so a buy-now purchase can put it back untouched.
	cart, err := s.carts.Read(ctx, req.SessionID)
	if err != nil {
		return res, a.fail(ctx, &StepError{Step: StateValidating, Message: "Could not load your cart", Err: err})
	}
	buyNowItem := req.BuyNow.Item()
	snapshot := pricing.ResolveCheckoutItems(cart, buyNowItem)

	payload, totals, err := s.prepare(ctx, a, req, snapshot)
	if err != nil {
		return res, err
	}
	res.Totals = &totals

	var order *entity.CreatedOrder
	switch req.Form.PaymentMethod {
	case entity.PaymentCOD:
		order, err = s.placeCOD(ctx, a, payload)
	case entity.PaymentCard:
		order, err = s.payByCard(ctx, a, req, payload)
	default:
		err = a.fail(ctx, &StepError{Step: StateValidating, Message: "Unsupported payment method"})
	}
	if order != nil {
		res.OrderID = order.ID
		summary := order.OrderSummary
		res.Summary = &summary
	}
	if err != nil {
		return res, err
	}

	// The gateway has taken the money; finalizing must not be abandoned if
	// the caller goes away now.
	fctx := context.WithoutCancel(ctx)
	res.CartPreserved = s.finalize(fctx, a, req, cart, buyNowItem != nil)
	res.Redirect = "/order-success/" + order.ID
	return res, nil
}

// prepare validates the form, builds the payload and creates any
// subscriptions. No order exists yet, so any failure here is side-effect
// free apart from subscriptions already created.
func (s *Sequencer) prepare(
	ctx context.Context,
	a *attempt,
	req Request,
	snapshot []entity.CartLine,
) (entity.OrderPayload, pricing.Totals, error) {
	var payload entity.OrderPayload

	if len(snapshot) == 0 {
		return payload, pricing.Totals{}, a.fail(ctx, &StepError{Step: StateValidating, Message: "Your basket is empty", Err: ErrEmptyCheckout})
	}
	if err := orderpayload.Validate(req.Form); err != nil {
		return payload, pricing.Totals{}, a.fail(ctx, err)
	}
	if req.Form.PaymentMethod == entity.PaymentCard && req.PaymentMethodID == "" {
		return payload, pricing.Totals{}, a.fail(ctx, &StepError{Step: StateValidating, Message: "Enter your card details", Err: ErrMissingPaymentMethod})
	}

	totals := pricing.Calculate(snapshot)
	if totals.Clamped {
		slog.WarnContext(ctx, "checkout total below zero, clamped; discount data needs correcting",
			"attempt_id", a.id,
			"subtotal", totals.Subtotal.String(),
			"bundle_discount", totals.BundleDiscount.String(),
			"line_discount", totals.LineDiscount.String(),
		)
	}

	payload = s.builder.Build(req.Form, snapshot)
	err := timed("subscriptions", func() error {
		return orderpayload.AttachSubscriptions(ctx, s.storefront, &payload, snapshot)
	})
	if err != nil {
		return payload, totals, a.fail(ctx, &StepError{Step: StateValidating, Message: "Subscription creation failed", Err: err})
	}
	return payload, totals, nil
}

// finalize settles the shared cart and fires the newsletter signup. It
// reports whether the cart was restored rather than cleared. Failures are
// logged only: payment has already succeeded.
func (s *Sequencer) finalize(ctx context.Context, a *attempt, req Request, cart []entity.CartLine, buyNow bool) bool {
	if buyNow {
		if err := s.carts.Restore(ctx, req.SessionID, cart); err != nil {
			slog.WarnContext(ctx, "restore cart after buy now failed", "attempt_id", a.id, "error", err)
		}
		if err := s.carts.MarkPreserved(ctx, req.SessionID); err != nil {
			slog.WarnContext(ctx, "mark cart preserved failed", "attempt_id", a.id, "error", err)
		}
		req.BuyNow.Clear()
	} else if err := s.carts.Clear(ctx, req.SessionID); err != nil {
		slog.WarnContext(ctx, "clear cart failed", "attempt_id", a.id, "error", err)
	}

	if req.Form.SubscribeNewsletter {
		s.subscribeNewsletter(ctx, entity.NewsletterSubscription{
			Email:     req.Form.Billing.Email,
			Source:    s.cfg.NewsletterSource,
			IPAddress: req.ClientIP,
		})
	}

	_ = a.transition(ctx, StateFinalized, sagalog.StatusCompleted)
	return buyNow
}

func (s *Sequencer) subscribeNewsletter(ctx context.Context, sub entity.NewsletterSubscription) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.BestEffortTimeout)
		defer cancel()
		if err := s.storefront.Subscribe(ctx, sub); err != nil {
			metrics.BestEffortFailures.WithLabelValues("newsletter").Inc()
			slog.WarnContext(ctx, "newsletter subscribe failed", "error", err)
		}
	}()
}

// Drain waits for background best-effort calls to finish.
func (s *Sequencer) Drain() {
	s.bg.Wait()
}

func outcome(state State, err error) string {
	var decline *ports.DeclineError
	var verr *orderpayload.ValidationError
	switch {
	case err == nil && state == StateFinalized:
		return "finalized"
	case errors.As(err, &decline):
		return "declined"
	case errors.As(err, &verr):
		return "invalid"
	default:
		return "errored"
	}
}

func timed(step string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.StepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	return err
}

// attempt is the mutable state of one Submit call. Only transition changes
// state.
type attempt struct {
	id        string
	sessionID string
	method    entity.PaymentMethod
	state     State

	orderID         string
	paymentIntentID string

	log sagalog.Repository
}

func (a *attempt) transition(ctx context.Context, to State, status sagalog.Status, errs ...string) error {
	if !CanTransition(a.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, a.state, to)
	}
	from := a.state
	a.state = to

	trace.SpanFromContext(ctx).AddEvent("checkout.transition", trace.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
	slog.DebugContext(ctx, "checkout transition",
		"attempt_id", a.id, "from", from, "to", to, "order_id", a.orderID)

	a.record(ctx, status, errs...)
	return nil
}

// record appends a log row for the current state. A failing log write never
// fails the checkout.
func (a *attempt) record(ctx context.Context, status sagalog.Status, errs ...string) {
	if a.log == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, sagalog.Transition{
		AttemptID:       a.id,
		SessionID:       a.sessionID,
		Status:          status,
		State:           string(a.state),
		PaymentMethod:   string(a.method),
		OrderID:         a.orderID,
		PaymentIntentID: a.paymentIntentID,
		Errors:          errs,
	})
	if err := a.log.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "save attempt log failed", "attempt_id", a.id, "status", status, "error", err)
	}
}

// fail moves the attempt to Errored and returns err unchanged. A card
// attempt that already created its order is also recorded as orphaned.
func (a *attempt) fail(ctx context.Context, err error) error {
	if tErr := a.transition(ctx, StateErrored, sagalog.StatusFailed, err.Error()); tErr != nil {
		return errors.Join(err, tErr)
	}
	if a.orderID != "" && a.method == entity.PaymentCard {
		a.orphan(ctx, err.Error())
	}
	return err
}

func (a *attempt) orphan(ctx context.Context, reason string) {
	metrics.OrphanedOrders.Inc()
	slog.WarnContext(ctx, "order left unpaid by failed card attempt",
		"attempt_id", a.id, "order_id", a.orderID, "payment_intent_id", a.paymentIntentID, "reason", reason)
	a.record(ctx, sagalog.StatusOrphaned, reason)
}
