package coordinator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/metrics"
)

const (
	msgOrderFailed   = "Order creation failed"
	msgIntentFailed  = "Payment intent creation failed"
	msgConfirmFailed = "Card confirmation failed"
)

func (s *Sequencer) placeCOD(ctx context.Context, a *attempt, payload entity.OrderPayload) (*entity.CreatedOrder, error) {
	if err := a.transition(ctx, StateCODPlacing, sagalog.StatusStepDone); err != nil {
		return nil, err
	}
	payload.IsCashOnDelivery = true

	order, err := s.createOrder(ctx, payload)
	if err != nil {
		return nil, a.fail(ctx, &StepError{Step: StateCODPlacing, Message: msgOrderFailed, Err: err})
	}
	a.orderID = order.ID
	return order, nil
}

func (s *Sequencer) payByCard(ctx context.Context, a *attempt, req Request, payload entity.OrderPayload) (*entity.CreatedOrder, error) {
	order, err := s.createOrder(ctx, payload)
	if err != nil {
		return nil, a.fail(ctx, &StepError{Step: StateOrderCreated, Message: msgOrderFailed, Err: err})
	}
	a.orderID = order.ID
	if err := a.transition(ctx, StateOrderCreated, sagalog.StatusStepDone); err != nil {
		return order, err
	}

	intent, err := s.createIntent(ctx, a, order, payload.CustomerEmail)
	if err != nil {
		return order, a.fail(ctx, &StepError{Step: StateIntentCreated, Message: msgIntentFailed, Err: err})
	}
	a.paymentIntentID = intent.PaymentIntentID
	if err := a.transition(ctx, StateIntentCreated, sagalog.StatusStepDone); err != nil {
		return order, err
	}

	intentID, err := s.confirmCard(ctx, intent, req)
	if err != nil {
		var decline *ports.DeclineError
		if errors.As(err, &decline) {
			_ = a.transition(ctx, StateIdle, sagalog.StatusDeclined, decline.Message)
			a.orphan(ctx, decline.Message)
			return order, &StepError{Step: StateCardConfirmed, Message: decline.Message, Err: err}
		}
		return order, a.fail(ctx, &StepError{Step: StateCardConfirmed, Message: msgConfirmFailed, Err: err})
	}
	if intentID != "" {
		a.paymentIntentID = intentID
	}
	if err := a.transition(ctx, StateCardConfirmed, sagalog.StatusStepDone); err != nil {
		return order, err
	}

	// Reconciliation only; the gateway already accepted the payment.
	if err := s.serverConfirm(context.WithoutCancel(ctx), a.paymentIntentID); err != nil {
		metrics.BestEffortFailures.WithLabelValues("payment_confirm").Inc()
		slog.WarnContext(ctx, "server-side payment confirm failed",
			"attempt_id", a.id, "order_id", a.orderID, "payment_intent_id", a.paymentIntentID, "error", err)
		return order, nil
	}
	if err := a.transition(ctx, StateServerConfirmed, sagalog.StatusStepDone); err != nil {
		return order, err
	}
	return order, nil
}

func (s *Sequencer) createOrder(ctx context.Context, payload entity.OrderPayload) (*entity.CreatedOrder, error) {
	var order *entity.CreatedOrder
	err := timed("create_order", func() error {
		var err error
		order, err = s.storefront.CreateOrder(ctx, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	if order == nil || order.ID == "" {
		return nil, errors.New("order response has no id")
	}
	return order, nil
}

func (s *Sequencer) createIntent(ctx context.Context, a *attempt, order *entity.CreatedOrder, fallbackEmail string) (*entity.PaymentIntent, error) {
	email := order.CustomerEmail
	if email == "" {
		email = fallbackEmail
	}
	req := entity.PaymentIntentRequest{
		Amount:        order.TotalAmount,
		Currency:      s.cfg.Currency,
		CustomerEmail: email,
		OrderID:       order.ID,
		Metadata: map[string]string{
			"attempt_id": a.id,
			"session_id": a.sessionID,
		},
	}

	var intent *entity.PaymentIntent
	err := timed("create_intent", func() error {
		var err error
		intent, err = s.storefront.CreateIntent(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	if intent == nil || intent.ClientSecret == "" || intent.PaymentIntentID == "" {
		return nil, errors.New("payment intent response is missing clientSecret or paymentIntentId")
	}
	return intent, nil
}

func (s *Sequencer) confirmCard(ctx context.Context, intent *entity.PaymentIntent, req Request) (string, error) {
	var intentID string
	err := timed("confirm_card", func() error {
		var err error
		intentID, err = s.gateway.ConfirmCard(ctx, ports.CardConfirmation{
			ClientSecret:    intent.ClientSecret,
			PaymentMethodID: req.PaymentMethodID,
			Billing:         req.Form.Billing,
		})
		return err
	})
	return intentID, err
}

func (s *Sequencer) serverConfirm(ctx context.Context, paymentIntentID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BestEffortTimeout)
	defer cancel()
	return timed("server_confirm", func() error {
		return s.storefront.ConfirmPayment(ctx, paymentIntentID)
	})
}
