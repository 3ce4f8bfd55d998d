// Package app is an in-memory storefront API for local runs and adapter
// tests. It serves the order, payment, subscription, newsletter and address
// lookup endpoints the checkout gateway calls.
package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/interceptors/constants"
	"github.com/shopspring/decimal"
)

type Options struct {
	// DeliveryCost is added to home delivery orders.
	DeliveryCost decimal.Decimal
	// PaymentLimit rejects intents above it; zero disables the check.
	PaymentLimit decimal.Decimal
}

func DefaultOptions() Options {
	return Options{
		DeliveryCost: decimal.RequireFromString("3.99"),
		PaymentLimit: decimal.NewFromInt(500),
	}
}

type Server struct {
	orders        *orderStore
	payments      *paymentStore
	subscriptions *subscriptionStore
	newsletter    *newsletterList
}

func NewServer(opts Options) *Server {
	return &Server{
		orders:        newOrderStore(opts.DeliveryCost),
		payments:      newPaymentStore(opts.PaymentLimit),
		subscriptions: newSubscriptionStore(),
		newsletter:    newNewsletterList(),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/Orders", s.createOrder)
	r.Get("/Orders/{id}", s.getOrder)
	r.Post("/Payment/create-intent", s.createIntent)
	r.Post("/Payment/confirm/{paymentIntentId}", s.confirmPayment)
	r.Post("/Subscriptions", s.createSubscription)
	r.Post("/Newsletter/subscribe", s.subscribe)
	r.Get("/address-lookup/search", s.searchAddress)
	r.Get("/address-lookup/details/{id}", s.addressDetails)
	return r
}

// Order returns a stored order; used by tests and the stub's logs.
func (s *Server) Order(id string) (*Order, error) {
	return s.orders.get(id)
}

func (s *Server) NewsletterSize() int {
	return s.newsletter.size()
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var p entity.OrderPayload
	if !decode(w, r, &p) {
		return
	}
	o, err := s.orders.create(p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.InfoContext(r.Context(), "order created",
		"order_id", o.ID,
		"total", o.TotalAmount.String(),
		"cod", p.IsCashOnDelivery,
		"idempotency_key", r.Header.Get(constants.HeaderXIdempotencyKey),
	)
	writeData(w, http.StatusCreated, o.CreatedOrder)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.orders.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) createIntent(w http.ResponseWriter, r *http.Request) {
	var req entity.PaymentIntentRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.orders.get(req.OrderID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	in, err := s.payments.createIntent(req)
	if errors.Is(err, errAmountLimit) {
		writeError(w, http.StatusPaymentRequired, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeData(w, http.StatusCreated, in)
}

func (s *Server) confirmPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := s.payments.orderFor(chi.URLParam(r, "paymentIntentId"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := s.orders.markPaid(orderID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]string{"orderId": orderID, "status": OrderStatusPaid})
}

func (s *Server) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req entity.SubscriptionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID == "" || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "productId and quantity are required")
		return
	}
	writeData(w, http.StatusCreated, map[string]string{"id": s.subscriptions.create(req)})
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var sub entity.NewsletterSubscription
	if !decode(w, r, &sub) {
		return
	}
	if sub.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	s.newsletter.add(sub)
	writeData(w, http.StatusOK, map[string]bool{"subscribed": true})
}

func (s *Server) searchAddress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    searchAddresses(q.Get("query"), q.Get("country")),
	})
}

func (s *Server) addressDetails(w http.ResponseWriter, r *http.Request) {
	d, ok := findAddress(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "address not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": d})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
