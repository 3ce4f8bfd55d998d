package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/address"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/orderpayload"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/pricing"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/infra/adapters/service"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/interceptors"
)

const defaultOrphanLimit = 50

// Checkout runs one checkout submission.
type Checkout interface {
	Submit(ctx context.Context, req coordinator.Request) (*coordinator.Result, error)
}

// SessionStore is the per-session state behind the HTTP surface.
type SessionStore interface {
	ports.CartStore
	ports.BuyNowStore
	Replace(ctx context.Context, sessionID string, lines []entity.CartLine) error
	Preserved(ctx context.Context, sessionID string) (bool, error)
}

// Handler serves the checkout gateway API.
type Handler struct {
	checkout Checkout
	sessions SessionStore
	lookup   ports.AddressLookup
	attempts sagalog.Repository
}

func NewHandler(checkout Checkout, sessions SessionStore, lookup ports.AddressLookup, attempts sagalog.Repository) *Handler {
	return &Handler{
		checkout: checkout,
		sessions: sessions,
		lookup:   lookup,
		attempts: attempts,
	}
}

func (h *Handler) PutCart(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	var lines []entity.CartLine
	if err := json.NewDecoder(r.Body).Decode(&lines); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	for _, l := range lines {
		if l.ID == "" || l.ProductID == "" || l.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_item", "id, productId and a positive quantity are required")
			return
		}
	}
	if err := h.sessions.Replace(r.Context(), sid, lines); err != nil {
		slog.ErrorContext(r.Context(), "replace cart failed", "session_id", sid, "error", err)
		writeError(w, http.StatusInternalServerError, "cart_store_error", "")
		return
	}
	h.GetCart(w, r)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	ctx := r.Context()

	lines, err := h.sessions.Read(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cart_store_error", err.Error())
		return
	}
	preserved, err := h.sessions.Preserved(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cart_store_error", err.Error())
		return
	}
	staged, err := h.sessions.Staged(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cart_store_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Items: lines, Preserved: preserved, BuyNow: staged})
}

func (h *Handler) StageBuyNow(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	var line entity.CartLine
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if line.ID == "" || line.ProductID == "" || line.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_item", "id, productId and a positive quantity are required")
		return
	}
	if err := h.sessions.Stage(r.Context(), sid, line); err != nil {
		writeError(w, http.StatusInternalServerError, "cart_store_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *Handler) ClearBuyNow(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Unstage(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeError(w, http.StatusInternalServerError, "cart_store_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Quote returns display-only totals for what the session would check out.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	ctx := r.Context()

	cart, err := h.sessions.Read(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cart_store_error", err.Error())
		return
	}
	staged, err := h.sessions.Staged(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cart_store_error", err.Error())
		return
	}
	snapshot := pricing.ResolveCheckoutItems(cart, staged)
	writeJSON(w, http.StatusOK, QuoteResponse{
		Items:  snapshot,
		Totals: pricing.Calculate(snapshot),
		BuyNow: staged != nil,
	})
}

// Checkout runs the payment sequencer for the session. The staged buy-now
// line is only dropped once the attempt is finalized.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	ctx := r.Context()

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	staged, err := h.sessions.Staged(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cart_store_error", err.Error())
		return
	}

	slog.InfoContext(ctx, "checkout submitted",
		"request_id", interceptors.RequestIDFromContext(ctx),
		"session_id", sid,
		"payment_method", req.PaymentMethod,
		"buy_now", staged != nil)

	res, err := h.checkout.Submit(ctx, coordinator.Request{
		SessionID:       sid,
		Form:            req.CheckoutForm,
		PaymentMethodID: req.PaymentMethodID,
		BuyNow:          entity.NewBuyNowContext(staged),
		ClientIP:        clientIP(r),
	})
	if err != nil {
		writeCheckoutError(w, res, err)
		return
	}

	if staged != nil && res.State == coordinator.StateFinalized {
		if err := h.sessions.Unstage(context.WithoutCancel(ctx), sid); err != nil {
			slog.WarnContext(ctx, "unstage buy-now after checkout failed", "session_id", sid, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) SearchAddress(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if utf8.RuneCountInString(query) < address.DefaultMinLength {
		writeJSON(w, http.StatusOK, []entity.AddressSuggestion{})
		return
	}
	suggestions, err := h.lookup.Search(r.Context(), query)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []entity.AddressSuggestion{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

func (h *Handler) AddressDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.lookup.Details(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	entry, err := h.attempts.GetLatest(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sagalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "attempt_not_found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "attempt_log_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapEntryToResponse(*entry))
}

func (h *Handler) ListOrphans(w http.ResponseWriter, r *http.Request) {
	limit := defaultOrphanLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries, err := h.attempts.ListOrphaned(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "attempt_log_error", err.Error())
		return
	}
	out := make([]AttemptResponse, len(entries))
	for i, e := range entries {
		out[i] = mapEntryToResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func mapEntryToResponse(e sagalog.Entry) AttemptResponse {
	return AttemptResponse{
		AttemptID:       e.AttemptID,
		SessionID:       e.SessionID,
		Status:          e.Status,
		State:           e.State,
		PaymentMethod:   e.PaymentMethod,
		OrderID:         e.OrderID,
		PaymentIntentID: e.PaymentIntentID,
		Errors:          e.Errors(),
		TraceID:         e.TraceID,
		UpdatedAt:       e.UpdatedAt,
	}
}

func writeCheckoutError(w http.ResponseWriter, res *coordinator.Result, err error) {
	body := ErrorResponse{Message: err.Error()}
	if res != nil {
		body.AttemptID = res.AttemptID
		body.State = string(res.State)
		body.OrderID = res.OrderID
	}

	var (
		verr    *orderpayload.ValidationError
		decline *ports.DeclineError
		stepErr *coordinator.StepError
		status  int
	)
	switch {
	case errors.As(err, &verr):
		status, body.Error, body.Message, body.Fields = http.StatusUnprocessableEntity, "validation_failed", "", verr.Fields
	case errors.As(err, &decline):
		status, body.Error, body.Message = http.StatusPaymentRequired, "payment_declined", decline.Message
	case errors.Is(err, coordinator.ErrSubmissionInProgress):
		status, body.Error = http.StatusConflict, "submission_in_progress"
	case errors.Is(err, coordinator.ErrEmptyCheckout), errors.Is(err, coordinator.ErrMissingPaymentMethod):
		status, body.Error = http.StatusUnprocessableEntity, "invalid_checkout"
		if errors.As(err, &stepErr) {
			body.Message = stepErr.Message
		}
	case errors.As(err, &stepErr):
		status, body.Error, body.Message = http.StatusBadGateway, "checkout_step_failed", stepErr.Message
	default:
		status, body.Error = http.StatusInternalServerError, "checkout_failed"
	}
	writeJSON(w, status, body)
}

func writeLookupError(w http.ResponseWriter, err error) {
	var apiErr *service.APIError
	switch {
	case errors.Is(err, service.ErrLookupUnavailable):
		writeError(w, http.StatusServiceUnavailable, "address_lookup_unavailable", err.Error())
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		writeError(w, http.StatusNotFound, "address_not_found", "")
	default:
		writeError(w, http.StatusBadGateway, "address_lookup_error", err.Error())
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
