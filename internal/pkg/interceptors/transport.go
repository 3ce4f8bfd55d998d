package interceptors

import (
	"log/slog"
	"net/http"

	"github.com/jcmexdev/storefront-checkout/internal/pkg/interceptors/constants"
)

type propagatingTransport struct {
	base http.RoundTripper
}

// NewTransport wraps base so every outbound request carries the request id
// and idempotency key found in its context. Headers already set by the
// caller win.
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &propagatingTransport{base: base}
}

func (t *propagatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	requestID := RequestIDFromContext(ctx)
	idempotencyKey := IdempotencyKeyFromContext(ctx)

	if requestID == "" && idempotencyKey == "" {
		return t.base.RoundTrip(req)
	}

	out := req.Clone(ctx)
	if requestID != "" && out.Header.Get(constants.HeaderXRequestId) == "" {
		out.Header.Set(constants.HeaderXRequestId, requestID)
	}
	if idempotencyKey != "" && out.Header.Get(constants.HeaderXIdempotencyKey) == "" {
		out.Header.Set(constants.HeaderXIdempotencyKey, idempotencyKey)
	}

	slog.DebugContext(ctx, "outbound request",
		"method", out.Method,
		"url", out.URL.Redacted(),
		"request_id", requestID,
		"idempotency_key", idempotencyKey,
	)
	return t.base.RoundTrip(out)
}
