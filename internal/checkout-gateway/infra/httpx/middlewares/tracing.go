package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/interceptors/constants"
)

// AttachTracingMetadata copies the chi request id and any client supplied
// idempotency key into the context so outbound storefront calls carry them.
// The sequencer replaces the idempotency key with the attempt id.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		ctx := interceptors.WithRequestID(r.Context(), requestID)
		if key := r.Header.Get(constants.HeaderXIdempotencyKey); key != "" {
			ctx = interceptors.WithIdempotencyKey(ctx, key)
		}
		w.Header().Set(constants.HeaderXRequestId, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
