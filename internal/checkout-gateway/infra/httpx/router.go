package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/infra/httpx/middlewares"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/sessions/{sid}", func(r chi.Router) {
		r.Get("/cart", handler.GetCart)
		r.Put("/cart", handler.PutCart)
		r.Post("/buy-now", handler.StageBuyNow)
		r.Delete("/buy-now", handler.ClearBuyNow)
		r.Get("/quote", handler.Quote)
		r.Post("/checkout", handler.Checkout)
	})

	r.Get("/address/search", handler.SearchAddress)
	r.Get("/address/{id}", handler.AddressDetails)

	r.Get("/checkout/attempts/{id}", handler.GetAttempt)
	r.Get("/checkout/orphans", handler.ListOrphans)

	return otelhttp.NewHandler(r, "checkout-gateway",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
