package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-checkout/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront-checkout/internal/storefront-stub/app"
)

type stubConfig struct {
	Addr         string          `envconfig:"STUB_ADDR" default:":8081"`
	LogFormat    string          `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel     string          `envconfig:"LOG_LEVEL" default:"info"`
	DeliveryCost decimal.Decimal `envconfig:"STUB_DELIVERY_COST" default:"3.99"`
	PaymentLimit decimal.Decimal `envconfig:"STUB_PAYMENT_LIMIT" default:"500"`
}

func main() {
	var cfg stubConfig
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("invalid stub config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: app.NewServer(app.Options{
			DeliveryCost: cfg.DeliveryCost,
			PaymentLimit: cfg.PaymentLimit,
		}).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("storefront stub running", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to serve", "error", err)
		os.Exit(1)
	}
}
