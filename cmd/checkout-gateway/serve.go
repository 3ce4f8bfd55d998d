package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/infra/adapters/cartstore"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/infra/adapters/gateway"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/infra/adapters/service"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/infra/httpx"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator/sagalog/sqlite"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/cache"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/config"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/telemetry"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the checkout HTTP API",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	telemetry.InitLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	ctx := c.Context

	if cfg.OTelEnabled {
		shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
			ServiceName: cfg.OTelServiceName,
			Endpoint:    cfg.OTelEndpoint,
			Environment: cfg.OTelEnvironment,
			SampleRatio: cfg.OTelSampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis at %s: %w", cfg.RedisAddr, err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SagaLogPath), 0o755); err != nil {
		return fmt.Errorf("attempt log dir: %w", err)
	}
	attempts, err := sqlite.Open(cfg.SagaLogPath)
	if err != nil {
		return err
	}
	defer attempts.Close()

	httpClient := service.NewHTTPClient(cfg.RequestTimeout)
	storefront := service.NewStorefrontClient(cfg.StorefrontAPIURL, httpClient)
	redisCache := cache.NewRedisCache(rdb, "checkout")
	lookup := service.NewCachedAddressLookup(
		service.NewAddressClient(cfg.StorefrontAPIURL, cfg.AddressCountry, httpClient),
		redisCache,
		cfg.AddressCacheTTL,
	)
	sessions := cartstore.NewRedisStore(redisCache, cfg.SessionTTL)

	var cards ports.PaymentGateway
	if cfg.SandboxPayments() {
		slog.Warn("STRIPE_SECRET_KEY not set, card payments use the sandbox gateway")
		cards = gateway.NewSandbox()
	} else {
		cards = gateway.NewStripe(cfg.StripeSecretKey)
	}

	seq := coordinator.NewSequencer(storefront, cards, sessions, attempts, coordinator.Config{
		Currency:          cfg.Currency,
		PhonePrefix:       cfg.PhonePrefix,
		NewsletterSource:  cfg.NewsletterSource,
		BestEffortTimeout: cfg.BestEffortTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(httpx.NewHandler(seq, sessions, lookup, attempts)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("checkout gateway running", "addr", cfg.HTTPAddr, "storefront", cfg.StorefrontAPIURL)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		seq.Drain()
		slog.Info("checkout gateway stopped")
		return err
	})
	return g.Wait()
}
