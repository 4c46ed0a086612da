package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vardarauto/marketplace-api/internal/app"
	"github.com/vardarauto/marketplace-api/internal/clock"
	"github.com/vardarauto/marketplace-api/internal/config"
	"github.com/vardarauto/marketplace-api/internal/geo"
	"github.com/vardarauto/marketplace-api/internal/metrics"
	"github.com/vardarauto/marketplace-api/internal/rates"
	"github.com/vardarauto/marketplace-api/internal/storage/postgres"
	transporthttp "github.com/vardarauto/marketplace-api/internal/transport/http"
	"github.com/vardarauto/marketplace-api/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	sysClock := clock.NewSystem()

	rateProvider := rates.NewHTTPProvider(httpClient, cfg.RatesURL, cfg.RatesAPIKey)
	rateCache := rates.NewCache(rateProvider, sysClock,
		rates.WithTTL(cfg.RatesTTL),
		rates.WithLogger(logger),
	)
	converter := rates.NewConverter(rateCache, logger)
	locator := geo.NewHTTPLocator(httpClient, cfg.GeoURL, logger)

	checkoutSvc := app.NewCheckoutService(postgres.NewCheckoutRepository(pool), sysClock)
	listingSvc := app.NewListingService(postgres.NewListingRepository(pool), sysClock)
	orderSvc := app.NewOrderService(postgres.NewOrderRepository(pool))
	pricingSvc := app.NewPricingService(converter, locator)

	serverMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer)

	handler := transporthttp.NewRouter(transporthttp.Services{
		Checkout: checkoutSvc,
		Listings: listingSvc,
		Orders:   orderSvc,
		Pricing:  pricingSvc,
	}, serverMetrics, logger, cfg.CORSOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}
