package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rcastillo/storefront-backend/api/controllers"
	"github.com/rcastillo/storefront-backend/api/routes"
	"github.com/rcastillo/storefront-backend/internal/auth"
	"github.com/rcastillo/storefront-backend/internal/cart"
	"github.com/rcastillo/storefront-backend/internal/catalog"
	"github.com/rcastillo/storefront-backend/internal/checkout"
	"github.com/rcastillo/storefront-backend/internal/orders"
	"github.com/rcastillo/storefront-backend/internal/users"
	"github.com/rcastillo/storefront-backend/pkg/auth/session"
	"github.com/rcastillo/storefront-backend/pkg/config"
	"github.com/rcastillo/storefront-backend/pkg/db"
	"github.com/rcastillo/storefront-backend/pkg/logger"
	"github.com/rcastillo/storefront-backend/pkg/metrics"
	"github.com/rcastillo/storefront-backend/pkg/migrate"
	redisclient "github.com/rcastillo/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "server exited with error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { _ = dbClient.Close() }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	userRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	authService, err := auth.NewService(userRepo, sessions, cfg.JWT, cfg.Password)
	if err != nil {
		return err
	}
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(orderRepo)
	if err != nil {
		return err
	}
	cartStore, err := cart.NewStore(redisClient, catalogRepo, cfg.Cart)
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(dbClient, cartStore, catalogRepo, orderRepo, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Metrics:  httpMetrics,
		Registry: registry,
		Sessions: sessions,
		Redis:    redisClient,

		Auth:       controllers.NewAuthController(authService, logg),
		Products:   controllers.NewProductsController(catalogService, logg),
		Categories: controllers.NewCategoriesController(catalogService, logg),
		Cart:       controllers.NewCartController(cartStore, logg),
		Checkout:   controllers.NewCheckoutController(checkoutService, logg),
		Orders:     controllers.NewOrdersController(orderService, logg),
		Health:     controllers.NewHealthController(dbClient, redisClient, logg),
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", server.Addr), "http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
