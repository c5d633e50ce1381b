package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tienda/internal/auth"
	"tienda/internal/config"
	"tienda/internal/coupon"
	"tienda/internal/database"
	"tienda/internal/handler"
	"tienda/internal/payment"
	"tienda/internal/repository"
	"tienda/internal/router"
	"tienda/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting tienda API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	intentRepo := repository.NewIntentRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Initialize coupon code loader with S3 and local fallback
	fileLoader := coupon.NewFileLoader(logger)
	couponLoader := fileLoader
	if cfg.S3.Enabled {
		s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			couponLoader = coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	} else {
		logger.Info().Msg("using local file system for coupon code files (S3 disabled)")
	}

	// Initialize payment provider client and webhook verifier
	provider, err := payment.NewHTTPClient(
		cfg.Payment.BaseURL,
		cfg.Payment.SecretKey,
		time.Duration(cfg.Payment.TimeoutSecs)*time.Second,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize payment client: %w", err)
	}
	verifier := payment.NewVerifier(cfg.Payment.WebhookSecret, 5*time.Minute)

	// Bearer token strategy for request authentication
	tokens := auth.NewTokenStrategy(cfg.Auth.TokenSecret, 24*time.Hour)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	couponService := service.NewCouponService(couponRepo, couponLoader, logger)
	checkoutService := service.NewCheckoutService(
		productRepo, intentRepo, userRepo, couponService, provider,
		cfg.Checkout.ShippingFee, cfg.Payment.MinCharge, logger,
	)
	reconcileService := service.NewReconcileService(orderRepo, productRepo, couponRepo, intentRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, couponRepo, couponService, cfg.Checkout.ShippingFee, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Coupon:   handler.NewCouponHandler(couponService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Webhook:  handler.NewWebhookHandler(verifier, reconcileService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
	}

	// Initialize router
	mux := router.New(handlers, tokens, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
