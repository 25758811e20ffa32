package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/minsukang/paylink/internal/bootstrap"
	"github.com/minsukang/paylink/internal/controller"
	"github.com/minsukang/paylink/internal/gateway/toss"
	"github.com/minsukang/paylink/internal/notify"
	"github.com/minsukang/paylink/internal/repository/postgres"
	"github.com/minsukang/paylink/internal/service"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "paylink-api", "paylink")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	requestRepo := postgres.NewPaymentRequestRepository(app.Pool)
	checkoutStore := postgres.NewCheckoutStore(app.Pool)

	// --- Gateway and notifications ---
	gatewayClient := toss.NewClient(toss.Config{
		SecretKey: app.Config.Gateway.SecretKey,
		BaseURL:   app.Config.Gateway.BaseURL,
		Timeout:   app.Config.Gateway.ConfirmTimeout,
	})
	emailSender := notify.NewEmailSender(app.Config.Email, app.Logger)

	// --- Application service ---
	checkoutService := service.NewCheckoutService(
		gatewayClient,
		requestRepo,
		checkoutStore,
		emailSender,
		app.Metrics,
		app.Logger,
	)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		CheckoutService: checkoutService,
		Metrics:         app.Metrics,
		ServerConfig:    app.Config.Server,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
