package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minsukang/paylink/internal/bootstrap"
	"github.com/minsukang/paylink/internal/notify"
	infraRedis "github.com/minsukang/paylink/internal/redis"
	"github.com/minsukang/paylink/internal/repository/postgres"
	"github.com/minsukang/paylink/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "paylink-worker", "paylink_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	requestRepo := postgres.NewPaymentRequestRepository(app.Pool)
	emailSender := notify.NewEmailSender(app.Config.Email, app.Logger)
	marker := infraRedis.NewMarker(app.Redis, "paylink")
	sweepLock := infraRedis.NewDistributedLock(app.Redis, "reminder-sweep", app.Config.Worker.LockTTL)

	sweeper := worker.NewReminderSweeper(
		requestRepo,
		marker,
		sweepLock,
		emailSender,
		app.Metrics,
		app.Logger,
		worker.SweeperConfig{
			Interval: app.Config.Worker.SweepInterval,
			Window:   app.Config.Worker.ReminderWindow,
		},
	)

	app.Logger.Info().
		Str("instance", app.Config.InstanceID).
		Msg("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sweeper.Run(gCtx)
	})

	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}
