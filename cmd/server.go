package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"library-booking/internal/usecase"
	"library-booking/internal/wire"
	"library-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// Run serves HTTP and runs the maintenance loop until ctx is cancelled or
// either of them fails
func Run(ctx context.Context, app *wire.App, config *utils.Config, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.App.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		runMaintenance(ctx, app.Service.Maintenance, config.Maintenance.Interval, log)
		return nil
	})

	return g.Wait()
}

// runMaintenance runs one pass at start-up and then on every tick
func runMaintenance(ctx context.Context, jobs usecase.MaintenanceService, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("Maintenance loop started", zap.Duration("interval", interval))
	jobs.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobs.RunOnce(ctx)
		}
	}
}
