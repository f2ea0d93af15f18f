package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"timetracker/internal/config"
	router "timetracker/internal/http"
	"timetracker/internal/http/handlers"
	"timetracker/internal/scheduler"
	"timetracker/internal/service"
	"timetracker/internal/workerpool"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the nightly sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = a.v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

// serve blocks until ctx is cancelled, then shuts everything down within
// cfg.HTTP.ShutdownTimeout.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("close store failed", "error", err)
		}
	}()

	svc, err := service.New(store, service.WithLogger(logger.With("component", "service")))
	if err != nil {
		return fmt.Errorf("service initiation failed: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router.New(handlers.New(svc, logger), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	pool := workerpool.New(cfg.Scheduler.QueueSize, logger.With("component", "workerpool"))

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		loc, err := cfg.Scheduler.Location()
		if err != nil {
			return err
		}
		sched, err = scheduler.New(scheduler.Config{
			Schedule: cfg.Scheduler.Schedule,
			Location: loc,
			Timeout:  cfg.Scheduler.SweepTimeout,
		}, svc, pool, logger.With("component", "scheduler"))
		if err != nil {
			return err
		}
	}

	pool.Start(1)
	if sched != nil {
		sched.Start()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shut down signal received...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		var errs []error
		if sched != nil {
			errs = append(errs, sched.Stop(shutdownCtx))
		}
		errs = append(errs, server.Shutdown(shutdownCtx))
		errs = append(errs, pool.Shutdown(shutdownCtx))

		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shut down gracefully")
	return nil
}
