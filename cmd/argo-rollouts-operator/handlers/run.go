package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/imamik/argo-rollouts-operator/internal/operator"
)

const shutdownTimeout = 30 * time.Second

// RunOptions override the configuration for the long-running mode.
type RunOptions struct {
	RemoveOnExit *bool
}

// Run installs the workload and supervises it until ctx is cancelled.
func Run(ctx context.Context, configPath string, opts RunOptions) error {
	logger := log.FromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if opts.RemoveOnExit != nil {
		cfg.Standalone.RemoveOnExit = *opts.RemoveOnExit
	}

	u := newStandaloneUnit()
	controller, sup, err := buildController(cfg, u, operator.NewMemoryStateStore())
	if err != nil {
		return err
	}

	loop := operator.NewLoop(controller, 16)
	if err := loop.Submit(ctx, operator.TriggerInstall); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error {
		loop.WatchReady(gctx, sup.CanConnect, cfg.Standalone.PollInterval)
		return nil
	})
	g.Go(func() error {
		loop.Every(gctx, operator.TriggerUpdateStatus, cfg.Standalone.UpdateStatusInterval)
		return nil
	})
	if cfg.Standalone.HealthAddr != "" {
		g.Go(func() error { return serve(gctx, cfg.Standalone.HealthAddr, healthHandler(loop)) })
	}
	if cfg.Standalone.MetricsAddr != "" {
		g.Go(func() error { return serve(gctx, cfg.Standalone.MetricsAddr, metricsHandler()) })
	}

	logger.Info("operator running", "app", cfg.ResolveAppName())
	runErr := g.Wait()

	// The loop has returned, so the controller has no other owner.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if _, err := controller.Handle(shutdownCtx, operator.TriggerStop); err != nil {
		logger.Error(err, "failed to stop")
	}
	if cfg.Standalone.RemoveOnExit {
		if _, err := controller.Handle(shutdownCtx, operator.TriggerRemove); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to remove resources: %w", err))
		}
	}

	logger.Info("operator stopped", "status", u.Status().String())
	return runErr
}

func healthHandler(loop *operator.Loop) http.Handler {
	live := &healthz.Handler{Checks: map[string]healthz.Checker{"ping": healthz.Ping}}
	ready := &healthz.Handler{Checks: map[string]healthz.Checker{
		"workload": func(_ *http.Request) error {
			if state := loop.State(); state != operator.StateActive {
				return fmt.Errorf("workload is %s", state)
			}
			return nil
		},
	}}

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.StripPrefix("/healthz", live))
	mux.Handle("/healthz/", http.StripPrefix("/healthz", live))
	mux.Handle("/readyz", http.StripPrefix("/readyz", ready))
	mux.Handle("/readyz/", http.StripPrefix("/readyz", ready))
	return mux
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	return mux
}

// serve runs an HTTP server until ctx is done.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to serve %s: %w", addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
