package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/prompt-relay/internal/app"
	"github.com/kitbuilder587/prompt-relay/internal/config"
	"github.com/kitbuilder587/prompt-relay/internal/metrics"
)

// NewRootCmd creates the prompt-relay command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "prompt-relay",
		Short:         "Send prompts to Gemini with client-side request spacing",
		Long:          "Relay text prompts to the Gemini API, keeping a minimum interval between requests to stay under the free-tier quota.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewSendCmd())
	root.AddCommand(NewBatchCmd())

	return root
}

// runWithApp loads config, builds the app and runs work. When METRICS_ADDR is
// set, /metrics is served for as long as work runs.
func runWithApp(ctx context.Context, work func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	a := app.New(cfg, logger, prometheus.NewRegistry())

	if cfg.Metrics.Addr == "" {
		return work(ctx, a)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.Gatherer))
	srv := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("metrics server started", zap.String("addr", cfg.Metrics.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", zap.Error(err))
			}
		}()
		return work(gctx, a)
	})

	return g.Wait()
}
