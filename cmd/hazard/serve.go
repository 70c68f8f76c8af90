package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/karim5623/hazcurve/internal/adapter/http"
	"github.com/karim5623/hazcurve/internal/calc"
	"github.com/karim5623/hazcurve/internal/config"
	"github.com/karim5623/hazcurve/internal/model"
	"github.com/karim5623/hazcurve/internal/observability"
)

// hazardService adapts the calculator to the HTTP surface, selecting
// the configured execution mode per request.
type hazardService struct {
	calculator *calc.Calculator
	workers    int
	ready      atomic.Bool
}

func (s *hazardService) Curves(ctx context.Context, site calc.Site) (*calc.Result, error) {
	if s.workers > 0 {
		return s.calculator.CurvesParallel(ctx, site, s.workers)
	}
	return s.calculator.Curves(ctx, site)
}

// CheckReadiness returns nil once the model is loaded and the
// calculator is constructed.
func (s *hazardService) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("hazard model not loaded yet")
	}
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve hazard calculations over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			metrics := observability.NewMetrics()

			if cfg.ModelPath == "" {
				return errors.New("HAZARD_MODEL is required")
			}
			hazardModel, calcCfg, err := model.Load(cfg.ModelPath)
			if err != nil {
				return err
			}
			calculator, err := calc.New(hazardModel, calcCfg, logger, metrics)
			if err != nil {
				return err
			}

			svc := &hazardService{calculator: calculator, workers: cfg.Workers}
			svc.ready.Store(true)
			logger.Info("hazard model loaded",
				"model", hazardModel.Name(),
				"source_sets", len(hazardModel.SourceSets()),
				"workers", cfg.Workers,
			)

			srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server error", "error", err)
				}
			}()

			<-ctx.Done()
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
}
