package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/David-Botos/import-cif/pkg/api"
	"github.com/David-Botos/import-cif/pkg/artifact"
	"github.com/David-Botos/import-cif/pkg/config"
	"github.com/David-Botos/import-cif/pkg/logging"
	"github.com/David-Botos/import-cif/pkg/serving"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.Install(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	// No artifact, no server
	predictor, err := serving.LoadPredictor(cfg.Server.ArtifactPath, logger)
	if err != nil {
		var loadErr *artifact.LoadError
		if errors.As(err, &loadErr) {
			logger.Error("Refusing to start without a usable model artifact",
				zap.String("path", loadErr.Path),
				zap.Error(loadErr.Err))
		}
		return err
	}

	router, err := api.NewRouter(predictor, api.NewMetrics(), logger, api.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.RequestTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Prediction API listening",
			zap.String("addr", cfg.Server.ListenAddr),
			zap.String("modelVersion", predictor.ModelVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down prediction API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
