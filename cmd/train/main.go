package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/config"
	"github.com/David-Botos/import-cif/pkg/connector"
	"github.com/David-Botos/import-cif/pkg/logging"
	"github.com/David-Botos/import-cif/pkg/source"
	"github.com/David-Botos/import-cif/pkg/training"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := connector.NewConnectorFactory(cfg, logger)

	src, closeSource, err := openSource(ctx, cfg, factory, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	var recorder training.AuditRecorder
	if cfg.Training.AuditEnabled {
		pg, err := factory.CreatePostgresConnector(ctx)
		if err != nil {
			// the run can still produce a model without its audit trail
			logger.Warn("Cleaning audit disabled, PostgreSQL is unavailable", zap.Error(err))
		} else {
			defer pg.Close()
			if err := pg.ValidateWritable(ctx); err != nil {
				logger.Warn("Cleaning audit disabled, audit database is not writable", zap.Error(err))
			} else {
				if err := pg.EnsureSchema(ctx, cfg.Training.AuditSchema); err != nil {
					logger.Warn("Failed to ensure audit schema", zap.Error(err))
				}
				r, err := cleaner.NewRecorder(pg, cfg.Training.AuditSchema, logger.Named("cleaning-audit"))
				if err != nil {
					return err
				}
				recorder = r
			}
		}
	}

	trainer, err := training.NewTrainer(src, recorder, logger)
	if err != nil {
		return err
	}

	job := training.NewJob(cfg.Training.ArtifactPath).
		WithTestFraction(cfg.Training.TestFraction).
		WithSplitSeed(cfg.Training.SplitSeed).
		WithAudit(cfg.Training.AuditEnabled)

	result, err := trainer.Run(ctx, job)
	if result != nil && result.Timings != nil {
		fmt.Println(result.Timings.GenerateReport(result))
		if timings, jerr := result.Timings.ToJSON(); jerr == nil {
			fmt.Println(string(timings))
		}
	}
	if result != nil && result.HasErrors() {
		byCategory := make(map[string]int)
		for category, n := range trainer.ErrorSummary() {
			byCategory[category.String()] = n
		}
		logger.Error("Training run recorded errors", zap.Any("errorsByCategory", byCategory))
	}
	if err != nil {
		var dq *source.DataQualityError
		if errors.As(err, &dq) {
			logger.Error("Source is missing mandatory columns",
				zap.String("source", dq.Source),
				zap.Strings("missing", dq.Missing))
		}
		return err
	}
	return nil
}

// openSource builds the configured training source and its cleanup
func openSource(ctx context.Context, cfg *config.Config, factory *connector.ConnectorFactory, logger *zap.Logger) (source.Source, func(), error) {
	if cfg.Source.Kind == config.SourceCSV {
		src, err := source.NewCSVSource(cfg.Source.Path, cfg.Source.Delimiter, logger)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}

	conn, err := factory.CreateSourceConnector(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("source connection is not usable: %w", err)
	}
	connector.LogConnectionStats(logger, cfg.Source.Kind, conn.DB())

	src, err := source.NewTableSource(conn, cfg.Source.Schema, cfg.Source.Table, cfg.Source.QueryTimeout, logger)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return src, func() { conn.Close() }, nil
}
