// Package training runs a full training pass: it reads a source, cleans and
// engineers the batch, fits the regression on a shuffled split, scores it on
// the held-out part and writes the artifact.
package training

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/artifact"
	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/features"
	"github.com/David-Botos/import-cif/pkg/model"
	"github.com/David-Botos/import-cif/pkg/regression"
	"github.com/David-Botos/import-cif/pkg/source"
)

// AuditRecorder persists the cleaning operations of a run
type AuditRecorder interface {
	Record(ctx context.Context, ops []model.CleaningOperation) (int64, error)
}

// Trainer orchestrates training runs over one source
type Trainer struct {
	source       source.Source
	recorder     AuditRecorder
	errorHandler *ErrorHandler
	logger       *zap.Logger
}

// NewTrainer creates a trainer. recorder may be nil when auditing is off.
func NewTrainer(src source.Source, recorder AuditRecorder, logger *zap.Logger) (*Trainer, error) {
	if src == nil {
		return nil, errors.New("source cannot be nil")
	}
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("trainer")

	return &Trainer{
		source:       src,
		recorder:     recorder,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
	}, nil
}

// ErrorSummary returns error counts by category across all runs
func (t *Trainer) ErrorSummary() map[ErrorCategory]int {
	return t.errorHandler.GetErrorSummary()
}

// Run executes one job. On failure the partially filled result is returned
// together with the error and no artifact is written.
func (t *Trainer) Run(ctx context.Context, job Job) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training job: %w", err)
	}

	result := NewResult(job, t.source.Name())
	timings := NewRunMetrics(t.logger)
	result.Timings = timings

	logger := t.logger.With(zap.String("runID", job.ID), zap.String("source", result.Source))
	logger.Info("Starting training run",
		zap.String("artifactPath", job.ArtifactPath),
		zap.Float64("testFraction", job.TestFraction),
		zap.Int64("splitSeed", job.SplitSeed))

	fail := func(stage Stage, err error) (*Result, error) {
		category := t.errorHandler.CategorizeError(stage, err)
		record := NewErrorRecord(err, category).WithStage(stage)
		t.errorHandler.HandleError(record)
		result.AddError(record)
		timings.EndStage(stage)
		timings.Complete()
		result.Complete(false)
		return result, WrapError(err, fmt.Sprintf("training failed at %s stage", stage))
	}

	// Read
	timings.StartStage(StageRead)
	batch, err := t.source.Read(ctx)
	if err != nil {
		return fail(StageRead, err)
	}
	timings.EndStage(StageRead)

	// Clean and engineer
	timings.StartStage(StageClean)
	pipeline, err := features.NewPipeline(logger, cleaner.Options{
		CollectOperations: job.Audit && t.recorder != nil,
		RunID:             job.ID,
		Source:            result.Source,
	})
	if err != nil {
		return fail(StageClean, err)
	}
	samples, report, err := pipeline.CleanAndEngineer(batch)
	if report != nil {
		result.Report = report
		result.RowsRead = report.RowsRead
		result.RowsKept = report.RowsKept
	}
	if err != nil {
		return fail(StageClean, err)
	}
	if err := ctx.Err(); err != nil {
		return fail(StageClean, err)
	}
	timings.EndStage(StageClean)

	// Audit failures never abort the run
	if job.Audit {
		timings.StartStage(StageAudit)
		t.audit(ctx, result, report)
		timings.EndStage(StageAudit)
	}

	// Split
	timings.StartStage(StageSplit)
	if len(samples) < 2 {
		return fail(StageSplit, fmt.Errorf("need at least 2 usable rows, got %d", len(samples)))
	}
	vocab := features.BuildVocabulary(samples)
	train, test, err := regression.Split(samples, job.TestFraction, job.SplitSeed)
	if err != nil {
		return fail(StageSplit, err)
	}
	result.TrainRows = len(train)
	result.TestRows = len(test)
	timings.EndStage(StageSplit)

	// Fit
	timings.StartStage(StageFit)
	m, err := regression.Fit(train, vocab)
	if err != nil {
		return fail(StageFit, err)
	}
	timings.EndStage(StageFit)

	// Evaluate
	timings.StartStage(StageEvaluate)
	metrics, err := regression.Evaluate(m, test)
	if err != nil {
		return fail(StageEvaluate, err)
	}
	result.Metrics = metrics
	timings.EndStage(StageEvaluate)

	// Save
	timings.StartStage(StageSave)
	a := artifact.New(m, vocab, metrics, artifact.TrainingInfo{
		RunID:        job.ID,
		Source:       result.Source,
		TrainRows:    len(train),
		TestRows:     len(test),
		TestFraction: job.TestFraction,
		SplitSeed:    job.SplitSeed,
	}, artifact.NewDataReport(report))
	if err := artifact.Save(job.ArtifactPath, a); err != nil {
		return fail(StageSave, err)
	}
	result.ModelVersion = a.ModelVersion
	timings.EndStage(StageSave)

	timings.Complete()
	result.Complete(true)

	logger.Info("Training run completed",
		zap.String("modelVersion", a.ModelVersion),
		zap.Int("trainRows", result.TrainRows),
		zap.Int("testRows", result.TestRows),
		zap.Float64("mae", metrics.MAE),
		zap.Float64("rmse", metrics.RMSE),
		zap.Float64("r2", metrics.R2),
		zap.Duration("readDuration", timings.StageDuration(StageRead)),
		zap.Duration("fitDuration", timings.StageDuration(StageFit)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// audit writes the collected drop operations, downgrading failures to warnings
func (t *Trainer) audit(ctx context.Context, result *Result, report *cleaner.Report) {
	if t.recorder == nil {
		result.AddWarning("audit requested but no recorder is configured")
		return
	}

	n, err := t.recorder.Record(ctx, report.Operations)
	if err != nil {
		record := NewErrorRecord(err, ErrorCategoryWarning).WithStage(StageAudit)
		if t.errorHandler.HandleError(record) == ActionContinue {
			result.AddWarning(record.String())
			return
		}
	}
	result.AuditedRows = n
}
