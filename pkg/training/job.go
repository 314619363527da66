package training

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/model"
)

// Job describes one training run
type Job struct {
	ID           string    // Unique run identifier, also stamped on audit rows
	ArtifactPath string    // Where the trained artifact is written
	TestFraction float64   // Share of samples held out for evaluation
	SplitSeed    int64     // Seed of the shuffled split
	Audit        bool      // Record dropped rows through the audit recorder
	CreatedAt    time.Time // Job creation timestamp
}

// NewJob creates a job with the default 80/20 split and seed 42
func NewJob(artifactPath string) Job {
	return Job{
		ID:           uuid.New().String(),
		ArtifactPath: artifactPath,
		TestFraction: 0.2,
		SplitSeed:    42,
		CreatedAt:    time.Now(),
	}
}

// WithTestFraction sets the held-out share and returns the modified job
func (j Job) WithTestFraction(fraction float64) Job {
	j.TestFraction = fraction
	return j
}

// WithSplitSeed sets the split seed and returns the modified job
func (j Job) WithSplitSeed(seed int64) Job {
	j.SplitSeed = seed
	return j
}

// WithAudit toggles drop auditing and returns the modified job
func (j Job) WithAudit(enabled bool) Job {
	j.Audit = enabled
	return j
}

// Validate checks the job parameters before any data is read
func (j Job) Validate() error {
	if j.ArtifactPath == "" {
		return errors.New("artifact path cannot be empty")
	}
	if j.TestFraction <= 0 || j.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be in (0, 1), got %v", j.TestFraction)
	}
	return nil
}

// Result represents the outcome of a training run
type Result struct {
	JobID        string
	Source       string
	Success      bool
	ModelVersion string
	ArtifactPath string
	RowsRead     int
	RowsKept     int
	TrainRows    int
	TestRows     int
	AuditedRows  int64
	Metrics      model.Metrics
	Report       *cleaner.Report
	Timings      *RunMetrics
	Errors       []ErrorRecord
	Warnings     []string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// NewResult initializes a result for a job
func NewResult(job Job, sourceName string) *Result {
	return &Result{
		JobID:        job.ID,
		Source:       sourceName,
		ArtifactPath: job.ArtifactPath,
		StartTime:    time.Now(),
		Errors:       make([]ErrorRecord, 0),
		Warnings:     make([]string, 0),
	}
}

// Complete marks the run as finished and calculates duration
func (r *Result) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success && len(r.Errors) == 0
}

// AddError adds an error to the result
func (r *Result) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
	r.Success = false
}

// AddWarning adds a warning to the result
func (r *Result) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// HasErrors checks if any errors occurred
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}
