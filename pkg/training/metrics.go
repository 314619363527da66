package training

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// StageTiming is the wall time spent in one stage
type StageTiming struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// RunMetrics tracks stage timings for a training run
type RunMetrics struct {
	mu        sync.Mutex
	logger    *zap.Logger
	StartTime time.Time
	EndTime   time.Time
	Stages    []StageTiming
	started   map[Stage]time.Time
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		logger:    logger,
		StartTime: time.Now(),
		Stages:    make([]StageTiming, 0, 7),
		started:   make(map[Stage]time.Time),
	}
}

// StartStage begins timing a stage
func (m *RunMetrics) StartStage(stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started[stage] = time.Now()
}

// EndStage stops timing a stage. Ending a stage that was never started is a no-op.
func (m *RunMetrics) EndStage(stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start, ok := m.started[stage]
	if !ok {
		return
	}
	delete(m.started, stage)

	timing := StageTiming{Stage: stage, Duration: time.Since(start)}
	m.Stages = append(m.Stages, timing)

	if m.logger != nil {
		m.logger.Debug("Stage completed",
			zap.String("stage", string(stage)),
			zap.Duration("duration", timing.Duration))
	}
}

// StageDuration returns the recorded time for a stage, zero if it never ran
func (m *RunMetrics) StageDuration(stage Stage) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total time.Duration
	for _, s := range m.Stages {
		if s.Stage == stage {
			total += s.Duration
		}
	}
	return total
}

// Complete marks the run as complete
func (m *RunMetrics) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EndTime = time.Now()
}

// Duration returns the total duration of the run
func (m *RunMetrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// GenerateReport creates a human readable summary of a run
func (m *RunMetrics) GenerateReport(result *Result) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`
Training Run Report
===================
Run ID:                  %s
Source:                  %s
Success:                 %t
Duration:                %s

Data Summary
------------
Rows Read:               %d
Rows Kept:               %d
Train Rows:              %d
Test Rows:               %d
Audited Drops:           %d

Test Metrics
------------
MAE:                     %.4f
RMSE:                    %.4f
R2:                      %.4f
`,
		result.JobID,
		result.Source,
		result.Success,
		formatDuration(m.Duration()),
		result.RowsRead,
		result.RowsKept,
		result.TrainRows,
		result.TestRows,
		result.AuditedRows,
		result.Metrics.MAE,
		result.Metrics.RMSE,
		result.Metrics.R2,
	))

	if result.Report != nil && len(result.Report.Dropped) > 0 {
		sb.WriteString("\nDropped Rows\n------------\n")
		for _, reason := range result.Report.Reasons() {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", reason, result.Report.Dropped[reason]))
		}
	}

	if len(m.Stages) > 0 {
		sb.WriteString("\nStage Timings\n-------------\n")
		for _, s := range m.Stages {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", s.Stage, formatDuration(s.Duration)))
		}
	}

	if len(result.Warnings) > 0 {
		sb.WriteString("\nWarnings\n--------\n")
		warnings := append([]string(nil), result.Warnings...)
		sort.Strings(warnings)
		for _, w := range warnings {
			sb.WriteString("- " + w + "\n")
		}
	}

	return sb.String()
}

// ToJSON serializes the timings to JSON
func (m *RunMetrics) ToJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stages := make(map[Stage]string, len(m.Stages))
	for _, s := range m.Stages {
		stages[s.Stage] = formatDuration(s.Duration)
	}

	return json.Marshal(struct {
		Duration string           `json:"duration"`
		Stages   map[Stage]string `json:"stages"`
	}{
		Duration: formatDuration(m.Duration()),
		Stages:   stages,
	})
}
