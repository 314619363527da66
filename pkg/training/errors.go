package training

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/features"
	"github.com/David-Botos/import-cif/pkg/regression"
	"github.com/David-Botos/import-cif/pkg/source"
)

// Action defines the recommended action after an error
type Action int

const (
	// ActionContinue indicates the run can finish despite the error
	ActionContinue Action = iota
	// ActionAbort indicates the run must stop without writing an artifact
	ActionAbort
)

// Stage names a step of the training run
type Stage string

const (
	StageRead     Stage = "read"
	StageClean    Stage = "clean"
	StageAudit    Stage = "audit"
	StageSplit    Stage = "split"
	StageFit      Stage = "fit"
	StageEvaluate Stage = "evaluate"
	StageSave     Stage = "save"
)

// ErrorCategory defines categories of errors during a run
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWarning
	ErrorCategoryDataQuality
	ErrorCategoryTraining
	ErrorCategoryConnection
	ErrorCategoryWarehouse
	ErrorCategoryCanceled
	ErrorCategorySystem
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWarning:
		return "Warning"
	case ErrorCategoryDataQuality:
		return "DataQuality"
	case ErrorCategoryTraining:
		return "Training"
	case ErrorCategoryConnection:
		return "Connection"
	case ErrorCategoryWarehouse:
		return "Warehouse"
	case ErrorCategoryCanceled:
		return "Canceled"
	case ErrorCategorySystem:
		return "System"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrorRecord represents a single error during a run
type ErrorRecord struct {
	Category  ErrorCategory
	Stage     Stage
	Error     error
	Message   string // Derived from Error but stored for serialization
	Timestamp time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Error:     err,
		Timestamp: time.Now(),
	}
	if err != nil {
		record.Message = err.Error()
	}
	return record
}

// WithStage adds the failing stage to the error record
func (r ErrorRecord) WithStage(stage Stage) ErrorRecord {
	r.Stage = stage
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))
	if r.Stage != "" {
		sb.WriteString(fmt.Sprintf("Stage: %s ", r.Stage))
	}
	sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	return sb.String()
}

// ErrorHandler classifies run errors and decides whether the run survives them
type ErrorHandler struct {
	logger      *zap.Logger
	mu          sync.Mutex
	errorCounts map[ErrorCategory]int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger:      logger,
		errorCounts: make(map[ErrorCategory]int),
	}
}

// CategorizeError determines the category of an error raised in stage
func (eh *ErrorHandler) CategorizeError(stage Stage, err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var (
		dataErr *source.DataQualityError
		sfErr   *sf.SnowflakeError
		netErr  net.Error
	)

	var category ErrorCategory
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		category = ErrorCategoryCanceled
	case errors.As(err, &dataErr) || errors.Is(err, cleaner.ErrTargetColumnDead):
		category = ErrorCategoryDataQuality
	case errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr):
		category = ErrorCategoryConnection
	case errors.As(err, &sfErr):
		category = ErrorCategoryWarehouse
	case errors.Is(err, regression.ErrUnknownCategory) || errors.Is(err, features.ErrValidation):
		category = ErrorCategoryTraining
	case stage == StageSplit || stage == StageFit || stage == StageEvaluate:
		category = ErrorCategoryTraining
	case stage == StageAudit:
		category = ErrorCategoryWarning
	default:
		category = ErrorCategorySystem
	}

	if eh.logger != nil {
		eh.logger.Debug("Categorized error",
			zap.String("stage", string(stage)),
			zap.String("error", err.Error()),
			zap.String("category", category.String()))
	}
	return category
}

// HandleError records an error and determines the action. Only warnings
// let the run continue.
func (eh *ErrorHandler) HandleError(record ErrorRecord) Action {
	eh.mu.Lock()
	eh.errorCounts[record.Category]++
	eh.mu.Unlock()

	if record.Category == ErrorCategoryNone || record.Category == ErrorCategoryWarning {
		if eh.logger != nil {
			eh.logger.Warn("Training run warning",
				zap.String("stage", string(record.Stage)),
				zap.String("error", record.Message))
		}
		return ActionContinue
	}

	if eh.logger != nil {
		eh.logger.Error("Training run failed",
			zap.String("category", record.Category.String()),
			zap.String("stage", string(record.Stage)),
			zap.String("error", record.Message))
	}
	return ActionAbort
}

// GetErrorSummary returns a copy of the error counts by category
func (eh *ErrorHandler) GetErrorSummary() map[ErrorCategory]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	summary := make(map[ErrorCategory]int, len(eh.errorCounts))
	for category, count := range eh.errorCounts {
		summary[category] = count
	}
	return summary
}

// WrapError creates a new error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
