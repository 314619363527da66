// pkg/cleaner/audit.go
package cleaner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/model"
)

// AuditTable receives one row per dropped training record
const AuditTable = "training_row_drops"

var auditColumns = []string{
	"run_id", "source", "line", "column_name", "original_value", "operation", "reason", "cleaned_at",
}

var auditColumnDefs = []string{
	"id BIGSERIAL",
	"run_id UUID NOT NULL",
	"source TEXT NOT NULL",
	"line INTEGER NOT NULL",
	"column_name TEXT",
	"original_value TEXT",
	"operation TEXT NOT NULL",
	"reason TEXT NOT NULL",
	"cleaned_at TIMESTAMPTZ NOT NULL",
}

// AuditSink is the subset of a database connector the recorder writes through
type AuditSink interface {
	CreateTableIfNotExists(ctx context.Context, schema, table string, columnDefs []string, primaryKey string) error
	BatchInsert(ctx context.Context, schema, table string, columns []string, valueRows [][]interface{}, batchSize int) (int64, error)
}

// Recorder persists cleaning operations for later inspection
type Recorder struct {
	sink      AuditSink
	schema    string
	batchSize int
	logger    *zap.Logger
}

// NewRecorder creates a recorder writing to schema.training_row_drops
func NewRecorder(sink AuditSink, schema string, logger *zap.Logger) (*Recorder, error) {
	if sink == nil {
		return nil, errors.New("audit sink cannot be nil")
	}
	if schema == "" {
		schema = "public"
	}
	if logger == nil {
		logger = zap.L().Named("cleaning-audit")
	}
	return &Recorder{
		sink:      sink,
		schema:    schema,
		batchSize: 500,
		logger:    logger,
	}, nil
}

// Record writes the operations. An empty slice is a no-op.
func (r *Recorder) Record(ctx context.Context, ops []model.CleaningOperation) (int64, error) {
	if len(ops) == 0 {
		return 0, nil
	}

	if err := r.sink.CreateTableIfNotExists(ctx, r.schema, AuditTable, auditColumnDefs, "id"); err != nil {
		return 0, fmt.Errorf("failed to prepare audit table: %w", err)
	}

	rows := make([][]interface{}, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, []interface{}{
			op.RunID, op.Source, op.Line, op.ColumnName, op.OriginalValue, op.Operation, op.Reason, op.CleanedAt,
		})
	}

	n, err := r.sink.BatchInsert(ctx, r.schema, AuditTable, auditColumns, rows, r.batchSize)
	if err != nil {
		return n, fmt.Errorf("failed to record cleaning operations: %w", err)
	}

	r.logger.Info("Recorded cleaning operations",
		zap.String("table", r.schema+"."+AuditTable),
		zap.Int64("rows", n))
	return n, nil
}
