// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/model"
)

// ErrTargetColumnDead is returned when the target column sums to zero across the batch
var ErrTargetColumnDead = errors.New("target column carries no information in this batch")

// Options tunes what the cleaner keeps besides the cleaned rows
type Options struct {
	// CollectOperations keeps one CleaningOperation per dropped row for auditing
	CollectOperations bool
	// RunID and Source label collected operations
	RunID  string
	Source string
}

// DataCleaner applies the numeric normalisation, dead-column and row filtering
// steps to a raw batch. It holds no state between calls.
type DataCleaner struct {
	logger *zap.Logger
	opts   Options
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(logger *zap.Logger, opts Options) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &DataCleaner{
		logger: logger,
		opts:   opts,
	}, nil
}

// CleanBatch coerces measure columns, removes dead columns and filters rows
// with missing mandatory measures. Malformed values never abort the batch.
func (c *DataCleaner) CleanBatch(batch model.RawBatch) ([]model.CleanRecord, *Report, error) {
	if batch.Metadata == nil {
		return nil, nil, errors.New("batch metadata cannot be nil")
	}

	report := NewReport(len(batch.Records))

	// Step 1: numeric normalisation
	present := presentMeasures(batch.Metadata)
	records := make([]model.CleanRecord, 0, len(batch.Records))
	for _, raw := range batch.Records {
		rec, malformed := normalizeRecord(raw, present)
		report.MalformedValues += malformed
		records = append(records, rec)
	}

	// Step 2: dead-column removal, recomputed for every batch
	alive := present // array copy
	for _, col := range deadColumns(records, present) {
		alive[col] = false
		report.DeadColumns = append(report.DeadColumns, col.Code())
	}
	if !alive[model.CIFValuePerKg] {
		return nil, report, fmt.Errorf("%w: %s", ErrTargetColumnDead, model.CIFValuePerKg.Code())
	}
	for i := range records {
		for col := range records[i].Measures {
			if !alive[col] {
				records[i].Measures[col] = model.NullFloat{}
			}
		}
	}

	// Step 3: row filtering and imputation
	kept := records[:0]
	for _, rec := range records {
		if alive[model.Insurance] && !rec.Measures[model.Insurance].Valid {
			c.drop(report, rec.Line, model.Insurance.Code(), "", DropMissingInsurance)
			continue
		}
		if alive[model.GrossWeight] && !rec.Measures[model.GrossWeight].Valid {
			c.drop(report, rec.Line, model.GrossWeight.Code(), "", DropMissingGrossWeight)
			continue
		}
		if alive[model.OtherCharges] && !rec.Measures[model.OtherCharges].Valid {
			rec.Measures[model.OtherCharges] = model.Some(0.0)
			report.FilledOtherCharges++
		}
		kept = append(kept, rec)
	}

	if alive[model.Freight] {
		mean, ok := columnMean(kept, model.Freight)
		if ok {
			report.FreightMean = model.Some(mean)
			for i := range kept {
				if !kept[i].Measures[model.Freight].Valid {
					kept[i].Measures[model.Freight] = model.Some(mean)
					report.ImputedFreight++
				}
			}
		}
	}

	report.RowsKept = len(kept)

	c.logger.Debug("Cleaned batch",
		zap.Int("rowsRead", report.RowsRead),
		zap.Int("rowsKept", report.RowsKept),
		zap.Int("malformedValues", report.MalformedValues),
		zap.Strings("deadColumns", report.DeadColumns))

	return kept, report, nil
}

// Drop registers a dropped row in the report. Exported so that later pipeline
// stages share one report and one audit trail.
func (c *DataCleaner) Drop(report *Report, line int, column, value string, reason DropReason) {
	c.drop(report, line, column, value, reason)
}

func (c *DataCleaner) drop(report *Report, line int, column, value string, reason DropReason) {
	report.Dropped[reason]++
	if !c.opts.CollectOperations {
		return
	}
	report.Operations = append(report.Operations, model.CleaningOperation{
		RunID:         c.opts.RunID,
		Source:        c.opts.Source,
		Line:          line,
		ColumnName:    column,
		OriginalValue: value,
		Operation:     "row_dropped",
		Reason:        string(reason),
		CleanedAt:     time.Now().UTC(),
	})
}

// LogReport writes the aggregated drop counts, one entry per reason
func (c *DataCleaner) LogReport(report *Report) {
	fields := []zap.Field{
		zap.Int("rowsRead", report.RowsRead),
		zap.Int("rowsKept", report.RowsKept),
		zap.Int("rowsDropped", report.TotalDropped()),
		zap.Int("malformedValues", report.MalformedValues),
		zap.Int("filledOtherCharges", report.FilledOtherCharges),
		zap.Int("imputedFreight", report.ImputedFreight),
		zap.Int("fallbackImportType", report.FallbackImportType),
		zap.Strings("deadColumns", report.DeadColumns),
	}
	for _, reason := range report.Reasons() {
		fields = append(fields, zap.Int("dropped."+string(reason), report.Dropped[reason]))
	}
	if report.TotalDropped() > 0 {
		c.logger.Warn("Rows dropped during cleaning", fields...)
		return
	}
	c.logger.Info("Cleaning completed", fields...)
}
