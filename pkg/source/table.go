package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/connector"
	"github.com/David-Botos/import-cif/pkg/converter"
	"github.com/David-Botos/import-cif/pkg/model"
)

// TableSource reads training rows from a warehouse table. Driver values are
// rendered back into export-style text so that the same cleaning rules apply
// to file and table input.
type TableSource struct {
	db        *sqlx.DB
	schema    string
	table     string
	qualified string
	timeout   time.Duration
	converter *converter.CellConverter
	logger    *zap.Logger
}

// NewTableSource wraps an open connector
func NewTableSource(conn connector.DatabaseConnector, schema, table string, timeout time.Duration, logger *zap.Logger) (*TableSource, error) {
	if conn == nil {
		return nil, errors.New("connector cannot be nil")
	}
	if table == "" {
		return nil, errors.New("table name cannot be empty")
	}
	if logger == nil {
		logger = zap.L()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	logger = logger.Named("table-source")
	return &TableSource{
		db:        sqlx.NewDb(conn.DB(), conn.DriverName()),
		schema:    schema,
		table:     table,
		qualified: conn.QualifiedName(schema, table),
		timeout:   timeout,
		converter: converter.NewCellConverter(logger),
		logger:    logger,
	}, nil
}

// Name returns the qualified table name
func (s *TableSource) Name() string {
	if s.schema == "" {
		return s.table
	}
	return s.schema + "." + s.table
}

// Read selects the whole table
func (s *TableSource) Read(ctx context.Context) (model.RawBatch, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := "SELECT * FROM " + s.qualified
	rows, err := s.db.QueryxContext(queryCtx, query)
	if err != nil {
		return model.RawBatch{}, fmt.Errorf("failed to query %s: %w", s.Name(), err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return model.RawBatch{}, fmt.Errorf("failed to read column types: %w", err)
	}

	metadata := &model.TableMetadata{Schema: s.schema, Table: s.table}
	for _, ct := range types {
		metadata.Columns = append(metadata.Columns, model.Column{Name: ct.Name(), DataType: ct.DatabaseTypeName()})
	}
	if err := CheckColumns(metadata); err != nil {
		return model.RawBatch{}, err
	}

	mapper := newRowMapper(metadata)
	batch := model.RawBatch{Metadata: metadata}
	values := make(map[string]interface{}, len(metadata.Columns))
	cells := make([]string, len(metadata.Columns))
	line := 0
	for rows.Next() {
		line++
		clear(values)
		if err := rows.MapScan(values); err != nil {
			return model.RawBatch{}, fmt.Errorf("failed to scan row %d: %w", line, err)
		}
		for i, col := range metadata.Columns {
			cells[i] = s.converter.ToCell(values[col.Name], col.DataType)
		}
		batch.Records = append(batch.Records, mapper.record(line, cells))
	}
	if err := rows.Err(); err != nil {
		return model.RawBatch{}, fmt.Errorf("error iterating rows: %w", err)
	}

	s.logger.Info("Read source table",
		zap.String("table", s.Name()),
		zap.Int("columns", len(metadata.Columns)),
		zap.Int("rows", len(batch.Records)))
	return batch, nil
}
