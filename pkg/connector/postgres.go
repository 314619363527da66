// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/config"
)

// PostgresDriver is the database/sql driver name registered by pgx
const PostgresDriver = "pgx"

// PostgresConnector implements the DatabaseConnector interface for PostgreSQL
type PostgresConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig) (*PostgresConnector, error) {
	logger := zap.L().Named("postgres-connector")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sql.Open(PostgresDriver, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Statement timeout only holds for the session it was set on; pool
	// connections opened later use the server default.
	if cfg.StatementTimeout > 0 {
		_, err = db.ExecContext(ctx, fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()))
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, cfg.Database, db)
	return &PostgresConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sql.DB {
	return c.db
}

// DriverName returns the pgx driver name
func (c *PostgresConnector) DriverName() string {
	return PostgresDriver
}

// Validate checks that the server answers and logs its version
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}

	c.logger.Info("PostgreSQL connection validated",
		zap.String("version", version),
		zap.String("database", c.cfg.Database),
		zap.String("host", c.cfg.Host))
	return nil
}

// ValidateWritable checks that the user may create the audit schema and
// table in the current database. Only audit sinks need it.
func (c *PostgresConnector) ValidateWritable(ctx context.Context) error {
	var canCreate bool
	row := c.db.QueryRowContext(ctx,
		"SELECT has_database_privilege(current_user, current_database(), 'CREATE')")
	if err := row.Scan(&canCreate); err != nil {
		return fmt.Errorf("failed to query PostgreSQL privileges: %w", err)
	}
	if !canCreate {
		return fmt.Errorf("user %s cannot create schemas in database %s", c.cfg.User, c.cfg.Database)
	}
	return nil
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// EnsureSchema creates a schema if it doesn't exist
func (c *PostgresConnector) EnsureSchema(ctx context.Context, schema string) error {
	_, err := c.ExecWithTimeout(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(schema), 30*time.Second)
	return err
}

// ExecWithTimeout executes a statement with a timeout
func (c *PostgresConnector) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (sql.Result, error) {
	return execWithTimeout(ctx, c.db, query, timeout, args...)
}

// QualifiedName quotes schema and table verbatim. PostgreSQL folds unquoted
// names to lower case, so mixed-case names must be given as created.
func (c *PostgresConnector) QualifiedName(schema, table string) string {
	return pgQualifiedName(schema, table)
}

func pgQualifiedName(schema, table string) string {
	if schema == "" {
		return pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}

// BatchInsert inserts valueRows in chunks of batchSize inside one
// transaction, so either every row lands or none does
func (c *PostgresConnector) BatchInsert(
	ctx context.Context,
	schema string,
	table string,
	columns []string,
	valueRows [][]interface{},
	batchSize int,
) (int64, error) {
	if len(valueRows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", pgQualifiedName(schema, table), strings.Join(quoted, ", "))

	txCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	tx, err := c.db.BeginTx(txCtx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin insert transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var inserted int64
	for start := 0; start < len(valueRows); start += batchSize {
		chunk := valueRows[start:min(start+batchSize, len(valueRows))]

		var sb strings.Builder
		sb.WriteString(prefix)
		args := make([]interface{}, 0, len(chunk)*len(columns))
		for j, row := range chunk {
			if len(row) != len(columns) {
				return 0, fmt.Errorf("row %d has %d values, expected %d", start+j, len(row), len(columns))
			}
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('(')
			for k := range row {
				if k > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(fmt.Sprintf("$%d", len(args)+k+1))
			}
			sb.WriteByte(')')
			args = append(args, row...)
		}

		res, err := tx.ExecContext(txCtx, sb.String(), args...)
		if err != nil {
			return 0, fmt.Errorf("batch insert failed at row %d: %w", start, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit inserts: %w", err)
	}
	return inserted, nil
}

// CreateTableIfNotExists creates a table with the specified columns if it doesn't exist
func (c *PostgresConnector) CreateTableIfNotExists(
	ctx context.Context,
	schema string,
	table string,
	columnDefs []string,
	primaryKey string,
) error {
	if schema != "" {
		if err := c.EnsureSchema(ctx, schema); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
	}

	fullTableName := pgQualifiedName(schema, table)
	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s", fullTableName, strings.Join(columnDefs, ",\n\t"))
	if primaryKey != "" {
		createSQL += fmt.Sprintf(",\n\tPRIMARY KEY (%s)", pq.QuoteIdentifier(primaryKey))
	}
	createSQL += "\n)"

	if _, err := c.ExecWithTimeout(ctx, createSQL, 30*time.Second); err != nil {
		return fmt.Errorf("failed to create table %s: %w", fullTableName, err)
	}

	c.logger.Debug("Ensured table", zap.String("table", fullTableName))
	return nil
}
