package connector

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/config"
	"github.com/David-Botos/import-cif/pkg/connector/connectortest"
)

func TestQualifiedName(t *testing.T) {
	tests := []struct {
		name   string
		conn   DatabaseConnector
		schema string
		table  string
		want   string
	}{
		{"postgres schema and table", &PostgresConnector{}, "public", "training_row_drops", `"public"."training_row_drops"`},
		{"postgres keeps case", &PostgresConnector{}, "", "Imports", `"Imports"`},
		{"postgres escapes quotes", &PostgresConnector{}, "", `odd"name`, `"odd""name"`},
		{"snowflake folds plain names", &SnowflakeConnector{}, "public", "imports", `"PUBLIC"."IMPORTS"`},
		{"snowflake without schema", &SnowflakeConnector{}, "", "imports_2024", `"IMPORTS_2024"`},
		{"snowflake keeps quoted-style names", &SnowflakeConnector{}, "RAW", "Import Rows", `"RAW"."Import Rows"`},
		{"snowflake escapes quotes", &SnowflakeConnector{}, "", `odd"name`, `"odd""name"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.conn.QualifiedName(tt.schema, tt.table))
		})
	}
}

func newTestPostgres(t *testing.T, script connectortest.Script) *PostgresConnector {
	t.Helper()
	return &PostgresConnector{
		db:     connectortest.Open(t, script),
		logger: zap.NewNop(),
		cfg:    &config.PostgresConfig{User: "reader", Database: "warehouse"},
	}
}

func TestPostgresValidateNeedsNoWritePrivilege(t *testing.T) {
	// any privilege query would be rejected by the script
	c := newTestPostgres(t, connectortest.Script{
		"SELECT version()": {
			Columns: []connectortest.Column{{Name: "version", Type: "TEXT"}},
			Rows:    [][]driver.Value{{"PostgreSQL 16.2"}},
		},
	})

	require.NoError(t, c.Validate(context.Background()))
}

func TestPostgresValidateWritable(t *testing.T) {
	privilege := func(canCreate bool) connectortest.Script {
		return connectortest.Script{
			"has_database_privilege": {
				Columns: []connectortest.Column{{Name: "has_database_privilege", Type: "BOOL"}},
				Rows:    [][]driver.Value{{canCreate}},
			},
		}
	}

	err := newTestPostgres(t, privilege(false)).ValidateWritable(context.Background())
	assert.ErrorContains(t, err, "user reader cannot create schemas in database warehouse")

	assert.NoError(t, newTestPostgres(t, privilege(true)).ValidateWritable(context.Background()))
}

func TestFactoryRejectsMissingConfiguration(t *testing.T) {
	ctx := context.Background()

	f := NewConnectorFactory(&config.Config{Source: config.SourceConfig{Kind: config.SourceCSV}}, zap.NewNop())
	_, err := f.CreateSourceConnector(ctx)
	assert.ErrorContains(t, err, "no database connector")

	f = NewConnectorFactory(&config.Config{Source: config.SourceConfig{Kind: config.SourcePostgres}}, zap.NewNop())
	_, err = f.CreateSourceConnector(ctx)
	assert.ErrorContains(t, err, "not loaded")

	f = NewConnectorFactory(&config.Config{Source: config.SourceConfig{Kind: config.SourceSnowflake}}, zap.NewNop())
	_, err = f.CreateSourceConnector(ctx)
	assert.ErrorContains(t, err, "not loaded")
}
