package source

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/connector/connectortest"
	"github.com/David-Botos/import-cif/pkg/model"
)

// fakeConnector serves a connectortest database and qualifies names without quoting
type fakeConnector struct {
	db *sql.DB
}

func (c *fakeConnector) DB() *sql.DB { return c.db }

func (c *fakeConnector) DriverName() string { return connectortest.DriverName }

func (c *fakeConnector) Validate(context.Context) error { return nil }

func (c *fakeConnector) Close() error { return nil }

func (c *fakeConnector) QualifiedName(schema, table string) string {
	return schema + "." + table
}

func (c *fakeConnector) ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

func newTableSource(t *testing.T, script connectortest.Script) *TableSource {
	t.Helper()
	conn := &fakeConnector{db: connectortest.Open(t, script)}
	src, err := NewTableSource(conn, "raw", "imports", time.Minute, zap.NewNop())
	require.NoError(t, err)
	return src
}

func TestTableSourceRead(t *testing.T) {
	src := newTableSource(t, connectortest.Script{
		"SELECT * FROM raw.imports": {
			Columns: []connectortest.Column{
				{Name: "fech", Type: "INT4"},
				{Name: "adua", Type: "INT4"},
				{Name: "paispro", Type: "INT4"},
				{Name: "copaex", Type: "INT4"},
				{Name: "regimen", Type: "VARCHAR"},
				{Name: "pbk", Type: "NUMERIC"},
				{Name: "vacid", Type: "NUMERIC"},
				{Name: "seguros", Type: "FLOAT8"},
			},
			Rows: [][]driver.Value{
				{int64(2405), int64(48), int64(215), nil, "C100", "1234.50", "1234.50", 2.5},
				{int64(2406), int64(90), int64(249), int64(169), "C300", nil, "NaN", float64(0)},
			},
		},
	})

	assert.Equal(t, "raw.imports", src.Name())

	batch, err := src.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "raw.imports", batch.Metadata.FullName())
	assert.Equal(t, "NUMERIC", batch.Metadata.GetColumnByName("vacid").DataType)

	first := batch.Records[0]
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, "2405", first.Period)
	assert.Equal(t, "48", first.CustomsOffice)
	assert.Equal(t, "215", first.OriginCountry)
	assert.Equal(t, "", first.DeclarantCountry)
	assert.Equal(t, "C100", first.ImportRegime)
	assert.Equal(t, "1234,5", first.Measures[model.CIFValuePerKg])
	assert.Equal(t, "2,5", first.Measures[model.Insurance])
	// absent column
	assert.Equal(t, "", first.Measures[model.FOBValue])

	// exact numerics reach the cleaner with their decimal point intact
	v, ok := cleaner.NormalizeNumber(first.Measures[model.CIFValuePerKg])
	require.True(t, ok)
	assert.Equal(t, model.Some(1234.5), v)
	v, ok = cleaner.NormalizeNumber(first.Measures[model.GrossWeight])
	require.True(t, ok)
	assert.Equal(t, model.Some(1234.5), v)

	second := batch.Records[1]
	assert.Equal(t, 2, second.Line)
	assert.Equal(t, "169", second.DeclarantCountry)
	assert.Equal(t, "", second.Measures[model.GrossWeight])
	assert.Equal(t, "", second.Measures[model.CIFValuePerKg])
	assert.Equal(t, "0", second.Measures[model.Insurance])
}

func TestTableSourceMissingColumns(t *testing.T) {
	src := newTableSource(t, connectortest.Script{
		"SELECT * FROM raw.imports": {
			Columns: []connectortest.Column{
				{Name: "FECH", Type: "NUMBER"},
				{Name: "ADUA", Type: "NUMBER"},
				{Name: "PAISPRO", Type: "NUMBER"},
				{Name: "REGIMEN", Type: "TEXT"},
				{Name: "SEGUROS", Type: "NUMBER"},
				{Name: "PBK", Type: "NUMBER"},
			},
			Rows: [][]driver.Value{{int64(2405), int64(48), int64(215), "C100", "1", "1"}},
		},
	})

	_, err := src.Read(context.Background())
	require.Error(t, err)

	var dq *DataQualityError
	require.True(t, errors.As(err, &dq))
	assert.Equal(t, "raw.imports", dq.Source)
	assert.Equal(t, []string{"vacid"}, dq.Missing)
}

func TestTableSourceQueryError(t *testing.T) {
	src := newTableSource(t, connectortest.Script{
		"SELECT * FROM raw.imports": {Err: errors.New("relation does not exist")},
	})

	_, err := src.Read(context.Background())
	assert.ErrorContains(t, err, "failed to query raw.imports")
}

func TestNewTableSourceValidation(t *testing.T) {
	_, err := NewTableSource(nil, "raw", "imports", 0, nil)
	assert.Error(t, err)

	conn := &fakeConnector{db: connectortest.Open(t, connectortest.Script{})}
	_, err = NewTableSource(conn, "raw", "", 0, nil)
	assert.Error(t, err)
}
