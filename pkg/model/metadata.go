// pkg/model/metadata.go
package model

import "strings"

// Source column codes. The pipeline contract is keyed to these identities.
const (
	ColumnPeriod           = "fech"
	ColumnCustomsOffice    = "adua"
	ColumnOriginCountry    = "paispro"
	ColumnDeclarantCountry = "copaex"
	ColumnImportRegime     = "regimen"
)

// MandatoryColumns lists the columns a training source must provide
var MandatoryColumns = []string{
	ColumnPeriod,
	ColumnCustomsOffice,
	ColumnOriginCountry,
	ColumnImportRegime,
	CIFValuePerKg.Code(),
	Insurance.Code(),
	GrossWeight.Code(),
}

// TableMetadata contains the structure information for a source table or file
type TableMetadata struct {
	Schema  string   // Schema name (empty for files)
	Table   string   // Table name or file path
	Columns []Column // Column definitions in source order
}

// Column represents metadata about a source column
type Column struct {
	Name     string // Column name as found in the source
	DataType string // Driver type name, empty for delimited files
}

// NewTableMetadata builds metadata from a plain list of column names
func NewTableMetadata(schema, table string, names []string) *TableMetadata {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		cols = append(cols, Column{Name: n})
	}
	return &TableMetadata{Schema: schema, Table: table, Columns: cols}
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *Column {
	normalizedName := normalizeColumnName(name)
	for i, col := range tm.Columns {
		if normalizeColumnName(col.Name) == normalizedName {
			return &tm.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether the column exists
func (tm *TableMetadata) HasColumn(name string) bool {
	return tm.GetColumnByName(name) != nil
}

// MissingColumns returns the mandatory columns absent from the source, in contract order
func (tm *TableMetadata) MissingColumns() []string {
	var missing []string
	for _, name := range MandatoryColumns {
		if !tm.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// FullName returns the qualified table name
func (tm *TableMetadata) FullName() string {
	if tm.Schema == "" {
		return tm.Table
	}
	return tm.Schema + "." + tm.Table
}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
