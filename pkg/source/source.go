// Package source reads training rows from a delimited file or a warehouse
// table and hands them to the pipeline as raw text records.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/David-Botos/import-cif/pkg/model"
)

// Source produces the raw batch for one training run
type Source interface {
	Read(ctx context.Context) (model.RawBatch, error)
	Name() string
}

// DataQualityError reports mandatory columns absent from a source
type DataQualityError struct {
	Source  string
	Missing []string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("source %s is missing mandatory columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// CheckColumns returns a DataQualityError when metadata lacks mandatory columns
func CheckColumns(metadata *model.TableMetadata) error {
	if missing := metadata.MissingColumns(); len(missing) > 0 {
		return &DataQualityError{Source: metadata.FullName(), Missing: missing}
	}
	return nil
}

// rowMapper places cells of a source row into RawRecord fields by header position
type rowMapper struct {
	period, office, origin, declarant, regime int
	measures                                  [model.MeasureCount]int
}

func newRowMapper(metadata *model.TableMetadata) rowMapper {
	index := make(map[string]int, len(metadata.Columns))
	for i, col := range metadata.Columns {
		name := strings.ToLower(strings.TrimSpace(col.Name))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	pos := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		return -1
	}

	m := rowMapper{
		period:    pos(model.ColumnPeriod),
		office:    pos(model.ColumnCustomsOffice),
		origin:    pos(model.ColumnOriginCountry),
		declarant: pos(model.ColumnDeclarantCountry),
		regime:    pos(model.ColumnImportRegime),
	}
	for _, col := range model.MeasureColumns() {
		m.measures[col] = pos(col.Code())
	}
	return m
}

// record builds a RawRecord; short rows yield empty cells
func (m rowMapper) record(line int, cells []string) model.RawRecord {
	cell := func(i int) string {
		if i < 0 || i >= len(cells) {
			return ""
		}
		return cells[i]
	}

	rec := model.RawRecord{
		Line:             line,
		Period:           cell(m.period),
		CustomsOffice:    cell(m.office),
		OriginCountry:    cell(m.origin),
		DeclarantCountry: cell(m.declarant),
		ImportRegime:     cell(m.regime),
	}
	for col, i := range m.measures {
		rec.Measures[col] = cell(i)
	}
	return rec
}
