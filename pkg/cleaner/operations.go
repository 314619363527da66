// pkg/cleaner/operations.go
package cleaner

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/import-cif/pkg/model"
)

// NormalizeNumber converts locale formatted text ("1.234,5") into a float.
// '.' is a thousands separator and ',' the decimal separator. Blank text and
// the "-" placeholder are missing. The second result is false when non-blank
// text could not be parsed; the value is then missing, never zero.
func NormalizeNumber(text string) (model.NullFloat, bool) {
	s := strings.ReplaceAll(text, ".", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return model.NullFloat{}, true
	}

	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.NullFloat{}, false
	}

	// "nan" is how an empty cell round-trips through some exports
	if math.IsNaN(v) {
		return model.NullFloat{}, true
	}
	if math.IsInf(v, 0) {
		return model.NullFloat{}, false
	}
	return model.Some(v), true
}

// normalizeRecord coerces the measures of one raw record. It returns the
// number of malformed values that were turned into missing.
func normalizeRecord(raw model.RawRecord, present [model.MeasureCount]bool) (model.CleanRecord, int) {
	rec := model.CleanRecord{
		Line:             raw.Line,
		Period:           strings.TrimSpace(raw.Period),
		CustomsOffice:    strings.TrimSpace(raw.CustomsOffice),
		OriginCountry:    strings.TrimSpace(raw.OriginCountry),
		DeclarantCountry: strings.TrimSpace(raw.DeclarantCountry),
		ImportRegime:     strings.TrimSpace(raw.ImportRegime),
	}

	malformed := 0
	for col, text := range raw.Measures {
		if !present[col] {
			continue
		}
		v, ok := NormalizeNumber(text)
		if !ok {
			malformed++
		}
		rec.Measures[col] = v
	}
	return rec, malformed
}

// presentMeasures reports which measure columns exist in the source
func presentMeasures(metadata *model.TableMetadata) [model.MeasureCount]bool {
	var present [model.MeasureCount]bool
	for _, col := range model.MeasureColumns() {
		present[col] = metadata.HasColumn(col.Code())
	}
	return present
}

// deadColumns returns the present measure columns whose batch-wide sum is
// exactly zero. Missing values do not contribute, so an all-missing column is
// dead as well.
func deadColumns(records []model.CleanRecord, present [model.MeasureCount]bool) []model.MeasureColumn {
	var sums [model.MeasureCount]float64
	for _, rec := range records {
		for col, v := range rec.Measures {
			if v.Valid {
				sums[col] += v.Value
			}
		}
	}

	var dead []model.MeasureColumn
	for _, col := range model.MeasureColumns() {
		if present[col] && sums[col] == 0 {
			dead = append(dead, col)
		}
	}
	return dead
}

// columnMean averages the present values of a column
func columnMean(records []model.CleanRecord, col model.MeasureColumn) (float64, bool) {
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if v := rec.Measures[col]; v.Valid {
			values = append(values, v.Value)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}
