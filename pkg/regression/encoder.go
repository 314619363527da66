package regression

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/import-cif/pkg/model"
)

// ErrUnknownCategory is returned when encoding a value the encoder was not fitted on
var ErrUnknownCategory = errors.New("unknown category")

// NumericScaler standardises one numeric feature with the training mean and
// population standard deviation
type NumericScaler struct {
	Field string  `json:"field"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// CategoricalEncoder one-hot encodes one field. Categories are sorted and the
// first one is the reference level, encoded as all zeros.
type CategoricalEncoder struct {
	Field      string   `json:"field"`
	Categories []string `json:"categories"`
}

// Encoder turns feature vectors into design matrix rows. The intercept is not
// part of the row.
type Encoder struct {
	Numeric     []NumericScaler      `json:"numeric"`
	Categorical []CategoricalEncoder `json:"categorical"`
}

var numericFields = []string{model.FieldMonth, model.FieldSinMonth, model.FieldCosMonth}

var categoricalFields = []string{model.FieldCustomsGroup, model.FieldOriginArea, model.FieldImportType}

func numericValue(fv model.FeatureVector, field string) float64 {
	switch field {
	case model.FieldMonth:
		return float64(fv.Month)
	case model.FieldSinMonth:
		return fv.SinMonth
	default:
		return fv.CosMonth
	}
}

func categoricalValue(fv model.FeatureVector, field string) string {
	switch field {
	case model.FieldCustomsGroup:
		return fv.CustomsGroup
	case model.FieldOriginArea:
		return fv.OriginArea
	default:
		return fv.ImportType
	}
}

// FitEncoder learns scaling parameters from the training rows. Category
// levels come from vocab when it is complete, so that levels seen only in
// held-out rows still have a column; otherwise they are collected from rows.
func FitEncoder(rows []model.FeatureVector, vocab model.Vocabulary) (*Encoder, error) {
	if len(rows) == 0 {
		return nil, errors.New("cannot fit encoder on an empty set")
	}

	enc := &Encoder{}
	values := make([]float64, len(rows))
	for _, field := range numericFields {
		for i, fv := range rows {
			values[i] = numericValue(fv, field)
		}
		mean, std := stat.PopMeanStdDev(values, nil)
		if std == 0 {
			std = 1
		}
		enc.Numeric = append(enc.Numeric, NumericScaler{Field: field, Mean: mean, Scale: std})
	}

	levels := map[string][]string{
		model.FieldCustomsGroup: vocab.CustomsGroups,
		model.FieldOriginArea:   vocab.OriginAreas,
		model.FieldImportType:   vocab.ImportTypes,
	}
	for _, field := range categoricalFields {
		var cats []string
		if vocab.Empty() {
			cats = distinct(rows, field)
		} else {
			cats = append([]string(nil), levels[field]...)
			sort.Strings(cats)
			for _, fv := range rows {
				if v := categoricalValue(fv, field); !contains(cats, v) {
					return nil, fmt.Errorf("%w: %s %q missing from vocabulary", ErrUnknownCategory, field, v)
				}
			}
		}
		enc.Categorical = append(enc.Categorical, CategoricalEncoder{Field: field, Categories: cats})
	}

	return enc, nil
}

func distinct(rows []model.FeatureVector, field string) []string {
	seen := make(map[string]struct{})
	for _, fv := range rows {
		seen[categoricalValue(fv, field)] = struct{}{}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

func contains(sorted []string, v string) bool {
	i := sort.SearchStrings(sorted, v)
	return i < len(sorted) && sorted[i] == v
}

// Width is the number of design columns produced per row
func (e *Encoder) Width() int {
	w := len(e.Numeric)
	for _, c := range e.Categorical {
		if len(c.Categories) > 0 {
			w += len(c.Categories) - 1
		}
	}
	return w
}

// ColumnNames names the design columns, e.g. "origin_area=Asia"
func (e *Encoder) ColumnNames() []string {
	names := make([]string, 0, e.Width())
	for _, n := range e.Numeric {
		names = append(names, n.Field)
	}
	for _, c := range e.Categorical {
		for _, cat := range dropFirst(c.Categories) {
			names = append(names, c.Field+"="+cat)
		}
	}
	return names
}

// Encode writes the design row of fv into dst, which must hold Width() values
func (e *Encoder) Encode(fv model.FeatureVector, dst []float64) error {
	if len(dst) != e.Width() {
		return fmt.Errorf("destination has %d columns, encoder produces %d", len(dst), e.Width())
	}

	j := 0
	for _, n := range e.Numeric {
		dst[j] = (numericValue(fv, n.Field) - n.Mean) / n.Scale
		j++
	}
	for _, c := range e.Categorical {
		value := categoricalValue(fv, c.Field)
		i := sort.SearchStrings(c.Categories, value)
		if !contains(c.Categories, value) {
			return fmt.Errorf("%w: %s %q", ErrUnknownCategory, c.Field, value)
		}
		for k := 1; k < len(c.Categories); k++ {
			dst[j] = 0
			if k == i {
				dst[j] = 1
			}
			j++
		}
	}
	return nil
}

func dropFirst(s []string) []string {
	if len(s) == 0 {
		return s
	}
	return s[1:]
}
