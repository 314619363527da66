// Package features turns raw import records into model feature vectors. The
// batch path (CleanAndEngineer) and the request path (EngineerOne) share the
// same encoding functions so that training and serving cannot drift apart.
package features

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/lookup"
	"github.com/David-Botos/import-cif/pkg/model"
	"github.com/David-Botos/import-cif/pkg/source"
)

// Pipeline runs the cleaning and feature engineering steps over a batch
type Pipeline struct {
	cleaner *cleaner.DataCleaner
	logger  *zap.Logger
}

// NewPipeline creates a pipeline. opts controls audit collection.
func NewPipeline(logger *zap.Logger, opts cleaner.Options) (*Pipeline, error) {
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("feature-pipeline")

	c, err := cleaner.NewDataCleaner(logger, opts)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cleaner: c, logger: logger}, nil
}

// CleanAndEngineer cleans a batch and returns one sample per surviving row,
// in input order. Row-level problems are counted in the report; only a
// missing mandatory column or a dead target column fail the batch.
func (p *Pipeline) CleanAndEngineer(batch model.RawBatch) ([]model.Sample, *cleaner.Report, error) {
	if batch.Metadata != nil {
		if err := source.CheckColumns(batch.Metadata); err != nil {
			return nil, nil, err
		}
	}

	records, report, err := p.cleaner.CleanBatch(batch)
	if err != nil {
		return nil, report, err
	}

	checkDeclarant := batch.Metadata.HasColumn(model.ColumnDeclarantCountry)
	samples := make([]model.Sample, 0, len(records))
	for _, rec := range records {
		s, ok := p.engineerRecord(report, rec, checkDeclarant)
		if ok {
			samples = append(samples, s)
		}
	}

	report.RowsKept = len(samples)
	p.cleaner.LogReport(report)
	return samples, report, nil
}

// engineerRecord applies the categorical mappings, the cyclical encoding and
// the final projection to one cleaned record
func (p *Pipeline) engineerRecord(report *cleaner.Report, rec model.CleanRecord, checkDeclarant bool) (model.Sample, bool) {
	// Step 4: categorical mapping, field by field
	period, ok := parseCode(rec.Period)
	month, mapped := lookup.Month(period)
	if !ok || !mapped {
		p.cleaner.Drop(report, rec.Line, model.ColumnPeriod, rec.Period, cleaner.DropUnmappedPeriod)
		return model.Sample{}, false
	}

	office, ok := parseCode(rec.CustomsOffice)
	if ok && office == lookup.SentinelCustomsOffice {
		p.cleaner.Drop(report, rec.Line, model.ColumnCustomsOffice, rec.CustomsOffice, cleaner.DropSentinelCustomsOffice)
		return model.Sample{}, false
	}
	officeName, mapped := lookup.OfficeName(office)
	if !ok || !mapped {
		p.cleaner.Drop(report, rec.Line, model.ColumnCustomsOffice, rec.CustomsOffice, cleaner.DropUnmappedCustomsOffice)
		return model.Sample{}, false
	}
	group, mapped := lookup.GroupForOffice(officeName)
	if !mapped {
		p.cleaner.Drop(report, rec.Line, model.ColumnCustomsOffice, rec.CustomsOffice, cleaner.DropUnmappedCustomsGroup)
		return model.Sample{}, false
	}

	country, ok := parseCode(rec.OriginCountry)
	if ok && lookup.IsSentinelOriginCountry(country) {
		p.cleaner.Drop(report, rec.Line, model.ColumnOriginCountry, rec.OriginCountry, cleaner.DropSentinelCountry)
		return model.Sample{}, false
	}
	area, mapped := lookup.OriginArea(country)
	if !ok || !mapped {
		p.cleaner.Drop(report, rec.Line, model.ColumnOriginCountry, rec.OriginCountry, cleaner.DropUnmappedCountry)
		return model.Sample{}, false
	}

	if checkDeclarant {
		if declarant, ok := parseCode(rec.DeclarantCountry); ok && declarant == lookup.SentinelDeclarantCountry {
			p.cleaner.Drop(report, rec.Line, model.ColumnDeclarantCountry, rec.DeclarantCountry, cleaner.DropSentinelDeclarant)
			return model.Sample{}, false
		}
	}

	importType, mapped := lookup.ImportType(rec.ImportRegime)
	if !mapped {
		report.FallbackImportType++
	}

	// Step 6: projection, the target is the last field that can still be missing
	target := rec.Measures[model.CIFValuePerKg]
	if !target.Valid {
		p.cleaner.Drop(report, rec.Line, model.CIFValuePerKg.Code(), "", cleaner.DropMissingTarget)
		return model.Sample{}, false
	}

	// Step 5: cyclical encoding
	return model.Sample{
		Line:     rec.Line,
		Features: newFeatureVector(month, group, area, importType),
		Target:   target.Value,
	}, true
}

// parseCode reads an integer code that may have been exported as a float ("2405.0").
// Leading zeros are decimal.
func parseCode(text string) (int, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
