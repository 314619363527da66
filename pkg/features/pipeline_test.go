package features

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/lookup"
	"github.com/David-Botos/import-cif/pkg/model"
	"github.com/David-Botos/import-cif/pkg/source"
)

const csvHeader = "fech,adua,paispro,copaex,regimen,pbk,flete,vacid,seguros,otrosg,naban"

func batchFromCSV(t *testing.T, rows ...string) model.RawBatch {
	t.Helper()
	data := csvHeader + "\n" + strings.Join(rows, "\n") + "\n"
	batch, err := source.ReadCSV(context.Background(), strings.NewReader(data), "test.csv", ',')
	require.NoError(t, err)
	return batch
}

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(zap.NewNop(), cleaner.Options{})
	require.NoError(t, err)
	return p
}

func TestCleanAndEngineerMapsOffices(t *testing.T) {
	batch := batchFromCSV(t,
		"2405,48,215,169,C100,10,5,\"2,5\",1,0,0",
		"2407,90,249,169,C100,10,5,3,1,0,0",
	)

	samples, report, err := newPipeline(t).CleanAndEngineer(batch)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, lookup.GroupMaritime, samples[0].Features.CustomsGroup)
	assert.Equal(t, lookup.AreaAsia, samples[0].Features.OriginArea)
	assert.Equal(t, lookup.ImportOrdinary, samples[0].Features.ImportType)
	assert.Equal(t, 5, samples[0].Features.Month)
	assert.InDelta(t, 2.5, samples[0].Target, 1e-12)

	assert.Equal(t, lookup.GroupAirLand, samples[1].Features.CustomsGroup)
	assert.Equal(t, lookup.AreaAmerica, samples[1].Features.OriginArea)
	assert.Equal(t, 7, samples[1].Features.Month)

	assert.Equal(t, 2, report.RowsKept)
	assert.Zero(t, report.TotalDropped())
	assert.Equal(t, []string{"naban", "otrosg"}, report.DeadColumns)
}

func TestCleanAndEngineerRegimePrefix(t *testing.T) {
	batch := batchFromCSV(t,
		"2405,48,215,169,C300,10,5,3,1,0,1",
		"2405,48,215,169,c2xx,10,5,3,1,0,1",
		"2405,48,215,169,ZZ9,10,5,3,1,0,1",
		"2405,48,215,169,,10,5,3,1,0,1",
	)

	samples, report, err := newPipeline(t).CleanAndEngineer(batch)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	assert.Equal(t, lookup.ImportReimport, samples[0].Features.ImportType)
	assert.Equal(t, lookup.ImportFranchise, samples[1].Features.ImportType)
	assert.Equal(t, lookup.ImportOther, samples[2].Features.ImportType)
	assert.Equal(t, lookup.ImportOther, samples[3].Features.ImportType)
	assert.Equal(t, 2, report.FallbackImportType)
}

func TestCleanAndEngineerDropsPerField(t *testing.T) {
	batch := batchFromCSV(t,
		"2405,48,216,169,C100,10,5,3,1,0,1", // sentinel origin country
		"2405,48,654,169,C100,10,5,3,1,0,1", // sentinel origin country
		"2405,48,5,169,C100,10,5,3,1,0,1",   // unmapped origin country
		"2413,48,215,169,C100,10,5,3,1,0,1", // period without month
		"abc,48,215,169,C100,10,5,3,1,0,1",  // unparseable period
		"2405,24,215,169,C100,10,5,3,1,0,1", // sentinel office
		"2405,99,215,169,C100,10,5,3,1,0,1", // unknown office
		"2405,27,215,169,C100,10,5,3,1,0,1", // office without group
		"2405,48,215,216,C100,10,5,3,1,0,1", // sentinel declarant
		"2405,48,215,169,C100,10,5,,1,0,1",  // missing target
		"2405,48,215,169,C100,10,5,3,,0,1",  // missing insurance
		"2405,48,215,169,C100,,5,3,1,0,1",   // missing gross weight
		"2405.0,48,215,169,C100,10,5,3,1,0,1",
	)

	samples, report, err := newPipeline(t).CleanAndEngineer(batch)
	require.NoError(t, err)

	require.Len(t, samples, 1)
	assert.Equal(t, 14, samples[0].Line)
	assert.Equal(t, 5, samples[0].Features.Month)

	assert.Equal(t, 13, report.RowsRead)
	assert.Equal(t, 1, report.RowsKept)
	assert.Equal(t, 12, report.TotalDropped())
	assert.Equal(t, map[cleaner.DropReason]int{
		cleaner.DropSentinelCountry:       2,
		cleaner.DropUnmappedCountry:       1,
		cleaner.DropUnmappedPeriod:        2,
		cleaner.DropSentinelCustomsOffice: 1,
		cleaner.DropUnmappedCustomsOffice: 1,
		cleaner.DropUnmappedCustomsGroup:  1,
		cleaner.DropSentinelDeclarant:     1,
		cleaner.DropMissingTarget:         1,
		cleaner.DropMissingInsurance:      1,
		cleaner.DropMissingGrossWeight:    1,
	}, report.Dropped)
}

func TestCleanAndEngineerExcludesSentinelCountry(t *testing.T) {
	batch := batchFromCSV(t,
		"2405,48,216,169,C100,10,5,3,1,0,1",
		"2405,48,215,169,C100,10,5,3,1,0,1",
	)

	samples, _, err := newPipeline(t).CleanAndEngineer(batch)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 3, samples[0].Line)
}

func TestCleanAndEngineerRejectsMissingColumns(t *testing.T) {
	batch := model.RawBatch{Metadata: model.NewTableMetadata("", "thin.csv", []string{"fech", "adua"})}

	_, _, err := newPipeline(t).CleanAndEngineer(batch)
	var dq *source.DataQualityError
	require.True(t, errors.As(err, &dq))
	assert.Equal(t, []string{"paispro", "regimen", "vacid", "seguros", "pbk"}, dq.Missing)
}

func TestCleanAndEngineerDeadTarget(t *testing.T) {
	batch := batchFromCSV(t, "2405,48,215,169,C100,10,5,0,1,0,1")

	_, _, err := newPipeline(t).CleanAndEngineer(batch)
	assert.ErrorIs(t, err, cleaner.ErrTargetColumnDead)
}

func TestCleanAndEngineerIsIdempotent(t *testing.T) {
	batch := batchFromCSV(t,
		"2401,48,215,169,C100,10,5,3,1,0,1",
		"2412,90,249,169,C200,10,,4,1,,1",
		"2406,3,23,169,C400,10,7,5,1,0,1",
	)
	p := newPipeline(t)

	first, firstReport, err := p.CleanAndEngineer(batch)
	require.NoError(t, err)
	second, secondReport, err := p.CleanAndEngineer(batch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstReport, secondReport)
}

func TestCyclicalMonth(t *testing.T) {
	for m := MinMonth; m <= MaxMonth; m++ {
		s, c := CyclicalMonth(m)
		assert.InDelta(t, math.Sin(2*math.Pi*float64(m)/12), s, 1e-15)
		assert.InDelta(t, math.Cos(2*math.Pi*float64(m)/12), c, 1e-15)
	}

	// December and January are neighbours on the circle
	s12, c12 := CyclicalMonth(12)
	s1, c1 := CyclicalMonth(1)
	s6, c6 := CyclicalMonth(6)
	assert.Less(t, math.Hypot(s12-s1, c12-c1), math.Hypot(s6-s1, c6-c1))
}

func testVocabulary() model.Vocabulary {
	return model.Vocabulary{
		CustomsGroups: []string{lookup.GroupAirLand, lookup.GroupMaritime},
		OriginAreas:   []string{lookup.AreaAmerica, lookup.AreaAsia, lookup.AreaEurope},
		ImportTypes:   []string{lookup.ImportOrdinary, lookup.ImportReimport},
	}
}

func TestEngineerOne(t *testing.T) {
	fv, err := EngineerOne(testVocabulary(), 5, lookup.GroupMaritime, lookup.AreaAsia, lookup.ImportOrdinary)
	require.NoError(t, err)

	assert.Equal(t, 5, fv.Month)
	assert.InDelta(t, 0.5, fv.SinMonth, 1e-9)
	assert.InDelta(t, -0.8660254, fv.CosMonth, 1e-6)
	assert.Equal(t, lookup.GroupMaritime, fv.CustomsGroup)
	assert.Equal(t, lookup.AreaAsia, fv.OriginArea)
	assert.Equal(t, lookup.ImportOrdinary, fv.ImportType)
}

func TestEngineerOneRejectsMonthOutOfRange(t *testing.T) {
	for _, m := range []int{0, 13, -1, 100} {
		fv, err := EngineerOne(testVocabulary(), m, lookup.GroupMaritime, lookup.AreaAsia, lookup.ImportOrdinary)
		require.Error(t, err)
		assert.Equal(t, model.FeatureVector{}, fv)
		assert.True(t, errors.Is(err, ErrValidation))

		var oor *OutOfRangeError
		require.True(t, errors.As(err, &oor))
		assert.Equal(t, model.FieldMonth, oor.Field)
		assert.Equal(t, m, oor.Value)
	}
}

func TestEngineerOneRejectsUnknownCategories(t *testing.T) {
	tests := []struct {
		name      string
		group     string
		area      string
		typ       string
		wantField string
	}{
		{"group", "Fluvial", lookup.AreaAsia, lookup.ImportOrdinary, model.FieldCustomsGroup},
		{"area", lookup.GroupMaritime, "China", lookup.ImportOrdinary, model.FieldOriginArea},
		{"import type", lookup.GroupMaritime, lookup.AreaAsia, "Ordinaria", model.FieldImportType},
		{"case matters", lookup.GroupMaritime, "asia", lookup.ImportOrdinary, model.FieldOriginArea},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EngineerOne(testVocabulary(), 5, tt.group, tt.area, tt.typ)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *VocabularyError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestBatchAndSingleAgree(t *testing.T) {
	var rows []string
	for m := 1; m <= 12; m++ {
		rows = append(rows, "24"+twoDigits(m)+",48,215,169,C100,10,5,3,1,0,1")
	}
	rows = append(rows, "2403,90,23,169,C300,10,5,3,1,0,1")

	samples, _, err := newPipeline(t).CleanAndEngineer(batchFromCSV(t, rows...))
	require.NoError(t, err)
	require.Len(t, samples, 13)

	vocab := BuildVocabulary(samples)
	assert.Equal(t, []string{lookup.GroupAirLand, lookup.GroupMaritime}, vocab.CustomsGroups)
	assert.Equal(t, []string{lookup.AreaAsia, lookup.AreaEurope}, vocab.OriginAreas)
	assert.Equal(t, []string{lookup.ImportOrdinary, lookup.ImportReimport}, vocab.ImportTypes)

	for _, s := range samples {
		f := s.Features
		fv, err := EngineerOne(vocab, f.Month, f.CustomsGroup, f.OriginArea, f.ImportType)
		require.NoError(t, err)
		// bit-identical, not merely close
		assert.Equal(t, f, fv)
	}
}

func TestBuildVocabularyEmpty(t *testing.T) {
	vocab := BuildVocabulary(nil)
	assert.True(t, vocab.Empty())
	assert.False(t, vocab.HasOriginArea(lookup.AreaAsia))
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return "1" + string(rune('0'+n-10))
}
