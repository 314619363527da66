package serving

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/artifact"
	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/features"
	"github.com/David-Botos/import-cif/pkg/lookup"
	"github.com/David-Botos/import-cif/pkg/model"
	"github.com/David-Botos/import-cif/pkg/regression"
)

func testArtifact(t *testing.T) *artifact.Artifact {
	t.Helper()

	vocab := model.Vocabulary{
		CustomsGroups: []string{lookup.GroupAirLand, lookup.GroupMaritime},
		OriginAreas:   []string{lookup.AreaAmerica, lookup.AreaAsia, lookup.AreaEurope},
		ImportTypes:   []string{lookup.ImportOrdinary, lookup.ImportTemporaryReexp, lookup.ImportReimport},
	}

	var samples []model.Sample
	for month := 1; month <= 12; month++ {
		for gi, group := range vocab.CustomsGroups {
			for ai, area := range vocab.OriginAreas {
				for ti, importType := range vocab.ImportTypes {
					fv, err := features.EngineerOne(vocab, month, group, area, importType)
					require.NoError(t, err)
					target := 50 + 2*float64(month) + 30*float64(gi) + 7*float64(ai) + 3*float64(ti)
					samples = append(samples, model.Sample{Features: fv, Target: target})
				}
			}
		}
	}

	m, err := regression.Fit(samples, vocab)
	require.NoError(t, err)
	return artifact.New(m, features.BuildVocabulary(samples), model.Metrics{MAE: 0.1, RMSE: 0.2, R2: 0.99},
		artifact.TrainingInfo{RunID: "run-1", Source: "imports.csv", TrainRows: 172, TestRows: 44, TestFraction: 0.2, SplitSeed: 42},
		artifact.NewDataReport(cleaner.NewReport(216)))
}

func TestPredict(t *testing.T) {
	p, err := NewPredictor(testArtifact(t), zap.NewNop())
	require.NoError(t, err)

	got, err := p.Predict(Request{Month: 5, OriginArea: lookup.AreaAsia, CustomsGroup: lookup.GroupMaritime, ImportType: lookup.ImportReimport})
	require.NoError(t, err)
	assert.InDelta(t, 50+10+30+7+6, got.Prediction, 1e-6)
	assert.Equal(t, 5, got.Month)
	assert.Equal(t, lookup.AreaAsia, got.OriginArea)
	assert.Equal(t, lookup.GroupMaritime, got.CustomsGroup)
	assert.Equal(t, lookup.ImportReimport, got.ImportType)
}

func TestPredictValidation(t *testing.T) {
	p, err := NewPredictor(testArtifact(t), zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name string
		req  Request
	}{
		{"month 13", Request{Month: 13, OriginArea: lookup.AreaAsia, CustomsGroup: lookup.GroupMaritime, ImportType: lookup.ImportOrdinary}},
		{"month 0", Request{Month: 0, OriginArea: lookup.AreaAsia, CustomsGroup: lookup.GroupMaritime, ImportType: lookup.ImportOrdinary}},
		{"unknown area", Request{Month: 1, OriginArea: lookup.AreaOceania, CustomsGroup: lookup.GroupMaritime, ImportType: lookup.ImportOrdinary}},
		{"unknown group", Request{Month: 1, OriginArea: lookup.AreaAsia, CustomsGroup: "Bogota", ImportType: lookup.ImportOrdinary}},
		{"unknown type", Request{Month: 1, OriginArea: lookup.AreaAsia, CustomsGroup: lookup.GroupMaritime, ImportType: lookup.ImportOther}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Predict(tt.req)
			assert.ErrorIs(t, err, features.ErrValidation)
		})
	}
}

func TestPredictConcurrent(t *testing.T) {
	p, err := NewPredictor(testArtifact(t), zap.NewNop())
	require.NoError(t, err)

	want, err := p.Predict(Request{Month: 3, OriginArea: lookup.AreaEurope, CustomsGroup: lookup.GroupAirLand, ImportType: lookup.ImportOrdinary})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := p.Predict(Request{Month: 3, OriginArea: lookup.AreaEurope, CustomsGroup: lookup.GroupAirLand, ImportType: lookup.ImportOrdinary})
			if err == nil {
				results[i] = got.Prediction
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, want.Prediction, r)
	}
}

func TestInfoReturnsCopies(t *testing.T) {
	p, err := NewPredictor(testArtifact(t), zap.NewNop())
	require.NoError(t, err)

	info := p.Info()
	assert.Equal(t, p.ModelVersion(), info.ModelVersion)
	assert.Equal(t, "run-1", info.Training.RunID)
	assert.Contains(t, info.Features, "month")

	info.Vocabulary.OriginAreas[0] = "changed"
	assert.Equal(t, lookup.AreaAmerica, p.Info().Vocabulary.OriginAreas[0])
}

func TestLoadPredictor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cif_model.json")
	a := testArtifact(t)
	require.NoError(t, artifact.Save(path, a))

	p, err := LoadPredictor(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, a.ModelVersion, p.ModelVersion())

	_, err = LoadPredictor(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())
	var loadErr *artifact.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestNewPredictorRejectsInvalidArtifact(t *testing.T) {
	_, err := NewPredictor(nil, zap.NewNop())
	assert.Error(t, err)

	a := testArtifact(t)
	a.SchemaVersion = 99
	_, err = NewPredictor(a, zap.NewNop())
	assert.Error(t, err)
}

func TestTranslate(t *testing.T) {
	tr := NewTranslator()

	tests := []struct {
		country    string
		importKind string
		wantArea   string
		wantType   string
	}{
		{"China", "Ordinaria", lookup.AreaAsia, lookup.ImportOrdinary},
		{"Corea del Sur", "Franquicia", lookup.AreaAsia, lookup.ImportFranchise},
		{"Alemania", "Temporal", lookup.AreaEurope, lookup.ImportTemporaryReexp},
		{"México", "Reimportación", lookup.AreaAmerica, lookup.ImportReimport},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			req, err := tr.Translate(DisplayRequest{Month: 4, Country: tt.country, CustomsGroup: lookup.GroupAirLand, ImportKind: tt.importKind})
			require.NoError(t, err)
			assert.Equal(t, Request{Month: 4, OriginArea: tt.wantArea, CustomsGroup: lookup.GroupAirLand, ImportType: tt.wantType}, req)
		})
	}

	_, err := tr.Translate(DisplayRequest{Month: 4, Country: "Japón", ImportKind: "Ordinaria"})
	assert.ErrorIs(t, err, features.ErrValidation)
	assert.EqualError(t, err, `country "Japón" is not a known display value`)

	_, err = tr.Translate(DisplayRequest{Month: 4, Country: "China", ImportKind: "Otra"})
	var dve *DisplayValueError
	require.ErrorAs(t, err, &dve)
	assert.Equal(t, "import_kind", dve.Field)
}

func TestTranslatorListsAndFormat(t *testing.T) {
	tr := NewTranslator()
	assert.Equal(t, []string{"Alemania", "Brasil", "China", "Corea del Sur", "Estados Unidos", "India", "México"}, tr.Countries())
	assert.Equal(t, []string{"Franquicia", "Ordinaria", "Reimportación", "Temporal"}, tr.ImportKinds())
	assert.Equal(t, "1,235 USD/kg", tr.Format(1234.6))
	assert.Equal(t, "12 USD/kg", tr.Format(12.2))
}
