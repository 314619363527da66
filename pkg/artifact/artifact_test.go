package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/features"
	"github.com/David-Botos/import-cif/pkg/model"
	"github.com/David-Botos/import-cif/pkg/regression"
)

func trainedArtifact(t *testing.T) *Artifact {
	t.Helper()

	var samples []model.Sample
	for month := 1; month <= 12; month++ {
		for i, area := range []string{"América", "Asia"} {
			fv, err := features.EngineerOne(model.Vocabulary{
				CustomsGroups: []string{"Aereas y Terrestres"},
				OriginAreas:   []string{"América", "Asia"},
				ImportTypes:   []string{"Otros"},
			}, month, "Aereas y Terrestres", area, "Otros")
			require.NoError(t, err)
			samples = append(samples, model.Sample{Features: fv, Target: float64(month + 10*i)})
		}
	}

	m, err := regression.Fit(samples, model.Vocabulary{})
	require.NoError(t, err)

	report := cleaner.NewReport(30)
	report.RowsKept = 24
	report.Dropped[cleaner.DropSentinelCountry] = 6
	report.FreightMean = model.Some(12.5)

	return New(m, features.BuildVocabulary(samples), model.Metrics{MAE: 1, RMSE: 2, R2: 0.5},
		TrainingInfo{RunID: "run", Source: "test.csv", TrainRows: 19, TestRows: 5, TestFraction: 0.2, SplitSeed: 42},
		NewDataReport(report))
}

func TestSaveAndLoad(t *testing.T) {
	a := trainedArtifact(t)
	path := filepath.Join(t.TempDir(), "nested", "cif_model.json")

	require.NoError(t, Save(path, a))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, loaded.SchemaVersion)
	assert.Equal(t, a.ModelVersion, loaded.ModelVersion)
	assert.True(t, a.CreatedAt.Equal(loaded.CreatedAt))
	assert.Equal(t, a.Vocabulary, loaded.Vocabulary)
	assert.Equal(t, a.Metrics, loaded.Metrics)
	assert.Equal(t, a.Training, loaded.Training)
	assert.Equal(t, 6, loaded.Data.Dropped["sentinel_country"])
	require.NotNil(t, loaded.Data.FreightMean)
	assert.Equal(t, 12.5, *loaded.Data.FreightMean)

	// the reloaded model predicts exactly like the original
	fv, err := features.EngineerOne(loaded.Vocabulary, 7, "Aereas y Terrestres", "Asia", "Otros")
	require.NoError(t, err)
	want, err := a.Model.Predict(fv)
	require.NoError(t, err)
	got, err := loaded.Model.Predict(fv)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version": 1, "model": `), 0o600))

	_, err := Load(path)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), "corrupt")
}

func TestLoadRejectsIncompatibleDocuments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
		want   string
	}{
		{"schema version", func(a *Artifact) { a.SchemaVersion = 2 }, "schema version"},
		{"no model", func(a *Artifact) { a.Model = nil }, "model is missing"},
		{"coefficients", func(a *Artifact) { a.Model.Coefficients = a.Model.Coefficients[:1] }, "coefficients"},
		{"vocabulary", func(a *Artifact) { a.Vocabulary.ImportTypes = nil }, "vocabulary"},
		{"unsorted", func(a *Artifact) { a.Vocabulary.OriginAreas = []string{"Asia", "América"} }, "not sorted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := trainedArtifact(t)
			tt.mutate(a)

			path := filepath.Join(t.TempDir(), "model.json")
			assert.Error(t, Save(path, a))

			// bypass Save's own validation
			data, err := json.Marshal(a)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			_, err = Load(path)
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
