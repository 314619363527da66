// Package artifact stores a trained model together with the vocabularies and
// metrics it was trained with, as one versioned JSON document.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/David-Botos/import-cif/pkg/cleaner"
	"github.com/David-Botos/import-cif/pkg/model"
	"github.com/David-Botos/import-cif/pkg/regression"
)

// SchemaVersion is bumped whenever the document layout changes incompatibly
const SchemaVersion = 1

// Artifact is everything the serving side needs to answer predictions
type Artifact struct {
	SchemaVersion int               `json:"schema_version"`
	ModelVersion  string            `json:"model_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Model         *regression.Model `json:"model"`
	Vocabulary    model.Vocabulary  `json:"vocabulary"`
	Metrics       model.Metrics     `json:"metrics"`
	Training      TrainingInfo      `json:"training"`
	Data          DataReport        `json:"data"`
}

// TrainingInfo describes the run that produced the artifact
type TrainingInfo struct {
	RunID        string  `json:"run_id"`
	Source       string  `json:"source"`
	TrainRows    int     `json:"train_rows"`
	TestRows     int     `json:"test_rows"`
	TestFraction float64 `json:"test_fraction"`
	SplitSeed    int64   `json:"split_seed"`
}

// DataReport is the persisted summary of the cleaning pass
type DataReport struct {
	RowsRead           int            `json:"rows_read"`
	RowsKept           int            `json:"rows_kept"`
	Dropped            map[string]int `json:"dropped"`
	DeadColumns        []string       `json:"dead_columns"`
	MalformedValues    int            `json:"malformed_values"`
	FilledOtherCharges int            `json:"filled_other_charges"`
	ImputedFreight     int            `json:"imputed_freight"`
	FallbackImportType int            `json:"fallback_import_type"`
	FreightMean        *float64       `json:"freight_mean,omitempty"`
}

// NewDataReport copies the cleaning report into its persisted form
func NewDataReport(r *cleaner.Report) DataReport {
	if r == nil {
		return DataReport{Dropped: map[string]int{}}
	}
	dr := DataReport{
		RowsRead:           r.RowsRead,
		RowsKept:           r.RowsKept,
		Dropped:            make(map[string]int, len(r.Dropped)),
		DeadColumns:        append([]string(nil), r.DeadColumns...),
		MalformedValues:    r.MalformedValues,
		FilledOtherCharges: r.FilledOtherCharges,
		ImputedFreight:     r.ImputedFreight,
		FallbackImportType: r.FallbackImportType,
	}
	for reason, n := range r.Dropped {
		dr.Dropped[string(reason)] = n
	}
	if r.FreightMean.Valid {
		mean := r.FreightMean.Value
		dr.FreightMean = &mean
	}
	return dr
}

// New stamps a fresh model version on a trained model
func New(m *regression.Model, vocab model.Vocabulary, metrics model.Metrics, info TrainingInfo, data DataReport) *Artifact {
	return &Artifact{
		SchemaVersion: SchemaVersion,
		ModelVersion:  uuid.NewString(),
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
		Model:         m,
		Vocabulary:    vocab,
		Metrics:       metrics,
		Training:      info,
		Data:          data,
	}
}

// LoadError means the artifact is missing, unreadable or incompatible
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load model artifact %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Save writes the artifact next to path and renames it into place, so a
// reader never sees a partial file
func Save(path string, a *Artifact) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}

// Load reads and validates an artifact. Every failure is a *LoadError.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("corrupt artifact: %w", err)}
	}
	if err := a.Validate(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &a, nil
}

// Validate checks that the artifact is complete and self-consistent
func (a *Artifact) Validate() error {
	if a.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (expected %d)", a.SchemaVersion, SchemaVersion)
	}
	if a.ModelVersion == "" {
		return errors.New("model version is empty")
	}
	if a.Model == nil || a.Model.Encoder == nil {
		return errors.New("model is missing")
	}
	if len(a.Model.Coefficients) != a.Model.Encoder.Width() {
		return fmt.Errorf("model has %d coefficients for %d encoded columns",
			len(a.Model.Coefficients), a.Model.Encoder.Width())
	}
	if a.Vocabulary.Empty() {
		return errors.New("vocabulary is incomplete")
	}
	for field, values := range map[string][]string{
		model.FieldCustomsGroup: a.Vocabulary.CustomsGroups,
		model.FieldOriginArea:   a.Vocabulary.OriginAreas,
		model.FieldImportType:   a.Vocabulary.ImportTypes,
	} {
		if !sort.StringsAreSorted(values) {
			return fmt.Errorf("%s vocabulary is not sorted", field)
		}
	}
	return nil
}
