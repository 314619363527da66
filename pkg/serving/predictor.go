// Package serving answers predictions from a loaded artifact. It shares the
// feature encoding with training through features.EngineerOne.
package serving

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/artifact"
	"github.com/David-Botos/import-cif/pkg/features"
	"github.com/David-Botos/import-cif/pkg/model"
)

// Request is a prediction request in the training vocabulary
type Request struct {
	Month        int    `json:"month"`
	OriginArea   string `json:"origin_area"`
	CustomsGroup string `json:"customs_group"`
	ImportType   string `json:"import_type"`
}

// Prediction echoes the request next to the predicted CIF per kilogram
type Prediction struct {
	Prediction   float64 `json:"prediction"`
	Month        int     `json:"month"`
	OriginArea   string  `json:"origin_area"`
	CustomsGroup string  `json:"customs_group"`
	ImportType   string  `json:"import_type"`
}

// Info is the read-only description of the loaded model
type Info struct {
	ModelVersion string                `json:"model_version"`
	CreatedAt    time.Time             `json:"created_at"`
	Vocabulary   model.Vocabulary      `json:"vocabulary"`
	Metrics      model.Metrics         `json:"metrics"`
	Training     artifact.TrainingInfo `json:"training"`
	Data         artifact.DataReport   `json:"data"`
	Features     []string              `json:"features"`
}

// Predictor holds an immutable artifact and is safe for concurrent use
type Predictor struct {
	artifact *artifact.Artifact
	logger   *zap.Logger
}

// NewPredictor wraps an already loaded artifact
func NewPredictor(a *artifact.Artifact, logger *zap.Logger) (*Predictor, error) {
	if a == nil {
		return nil, errors.New("artifact cannot be nil")
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact: %w", err)
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Predictor{artifact: a, logger: logger.Named("predictor")}, nil
}

// LoadPredictor reads the artifact at path. Load failures are returned as
// *artifact.LoadError.
func LoadPredictor(path string, logger *zap.Logger) (*Predictor, error) {
	a, err := artifact.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := NewPredictor(a, logger)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Loaded model artifact",
		zap.String("path", path),
		zap.String("modelVersion", a.ModelVersion),
		zap.Time("createdAt", a.CreatedAt))
	return p, nil
}

// Predict validates the request against the trained vocabulary and scores it.
// Validation failures match features.ErrValidation.
func (p *Predictor) Predict(req Request) (Prediction, error) {
	fv, err := features.EngineerOne(p.artifact.Vocabulary, req.Month, req.CustomsGroup, req.OriginArea, req.ImportType)
	if err != nil {
		return Prediction{}, err
	}

	y, err := p.artifact.Model.Predict(fv)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to score request: %w", err)
	}

	return Prediction{
		Prediction:   y,
		Month:        req.Month,
		OriginArea:   req.OriginArea,
		CustomsGroup: req.CustomsGroup,
		ImportType:   req.ImportType,
	}, nil
}

// ModelVersion returns the version stamped on the artifact
func (p *Predictor) ModelVersion() string {
	return p.artifact.ModelVersion
}

// Info describes the loaded model. The returned slices are copies.
func (p *Predictor) Info() Info {
	a := p.artifact
	data := a.Data
	data.Dropped = make(map[string]int, len(a.Data.Dropped))
	for k, v := range a.Data.Dropped {
		data.Dropped[k] = v
	}
	data.DeadColumns = append([]string(nil), a.Data.DeadColumns...)

	return Info{
		ModelVersion: a.ModelVersion,
		CreatedAt:    a.CreatedAt,
		Vocabulary: model.Vocabulary{
			CustomsGroups: append([]string(nil), a.Vocabulary.CustomsGroups...),
			OriginAreas:   append([]string(nil), a.Vocabulary.OriginAreas...),
			ImportTypes:   append([]string(nil), a.Vocabulary.ImportTypes...),
		},
		Metrics:  a.Metrics,
		Training: a.Training,
		Data:     data,
		Features: a.Model.Encoder.ColumnNames(),
	}
}
