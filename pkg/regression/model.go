// Package regression fits and applies the ordinary least squares model over
// encoded feature vectors.
package regression

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/David-Botos/import-cif/pkg/model"
)

// rcond is the relative singular value cutoff used to decide the rank of the
// design matrix
const rcond = 1e-10

// Model is a fitted linear regression with its encoder
type Model struct {
	Encoder      *Encoder  `json:"encoder"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Fit solves the minimum-norm least squares problem on the training samples.
// Rank deficient designs (a category that always co-occurs with another, or a
// vocabulary level absent from the samples) are handled by truncating small
// singular values; an all-zero column gets a zero coefficient. An empty vocab
// means the levels are taken from the samples.
func Fit(samples []model.Sample, vocab model.Vocabulary) (*Model, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least 2 samples to fit, got %d", len(samples))
	}

	rows := make([]model.FeatureVector, len(samples))
	for i, s := range samples {
		rows[i] = s.Features
	}
	enc, err := FitEncoder(rows, vocab)
	if err != nil {
		return nil, err
	}

	width := enc.Width() + 1
	x := mat.NewDense(len(samples), width, nil)
	y := mat.NewVecDense(len(samples), nil)
	row := make([]float64, width)
	for i, s := range samples {
		row[0] = 1
		if err := enc.Encode(s.Features, row[1:]); err != nil {
			return nil, err
		}
		x.SetRow(i, row)
		y.SetVec(i, s.Target)
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, errors.New("singular value decomposition did not converge")
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return nil, errors.New("design matrix has rank zero")
	}

	var beta mat.VecDense
	svd.SolveVecTo(&beta, y, rank)

	coef := make([]float64, width-1)
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	return &Model{
		Encoder:      enc,
		Intercept:    beta.AtVec(0),
		Coefficients: coef,
	}, nil
}

// Predict evaluates the model on one feature vector
func (m *Model) Predict(fv model.FeatureVector) (float64, error) {
	if m.Encoder == nil {
		return 0, errors.New("model has no encoder")
	}
	if len(m.Coefficients) != m.Encoder.Width() {
		return 0, fmt.Errorf("model has %d coefficients for %d encoded columns", len(m.Coefficients), m.Encoder.Width())
	}

	row := make([]float64, len(m.Coefficients))
	if err := m.Encoder.Encode(fv, row); err != nil {
		return 0, err
	}
	return m.Intercept + mat.Dot(mat.NewVecDense(len(row), row), mat.NewVecDense(len(row), m.Coefficients)), nil
}
