package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/import-cif/pkg/model"
)

// Evaluate scores the model on held-out samples
func Evaluate(m *Model, samples []model.Sample) (model.Metrics, error) {
	if len(samples) == 0 {
		return model.Metrics{}, errors.New("cannot evaluate on an empty set")
	}

	truth := make([]float64, len(samples))
	pred := make([]float64, len(samples))
	for i, s := range samples {
		p, err := m.Predict(s.Features)
		if err != nil {
			return model.Metrics{}, fmt.Errorf("failed to predict sample at line %d: %w", s.Line, err)
		}
		truth[i] = s.Target
		pred[i] = p
	}
	return Score(truth, pred), nil
}

// Score computes MAE, RMSE and R². A constant truth gives R² = 1 for a
// perfect fit and 0 otherwise.
func Score(truth, pred []float64) model.Metrics {
	var absSum, sqSum float64
	for i := range truth {
		d := truth[i] - pred[i]
		absSum += math.Abs(d)
		sqSum += d * d
	}
	n := float64(len(truth))
	mean := stat.Mean(truth, nil)

	var total float64
	for _, v := range truth {
		total += (v - mean) * (v - mean)
	}

	r2 := 0.0
	switch {
	case total != 0:
		r2 = 1 - sqSum/total
	case sqSum == 0:
		r2 = 1
	}

	return model.Metrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
		R2:   r2,
	}
}
