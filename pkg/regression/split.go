package regression

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/David-Botos/import-cif/pkg/model"
)

// Split shuffles samples with a seeded source and holds out testFraction of
// them, rounded up. The same seed and input always give the same split.
func Split(samples []model.Sample, testFraction float64, seed int64) (train, test []model.Sample, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0, 1), got %v", testFraction)
	}

	n := len(samples)
	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest == 0 || nTest >= n {
		return nil, nil, fmt.Errorf("cannot split %d samples with test fraction %v", n, testFraction)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = make([]model.Sample, 0, nTest)
	train = make([]model.Sample, 0, n-nTest)
	for i, idx := range perm {
		if i < nTest {
			test = append(test, samples[idx])
		} else {
			train = append(train, samples[idx])
		}
	}
	return train, test, nil
}
