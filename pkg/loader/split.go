package loader

import (
	"math/rand"

	"github.com/tdarei/starisdons-sub013/pkg/dataset"
)

// TrainTestSplit shuffles records with rng and splits them by ratio.
// The test set holds floor(len(records)*testRatio) records. A nil rng uses the
// global source.
func TrainTestSplit(records []dataset.Record, testRatio float64, rng *rand.Rand) (train, test []dataset.Record) {
	n := len(records)
	var indices []int
	if rng != nil {
		indices = rng.Perm(n)
	} else {
		indices = rand.Perm(n)
	}
	nTest := int(float64(n) * testRatio)
	nTest = max(0, min(nTest, n))

	train = make([]dataset.Record, 0, n-nTest)
	test = make([]dataset.Record, 0, nTest)
	for i := 0; i < n; i++ {
		if i < nTest {
			test = append(test, records[indices[i]])
		} else {
			train = append(train, records[indices[i]])
		}
	}
	return train, test
}

// KFoldSplit yields k folds of record indices.
func KFoldSplit(n, k int, rng *rand.Rand) [][]int {
	if k <= 0 {
		return nil
	}
	var indices []int
	if rng != nil {
		indices = rng.Perm(n)
	} else {
		indices = rand.Perm(n)
	}
	folds := make([][]int, k)
	for i := 0; i < n; i++ {
		folds[i%k] = append(folds[i%k], indices[i])
	}
	return folds
}
