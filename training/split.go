package training

import (
	"math"
	"math/rand"
)

// StratifiedSplit partitions row indices into train and test sets,
// preserving class balance: each class is shuffled with the seed and split
// at the same fraction.
func StratifiedSplit(labels []int, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	byClass := make(map[int][]int)
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}

	rng := rand.New(rand.NewSource(seed))
	// Deterministic class order; map iteration is not.
	for _, class := range []int{0, 1} {
		idx := byClass[class]
		rng.Shuffle(len(idx), func(a, b int) {
			idx[a], idx[b] = idx[b], idx[a]
		})
		nTest := int(math.Round(testFraction * float64(len(idx))))
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}
	return trainIdx, testIdx
}
