// sim/metrics_utils.go
package sim

import (
	"math"
	"sort"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculatePercentile returns the p-th percentile of a data list, using
// linear interpolation between ranks. The input need not be sorted.
// Returns 0 on empty input.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	xs := make([]float64, n)
	for i, v := range data {
		xs[i] = float64(v)
	}
	sort.Float64s(xs)

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if upperIdx >= n {
		return xs[n-1]
	}
	if lowerIdx == upperIdx {
		return xs[lowerIdx]
	}
	return xs[lowerIdx] + (xs[upperIdx]-xs[lowerIdx])*(rank-float64(lowerIdx))
}

// CalculateMean returns the mean of a data list, 0 on empty input.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}
	return sum / float64(len(numbers))
}
