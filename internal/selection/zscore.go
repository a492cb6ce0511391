package selection

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// 분산 0 판정 허용 오차 (평균 크기 대비)
const degenerateTolerance = 1e-12

// ZScore standardizes the defined values with the population standard deviation.
// NaN entries stay NaN. ok is false when nothing is defined or the variance is zero,
// in which case the factor is undefined for every security.
func ZScore(values []float64) ([]float64, bool) {
	z, _, _, ok := zscore(values)
	return z, ok
}

func zscore(values []float64) (z []float64, mean, std float64, ok bool) {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}

	z = make([]float64, len(values))
	for i := range z {
		z[i] = math.NaN()
	}

	if len(defined) == 0 {
		return z, 0, 0, false
	}

	mean, std = stat.PopMeanStdDev(defined, nil)
	if math.IsNaN(std) || std <= degenerateTolerance*math.Max(1, math.Abs(mean)) {
		return z, mean, std, false
	}

	for i, v := range values {
		if !math.IsNaN(v) {
			z[i] = (v - mean) / std
		}
	}

	return z, mean, std, true
}
