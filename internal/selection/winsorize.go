package selection

import (
	"math"
	"sort"
)

// 부동소수 오차로 인덱스가 한 칸 밀리는 것 방지 (0.7*10 = 7.000000000000001)
const indexEpsilon = 1e-9

// Winsorize clips values outside the [lo, hi] percentile band to the band edges.
// NaN entries are left untouched and excluded from the percentile computation.
func Winsorize(values []float64, lo, hi float64) []float64 {
	out, _ := winsorize(values, lo, hi)
	return out
}

// WinsorBounds returns the clipping bounds for the defined values.
// ok is false when no value is defined.
//
// Bounds are order statistics of the sorted defined values v[0..n-1]:
// lower = v[ceil(lo·(n-1))], upper = v[floor(hi·(n-1))]. When the band holds
// no order statistic both collapse to the upper one. Because bounds are
// always sample values, winsorizing twice changes nothing.
func WinsorBounds(values []float64, lo, hi float64) (lower, upper float64, ok bool) {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return 0, 0, false
	}
	sort.Float64s(sorted)

	last := len(sorted) - 1
	li := clampIndex(int(math.Ceil(lo*float64(last)-indexEpsilon)), last)
	ui := clampIndex(int(math.Floor(hi*float64(last)+indexEpsilon)), last)
	if li > ui {
		li = ui
	}

	return sorted[li], sorted[ui], true
}

type winsorResult struct {
	lower, upper float64
	clipped      int
	defined      int
}

func winsorize(values []float64, lo, hi float64) ([]float64, winsorResult) {
	out := make([]float64, len(values))
	copy(out, values)

	lower, upper, ok := WinsorBounds(values, lo, hi)
	if !ok {
		return out, winsorResult{}
	}

	res := winsorResult{lower: lower, upper: upper}
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		res.defined++
		switch {
		case v < lower:
			out[i] = lower
			res.clipped++
		case v > upper:
			out[i] = upper
			res.clipped++
		}
	}

	return out, res
}

func clampIndex(i, last int) int {
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}
