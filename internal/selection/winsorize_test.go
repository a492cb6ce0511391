package selection

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinsorize_ClipsOutlier(t *testing.T) {
	// A:1, B:2, C:3, D:100 at (0.2, 0.8)
	got := Winsorize([]float64{1, 2, 3, 100}, 0.2, 0.8)
	assert.Equal(t, []float64{2, 2, 3, 3}, got)
}

func TestWinsorize_InputUntouched(t *testing.T) {
	in := []float64{1, 2, 3, 100}
	_ = Winsorize(in, 0.2, 0.8)
	assert.Equal(t, []float64{1, 2, 3, 100}, in)
}

func TestWinsorize_PreservesNaN(t *testing.T) {
	got := Winsorize([]float64{math.NaN(), 1, 2, 3, 100, math.NaN()}, 0.2, 0.8)

	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[5]))
	assert.Equal(t, []float64{2, 2, 3, 3}, got[1:5])
}

func TestWinsorize_FullBandIsNoop(t *testing.T) {
	in := []float64{5, -3, 8, 0.5}
	assert.Equal(t, in, Winsorize(in, 0, 1))
}

func TestWinsorBounds(t *testing.T) {
	tests := []struct {
		name         string
		values       []float64
		lo, hi       float64
		lower, upper float64
		ok           bool
	}{
		{"four values", []float64{100, 3, 1, 2}, 0.2, 0.8, 2, 3, true},
		{"ten percent of eleven", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 0.9, 1, 9, true},
		{"float index noise", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.3, 0.7, 3, 7, true},
		{"single value", []float64{7}, 0.2, 0.8, 7, 7, true},
		{"band collapses", []float64{1, 2}, 0.2, 0.8, 1, 1, true},
		{"all nan", []float64{math.NaN(), math.NaN()}, 0.2, 0.8, 0, 0, false},
		{"empty", nil, 0.2, 0.8, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper, ok := WinsorBounds(tt.values, tt.lo, tt.hi)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lower, lower)
			assert.Equal(t, tt.upper, upper)
		})
	}
}

func TestWinsorize_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bands := [][2]float64{{0.2, 0.8}, {0.1, 0.9}, {0.05, 0.95}, {0.45, 0.55}, {0, 0.5}}

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(60)
		values := make([]float64, n)
		for i := range values {
			switch {
			case rng.Float64() < 0.1:
				values[i] = math.NaN()
			case rng.Float64() < 0.05:
				values[i] = rng.NormFloat64() * 1e6
			default:
				values[i] = rng.NormFloat64()
			}
		}

		band := bands[trial%len(bands)]
		once := Winsorize(values, band[0], band[1])
		twice := Winsorize(once, band[0], band[1])

		for i := range once {
			if math.IsNaN(once[i]) {
				require.True(t, math.IsNaN(twice[i]))
				continue
			}
			require.Equal(t, once[i], twice[i], "trial %d index %d", trial, i)
		}
	}
}

func TestZScore_Standardized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.Intn(500)
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.ExpFloat64() * 10
		}

		z, ok := ZScore(Winsorize(values, 0.1, 0.9))
		if !ok {
			// 모든 값이 같은 극단적 경우만 허용
			continue
		}

		mean, sq := 0.0, 0.0
		for _, v := range z {
			mean += v
		}
		mean /= float64(n)
		for _, v := range z {
			sq += (v - mean) * (v - mean)
		}

		assert.InDelta(t, 0, mean, 1e-9)
		assert.InDelta(t, 1, math.Sqrt(sq/float64(n)), 1e-9)
	}
}

func TestZScore_KnownValues(t *testing.T) {
	z, ok := ZScore([]float64{2, 2, 3, 3})
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{-1, -1, 1, 1}, z, 1e-12)
}

func TestZScore_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"constant", []float64{0.1, 0.1, 0.1}},
		{"single", []float64{42}},
		{"all nan", []float64{math.NaN(), math.NaN()}},
		{"empty", []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, ok := ZScore(tt.values)
			assert.False(t, ok)
			require.Len(t, z, len(tt.values))
			for _, v := range z {
				assert.True(t, math.IsNaN(v))
			}
		})
	}
}

func TestZScore_NaNStaysUndefined(t *testing.T) {
	z, ok := ZScore([]float64{1, math.NaN(), 3})
	require.True(t, ok)
	assert.InDelta(t, -1, z[0], 1e-12)
	assert.True(t, math.IsNaN(z[1]))
	assert.InDelta(t, 1, z[2], 1e-12)
}
