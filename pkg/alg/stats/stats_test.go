package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0, Mean(nil), 0.0001)
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 0.0001)
}

func TestMeanStdDev(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		values       []float64
		expectedMean float64
		expectedStd  float64
	}{
		{name: "empty", values: nil, expectedMean: 0, expectedStd: 0},
		{name: "constant", values: []float64{0.02, 0.02, 0.02}, expectedMean: 0.02, expectedStd: 0},
		{name: "population", values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, expectedMean: 5, expectedStd: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mean, std := MeanStdDev(tt.values)
			assert.InDelta(t, tt.expectedMean, mean, 0.0001)
			assert.InDelta(t, tt.expectedStd, std, 0.0001)
		})
	}
}

func TestMax(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0, Max([]float64{}), 0.0001)
	assert.InDelta(t, 9.0, Max([]float64{3.0, 1.0, 9.0, 4.0}), 0.0001)
	assert.Equal(t, 10, Max([]int{10, 2}))
}

func TestIntervals(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Intervals([]uint64{5}, 1e-6))

	got := Intervals([]uint64{0, 20_000_000, 60_000_000}, 1e-6)
	assert.Len(t, got, 2)
	assert.InDelta(t, 20.0, got[0], 1e-9)
	assert.InDelta(t, 40.0, got[1], 1e-9)
}
