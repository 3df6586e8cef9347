package readstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPairStatsFromSamples(t *testing.T) {
	samples := []int32{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}
	stats, err := NewPairStatsFromSamples(append([]int32{}, samples...), Fr)
	require.NoError(t, err)
	assert.Equal(t, float64(600), stats.Median)
	assert.Equal(t, float64(500), stats.SD)
	assert.Equal(t, Fr, stats.Orientation)
}

func TestNewPairStatsFromSamplesEmpty(t *testing.T) {
	_, err := NewPairStatsFromSamples(nil, FFUnknown)
	assert.Error(t, err)
}

func TestPairStatsQuantileCDFRoundTrip(t *testing.T) {
	stats := newPairStats(300, 50, Fr)
	for _, p := range []float64{0.01, 0.25, 0.5, 0.75, 0.99} {
		x := stats.Quantile(p)
		assert.InDelta(t, p, stats.CDF(x), 1e-9)
	}
}

func TestConverged(t *testing.T) {
	a := newPairStats(300, 50, Fr)
	b := newPairStats(300.001, 50.001, Fr)
	c := newPairStats(310, 50, Fr)
	assert.True(t, Converged(a, b))
	assert.False(t, Converged(a, c))
}

func TestConvergenceChecker(t *testing.T) {
	checker := &ConvergenceChecker{CheckpointInterval: 100000, MaxRecords: 300000}
	stable := newPairStats(300, 50, Fr)

	stop, nonConvergent := checker.Observe(100000, stable)
	assert.False(t, stop)
	assert.False(t, nonConvergent)

	stop, nonConvergent = checker.Observe(100000, stable)
	assert.True(t, stop)
	assert.False(t, nonConvergent)
}

func TestConvergenceCheckerHardStop(t *testing.T) {
	checker := &ConvergenceChecker{CheckpointInterval: 100000, MaxRecords: 200000}
	drifting := func(i int) *PairStats { return newPairStats(float64(300+i), 50, Fr) }

	stop, _ := checker.Observe(100000, drifting(0))
	assert.False(t, stop)
	stop, nonConvergent := checker.Observe(100000, drifting(1))
	assert.True(t, stop)
	assert.True(t, nonConvergent)
}

func TestOrientationRoundTrip(t *testing.T) {
	for _, o := range []Orientation{Ff, Fr, Rf, Rr, FFUnknown} {
		parsed, err := ParseOrientation(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, parsed)
	}
	_, err := ParseOrientation("bogus")
	assert.Error(t, err)
}
