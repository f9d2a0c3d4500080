package indicators

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	got, err := SMA(prices, 5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got, 1e-9)

	got, err = SMA(prices, 2)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, got, 1e-9)
}

func TestSMAErrors(t *testing.T) {
	_, err := SMA([]float64{1, 2}, 5)
	assert.Error(t, err)

	_, err = SMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestEMAConvergesToConstant(t *testing.T) {
	prices := make([]float64, 100)
	for i := range prices {
		prices[i] = 42
	}
	got, err := EMA(prices, 10)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, got, 1e-9)
}

func TestEMAFollowsTrend(t *testing.T) {
	prices := make([]float64, 100)
	for i := range prices {
		prices[i] = float64(i + 1)
	}
	fast, err := EMA(prices, 5)
	require.NoError(t, err)
	slow, err := EMA(prices, 20)
	require.NoError(t, err)
	assert.Greater(t, fast, slow, "fast EMA should lead in an uptrend")
}

func TestROC(t *testing.T) {
	prices := []float64{100, 100, 100, 100, 100, 110}

	got, err := ROC(prices, 5)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-9)

	_, err = ROC(prices, 10)
	assert.Error(t, err)
}

func TestRSIBounds(t *testing.T) {
	up := make([]float64, 20)
	down := make([]float64, 20)
	flat := make([]float64, 20)
	for i := range up {
		up[i] = float64(100 + i)
		down[i] = float64(100 - i)
		flat[i] = 100
	}

	rsi, err := RSI(up, 14)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, rsi, 1e-9)

	rsi, err = RSI(down, 14)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, rsi, 1e-9)

	rsi, err = RSI(flat, 14)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, rsi, 1e-9)
}

func TestStdDevFlat(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5, 5}))
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestZScoreFlatWindow(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 250
	}
	z, err := ZScore(flat, 20)
	require.NoError(t, err)
	assert.Equal(t, 0.0, z, "flat window must not divide by zero")
}

func TestZScoreDirection(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100
	}
	prices[len(prices)-1] = 120

	z, err := ZScore(prices, 20)
	require.NoError(t, err)
	assert.Greater(t, z, 0.0, "price above mean scores positive")
}

func TestBoundsOnRandomSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		prices := make([]float64, 80)
		prices[0] = 100
		for i := 1; i < len(prices); i++ {
			prices[i] = prices[i-1] * (1 + rng.NormFloat64()*0.02)
		}

		rsi, err := RSI(prices, 14)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rsi, 0.0)
		assert.LessOrEqual(t, rsi, 100.0)

		vol, err := Volatility(prices, 20)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, vol, 0.0)
	}
}
