package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator(t *testing.T) {
	acc := &accumulator{}

	_, ok := acc.mean()
	assert.False(t, ok, "empty accumulator has no mean")
	_, ok = acc.stdDev()
	assert.False(t, ok)

	acc.add(2)
	mu, ok := acc.mean()
	require.True(t, ok)
	assert.Equal(t, 2.0, mu)
	_, ok = acc.stdDev()
	assert.False(t, ok, "standard deviation undefined for one observation")

	acc.add(4)
	mu, ok = acc.mean()
	require.True(t, ok)
	assert.Equal(t, 3.0, mu)

	sigma, ok := acc.stdDev()
	require.True(t, ok)
	// Sample deviation of {2, 4}: sqrt(((2-3)² + (4-3)²) / 1).
	assert.InDelta(t, 1.4142, sigma, 1e-4)
}

func TestPivot(t *testing.T) {
	pv := newPivot()
	pv.add("202410", "CO-E", 3)
	pv.add("202410", "CO-E", 4)
	pv.add("202420", "PC", 2)

	assert.Equal(t, []string{"202410", "202420"}, pv.rowLabels())
	assert.Equal(t, []string{"CO-E", "PC"}, pv.colLabels())

	mu, ok := pv.mean("202410", "CO-E")
	require.True(t, ok)
	assert.Equal(t, 3.5, mu)

	_, ok = pv.mean("202420", "CO-E")
	assert.False(t, ok, "empty cell has no mean")
}

func TestFormatMean(t *testing.T) {
	assert.Equal(t, "", formatMean(3.5, false))
	assert.Equal(t, "3.50", formatMean(3.5, true))
	assert.Equal(t, "3.33", formatMean(10.0/3.0, true))
}

func TestMeanOf(t *testing.T) {
	_, ok := meanOf(nil)
	assert.False(t, ok)

	avg, ok := meanOf([]float64{1, 2, 3})
	require.True(t, ok)
	assert.Equal(t, 2.0, avg)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.33, round2(10.0/3.0))
	assert.Equal(t, 2.5, round2(2.5))
}
