package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsBasics(t *testing.T) {
	t.Parallel()
	var s Statistics
	s.Add(HandResult{Reward: 10, Button: true, Showdown: true, Pot: 20})
	s.Add(HandResult{Reward: -2, Button: false, Pot: 4})
	s.Add(HandResult{Reward: 4, Button: true, Pot: 8})
	s.Add(HandResult{Reward: 0, Button: false, Showdown: true, Pot: 40})

	assert.Equal(t, 4, s.Hands)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 3.0, s.Mean(), 1e-9)
	assert.InDelta(t, 2.0, s.Median(), 1e-9)
	assert.InDelta(t, 0.5, s.WinRate(), 1e-9)
	assert.Equal(t, 40, s.MaxPot)
	assert.InDelta(t, 7.0, s.Button.Mean(), 1e-9)
	assert.InDelta(t, -1.0, s.Blind.Mean(), 1e-9)
	require.NoError(t, s.Validate())

	// variance of 10, -2, 4, 0 around mean 3: (49+25+1+9)/3 = 28
	assert.InDelta(t, 28.0, s.Variance(), 1e-9)
	lo, hi := s.ConfidenceInterval95()
	assert.Less(t, lo, s.Mean())
	assert.Greater(t, hi, s.Mean())
}

func TestStatisticsEmpty(t *testing.T) {
	t.Parallel()
	var s Statistics
	assert.Zero(t, s.Mean())
	assert.Zero(t, s.StdError())
	assert.Zero(t, s.Median())
	assert.Zero(t, s.WinRate())

	sum := s.Summary()
	assert.Equal(t, []float64{0, 0}, sum.CI95)
}

func TestStatisticsValidateDetectsMismatch(t *testing.T) {
	t.Parallel()
	var s Statistics
	s.Add(HandResult{Reward: 5})
	s.FoldReward = 0
	assert.Error(t, s.Validate())
}
