package decision

import (
	"math/rand"
	"testing"

	"github.com/rustyeddy/papertrader/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scores(trend, momentum, systematic, learned, confidence float64) []signal.Score {
	return []signal.Score{
		{Engine: signal.EngineTrend, Value: trend, Confidence: 1},
		{Engine: signal.EngineMomentum, Value: momentum, Confidence: 1},
		{Engine: signal.EngineSystematic, Value: systematic, Confidence: 1},
		{Engine: signal.EngineLearned, Value: learned, Confidence: confidence},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"weights must sum to 1", func(c *Config) {
			c.Weights[signal.EngineTrend] = 0.5
		}, true},
		{"negative weight", func(c *Config) {
			c.Weights[signal.EngineTrend] = -0.25
			c.Weights[signal.EngineMomentum] = 0.75
		}, true},
		{"no weights", func(c *Config) { c.Weights = nil }, true},
		{"buy below sell", func(c *Config) {
			c.BuyThreshold = -0.5
			c.SellThreshold = 0.5
		}, true},
		{"confidence out of range", func(c *Config) { c.MinConfidence = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecideActions(t *testing.T) {
	o, err := New(DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name   string
		scores []signal.Score
		want   Action
	}{
		{"strong buy", scores(0.9, 0.9, 0.9, 0.9, 0.95), Buy},
		{"strong sell", scores(-0.9, -0.9, -0.9, -0.9, 0.95), Sell},
		{"neutral holds", scores(0.1, 0.1, 0.1, 0.1, 0.95), Hold},
		{"missing engines score neutral", nil, Hold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := o.Decide(tt.scores)
			assert.Equal(t, tt.want, d.Action)
		})
	}
}

func TestConfidenceGateSuppressesAction(t *testing.T) {
	o, err := New(DefaultConfig())
	require.NoError(t, err)

	// Composite is well above the buy threshold, but the learned engine
	// doesn't back it.
	d := o.Decide(scores(0.9, 0.9, 0.9, 0.9, 0.1))
	assert.Equal(t, Hold, d.Action)
	assert.True(t, d.Gated)
	assert.NotEmpty(t, d.Reason)
	assert.Greater(t, d.Composite, 0.4, "gate overrides, not rescales")
}

func TestCompositeIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(17))

	for trial := 0; trial < 50; trial++ {
		// Random weights summing to 1.
		raw := []float64{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()}
		sum := raw[0] + raw[1] + raw[2] + raw[3]
		cfg := DefaultConfig()
		cfg.Weights = map[string]float64{
			signal.EngineTrend:      raw[0] / sum,
			signal.EngineMomentum:   raw[1] / sum,
			signal.EngineSystematic: raw[2] / sum,
			signal.EngineLearned:    raw[3] / sum,
		}
		// Renormalization leaves float dust; validation tolerance is
		// tight, so rebalance the last weight exactly.
		cfg.Weights[signal.EngineLearned] = 1 - cfg.Weights[signal.EngineTrend] -
			cfg.Weights[signal.EngineMomentum] - cfg.Weights[signal.EngineSystematic]

		o, err := New(cfg)
		require.NoError(t, err)

		in := scores(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64())
		d1 := o.Decide(in)
		d2 := o.Decide(in)
		assert.Equal(t, d1.Composite, d2.Composite)
		assert.Equal(t, d1.Action, d2.Action)
		assert.GreaterOrEqual(t, d1.Composite, -1.0)
		assert.LessOrEqual(t, d1.Composite, 1.0)
	}
}

func TestContributionsSumToComposite(t *testing.T) {
	o, err := New(DefaultConfig())
	require.NoError(t, err)

	d := o.Decide(scores(0.4, -0.2, 0.6, 0.1, 0.8))
	sum := 0.0
	for _, c := range d.Contributions {
		sum += c
	}
	assert.InDelta(t, d.Composite, sum, 1e-12)
}
