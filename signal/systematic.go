package signal

import (
	"fmt"

	"github.com/rustyeddy/papertrader/indicators"
	"github.com/rustyeddy/papertrader/market"
)

// Systematic combines a volatility-normalized EMA-crossover trend signal
// with a z-score mean-reversion signal. Both legs live in [-1, +1] and the
// published score is a configurable blend of the two.
type Systematic struct {
	fast, slow int
	volPeriod  int
	zPeriod    int
	blend      float64 // weight of the trend leg; reversion gets 1-blend
}

func NewSystematic(blend float64) *Systematic {
	return &Systematic{
		fast:      16,
		slow:      64,
		volPeriod: 20,
		zPeriod:   20,
		blend:     clip(blend, 0, 1),
	}
}

func (s *Systematic) Name() string { return EngineSystematic }

// TrendFollowing is the fast/slow EMA divergence normalized by recent
// volatility, so a fixed absolute move scores comparably across quiet and
// noisy regimes.
func (s *Systematic) TrendFollowing(prices []float64) (float64, error) {
	if len(prices) < s.slow {
		return 0, fmt.Errorf("trend following: %w: need %d samples, have %d",
			market.ErrInsufficientData, s.slow, len(prices))
	}

	fast, err := indicators.EMA(prices, s.fast)
	if err != nil {
		return 0, fmt.Errorf("trend following: %w", err)
	}
	slow, err := indicators.EMA(prices, s.slow)
	if err != nil {
		return 0, fmt.Errorf("trend following: %w", err)
	}
	vol, err := indicators.Volatility(prices, s.volPeriod)
	if err != nil {
		return 0, fmt.Errorf("trend following: %w", err)
	}

	last := prices[len(prices)-1]
	if last == 0 || vol == 0 {
		return 0, nil
	}

	div := (fast - slow) / last
	return clip(div/(4*vol), -1, 1), nil
}

// MeanReversion is the latest price's z-score against the window,
// inverted: a price far above the mean scores negative, expecting a move
// back down. A flat window scores 0.
func (s *Systematic) MeanReversion(prices []float64) (float64, error) {
	if len(prices) < s.zPeriod {
		return 0, fmt.Errorf("mean reversion: %w: need %d samples, have %d",
			market.ErrInsufficientData, s.zPeriod, len(prices))
	}
	z, err := indicators.ZScore(prices, s.zPeriod)
	if err != nil {
		return 0, fmt.Errorf("mean reversion: %w", err)
	}
	return clip(-z/2, -1, 1), nil
}

func (s *Systematic) Score(w *market.PriceWindow) (Score, error) {
	prices := w.Prices()

	tf, err := s.TrendFollowing(prices)
	if err != nil {
		return Score{}, err
	}
	mr, err := s.MeanReversion(prices)
	if err != nil {
		return Score{}, err
	}

	return Score{
		Engine:     EngineSystematic,
		Value:      s.blend*tf + (1-s.blend)*mr,
		Confidence: 1,
	}, nil
}
