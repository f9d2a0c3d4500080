package signal

import (
	"fmt"
	"math"

	"github.com/rustyeddy/papertrader/indicators"
	"github.com/rustyeddy/papertrader/market"
)

// Trend lookbacks, shortest to longest. The longest one sets the minimum
// window length for trend scoring.
var trendLookbacks = []int{5, 10, 20, 50}

// Trend scores moving-average alignment across multiple lookbacks. Full
// ascending alignment (price above every MA, each MA above the next
// longer one) scores 100; full descending alignment scores 0; mixed
// alignment lands proportionally in between, with no alignment near 50.
type Trend struct{}

func NewTrend() *Trend { return &Trend{} }

func (t *Trend) Name() string { return EngineTrend }

// Strength returns the raw [0,100] trend-strength reading.
func (t *Trend) Strength(w *market.PriceWindow) (float64, error) {
	need := trendLookbacks[len(trendLookbacks)-1]
	prices := w.Prices()
	if len(prices) < need {
		return 0, fmt.Errorf("trend strength: %w: need %d samples, have %d",
			market.ErrInsufficientData, need, len(prices))
	}

	mas := make([]float64, len(trendLookbacks))
	for i, lb := range trendLookbacks {
		ma, err := indicators.SMA(prices, lb)
		if err != nil {
			return 0, fmt.Errorf("trend strength: %w", err)
		}
		mas[i] = ma
	}

	// Score ascending alignments: last price over the shortest MA, then
	// each MA over the next longer one. A tie counts half, so a flat
	// window lands at the midpoint instead of reading as a downtrend.
	aligned := alignment(prices[len(prices)-1], mas[0])
	for i := 0; i < len(mas)-1; i++ {
		aligned += alignment(mas[i], mas[i+1])
	}
	checks := float64(len(mas))

	return aligned / checks * 100, nil
}

func alignment(a, b float64) float64 {
	switch {
	case a > b:
		return 1
	case a < b:
		return 0
	default:
		return 0.5
	}
}

func (t *Trend) Score(w *market.PriceWindow) (Score, error) {
	strength, err := t.Strength(w)
	if err != nil {
		return Score{}, err
	}
	return Score{
		Engine:     EngineTrend,
		Value:      (strength - 50) / 50,
		Confidence: 1,
	}, nil
}

// Momentum scores rate-of-change quality over two horizons. The combined
// reading is squashed through tanh so large moves saturate at the bounds
// instead of diverging.
type Momentum struct {
	fast, slow int
}

func NewMomentum() *Momentum {
	return &Momentum{fast: 5, slow: 10}
}

func (m *Momentum) Name() string { return EngineMomentum }

func (m *Momentum) Score(w *market.PriceWindow) (Score, error) {
	prices := w.Prices()
	if len(prices) < m.slow+1 {
		return Score{}, fmt.Errorf("momentum: %w: need %d samples, have %d",
			market.ErrInsufficientData, m.slow+1, len(prices))
	}

	rocFast, err := indicators.ROC(prices, m.fast)
	if err != nil {
		return Score{}, fmt.Errorf("momentum: %w", err)
	}
	rocSlow, err := indicators.ROC(prices, m.slow)
	if err != nil {
		return Score{}, fmt.Errorf("momentum: %w", err)
	}

	// Average the per-horizon readings, scaled so a sustained ~5% move
	// approaches saturation.
	combined := (rocFast + rocSlow/2) / 2
	return Score{
		Engine:     EngineMomentum,
		Value:      math.Tanh(combined / 5),
		Confidence: 1,
	}, nil
}
