package market

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// SimSource generates a seeded random-walk quote stream. It stands in for a
// live exchange feed during dry runs and tests; the same seed always yields
// the same path.
type SimSource struct {
	rng    *rand.Rand
	price  float64
	drift  float64
	vol    float64
	spread float64
	step   time.Duration
	now    time.Time
}

type SimConfig struct {
	Seed       int64
	StartPrice float64
	Drift      float64 // per-step fractional drift
	Volatility float64 // per-step fractional stddev
	Spread     float64 // fractional bid/ask spread
	Start      time.Time
	Step       time.Duration
}

func NewSimSource(cfg SimConfig) *SimSource {
	if cfg.StartPrice <= 0 {
		cfg.StartPrice = 100
	}
	if cfg.Volatility <= 0 {
		cfg.Volatility = 0.002
	}
	if cfg.Spread <= 0 {
		cfg.Spread = 0.0005
	}
	if cfg.Step <= 0 {
		cfg.Step = time.Second
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now().UTC()
	}
	return &SimSource{
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		price:  cfg.StartPrice,
		drift:  cfg.Drift,
		vol:    cfg.Volatility,
		spread: cfg.Spread,
		step:   cfg.Step,
		now:    cfg.Start,
	}
}

func (s *SimSource) Fetch(ctx context.Context) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}

	s.price *= math.Exp(s.drift + s.vol*s.rng.NormFloat64())
	s.now = s.now.Add(s.step)

	half := s.price * s.spread / 2
	return Quote{
		Time: s.now,
		Bid:  s.price - half,
		Ask:  s.price + half,
		Last: s.price,
	}, nil
}
