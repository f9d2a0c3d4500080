// Package decision combines engine scores into one composite and maps it
// to a trade action. The orchestrator is pure: no I/O, no portfolio
// mutation, same scores in, same decision out.
package decision

import (
	"fmt"
	"math"

	"github.com/rustyeddy/papertrader/signal"
)

type Action int

const (
	Hold Action = iota
	Buy
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Config carries the orchestrator tunables. Weights are keyed by engine
// tag and must sum to 1.
type Config struct {
	Weights       map[string]float64 `json:"weights" yaml:"weights"`
	BuyThreshold  float64            `json:"buy_threshold" yaml:"buy_threshold"`
	SellThreshold float64            `json:"sell_threshold" yaml:"sell_threshold"`
	MinConfidence float64            `json:"min_confidence" yaml:"min_confidence"`
}

// DefaultConfig mirrors the tuning this engine shipped with. The weights
// are configurable defaults, not derived truths.
func DefaultConfig() Config {
	return Config{
		Weights: map[string]float64{
			signal.EngineTrend:      0.25,
			signal.EngineMomentum:   0.25,
			signal.EngineSystematic: 0.30,
			signal.EngineLearned:    0.20,
		},
		BuyThreshold:  0.4,
		SellThreshold: -0.4,
		MinConfidence: 0.6,
	}
}

const weightTolerance = 1e-9

func (c Config) Validate() error {
	if len(c.Weights) == 0 {
		return fmt.Errorf("no engine weights configured")
	}
	sum := 0.0
	for engine, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("weight for %q must be non-negative, got %v", engine, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("engine weights must sum to 1, got %v", sum)
	}
	if c.BuyThreshold <= c.SellThreshold {
		return fmt.Errorf("buy threshold %v must be above sell threshold %v",
			c.BuyThreshold, c.SellThreshold)
	}
	if c.BuyThreshold > 1 || c.SellThreshold < -1 {
		return fmt.Errorf("thresholds must lie within [-1, 1]")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be within [0, 1], got %v", c.MinConfidence)
	}
	return nil
}

// Decision is the per-cycle output. Contributions holds each engine's
// weighted share of the composite.
type Decision struct {
	Action        Action
	Composite     float64
	Confidence    float64
	Contributions map[string]float64
	Gated         bool
	Reason        string
}

type Orchestrator struct {
	cfg Config
}

func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator config: %w", err)
	}
	return &Orchestrator{cfg: cfg}, nil
}

// Decide combines the given scores into a composite and maps it through
// the thresholds. An engine with no score this cycle contributes 0
// (neutral). The learned engine's confidence gates any non-HOLD action.
func (o *Orchestrator) Decide(scores []signal.Score) Decision {
	d := Decision{
		Contributions: make(map[string]float64, len(o.cfg.Weights)),
		Confidence:    0,
	}

	for _, s := range scores {
		w, ok := o.cfg.Weights[s.Engine]
		if !ok {
			continue
		}
		contrib := w * s.Value
		d.Contributions[s.Engine] = contrib
		d.Composite += contrib
		if s.Engine == signal.EngineLearned {
			d.Confidence = s.Confidence
		}
	}

	switch {
	case d.Composite >= o.cfg.BuyThreshold:
		d.Action = Buy
	case d.Composite <= o.cfg.SellThreshold:
		d.Action = Sell
	default:
		d.Action = Hold
		d.Reason = "composite inside thresholds"
	}

	if d.Action != Hold && d.Confidence < o.cfg.MinConfidence {
		d.Reason = fmt.Sprintf("learned confidence %.2f below gate %.2f",
			d.Confidence, o.cfg.MinConfidence)
		d.Action = Hold
		d.Gated = true
	}

	return d
}
