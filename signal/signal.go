// Package signal holds the scoring engines that feed the decision
// orchestrator. Each engine is a Scorer producing one tagged score per
// cycle; the orchestrator iterates a fixed list of them.
package signal

import "github.com/rustyeddy/papertrader/market"

// Engine tags. Orchestrator weights are keyed by these.
const (
	EngineTrend      = "trend"
	EngineMomentum   = "momentum"
	EngineSystematic = "systematic"
	EngineLearned    = "learned"
)

// Score is one engine's output for a single decision cycle. Value is in
// [-1, +1]; Confidence is in [0, 1] and is 1 unless the engine has a
// statistical notion of its own reliability.
type Score struct {
	Engine     string
	Value      float64
	Confidence float64
}

// Scorer produces a fresh score from the current price window. A Scorer
// holds no per-cycle state; the same window always yields the same score.
type Scorer interface {
	Name() string
	Score(w *market.PriceWindow) (Score, error)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
