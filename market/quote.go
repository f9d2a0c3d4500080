package market

import (
	"context"
	"time"
)

// Quote is a point-in-time snapshot of the tracked instrument.
type Quote struct {
	Time time.Time
	Bid  float64
	Ask  float64
	Last float64
}

func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

func (q Quote) Spread() float64 {
	return q.Ask - q.Bid
}

// QuoteSource supplies the latest quote on demand. Fetch must honor the
// context deadline; callers treat an error as a skipped cycle, never fatal.
type QuoteSource interface {
	Fetch(ctx context.Context) (Quote, error)
}
