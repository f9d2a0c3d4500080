// Package indicators provides the technical analysis math used by the
// signal engines. All functions operate on a price slice ordered oldest
// to newest and return an error when the slice is shorter than the
// requested lookback.
package indicators

import "fmt"

func checkPeriod(prices []float64, period int) error {
	if period <= 0 {
		return fmt.Errorf("period must be positive, got %d", period)
	}
	if len(prices) < period {
		return fmt.Errorf("not enough prices: need %d, got %d", period, len(prices))
	}
	return nil
}
