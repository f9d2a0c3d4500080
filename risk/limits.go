// Package risk converts target exposure into admissible position sizes
// and polices stop-losses. Limits are loaded once at startup and never
// mutated at runtime.
package risk

import "fmt"

// Limits is the risk configuration.
type Limits struct {
	// MaxRiskPerTrade is the fraction of equity put at risk by a single
	// trade if its stop is hit.
	MaxRiskPerTrade float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade"`

	// MaxPortfolioHeat caps aggregate open risk as a fraction of equity.
	MaxPortfolioHeat float64 `json:"max_portfolio_heat" yaml:"max_portfolio_heat"`

	// MaxPositionFraction caps a single position's value as a fraction of
	// equity.
	MaxPositionFraction float64 `json:"max_position_fraction" yaml:"max_position_fraction"`

	// StopLossFraction is the adverse move tolerated before a forced exit.
	StopLossFraction float64 `json:"stop_loss_fraction" yaml:"stop_loss_fraction"`

	// MinQuantity is the smallest tradable unit; anything the clamps
	// reduce below it is rejected outright.
	MinQuantity float64 `json:"min_quantity" yaml:"min_quantity"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxRiskPerTrade:     0.02,
		MaxPortfolioHeat:    0.10,
		MaxPositionFraction: 0.25,
		StopLossFraction:    0.05,
		MinQuantity:         0.0001,
	}
}

func (l Limits) Validate() error {
	check := func(name string, v float64) error {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", name, v)
		}
		return nil
	}
	if err := check("max_risk_per_trade", l.MaxRiskPerTrade); err != nil {
		return err
	}
	if err := check("max_portfolio_heat", l.MaxPortfolioHeat); err != nil {
		return err
	}
	if err := check("max_position_fraction", l.MaxPositionFraction); err != nil {
		return err
	}
	if err := check("stop_loss_fraction", l.StopLossFraction); err != nil {
		return err
	}
	if l.MinQuantity < 0 {
		return fmt.Errorf("min_quantity must be non-negative, got %v", l.MinQuantity)
	}
	return nil
}
