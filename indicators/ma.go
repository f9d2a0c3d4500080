package indicators

// SMA calculates the Simple Moving Average over the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if err := checkPeriod(prices, period); err != nil {
		return 0, err
	}

	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// EMA calculates the Exponential Moving Average for the given period,
// seeded with the SMA of the first period prices.
func EMA(prices []float64, period int) (float64, error) {
	if err := checkPeriod(prices, period); err != nil {
		return 0, err
	}

	multiplier := 2.0 / float64(period+1)

	// Start with SMA for first value
	sma := 0.0
	for i := 0; i < period; i++ {
		sma += prices[i]
	}
	ema := sma / float64(period)

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}

	return ema, nil
}
