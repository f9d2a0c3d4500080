package indicators

// ROC calculates the Rate of Change over the given period, as a percentage.
// A value of 2.5 means the latest price is 2.5% above the price period
// samples ago.
func ROC(prices []float64, period int) (float64, error) {
	if err := checkPeriod(prices, period+1); err != nil {
		return 0, err
	}

	prev := prices[len(prices)-1-period]
	if prev == 0 {
		return 0, nil
	}
	return (prices[len(prices)-1]/prev - 1) * 100, nil
}

// RSI calculates the Relative Strength Index over the given period using
// simple averages of gains and losses. An all-gain stretch returns 100 and
// an all-loss stretch returns 0; a flat stretch returns 50.
func RSI(prices []float64, period int) (float64, error) {
	if err := checkPeriod(prices, period+1); err != nil {
		return 0, err
	}

	var gain, loss float64
	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}

	if gain+loss == 0 {
		return 50, nil
	}
	if loss == 0 {
		return 100, nil
	}

	rs := gain / loss
	return 100 - (100 / (1 + rs)), nil
}
