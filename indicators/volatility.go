package indicators

import "math"

// Returns converts a price series into simple period-over-period returns.
// The result has one fewer element than the input.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, prices[i]/prices[i-1]-1)
	}
	return out
}

// StdDev calculates the population standard deviation of the values.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	varsum := 0.0
	for _, v := range values {
		d := v - mean
		varsum += d * d
	}
	return math.Sqrt(varsum / float64(len(values)))
}

// Volatility calculates the standard deviation of returns over the last
// period samples.
func Volatility(prices []float64, period int) (float64, error) {
	if err := checkPeriod(prices, period+1); err != nil {
		return 0, err
	}
	rets := Returns(prices[len(prices)-period-1:])
	return StdDev(rets), nil
}

// ZScore calculates how many standard deviations the latest price sits from
// the mean of the last period prices. A flat window yields 0, not a
// division fault.
func ZScore(prices []float64, period int) (float64, error) {
	if err := checkPeriod(prices, period); err != nil {
		return 0, err
	}

	tail := prices[len(prices)-period:]
	mean := 0.0
	for _, p := range tail {
		mean += p
	}
	mean /= float64(period)

	sd := StdDev(tail)
	if sd == 0 {
		return 0, nil
	}
	return (prices[len(prices)-1] - mean) / sd, nil
}
