package mlmodel

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/papertrader/indicators"
)

// FeatureNames is the canonical feature order shared by training and the
// live learned engine.
var FeatureNames = []string{"roc5", "roc20", "vol20", "rsi14"}

// minHistory is the shortest close-price prefix needed to compute a full
// feature vector.
const minHistory = 50

// FeatureVector computes the model features from a close-price series
// ordered oldest to newest.
func FeatureVector(closes []float64) ([]float64, error) {
	if len(closes) < minHistory {
		return nil, fmt.Errorf("need %d closes for features, got %d", minHistory, len(closes))
	}
	roc5, err := indicators.ROC(closes, 5)
	if err != nil {
		return nil, err
	}
	roc20, err := indicators.ROC(closes, 20)
	if err != nil {
		return nil, err
	}
	vol20, err := indicators.Volatility(closes, 20)
	if err != nil {
		return nil, err
	}
	rsi14, err := indicators.RSI(closes, 14)
	if err != nil {
		return nil, err
	}
	return []float64{roc5, roc20, vol20, rsi14}, nil
}

// TrainConfig controls the offline fit.
type TrainConfig struct {
	Horizon int     // forward-return label horizon, in samples
	Epochs  int
	Rate    float64 // learning rate
}

func (c *TrainConfig) setDefaults() {
	if c.Horizon <= 0 {
		c.Horizon = 5
	}
	if c.Epochs <= 0 {
		c.Epochs = 200
	}
	if c.Rate <= 0 {
		c.Rate = 0.05
	}
}

// Train fits a logistic regression on (features, forward-return-sign) pairs
// derived from a historical close series. Labels are 1 when the close
// Horizon samples ahead is higher than the current close.
func Train(closes []float64, cfg TrainConfig) (*Model, error) {
	cfg.setDefaults()

	if len(closes) < minHistory+cfg.Horizon+1 {
		return nil, fmt.Errorf("need at least %d closes to train, got %d",
			minHistory+cfg.Horizon+1, len(closes))
	}

	var rows [][]float64
	var labels []float64
	for i := minHistory; i+cfg.Horizon < len(closes); i++ {
		x, err := FeatureVector(closes[:i+1])
		if err != nil {
			return nil, fmt.Errorf("features at sample %d: %w", i, err)
		}
		rows = append(rows, x)
		y := 0.0
		if closes[i+cfg.Horizon] > closes[i] {
			y = 1.0
		}
		labels = append(labels, y)
	}

	n := len(FeatureNames)
	mean := make([]float64, n)
	std := make([]float64, n)
	for j := 0; j < n; j++ {
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = r[j]
			mean[j] += r[j]
		}
		mean[j] /= float64(len(rows))
		std[j] = indicators.StdDev(col)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	// Standardize in place.
	for _, r := range rows {
		for j := range r {
			r[j] = (r[j] - mean[j]) / std[j]
		}
	}

	weights := make([]float64, n)
	bias := 0.0
	m := float64(len(rows))

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		grad := make([]float64, n)
		gradB := 0.0
		for i, r := range rows {
			z := bias
			for j, v := range r {
				z += weights[j] * v
			}
			err := sigmoid(z) - labels[i]
			for j, v := range r {
				grad[j] += err * v
			}
			gradB += err
		}
		for j := range weights {
			weights[j] -= cfg.Rate * grad[j] / m
		}
		bias -= cfg.Rate * gradB / m
	}

	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("training diverged, try a smaller learning rate")
		}
	}

	return &Model{
		Features:  append([]string(nil), FeatureNames...),
		Mean:      mean,
		Std:       std,
		Weights:   weights,
		Bias:      bias,
		Horizon:   cfg.Horizon,
		Samples:   len(rows),
		TrainedAt: time.Now().UTC(),
	}, nil
}
