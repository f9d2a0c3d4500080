// Package mlmodel holds the learned-signal classifier. Models are trained
// offline by the train command, serialized to a JSON artifact, and loaded
// read-only at session start; the live loop never retrains.
package mlmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// Model is a standardized logistic regression over engineered features.
// The prediction is the probability that the forward return over the
// training horizon is positive.
type Model struct {
	Features  []string  `json:"features"`
	Mean      []float64 `json:"mean"`
	Std       []float64 `json:"std"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Horizon   int       `json:"horizon"`
	Samples   int       `json:"samples"`
	TrainedAt time.Time `json:"trained_at"`
}

// Load reads a model artifact from disk and validates its shape.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	m := &Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return m, nil
}

func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

func (m *Model) validate() error {
	n := len(m.Features)
	if n == 0 {
		return fmt.Errorf("no features")
	}
	if len(m.Weights) != n || len(m.Mean) != n || len(m.Std) != n {
		return fmt.Errorf("feature/weight shape mismatch: %d features, %d weights, %d means, %d stds",
			n, len(m.Weights), len(m.Mean), len(m.Std))
	}
	return nil
}

// Predict returns the probability of an upward forward move for the given
// raw feature vector. The vector must match the trained feature order.
func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("feature vector length %d, model expects %d", len(x), len(m.Weights))
	}
	z := m.Bias
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("feature %q is not finite", m.Features[i])
		}
		std := m.Std[i]
		if std == 0 {
			std = 1
		}
		z += m.Weights[i] * ((v - m.Mean[i]) / std)
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
