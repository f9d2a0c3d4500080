package signal

import (
	"math"

	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/mlmodel"
)

// Learned scores the window through an offline-trained classifier. With no
// model loaded, or whenever a prediction cannot be produced (short window,
// non-finite features), it reports a neutral score with zero confidence
// rather than failing the cycle.
type Learned struct {
	model *mlmodel.Model
}

// NewLearned wraps a loaded model. A nil model is valid and yields the
// permanent neutral mode.
func NewLearned(m *mlmodel.Model) *Learned {
	return &Learned{model: m}
}

func (l *Learned) Name() string { return EngineLearned }

// HasModel reports whether a classifier is loaded.
func (l *Learned) HasModel() bool { return l.model != nil }

func (l *Learned) Score(w *market.PriceWindow) (Score, error) {
	neutral := Score{Engine: EngineLearned, Value: 0, Confidence: 0}
	if l.model == nil {
		return neutral, nil
	}

	x, err := mlmodel.FeatureVector(w.Prices())
	if err != nil {
		return neutral, nil
	}
	p, err := l.model.Predict(x)
	if err != nil {
		return neutral, nil
	}

	// Map p(up) into a signed score; confidence is the distance from a
	// coin flip.
	v := clip(2*p-1, -1, 1)
	return Score{
		Engine:     EngineLearned,
		Value:      v,
		Confidence: math.Abs(v),
	}, nil
}
