package session

import (
	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/mlmodel"
	"github.com/rustyeddy/papertrader/signal"
)

// DefaultScorers builds the standard engine set. A nil model leaves the
// learned engine in neutral mode.
func DefaultScorers(cfg *config.Config, m *mlmodel.Model) []signal.Scorer {
	return []signal.Scorer{
		signal.NewTrend(),
		signal.NewMomentum(),
		signal.NewSystematic(cfg.Session.SystematicBlend),
		signal.NewLearned(m),
	}
}
