package strategy

import (
	"fmt"
	"math"

	"github.com/quantbench/quantbench/internal/indicator"
	"github.com/quantbench/quantbench/internal/types"
)

type MeanReversionParams struct {
	Window         int     `yaml:"window" validate:"gt=1"`
	EntryThreshold float64 `yaml:"entry_threshold" validate:"gt=0"`
	ExitThreshold  float64 `yaml:"exit_threshold" validate:"gt=0,ltfield=EntryThreshold"`
}

// MeanReversion trades z-score extremes of the close against its rolling
// mean: buy far below the mean, sell far above it, flat near it.
type MeanReversion struct {
	params MeanReversionParams
}

func NewMeanReversion(params MeanReversionParams) (*MeanReversion, error) {
	if params.Window == 0 {
		params.Window = 20
	}

	if params.EntryThreshold == 0 {
		params.EntryThreshold = 2.0
	}

	if params.ExitThreshold == 0 {
		params.ExitThreshold = 0.5
	}

	if err := validateParams(params); err != nil {
		return nil, err
	}

	return &MeanReversion{params: params}, nil
}

func (s *MeanReversion) Name() string {
	return fmt.Sprintf("mean_reversion_%d", s.params.Window)
}

func (s *MeanReversion) GenerateSignals(bars []types.Bar) ([]types.SignalType, error) {
	closes := types.Closes(bars)
	mean := indicator.SMA(closes, s.params.Window)
	std := indicator.RollingStd(closes, s.params.Window)

	signals := holdSignals(len(bars))

	for i := range bars {
		z := (closes[i] - mean[i]) / std[i]

		switch {
		case math.Abs(z) < s.params.ExitThreshold:
			signals[i] = types.SignalTypeHold
		case z < -s.params.EntryThreshold:
			signals[i] = types.SignalTypeBuy
		case z > s.params.EntryThreshold:
			signals[i] = types.SignalTypeSell
		}
	}

	return signals, nil
}
