package strategy

import (
	"fmt"

	"github.com/quantbench/quantbench/internal/indicator"
	"github.com/quantbench/quantbench/internal/types"
)

type MomentumParams struct {
	Lookback  int     `yaml:"lookback" validate:"gt=0"`
	Threshold float64 `yaml:"threshold" validate:"gt=0"`
}

// Momentum buys when the trailing return exceeds the threshold and sells
// when it falls below the negative threshold.
type Momentum struct {
	params MomentumParams
}

func NewMomentum(params MomentumParams) (*Momentum, error) {
	if params.Lookback == 0 {
		params.Lookback = 20
	}

	if params.Threshold == 0 {
		params.Threshold = 0.02
	}

	if err := validateParams(params); err != nil {
		return nil, err
	}

	return &Momentum{params: params}, nil
}

func (s *Momentum) Name() string {
	return fmt.Sprintf("momentum_%d", s.params.Lookback)
}

func (s *Momentum) GenerateSignals(bars []types.Bar) ([]types.SignalType, error) {
	momentum := indicator.Momentum(types.Closes(bars), s.params.Lookback)

	signals := holdSignals(len(bars))

	for i := range bars {
		switch {
		case momentum[i] > s.params.Threshold:
			signals[i] = types.SignalTypeBuy
		case momentum[i] < -s.params.Threshold:
			signals[i] = types.SignalTypeSell
		}
	}

	return signals, nil
}
