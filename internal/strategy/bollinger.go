package strategy

import (
	"fmt"

	"github.com/quantbench/quantbench/internal/indicator"
	"github.com/quantbench/quantbench/internal/types"
)

type BollingerParams struct {
	Window int     `yaml:"window" validate:"gt=1"`
	NumStd float64 `yaml:"num_std" validate:"gt=0"`
}

// Bollinger buys touches of the lower band and sells touches of the upper
// band.
type Bollinger struct {
	params BollingerParams
}

func NewBollinger(params BollingerParams) (*Bollinger, error) {
	if params.Window == 0 {
		params.Window = 20
	}

	if params.NumStd == 0 {
		params.NumStd = 2.0
	}

	if err := validateParams(params); err != nil {
		return nil, err
	}

	return &Bollinger{params: params}, nil
}

func (s *Bollinger) Name() string {
	return fmt.Sprintf("bollinger_%d", s.params.Window)
}

func (s *Bollinger) GenerateSignals(bars []types.Bar) ([]types.SignalType, error) {
	closes := types.Closes(bars)
	middle := indicator.SMA(closes, s.params.Window)
	std := indicator.RollingStd(closes, s.params.Window)

	signals := holdSignals(len(bars))

	for i := range bars {
		upper := middle[i] + std[i]*s.params.NumStd
		lower := middle[i] - std[i]*s.params.NumStd

		switch {
		case closes[i] <= lower:
			signals[i] = types.SignalTypeBuy
		case closes[i] >= upper:
			signals[i] = types.SignalTypeSell
		}
	}

	return signals, nil
}
