package strategy

import (
	"fmt"

	"github.com/quantbench/quantbench/internal/indicator"
	"github.com/quantbench/quantbench/internal/types"
)

type MACrossoverParams struct {
	ShortWindow int `yaml:"short_window" validate:"gt=0"`
	LongWindow  int `yaml:"long_window" validate:"gt=0,gtfield=ShortWindow"`
}

// MACrossover buys when the short moving average crosses above the long one
// and sells on the opposite cross.
type MACrossover struct {
	params MACrossoverParams
}

func NewMACrossover(params MACrossoverParams) (*MACrossover, error) {
	if params.ShortWindow == 0 {
		params.ShortWindow = 20
	}

	if params.LongWindow == 0 {
		params.LongWindow = 50
	}

	if err := validateParams(params); err != nil {
		return nil, err
	}

	return &MACrossover{params: params}, nil
}

func (s *MACrossover) Name() string {
	return fmt.Sprintf("ma_crossover_%d_%d", s.params.ShortWindow, s.params.LongWindow)
}

func (s *MACrossover) GenerateSignals(bars []types.Bar) ([]types.SignalType, error) {
	closes := types.Closes(bars)
	maShort := indicator.SMA(closes, s.params.ShortWindow)
	maLong := indicator.SMA(closes, s.params.LongWindow)

	signals := holdSignals(len(bars))

	for i := 1; i < len(bars); i++ {
		diff := maShort[i] - maLong[i]
		prevDiff := maShort[i-1] - maLong[i-1]

		// NaN warm-up values fail both comparisons and leave a hold.
		switch {
		case diff > 0 && prevDiff <= 0:
			signals[i] = types.SignalTypeBuy
		case diff < 0 && prevDiff >= 0:
			signals[i] = types.SignalTypeSell
		}
	}

	return signals, nil
}
