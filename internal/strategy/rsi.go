package strategy

import (
	"fmt"

	"github.com/quantbench/quantbench/internal/indicator"
	"github.com/quantbench/quantbench/internal/types"
)

type RSIParams struct {
	Period     int     `yaml:"period" validate:"gt=1"`
	Oversold   float64 `yaml:"oversold" validate:"gt=0,lt=100"`
	Overbought float64 `yaml:"overbought" validate:"gt=0,lt=100,gtfield=Oversold"`
}

// RSI buys oversold bars and sells overbought ones.
type RSI struct {
	params RSIParams
}

func NewRSI(params RSIParams) (*RSI, error) {
	if params.Period == 0 {
		params.Period = 14
	}

	if params.Oversold == 0 {
		params.Oversold = 30
	}

	if params.Overbought == 0 {
		params.Overbought = 70
	}

	if err := validateParams(params); err != nil {
		return nil, err
	}

	return &RSI{params: params}, nil
}

func (s *RSI) Name() string {
	return fmt.Sprintf("rsi_%d", s.params.Period)
}

func (s *RSI) GenerateSignals(bars []types.Bar) ([]types.SignalType, error) {
	rsi := indicator.RSI(types.Closes(bars), s.params.Period)

	signals := holdSignals(len(bars))

	for i := range bars {
		switch {
		case rsi[i] < s.params.Oversold:
			signals[i] = types.SignalTypeBuy
		case rsi[i] > s.params.Overbought:
			signals[i] = types.SignalTypeSell
		}
	}

	return signals, nil
}
