package strategy

import (
	"fmt"

	"github.com/quantbench/quantbench/internal/indicator"
	"github.com/quantbench/quantbench/internal/types"
)

type MACDParams struct {
	Fast   int `yaml:"fast" validate:"gt=0"`
	Slow   int `yaml:"slow" validate:"gt=0,gtfield=Fast"`
	Signal int `yaml:"signal" validate:"gt=0"`
}

// MACD trades crossings of the MACD line over its signal line.
type MACD struct {
	params MACDParams
}

func NewMACD(params MACDParams) (*MACD, error) {
	if params.Fast == 0 {
		params.Fast = 12
	}

	if params.Slow == 0 {
		params.Slow = 26
	}

	if params.Signal == 0 {
		params.Signal = 9
	}

	if err := validateParams(params); err != nil {
		return nil, err
	}

	return &MACD{params: params}, nil
}

func (s *MACD) Name() string {
	return fmt.Sprintf("macd_%d_%d_%d", s.params.Fast, s.params.Slow, s.params.Signal)
}

func (s *MACD) GenerateSignals(bars []types.Bar) ([]types.SignalType, error) {
	macd, signalLine, _ := indicator.MACD(types.Closes(bars), s.params.Fast, s.params.Slow, s.params.Signal)

	signals := holdSignals(len(bars))

	for i := 1; i < len(bars); i++ {
		switch {
		case macd[i] > signalLine[i] && macd[i-1] <= signalLine[i-1]:
			signals[i] = types.SignalTypeBuy
		case macd[i] < signalLine[i] && macd[i-1] >= signalLine[i-1]:
			signals[i] = types.SignalTypeSell
		}
	}

	return signals, nil
}
