// Package strategy implements the signal sources for the backtester. Each
// strategy is a pure function of historical data: the signal assigned to bar
// i uses bars[0..i] only.
package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/quantbench/quantbench/internal/types"
	"github.com/quantbench/quantbench/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Strategy produces exactly one signal per bar.
type Strategy interface {
	Name() string
	GenerateSignals(bars []types.Bar) ([]types.SignalType, error)
}

// Recognized strategy names. The set is closed: dispatch happens over these
// tags, and unknown names fail fast at construction.
const (
	NameMACrossover   = "ma_crossover"
	NameMeanReversion = "mean_reversion"
	NameMomentum      = "momentum"
	NameRSI           = "rsi"
	NameMACD          = "macd"
	NameBollinger     = "bollinger"
)

// New constructs a strategy by name from its YAML parameter node. A nil node
// yields the strategy's defaults.
func New(name string, params *yaml.Node) (Strategy, error) {
	switch name {
	case NameMACrossover:
		var p MACrossoverParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}

		return NewMACrossover(p)
	case NameMeanReversion:
		var p MeanReversionParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}

		return NewMeanReversion(p)
	case NameMomentum:
		var p MomentumParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}

		return NewMomentum(p)
	case NameRSI:
		var p RSIParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}

		return NewRSI(p)
	case NameMACD:
		var p MACDParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}

		return NewMACD(p)
	case NameBollinger:
		var p BollingerParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}

		return NewBollinger(p)
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownStrategy, "unknown strategy: %s", name)
	}
}

func decodeParams(node *yaml.Node, out any) error {
	if node == nil || node.Kind == 0 {
		return nil
	}

	if err := node.Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to decode strategy parameters", err)
	}

	return nil
}

func validateParams(params any) error {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy parameters", err)
	}

	return nil
}

func holdSignals(n int) []types.SignalType {
	signals := make([]types.SignalType, n)
	for i := range signals {
		signals[i] = types.SignalTypeHold
	}

	return signals
}
