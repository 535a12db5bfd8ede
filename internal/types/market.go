package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/quantbench/quantbench/pkg/errors"
)

// Bar is one OHLCV observation for a single time step. Immutable once produced.
type Bar struct {
	Time   time.Time `csv:"time" yaml:"time" validate:"required"`
	Open   float64   `csv:"open" yaml:"open" validate:"gte=0"`
	High   float64   `csv:"high" yaml:"high" validate:"gte=0"`
	Low    float64   `csv:"low" yaml:"low" validate:"gte=0"`
	Close  float64   `csv:"close" yaml:"close" validate:"gte=0"`
	Volume float64   `csv:"volume" yaml:"volume" validate:"gte=0"`
}

// Validate validates the Bar struct.
func (b *Bar) Validate() error {
	validate := validator.New()
	if err := validate.Struct(b); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBar, "invalid bar", err)
	}

	return nil
}

// ValidateBars validates every bar in the series. The series itself may be
// unordered; ordering is handled by the engine with a stable sort.
func ValidateBars(bars []Bar) error {
	for i := range bars {
		if err := bars[i].Validate(); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidBar, err, "bar %d is invalid", i)
		}
	}

	return nil
}

// Closes extracts the close price series from a bar series.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i := range bars {
		closes[i] = bars[i].Close
	}

	return closes
}
