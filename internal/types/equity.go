package types

import "time"

// EquityPoint is one append-only snapshot of the portfolio, taken once per
// bar. The equity curve is the canonical record for all downstream risk and
// return computation and is never mutated retroactively.
type EquityPoint struct {
	Time           time.Time          `yaml:"time" csv:"time"`
	PortfolioValue float64            `yaml:"portfolio_value" csv:"portfolio_value"`
	Cash           float64            `yaml:"cash" csv:"cash"`
	Positions      map[string]float64 `yaml:"positions" csv:"-"`
}
