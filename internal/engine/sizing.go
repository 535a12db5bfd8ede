package engine

import (
	"github.com/quantbench/quantbench/pkg/errors"
	"github.com/shopspring/decimal"
)

// PositionSizer converts a portfolio value and an effective entry price into
// a whole-unit quantity. It is the pluggable sizing point of the simulator;
// the embedded rule is FixedFractionSizer with fraction 0.95.
type PositionSizer interface {
	Quantity(portfolioValue, price float64) float64
}

// FixedFractionSizer budgets a fixed fraction of total portfolio value per
// entry and floors to whole units.
type FixedFractionSizer struct {
	fraction float64
}

func NewFixedFractionSizer(fraction float64) *FixedFractionSizer {
	return &FixedFractionSizer{fraction: fraction}
}

func (s *FixedFractionSizer) Quantity(portfolioValue, price float64) float64 {
	if portfolioValue <= 0 || price <= 0 {
		return 0
	}

	budget := decimal.NewFromFloat(portfolioValue).Mul(decimal.NewFromFloat(s.fraction))
	qty, _ := budget.Div(decimal.NewFromFloat(price)).Floor().Float64()

	return qty
}

// KellySizer budgets by the Kelly criterion, clamped to [0, 0.25] as a
// conservative half-Kelly cap.
type KellySizer struct {
	winRate float64
	avgWin  float64
	avgLoss float64
}

func NewKellySizer(winRate, avgWin, avgLoss float64) *KellySizer {
	return &KellySizer{winRate: winRate, avgWin: avgWin, avgLoss: avgLoss}
}

func (s *KellySizer) Quantity(portfolioValue, price float64) float64 {
	if portfolioValue <= 0 || price <= 0 {
		return 0
	}

	b := 1.0
	if s.avgLoss != 0 {
		b = s.avgWin / s.avgLoss
	}

	p := s.winRate
	q := 1 - p

	fraction := (b*p - q) / b
	if fraction < 0 {
		fraction = 0
	}

	if fraction > 0.25 {
		fraction = 0.25
	}

	budget := decimal.NewFromFloat(portfolioValue).Mul(decimal.NewFromFloat(fraction))
	qty, _ := budget.Div(decimal.NewFromFloat(price)).Floor().Float64()

	return qty
}

// NewSizer constructs the sizing policy selected by the config.
func NewSizer(cfg SizingConfig) (PositionSizer, error) {
	switch cfg.Policy {
	case SizingPolicyFixedFraction:
		return NewFixedFractionSizer(cfg.Fraction), nil
	case SizingPolicyKelly:
		return NewKellySizer(cfg.WinRate, cfg.AvgWin, cfg.AvgLoss), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidSizingPolicy, "unknown sizing policy: %s", cfg.Policy)
	}
}
