package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

type TradeDirection string

const (
	TradeDirectionLong TradeDirection = "long"
	// TradeDirectionShort exists for future short support; the simulator only
	// ever opens long trades.
	TradeDirectionShort TradeDirection = "short"
)

// Trade records one round-trip position. It is created the moment a buy
// signal is accepted and mutated exactly once, at exit.
type Trade struct {
	ID         string
	Symbol     string
	Direction  TradeDirection
	EntryTime  time.Time
	EntryPrice float64
	// Quantity starts as a placeholder of 0 and is finalized once the
	// position size is computed by the fill.
	Quantity  float64
	ExitTime  optional.Option[time.Time]
	ExitPrice optional.Option[float64]
	PnL       optional.Option[float64]
	PnLPct    optional.Option[float64]
}

// Closed reports whether the trade has been exited.
func (t *Trade) Closed() bool {
	return t.ExitTime.IsSome()
}

// Close finalizes the trade at the given exit time and effective exit price.
// PnL is (exit - entry) * quantity; PnLPct is (exit - entry) / entry.
func (t *Trade) Close(exitTime time.Time, exitPrice float64) {
	entryDec := decimal.NewFromFloat(t.EntryPrice)
	exitDec := decimal.NewFromFloat(exitPrice)
	qtyDec := decimal.NewFromFloat(t.Quantity)

	pnl, _ := exitDec.Sub(entryDec).Mul(qtyDec).Float64()

	pnlPct := 0.0
	if t.EntryPrice != 0 {
		pnlPct, _ = exitDec.Sub(entryDec).Div(entryDec).Float64()
	}

	t.ExitTime = optional.Some(exitTime)
	t.ExitPrice = optional.Some(exitPrice)
	t.PnL = optional.Some(pnl)
	t.PnLPct = optional.Some(pnlPct)
}

// ClosedTrade is the immutable, fully resolved view of a closed trade used in
// results and persistence.
type ClosedTrade struct {
	ID         string         `yaml:"id" csv:"id"`
	Symbol     string         `yaml:"symbol" csv:"symbol"`
	Direction  TradeDirection `yaml:"direction" csv:"direction"`
	EntryTime  time.Time      `yaml:"entry_time" csv:"entry_time"`
	EntryPrice float64        `yaml:"entry_price" csv:"entry_price"`
	ExitTime   time.Time      `yaml:"exit_time" csv:"exit_time"`
	ExitPrice  float64        `yaml:"exit_price" csv:"exit_price"`
	Quantity   float64        `yaml:"quantity" csv:"quantity"`
	PnL        float64        `yaml:"pnl" csv:"pnl"`
	PnLPct     float64        `yaml:"pnl_pct" csv:"pnl_pct"`
}

// ToClosed converts the trade into its resolved view. The second return value
// is false when the trade is still open.
func (t *Trade) ToClosed() (ClosedTrade, bool) {
	if !t.Closed() {
		return ClosedTrade{}, false
	}

	return ClosedTrade{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Direction:  t.Direction,
		EntryTime:  t.EntryTime,
		EntryPrice: t.EntryPrice,
		ExitTime:   t.ExitTime.Unwrap(),
		ExitPrice:  t.ExitPrice.Unwrap(),
		Quantity:   t.Quantity,
		PnL:        t.PnL.Unwrap(),
		PnLPct:     t.PnLPct.Unwrap(),
	}, true
}
