package engine

import (
	"time"

	"github.com/quantbench/quantbench/internal/logger"
	"github.com/quantbench/quantbench/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Portfolio owns cash, the single-symbol position, the trade ledger and the
// equity curve for the duration of one backtest run.
//
// Degenerate business conditions (insufficient cash for a sized buy, sell
// with no held position) are silent no-ops, not errors; this is specified
// behavior that the reported metrics depend on.
type Portfolio struct {
	initialCapital float64
	cash           float64
	commission     float64
	slippage       float64
	sizer          PositionSizer
	positions      map[string]float64
	trades         []types.Trade
	// openTrade maps a symbol to the index of its most recently opened,
	// still-open trade in the ledger. At most one open trade exists per
	// symbol at any time.
	openTrade   map[string]int
	equityCurve []types.EquityPoint
	log         *logger.Logger
}

func NewPortfolio(initialCapital, commission, slippage float64, sizer PositionSizer, log *logger.Logger) *Portfolio {
	return &Portfolio{
		initialCapital: initialCapital,
		cash:           initialCapital,
		commission:     commission,
		slippage:       slippage,
		sizer:          sizer,
		positions:      make(map[string]float64),
		trades:         nil,
		openTrade:      make(map[string]int),
		equityCurve:    nil,
		log:            log,
	}
}

func (p *Portfolio) InitialCapital() float64 {
	return p.initialCapital
}

func (p *Portfolio) Cash() float64 {
	return p.cash
}

// Position returns the held quantity for a symbol, 0 when none.
func (p *Portfolio) Position(symbol string) float64 {
	return p.positions[symbol]
}

// Trades returns the full trade ledger, open and closed, in creation order.
func (p *Portfolio) Trades() []types.Trade {
	out := make([]types.Trade, len(p.trades))
	copy(out, p.trades)

	return out
}

// EquityCurve returns the append-only equity log.
func (p *Portfolio) EquityCurve() []types.EquityPoint {
	out := make([]types.EquityPoint, len(p.equityCurve))
	copy(out, p.equityCurve)

	return out
}

// ValueAt returns cash plus the mark-to-market value of all positions. A
// missing price for a held symbol contributes 0.
func (p *Portfolio) ValueAt(currentPrices map[string]float64) float64 {
	value := p.cash
	for symbol, quantity := range p.positions {
		value += quantity * currentPrices[symbol]
	}

	return value
}

// OpenTrade appends a new open trade to the ledger and records it as the
// symbol's open slot. Called by the simulator before Execute on a buy.
func (p *Portfolio) OpenTrade(trade types.Trade) {
	p.trades = append(p.trades, trade)
	p.openTrade[trade.Symbol] = len(p.trades) - 1
}

// Execute applies one signal at the given price and timestamp. Hold is a
// no-op.
func (p *Portfolio) Execute(symbol string, signal types.SignalType, price float64, timestamp time.Time, currentPrices map[string]float64) {
	switch signal {
	case types.SignalTypeBuy:
		p.executeBuy(symbol, price, timestamp, currentPrices)
	case types.SignalTypeSell:
		p.executeSell(symbol, price, timestamp)
	case types.SignalTypeHold:
	}
}

func (p *Portfolio) executeBuy(symbol string, price float64, timestamp time.Time, currentPrices map[string]float64) {
	// Slippage inflates the fill price on entries.
	effectiveDec := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(1 + p.slippage))
	effective, _ := effectiveDec.Float64()

	quantity := p.sizer.Quantity(p.ValueAt(currentPrices), effective)

	costDec := decimal.NewFromFloat(quantity).
		Mul(effectiveDec).
		Mul(decimal.NewFromFloat(1 + p.commission))
	cost, _ := costDec.Float64()

	if quantity <= 0 || p.cash < cost {
		// Buys that would overdraw are suppressed entirely, never
		// partially filled.
		p.log.Debug("buy suppressed",
			zap.String("symbol", symbol),
			zap.Float64("quantity", quantity),
			zap.Float64("cost", cost),
			zap.Float64("cash", p.cash),
		)

		return
	}

	p.cash, _ = decimal.NewFromFloat(p.cash).Sub(costDec).Float64()
	p.positions[symbol] += quantity

	// Finalize the placeholder quantity on the open trade.
	if idx, ok := p.openTrade[symbol]; ok {
		p.trades[idx].Quantity = quantity
	}

	p.log.Info("buy executed",
		zap.Time("time", timestamp),
		zap.String("symbol", symbol),
		zap.Float64("quantity", quantity),
		zap.Float64("price", effective),
	)
}

func (p *Portfolio) executeSell(symbol string, price float64, timestamp time.Time) {
	held := p.positions[symbol]
	if held <= 0 {
		p.log.Debug("sell with no open position",
			zap.String("symbol", symbol),
		)

		return
	}

	// Slippage deflates the fill price on exits. The entire position is
	// sold; there are no partial exits.
	effectiveDec := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(1 - p.slippage))
	effective, _ := effectiveDec.Float64()

	proceedsDec := decimal.NewFromFloat(held).
		Mul(effectiveDec).
		Mul(decimal.NewFromFloat(1 - p.commission))

	if idx, ok := p.openTrade[symbol]; ok {
		p.trades[idx].Quantity = held
		p.trades[idx].Close(timestamp, effective)
		delete(p.openTrade, symbol)
	}

	p.cash, _ = decimal.NewFromFloat(p.cash).Add(proceedsDec).Float64()
	p.positions[symbol] = 0

	p.log.Info("sell executed",
		zap.Time("time", timestamp),
		zap.String("symbol", symbol),
		zap.Float64("quantity", held),
		zap.Float64("price", effective),
	)
}

// RecordEquity appends one snapshot to the equity curve. Called once per bar
// regardless of whether a trade occurred.
func (p *Portfolio) RecordEquity(timestamp time.Time, currentPrices map[string]float64) {
	snapshot := make(map[string]float64, len(p.positions))
	for symbol, quantity := range p.positions {
		snapshot[symbol] = quantity
	}

	p.equityCurve = append(p.equityCurve, types.EquityPoint{
		Time:           timestamp,
		PortfolioValue: p.ValueAt(currentPrices),
		Cash:           p.cash,
		Positions:      snapshot,
	})
}
