package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/quantbench/quantbench/internal/logger"
	"github.com/quantbench/quantbench/internal/metrics"
	"github.com/quantbench/quantbench/internal/strategy"
	"github.com/quantbench/quantbench/internal/types"
	"github.com/quantbench/quantbench/pkg/errors"
	"go.uber.org/zap"
)

// OnBarCallback reports per-bar progress: bars processed so far and the
// total.
type OnBarCallback func(processed, total int)

// BacktestEngine walks a time-ordered bar series, converts per-bar signals
// into portfolio state transitions and derives performance metrics from the
// resulting equity curve.
type BacktestEngine struct {
	config    Config
	strategy  strategy.Strategy
	portfolio *Portfolio
	calc      metrics.Calculator
	log       *logger.Logger
}

// NewBacktestEngine constructs an engine from an already validated config
// and a constructed strategy. Each engine owns an independent portfolio;
// engines never share state.
func NewBacktestEngine(config Config, strat strategy.Strategy, log *logger.Logger) (*BacktestEngine, error) {
	sizer, err := NewSizer(config.Sizing)
	if err != nil {
		return nil, err
	}

	return &BacktestEngine{
		config:    config,
		strategy:  strat,
		portfolio: NewPortfolio(config.InitialCapital, config.Commission, config.Slippage, sizer, log),
		calc:      metrics.NewCalculator(),
		log:       log,
	}, nil
}

// Portfolio exposes the portfolio read-only after a run.
func (b *BacktestEngine) Portfolio() *Portfolio {
	return b.portfolio
}

// Run executes one backtest over the bar series and returns the results
// record. An empty bar series yields an empty result rather than an error.
func (b *BacktestEngine) Run(bars []types.Bar, onBar optional.Option[OnBarCallback]) (types.Result, error) {
	symbol := b.config.Symbol

	if err := types.ValidateBars(bars); err != nil {
		return types.Result{}, err
	}

	bars = b.filterTimeRange(bars)

	b.log.Info("starting backtest",
		zap.String("strategy", b.strategy.Name()),
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
	)

	signals, err := b.strategy.GenerateSignals(bars)
	if err != nil {
		return types.Result{}, errors.Wrap(errors.ErrCodeBacktestFailed, "strategy failed to generate signals", err)
	}

	if len(signals) != len(bars) {
		return types.Result{}, errors.Newf(errors.ErrCodeInvalidSignal,
			"strategy produced %d signals for %d bars", len(signals), len(bars))
	}

	annotated := make([]types.AnnotatedBar, len(bars))
	for i := range bars {
		annotated[i] = types.AnnotatedBar{Bar: bars[i], Signal: signals[i]}
	}

	// Stable sort keeps encounter order for equal timestamps.
	sort.SliceStable(annotated, func(i, j int) bool {
		return annotated[i].Bar.Time.Before(annotated[j].Bar.Time)
	})

	for i, ab := range annotated {
		bar := ab.Bar
		currentPrices := map[string]float64{symbol: bar.Close}

		if ab.Signal != types.SignalTypeHold {
			// A new open trade is created before the fill so the
			// portfolio can finalize its placeholder quantity.
			if ab.Signal == types.SignalTypeBuy {
				b.portfolio.OpenTrade(types.Trade{
					ID:         uuid.New().String(),
					Symbol:     symbol,
					Direction:  types.TradeDirectionLong,
					EntryTime:  bar.Time,
					EntryPrice: bar.Close,
					Quantity:   0,
				})
			}

			b.portfolio.Execute(symbol, ab.Signal, bar.Close, bar.Time, currentPrices)
		}

		b.portfolio.RecordEquity(bar.Time, currentPrices)

		if onBar.IsSome() {
			onBar.Unwrap()(i+1, len(annotated))
		}
	}

	ordered := make([]types.Bar, len(annotated))
	for i := range annotated {
		ordered[i] = annotated[i].Bar
	}

	result := b.calc.Calculate(metrics.Input{
		StrategyName:   b.strategy.Name(),
		Symbol:         symbol,
		InitialCapital: b.config.InitialCapital,
		EquityCurve:    b.portfolio.EquityCurve(),
		Trades:         b.portfolio.Trades(),
		Bars:           ordered,
	})
	result.ID = uuid.New().String()
	result.Timestamp = time.Now()

	b.log.Info("backtest complete",
		zap.String("strategy", b.strategy.Name()),
		zap.Float64("total_return", result.TotalReturn),
		zap.Int("trades", result.TotalTrades),
	)

	return result, nil
}

func (b *BacktestEngine) filterTimeRange(bars []types.Bar) []types.Bar {
	if b.config.StartTime.IsNone() && b.config.EndTime.IsNone() {
		return bars
	}

	filtered := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		if b.config.StartTime.IsSome() && bar.Time.Before(b.config.StartTime.Unwrap()) {
			continue
		}

		if b.config.EndTime.IsSome() && bar.Time.After(b.config.EndTime.Unwrap()) {
			continue
		}

		filtered = append(filtered, bar)
	}

	return filtered
}
