// Package store persists backtest results in an embedded DuckDB database
// and exports them as Parquet files for downstream analysis.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/quantbench/quantbench/internal/logger"
	"github.com/quantbench/quantbench/internal/types"
	"github.com/quantbench/quantbench/pkg/errors"
	"go.uber.org/zap"
)

// ResultStore records run summaries, closed trades and equity snapshots in
// an in-memory DuckDB database.
type ResultStore struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewResultStore creates a store backed by an in-memory DuckDB database.
func NewResultStore(log *logger.Logger) (*ResultStore, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeStoreFailed, "failed to connect to database", err)
	}

	store := &ResultStore{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *ResultStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMP,
			strategy_name TEXT,
			symbol TEXT,
			initial_capital DOUBLE,
			final_value DOUBLE,
			total_return DOUBLE,
			sharpe_ratio DOUBLE,
			max_drawdown DOUBLE,
			total_trades INTEGER,
			winning_trades INTEGER,
			losing_trades INTEGER,
			win_rate DOUBLE,
			avg_win DOUBLE,
			avg_loss DOUBLE,
			profit_factor DOUBLE,
			buy_hold_return DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, "failed to create runs table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			run_id TEXT,
			id TEXT,
			symbol TEXT,
			direction TEXT,
			entry_time TIMESTAMP,
			entry_price DOUBLE,
			exit_time TIMESTAMP,
			exit_price DOUBLE,
			quantity DOUBLE,
			pnl DOUBLE,
			pnl_pct DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, "failed to create trades table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS equity (
			run_id TEXT,
			time TIMESTAMP,
			portfolio_value DOUBLE,
			cash DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, "failed to create equity table", err)
	}

	return nil
}

// SaveResult records one run and its trade and equity detail rows.
func (s *ResultStore) SaveResult(result types.Result) error {
	runQuery := s.sq.
		Insert("runs").
		Columns(
			"id", "timestamp", "strategy_name", "symbol", "initial_capital",
			"final_value", "total_return", "sharpe_ratio", "max_drawdown",
			"total_trades", "winning_trades", "losing_trades", "win_rate",
			"avg_win", "avg_loss", "profit_factor", "buy_hold_return",
		).
		Values(
			result.ID, result.Timestamp, result.StrategyName, result.Symbol, result.InitialCapital,
			result.FinalValue, result.TotalReturn, result.SharpeRatio, result.MaxDrawdown,
			result.TotalTrades, result.WinningTrades, result.LosingTrades, result.WinRate,
			result.AvgWin, result.AvgLoss, result.ProfitFactor, result.BuyHoldReturn,
		).
		RunWith(s.db)

	if _, err := runQuery.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, "failed to insert run", err)
	}

	for _, trade := range result.Trades {
		insertQuery := s.sq.
			Insert("trades").
			Columns(
				"run_id", "id", "symbol", "direction", "entry_time", "entry_price",
				"exit_time", "exit_price", "quantity", "pnl", "pnl_pct",
			).
			Values(
				result.ID, trade.ID, trade.Symbol, string(trade.Direction), trade.EntryTime, trade.EntryPrice,
				trade.ExitTime, trade.ExitPrice, trade.Quantity, trade.PnL, trade.PnLPct,
			).
			RunWith(s.db)

		if _, err := insertQuery.Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeStoreFailed, "failed to insert trade", err)
		}
	}

	for _, point := range result.EquityCurve {
		insertQuery := s.sq.
			Insert("equity").
			Columns("run_id", "time", "portfolio_value", "cash").
			Values(result.ID, point.Time, point.PortfolioValue, point.Cash).
			RunWith(s.db)

		if _, err := insertQuery.Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeStoreFailed, "failed to insert equity point", err)
		}
	}

	s.log.Info("result saved",
		zap.String("run_id", result.ID),
		zap.Int("trades", len(result.Trades)),
		zap.Int("equity_points", len(result.EquityCurve)),
	)

	return nil
}

// GetRunIDs returns the IDs of all saved runs in insertion order.
func (s *ResultStore) GetRunIDs() ([]string, error) {
	selectQuery := s.sq.
		Select("id").
		From("runs").
		OrderBy("timestamp ASC").
		RunWith(s.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, "failed to query runs", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreFailed, "failed to scan run id", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, "error iterating runs", err)
	}

	return ids, nil
}

// Write exports the runs, trades and equity tables to Parquet files in the
// given directory.
func (s *ResultStore) Write(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, "failed to create directory", err)
	}

	for _, table := range []string{"runs", "trades", "equity"} {
		target := filepath.Join(path, table+".parquet")

		_, err := s.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, target))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeStoreFailed, err, "failed to export %s to Parquet", table)
		}
	}

	s.log.Info("results exported to Parquet",
		zap.String("path", path),
	)

	return nil
}

// Close closes the database connection.
func (s *ResultStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}
