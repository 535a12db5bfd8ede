package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/quantbench/quantbench/internal/logger"
	"github.com/quantbench/quantbench/internal/types"
	"github.com/quantbench/quantbench/pkg/errors"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db  *sql.DB
	log *logger.Logger
}

// NewDuckDBDataSource creates an in-memory DuckDB instance. The market data
// file is attached later by Initialize.
func NewDuckDBDataSource(log *logger.Logger) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{db: db, log: log}, nil
}

// Initialize implements DataSource. CSV and Parquet files are supported,
// chosen by file extension.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.log.Debug("initializing data source", zap.String("path", path))

	reader := "read_csv_auto"
	if strings.HasSuffix(path, ".parquet") {
		reader = "read_parquet"
	}

	query := fmt.Sprintf(`
		CREATE OR REPLACE VIEW market_data AS
		SELECT * FROM %s('%s');
	`, reader, path)

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to load market data from %s", path)
	}

	return nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count() (int, error) {
	var count int

	row := d.db.QueryRow("SELECT COUNT(*) FROM market_data")
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll() ([]types.Bar, error) {
	return d.query(`
		SELECT time, open, high, low, close, volume
		FROM market_data
		ORDER BY time ASC
	`)
}

// ReadRange implements DataSource.
func (d *DuckDBDataSource) ReadRange(start, end time.Time) ([]types.Bar, error) {
	return d.query(`
		SELECT time, open, high, low, close, volume
		FROM market_data
		WHERE time >= ? AND time <= ?
		ORDER BY time ASC
	`, start, end)
}

func (d *DuckDBDataSource) query(query string, args ...any) ([]types.Bar, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate bars", err)
	}

	if err := types.ValidateBars(bars); err != nil {
		return nil, err
	}

	return bars, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}
