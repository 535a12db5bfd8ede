package datasource

import (
	"time"

	"github.com/quantbench/quantbench/internal/types"
)

// DataSource loads an ordered bar series for the simulator. Initialize
// points the source at a data file; the source stays usable until Close.
type DataSource interface {
	// Initialize loads market data from the given file path.
	Initialize(path string) error
	// ReadAll returns every bar ordered by time ascending.
	ReadAll() ([]types.Bar, error)
	// ReadRange returns bars with start <= time <= end, ordered ascending.
	ReadRange(start, end time.Time) ([]types.Bar, error)
	// Count returns the number of bars available.
	Count() (int, error)
	Close() error
}
