// Package datasource loads daily bars through DuckDB. The price history file
// (CSV or parquet) is exposed as a view, so queries stream from disk without
// an import step.
package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/vnquant-lab/signal-engine/internal/logger"
	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

// BarSource reads daily bars from a DuckDB view over a price history file.
type BarSource struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewBarSource opens an in-memory DuckDB instance. Call Initialize to point
// it at a price history file.
func NewBarSource(log *logger.Logger) (*BarSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &BarSource{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize exposes the price history file as the bars view. Parquet files
// are read natively; anything else goes through CSV auto-detection. The file
// must carry symbol, date, open, high, low, close and volume columns.
func (s *BarSource) Initialize(path string) error {
	s.log.Debug("initializing bar source", zap.String("path", path))

	if _, err := s.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to drop existing bars view", err)
	}

	reader := "read_csv_auto"
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		reader = "read_parquet"
	}

	// CREATE VIEW cannot be parameterized, so the path is inlined.
	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM %s('%s');`, reader, strings.ReplaceAll(path, "'", "''"))
	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to create bars view over %s", path)
	}

	return nil
}

// Symbols lists every distinct symbol in the history, sorted.
func (s *BarSource) Symbols() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT symbol FROM bars ORDER BY symbol;`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate symbols", err)
	}

	return symbols, nil
}

// GetBars returns the full ascending bar series for a symbol.
func (s *BarSource) GetBars(symbol string) ([]types.Bar, error) {
	query, args, err := s.sq.
		Select("symbol", "date", "open", "high", "low", "close", "volume").
		From("bars").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bars query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query bars for %s", symbol)
	}
	defer rows.Close()

	bars, err := scanBars(rows)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no bars found for symbol %s", symbol)
	}

	if err := types.ValidateBarSeries(bars); err != nil {
		return nil, err
	}

	return bars, nil
}

// GetBarsOn returns the bar of every symbol that traded on the given day,
// keyed by symbol.
func (s *BarSource) GetBarsOn(day time.Time) (map[string]types.Bar, error) {
	query, args, err := s.sq.
		Select("symbol", "date", "open", "high", "low", "close", "volume").
		From("bars").
		Where(squirrel.Eq{"date": day.Format("2006-01-02")}).
		OrderBy("symbol ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build daily bars query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query bars on %s", day.Format("2006-01-02"))
	}
	defer rows.Close()

	bars, err := scanBars(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[string]types.Bar, len(bars))
	for _, b := range bars {
		out[b.Symbol] = b
	}

	return out, nil
}

// LatestDate returns the most recent bar date in the history.
func (s *BarSource) LatestDate() (time.Time, error) {
	var latest time.Time
	if err := s.db.QueryRow(`SELECT max(date) FROM bars;`).Scan(&latest); err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read latest bar date", err)
	}

	return latest, nil
}

// Close releases the underlying database.
func (s *BarSource) Close() error {
	return s.db.Close()
}

func scanBars(rows *sql.Rows) ([]types.Bar, error) {
	var bars []types.Bar

	for rows.Next() {
		var b types.Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar row", err)
		}

		bars = append(bars, b)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate bar rows", err)
	}

	return bars, nil
}
