// Package store persists the position book and simulation results in DuckDB.
// The position book is saved as a full snapshot on every run; trade records
// accumulate and can be exported to CSV through DuckDB's COPY.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/vnquant-lab/signal-engine/internal/logger"
	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

// Store is a DuckDB-backed persistence layer. Open it on a file path to keep
// state across runs, or on an empty path for an in-memory database in tests.
type Store struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewStore opens the database and creates the schema.
func NewStore(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreInitFailed, "failed to open duckdb", err)
	}

	s := &Store{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := s.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS positions (
			id VARCHAR PRIMARY KEY,
			symbol VARCHAR NOT NULL,
			strategy VARCHAR NOT NULL,
			signal_date TIMESTAMP NOT NULL,
			direction VARCHAR NOT NULL,
			recommended_entry DOUBLE NOT NULL,
			target DOUBLE NOT NULL,
			stop DOUBLE NOT NULL,
			holding_days INTEGER NOT NULL,
			entry_date TIMESTAMP NOT NULL,
			entry_price DOUBLE,
			expected_exit_date TIMESTAMP NOT NULL,
			exit_date TIMESTAMP,
			exit_price DOUBLE,
			exit_reason VARCHAR,
			pnl_percent DOUBLE,
			status VARCHAR NOT NULL,
			rationale VARCHAR
		);
		CREATE TABLE IF NOT EXISTS trade_records (
			id VARCHAR PRIMARY KEY,
			symbol VARCHAR NOT NULL,
			strategy VARCHAR NOT NULL,
			signal_date TIMESTAMP NOT NULL,
			entry_date TIMESTAMP NOT NULL,
			exit_date TIMESTAMP NOT NULL,
			direction VARCHAR NOT NULL,
			entry_price DOUBLE NOT NULL,
			target DOUBLE NOT NULL,
			stop DOUBLE NOT NULL,
			holding_days INTEGER NOT NULL,
			exit_price DOUBLE NOT NULL,
			exit_reason VARCHAR NOT NULL,
			shares INTEGER NOT NULL,
			pnl DOUBLE NOT NULL,
			pnl_percent DOUBLE NOT NULL,
			result VARCHAR NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(errors.ErrCodeStoreInitFailed, "failed to create schema", err)
	}

	return nil
}

// SavePositions replaces the stored position book with the given snapshot.
// Positions without an ID are assigned one.
func (s *Store) SavePositions(positions []types.Position) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreSaveFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM positions;`); err != nil {
		return errors.Wrap(errors.ErrCodeStoreSaveFailed, "failed to clear positions", err)
	}

	for i := range positions {
		p := &positions[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}

		query, args, err := s.sq.
			Insert("positions").
			Columns("id", "symbol", "strategy", "signal_date", "direction",
				"recommended_entry", "target", "stop", "holding_days", "entry_date",
				"entry_price", "expected_exit_date", "exit_date", "exit_price",
				"exit_reason", "pnl_percent", "status", "rationale").
			Values(p.ID, p.Symbol, p.Strategy, p.SignalDate, string(p.Direction),
				p.RecommendedEntry, p.Target, p.Stop, p.HoldingDays, p.EntryDate,
				nullableFloat(p.EntryPrice), p.ExpectedExitDate, nullableTime(p.ExitDate),
				nullableFloat(p.ExitPrice), nullableReason(p.ExitReason),
				nullableFloat(p.PnLPercent), string(p.Status), p.Rationale).
			ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeStoreSaveFailed, "failed to build position insert", err)
		}

		if _, err := tx.Exec(query, args...); err != nil {
			return errors.Wrapf(errors.ErrCodeStoreSaveFailed, err, "failed to insert position %s", p.IdentityKey())
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreSaveFailed, "failed to commit positions", err)
	}

	return nil
}

// LoadPositions reads the stored position book. Malformed rows are logged and
// skipped rather than failing the whole load.
func (s *Store) LoadPositions() ([]types.Position, error) {
	query, args, err := s.sq.
		Select("id", "symbol", "strategy", "signal_date", "direction",
			"recommended_entry", "target", "stop", "holding_days", "entry_date",
			"entry_price", "expected_exit_date", "exit_date", "exit_price",
			"exit_reason", "pnl_percent", "status", "rationale").
		From("positions").
		OrderBy("signal_date ASC", "symbol ASC", "strategy ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreLoadFailed, "failed to build positions query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreLoadFailed, "failed to query positions", err)
	}
	defer rows.Close()

	var positions []types.Position

	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			s.log.Warn("skipping malformed position row", zap.Error(err))

			continue
		}

		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreLoadFailed, "failed to iterate positions", err)
	}

	return positions, nil
}

// SaveTradeRecords appends simulation results.
func (s *Store) SaveTradeRecords(records []types.TradeRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreSaveFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		query, args, err := s.sq.
			Insert("trade_records").
			Columns("id", "symbol", "strategy", "signal_date", "entry_date", "exit_date",
				"direction", "entry_price", "target", "stop", "holding_days",
				"exit_price", "exit_reason", "shares", "pnl", "pnl_percent", "result").
			Values(uuid.New().String(), r.Symbol, r.Strategy, r.SignalDate, r.EntryDate, r.ExitDate,
				string(r.Direction), r.EntryPrice, r.Target, r.Stop, r.HoldingDays,
				r.ExitPrice, string(r.ExitReason), r.Shares, r.PnL, r.PnLPercent, string(r.Result)).
			ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeStoreSaveFailed, "failed to build trade record insert", err)
		}

		if _, err := tx.Exec(query, args...); err != nil {
			return errors.Wrap(errors.ErrCodeStoreSaveFailed, "failed to insert trade record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreSaveFailed, "failed to commit trade records", err)
	}

	return nil
}

// LoadTradeRecords reads back every stored simulation result, oldest first.
func (s *Store) LoadTradeRecords() ([]types.TradeRecord, error) {
	query, args, err := s.sq.
		Select("symbol", "strategy", "signal_date", "entry_date", "exit_date",
			"direction", "entry_price", "target", "stop", "holding_days",
			"exit_price", "exit_reason", "shares", "pnl", "pnl_percent", "result").
		From("trade_records").
		OrderBy("signal_date ASC", "symbol ASC", "strategy ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreLoadFailed, "failed to build trade records query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreLoadFailed, "failed to query trade records", err)
	}
	defer rows.Close()

	var records []types.TradeRecord

	for rows.Next() {
		var (
			r                         types.TradeRecord
			direction, reason, result string
		)

		err := rows.Scan(&r.Symbol, &r.Strategy, &r.SignalDate, &r.EntryDate, &r.ExitDate,
			&direction, &r.EntryPrice, &r.Target, &r.Stop, &r.HoldingDays,
			&r.ExitPrice, &reason, &r.Shares, &r.PnL, &r.PnLPercent, &result)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreLoadFailed, "failed to scan trade record", err)
		}

		r.Direction = types.Direction(direction)
		r.ExitReason = types.ExitReason(reason)
		r.Result = types.TradeResult(result)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreLoadFailed, "failed to iterate trade records", err)
	}

	return records, nil
}

// ExportTradeRecordsCSV writes the stored trade records to a CSV file through
// DuckDB's COPY.
func (s *Store) ExportTradeRecordsCSV(path string) error {
	query := fmt.Sprintf(`
		COPY (
			SELECT symbol, strategy, signal_date, entry_date, exit_date, direction,
				entry_price, target, stop, holding_days, exit_price, exit_reason,
				shares, pnl, pnl_percent, result
			FROM trade_records
			ORDER BY signal_date ASC, symbol ASC, strategy ASC
		) TO '%s' (HEADER, DELIMITER ',');
	`, strings.ReplaceAll(path, "'", "''"))

	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to export trade records to %s", path)
	}

	s.log.Info("exported trade records", zap.String("path", path))

	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanPosition(rows *sql.Rows) (types.Position, error) {
	var (
		p                     types.Position
		direction, status     string
		entryPrice, exitPrice sql.NullFloat64
		pnlPercent            sql.NullFloat64
		exitDate              sql.NullTime
		exitReason, rationale sql.NullString
	)

	err := rows.Scan(&p.ID, &p.Symbol, &p.Strategy, &p.SignalDate, &direction,
		&p.RecommendedEntry, &p.Target, &p.Stop, &p.HoldingDays, &p.EntryDate,
		&entryPrice, &p.ExpectedExitDate, &exitDate, &exitPrice,
		&exitReason, &pnlPercent, &status, &rationale)
	if err != nil {
		return types.Position{}, errors.Wrap(errors.ErrCodeMalformedRow, "failed to scan position row", err)
	}

	switch types.Direction(direction) {
	case types.DirectionUp, types.DirectionDown:
		p.Direction = types.Direction(direction)
	default:
		return types.Position{}, errors.Newf(errors.ErrCodeMalformedRow, "position %s has invalid direction %q", p.ID, direction)
	}

	switch types.PositionStatus(status) {
	case types.PositionStatusPending, types.PositionStatusOpen, types.PositionStatusClosed:
		p.Status = types.PositionStatus(status)
	default:
		return types.Position{}, errors.Newf(errors.ErrCodeMalformedRow, "position %s has invalid status %q", p.ID, status)
	}

	if entryPrice.Valid {
		p.EntryPrice = optional.Some(entryPrice.Float64)
	}

	if exitDate.Valid {
		p.ExitDate = optional.Some(exitDate.Time)
	}

	if exitPrice.Valid {
		p.ExitPrice = optional.Some(exitPrice.Float64)
	}

	if exitReason.Valid {
		p.ExitReason = optional.Some(types.ExitReason(exitReason.String))
	}

	if pnlPercent.Valid {
		p.PnLPercent = optional.Some(pnlPercent.Float64)
	}

	p.Rationale = rationale.String

	return p, nil
}

func nullableFloat(o optional.Option[float64]) any {
	if o.IsSome() {
		return o.Unwrap()
	}

	return nil
}

func nullableTime(o optional.Option[time.Time]) any {
	if o.IsSome() {
		return o.Unwrap()
	}

	return nil
}

func nullableReason(o optional.Option[types.ExitReason]) any {
	if o.IsSome() {
		return string(o.Unwrap())
	}

	return nil
}
