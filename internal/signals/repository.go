package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rotationlab/backend/internal/contracts"
)

// Repository mirrors the ledger into Postgres for querying and history. The
// JSON store remains the source of truth for replay; the database is a
// projection rewritten in full each run.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a signal repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveLedger replaces the stored ledger snapshot for the given date.
func (r *Repository) SaveLedger(ctx context.Context, asOf time.Time, led *Ledger) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM rotation.signals WHERE as_of = $1", asOf)
	if err != nil {
		return fmt.Errorf("failed to delete old signals: %w", err)
	}

	query := `
		INSERT INTO rotation.signals (
			as_of, ticker, sector, sector_name, open_date, open_price,
			bench_open_price, current_phase, days_active, return_abs,
			return_vs_bench, status, close_date, close_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, sig := range led.Signals {
		var closeReason *string
		if sig.CloseReason != "" {
			s := string(sig.CloseReason)
			closeReason = &s
		}
		_, err := tx.Exec(ctx, query,
			asOf, sig.Ticker, sig.Sector, sig.SectorName, sig.OpenDate, sig.OpenPrice,
			sig.BenchOpenPrice, string(sig.CurrentPhase), sig.DaysActive, sig.ReturnAbs,
			sig.ReturnVsBench, string(sig.Status), sig.CloseDate, closeReason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert signal %s: %w", sig.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLedger retrieves the ledger snapshot stored for a date.
func (r *Repository) GetLedger(ctx context.Context, asOf time.Time) (*Ledger, error) {
	query := `
		SELECT ticker, sector, sector_name, open_date, open_price,
			bench_open_price, current_phase, days_active, return_abs,
			return_vs_bench, status, close_date, close_reason
		FROM rotation.signals
		WHERE as_of = $1
		ORDER BY open_date DESC, ticker
	`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	led := NewLedger()
	led.AsOf = asOf
	for rows.Next() {
		var sig contracts.Signal
		var phaseStr, statusStr string
		var closeReason *string
		err := rows.Scan(
			&sig.Ticker, &sig.Sector, &sig.SectorName, &sig.OpenDate, &sig.OpenPrice,
			&sig.BenchOpenPrice, &phaseStr, &sig.DaysActive, &sig.ReturnAbs,
			&sig.ReturnVsBench, &statusStr, &sig.CloseDate, &closeReason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		sig.CurrentPhase = contracts.PhaseKind(phaseStr)
		sig.Status = contracts.SignalStatus(statusStr)
		if closeReason != nil {
			sig.CloseReason = contracts.CloseReason(*closeReason)
		}
		led.Add(&sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return led, nil
}

// GetClosedSince returns closed signals with a close date on or after the
// cutoff, newest first, across all stored snapshots.
func (r *Repository) GetClosedSince(ctx context.Context, cutoff time.Time) ([]*contracts.Signal, error) {
	query := `
		SELECT DISTINCT ON (ticker, open_date)
			ticker, sector, sector_name, open_date, open_price,
			bench_open_price, current_phase, days_active, return_abs,
			return_vs_bench, status, close_date, close_reason
		FROM rotation.signals
		WHERE status = 'closed' AND close_date >= $1
		ORDER BY ticker, open_date, as_of DESC
	`

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed signals: %w", err)
	}
	defer rows.Close()

	var out []*contracts.Signal
	for rows.Next() {
		var sig contracts.Signal
		var phaseStr, statusStr string
		var closeReason *string
		err := rows.Scan(
			&sig.Ticker, &sig.Sector, &sig.SectorName, &sig.OpenDate, &sig.OpenPrice,
			&sig.BenchOpenPrice, &phaseStr, &sig.DaysActive, &sig.ReturnAbs,
			&sig.ReturnVsBench, &statusStr, &sig.CloseDate, &closeReason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		sig.CurrentPhase = contracts.PhaseKind(phaseStr)
		sig.Status = contracts.SignalStatus(statusStr)
		if closeReason != nil {
			sig.CloseReason = contracts.CloseReason(*closeReason)
		}
		out = append(out, &sig)
	}
	return out, rows.Err()
}
