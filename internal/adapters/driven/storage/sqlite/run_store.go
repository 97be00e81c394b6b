package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
)

// runStore implements driven.RunStore over the runs table.
// Totals are denormalised into columns for querying; the per-tenant
// breakdown is kept as JSON.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

const runColumns = `id, mode, state, started_at, ended_at, tenants, error`

// Save stores or updates a run.
func (s *runStore) Save(ctx context.Context, run *domain.RunResult) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	tenantsJSON, err := json.Marshal(run.Tenants)
	if err != nil {
		return fmt.Errorf("marshalling tenant results: %w", err)
	}

	totals := run.Totals()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs
			(id, mode, state, started_at, ended_at, rows, adjusted, unchanged,
			 skipped, soft_failed, failed, tenants, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			ended_at = excluded.ended_at,
			rows = excluded.rows,
			adjusted = excluded.adjusted,
			unchanged = excluded.unchanged,
			skipped = excluded.skipped,
			soft_failed = excluded.soft_failed,
			failed = excluded.failed,
			tenants = excluded.tenants,
			error = excluded.error
	`, run.ID, string(run.Mode), string(run.State),
		formatTime(run.StartedAt), formatNullableTime(run.EndedAt),
		totals.Rows, totals.Adjusted, totals.Unchanged,
		totals.Skipped, totals.SoftFailed, totals.Failed,
		string(tenantsJSON), nullString(run.Error))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.RunResult, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return run, err
}

// List returns the most recent runs first.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.RunResult, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func scanRun(row rowScanner) (*domain.RunResult, error) {
	var run domain.RunResult
	var mode, state, startedAt string
	var endedAt, tenantsJSON, errMsg sql.NullString

	if err := row.Scan(&run.ID, &mode, &state, &startedAt, &endedAt, &tenantsJSON, &errMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Mode = domain.RunMode(mode)
	run.State = domain.RunState(state)
	run.StartedAt = parseTime(startedAt)
	run.EndedAt = parseNullableTime(endedAt)
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if tenantsJSON.Valid && tenantsJSON.String != "" && tenantsJSON.String != "null" {
		if err := json.Unmarshal([]byte(tenantsJSON.String), &run.Tenants); err != nil {
			return nil, fmt.Errorf("unmarshalling tenant results: %w", err)
		}
	}
	return &run, nil
}
