package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PostgresRecorder writes telemetry through the pgx pool. Rows of one call
// go in a single transaction.
type PostgresRecorder struct {
	db *DB
}

func NewPostgresRecorder(db *DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

func (r *PostgresRecorder) BeginRun(ctx context.Context, run Run) error {
	if _, err := r.db.Pool.Exec(ctx,
		`INSERT INTO runs (run_id, seed, width, height, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Seed, run.Width, run.Height, run.StartedAt,
	); err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) RecordAcquisitions(ctx context.Context, rows []Acquisition) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range rows {
		batch.Queue(
			`INSERT INTO target_acquisitions (run_id, tick, seeker, seeker_type, target, target_type, mode, score, cell)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			a.RunID, int64(a.Tick), int64(a.Seeker), a.SeekerType, int64(a.Target), a.TargetType, a.Mode, a.Score, a.Cell,
		)
	}
	return r.sendBatch(ctx, "acquisitions", batch)
}

func (r *PostgresRecorder) RecordViolations(ctx context.Context, rows []Violation) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, v := range rows {
		batch.Queue(
			`INSERT INTO invariant_violations (run_id, tick, cell, object, existing, reason)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			v.RunID, int64(v.Tick), v.Cell, int64(v.Object), int64(v.Existing), v.Reason,
		)
	}
	return r.sendBatch(ctx, "violations", batch)
}

func (r *PostgresRecorder) sendBatch(ctx context.Context, what string, batch *pgx.Batch) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s begin: %w", what, err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s insert: %w", what, err)
	}
	return tx.Commit(ctx)
}

func (r *PostgresRecorder) FinishRun(ctx context.Context, run Run) error {
	if _, err := r.db.Pool.Exec(ctx,
		`UPDATE runs SET finished_at = $2, ticks = $3, objects = $4, acquisitions = $5, violations = $6
		 WHERE run_id = $1`,
		run.ID, run.FinishedAt, int64(run.Ticks), run.Objects, run.Acquisitions, run.Violations,
	); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Close() error {
	r.db.Close()
	return nil
}
