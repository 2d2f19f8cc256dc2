package persist

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder writes telemetry to a local SQLite file.
type SQLiteRecorder struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates the telemetry database at path.
func OpenSQLite(path string) (*SQLiteRecorder, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}
	r := &SQLiteRecorder{conn: conn}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate telemetry db: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		ticks INTEGER NOT NULL DEFAULT 0,
		objects INTEGER NOT NULL DEFAULT 0,
		acquisitions INTEGER NOT NULL DEFAULT 0,
		violations INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS target_acquisitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		seeker INTEGER NOT NULL,
		seeker_type TEXT NOT NULL,
		target INTEGER NOT NULL,
		target_type TEXT NOT NULL,
		mode TEXT NOT NULL,
		score INTEGER NOT NULL,
		cell INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS invariant_violations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		cell INTEGER NOT NULL,
		object INTEGER NOT NULL,
		existing INTEGER NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_target_acquisitions_run_tick ON target_acquisitions(run_id, tick);
	`
	_, err := r.conn.Exec(schema)
	return err
}

func (r *SQLiteRecorder) BeginRun(ctx context.Context, run Run) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO runs (run_id, seed, width, height, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(), run.Seed, run.Width, run.Height, run.StartedAt)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordAcquisitions(ctx context.Context, rows []Acquisition) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("acquisitions begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO target_acquisitions (run_id, tick, seeker, seeker_type, target, target_type, mode, score, cell)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("acquisitions prepare: %w", err)
	}
	defer stmt.Close()
	for _, a := range rows {
		if _, err := stmt.ExecContext(ctx, a.RunID.String(), int64(a.Tick), int64(a.Seeker), a.SeekerType,
			int64(a.Target), a.TargetType, a.Mode, a.Score, a.Cell); err != nil {
			return fmt.Errorf("acquisitions insert: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordViolations(ctx context.Context, rows []Violation) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("violations begin: %w", err)
	}
	defer tx.Rollback()

	for _, v := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO invariant_violations (run_id, tick, cell, object, existing, reason) VALUES (?, ?, ?, ?, ?, ?)`,
			v.RunID.String(), int64(v.Tick), v.Cell, int64(v.Object), int64(v.Existing), v.Reason); err != nil {
			return fmt.Errorf("violations insert: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) FinishRun(ctx context.Context, run Run) error {
	_, err := r.conn.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, ticks = ?, objects = ?, acquisitions = ?, violations = ? WHERE run_id = ?`,
		run.FinishedAt, int64(run.Ticks), run.Objects, run.Acquisitions, run.Violations, run.ID.String())
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// AcquisitionCount is the number of acquisitions stored for a run.
func (r *SQLiteRecorder) AcquisitionCount(ctx context.Context, runID string) (int64, error) {
	var n int64
	if err := r.conn.GetContext(ctx, &n, `SELECT COUNT(*) FROM target_acquisitions WHERE run_id = ?`, runID); err != nil {
		return 0, err
	}
	return n, nil
}

// Acquisitions loads every acquisition of a run in tick order.
func (r *SQLiteRecorder) Acquisitions(ctx context.Context, runID string) ([]Acquisition, error) {
	type row struct {
		Tick       int64  `db:"tick"`
		Seeker     int64  `db:"seeker"`
		SeekerType string `db:"seeker_type"`
		Target     int64  `db:"target"`
		TargetType string `db:"target_type"`
		Mode       string `db:"mode"`
		Score      int    `db:"score"`
		Cell       int32  `db:"cell"`
	}
	var rows []row
	if err := r.conn.SelectContext(ctx, &rows,
		`SELECT tick, seeker, seeker_type, target, target_type, mode, score, cell
		 FROM target_acquisitions WHERE run_id = ? ORDER BY tick, id`, runID); err != nil {
		return nil, err
	}
	out := make([]Acquisition, len(rows))
	for i, x := range rows {
		out[i] = Acquisition{
			Tick: uint64(x.Tick), Seeker: uint64(x.Seeker), SeekerType: x.SeekerType,
			Target: uint64(x.Target), TargetType: x.TargetType, Mode: x.Mode, Score: x.Score, Cell: x.Cell,
		}
	}
	return out, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.conn.Close()
}
