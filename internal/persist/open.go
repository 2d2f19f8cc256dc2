package persist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rtsgo/threatgrid/internal/config"
)

// Open returns the recorder selected by cfg.Driver.
func Open(ctx context.Context, cfg config.TelemetryConfig, db config.DatabaseConfig, log *zap.Logger) (Recorder, error) {
	switch cfg.Driver {
	case "", "none":
		return NopRecorder{}, nil
	case "sqlite":
		r, err := OpenSQLite(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		log.Info("telemetry to sqlite", zap.String("path", cfg.SQLite))
		return r, nil
	case "postgres":
		pg, err := NewDB(ctx, db, log)
		if err != nil {
			return nil, fmt.Errorf("telemetry database: %w", err)
		}
		return NewPostgresRecorder(pg), nil
	}
	return nil, fmt.Errorf("unknown telemetry driver %q", cfg.Driver)
}
