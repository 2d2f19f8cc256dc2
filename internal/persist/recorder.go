package persist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run describes one simulation session.
type Run struct {
	ID           uuid.UUID
	Seed         int64
	Width        int32
	Height       int32
	StartedAt    time.Time
	FinishedAt   time.Time
	Ticks        uint64
	Objects      int
	Acquisitions int64
	Violations   int64
}

// NewRun stamps a fresh run id and start time.
func NewRun(seed int64, width, height int32) Run {
	return Run{
		ID:        uuid.New(),
		Seed:      seed,
		Width:     width,
		Height:    height,
		StartedAt: time.Now().UTC(),
	}
}

// Acquisition is one target lock.
type Acquisition struct {
	RunID      uuid.UUID `json:"-"`
	Tick       uint64    `json:"tick"`
	Seeker     uint64    `json:"seeker"`
	SeekerType string    `json:"seeker_type"`
	Target     uint64    `json:"target"`
	TargetType string    `json:"target_type"`
	Mode       string    `json:"mode"`
	Score      int       `json:"score"`
	Cell       int32     `json:"cell"`
}

// Violation is one refused occupancy mutation.
type Violation struct {
	RunID    uuid.UUID `json:"-"`
	Tick     uint64    `json:"tick"`
	Cell     int32     `json:"cell"`
	Object   uint64    `json:"object"`
	Existing uint64    `json:"existing"`
	Reason   string    `json:"reason"`
}

// Recorder stores run telemetry. Implementations are called from the game
// loop only.
type Recorder interface {
	BeginRun(ctx context.Context, run Run) error
	RecordAcquisitions(ctx context.Context, rows []Acquisition) error
	RecordViolations(ctx context.Context, rows []Violation) error
	FinishRun(ctx context.Context, run Run) error
	Close() error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) BeginRun(context.Context, Run) error                     { return nil }
func (NopRecorder) RecordAcquisitions(context.Context, []Acquisition) error { return nil }
func (NopRecorder) RecordViolations(context.Context, []Violation) error     { return nil }
func (NopRecorder) FinishRun(context.Context, Run) error                    { return nil }
func (NopRecorder) Close() error                                            { return nil }
