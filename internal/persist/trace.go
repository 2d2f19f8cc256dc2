package persist

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// TraceRecord is one line of the scan trace.
type TraceRecord struct {
	Tick      uint64 `json:"tick"`
	Seeker    uint64 `json:"seeker"`
	Mode      string `json:"mode"`
	Target    uint64 `json:"target"`
	Score     int    `json:"score"`
	Evaluated int    `json:"evaluated"`
	Radius    int    `json:"radius,omitempty"`
	EarlyExit bool   `json:"early_exit,omitempty"`
}

// TraceWriter appends JSON lines to a zstd-compressed file, one per run.
// Single-goroutine access only.
type TraceWriter struct {
	path string
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
	n    int64
}

// NewTraceWriter creates dir/<runID>.jsonl.zst.
func NewTraceWriter(dir, runID string) (*TraceWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("trace dir: %w", err)
	}
	path := filepath.Join(dir, runID+".jsonl.zst")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("trace encoder: %w", err)
	}
	return &TraceWriter{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

func (t *TraceWriter) Path() string { return t.path }

// Lines returns how many records were written.
func (t *TraceWriter) Lines() int64 { return t.n }

func (t *TraceWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	if err := t.w.WriteByte('\n'); err != nil {
		return err
	}
	t.n++
	return nil
}

// Close flushes buffered lines and finishes the zstd frame.
func (t *TraceWriter) Close() error {
	var err1 error
	if t.w != nil {
		err1 = t.w.Flush()
		t.w = nil
	}
	if t.enc != nil {
		if err := t.enc.Close(); err1 == nil {
			err1 = err
		}
		t.enc = nil
	}
	if t.f != nil {
		if err := t.f.Close(); err1 == nil {
			err1 = err
		}
		t.f = nil
	}
	return err1
}

// ReadTrace decodes every line of a trace file into TraceRecords.
func ReadTrace(path string) ([]TraceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("trace decoder: %w", err)
	}
	defer dec.Close()

	var out []TraceRecord
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var rec TraceRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("trace line %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}
