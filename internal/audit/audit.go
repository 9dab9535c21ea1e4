// Package audit appends one JSON line per interception run to a trail
// file. The trail records what was recommended, when, and under which
// ruleset version, so a screening result can be traced back later. A
// nil *Log disables recording entirely.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Run outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Event is one interception run. Events with outcome "error" carry the
// failure message and no target fields.
type Event struct {
	Timestamp      int64   `json:"ts"` // Unix milliseconds
	RequestID      string  `json:"req"`
	MissionStep    string  `json:"mission"`
	TargetGene     string  `json:"target,omitempty"`
	RankScore      float64 `json:"rank_score,omitempty"`
	Candidates     int     `json:"candidates"`
	Warnings       int     `json:"warnings,omitempty"`
	RulesetVersion string  `json:"ruleset"`
	ElapsedMS      int64   `json:"elapsed_ms"`
	Outcome        string  `json:"outcome"`
	Error          string  `json:"error,omitempty"`
}

// Log is an append-only JSONL trail. Safe for concurrent use.
type Log struct {
	mu   sync.Mutex
	file *os.File
	log  *zap.Logger
}

// Open opens or creates the trail file at path, creating parent
// directories as needed.
func Open(path string, log *zap.Logger) (*Log, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit trail: %w", err)
	}
	return &Log{file: file, log: log}, nil
}

// Record appends one event. Recording never fails the caller; a write
// error is logged and the run proceeds.
func (l *Log) Record(ev Event) {
	if l == nil {
		return
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		l.log.Warn("audit event not serializable", zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		l.log.Warn("audit write failed", zap.Error(err))
	}
}

// Close flushes and closes the trail file.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
