package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Schema-mismatch degradation: when the backing store rejects a write
// because a column is missing (store schema lags the app), the attempted
// payload is spooled to a local JSON file instead of being lost, and the
// operator is told the store needs a schema update.

const spoolDir = "data"

type spoolEntry struct {
	Entity      string    `json:"entity"`
	Payload     any       `json:"payload"`
	Error       string    `json:"error"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// IsSchemaMismatch reports whether err looks like a missing-column /
// unknown-table rejection from sqlite or postgres.
func IsSchemaMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "has no column named") ||
		strings.Contains(msg, "does not exist") && strings.Contains(msg, "column")
}

// SpoolWrite appends the failed write to data/pending_writes.json.
func SpoolWrite(entity string, payload any, cause error) error {
	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}
	path := filepath.Join(spoolDir, "pending_writes.json")

	var entries []spoolEntry
	if b, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(b, &entries)
	}
	entries = append(entries, spoolEntry{
		Entity:      entity,
		Payload:     payload,
		Error:       cause.Error(),
		AttemptedAt: time.Now(),
	})
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode spool: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write spool: %w", err)
	}
	return nil
}
