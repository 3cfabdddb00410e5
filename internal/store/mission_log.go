// Package store persists the append-only mission event log on SQLite.
// Events are never updated or deleted; current mission status is
// reconstructed by replay, last write wins per mission id.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"missiongate/internal/logging"
	"missiongate/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS mission_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	mission_id  TEXT NOT NULL,
	session_id  TEXT NOT NULL,
	status      TEXT NOT NULL,
	fields_json TEXT NOT NULL,
	note        TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mission_events_mission ON mission_events(mission_id, id);
`

// MissionLog is the SQLite-backed event sink for mission state.
type MissionLog struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewMissionLog opens (or creates) the event log at the given path.
func NewMissionLog(path string) (*MissionLog, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewMissionLog")
	defer timer.Stop()

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open mission log: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize mission log schema: %w", err)
	}

	logging.Get(logging.CategoryStore).Info("mission log opened at %s", path)
	return &MissionLog{db: db, dbPath: path}, nil
}

// Append writes one event. Events carry their own timestamps so replay
// order is stable across processes.
func (l *MissionLog) Append(ctx context.Context, event types.MissionEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := event.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	fieldsJSON, err := json.Marshal(event.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode mission fields: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO mission_events (mission_id, session_id, status, fields_json, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.MissionID, event.SessionID, string(event.Status), string(fieldsJSON), event.Note, at,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("failed to append event for %s: %v", event.MissionID, err)
		return fmt.Errorf("failed to append mission event: %w", err)
	}

	logging.Get(logging.CategoryStore).Debug("event appended: mission=%s status=%s", event.MissionID, event.Status)
	return nil
}

// Replay reconstructs the current mission set from the log.
func (l *MissionLog) Replay(ctx context.Context) (map[string]types.Mission, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Replay")
	defer timer.Stop()

	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.QueryContext(ctx,
		`SELECT mission_id, session_id, status, fields_json, created_at
		 FROM mission_events ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to replay mission log: %w", err)
	}
	defer rows.Close()

	missions := make(map[string]types.Mission)
	for rows.Next() {
		var (
			missionID, sessionID, status, fieldsJSON string
			createdAt                                time.Time
		)
		if err := rows.Scan(&missionID, &sessionID, &status, &fieldsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan mission event: %w", err)
		}

		var fields types.MissionFields
		if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
			logging.Get(logging.CategoryStore).Warn("skipping event with bad fields for %s: %v", missionID, err)
			continue
		}

		existing, seen := missions[missionID]
		created := createdAt
		if seen {
			created = existing.CreatedAt
		}
		missions[missionID] = types.Mission{
			ID:        missionID,
			SessionID: sessionID,
			Fields:    fields,
			Status:    types.MissionStatus(status),
			CreatedAt: created,
		}
	}
	return missions, rows.Err()
}

// Events returns the raw event history for one mission, oldest first.
func (l *MissionLog) Events(ctx context.Context, missionID string) ([]types.MissionEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.QueryContext(ctx,
		`SELECT mission_id, session_id, status, fields_json, note, created_at
		 FROM mission_events WHERE mission_id = ? ORDER BY id ASC`, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mission events: %w", err)
	}
	defer rows.Close()

	var events []types.MissionEvent
	for rows.Next() {
		var (
			e          types.MissionEvent
			status     string
			fieldsJSON string
		)
		if err := rows.Scan(&e.MissionID, &e.SessionID, &status, &fieldsJSON, &e.Note, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan mission event: %w", err)
		}
		e.Status = types.MissionStatus(status)
		if err := json.Unmarshal([]byte(fieldsJSON), &e.Fields); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the underlying database handle.
func (l *MissionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Close()
}
