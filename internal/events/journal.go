package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Journal appends every published event to SQLite, tagged with the id of
// the run that produced it. It is an audit trail only; list state is never
// rebuilt from it.
type Journal struct {
	db    *sql.DB
	runID string
}

// NewJournal creates a journal writing under a fresh run id.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db, runID: newRunID()}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RunID returns the id stamped on rows written by this journal.
func (j *Journal) RunID() string {
	return j.runID
}

// Append persists an event and returns its row id.
func (j *Journal) Append(e Event) (int64, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("marshal event: %w", err)
	}

	result, err := j.db.Exec(`
		INSERT INTO journal (run_id, event_type, entity_type, entity_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		j.runID, e.EventType(), e.EntityType(), e.EntityID(), string(payload), e.OccurredAt(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	return result.LastInsertId()
}

// RawEvent is a journal row with its undecoded payload.
type RawEvent struct {
	ID         int64
	RunID      string
	EventType  string
	EntityType string
	EntityID   int64
	Payload    string
	OccurredAt time.Time
}

// Recent returns the newest limit rows, oldest first. An empty runID
// selects rows from every run.
func (j *Journal) Recent(runID string, limit int) ([]RawEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(`
		SELECT id, run_id, event_type, entity_type, entity_id, payload, occurred_at
		FROM (
			SELECT * FROM journal
			WHERE ? = '' OR run_id = ?
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC`,
		runID, runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ForItem returns every row about one downloadable item, oldest first.
func (j *Journal) ForItem(itemID int64) ([]RawEvent, error) {
	rows, err := j.db.Query(`
		SELECT id, run_id, event_type, entity_type, entity_id, payload, occurred_at
		FROM journal
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY id ASC`,
		EntityItem, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Prune removes rows older than the given duration.
func (j *Journal) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := j.db.Exec(`DELETE FROM journal WHERE occurred_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return result.RowsAffected()
}

func scanEvents(rows *sql.Rows) ([]RawEvent, error) {
	var out []RawEvent
	for rows.Next() {
		var e RawEvent
		if err := rows.Scan(&e.ID, &e.RunID, &e.EventType, &e.EntityType, &e.EntityID, &e.Payload, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
