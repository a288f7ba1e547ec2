package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rwalling/tasklog/internal/models"
)

// RecentSessionLimit is the number of reset sessions returned to list reads
const RecentSessionLimit = 7

// HistoryRepository owns the todo_history table. It is the only writer of
// history rows; the archive-then-clear sequence of a reset is atomic.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Reset archives the live state of every todo into history rows sharing one
// fresh session ID and one timestamp, then clears every todo's completion
// flag and live metrics. With zero todos it archives nothing, clears nothing
// and succeeds. Both steps run in one transaction: readers observe the reset
// fully applied or not at all.
func (r *HistoryRepository) Reset(ctx context.Context) (sessionID string, archived int, err error) {
	sessionID = uuid.New().String()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	rows, err := tx.QueryContext(ctx,
		`SELECT id, completed, active_counter, active_timer FROM todos`,
	)
	if err != nil {
		return "", 0, fmt.Errorf("failed to query todos for reset: %w", err)
	}

	type liveState struct {
		id        int64
		completed bool
		counter   int
		timer     int
	}
	var live []liveState
	for rows.Next() {
		var s liveState
		if err := rows.Scan(&s.id, &s.completed, &s.counter, &s.timer); err != nil {
			closeRows(rows)
			return "", 0, fmt.Errorf("failed to scan todo state: %w", err)
		}
		live = append(live, s)
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return "", 0, fmt.Errorf("error iterating todos: %w", err)
	}
	closeRows(rows)

	if len(live) == 0 {
		if err := tx.Commit(); err != nil {
			return "", 0, fmt.Errorf("failed to commit empty reset: %w", err)
		}
		return sessionID, 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO todo_history (todo_id, session_id, timestamp, completed, snapshot_counter, snapshot_timer)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return "", 0, fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	for _, s := range live {
		if _, err := stmt.ExecContext(ctx, s.id, sessionID, timestamp, s.completed, s.counter, s.timer); err != nil {
			return "", 0, fmt.Errorf("failed to archive todo %d: %w", s.id, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE todos SET completed = FALSE, active_counter = 0, active_timer = 0`,
	); err != nil {
		return "", 0, fmt.Errorf("failed to clear live state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("failed to commit reset: %w", err)
	}

	return sessionID, len(live), nil
}

// CorrectHistoryParams are the fields a history correction may change.
// Session identity and timestamp are immutable.
type CorrectHistoryParams struct {
	SnapshotCounter *int
	SnapshotTimer   *int
	Completed       *bool
}

// Correct applies a partial correction to the history rows matching
// (todoID, sessionID) and returns the number of rows affected. A missing
// pair affects zero rows and is not an error.
func (r *HistoryRepository) Correct(ctx context.Context, todoID int64, sessionID string, p CorrectHistoryParams) (int64, error) {
	var sets []string
	args := []any{todoID, sessionID}
	argIndex := 3

	if p.SnapshotCounter != nil {
		sets = append(sets, fmt.Sprintf("snapshot_counter = $%d", argIndex))
		args = append(args, *p.SnapshotCounter)
		argIndex++
	}
	if p.SnapshotTimer != nil {
		sets = append(sets, fmt.Sprintf("snapshot_timer = $%d", argIndex))
		args = append(args, *p.SnapshotTimer)
		argIndex++
	}
	if p.Completed != nil {
		sets = append(sets, fmt.Sprintf("completed = $%d", argIndex))
		args = append(args, *p.Completed)
		argIndex++
	}

	if len(sets) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(
		`UPDATE todo_history SET %s WHERE todo_id = $1 AND session_id = $2`,
		strings.Join(sets, ", "),
	)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to correct history: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// RecentSessions returns up to limit sessions ordered by the most recent
// timestamp among each session's entries, newest first. Ties break on
// session ID descending, which keeps the order stable.
func (r *HistoryRepository) RecentSessions(ctx context.Context, limit int) ([]models.SessionSummary, error) {
	if limit <= 0 {
		limit = RecentSessionLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, MAX(timestamp) AS timestamp
		FROM todo_history
		GROUP BY session_id
		ORDER BY MAX(timestamp) DESC, session_id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer closeRows(rows)

	sessions := []models.SessionSummary{}
	for rows.Next() {
		var s models.SessionSummary
		if err := rows.Scan(&s.SessionID, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// BySessions returns every history entry belonging to the given sessions
func (r *HistoryRepository) BySessions(ctx context.Context, sessionIDs []string) ([]*models.HistoryEntry, error) {
	if len(sessionIDs) == 0 {
		return []*models.HistoryEntry{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, todo_id, session_id, timestamp, completed, snapshot_counter, snapshot_timer
		FROM todo_history
		WHERE session_id = ANY($1)
		ORDER BY id ASC
	`, pq.Array(sessionIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer closeRows(rows)

	entries := []*models.HistoryEntry{}
	for rows.Next() {
		entry := &models.HistoryEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.TodoID,
			&entry.SessionID,
			&entry.Timestamp,
			&entry.Completed,
			&entry.SnapshotCounter,
			&entry.SnapshotTimer,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}
