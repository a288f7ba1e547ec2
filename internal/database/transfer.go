package database

import (
	"context"
	"fmt"

	"github.com/rwalling/tasklog/internal/models"
)

// TransferRepository implements export and import of the full todo and
// history tables. Import is a destructive full-table replace, not a merge.
type TransferRepository struct {
	db *DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// Export returns every todo and every history entry. Structured fields come
// back as native nested values, never as encoded strings.
func (t *TransferRepository) Export(ctx context.Context) (*models.Backup, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, text, priority, completed, category, unit, required_items, procedure, subtasks, active_counter, active_timer
		FROM todos
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}

	todos := []*models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			closeRows(rows)
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	closeRows(rows)

	histRows, err := t.db.QueryContext(ctx, `
		SELECT id, todo_id, session_id, timestamp, completed, snapshot_counter, snapshot_timer
		FROM todo_history
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer closeRows(histRows)

	history := []*models.HistoryEntry{}
	for histRows.Next() {
		entry := &models.HistoryEntry{}
		if err := histRows.Scan(
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
		history = append(history, entry)
	}
	if err := histRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return &models.Backup{Todos: todos, History: history}, nil
}

// Import replaces the store's contents with the supplied todos and history.
// Existing history and todos are deleted first; everything runs in one
// transaction, so a failed import leaves the previous contents intact.
// Returns the number of todos imported.
func (t *TransferRepository) Import(ctx context.Context, todos []*models.Todo, history []*models.HistoryEntry) (int, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM todo_history`); err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM todos`); err != nil {
		return 0, fmt.Errorf("failed to clear todos: %w", err)
	}

	for _, todo := range todos {
		requiredJSON, procedureJSON, subtasksJSON, err := marshalStructured(todo)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO todos (id, text, priority, completed, category, unit, required_items, procedure, subtasks, active_counter, active_timer)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			todo.ID,
			todo.Text,
			todo.Priority,
			todo.Completed,
			todo.Category,
			todo.Unit,
			requiredJSON,
			procedureJSON,
			subtasksJSON,
			todo.ActiveCounter,
			todo.ActiveTimer,
		); err != nil {
			return 0, fmt.Errorf("failed to import todo %d: %w", todo.ID, err)
		}
	}

	for _, entry := range history {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO todo_history (id, todo_id, session_id, timestamp, completed, snapshot_counter, snapshot_timer)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			entry.ID,
			entry.TodoID,
			entry.SessionID,
			entry.Timestamp,
			entry.Completed,
			entry.SnapshotCounter,
			entry.SnapshotTimer,
		); err != nil {
			return 0, fmt.Errorf("failed to import history entry %d: %w", entry.ID, err)
		}
	}

	// Imported rows carry explicit IDs; advance the serial sequences past
	// them so later inserts do not collide.
	for _, table := range []string{"todos", "todo_history"} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`,
			table, table,
		)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	return len(todos), nil
}
