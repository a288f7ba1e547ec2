package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rwalling/tasklog/internal/models"
	"github.com/rwalling/tasklog/internal/validation"
)

// TodoRepository owns the todos table. It maintains the priority invariant:
// at any quiescent moment the priorities in use are exactly {0..n-1} for n
// live todos. Every shift-then-insert sequence runs inside one transaction.
type TodoRepository struct {
	db  *DB
	log *zap.Logger
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *DB) *TodoRepository {
	return &TodoRepository{db: db, log: zap.NewNop()}
}

// SetLogger attaches a logger for slow-path diagnostics
func (r *TodoRepository) SetLogger(log *zap.Logger) {
	if log != nil {
		r.log = log
	}
}

// CreateTodoParams are the accepted fields for a new todo. A nil Priority
// appends to the end of the list.
type CreateTodoParams struct {
	Text          string
	Priority      *int
	Unit          string
	Category      string
	RequiredItems models.StringList
	Procedure     models.StringList
	Subtasks      models.SubtaskList
}

// Create inserts a new todo. When a priority is requested, every existing
// todo at that priority or above is shifted up by one first, so the new row
// lands in the requested slot and the ordering stays dense.
func (r *TodoRepository) Create(ctx context.Context, p CreateTodoParams) (*models.Todo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	var priority int
	if p.Priority != nil {
		priority = *p.Priority
		if _, err := tx.ExecContext(ctx,
			`UPDATE todos SET priority = priority + 1 WHERE priority >= $1`, priority,
		); err != nil {
			return nil, fmt.Errorf("failed to shift priorities: %w", err)
		}
	} else {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(priority) + 1, 0) FROM todos`,
		).Scan(&priority); err != nil {
			return nil, fmt.Errorf("failed to compute next priority: %w", err)
		}
	}

	todo := &models.Todo{
		Text:          p.Text,
		Priority:      priority,
		Category:      validation.NormalizeCategory(p.Category),
		Unit:          p.Unit,
		RequiredItems: p.RequiredItems,
		Procedure:     p.Procedure,
		Subtasks:      p.Subtasks,
	}
	if todo.Unit == "" {
		todo.Unit = models.DefaultUnit
	}
	if todo.RequiredItems == nil {
		todo.RequiredItems = models.StringList{}
	}
	if todo.Procedure == nil {
		todo.Procedure = models.StringList{}
	}
	if todo.Subtasks == nil {
		todo.Subtasks = models.SubtaskList{}
	}

	requiredJSON, procedureJSON, subtasksJSON, err := marshalStructured(todo)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO todos (text, priority, completed, category, unit, required_items, procedure, subtasks, active_counter, active_timer)
		VALUES ($1, $2, FALSE, $3, $4, $5, $6, $7, 0, 0)
		RETURNING id
	`,
		todo.Text,
		todo.Priority,
		todo.Category,
		todo.Unit,
		requiredJSON,
		procedureJSON,
		subtasksJSON,
	).Scan(&todo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit create: %w", err)
	}

	return todo, nil
}

// UpdateTodoParams are the recognized partial-update fields. Nil pointers
// leave the column untouched.
type UpdateTodoParams struct {
	Text          *string
	Unit          *string
	Category      *string
	Priority      *int
	ActiveCounter *int
	ActiveTimer   *int
	RequiredItems *models.StringList
	Procedure     *models.StringList
	Subtasks      *models.SubtaskList
}

func (p UpdateTodoParams) empty() bool {
	return p.Text == nil && p.Unit == nil && p.Category == nil &&
		p.Priority == nil && p.ActiveCounter == nil && p.ActiveTimer == nil &&
		p.RequiredItems == nil && p.Procedure == nil && p.Subtasks == nil
}

// Update applies a partial update. A supplied priority shifts every other
// todo at that priority or above up by one, mirroring Create's insertion
// semantics, so the target can jump ranks while the ordering stays dense.
// An empty update is a successful no-op.
func (r *TodoRepository) Update(ctx context.Context, id int64, p UpdateTodoParams) error {
	if p.empty() {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	var sets []string
	args := []any{id}
	argIndex := 2

	addSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if p.Priority != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE todos SET priority = priority + 1 WHERE priority >= $1 AND id != $2`,
			*p.Priority, id,
		); err != nil {
			return fmt.Errorf("failed to shift priorities: %w", err)
		}
		addSet("priority", *p.Priority)
	}
	if p.Text != nil {
		addSet("text", *p.Text)
	}
	if p.Unit != nil {
		addSet("unit", *p.Unit)
	}
	if p.Category != nil {
		addSet("category", validation.NormalizeCategory(*p.Category))
	}
	if p.ActiveCounter != nil {
		addSet("active_counter", *p.ActiveCounter)
	}
	if p.ActiveTimer != nil {
		addSet("active_timer", *p.ActiveTimer)
	}
	if p.RequiredItems != nil {
		j, err := json.Marshal(*p.RequiredItems)
		if err != nil {
			return fmt.Errorf("failed to marshal required items: %w", err)
		}
		addSet("required_items", j)
	}
	if p.Procedure != nil {
		j, err := json.Marshal(*p.Procedure)
		if err != nil {
			return fmt.Errorf("failed to marshal procedure: %w", err)
		}
		addSet("procedure", j)
	}
	if p.Subtasks != nil {
		j, err := json.Marshal(*p.Subtasks)
		if err != nil {
			return fmt.Errorf("failed to marshal subtasks: %w", err)
		}
		addSet("subtasks", j)
	}

	query := fmt.Sprintf(`UPDATE todos SET %s WHERE id = $1`, strings.Join(sets, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}
	return nil
}

// SetCompleted updates only the completion flag
func (r *TodoRepository) SetCompleted(ctx context.Context, id int64, completed bool) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE todos SET completed = $2 WHERE id = $1`, id, completed,
	); err != nil {
		return fmt.Errorf("failed to toggle todo: %w", err)
	}
	return nil
}

// Delete removes a todo and all of its history entries. Deleting a missing
// todo is a successful no-op; the cascade is idempotent.
func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM todo_history WHERE todo_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete todo history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// List returns all todos ordered by ascending priority. This is the
// canonical display order; consumers must not recompute it.
func (r *TodoRepository) List(ctx context.Context) ([]*models.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, priority, completed, category, unit, required_items, procedure, subtasks, active_counter, active_timer
		FROM todos
		ORDER BY priority ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer closeRows(rows)

	todos := []*models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// scanTodo scans one row from a todos SELECT in canonical column order
func scanTodo(rows *sql.Rows) (*models.Todo, error) {
	todo := &models.Todo{}
	var requiredJSON, procedureJSON, subtasksJSON []byte

	err := rows.Scan(
		&todo.ID,
		&todo.Text,
		&todo.Priority,
		&todo.Completed,
		&todo.Category,
		&todo.Unit,
		&requiredJSON,
		&procedureJSON,
		&subtasksJSON,
		&todo.ActiveCounter,
		&todo.ActiveTimer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan todo: %w", err)
	}

	// The tolerant list decoders never fail; malformed stored values
	// degrade to empty lists.
	_ = json.Unmarshal(requiredJSON, &todo.RequiredItems)
	_ = json.Unmarshal(procedureJSON, &todo.Procedure)
	_ = json.Unmarshal(subtasksJSON, &todo.Subtasks)
	if todo.RequiredItems == nil {
		todo.RequiredItems = models.StringList{}
	}
	if todo.Procedure == nil {
		todo.Procedure = models.StringList{}
	}
	if todo.Subtasks == nil {
		todo.Subtasks = models.SubtaskList{}
	}

	return todo, nil
}

// marshalStructured encodes the JSONB columns. Nil lists encode as empty
// arrays so the columns never hold JSON null.
func marshalStructured(todo *models.Todo) (required, procedure, subtasks []byte, err error) {
	if todo.RequiredItems == nil {
		todo.RequiredItems = models.StringList{}
	}
	if todo.Procedure == nil {
		todo.Procedure = models.StringList{}
	}
	if todo.Subtasks == nil {
		todo.Subtasks = models.SubtaskList{}
	}
	if required, err = json.Marshal(todo.RequiredItems); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal required items: %w", err)
	}
	if procedure, err = json.Marshal(todo.Procedure); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal procedure: %w", err)
	}
	if subtasks, err = json.Marshal(todo.Subtasks); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal subtasks: %w", err)
	}
	return required, procedure, subtasks, nil
}

// rollback aborts a transaction; a no-op after Commit
func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		_ = err
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		_ = err
	}
}
