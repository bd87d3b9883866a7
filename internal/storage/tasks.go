package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID          int64
	ListID      int64
	Title       string
	Note        string
	IsComplete  bool
	CreatedAt   time.Time
	CompletedAt sql.NullTime
}

const taskColumns = `id, list_id, title, note, is_complete, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (Task, error) {
	var t Task
	var complete int
	var created string
	var completed sql.NullString
	if err := r.Scan(&t.ID, &t.ListID, &t.Title, &t.Note, &complete, &created, &completed); err != nil {
		return Task{}, err
	}
	t.IsComplete = complete == 1
	t.CreatedAt = parseTime(created)
	if completed.Valid {
		if parsed, err := time.Parse(time.RFC3339Nano, completed.String); err == nil {
			t.CompletedAt = sql.NullTime{Time: parsed, Valid: true}
		}
	}
	return t, nil
}

// Tasks returns the tasks of a list whose completion flag equals complete, in
// insertion order.
func (s *Store) Tasks(ctx context.Context, listID int64, complete bool) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE list_id = ? AND is_complete = ? ORDER BY id;`,
		listID, boolToInt(complete))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) CurrentTasks(ctx context.Context, listID int64) ([]Task, error) {
	return s.Tasks(ctx, listID, false)
}

func (s *Store) CompletedTasks(ctx context.Context, listID int64) ([]Task, error) {
	return s.Tasks(ctx, listID, true)
}

func (s *Store) Task(ctx context.Context, id int64) (Task, error) {
	return s.task(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) task(ctx context.Context, q querier, id int64) (Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return t, err
}

// SaveTask appends a new, incomplete task to the list and returns it.
func (s *Store) SaveTask(ctx context.Context, listID int64, title, note string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	note = strings.TrimSpace(note)

	var task Task
	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (list_id, title, note, is_complete, created_at) VALUES (?, ?, ?, 0, ?);`,
			listID, title, note, now())
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		task, err = s.task(ctx, tx, id)
		return err
	})
	if err != nil {
		return Task{}, fmt.Errorf("save task: %w", err)
	}
	s.logger.Debug("task saved", "task_id", task.ID, "list_id", listID)
	return task, nil
}

// EditTask replaces the title and note of a task.
func (s *Store) EditTask(ctx context.Context, id int64, title, note string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE tasks SET title = ?, note = ? WHERE id = ?;`,
			title, strings.TrimSpace(note), id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("edit task %d: %w", id, err)
	}
	s.logger.Debug("task edited", "task_id", id)
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.logger.Debug("task deleted", "task_id", id)
	return nil
}

// DoneTask flips the completion flag of a task and returns the updated task.
// CompletedAt is stamped when the task becomes complete and cleared otherwise.
func (s *Store) DoneTask(ctx context.Context, id int64) (Task, error) {
	var task Task
	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE tasks SET
	is_complete = 1 - is_complete,
	completed_at = CASE WHEN is_complete = 0 THEN ? ELSE NULL END
WHERE id = ?;`, now(), id)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		task, err = s.task(ctx, tx, id)
		return err
	})
	if err != nil {
		return Task{}, fmt.Errorf("toggle task %d: %w", id, err)
	}
	s.logger.Debug("task toggled", "task_id", id, "complete", task.IsComplete)
	return task, nil
}
