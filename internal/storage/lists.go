package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type TaskList struct {
	ID        int64
	Title     string
	CreatedAt time.Time
}

// ListSummary is a task list with its per-section task counts.
type ListSummary struct {
	TaskList
	Current   int
	Completed int
}

func (s *Store) CreateList(ctx context.Context, title string) (TaskList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return TaskList{}, ErrEmptyTitle
	}
	list := TaskList{Title: title}
	err := s.write(ctx, func(tx *sql.Tx) error {
		created := now()
		res, err := tx.ExecContext(ctx, `INSERT INTO task_lists (title, created_at) VALUES (?, ?);`, title, created)
		if err != nil {
			return err
		}
		list.ID, err = res.LastInsertId()
		list.CreatedAt = parseTime(created)
		return err
	})
	if err != nil {
		return TaskList{}, fmt.Errorf("create list %q: %w", title, err)
	}
	s.logger.Debug("list created", "list_id", list.ID, "title", title)
	return list, nil
}

// ListByTitle looks a list up by its exact title.
func (s *Store) ListByTitle(ctx context.Context, title string) (TaskList, error) {
	var (
		list    TaskList
		created string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, title, created_at FROM task_lists WHERE title = ?;`,
		strings.TrimSpace(title)).Scan(&list.ID, &list.Title, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return TaskList{}, fmt.Errorf("list %q: %w", title, ErrNotFound)
	}
	if err != nil {
		return TaskList{}, err
	}
	list.CreatedAt = parseTime(created)
	return list, nil
}

// EnsureList returns the list with the given title, creating it if needed.
func (s *Store) EnsureList(ctx context.Context, title string) (TaskList, error) {
	list, err := s.ListByTitle(ctx, title)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return TaskList{}, err
	}
	return s.CreateList(ctx, title)
}

func (s *Store) Lists(ctx context.Context) ([]TaskList, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, created_at FROM task_lists ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []TaskList
	for rows.Next() {
		var l TaskList
		var created string
		if err := rows.Scan(&l.ID, &l.Title, &created); err != nil {
			return nil, err
		}
		l.CreatedAt = parseTime(created)
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// Summaries returns every list with its current and completed task counts.
func (s *Store) Summaries(ctx context.Context) ([]ListSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT l.id, l.title, l.created_at,
	COALESCE(SUM(CASE WHEN t.is_complete = 0 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN t.is_complete = 1 THEN 1 ELSE 0 END), 0)
FROM task_lists l
LEFT JOIN tasks t ON t.list_id = l.id
GROUP BY l.id
ORDER BY l.id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListSummary
	for rows.Next() {
		var sum ListSummary
		var created string
		if err := rows.Scan(&sum.ID, &sum.Title, &created, &sum.Current, &sum.Completed); err != nil {
			return nil, err
		}
		sum.CreatedAt = parseTime(created)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteList removes a list together with its tasks.
func (s *Store) DeleteList(ctx context.Context, id int64) error {
	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM task_lists WHERE id = ?;`, id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil {
		return fmt.Errorf("delete list %d: %w", id, err)
	}
	s.logger.Debug("list deleted", "list_id", id)
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
